package torctl

import (
	"context"
	"strconv"
)

// AttachStream sends ATTACHSTREAM streamID circID, optionally pinning
// the exit hop (hop <= 0 means unset).
func (c *Controller) AttachStream(ctx context.Context, streamID, circID string, hop int) (Reply, error) {
	line := "ATTACHSTREAM " + streamID + " " + circID
	if hop > 0 {
		line += " HOP=" + strconv.Itoa(hop)
	}
	line += "\r\n"
	return c.exec(ctx, "ATTACHSTREAM", line, nil)
}

// RedirectStream sends REDIRECTSTREAM streamID address.
func (c *Controller) RedirectStream(ctx context.Context, streamID, address string) (Reply, error) {
	line := "REDIRECTSTREAM " + streamID + " " + address + "\r\n"
	return c.exec(ctx, "REDIRECTSTREAM", line, nil)
}

// CloseStream sends CLOSESTREAM streamID reason.
func (c *Controller) CloseStream(ctx context.Context, streamID string, reason int) (Reply, error) {
	line := "CLOSESTREAM " + streamID + " " + strconv.Itoa(reason) + "\r\n"
	return c.exec(ctx, "CLOSESTREAM", line, nil)
}

// PostDescriptor sends POSTDESCRIPTOR with descriptor as the data body,
// and optional purpose/cache arguments.
func (c *Controller) PostDescriptor(ctx context.Context, descriptor, purpose string, cache *bool) (Reply, error) {
	line := "POSTDESCRIPTOR"
	if purpose != "" {
		line += " purpose=" + purpose
	}
	if cache != nil {
		if *cache {
			line += " cache=yes"
		} else {
			line += " cache=no"
		}
	}
	line += "\r\n"
	return c.exec(ctx, "POSTDESCRIPTOR", line, &descriptor)
}
