package torctl

import (
	"context"
	"strings"

	"github.com/torproject/torctl/internal/dict"
)

// Signal sends SIGNAL name and waits for the reply. For signals that may
// cause Tor to close the connection before replying, use ShutdownTor
// instead.
func (c *Controller) Signal(ctx context.Context, name string) (Reply, error) {
	return c.exec(ctx, "SIGNAL", "SIGNAL "+name+"\r\n", nil)
}

// ShutdownTor fires SIGNAL name without enqueuing a waiter — the daemon
// may close the connection before it would otherwise reply, and the
// following EOF must be treated as a clean close rather than an error.
func (c *Controller) ShutdownTor(name string) error {
	return c.engine.SendFireAndForget("SIGNAL " + name + "\r\n")
}

// MapAddress sends MAPADDRESS from=quote(to) ... and returns the
// from=to pairs of the reply.
func (c *Controller) MapAddress(ctx context.Context, pairs map[string]string) (*dict.Dict, error) {
	var b strings.Builder
	b.WriteString("MAPADDRESS")
	for from, to := range pairs {
		b.WriteByte(' ')
		b.WriteString(from)
		b.WriteByte('=')
		b.WriteString(quote(to))
	}
	b.WriteString("\r\n")
	reply, err := c.exec(ctx, "MAPADDRESS", b.String(), nil)
	if err != nil {
		return nil, err
	}
	return parseKeyValueReply(reply), nil
}

// GetInfo sends GETINFO for the given keys and returns the key=value
// pairs of the reply (the value of a '+'-divided line is its decoded
// data body).
func (c *Controller) GetInfo(ctx context.Context, keys ...string) (*dict.Dict, error) {
	line := "GETINFO " + strings.Join(keys, " ") + "\r\n"
	reply, err := c.exec(ctx, "GETINFO", line, nil)
	if err != nil {
		return nil, err
	}
	return parseKeyValueReply(reply), nil
}

// UseFeature sends USEFEATURE for the given feature names.
func (c *Controller) UseFeature(ctx context.Context, features ...string) (Reply, error) {
	line := "USEFEATURE " + strings.Join(features, " ") + "\r\n"
	return c.exec(ctx, "USEFEATURE", line, nil)
}

// Resolve sends RESOLVE address, or RESOLVE mode=reverse address for a
// reverse lookup. The answer arrives later as an ADDRMAP event, not in
// this reply.
func (c *Controller) Resolve(ctx context.Context, address string, reverse bool) (Reply, error) {
	line := "RESOLVE "
	if reverse {
		line += "mode=reverse "
	}
	line += address + "\r\n"
	return c.exec(ctx, "RESOLVE", line, nil)
}

// DropGuards sends DROPGUARDS.
func (c *Controller) DropGuards(ctx context.Context) (Reply, error) {
	return c.exec(ctx, "DROPGUARDS", "DROPGUARDS\r\n", nil)
}

// HSFetch sends HSFETCH address, appending SERVER=s for each non-empty
// server in servers.
func (c *Controller) HSFetch(ctx context.Context, address string, servers []string) (Reply, error) {
	var b strings.Builder
	b.WriteString("HSFETCH ")
	b.WriteString(address)
	for _, s := range servers {
		if s == "" {
			continue
		}
		b.WriteString(" SERVER=")
		b.WriteString(s)
	}
	b.WriteString("\r\n")
	return c.exec(ctx, "HSFETCH", b.String(), nil)
}

// HSPost sends HSPOST with descriptor as the data body, appending
// SERVER=s for each non-empty server and HSADDRESS= when serviceID is
// non-empty.
func (c *Controller) HSPost(ctx context.Context, descriptor, serviceID string, servers []string) (Reply, error) {
	var b strings.Builder
	b.WriteString("HSPOST")
	for _, s := range servers {
		if s == "" {
			continue
		}
		b.WriteString(" SERVER=")
		b.WriteString(s)
	}
	if serviceID != "" {
		b.WriteString(" HSADDRESS=")
		b.WriteString(serviceID)
	}
	b.WriteString("\r\n")
	return c.exec(ctx, "HSPOST", b.String(), &descriptor)
}

// TakeOwnership sends TAKEOWNERSHIP: Tor exits when this connection
// closes.
func (c *Controller) TakeOwnership(ctx context.Context) (Reply, error) {
	return c.exec(ctx, "TAKEOWNERSHIP", "TAKEOWNERSHIP\r\n", nil)
}

// DropOwnership sends DROPOWNERSHIP, undoing TakeOwnership.
func (c *Controller) DropOwnership(ctx context.Context) (Reply, error) {
	return c.exec(ctx, "DROPOWNERSHIP", "DROPOWNERSHIP\r\n", nil)
}

// SetEvents validates every name against KnownEventNames before sending
// anything, then sends SETEVENTS name1 name2 ....
func (c *Controller) SetEvents(ctx context.Context, names ...string) (Reply, error) {
	upper := make([]string, len(names))
	for i, n := range names {
		u := strings.ToUpper(n)
		if !KnownEventNames[u] {
			return Reply{}, &InvalidArgumentError{Msg: "unknown event name: " + n}
		}
		upper[i] = u
	}
	line := "SETEVENTS " + strings.Join(upper, " ") + "\r\n"
	return c.exec(ctx, "SETEVENTS", line, nil)
}
