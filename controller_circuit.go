package torctl

import (
	"context"
	"strings"
)

// ExtendCircuit sends EXTENDCIRCUIT. circID is "0" to build a new
// circuit. It returns the (possibly new) circuit ID from the
// "250 EXTENDED <circID>" reply.
func (c *Controller) ExtendCircuit(ctx context.Context, circID string, path []string, purpose string) (string, error) {
	var b strings.Builder
	b.WriteString("EXTENDCIRCUIT ")
	b.WriteString(circID)
	if len(path) > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(path, ","))
	}
	if purpose != "" {
		b.WriteString(" purpose=")
		b.WriteString(purpose)
	}
	b.WriteString("\r\n")
	reply, err := c.exec(ctx, "EXTENDCIRCUIT", b.String(), nil)
	if err != nil {
		return "", err
	}
	if reply.Empty() {
		return "", &ProtocolError{Msg: "empty reply to EXTENDCIRCUIT"}
	}
	tokens := strings.Fields(reply.First().Message)
	return tokenAt(tokens, 1), nil
}

// SetCircuitPurpose sends SETCIRCUITPURPOSE circID purpose=purpose.
func (c *Controller) SetCircuitPurpose(ctx context.Context, circID, purpose string) (Reply, error) {
	line := "SETCIRCUITPURPOSE " + circID + " purpose=" + purpose + "\r\n"
	return c.exec(ctx, "SETCIRCUITPURPOSE", line, nil)
}

// CloseCircuit sends CLOSECIRCUIT circID, appending IFUNUSED only when
// ifUnused is set.
func (c *Controller) CloseCircuit(ctx context.Context, circID string, ifUnused bool) (Reply, error) {
	line := "CLOSECIRCUIT " + circID
	if ifUnused {
		line += " IFUNUSED"
	}
	line += "\r\n"
	return c.exec(ctx, "CLOSECIRCUIT", line, nil)
}
