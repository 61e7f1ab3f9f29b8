package torctl

import (
	"context"
	"strings"

	"github.com/torproject/torctl/internal/dict"
)

// ConfValue is one SETCONF key/value pair. A nil Value resets that key
// to its default (a bare key with no '=' on the wire).
type ConfValue struct {
	Key   string
	Value *string
}

// SetConf sends SETCONF k1=quote(v1) k2=quote(v2) ...; a ConfValue with
// a nil Value resets that key.
func (c *Controller) SetConf(ctx context.Context, kvs []ConfValue) (Reply, error) {
	var b strings.Builder
	b.WriteString("SETCONF")
	for _, kv := range kvs {
		b.WriteByte(' ')
		b.WriteString(kv.Key)
		if kv.Value != nil {
			b.WriteByte('=')
			b.WriteString(quote(*kv.Value))
		}
	}
	b.WriteString("\r\n")
	return c.exec(ctx, "SETCONF", b.String(), nil)
}

// GetConf sends GETCONF for the given keys and returns the key=value
// pairs of the reply.
func (c *Controller) GetConf(ctx context.Context, keys ...string) (*dict.Dict, error) {
	line := "GETCONF " + strings.Join(keys, " ") + "\r\n"
	reply, err := c.exec(ctx, "GETCONF", line, nil)
	if err != nil {
		return nil, err
	}
	return parseKeyValueReply(reply), nil
}

// ResetConf sends RESETCONF for the given keys, resetting each to its
// compiled-in default.
func (c *Controller) ResetConf(ctx context.Context, keys ...string) (Reply, error) {
	line := "RESETCONF " + strings.Join(keys, " ") + "\r\n"
	return c.exec(ctx, "RESETCONF", line, nil)
}

// LoadConf sends LOADCONF with lines joined by '\n' as the data body.
func (c *Controller) LoadConf(ctx context.Context, lines []string) (Reply, error) {
	body := strings.Join(lines, "\n")
	return c.exec(ctx, "LOADCONF", "LOADCONF\r\n", &body)
}

// SaveConf sends SAVECONF, optionally forcing a save over a torrc with
// unrecognized options.
func (c *Controller) SaveConf(ctx context.Context, force bool) (Reply, error) {
	line := "SAVECONF\r\n"
	if force {
		line = "SAVECONF FORCE\r\n"
	}
	return c.exec(ctx, "SAVECONF", line, nil)
}

// parseKeyValueReply decodes a reply whose lines are each "key=value"
// (or, for a '+' divider, "key=" with the value carried in Data) into a
// Dict in reply order.
func parseKeyValueReply(reply Reply) *dict.Dict {
	d := dict.New()
	for _, line := range reply.Lines {
		msg := line.Message
		idx := strings.IndexByte(msg, '=')
		if idx < 0 {
			if msg != "OK" && msg != "" {
				d.Put(msg, "")
			}
			continue
		}
		key := msg[:idx]
		value := msg[idx+1:]
		if line.HasData {
			value = line.Data
		}
		d.Put(key, value)
	}
	return d
}
