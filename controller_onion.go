package torctl

import (
	"context"
	"strconv"
	"strings"
)

// OnionPort is one Port= argument to ADD_ONION: the service's virtual
// port, and optionally a distinct local target (host:port or unix
// socket path) it maps to.
type OnionPort struct {
	Virtual int
	Target  string
}

// AddOnion sends ADD_ONION keySpec [Flags=f1,f2] Port=virt[,target] ...
// and returns the new service's ID and, if the daemon generated a new
// key, its private key. keySpec must contain ':' (e.g. "NEW:BEST" or
// "RSA1024:<base64>"); ports must be non-empty — both are validated
// before any bytes are sent.
func (c *Controller) AddOnion(ctx context.Context, keySpec string, ports []OnionPort, flags []string) (serviceID, privateKey string, err error) {
	if !strings.Contains(keySpec, ":") {
		return "", "", &InvalidArgumentError{Msg: "missing ':' in private-key spec"}
	}
	if len(ports) == 0 {
		return "", "", &InvalidArgumentError{Msg: "empty port list for ADD_ONION"}
	}
	var b strings.Builder
	b.WriteString("ADD_ONION ")
	b.WriteString(keySpec)
	if len(flags) > 0 {
		b.WriteString(" Flags=")
		b.WriteString(strings.Join(flags, ","))
	}
	for _, p := range ports {
		b.WriteString(" Port=")
		b.WriteString(strconv.Itoa(p.Virtual))
		if p.Target != "" {
			b.WriteByte(',')
			b.WriteString(p.Target)
		}
	}
	b.WriteString("\r\n")
	reply, err := c.exec(ctx, "ADD_ONION", b.String(), nil)
	if err != nil {
		return "", "", err
	}
	result := parseKeyValueReply(reply)
	serviceID, _ = result.Get("ServiceID")
	privateKey, _ = result.Get("PrivateKey")
	return serviceID, privateKey, nil
}

// DelOnion sends DEL_ONION serviceID.
func (c *Controller) DelOnion(ctx context.Context, serviceID string) (Reply, error) {
	line := "DEL_ONION " + serviceID + "\r\n"
	return c.exec(ctx, "DEL_ONION", line, nil)
}
