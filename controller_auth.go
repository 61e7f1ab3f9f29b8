package torctl

import (
	"context"
	"encoding/hex"
)

// Authenticate sends AUTHENTICATE with data (a password or cookie)
// lowercase-hex-encoded. Empty data produces "AUTHENTICATE " with no
// argument.
func (c *Controller) Authenticate(ctx context.Context, data []byte) (Reply, error) {
	line := "AUTHENTICATE " + hex.EncodeToString(data) + "\r\n"
	return c.exec(ctx, "AUTHENTICATE", line, nil)
}

// ProtocolInfo sends PROTOCOLINFO, valid even before authentication.
func (c *Controller) ProtocolInfo(ctx context.Context) (Reply, error) {
	return c.exec(ctx, "PROTOCOLINFO", "PROTOCOLINFO\r\n", nil)
}

// AuthChallenge sends AUTHCHALLENGE SAFECOOKIE with clientNonce
// lowercase-hex-encoded, valid even before authentication.
func (c *Controller) AuthChallenge(ctx context.Context, clientNonce []byte) (Reply, error) {
	line := "AUTHCHALLENGE SAFECOOKIE " + hex.EncodeToString(clientNonce) + "\r\n"
	return c.exec(ctx, "AUTHCHALLENGE", line, nil)
}

// Quit sends QUIT, valid even before authentication.
func (c *Controller) Quit(ctx context.Context) (Reply, error) {
	return c.exec(ctx, "QUIT", "QUIT\r\n", nil)
}
