// Package duplextest provides an in-memory duplex stream for exercising
// the engine without a real control socket, in the spirit of
// redis/connection/fake.go's FakeConn: a fake endpoint that records what
// was written to it and lets a test script feed bytes back.
package duplextest

import (
	"io"
	"sync"
)

// Pair is one half of a connected pair of in-memory duplex streams.
// Writes to one half become available for Reads on the other.
type Pair struct {
	r      *io.PipeReader
	w      *io.PipeWriter
	mu     sync.Mutex
	closed bool
}

// New returns two connected Pairs: bytes written to a are readable from
// b, and bytes written to b are readable from a.
func New() (a, b *Pair) {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	a = &Pair{r: ar, w: aw}
	b = &Pair{r: br, w: bw}
	return a, b
}

// Read implements io.Reader.
func (p *Pair) Read(buf []byte) (int, error) { return p.r.Read(buf) }

// Write implements io.Writer.
func (p *Pair) Write(buf []byte) (int, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return 0, io.ErrClosedPipe
	}
	return p.w.Write(buf)
}

// Close implements io.Closer. It is safe to call more than once.
func (p *Pair) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	_ = p.w.CloseWithError(io.EOF)
	_ = p.r.CloseWithError(io.EOF)
	return nil
}
