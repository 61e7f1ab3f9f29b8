package torctl

import (
	"fmt"
	"io"
	"sync"
)

// Tap is an optional trace sink for every line crossing the wire.
// Installation and removal are safe at any time. Tap methods are called
// synchronously, on the writing caller's goroutine for outgoing lines and
// on the reader goroutine for incoming ones; a tap that blocks stalls
// that goroutine, and a panic in a tap is not recovered.
type Tap interface {
	// Out is called for every outgoing line, including body lines and
	// the terminal dot.
	Out(line string)
	// In is called for every incoming line.
	In(line string)
}

// WriterTap is a Tap that formats lines as ">> line" / "<< line" and
// writes them to w, matching the teacher's io.MultiWriter-based logging
// idiom.
type WriterTap struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterTap creates a Tap that writes formatted trace lines to w.
func NewWriterTap(w io.Writer) *WriterTap {
	return &WriterTap{w: w}
}

func (t *WriterTap) write(prefix, line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "%s %s\n", prefix, line)
}

// Out implements Tap.
func (t *WriterTap) Out(line string) { t.write(">>", line) }

// In implements Tap.
func (t *WriterTap) In(line string) { t.write("<<", line) }
