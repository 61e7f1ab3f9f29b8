// Package torctl implements the protocol engine for the Tor control
// protocol: framing, encoding, parsing, and a request/response
// multiplexer over a single bidirectional byte stream, plus an event
// dispatcher for asynchronous 6xx replies.
package torctl

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/torproject/torctl/internal/logger"
	"github.com/torproject/torctl/wait"
)

// Engine owns the read half, the write half, and the waiter FIFO of one
// control connection. It is safe for use from multiple concurrent
// callers; the single background reader goroutine is its only
// consumer of the read half.
type Engine struct {
	stream io.ReadWriteCloser
	br     *bufio.Reader

	writeMu sync.Mutex

	waitersMu sync.Mutex
	waiters   []*pendingRequest

	startOnce sync.Once

	termMu  sync.Mutex
	termErr error

	dispatcher *Dispatcher

	tapMu sync.RWMutex
	tap   Tap

	shutdownWait wait.Wait
}

// NewEngine wraps stream (a connected control socket, or anything that
// behaves like one) in an Engine. The reader goroutine is not started
// until Start is called explicitly or implicitly by the first Exec.
func NewEngine(stream io.ReadWriteCloser) *Engine {
	return &Engine{
		stream:     stream,
		br:         bufio.NewReader(stream),
		dispatcher: newDispatcher(),
	}
}

// Start begins the background reader goroutine. It is idempotent: the
// first call wins, later calls are no-ops even if made concurrently.
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		e.shutdownWait.Add(1)
		go e.readLoop()
	})
}

// SetDebugTap installs or removes (tap == nil) the trace sink. Safe to
// call at any time.
func (e *Engine) SetDebugTap(tap Tap) {
	e.tapMu.Lock()
	defer e.tapMu.Unlock()
	e.tap = tap
}

func (e *Engine) currentTap() Tap {
	e.tapMu.RLock()
	defer e.tapMu.RUnlock()
	return e.tap
}

// AddRawListener registers fn to receive every event, recognized or not.
func (e *Engine) AddRawListener(fn RawListener) ListenerHandle {
	return e.dispatcher.AddRawListener(fn)
}

// RemoveRawListener unregisters a listener added with AddRawListener.
func (e *Engine) RemoveRawListener(h ListenerHandle) {
	e.dispatcher.RemoveRawListener(h)
}

// SetTypedHandler installs the sole typed event handler, or removes it
// when h is nil.
func (e *Engine) SetTypedHandler(h EventHandler) {
	e.dispatcher.SetTypedHandler(h)
}

// latchedError returns the reader's terminal error, or nil if the
// reader hasn't terminated yet.
func (e *Engine) latchedError() error {
	e.termMu.Lock()
	defer e.termMu.Unlock()
	return e.termErr
}

// Exec writes command (which must already end in CRLF) and, if body is
// non-nil, a dot-stuffed data block, then blocks until the matching
// reply arrives, ctx is done, or the engine terminates. A reply whose
// first line is not a 2xx is returned alongside a *ServerError.
func (e *Engine) Exec(ctx context.Context, command string, body *string) (Reply, error) {
	e.Start()
	if err := e.latchedError(); err != nil {
		return Reply{}, err
	}

	pr := newPendingRequest()

	e.writeMu.Lock()
	if err := e.latchedError(); err != nil {
		e.writeMu.Unlock()
		return Reply{}, err
	}
	if err := e.writeLocked(command, body); err != nil {
		e.writeMu.Unlock()
		return Reply{}, err
	}
	e.pushWaiter(pr)
	e.writeMu.Unlock()

	reply, err := pr.wait(ctx)
	if err != nil {
		return Reply{}, err
	}
	if !reply.Empty() && !reply.IsSuccess() {
		first := reply.First()
		return reply, &ServerError{Status: first.Status, Message: first.Message}
	}
	return reply, nil
}

// SendFireAndForget writes command without enqueuing a waiter. It is
// used for commands after which the daemon may close the connection
// before replying (the shutdown signals) — the subsequent EOF is then
// treated as a clean close rather than an error, since there is no
// pending waiter to cancel.
func (e *Engine) SendFireAndForget(command string) error {
	e.Start()
	if err := e.latchedError(); err != nil {
		return err
	}
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if err := e.latchedError(); err != nil {
		return err
	}
	return e.writeLocked(command, nil)
}

// writeLocked must be called with writeMu held. command must already
// end in CRLF.
func (e *Engine) writeLocked(command string, body *string) error {
	tap := e.currentTap()
	if tap != nil {
		for _, l := range splitTapLines(command) {
			tap.Out(l)
		}
	}
	if _, err := io.WriteString(e.stream, command); err != nil {
		return &TransportClosedError{Cause: err}
	}
	if body == nil {
		return nil
	}
	w := io.Writer(e.stream)
	if tap != nil {
		w = &tappingWriter{w: e.stream, tap: tap}
	}
	if err := encodeDataBlock(w, *body); err != nil {
		return &TransportClosedError{Cause: err}
	}
	return nil
}

// splitTapLines breaks a CRLF- or LF-terminated command string into its
// constituent lines (without terminators) for the debug tap.
func splitTapLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return strings.Split(s, "\r\n")
}

// tappingWriter forwards every write to w while handing each CRLF-
// terminated line within it to tap.Out, used for outgoing data blocks.
type tappingWriter struct {
	w   io.Writer
	tap Tap
}

func (t *tappingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		return n, err
	}
	for _, l := range splitTapLines(string(p)) {
		t.tap.Out(l)
	}
	return n, nil
}

func (e *Engine) pushWaiter(w *pendingRequest) {
	e.waitersMu.Lock()
	e.waiters = append(e.waiters, w)
	e.waitersMu.Unlock()
}

func (e *Engine) popWaiter() *pendingRequest {
	e.waitersMu.Lock()
	defer e.waitersMu.Unlock()
	if len(e.waiters) == 0 {
		return nil
	}
	w := e.waiters[0]
	e.waiters = e.waiters[1:]
	return w
}

// readLoop is the engine's single long-lived reader. It assembles one
// reply at a time, routes events to the dispatcher and responses to the
// oldest waiter, and on any terminal condition latches the error and
// drains the waiter FIFO.
func (e *Engine) readLoop() {
	onLine := func(line string) {
		if tap := e.currentTap(); tap != nil {
			tap.In(line)
		}
	}
	for {
		reply, err := parseReply(e.br, onLine)
		if err != nil {
			if _, ok := err.(*ProtocolError); !ok {
				err = &TransportClosedError{Cause: err}
			}
			e.terminate(err)
			return
		}
		if reply.Empty() {
			e.terminate(nil)
			return
		}
		if reply.IsEvent() {
			e.dispatcher.dispatch(reply)
			continue
		}
		w := e.popWaiter()
		if w == nil {
			logger.Error("torctl: response with no pending request:", reply.First().Status)
			continue
		}
		w.complete(reply, nil)
	}
}

// terminate latches err (or TransportClosedError if err is nil, meaning
// a clean EOF) as the engine's terminal error and cancels every
// remaining waiter with it. Only the first call has effect.
func (e *Engine) terminate(err error) {
	e.termMu.Lock()
	if e.termErr != nil {
		e.termMu.Unlock()
		return
	}
	if err == nil {
		err = &TransportClosedError{}
	}
	e.termErr = err
	e.termMu.Unlock()

	for {
		w := e.popWaiter()
		if w == nil {
			break
		}
		w.complete(Reply{}, err)
	}
	e.shutdownWait.Done()
}

// Shutdown closes the underlying stream and waits up to five seconds for
// the reader goroutine to observe the close and drain. It is safe to call
// even if Start was never called.
func (e *Engine) Shutdown() error {
	closeErr := e.stream.Close()
	e.Start() // idempotent; ensures shutdownWait will eventually clear
	e.shutdownWait.WaitWithTimeout(5 * time.Second)
	return closeErr
}
