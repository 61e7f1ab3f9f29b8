package torctl

import (
	"strconv"
	"strings"
	"sync"

	"github.com/torproject/torctl/internal/logger"
)

// ListenerHandle identifies a raw listener previously registered with
// Dispatcher.AddRawListener, for later removal.
type ListenerHandle struct {
	id int
}

// Dispatcher recognizes event names, decomposes their arguments for a
// typed EventHandler, and delivers every event to zero or more raw
// listeners. It never suspends the reader: listener invocations are
// synchronous on the reader's goroutine and panics are contained.
type Dispatcher struct {
	mu       sync.Mutex
	nextID   int
	raw      map[int]RawListener
	handler  EventHandler
}

func newDispatcher() *Dispatcher {
	return &Dispatcher{raw: make(map[int]RawListener)}
}

// AddRawListener registers fn to receive every (eventName, rest) pair.
func (d *Dispatcher) AddRawListener(fn RawListener) ListenerHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.raw[id] = fn
	return ListenerHandle{id: id}
}

// RemoveRawListener unregisters a listener previously returned by
// AddRawListener. Removing an already-removed or unknown handle is a
// no-op.
func (d *Dispatcher) RemoveRawListener(h ListenerHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.raw, h.id)
}

// SetTypedHandler installs h as the sole typed handler, replacing any
// previous one. Passing nil disables typed decoding; raw listeners are
// unaffected.
func (d *Dispatcher) SetTypedHandler(h EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handler = h
}

// dispatch decomposes every line of an event Reply and forwards it to
// the registered listeners and typed handler.
func (d *Dispatcher) dispatch(reply Reply) {
	d.mu.Lock()
	listeners := make([]RawListener, 0, len(d.raw))
	for _, fn := range d.raw {
		listeners = append(listeners, fn)
	}
	handler := d.handler
	d.mu.Unlock()

	for _, line := range reply.Lines {
		name, rest := splitEventMessage(line.Message)
		for _, fn := range listeners {
			callRawListener(fn, name, rest)
		}
		if handler != nil {
			decodeEvent(handler, name, rest)
		}
	}
}

func splitEventMessage(message string) (name, rest string) {
	idx := strings.IndexByte(message, ' ')
	if idx < 0 {
		return strings.ToUpper(message), ""
	}
	return strings.ToUpper(message[:idx]), message[idx+1:]
}

func callRawListener(fn RawListener, name, rest string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("torctl: raw event listener panicked:", r)
		}
	}()
	fn(name, rest)
}

func decodeEvent(h EventHandler, name, rest string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("torctl: typed event handler panicked:", r)
		}
	}()
	switch {
	case name == EventCirc:
		tokens := strings.Fields(rest)
		circID := tokenAt(tokens, 0)
		status := tokenAt(tokens, 1)
		path := ""
		if len(tokens) > 2 && status != "LAUNCHED" {
			path = tokens[2]
		}
		h.Circ(status, circID, path)
	case name == EventStream:
		tokens := strings.Fields(rest)
		h.Stream(tokenAt(tokens, 1), tokenAt(tokens, 0), tokenAt(tokens, 3))
	case name == EventORConn:
		tokens := strings.Fields(rest)
		h.ORConn(tokenAt(tokens, 1), tokenAt(tokens, 0))
	case name == EventBW:
		tokens := strings.Fields(rest)
		read, _ := strconv.ParseInt(tokenAt(tokens, 0), 10, 64)
		written, _ := strconv.ParseInt(tokenAt(tokens, 1), 10, 64)
		h.BW(read, written)
	case name == EventNewDesc:
		h.NewDesc(strings.Fields(rest))
	case logSeverities[name]:
		h.LogMessage(name, rest)
	default:
		h.Unrecognized(name, rest)
	}
}

func tokenAt(tokens []string, i int) string {
	if i < len(tokens) {
		return tokens[i]
	}
	return ""
}
