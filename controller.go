package torctl

import (
	"context"
	"errors"
	"io"
)

// Controller is the command-surface facade over an Engine: one method
// per control-protocol verb, formatting arguments and tracking the
// connection's Fresh -> Authenticated -> Active -> Closed state machine.
type Controller struct {
	engine *Engine
	state  stateMachine
}

// Option configures a Controller at construction time.
type Option func(*Controller)

// WithDebugTap installs tap as the engine's trace sink.
func WithDebugTap(tap Tap) Option {
	return func(c *Controller) { c.engine.SetDebugTap(tap) }
}

// WithTypedHandler installs h as the engine's typed event handler.
func WithTypedHandler(h EventHandler) Option {
	return func(c *Controller) { c.engine.SetTypedHandler(h) }
}

// NewController wraps stream in an Engine and applies opts.
func NewController(stream io.ReadWriteCloser, opts ...Option) *Controller {
	c := &Controller{engine: NewEngine(stream)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Engine returns the underlying protocol engine, for callers who need
// raw Exec access or want to add additional raw listeners.
func (c *Controller) Engine() *Engine { return c.engine }

// State returns the connection's current state.
func (c *Controller) State() ConnState {
	if c.engine.latchedError() != nil {
		c.state.close()
	}
	return c.state.get()
}

// Start begins the engine's background reader. Optional: the first
// command implicitly starts it.
func (c *Controller) Start() { c.engine.Start() }

// Close tears down the local engine: it closes the underlying stream
// and waits briefly for the reader to observe the closed connection. It
// does not ask Tor to exit — use ShutdownTor for that.
func (c *Controller) Close() error {
	defer c.state.close()
	return c.engine.Shutdown()
}

// exec is the shared verb-wrapper helper: it validates verb against the
// current state, runs the command, and advances the state machine on
// success. Failure-class replies (ServerError) never change state.
func (c *Controller) exec(ctx context.Context, verb, line string, body *string) (Reply, error) {
	if err := c.engine.latchedError(); err != nil {
		c.state.close()
		return Reply{}, err
	}
	if err := c.state.checkVerb(verb); err != nil {
		return Reply{}, err
	}
	reply, err := c.engine.Exec(ctx, line, body)
	if err != nil {
		var serverErr *ServerError
		if errors.As(err, &serverErr) {
			return reply, err
		}
		var closedErr *TransportClosedError
		if errors.As(err, &closedErr) || c.engine.latchedError() != nil {
			c.state.close()
		}
		return reply, err
	}
	c.state.onSuccess(verb)
	return reply, nil
}
