package torctl

import (
	"context"
	"sync"
)

// pendingRequest is a waiter: a slot a caller of Exec blocks on until its
// matching reply arrives or the engine terminates. Completion is
// exactly-once; a late completion after the caller has already given up
// (context canceled) is silently discarded.
type pendingRequest struct {
	done      chan struct{}
	mu        sync.Mutex
	reply     Reply
	err       error
	completed bool
}

func newPendingRequest() *pendingRequest {
	return &pendingRequest{done: make(chan struct{})}
}

// complete delivers reply/err to the waiter. Only the first call has any
// effect; later calls (e.g. a real reply arriving after the caller
// already canceled) are no-ops.
func (p *pendingRequest) complete(reply Reply, err error) {
	p.mu.Lock()
	if p.completed {
		p.mu.Unlock()
		return
	}
	p.completed = true
	p.reply = reply
	p.err = err
	p.mu.Unlock()
	close(p.done)
}

// wait blocks until the waiter completes or ctx is done. If ctx fires
// first, the waiter is completed locally with a CanceledError so that a
// reply arriving afterward (FIFO ordering is never broken by
// cancellation — the waiter stays in the queue) is discarded rather
// than delivered to a caller who is no longer listening.
func (p *pendingRequest) wait(ctx context.Context) (Reply, error) {
	select {
	case <-p.done:
		return p.reply, p.err
	case <-ctx.Done():
		p.complete(Reply{}, &CanceledError{})
		return Reply{}, &CanceledError{}
	}
}
