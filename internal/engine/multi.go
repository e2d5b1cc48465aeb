package engine

import (
	"context"
	"sync"
	"time"

	s3cerrors "github.com/objcore/s3c/errors"
)

// pendingRequest carries one transaction from a submitter to the driver and
// the outcome back. It is owned by the submitter; the goroutine executing the
// transaction writes the result fields, and the driver then sets done under
// the backend mutex before signalling.
type pendingRequest struct {
	ctx context.Context
	tx  *Transaction

	res  *txResult
	err  *s3cerrors.Error
	done bool
}

// Multiplexed runs a dedicated driver goroutine that services a pending
// queue against the shared connection pool. Submitters enqueue under the
// mutex and block on the condition variable until their request is marked
// done. A submitted request is always in exactly one place: the pending
// queue, the running set, or completed on its way back to the waiter.
type Multiplexed struct {
	operations
	exec *executor

	mu   sync.Mutex
	cond *sync.Cond

	pending []*pendingRequest
	running int
	// stop only transitions false -> true, in Close.
	stop bool

	completions chan *pendingRequest
	driverDone  chan struct{}

	idlePoll time.Duration
}

func newMultiplexed(cfg *Config) (*Multiplexed, *s3cerrors.Error) {
	exec, err := newExecutor(cfg)
	if err != nil {
		return nil, err
	}

	idle := cfg.IdlePoll
	if idle <= 0 {
		idle = 50 * time.Millisecond
	}

	mb := &Multiplexed{
		exec:        exec,
		completions: make(chan *pendingRequest),
		driverDone:  make(chan struct{}),
		idlePoll:    idle,
	}
	mb.cond = sync.NewCond(&mb.mu)
	mb.operations = operations{
		cfg:     cfg,
		logger:  exec.logger,
		perform: mb.submit,
	}

	go mb.driver()
	return mb, nil
}

// submit enqueues the transaction and blocks until the driver marks it done.
func (mb *Multiplexed) submit(ctx context.Context, tx *Transaction) (*txResult, *s3cerrors.Error) {
	req := &pendingRequest{ctx: ctx, tx: tx}

	mb.mu.Lock()
	if mb.stop {
		mb.mu.Unlock()
		return nil, s3cerrors.Newf(tx.Op, s3cerrors.Internal,
			"backend is shutting down")
	}
	mb.pending = append(mb.pending, req)
	mb.cond.Broadcast()

	for !req.done {
		mb.cond.Wait()
	}
	mb.mu.Unlock()

	return req.res, req.err
}

// driver is the backend's only goroutine touching the running set. It moves
// pending requests into execution, then services completions, polling at
// idlePoll intervals while work is in flight so newly queued requests are
// picked up promptly.
func (mb *Multiplexed) driver() {
	defer close(mb.driverDone)

	for {
		mb.mu.Lock()
		for !mb.stop && len(mb.pending) == 0 && mb.running == 0 {
			mb.cond.Wait()
		}
		if mb.stop && len(mb.pending) == 0 && mb.running == 0 {
			mb.mu.Unlock()
			return
		}

		for _, req := range mb.pending {
			mb.running++
			go mb.execute(req)
		}
		mb.pending = mb.pending[:0]
		inFlight := mb.running
		mb.mu.Unlock()

		if inFlight == 0 {
			continue
		}

		idle := time.NewTimer(mb.idlePoll)
		select {
		case req := <-mb.completions:
			mb.complete(req)
		drain:
			for {
				select {
				case more := <-mb.completions:
					mb.complete(more)
				default:
					break drain
				}
			}
		case <-idle.C:
		}
		idle.Stop()
	}
}

// execute runs one transaction and hands it back to the driver.
func (mb *Multiplexed) execute(req *pendingRequest) {
	req.res, req.err = mb.exec.Do(req.ctx, req.tx)
	mb.completions <- req
}

// complete records the outcome and wakes the waiting submitter. One
// broadcast per completed request.
func (mb *Multiplexed) complete(req *pendingRequest) {
	mb.mu.Lock()
	req.done = true
	mb.running--
	mb.cond.Broadcast()
	mb.mu.Unlock()
}

// Close stops intake, waits for every submitted request to complete or be
// rejected, then joins the driver. After Close returns no waiter can
// observe an unfinished request.
func (mb *Multiplexed) Close() error {
	mb.mu.Lock()
	if mb.stop {
		mb.mu.Unlock()
		<-mb.driverDone
		return nil
	}
	mb.stop = true
	mb.cond.Broadcast()
	mb.mu.Unlock()

	<-mb.driverDone
	mb.exec.httpc.CloseIdleConnections()
	mb.logger.Debug("multiplexed backend stopped")
	return nil
}
