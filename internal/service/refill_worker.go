package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// Refiller is anything that can top up the round queue
type Refiller interface {
	Refill(ctx context.Context) (int, error)
}

// RefillWorker runs background refills submitted by Trigger.
// Triggers coalesce: while one refill is pending, further triggers are dropped.
type RefillWorker struct {
	refiller Refiller
	timeout  time.Duration
	jobs     chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRefillWorker creates a new refill worker; call Start to begin processing
func NewRefillWorker(refiller Refiller, timeout time.Duration) *RefillWorker {
	return &RefillWorker{
		refiller: refiller,
		timeout:  timeout,
		jobs:     make(chan struct{}, 1),
	}
}

// Start launches the worker goroutine. Triggers sent before Start run once it begins.
func (w *RefillWorker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop cancels any running refill and waits for the worker to exit
func (w *RefillWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

// Trigger submits a refill without waiting for it. Returns false if one was already pending.
func (w *RefillWorker) Trigger() bool {
	select {
	case w.jobs <- struct{}{}:
		return true
	default:
		return false
	}
}

func (w *RefillWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.jobs:
			w.refillOnce(ctx)
		}
	}
}

func (w *RefillWorker) refillOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Refill] Recovered from panic in background refill: %v", r)
		}
	}()

	jobCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if _, err := w.refiller.Refill(jobCtx); err != nil {
		log.Printf("[Refill] Background refill failed: %v", err)
	}
}
