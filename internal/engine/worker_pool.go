package engine

import (
	"context"
	"sync"
)

// job is the unit of work dispatched to a worker.
type job[T any] struct {
	payload T
}

// workerPool is a fixed-size goroutine pool with a bounded input queue.
// Every processed job is handed to collect from the worker goroutine.
type workerPool[T, R any] struct {
	queue   chan job[T]
	process func(ctx context.Context, t T) (R, error)
	collect func(t T, r R)
	wg      sync.WaitGroup

	errOnce sync.Once
	err     error
}

// newWorkerPool creates and starts a pool with n goroutines and queue capacity cap.
func newWorkerPool[T, R any](ctx context.Context, n, cap int, fn func(context.Context, T) (R, error), collect func(T, R)) *workerPool[T, R] {
	if n < 1 {
		n = 1
	}
	p := &workerPool[T, R]{
		queue:   make(chan job[T], cap),
		process: fn,
		collect: collect,
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(ctx)
		}()
	}
	return p
}

func (p *workerPool[T, R]) run(ctx context.Context) {
	for {
		select {
		case j, ok := <-p.queue:
			if !ok {
				return
			}
			r, err := p.process(ctx, j.payload)
			if err != nil {
				p.fail(err)
				continue
			}
			if p.collect != nil {
				p.collect(j.payload, r)
			}
		case <-ctx.Done():
			p.fail(ctx.Err())
			return
		}
	}
}

func (p *workerPool[T, R]) fail(err error) {
	p.errOnce.Do(func() { p.err = err })
}

// Submit enqueues a job, blocking while the queue is full.
func (p *workerPool[T, R]) Submit(ctx context.Context, t T) error {
	select {
	case p.queue <- job[T]{payload: t}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain closes the queue, waits for all workers to finish and returns the
// first processing error.
func (p *workerPool[T, R]) Drain() error {
	close(p.queue)
	p.wg.Wait()
	return p.err
}
