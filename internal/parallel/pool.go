// Package parallel provides bounded-concurrency row fan-out for the
// heavier subword operators (spec §5: operator evaluation must be pure and
// safely invokable in parallel across disjoint tensor sets). It adapts a
// channel-based token-pool pattern, of the kind used for ONNX session
// reuse, into a worker-slot pool for per-row batch work.
package parallel

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Acquire once the pool has been closed.
var ErrPoolClosed = errors.New("parallel: pool closed")

// Pool bounds concurrent execution to size workers via a buffered token
// channel: acquiring a slot blocks until one is free or ctx is canceled.
type Pool struct {
	tokens chan struct{}
	mu     sync.Mutex
	closed bool
}

// NewPool creates a pool that admits at most size concurrent slots.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{tokens: make(chan struct{}, size)}
	for i := 0; i < size; i++ {
		p.tokens <- struct{}{}
	}
	return p
}

// Acquire blocks until a slot is free, ctx is canceled, or the pool is
// closed.
func (p *Pool) Acquire(ctx context.Context) error {
	select {
	case _, ok := <-p.tokens:
		p.mu.Lock()
		closed := p.closed
		p.mu.Unlock()
		if !ok || closed {
			return ErrPoolClosed
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot to the pool.
func (p *Pool) Release() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	select {
	case p.tokens <- struct{}{}:
	default:
	}
}

// Close marks the pool closed; any blocked or future Acquire returns
// ErrPoolClosed.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.tokens)
}

// ForEachRow runs fn(row) for every row in [0, numRows) across at most
// size concurrent workers, stopping early and returning the first non-nil
// error (or ctx's error on cancellation). fn must be safe to invoke
// concurrently on disjoint rows, per spec §5's operator concurrency
// contract.
func ForEachRow(ctx context.Context, numRows, size int, fn func(row int) error) error {
	if numRows == 0 {
		return nil
	}
	pool := NewPool(size)
	defer pool.Close()

	var wg sync.WaitGroup
	errCh := make(chan error, numRows)
	rowCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var acquireErr error
	for row := 0; row < numRows; row++ {
		row := row
		if err := pool.Acquire(rowCtx); err != nil {
			acquireErr = err
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer pool.Release()
			if err := fn(row); err != nil {
				select {
				case errCh <- err:
					cancel()
				default:
				}
			}
		}()
	}

	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		return err
	}
	return acquireErr
}
