package build

import (
	"context"
	"runtime"
)

// Pool bounds the number of concurrent builds. Gradle invocations are
// memory-hungry; running one per CPU is already generous.
type Pool struct {
	sem chan struct{}
}

// NewPool creates a pool of n slots. n <= 0 uses GOMAXPROCS.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return &Pool{sem: make(chan struct{}, n)}
}

// Do runs fn while holding a pool slot, blocking until one is free or the
// context is cancelled.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.sem }()
	return fn()
}
