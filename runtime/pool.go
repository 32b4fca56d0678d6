package runtime

import (
	"context"
	"sync"
)

// Pool reuses runtimes built with the same options. Runtimes dropped by
// the underlying sync.Pool are left to the garbage collector.
type Pool struct {
	opts []Option
	pool sync.Pool
	err  error
	mu   sync.Mutex
}

// NewPool creates a pool whose runtimes are built with opts. Pass
// WithRegistry to share declarations between the pooled runtimes.
func NewPool(opts ...Option) *Pool {
	return &Pool{opts: opts}
}

// Get returns an idle runtime or creates one.
func (p *Pool) Get() (*Runtime, error) {
	if rt, ok := p.pool.Get().(*Runtime); ok && !rt.L.IsClosed() {
		return rt, nil
	}
	rt, err := New(p.opts...)
	if err != nil {
		p.mu.Lock()
		p.err = err
		p.mu.Unlock()
		return nil, err
	}
	return rt, nil
}

// Put resets the stack and context of rt and returns it to the pool.
// Globals set by scripts survive.
func (p *Pool) Put(rt *Runtime) {
	if rt == nil || rt.L.IsClosed() {
		return
	}
	rt.L.SetTop(0)
	rt.L.RemoveContext()
	p.pool.Put(rt)
}

// Do runs fn with a pooled runtime bound to ctx.
func (p *Pool) Do(ctx context.Context, fn func(rt *Runtime) error) error {
	rt, err := p.Get()
	if err != nil {
		return err
	}
	defer p.Put(rt)

	rt.L.SetContext(ctx)
	return fn(rt)
}

// Err returns the last error met while creating a runtime.
func (p *Pool) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
