package jit

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Pool compiles programs concurrently, each worker using its own Jit.
type Pool struct {
	idle chan *Jit
	all  []*Jit
}

// NewPool creates Config.PoolSize Jit instances
func NewPool(opts ...Option) (*Pool, error) {
	cfg := newConfig(opts...)
	p := &Pool{idle: make(chan *Jit, cfg.PoolSize)}
	for i := 0; i < cfg.PoolSize; i++ {
		j, err := newJit(cfg)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.all = append(p.all, j)
		p.idle <- j
	}
	return p, nil
}

// Size returns the number of Jit instances
func (p *Pool) Size() int {
	return len(p.all)
}

// Compile compiles one program on the next idle Jit
func (p *Pool) Compile(ctx context.Context, program string) (*Routine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case j := <-p.idle:
		defer func() { p.idle <- j }()
		return j.Compile(program)
	}
}

// CompileAll compiles programs in parallel. The first failure cancels the
// compilations not yet started and is returned.
func (p *Pool) CompileAll(ctx context.Context, programs []string) ([]*Routine, error) {
	routines := make([]*Routine, len(programs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(len(p.all))
	for i, program := range programs {
		g.Go(func() error {
			r, err := p.Compile(ctx, program)
			if err != nil {
				return err
			}
			routines[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return routines, nil
}

// Close closes every Jit, invalidating all routines compiled by the pool
func (p *Pool) Close() error {
	var errs []error
	for _, j := range p.all {
		errs = append(errs, j.Close())
	}
	return errors.Join(errs...)
}
