package runner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stackrun/pkg/dag"
	"github.com/matzehuels/stackrun/pkg/errors"
	"github.com/matzehuels/stackrun/pkg/manifest"
	"github.com/matzehuels/stackrun/pkg/observability"
)

// source hands out packages that are ready to start. It is only touched by
// the goroutine driving the pool.
type source interface {
	next() []*manifest.Package
	done(pkg *manifest.Package)
	pending() int
}

// graphSource serves packages in dependency order from a query graph.
type graphSource struct {
	q     *dag.QueryGraph
	taken map[string]*dag.Node
}

func (s *graphSource) next() []*manifest.Package {
	nodes := s.q.AvailablePackages()
	if len(nodes) == 0 {
		return nil
	}
	if s.taken == nil {
		s.taken = make(map[string]*dag.Node)
	}
	pkgs := make([]*manifest.Package, len(nodes))
	for i, n := range nodes {
		s.q.MarkAsTaken(n.Name)
		s.taken[n.Name] = n
		pkgs[i] = n.Pkg
	}
	return pkgs
}

func (s *graphSource) done(pkg *manifest.Package) {
	if n, ok := s.taken[pkg.Name]; ok {
		delete(s.taken, pkg.Name)
		s.q.MarkAsDone(n)
	}
}

func (s *graphSource) pending() int { return s.q.Pending() }

// listSource serves every package at once.
type listSource struct {
	pkgs    []*manifest.Package
	emitted bool
}

func (s *listSource) next() []*manifest.Package {
	if s.emitted {
		return nil
	}
	s.emitted = true
	return s.pkgs
}

func (s *listSource) done(*manifest.Package) {}
func (s *listSource) pending() int           { return 0 }

type outcome[T any] struct {
	pkg   *manifest.Package
	value T
	err   error
}

// pool runs tasks on a fixed set of workers. The goroutine calling run owns
// the source and the queue; workers only execute tasks and report back on
// results.
type pool[T any] struct {
	ctx         context.Context
	runID       string
	task        Task[T]
	concurrency int
	src         source

	queue    []*manifest.Package
	jobs     chan *manifest.Package
	results  chan outcome[T]
	inflight int
	out      []T
}

func newPool[T any](ctx context.Context, runID string, task Task[T], concurrency int, src source) *pool[T] {
	return &pool[T]{
		ctx:         ctx,
		runID:       runID,
		task:        task,
		concurrency: concurrency,
		src:         src,
	}
}

func (p *pool[T]) run(total int) ([]T, error) {
	hooks := observability.Runner()
	start := time.Now()
	hooks.OnRunStart(p.ctx, p.runID, total, p.concurrency)

	out, err := p.drive(total)

	hooks.OnRunComplete(p.ctx, p.runID, time.Since(start), err)
	return out, err
}

func (p *pool[T]) drive(total int) ([]T, error) {
	// Every package reports exactly once, so a buffer of total results lets
	// stragglers finish after an early return without blocking.
	p.jobs = make(chan *manifest.Package, p.concurrency)
	p.results = make(chan outcome[T], max(total, 1))
	p.out = make([]T, 0, total)

	for range min(p.concurrency, max(total, 1)) {
		go p.worker()
	}
	defer close(p.jobs)

	p.queue = append(p.queue, p.src.next()...)
	for {
		if err := p.ctx.Err(); err != nil {
			return nil, err
		}
		p.dispatch()
		if p.inflight == 0 {
			break
		}

		select {
		case r := <-p.results:
			p.inflight--
			if r.err != nil {
				return nil, &errors.TaskError{Package: r.pkg.Name, Err: r.err}
			}
			p.out = append(p.out, r.value)
			p.src.done(r.pkg)
			p.queue = append(p.queue, p.src.next()...)
		case <-p.ctx.Done():
			return nil, p.ctx.Err()
		}
	}

	if n := p.src.pending(); n > 0 {
		return nil, errors.New(errors.ErrCodeStalled,
			"%d packages never became ready", n)
	}
	return p.out, nil
}

// dispatch starts queued packages until the pool is saturated.
func (p *pool[T]) dispatch() {
	for p.inflight < p.concurrency && len(p.queue) > 0 {
		pkg := p.queue[0]
		p.queue = p.queue[1:]
		p.inflight++
		p.jobs <- pkg
	}
}

func (p *pool[T]) worker() {
	for pkg := range p.jobs {
		p.results <- p.execute(pkg)
	}
}

func (p *pool[T]) execute(pkg *manifest.Package) (r outcome[T]) {
	hooks := observability.Runner()
	hooks.OnTaskStart(p.ctx, p.runID, pkg.Name)
	start := time.Now()

	r.pkg = pkg
	defer func() {
		if rec := recover(); rec != nil {
			r.err = errors.New(errors.ErrCodeInternal, "task panicked: %v", rec)
		}
		hooks.OnTaskComplete(p.ctx, p.runID, pkg.Name, time.Since(start), r.err)
	}()

	r.value, r.err = p.task(p.ctx, pkg)
	return r
}

func newRunID() string { return uuid.NewString() }

func notifyCycles(ctx context.Context, runID string, cycles []*dag.CyclicNode) {
	hooks := observability.Runner()
	for _, c := range cycles {
		hooks.OnCycle(ctx, runID, c.Names())
	}
}
