package pool

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	minConcurrency = 1
)

type Config struct {
	Concurrency int
	Capacity    int
}

// WorkerPool runs executor over every enqueued task on Concurrency goroutines. The first
// executor error cancels the pool and is returned by Close. A closed pool can be started again.
type WorkerPool[T any] struct {
	tasks       chan T
	executor    func(ctx context.Context, task T) error
	g           *errgroup.Group
	ctx         context.Context
	ctxCancel   context.CancelCauseFunc
	concurrency int
	capacity    int
}

func New[T any](executor func(ctx context.Context, task T) error, config *Config) (*WorkerPool[T], error) {
	if config.Concurrency < minConcurrency {
		return nil, errors.New("number of workers must be greater than 0")
	}

	return &WorkerPool[T]{
		tasks:       make(chan T, config.Capacity),
		executor:    executor,
		ctx:         context.Background(),
		concurrency: config.Concurrency,
		capacity:    config.Capacity,
	}, nil
}

func (p *WorkerPool[T]) Start(ctx context.Context) {
	p.reset()

	p.ctx, p.ctxCancel = context.WithCancelCause(ctx)

	for i := 0; i < p.concurrency; i++ {
		p.g.Go(func() error {
			if err := p.listen(p.ctx); err != nil {
				p.ctxCancel(err)
				return err
			}

			return nil
		})
	}
}

// Enqueue blocks until a worker accepts task. It returns the cancellation cause instead
// if the pool has been canceled.
func (p *WorkerPool[T]) Enqueue(task T) error {
	select {
	case p.tasks <- task:
		return nil
	case <-p.ctx.Done():
		return context.Cause(p.ctx)
	}
}

func (p *WorkerPool[T]) Pending() int {
	return len(p.tasks)
}

func (p *WorkerPool[T]) Close() error {
	close(p.tasks)
	err := p.g.Wait()
	p.ctxCancel(err)
	return err
}

func (p *WorkerPool[T]) listen(ctx context.Context) error {
	for task := range p.tasks {
		if ctx.Err() != nil {
			continue // drain
		}

		if err := p.executor(ctx, task); err != nil {
			return errors.Wrap(err, "ERROR: could not process task")
		}
	}

	return context.Cause(ctx)
}

func (p *WorkerPool[T]) reset() {
	p.tasks = make(chan T, p.capacity)
	p.g = new(errgroup.Group)
}
