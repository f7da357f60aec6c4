package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"ubot-platform/internal/infra/metrics"
)

var (
	// ErrQueueFull is returned by Submit when every slot of the queue is taken.
	ErrQueueFull = errors.New("worker queue full")
	ErrStopped   = errors.New("worker pool stopped")
)

// Task is a unit of background work, e.g. an asynchronous voucher batch.
type Task func(ctx context.Context) error

// Pool is a small fixed-size worker pool with a bounded queue.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan namedTask
	quit chan struct{}
	stop sync.Once
	n    int
	log  *zerolog.Logger
}

type namedTask struct {
	name string
	run  Task
}

func NewPool(workers, queue int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queue <= 0 {
		queue = workers * 4
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Pool{jobs: make(chan namedTask, queue), quit: make(chan struct{}), n: workers, log: logger}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case t := <-p.jobs:
					p.run(ctx, id, t)
				}
			}
		}(i)
	}
}

func (p *Pool) run(ctx context.Context, id int, t namedTask) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Int("worker", id).Str("task", t.name).Msg("task panicked")
		}
	}()
	if err := t.run(ctx); err != nil {
		p.log.Error().Err(err).Int("worker", id).Str("task", t.name).Msg("task failed")
		return
	}
	p.log.Debug().Int("worker", id).Str("task", t.name).Msg("task done")
}

// Stop signals workers to exit and waits for in-flight tasks. Tasks still
// queued are not run; each is logged and counted, and the number is
// returned. Safe to call more than once.
func (p *Pool) Stop() int {
	p.stop.Do(func() { close(p.quit) })
	p.wg.Wait()

	dropped := 0
	for {
		select {
		case t := <-p.jobs:
			dropped++
			metrics.IncBackgroundJob(t.name, "dropped")
			p.log.Warn().Str("task", t.name).Msg("queued task dropped at shutdown")
		default:
			if dropped > 0 {
				p.log.Warn().Int("dropped", dropped).Msg("worker pool stopped with queued tasks")
			}
			return dropped
		}
	}
}

// Submit enqueues task without blocking. It fails with ErrStopped once Stop
// has been called.
func (p *Pool) Submit(name string, task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case <-p.quit:
		return ErrStopped
	default:
	}
	select {
	case p.jobs <- namedTask{name: name, run: task}:
		return nil
	default:
		return ErrQueueFull
	}
}
