// Package worker executes queued annotation tasks.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/annotator/internal/core/model"
	"github.com/agenthands/annotator/internal/logger"
	"github.com/agenthands/annotator/internal/queue"
	"github.com/agenthands/annotator/internal/transport"
)

// Runner is the unit of work a task executes.
type Runner interface {
	Run(ctx context.Context, edges []model.Edge, directed bool, timeout time.Duration) (*model.Annotation, error)
}

type Pool struct {
	Broker      queue.Broker
	Runner      Runner
	Log         *logger.Logger
	Concurrency int
	BlockFor    time.Duration
}

func NewPool(broker queue.Broker, runner Runner, concurrency int, blockFor time.Duration, log *logger.Logger) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	if blockFor <= 0 {
		blockFor = 5 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Pool{
		Broker:      broker,
		Runner:      runner,
		Log:         log.With("service", "WorkerPool"),
		Concurrency: concurrency,
		BlockFor:    blockFor,
	}
}

// Run consumes tasks until ctx is cancelled. Each worker handles one task at
// a time; a task that is running when ctx ends is abandoned, not re-queued.
func (p *Pool) Run(ctx context.Context) error {
	p.Log.Info("worker pool started", "concurrency", p.Concurrency)
	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < p.Concurrency; i++ {
		id := i
		eg.Go(func() error {
			return p.loop(egCtx, id)
		})
	}
	err := eg.Wait()
	p.Log.Info("worker pool stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (p *Pool) loop(ctx context.Context, id int) error {
	log := p.Log.With("worker", id)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		task, err := p.Broker.Dequeue(ctx, p.BlockFor)
		if errors.Is(err, queue.ErrNoTask) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("dequeue failed", "error", err)
			if err := sleep(ctx, time.Second); err != nil {
				return err
			}
			continue
		}
		p.Process(ctx, task)
	}
}

// Process runs one task and records its final state.
func (p *Pool) Process(ctx context.Context, task *queue.Task) {
	log := p.Log.With("task_id", task.ID)
	started := time.Now()

	if err := p.Broker.SetState(ctx, queue.TaskState{ID: task.ID, Status: queue.StatusStarted, UpdatedAt: started}); err != nil {
		log.Warn("failed to mark task started", "error", err)
	}
	log.Info("task started", "edges", len(task.Edges), "directed", task.Directed)

	state := queue.TaskState{ID: task.ID}
	annotation, err := p.run(ctx, task)
	if err != nil {
		state.Status = queue.StatusFailure
		state.Error = err.Error()
		kv := []interface{}{"error", err, "elapsed", time.Since(started).String()}
		if code := transport.StatusCode(err); code != 0 {
			kv = append(kv, "status_code", code)
		}
		log.Error("task failed", kv...)
	} else {
		state.Status = queue.StatusSuccess
		state.Result = annotation
		log.Info("task succeeded", "evidence_status", string(annotation.Status), "elapsed", time.Since(started).String())
	}
	state.UpdatedAt = time.Now()

	// Store the outcome even if ctx was cancelled mid-run.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := p.Broker.SetState(storeCtx, state); err != nil {
		log.Error("failed to store task state", "error", err)
	}
}

func (p *Pool) run(ctx context.Context, task *queue.Task) (annotation *model.Annotation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return p.Runner.Run(ctx, task.Edges, task.Directed, task.Timeout)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
