package queue

import (
	"context"
	"sync"
	"time"
)

// MemoryBroker is an in-process Broker for tests and one-shot runs.
type MemoryBroker struct {
	mu     sync.Mutex
	tasks  chan Task
	states map[string]TaskState
}

func NewMemoryBroker(capacity int) *MemoryBroker {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryBroker{
		tasks:  make(chan Task, capacity),
		states: make(map[string]TaskState),
	}
}

func (b *MemoryBroker) Enqueue(ctx context.Context, task Task) error {
	b.mu.Lock()
	b.states[task.ID] = TaskState{ID: task.ID, Status: StatusPending, UpdatedAt: task.EnqueuedAt}
	b.mu.Unlock()

	select {
	case b.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MemoryBroker) Dequeue(ctx context.Context, wait time.Duration) (*Task, error) {
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case task := <-b.tasks:
		return &task, nil
	case <-t.C:
		return nil, ErrNoTask
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *MemoryBroker) SetState(ctx context.Context, state TaskState) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states[state.ID] = state
	return nil
}

func (b *MemoryBroker) State(ctx context.Context, id string) (TaskState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.states[id]; ok {
		return s, nil
	}
	return TaskState{ID: id, Status: StatusPending}, nil
}

func (b *MemoryBroker) Ping(ctx context.Context) error { return nil }

func (b *MemoryBroker) Close() error { return nil }
