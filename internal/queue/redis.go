package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/agenthands/annotator/internal/config"
	"github.com/agenthands/annotator/internal/logger"
)

const keyPrefix = "annotator:"

// RedisBroker keeps pending tasks in a Redis list and task states as JSON
// strings that expire after the result TTL.
type RedisBroker struct {
	rdb       *goredis.Client
	log       *logger.Logger
	queueKey  string
	resultTTL time.Duration
}

func NewRedisBroker(cfg config.RedisConfig, log *logger.Logger) (*RedisBroker, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisBroker(rdb, cfg, log), nil
}

func newRedisBroker(rdb *goredis.Client, cfg config.RedisConfig, log *logger.Logger) *RedisBroker {
	if log == nil {
		log = logger.Nop()
	}
	queue := cfg.Queue
	if queue == "" {
		queue = "annotation"
	}
	return &RedisBroker{
		rdb:       rdb,
		log:       log.With("service", "RedisBroker", "queue", queue),
		queueKey:  keyPrefix + "queue:" + queue,
		resultTTL: cfg.ResultTTL.Duration,
	}
}

func stateKey(id string) string { return keyPrefix + "task:" + id }

func (b *RedisBroker) Enqueue(ctx context.Context, task Task) error {
	rawTask, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task %s: %w", task.ID, err)
	}
	rawState, err := json.Marshal(TaskState{ID: task.ID, Status: StatusPending, UpdatedAt: task.EnqueuedAt})
	if err != nil {
		return fmt.Errorf("encode state %s: %w", task.ID, err)
	}

	_, err = b.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, stateKey(task.ID), rawState, b.resultTTL)
		p.LPush(ctx, b.queueKey, rawTask)
		return nil
	})
	if err != nil {
		return fmt.Errorf("enqueue task %s: %w", task.ID, err)
	}
	b.log.Debug("task enqueued", "task_id", task.ID, "edges", len(task.Edges))
	return nil
}

func (b *RedisBroker) Dequeue(ctx context.Context, wait time.Duration) (*Task, error) {
	vals, err := b.rdb.BRPop(ctx, wait, b.queueKey).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNoTask
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue: %w", err)
	}
	// BRPop answers [key, value].
	if len(vals) != 2 {
		return nil, fmt.Errorf("dequeue: unexpected reply of length %d", len(vals))
	}
	var task Task
	if err := json.Unmarshal([]byte(vals[1]), &task); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &task, nil
}

func (b *RedisBroker) SetState(ctx context.Context, state TaskState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state %s: %w", state.ID, err)
	}
	if err := b.rdb.Set(ctx, stateKey(state.ID), raw, b.resultTTL).Err(); err != nil {
		return fmt.Errorf("store state %s: %w", state.ID, err)
	}
	return nil
}

func (b *RedisBroker) State(ctx context.Context, id string) (TaskState, error) {
	raw, err := b.rdb.Get(ctx, stateKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return TaskState{ID: id, Status: StatusPending}, nil
	}
	if err != nil {
		return TaskState{}, fmt.Errorf("load state %s: %w", id, err)
	}
	var state TaskState
	if err := json.Unmarshal(raw, &state); err != nil {
		return TaskState{}, fmt.Errorf("decode state %s: %w", id, err)
	}
	return state, nil
}

func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

func (b *RedisBroker) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
