package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/annotator/internal/core/model"
)

func TestMemoryBrokerLifecycle(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker(4)

	task := Task{ID: "t1", Edges: []model.Edge{{Source: model.Node{ID: "A"}, Target: model.Node{ID: "B"}}}, Directed: true}
	require.NoError(t, b.Enqueue(ctx, task))

	st, err := b.State(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, st.Status)

	got, err := b.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
	assert.True(t, got.Directed)

	require.NoError(t, b.SetState(ctx, TaskState{ID: "t1", Status: StatusSuccess, Result: &model.Annotation{Status: model.EvidenceAbsent}}))
	st, err = b.State(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, model.EvidenceAbsent, st.Result.Status)
}

func TestMemoryBrokerUnknownIsPending(t *testing.T) {
	st, err := NewMemoryBroker(1).State(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, TaskState{ID: "nope", Status: StatusPending}, st)
}

func TestMemoryBrokerDequeueWaits(t *testing.T) {
	_, err := NewMemoryBroker(1).Dequeue(context.Background(), 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrNoTask)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewMemoryBroker(1).Dequeue(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
