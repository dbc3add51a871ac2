package justify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/annotator/internal/core/model"
)

type MockLLMClient struct {
	mu       sync.Mutex
	Response string
	Err      error
	FailOn   string
	Systems  []string
	Users    []string

	inFlight    int32
	maxInFlight int32
}

func (m *MockLLMClient) Generate(ctx context.Context, system, user string) (string, error) {
	n := atomic.AddInt32(&m.inFlight, 1)
	defer atomic.AddInt32(&m.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&m.maxInFlight)
		if n <= peak || atomic.CompareAndSwapInt32(&m.maxInFlight, peak, n) {
			break
		}
	}

	m.mu.Lock()
	m.Systems = append(m.Systems, system)
	m.Users = append(m.Users, user)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if m.FailOn != "" && strings.Contains(user, m.FailOn) {
		return "", errors.New("llm unavailable")
	}
	return m.Response + " " + user, nil
}

func TestGenerateSelectsPrompt(t *testing.T) {
	mockLLM := &MockLLMClient{Response: "ok"}
	g := NewGenerator(mockLLM, 1)

	_, err := g.Generate(context.Background(), "TP53", "MDM2", true)
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "TP53", "MDM2", false)
	require.NoError(t, err)

	assert.Equal(t, SystemPrompt(true), mockLLM.Systems[0])
	assert.Equal(t, SystemPrompt(false), mockLLM.Systems[1])
	assert.Contains(t, mockLLM.Systems[0], "source gene may have on the target gene")
	assert.Contains(t, mockLLM.Systems[1], "between these genes")
	assert.Equal(t, "Source gene name: TP53\nTarget gene name: MDM2.", mockLLM.Users[0])
}

func TestGenerateSentinelIsNotAnError(t *testing.T) {
	g := NewGenerator(&sentinelLLM{}, 1)
	out, err := g.Generate(context.Background(), "A", "B", false)
	require.NoError(t, err)
	assert.Equal(t, NoRelationship, out)
}

type sentinelLLM struct{}

func (sentinelLLM) Generate(ctx context.Context, system, user string) (string, error) {
	return NoRelationship, nil
}

func TestGenerateWrapsFailure(t *testing.T) {
	cause := errors.New("boom")
	g := NewGenerator(&MockLLMClient{Err: cause}, 1)
	_, err := g.Generate(context.Background(), "A", "B", true)
	assert.ErrorIs(t, err, cause)
}

func TestAnnotateSetsEveryEdge(t *testing.T) {
	mockLLM := &MockLLMClient{Response: "why:"}
	g := NewGenerator(mockLLM, 2)

	edges := make([]model.Edge, 10)
	for i := range edges {
		edges[i] = model.Edge{
			Source: model.Node{ID: "S", Name: "src"},
			Target: model.Node{ID: "T", Name: string(rune('a' + i))},
		}
	}

	require.NoError(t, g.Annotate(context.Background(), edges, true))
	for i, e := range edges {
		require.NotNil(t, e.Justification, "edge %d", i)
		assert.Contains(t, *e.Justification, "Target gene name: "+string(rune('a'+i)))
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&mockLLM.maxInFlight), int32(2))
}

func TestAnnotateFailsRun(t *testing.T) {
	g := NewGenerator(&MockLLMClient{Response: "ok", FailOn: "BAD"}, 3)
	edges := []model.Edge{
		{Source: model.Node{Name: "A"}, Target: model.Node{Name: "B"}},
		{Source: model.Node{Name: "A"}, Target: model.Node{Name: "BAD"}},
	}
	assert.Error(t, g.Annotate(context.Background(), edges, false))
}

func TestNewGeneratorClampsConcurrency(t *testing.T) {
	assert.Equal(t, 1, NewGenerator(&MockLLMClient{}, 0).Concurrency)
}
