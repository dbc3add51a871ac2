package core

import (
	"context"
	"time"

	"github.com/agenthands/annotator/internal/core/model"
)

type MockJustifier struct {
	Text  string
	Err   error
	Calls int
}

func (m *MockJustifier) Annotate(ctx context.Context, edges []model.Edge, directed bool) error {
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	for i := range edges {
		text := m.Text
		edges[i].Justification = &text
	}
	return nil
}

type MockReasoner struct {
	PK        string
	Result    model.PollResult
	SubmitErr error
	PollErr   error
	Submitted []model.QueryGraph
	Timeout   time.Duration
	// Block makes Poll wait for cancellation.
	Block bool
}

func (m *MockReasoner) Submit(ctx context.Context, g model.QueryGraph) (string, error) {
	m.Submitted = append(m.Submitted, g)
	if m.SubmitErr != nil {
		return "", m.SubmitErr
	}
	return m.PK, nil
}

func (m *MockReasoner) Poll(ctx context.Context, jobID string, timeout time.Duration) (model.PollResult, error) {
	m.Timeout = timeout
	if m.Block {
		<-ctx.Done()
		return model.PollResult{JobID: jobID}, ctx.Err()
	}
	if m.PollErr != nil {
		return model.PollResult{JobID: jobID}, m.PollErr
	}
	res := m.Result
	res.JobID = jobID
	return res, nil
}

type MockNormalizer struct {
	Extra     map[string]string
	Err       error
	Requested [][]string
}

func (m *MockNormalizer) Normalize(ctx context.Context, ids []string) (*model.NormalizationMap, error) {
	m.Requested = append(m.Requested, ids)
	if m.Err != nil {
		return nil, m.Err
	}
	norm := model.NewNormalizationMap()
	for _, id := range ids {
		norm.Set(id, id)
	}
	for k, v := range m.Extra {
		norm.Set(k, v)
	}
	return norm, nil
}
