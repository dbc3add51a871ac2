package llm

import (
	"context"
)

// LLMClient completes a two-message chat: a system instruction and a user turn.
type LLMClient interface {
	Generate(ctx context.Context, system, user string) (string, error)
}
