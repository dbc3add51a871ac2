package justify

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/annotator/internal/core/model"
	"github.com/agenthands/annotator/internal/llm"
)

// NoRelationship is what the model is told to answer when it sees no link.
// It is an ordinary justification, not an error.
const NoRelationship = "No relationship found."

const (
	directedPrompt = "You are an expert bioinformatician. You will be provided with a source gene and a target gene, " +
		"and your task is to briefly explain a possible genetic regulator relationship that the source gene may have " +
		"on the target gene. If you do not think there is a relationship, you should respond with: '" + NoRelationship + "'"

	undirectedPrompt = "You are an expert bioinformatician. You will be provided with a two gene names, " +
		"and your task is to briefly explain a possible genetic regulatory relationship between these genes. " +
		"If you do not think there is a relationship, you should respond with: '" + NoRelationship + "'"

	userTemplate = "Source gene name: %s\nTarget gene name: %s."
)

type Generator struct {
	LLM         llm.LLMClient
	Concurrency int
}

func NewGenerator(llmClient llm.LLMClient, concurrency int) *Generator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Generator{
		LLM:         llmClient,
		Concurrency: concurrency,
	}
}

// SystemPrompt returns the instruction used for a directed or undirected pair.
func SystemPrompt(directed bool) string {
	if directed {
		return directedPrompt
	}
	return undirectedPrompt
}

// Generate asks the model to justify a possible regulatory relationship.
func (g *Generator) Generate(ctx context.Context, sourceName, targetName string, directed bool) (string, error) {
	user := fmt.Sprintf(userTemplate, sourceName, targetName)
	response, err := g.LLM.Generate(ctx, SystemPrompt(directed), user)
	if err != nil {
		return "", fmt.Errorf("failed to generate justification for %s -> %s: %w", sourceName, targetName, err)
	}
	return response, nil
}

// Annotate sets Justification on every edge in place. Edges are independent,
// so calls run on a bounded pool; the first failure cancels the rest.
func (g *Generator) Annotate(ctx context.Context, edges []model.Edge, directed bool) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.Concurrency)
	for i := range edges {
		i := i
		eg.Go(func() error {
			text, err := g.Generate(egCtx, edges[i].Source.Name, edges[i].Target.Name, directed)
			if err != nil {
				return err
			}
			edges[i].Justification = &text
			return nil
		})
	}
	return eg.Wait()
}
