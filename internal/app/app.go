// Package app assembles the annotator's components from configuration.
package app

import (
	"fmt"
	"net/http"

	"github.com/agenthands/annotator/internal/ars"
	"github.com/agenthands/annotator/internal/config"
	"github.com/agenthands/annotator/internal/core"
	"github.com/agenthands/annotator/internal/core/justify"
	"github.com/agenthands/annotator/internal/llm"
	"github.com/agenthands/annotator/internal/logger"
	"github.com/agenthands/annotator/internal/nodenorm"
	"github.com/agenthands/annotator/internal/queue"
)

// NewAnnotator wires the LLM, ARS and node normalizer clients into a pipeline.
func NewAnnotator(cfg *config.Config, log *logger.Logger) (*core.Annotator, error) {
	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}

	reasoner, err := ars.New(cfg.ARS.SubmitURL, cfg.ARS.MessagesURL,
		ars.WithHTTPClient(&http.Client{Timeout: cfg.ARS.HTTPTimeout.Duration}),
		ars.WithPollInterval(cfg.ARS.PollInterval.Duration),
		ars.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("ars client: %w", err)
	}

	normalizer, err := nodenorm.New(cfg.NodeNorm.URL, cfg.NodeNorm.CacheSize,
		nodenorm.WithHTTPClient(&http.Client{Timeout: cfg.NodeNorm.HTTPTimeout.Duration}),
		nodenorm.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("node normalizer: %w", err)
	}

	generator := justify.NewGenerator(llmClient, cfg.Concurrency.Justifications)
	return core.NewAnnotator(generator, reasoner, normalizer, log), nil
}

// NewBroker connects to the Redis task queue.
func NewBroker(cfg *config.Config, log *logger.Logger) (queue.Broker, error) {
	broker, err := queue.NewRedisBroker(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("redis broker: %w", err)
	}
	return broker, nil
}
