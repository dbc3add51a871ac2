package core

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/annotator/internal/core/binding"
	"github.com/agenthands/annotator/internal/core/common"
	"github.com/agenthands/annotator/internal/core/model"
	"github.com/agenthands/annotator/internal/core/querygraph"
	"github.com/agenthands/annotator/internal/logger"
)

type Justifier interface {
	Annotate(ctx context.Context, edges []model.Edge, directed bool) error
}

type Reasoner interface {
	Submit(ctx context.Context, g model.QueryGraph) (string, error)
	Poll(ctx context.Context, jobID string, timeout time.Duration) (model.PollResult, error)
}

type Normalizer interface {
	Normalize(ctx context.Context, ids []string) (*model.NormalizationMap, error)
}

// Annotator runs the annotation pipeline for one batch of gene pairs. It holds
// no per-run state and may be shared by several workers.
type Annotator struct {
	Justifier  Justifier
	Reasoner   Reasoner
	Normalizer Normalizer
	Binder     *binding.Binder
	Log        *logger.Logger
}

func NewAnnotator(j Justifier, r Reasoner, n Normalizer, log *logger.Logger) *Annotator {
	if log == nil {
		log = logger.Nop()
	}
	return &Annotator{
		Justifier:  j,
		Reasoner:   r,
		Normalizer: n,
		Binder:     binding.NewBinder(log),
		Log:        log,
	}
}

// Run justifies every edge, queries the reasoning network and binds the
// returned evidence back onto the edges. Justification and the reasoner
// round-trip do not depend on each other and run concurrently.
//
// Any failed external call fails the run. A reasoner that errors, reports an
// unexpected status or times out yields edges with empty results and an
// incomplete evidence status.
func (a *Annotator) Run(ctx context.Context, edges []model.Edge, directed bool, timeout time.Duration) (*model.Annotation, error) {
	for i := range edges {
		edges[i].Directed = directed
		edges[i].Results = nil
	}
	log := a.Log.With("edges", len(edges), "directed", directed)
	started := time.Now()

	// Built before the fan-out: the justifier writes to edges concurrently.
	g := querygraph.Build(edges, directed)

	var poll model.PollResult
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := a.Justifier.Annotate(egCtx, edges, directed); err != nil {
			return fmt.Errorf("justification: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		pk, err := a.Reasoner.Submit(egCtx, g)
		if err != nil {
			return fmt.Errorf("submit query graph: %w", err)
		}
		poll, err = a.Reasoner.Poll(egCtx, pk, timeout)
		if err != nil {
			return fmt.Errorf("poll %s: %w", pk, err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		log.Error("annotation failed", "error", err)
		return nil, err
	}

	var norm *model.NormalizationMap
	if poll.Completed() {
		ids := make([]string, 0, 2*len(edges))
		for _, e := range edges {
			ids = append(ids, e.Source.ID, e.Target.ID)
		}
		var err error
		norm, err = a.Normalizer.Normalize(ctx, common.SortedUnique(ids))
		if err != nil {
			log.Error("normalization failed", "error", err)
			return nil, fmt.Errorf("normalize identifiers: %w", err)
		}
	}

	bound, stats := a.Binder.Bind(edges, poll.Result, norm, directed)
	annotation := &model.Annotation{
		Edges:    bound,
		Status:   evidenceStatus(poll, stats),
		Reasoner: poll,
	}

	log.Info("annotation finished",
		"pk", poll.JobID,
		"reasoner_status", string(poll.Status),
		"evidence_status", string(annotation.Status),
		"records", stats.Bound,
		"elapsed", time.Since(started).String(),
	)
	return annotation, nil
}

func evidenceStatus(poll model.PollResult, stats binding.Stats) model.EvidenceStatus {
	switch {
	case poll.Status != model.StatusDone:
		return model.EvidenceIncomplete
	case poll.MergedJobID != nil && poll.Result == nil:
		return model.EvidenceIncomplete
	case stats.Bound > 0:
		return model.EvidenceFound
	default:
		return model.EvidenceAbsent
	}
}
