package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/agenthands/annotator/internal/app"
	"github.com/agenthands/annotator/internal/core/model"
	"github.com/agenthands/annotator/internal/queue"
	"github.com/agenthands/annotator/internal/worker"
)

var annotateFlags struct {
	input    string
	directed bool
	timeout  time.Duration
}

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Annotate a batch of edges in-process and print the result as JSON",
	RunE:  runAnnotate,
}

func init() {
	f := annotateCmd.Flags()
	f.StringVarP(&annotateFlags.input, "input", "i", "", "JSON file with a list of {source, target} edges (required)")
	f.BoolVar(&annotateFlags.directed, "directed", false, "Treat edges as directed")
	f.DurationVar(&annotateFlags.timeout, "timeout", 0, "Reasoner poll timeout (default ars.timeout)")

	_ = annotateCmd.MarkFlagRequired("input")
}

func runAnnotate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	data, err := os.ReadFile(annotateFlags.input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	var edges []model.Edge
	if err := json.Unmarshal(data, &edges); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	timeout := annotateFlags.timeout
	if timeout <= 0 {
		timeout = cfg.ARS.Timeout.Duration
	}

	annotator, err := app.NewAnnotator(cfg, log)
	if err != nil {
		return err
	}

	broker := queue.NewMemoryBroker(1)
	defer broker.Close()
	pool := worker.NewPool(broker, annotator, 1, 0, log)

	task := &queue.Task{
		ID:         uuid.New().String(),
		Edges:      edges,
		Directed:   annotateFlags.directed,
		Timeout:    timeout,
		EnqueuedAt: time.Now().UTC(),
	}
	pool.Process(cmd.Context(), task)

	state, err := broker.State(cmd.Context(), task.ID)
	if err != nil {
		return err
	}
	if state.Status != queue.StatusSuccess {
		return fmt.Errorf("annotation failed: %s", state.Error)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(state.Result)
}
