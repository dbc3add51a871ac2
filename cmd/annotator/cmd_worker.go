package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agenthands/annotator/internal/app"
	"github.com/agenthands/annotator/internal/worker"
)

var workerConcurrency int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume annotation tasks from the Redis queue",
	RunE:  runWorker,
}

func init() {
	workerCmd.Flags().IntVar(&workerConcurrency, "concurrency", 0, "Parallel tasks (default worker.concurrency)")
}

func runWorker(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if workerConcurrency > 0 {
		cfg.Worker.Concurrency = workerConcurrency
	}

	annotator, err := app.NewAnnotator(cfg, log)
	if err != nil {
		return err
	}
	broker, err := app.NewBroker(cfg, log)
	if err != nil {
		return err
	}
	defer broker.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := worker.NewPool(broker, annotator, cfg.Worker.Concurrency, cfg.Worker.BlockFor.Duration, log)
	log.Info("worker started", "queue", cfg.Redis.Queue, "concurrency", pool.Concurrency)
	return pool.Run(ctx)
}
