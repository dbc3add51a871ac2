package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agenthands/annotator/internal/app"
	"github.com/agenthands/annotator/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the job API",
	Long: `Starts the HTTP job API. POST /run enqueues a batch on the Redis queue and
GET /status/:task_id reports its progress. Tasks are executed by "annotator worker".`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	broker, err := app.NewBroker(cfg, log)
	if err != nil {
		return err
	}
	defer broker.Close()

	srv := server.NewServer(broker, cfg.Server, cfg.ARS.Timeout.Duration, log)
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
