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

	"support-agent/handler"
	"support-agent/internal/knowledge"
)

var (
	listenAddr     string
	requestTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat API over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&listenAddr, "addr", "a", ":8080", "listen address")
	serveCmd.Flags().DurationVar(&requestTimeout, "request-timeout", 60*time.Second, "per-request timeout")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, store, a, logger, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if cfg.KnowledgeBase.Watch && cfg.KnowledgeBase.Path != "" {
		if err := knowledge.Watch(ctx, logger, cfg.KnowledgeBase.Path, a.Knowledge); err != nil {
			logger.Warn("knowledge base watch disabled", "err", err)
		}
	}

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           handler.NewRouter(a.Handler, requestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", listenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
