package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recdex/internal/metrics"
	chiTransport "github.com/kailas-cloud/recdex/internal/transport/chi"
	"github.com/kailas-cloud/recdex/internal/version"
)

const serveLongDesc = `Start the HTTP API.

The collection is created empty at startup so queries answer [] until the
first ingestion. With --corpus (or index.corpus in the config) the corpus is
ingested before the server starts listening.

Routes:
  POST /v1/recommend   {"text": "...", "k": 5}
  POST /v1/summarize   {"text": "..."}
  POST /v1/structure   {"text": "..."}
  POST /v1/ingest      JSON array corpus, ?batch_size=
  GET  /v1/index
  GET  /health
  GET  /metrics`

func newServeCmd() *cobra.Command {
	var corpusPath string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("corpus") {
				cfg.Index.Corpus = corpusPath
			}
			if cmd.Flags().Changed("port") {
				cfg.HTTP.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, env, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.serve(ctx)
		},
	}

	cmd.Flags().StringVar(&corpusPath, "corpus", "", "Corpus file to ingest at startup (JSON array or JSON Lines)")
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides http.port)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	logger := a.logger
	cfg := a.cfg

	logger.Info("Starting recdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("collection", cfg.Index.Collection),
		zap.Bool("cache", a.store != nil),
		zap.Bool("summarizer", cfg.Summarizer.Enabled()),
	)

	if err := a.catalog.Ensure(ctx); err != nil {
		return err
	}
	if cfg.Index.Corpus != "" {
		report, err := a.ingestFile(ctx, cfg.Index.Corpus, 0)
		if err != nil {
			return fmt.Errorf("startup ingestion: %w", err)
		}
		logger.Info("Startup ingestion finished",
			zap.String("corpus", cfg.Index.Corpus),
			zap.Int("indexed", report.Indexed),
		)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      a.router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func (a *app) router() http.Handler {
	server := chiTransport.NewServer(a.catalog, a.ingest, a.recommend, a.summary, a.health, a.logger).
		WithMaxBodyBytes(int64(a.cfg.HTTP.MaxBodyMB) << 20)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(a.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(a.logger))
	r.Use(chiTransport.CORSMiddleware())
	r.Use(chiTransport.BearerAuthMiddleware(a.cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
				Code:    chiTransport.ErrorResponseCodeBadRequest,
				Message: err.Error(),
				Error:   err.Error(),
			})
		},
	})
	return r
}
