package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/rag-document-qa/internal/adapters/http"
	"github.com/kirillkom/rag-document-qa/internal/bootstrap"
	"github.com/kirillkom/rag-document-qa/internal/config"
	"github.com/kirillkom/rag-document-qa/internal/observability/logging"
	"github.com/kirillkom/rag-document-qa/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	serverMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(cfg, app.QueryUC, app.DocumentsUC, serverMetrics).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown failed", "error", err)
	}
}
