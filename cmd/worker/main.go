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

	"github.com/kirillkom/rag-document-qa/internal/bootstrap"
	"github.com/kirillkom/rag-document-qa/internal/config"
	"github.com/kirillkom/rag-document-qa/internal/observability/logging"
	"github.com/kirillkom/rag-document-qa/internal/observability/metrics"
)

const processTimeout = 5 * time.Minute

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker metrics server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentUploaded(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, processTimeout)
		defer cancel()

		if doc, lookupErr := app.Catalog.GetByID(processCtx, documentID); lookupErr == nil {
			workerMetrics.ObserveQueueLag("worker", time.Since(doc.UploadTime))
		}

		workerMetrics.StartDocument()
		start := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, documentID)
		workerMetrics.FinishDocument("worker", time.Since(start), processErr)
		return processErr
	})
	if err != nil {
		slog.Error("worker subscribe failed", "error", err)
		os.Exit(1)
	}
}
