package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/rag-document-qa/internal/config"
	"github.com/kirillkom/rag-document-qa/internal/core/answer"
	"github.com/kirillkom/rag-document-qa/internal/core/ports"
	"github.com/kirillkom/rag-document-qa/internal/core/relevance"
	"github.com/kirillkom/rag-document-qa/internal/core/usecase"
	"github.com/kirillkom/rag-document-qa/internal/infrastructure/queue/nats"
	"github.com/kirillkom/rag-document-qa/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/rag-document-qa/internal/infrastructure/resilience"
	"github.com/kirillkom/rag-document-qa/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue       ports.MessageQueue
	Catalog     ports.MetadataStore
	QueryUC     ports.QueryService
	DocumentsUC ports.DocumentService
	ProcessUC   ports.DocumentProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	catalog := postgres.NewMetadataRepository(db)
	if err := catalog.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure documents schema: %w", err)
	}
	history := postgres.NewHistoryRepository(db)
	if err := history.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure history schema: %w", err)
	}

	blobs, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init blob storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, executor)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	scorer := relevance.NewJaccardScorer()
	composer := answer.NewTemplateComposer()
	retriever := usecase.NewRetriever(catalog, scorer)

	queryUC := usecase.NewQueryUseCase(retriever, composer, history)
	documentsUC := usecase.NewDocumentUseCase(catalog, blobs, queue)
	processUC := usecase.NewProcessDocumentUseCase(catalog, blobs)

	return &App{
		Config: cfg,

		Queue:       queue,
		Catalog:     catalog,
		QueryUC:     queryUC,
		DocumentsUC: documentsUC,
		ProcessUC:   processUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
