// Package app initializes and holds long-lived application services,
// acting as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/prerna1001/pharma-press-tracker/internal/archive"
	"github.com/prerna1001/pharma-press-tracker/internal/config"
	"github.com/prerna1001/pharma-press-tracker/internal/database"
	"github.com/prerna1001/pharma-press-tracker/internal/logging"
	"github.com/prerna1001/pharma-press-tracker/internal/publisher"
	"github.com/prerna1001/pharma-press-tracker/internal/publisher/pubsub"
	"github.com/prerna1001/pharma-press-tracker/internal/search"
)

// App holds the shared services for one process: logger, record store,
// search index, query service, page archive, and event publisher. It is
// initialized once at startup and passed to the commands that need it.
type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Store   database.Store
	Index   search.Index
	Queries *search.Service
	Archive archive.Provider
	Events  publisher.Publisher
}

// New builds every service from configuration, failing fast when a
// critical dependency cannot be reached.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	logger.Info("Initializing application services")

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	index, err := newIndex(cfg, logger)
	if err != nil {
		return nil, err
	}
	archiveProvider, err := newArchive(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	events, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Application services initialized")
	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Index:   index,
		Queries: search.NewService(index, logger, cfg.Query.DefaultLimit, cfg.Query.MaxLimit),
		Archive: archiveProvider,
		Events:  events,
	}, nil
}

// Close releases every held resource. Safe to call once at shutdown.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
	if a.Archive != nil {
		if err := a.Archive.Close(); err != nil {
			a.Logger.Warn("Archive close failed", zap.Error(err))
		}
	}
	if closer, ok := a.Events.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.Logger.Warn("Publisher close failed", zap.Error(err))
		}
	}
	_ = a.Logger.Sync()
}

func newStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (database.Store, error) {
	if cfg.DB.DSN == "" {
		logger.Info("No database DSN configured, records will not be persisted")
		return database.NoOpStore{}, nil
	}
	logger.Info("Connecting to PostgreSQL", zap.String("table", cfg.DB.Table))
	store, err := database.NewPostgresStore(ctx, database.PostgresConfig{
		DSN:      cfg.DB.DSN,
		Table:    cfg.DB.Table,
		MaxConns: cfg.DB.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	return store, nil
}

func newIndex(cfg config.Config, logger *zap.Logger) (search.Index, error) {
	logger.Info("Connecting to Elasticsearch",
		zap.Strings("addresses", cfg.Elastic.Addresses),
		zap.String("index", cfg.Elastic.Index))
	index, err := search.NewElasticIndex(search.ElasticConfig{
		Addresses:     cfg.Elastic.Addresses,
		Username:      cfg.Elastic.Username,
		Password:      cfg.Elastic.Password,
		Index:         cfg.Elastic.Index,
		ConfigIndex:   cfg.Elastic.ConfigIndex,
		SkipTLSVerify: cfg.Elastic.SkipTLSVerify,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize search index: %w", err)
	}
	return index, nil
}

func newArchive(ctx context.Context, cfg config.Config, logger *zap.Logger) (archive.Provider, error) {
	switch cfg.Archive.Provider {
	case "fs":
		logger.Info("Using filesystem page archive", zap.String("dir", cfg.Archive.Dir))
		return archive.NewFSProvider(cfg.Archive.Dir)
	case "gcs":
		if cfg.Archive.GCSBucket == "" {
			return nil, fmt.Errorf("archive provider is 'gcs' but archive.gcs_bucket is not set")
		}
		logger.Info("Using GCS page archive", zap.String("bucket", cfg.Archive.GCSBucket))
		return archive.NewGCSProvider(ctx, cfg.Archive.GCSBucket, cfg.Archive.Prefix, logger)
	case "noop":
		logger.Info("Page archiving disabled")
		return archive.NoOpProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown archive provider: %s", cfg.Archive.Provider)
	}
}

func newPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (publisher.Publisher, error) {
	switch cfg.Publisher.Provider {
	case "pubsub":
		if cfg.Publisher.ProjectID == "" || cfg.Publisher.TopicID == "" {
			return nil, fmt.Errorf("publisher provider is 'pubsub' but project_id or topic_id is not set")
		}
		logger.Info("Connecting to GCP Pub/Sub", zap.String("topic", cfg.Publisher.TopicID))
		events, err := pubsub.New(ctx, cfg.Publisher.ProjectID, cfg.Publisher.TopicID)
		if err != nil {
			return nil, fmt.Errorf("initialize publisher: %w", err)
		}
		return events, nil
	case "noop":
		logger.Info("Event publishing disabled")
		return publisher.NoOp{}, nil
	default:
		return nil, fmt.Errorf("unknown publisher provider: %s", cfg.Publisher.Provider)
	}
}
