package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prerna1001/pharma-press-tracker/internal/fetcher/headless"
	"github.com/prerna1001/pharma-press-tracker/internal/fetcher/static"
	"github.com/prerna1001/pharma-press-tracker/internal/pipeline"
	"github.com/prerna1001/pharma-press-tracker/internal/scrape"
)

// newRefreshCmd creates the 'refresh' subcommand. It scrapes every
// configured site and replaces the record store and search index with
// the collected data.
func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Scrapes all configured sites and rebuilds the store and index",
		Long: `Runs the full collection pipeline: renders each newsroom listing,
extracts press releases published on or after the cutoff date, then
replaces the PostgreSQL table and the Elasticsearch index with the
fresh record set. An empty run leaves existing data untouched.`,
		RunE: runRefreshCommand,
	}
}

func runRefreshCommand(cmd *cobra.Command, _ []string) error {
	application, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := application.Config
	logger := application.Logger

	renderer, err := headless.New(headless.Config{
		UserAgent: cfg.Scraper.UserAgent,
		Timeout:   cfg.Scraper.RenderTimeout,
		DomainQPS: cfg.Scraper.RenderDomainQPS,
	}, logger)
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}
	defer renderer.Close()

	fetcher, err := static.New(static.Config{
		UserAgent:      cfg.Scraper.UserAgent,
		RequestTimeout: cfg.Scraper.RequestTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("init fetcher: %w", err)
	}

	scraper := scrape.NewScraper(scrape.Options{
		Renderer:   renderer,
		Clicker:    renderer,
		Fetcher:    fetcher,
		Archiver:   application.Archive,
		Cutoff:     cfg.Cutoff(),
		MaxRecords: cfg.Scraper.MaxRecords,
		Logger:     logger,
	})

	runner := pipeline.New(pipeline.Options{
		Scraper:     scraper,
		Profiles:    scrape.DefaultProfiles(),
		Store:       application.Store,
		Index:       application.Index,
		Events:      application.Events,
		EventTopic:  cfg.Publisher.TopicID,
		ResultLimit: cfg.Query.MaxLimit,
		Logger:      logger,
	})

	summary, err := runner.Run(cmd.Context())
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyRun) {
			logger.Warn("Refresh produced no records, existing data kept")
			return nil
		}
		return fmt.Errorf("run refresh: %w", err)
	}

	logger.Info("Refresh finished",
		zap.Int("total", summary.Total),
		zap.Int("stored", summary.Stored),
		zap.Int("indexed", summary.Indexed),
		zap.Duration("duration", summary.Duration))
	return nil
}
