// Package pipeline orchestrates a full refresh run: scrape every
// configured site, replace the relational store, and rebuild the search
// index.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prerna1001/pharma-press-tracker/internal/database"
	"github.com/prerna1001/pharma-press-tracker/internal/press"
	"github.com/prerna1001/pharma-press-tracker/internal/publisher"
	"github.com/prerna1001/pharma-press-tracker/internal/scrape"
	"github.com/prerna1001/pharma-press-tracker/internal/search"
)

// ErrEmptyRun means no site yielded a single record. The run aborts
// before touching the store or index so a bad scrape night cannot wipe
// the previously collected data.
var ErrEmptyRun = errors.New("refresh run produced no records")

// SiteScraper runs one site profile to completion.
type SiteScraper interface {
	Run(ctx context.Context, profile scrape.SiteProfile) ([]press.PressRelease, error)
}

// Summary reports what one refresh run did.
type Summary struct {
	StartedAt time.Time
	Duration  time.Duration
	ByCompany map[string]int
	Total     int
	Stored    int
	Indexed   int
}

// Options wires a Pipeline.
type Options struct {
	Scraper     SiteScraper
	Profiles    []scrape.SiteProfile
	Store       database.Store
	Index       search.Index
	Events      publisher.Publisher
	EventTopic  string
	ResultLimit int
	Logger      *zap.Logger
}

// Pipeline performs the drop-and-replace refresh.
type Pipeline struct {
	opts Options
}

// New builds a Pipeline from options. Events may be nil-equivalent via
// the NoOp publisher.
func New(opts Options) *Pipeline {
	if opts.Events == nil {
		opts.Events = publisher.NoOp{}
	}
	return &Pipeline{opts: opts}
}

// Run executes one refresh. Sites are scraped sequentially; a site that
// fails or yields nothing does not stop the others. Both stores are
// replaced only when at least one record was collected.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{StartedAt: start, ByCompany: make(map[string]int)}

	var records []press.PressRelease
	for _, profile := range p.opts.Profiles {
		got, err := p.opts.Scraper.Run(ctx, profile)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			p.opts.Logger.Error("Site scrape failed",
				zap.String("site", profile.Name), zap.Error(err))
			continue
		}
		p.opts.Logger.Info("Site scraped",
			zap.String("site", profile.Name), zap.Int("records", len(got)))
		summary.ByCompany[profile.Name] = len(got)
		records = append(records, got...)
	}
	summary.Total = len(records)
	if summary.Total == 0 {
		return summary, ErrEmptyRun
	}

	stored, err := p.replaceStore(ctx, records)
	if err != nil {
		return summary, err
	}
	summary.Stored = stored

	indexed, err := p.rebuildIndex(ctx, records)
	if err != nil {
		return summary, err
	}
	summary.Indexed = indexed
	summary.Duration = time.Since(start)

	p.publishSummary(ctx, summary)
	return summary, nil
}

func (p *Pipeline) replaceStore(ctx context.Context, records []press.PressRelease) (int, error) {
	if err := p.opts.Store.Reset(ctx); err != nil {
		return 0, fmt.Errorf("reset store: %w", err)
	}
	stored := 0
	for _, record := range records {
		if err := p.opts.Store.Insert(ctx, record); err != nil {
			p.opts.Logger.Warn("Record insert failed",
				zap.String("url", record.URL), zap.Error(err))
			continue
		}
		stored++
	}
	p.opts.Logger.Info("Store replaced",
		zap.Int("records", len(records)), zap.Int("stored", stored))
	return stored, nil
}

func (p *Pipeline) rebuildIndex(ctx context.Context, records []press.PressRelease) (int, error) {
	if err := p.opts.Index.DeleteIndex(ctx); err != nil {
		return 0, fmt.Errorf("delete index: %w", err)
	}
	if err := p.opts.Index.EnsureIndex(ctx); err != nil {
		return 0, fmt.Errorf("create index: %w", err)
	}
	docs := make([]search.Document, 0, len(records))
	for _, record := range records {
		docs = append(docs, search.DocumentFor(record))
	}
	indexed, err := p.opts.Index.BulkUpsert(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("bulk index: %w", err)
	}
	if err := p.opts.Index.EnsureFilterConfig(ctx, search.DefaultFilterConfig(p.opts.ResultLimit)); err != nil {
		p.opts.Logger.Warn("Filter config write failed", zap.Error(err))
	}
	p.opts.Logger.Info("Index rebuilt", zap.Int("indexed", indexed))
	return indexed, nil
}

func (p *Pipeline) publishSummary(ctx context.Context, summary Summary) {
	event := publisher.RefreshEvent{
		StartedAt:    summary.StartedAt,
		DurationMS:   summary.Duration.Milliseconds(),
		TotalRecords: summary.Total,
		ByCompany:    summary.ByCompany,
		Stored:       summary.Stored,
		Indexed:      summary.Indexed,
	}
	id, err := p.opts.Events.Publish(ctx, p.opts.EventTopic, event)
	if err != nil {
		p.opts.Logger.Warn("Refresh event publish failed", zap.Error(err))
		return
	}
	if id != "" {
		p.opts.Logger.Info("Refresh event published", zap.String("message_id", id))
	}
}
