package scrape

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/prerna1001/pharma-press-tracker/internal/press"
)

// feedEntry is one item of a publisher's auxiliary JSON feed.
type feedEntry struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Body  string `json:"body"`
}

type feedPayload struct {
	Records []feedEntry `json:"records"`
}

// loadFeed fetches a profile's JSON feed and keys it by normalized title.
func loadFeed(ctx context.Context, fetcher FeedFetcher, feedURL string) (map[string]feedEntry, error) {
	raw, err := fetcher.Get(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: feed %s: %v", press.ErrFetch, feedURL, err)
	}
	var payload feedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: feed %s: %v", press.ErrParse, feedURL, err)
	}
	byTitle := make(map[string]feedEntry, len(payload.Records))
	for _, entry := range payload.Records {
		if entry.Title == "" {
			continue
		}
		byTitle[press.NormalizeTitle(entry.Title)] = entry
	}
	return byTitle, nil
}

// reconcile backfills missing url/full_text fields from the feed by exact
// normalized-title match. The feed is a last-resort source: fields already
// scraped are never overwritten.
func (s *Scraper) reconcile(ctx context.Context, profile SiteProfile, records []press.PressRelease) []press.PressRelease {
	byTitle, err := loadFeed(ctx, s.fetcher, profile.FeedURL)
	if err != nil {
		s.logger.Warn("Feed reconciliation unavailable",
			zap.String("site", profile.Name), zap.Error(err))
		return records
	}
	for i := range records {
		if records[i].URL != "" && records[i].FullText != "" {
			continue
		}
		entry, ok := byTitle[press.NormalizeTitle(records[i].Title)]
		if !ok {
			continue
		}
		if records[i].URL == "" && entry.URL != "" {
			if resolved, err := ResolveURL(profile.BaseURL, entry.URL); err == nil {
				records[i].URL = resolved
			}
		}
		if records[i].FullText == "" {
			records[i].FullText = entry.Body
		}
	}
	return records
}
