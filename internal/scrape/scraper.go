// Package scrape implements the press-release extraction pipeline: one
// generic scraper driven by per-site profiles.
package scrape

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/prerna1001/pharma-press-tracker/internal/press"
)

// Renderer renders a URL into its final HTML, JavaScript included.
type Renderer interface {
	Render(ctx context.Context, rawURL string) (string, error)
}

// ClickNavigator reaches a detail page that exposes no static link by
// clicking the nth card on a listing page and awaiting navigation.
type ClickNavigator interface {
	ClickThrough(ctx context.Context, listingURL, cardSelector string, index int) (finalURL, html string, err error)
}

// FeedFetcher performs a plain GET, used for auxiliary JSON feeds and for
// profiles that render fine without a browser.
type FeedFetcher interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// PageArchiver persists raw rendered pages for later inspection.
type PageArchiver interface {
	SavePage(ctx context.Context, rawURL string, body []byte) error
}

// Options wires a Scraper's collaborators. Renderer and Fetcher are
// required; Clicker and Archiver may be nil.
type Options struct {
	Renderer   Renderer
	Clicker    ClickNavigator
	Fetcher    FeedFetcher
	Archiver   PageArchiver
	Cutoff     press.Date
	MaxRecords int
	Logger     *zap.Logger
}

// Scraper walks one site profile at a time: listing traversal, card
// extraction with the cutoff filter, a deferred detail pass, and optional
// feed reconciliation. Every per-item failure degrades to missing data;
// nothing aborts a run.
type Scraper struct {
	renderer   Renderer
	clicker    ClickNavigator
	fetcher    FeedFetcher
	archive    PageArchiver
	cutoff     press.Date
	maxRecords int
	logger     *zap.Logger
}

// NewScraper constructs a Scraper from Options.
func NewScraper(opts Options) *Scraper {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxRecords := opts.MaxRecords
	if maxRecords <= 0 {
		maxRecords = 100
	}
	return &Scraper{
		renderer:   opts.Renderer,
		clicker:    opts.Clicker,
		fetcher:    opts.Fetcher,
		archive:    opts.Archiver,
		cutoff:     opts.Cutoff,
		maxRecords: maxRecords,
		logger:     logger,
	}
}

// Run scrapes one profile to completion and returns its surviving
// records. The only error returned is context cancellation.
func (s *Scraper) Run(ctx context.Context, profile SiteProfile) ([]press.PressRelease, error) {
	var records []press.PressRelease

	pageURL := profile.ListingURL
	for pageURL != "" && len(records) < s.maxRecords {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		s.logger.Info("Fetching listing page",
			zap.String("site", profile.Name), zap.String("url", pageURL))

		doc, ok := s.renderDocument(ctx, profile, pageURL)
		if !ok {
			break
		}
		cards := doc.Find(profile.CardSelector)
		if cards.Length() == 0 {
			s.logger.Info("No cards found, stopping",
				zap.String("site", profile.Name), zap.String("url", pageURL))
			break
		}

		records = s.extractCards(ctx, profile, pageURL, cards, records)
		pageURL = s.nextPage(profile, doc)
	}

	records = s.fetchDetails(ctx, profile, records)
	if profile.FeedURL != "" && s.fetcher != nil {
		records = s.reconcile(ctx, profile, records)
	}

	RecordsScraped.Add(float64(len(records)))
	s.logger.Info("Site scrape finished",
		zap.String("site", profile.Name), zap.Int("records", len(records)))
	return records, ctx.Err()
}

func (s *Scraper) extractCards(
	ctx context.Context,
	profile SiteProfile,
	pageURL string,
	cards *goquery.Selection,
	records []press.PressRelease,
) []press.PressRelease {
	cards.EachWithBreak(func(index int, card *goquery.Selection) bool {
		if len(records) >= s.maxRecords {
			return false
		}
		CardsSeen.Inc()

		record, ok := s.extractCard(ctx, profile, pageURL, index, card)
		if ok {
			records = append(records, record)
		}
		return true
	})
	return records
}

func (s *Scraper) extractCard(
	ctx context.Context,
	profile SiteProfile,
	pageURL string,
	index int,
	card *goquery.Selection,
) (press.PressRelease, bool) {
	title := strings.TrimSpace(card.Find(profile.TitleSelector).First().Text())
	if title == "" {
		CardsSkipped.Inc()
		s.logger.Debug("Card has no title, skipping",
			zap.String("site", profile.Name), zap.Int("card", index))
		return press.PressRelease{}, false
	}

	dateText := strings.TrimSpace(card.Find(profile.DateSelector).First().Text())
	published, err := profile.parseDate(dateText)
	if err != nil {
		CardsSkipped.Inc()
		s.logger.Debug("Card date unparseable, skipping",
			zap.String("site", profile.Name), zap.String("date", dateText), zap.Error(err))
		return press.PressRelease{}, false
	}
	if published.Before(s.cutoff.Time) {
		CardsDropped.Inc()
		return press.PressRelease{}, false
	}

	record := press.PressRelease{
		Company:       profile.Name,
		PublishedDate: published,
		Title:         title,
	}

	if profile.RequiresClickNav && s.clicker != nil {
		record.URL, record.FullText = s.clickCard(ctx, profile, pageURL, index)
	} else {
		record.URL = s.cardLink(profile, card)
	}
	return record, true
}

// cardLink pulls the detail href from the card and canonicalizes it.
// A missing or malformed link yields an empty URL, not a failure; feed
// reconciliation may still fill it later.
func (s *Scraper) cardLink(profile SiteProfile, card *goquery.Selection) string {
	href, exists := card.Find(profile.linkSelector()).First().Attr("href")
	if !exists {
		return ""
	}
	resolved, err := ResolveURL(profile.BaseURL, href)
	if err != nil {
		s.logger.Debug("Card link unresolvable",
			zap.String("site", profile.Name), zap.String("href", href), zap.Error(err))
		return ""
	}
	return resolved
}

// clickCard drives the in-browser click path and, since the detail page
// is already rendered afterwards, extracts the body text right away.
func (s *Scraper) clickCard(ctx context.Context, profile SiteProfile, pageURL string, index int) (string, string) {
	finalURL, pageHTML, err := s.clicker.ClickThrough(ctx, pageURL, profile.CardSelector, index)
	if err != nil {
		FetchErrors.Inc()
		s.logger.Warn("Click navigation failed",
			zap.String("site", profile.Name), zap.Int("card", index), zap.Error(err))
		return "", ""
	}
	resolved, err := ResolveURL(profile.BaseURL, finalURL)
	if err != nil {
		resolved = finalURL
	}
	s.archivePage(ctx, resolved, pageHTML)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return resolved, ""
	}
	return resolved, ExtractText(doc, profile)
}

// fetchDetails is the deferred pass: it renders the detail page of every
// record still lacking body text. Batched after listing traversal so one
// browser session serves the whole profile.
func (s *Scraper) fetchDetails(ctx context.Context, profile SiteProfile, records []press.PressRelease) []press.PressRelease {
	for i := range records {
		if records[i].FullText != "" || records[i].URL == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		s.logger.Info("Fetching detail page",
			zap.String("site", profile.Name), zap.String("url", records[i].URL))
		doc, ok := s.renderDocument(ctx, profile, records[i].URL)
		if !ok {
			continue
		}
		records[i].FullText = ExtractText(doc, profile)
	}
	return records
}

func (s *Scraper) nextPage(profile SiteProfile, doc *goquery.Document) string {
	if profile.NextPageSelector == "" {
		return ""
	}
	href, exists := doc.Find(profile.NextPageSelector).First().Attr("href")
	if !exists {
		return ""
	}
	next, err := ResolveURL(profile.BaseURL, href)
	if err != nil {
		s.logger.Debug("Next page link unresolvable",
			zap.String("site", profile.Name), zap.String("href", href), zap.Error(err))
		return ""
	}
	return next
}

// renderDocument fetches a page through the profile's acquisition path
// and parses it. Any failure is logged and reported as "no document".
func (s *Scraper) renderDocument(ctx context.Context, profile SiteProfile, rawURL string) (*goquery.Document, bool) {
	var pageHTML string
	if profile.RenderJS && s.renderer != nil {
		rendered, err := s.renderer.Render(ctx, rawURL)
		if err != nil {
			FetchErrors.Inc()
			s.logger.Warn("Render failed",
				zap.String("site", profile.Name), zap.String("url", rawURL), zap.Error(err))
			return nil, false
		}
		pageHTML = rendered
	} else {
		if s.fetcher == nil {
			s.logger.Warn("No fetcher wired for static page",
				zap.String("site", profile.Name), zap.String("url", rawURL))
			return nil, false
		}
		body, err := s.fetcher.Get(ctx, rawURL)
		if err != nil {
			FetchErrors.Inc()
			s.logger.Warn("Fetch failed",
				zap.String("site", profile.Name), zap.String("url", rawURL), zap.Error(err))
			return nil, false
		}
		pageHTML = string(body)
	}

	s.archivePage(ctx, rawURL, pageHTML)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		s.logger.Warn("Parse failed",
			zap.String("site", profile.Name), zap.String("url", rawURL), zap.Error(err))
		return nil, false
	}
	return doc, true
}

func (s *Scraper) archivePage(ctx context.Context, rawURL, pageHTML string) {
	if s.archive == nil || pageHTML == "" {
		return
	}
	if err := s.archive.SavePage(ctx, rawURL, []byte(pageHTML)); err != nil {
		s.logger.Warn("Archive write failed", zap.String("url", rawURL), zap.Error(err))
	}
}
