package scrape

import (
	"github.com/prerna1001/pharma-press-tracker/internal/press"
)

// SiteProfile is a declarative description of one publisher's listing
// pages. Site quirks live here as data; one generic scraper consumes
// every profile. New publishers are added by appending a profile, not by
// writing code.
type SiteProfile struct {
	// Name is the short publisher identifier stored as the record company.
	Name    string
	BaseURL string
	// ListingURL is the first listing page; pagination proceeds from here.
	ListingURL string

	// CardSelector matches one listing element per press release.
	CardSelector string
	// TitleSelector matches the title node inside a card. When
	// LinkSelector is empty the detail URL is taken from this node's href.
	TitleSelector string
	// LinkSelector optionally overrides where the detail link lives.
	LinkSelector string
	// DateSelector matches the publication date node inside a card.
	DateSelector string
	// NextPageSelector resolves the next listing page link, if any.
	NextPageSelector string

	// MainContentSelector pins the detail page's content region. When
	// empty the extractor walks its generic fallback chain.
	MainContentSelector string

	// RequiresClickNav marks sites whose cards carry no static detail
	// link; reaching the detail page needs an in-browser click.
	RequiresClickNav bool

	// RenderJS selects the headless renderer over the static fetcher.
	RenderJS bool

	// FeedURL points at an auxiliary structured JSON feed used to
	// backfill missing url/full_text fields by title match. Empty for
	// sites without one.
	FeedURL string

	// ParseDate converts the card's date text. Defaults to ParseDate.
	ParseDate func(string) (press.Date, error)
}

func (p SiteProfile) parseDate(raw string) (press.Date, error) {
	if p.ParseDate != nil {
		return p.ParseDate(raw)
	}
	return ParseDate(raw)
}

func (p SiteProfile) linkSelector() string {
	if p.LinkSelector != "" {
		return p.LinkSelector
	}
	return p.TitleSelector
}

// DefaultProfiles returns the configured publishers.
func DefaultProfiles() []SiteProfile {
	return []SiteProfile{
		{
			Name:             "AstraZeneca",
			BaseURL:          "https://www.astrazeneca.com",
			ListingURL:       "https://www.astrazeneca.com/media-centre/press-releases.html",
			CardSelector:     "li.az-filter-items__results-list-item",
			TitleSelector:    "div.az-filter-items__results-item-title",
			LinkSelector:     "a.az-filter-items__results-item-link",
			DateSelector:     "time.az-filter-items__results-item-date",
			NextPageSelector: "a[rel='next']",
			RenderJS:         true,
		},
		{
			Name:             "Johnson & Johnson",
			BaseURL:          "https://www.jnj.com",
			ListingURL:       "https://www.jnj.com/media-center/press-releases",
			CardSelector:     "div.bsp-pagepromo.PagePromoSearch",
			TitleSelector:    "h2.PagePromo-title a",
			DateSelector:     "div.PagePromo-date",
			NextPageSelector: "a[rel='next']",
			RenderJS:         true,
		},
		{
			Name:          "novonordisk",
			BaseURL:       "https://www.novonordisk.com",
			ListingURL:    "https://www.novonordisk.com/news-and-media/news-and-ir-materials.html",
			CardSelector:  "div.element-box.display-flex.space-between",
			TitleSelector: "div.title-desktop.right-arrow-animation p.bold.h4",
			DateSelector:  "p.bold.infotext",
			RenderJS:      true,
		},
		{
			// Pfizer's cards navigate via JS click handlers, so the detail
			// URL never appears as a static href. Their newsroom JSON API
			// backfills whatever the click path misses.
			Name:             "Pfizer",
			BaseURL:          "https://www.pfizer.com",
			ListingURL:       "https://www.pfizer.com/newsroom/press-releases",
			CardSelector:     "div.grid-x.results-row",
			TitleSelector:    "h5.result-title",
			DateSelector:     "p.date",
			NextPageSelector: "li.pager__item--next a",
			RequiresClickNav: true,
			RenderJS:         true,
			FeedURL:          "https://www.pfizer.com/newsroom/press-releases/api/json",
		},
	}
}
