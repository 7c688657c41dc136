// Package search mirrors press releases into a document index and layers
// the ranking and snippet-selection logic on top of it.
package search

import (
	"context"

	"github.com/prerna1001/pharma-press-tracker/internal/press"
)

// Document is the indexed shape of a press release. The document id is
// press.PressRelease.DocumentID, i.e. the canonical URL when present.
type Document struct {
	Company       string `json:"company"`
	Title         string `json:"title"`
	PublishedDate string `json:"published_date"`
	URL           string `json:"url"`
	FullText      string `json:"full_text,omitempty"`
}

// DocumentFor converts a record into its indexed form.
func DocumentFor(record press.PressRelease) Document {
	return Document{
		Company:       record.Company,
		Title:         record.Title,
		PublishedDate: record.PublishedDate.String(),
		URL:           record.URL,
		FullText:      record.FullText,
	}
}

// Query is an engine-neutral search request. RawText feeds the engine's
// relevance matching; Terms carries the expanded token set used for
// wildcard clauses. The engine adapter translates both into its own DSL,
// so ranking logic never touches engine syntax.
type Query struct {
	RawText   string
	Terms     []string
	Companies []string
	StartDate press.Date
	EndDate   press.Date
	From      int
	Size      int
	Highlight bool
}

// Hit is one matched document with the engine's highlight fragments.
type Hit struct {
	Doc            Document
	Score          float64
	TitleFragments []string
	BodyFragments  []string
}

// Result is a page of hits plus the total match count.
type Result struct {
	Hits  []Hit
	Total int
}

// FilterField describes one filter control a client should render.
type FilterField struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Label   string   `json:"label"`
	Options []string `json:"options,omitempty"`
	Min     string   `json:"min,omitempty"`
	Max     string   `json:"max,omitempty"`
}

// FilterConfig is the small configuration document describing the filter
// UI, stored in its own collection beside the press releases.
type FilterConfig struct {
	Fields      []FilterField `json:"fields"`
	ResultLimit int           `json:"result_limit"`
}

// Index is the external document store contract.
type Index interface {
	// EnsureIndex creates the collection and mappings if absent.
	EnsureIndex(ctx context.Context) error
	// DeleteIndex removes the collection; missing is not an error.
	DeleteIndex(ctx context.Context) error
	// BulkUpsert indexes the documents and returns the success count.
	BulkUpsert(ctx context.Context, docs []Document) (int, error)
	// Search runs one query and returns hits sorted by published date
	// descending, with highlight fragments when requested.
	Search(ctx context.Context, q Query) (Result, error)
	// Companies returns the distinct companies via a term aggregation.
	Companies(ctx context.Context) ([]string, error)
	// DateRange returns the min and max published dates in the index.
	DateRange(ctx context.Context) (press.Date, press.Date, error)
	// GetByID fetches one document by id.
	GetByID(ctx context.Context, id string) (Document, bool, error)
	// FilterConfigDoc returns the stored filter configuration.
	FilterConfigDoc(ctx context.Context) (FilterConfig, error)
	// EnsureFilterConfig writes the filter configuration document.
	EnsureFilterConfig(ctx context.Context, cfg FilterConfig) error
}

// DefaultFilterConfig is what gets written on each rebuild.
func DefaultFilterConfig(resultLimit int) FilterConfig {
	return FilterConfig{
		Fields: []FilterField{
			{Name: "query", Type: "text", Label: "Search"},
			{Name: "company", Type: "multi_select", Label: "Company"},
			{Name: "published_date", Type: "date_range", Label: "Published"},
		},
		ResultLimit: resultLimit,
	}
}
