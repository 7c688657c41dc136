package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prerna1001/pharma-press-tracker/internal/press"
)

// fakeIndex returns canned results and records the queries it saw.
type fakeIndex struct {
	result    Result
	err       error
	companies []string
	minDate   press.Date
	maxDate   press.Date
	config    FilterConfig
	lastQuery Query
}

func (f *fakeIndex) EnsureIndex(context.Context) error { return nil }
func (f *fakeIndex) DeleteIndex(context.Context) error { return nil }
func (f *fakeIndex) BulkUpsert(_ context.Context, docs []Document) (int, error) {
	return len(docs), nil
}
func (f *fakeIndex) Search(_ context.Context, q Query) (Result, error) {
	f.lastQuery = q
	return f.result, f.err
}
func (f *fakeIndex) Companies(context.Context) ([]string, error) { return f.companies, nil }
func (f *fakeIndex) DateRange(context.Context) (press.Date, press.Date, error) {
	return f.minDate, f.maxDate, nil
}
func (f *fakeIndex) GetByID(context.Context, string) (Document, bool, error) {
	return Document{}, false, nil
}
func (f *fakeIndex) FilterConfigDoc(context.Context) (FilterConfig, error) { return f.config, nil }
func (f *fakeIndex) EnsureFilterConfig(context.Context, FilterConfig) error {
	return nil
}

func newTestService(index Index) *Service {
	return NewService(index, zap.NewNop(), 20, 100)
}

func TestExpandTerms(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"trial", "trials"}, ExpandTerms("trial"))
	assert.Equal(t, []string{"results", "result"}, ExpandTerms("results"))
	assert.Equal(t, []string{"trial", "trials", "results", "result"}, ExpandTerms("Trial Results"))

	// Single-character tokens are dropped; two-character tokens pass
	// through without a variant.
	assert.Equal(t, []string{"eu"}, ExpandTerms("a eu"))
	assert.Empty(t, ExpandTerms("  "))
}

func TestExpandTermsDeduplicates(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"trial", "trials"}, ExpandTerms("trial trials"))
}

func TestQueryDropsRepeatedBoilerplateFragments(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{result: Result{
		Total: 1,
		Hits: []Hit{{
			Doc: Document{Title: "Update", Company: "Acme", URL: "https://acme.test/u"},
			BodyFragments: []string{
				"Contact us for details",
				"Contact us for details",
				"New drug <em>trial</em> <em>results</em>",
			},
		}},
	}}
	svc := newTestService(index)

	got, err := svc.Query(context.Background(), QueryParams{Text: "trial results", Highlights: true})
	require.NoError(t, err)
	require.Len(t, got.Hits, 1)

	hit := got.Hits[0]
	assert.Equal(t, "New drug trial results", hit.Summary)
	assert.Equal(t, []string{"New drug trial results"}, hit.Matches)
	assert.NotContains(t, hit.Matches, "Contact us for details")
}

func TestQueryTitleFragmentsRankFirst(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{result: Result{
		Total: 1,
		Hits: []Hit{{
			Doc:            Document{Title: "Trial update"},
			TitleFragments: []string{"<em>Trial</em> update"},
			BodyFragments:  []string{"A longer body fragment about the trial program"},
		}},
	}}
	svc := newTestService(index)

	got, err := svc.Query(context.Background(), QueryParams{Text: "trial", Highlights: true})
	require.NoError(t, err)
	require.Len(t, got.Hits, 1)
	assert.Equal(t, "Trial update", got.Hits[0].Summary)
	assert.Equal(t, []string{"Trial update", "A longer body fragment about the trial program"},
		got.Hits[0].Matches)
}

func TestQueryDiscardsFragmentsWithoutTerms(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{result: Result{
		Total: 1,
		Hits: []Hit{{
			Doc:           Document{Title: "Update", FullText: "The company announced new trial results today in Copenhagen."},
			BodyFragments: []string{"An unrelated highlight"},
		}},
	}}
	svc := newTestService(index)

	got, err := svc.Query(context.Background(), QueryParams{Text: "trial", Highlights: true})
	require.NoError(t, err)
	require.Len(t, got.Hits, 1)

	// No fragment contains a term, so the windowed body snippet is used.
	assert.Contains(t, got.Hits[0].Summary, "trial")
}

func TestQueryWindowFallbackEllipses(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("padding words before the match keep growing longer here. ", 40) +
		"The new trial results were announced today." +
		strings.Repeat(" trailing filler text continues well past the window edge.", 40)

	index := &fakeIndex{result: Result{
		Total: 1,
		Hits:  []Hit{{Doc: Document{Title: "Update", FullText: long}}},
	}}
	svc := newTestService(index)

	got, err := svc.Query(context.Background(), QueryParams{Text: "trial", Highlights: true})
	require.NoError(t, err)
	require.Len(t, got.Hits, 1)

	summary := got.Hits[0].Summary
	assert.Contains(t, summary, "trial")
	assert.True(t, len(summary) <= snippetWindow+6, "summary length %d", len(summary))
	assert.True(t, summary[:3] == "..." && summary[len(summary)-3:] == "...",
		"expected ellipses at both truncated edges: %q", summary)
}

func TestWindowSnippetNoEllipsisWithoutTruncation(t *testing.T) {
	t.Parallel()

	got := windowSnippet("Short text with trial results inside.", []string{"trial"})
	assert.Equal(t, "Short text with trial results inside.", got)
}

func TestWindowSnippetNoTermReturnsEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", windowSnippet("Nothing relevant here.", []string{"trial"}))
}

func TestQueryCapsMatchesAtThree(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{result: Result{
		Total: 1,
		Hits: []Hit{{
			Doc: Document{Title: "Trials"},
			BodyFragments: []string{
				"first trial fragment",
				"second trial fragment two",
				"third trial fragment three x",
				"fourth trial fragment four xx",
			},
		}},
	}}
	svc := newTestService(index)

	got, err := svc.Query(context.Background(), QueryParams{Text: "trial", Highlights: true})
	require.NoError(t, err)
	require.Len(t, got.Hits, 1)
	assert.Len(t, got.Hits[0].Matches, 3)
}

func TestQueryClampsLimitAndExpandsTerms(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{}
	svc := newTestService(index)

	_, err := svc.Query(context.Background(), QueryParams{Text: "trial", Limit: 10000})
	require.NoError(t, err)
	assert.Equal(t, 100, index.lastQuery.Size)
	assert.Equal(t, []string{"trial", "trials"}, index.lastQuery.Terms)

	_, err = svc.Query(context.Background(), QueryParams{Text: "trial"})
	require.NoError(t, err)
	assert.Equal(t, 20, index.lastQuery.Size)
}

func TestQueryPropagatesIndexError(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{err: errors.New("cluster down")}
	svc := newTestService(index)

	_, err := svc.Query(context.Background(), QueryParams{Text: "trial"})
	require.Error(t, err)
}

func TestFilterOptions(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{
		companies: []string{"Pfizer", "AstraZeneca"},
		minDate:   press.NewDate(2026, time.January, 5),
		maxDate:   press.NewDate(2026, time.June, 30),
	}
	svc := newTestService(index)

	opts, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AstraZeneca", "Pfizer"}, opts.Companies)
	assert.Equal(t, "2026-01-05", opts.MinDate.String())
	assert.Equal(t, "2026-06-30", opts.MaxDate.String())
}

func TestFilterConfigMergesLiveFacets(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{
		companies: []string{"Pfizer"},
		minDate:   press.NewDate(2026, time.January, 5),
		maxDate:   press.NewDate(2026, time.June, 30),
	}
	svc := newTestService(index)

	cfg, err := svc.FilterConfig(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Fields)

	var sawCompany, sawDate bool
	for _, field := range cfg.Fields {
		switch field.Name {
		case "company":
			sawCompany = true
			assert.Equal(t, []string{"Pfizer"}, field.Options)
		case "published_date":
			sawDate = true
			assert.Equal(t, "2026-01-05", field.Min)
			assert.Equal(t, "2026-06-30", field.Max)
		}
	}
	assert.True(t, sawCompany)
	assert.True(t, sawDate)
}

func TestPagePagination(t *testing.T) {
	t.Parallel()

	hits := make([]Hit, 10)
	for i := range hits {
		hits[i] = Hit{Doc: Document{URL: "https://acme.test/item"}}
	}
	index := &fakeIndex{result: Result{Total: 25, Hits: hits}}
	svc := newTestService(index)

	page, err := svc.Page(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 10, index.lastQuery.From)
}
