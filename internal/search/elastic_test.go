package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prerna1001/pharma-press-tracker/internal/press"
)

func TestBuildBoolQueryFreeText(t *testing.T) {
	t.Parallel()

	q := Query{RawText: "trial results", Terms: []string{"trial", "trials", "results", "result"}}
	body := buildBoolQuery(q)

	boolQuery, ok := body["bool"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, boolQuery["minimum_should_match"])

	should, ok := boolQuery["should"].([]any)
	require.True(t, ok)
	// One multi_match plus two wildcard clauses (title, full_text) per term.
	require.Len(t, should, 1+4*2)

	multiMatch, ok := should[0].(map[string]any)["multi_match"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "trial results", multiMatch["query"])
	assert.Equal(t, []string{"title^2", "full_text"}, multiMatch["fields"])

	wildcard, ok := should[1].(map[string]any)["wildcard"].(map[string]any)
	require.True(t, ok)
	clause, ok := wildcard["title"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "*trial*", clause["value"])
	assert.Equal(t, true, clause["case_insensitive"])
}

func TestBuildBoolQuerySkipsShortTerms(t *testing.T) {
	t.Parallel()

	body := buildBoolQuery(Query{RawText: "eu", Terms: []string{"eu"}})
	boolQuery := body["bool"].(map[string]any)
	should := boolQuery["should"].([]any)
	assert.Len(t, should, 1) // multi_match only, no wildcard clauses
}

func TestBuildBoolQueryFilters(t *testing.T) {
	t.Parallel()

	q := Query{
		Companies: []string{"Pfizer", "AstraZeneca"},
		StartDate: press.NewDate(2026, time.January, 1),
		EndDate:   press.NewDate(2026, time.June, 30),
	}
	body := buildBoolQuery(q)

	boolQuery, ok := body["bool"].(map[string]any)
	require.True(t, ok)
	_, hasShould := boolQuery["should"]
	assert.False(t, hasShould)

	filters, ok := boolQuery["filter"].([]any)
	require.True(t, ok)
	require.Len(t, filters, 2)

	terms := filters[0].(map[string]any)["terms"].(map[string]any)
	assert.Equal(t, []string{"Pfizer", "AstraZeneca"}, terms["company"])

	bounds := filters[1].(map[string]any)["range"].(map[string]any)["published_date"].(map[string]any)
	assert.Equal(t, "2026-01-01", bounds["gte"])
	assert.Equal(t, "2026-06-30", bounds["lte"])
}

func TestBuildBoolQueryEmptyIsMatchAll(t *testing.T) {
	t.Parallel()

	body := buildBoolQuery(Query{})
	_, ok := body["match_all"]
	assert.True(t, ok)
}

func TestDocumentForCopiesRecord(t *testing.T) {
	t.Parallel()

	rec := press.PressRelease{
		Company:       "Novo Nordisk",
		PublishedDate: press.NewDate(2026, time.February, 10),
		Title:         "A title",
		URL:           "https://www.novonordisk.com/news/a-title.html",
		FullText:      "Body",
	}
	doc := DocumentFor(rec)
	assert.Equal(t, rec.Company, doc.Company)
	assert.Equal(t, rec.Title, doc.Title)
	assert.Equal(t, rec.URL, doc.URL)
	assert.Equal(t, rec.FullText, doc.FullText)
	assert.Equal(t, "2026-02-10", doc.PublishedDate)
}
