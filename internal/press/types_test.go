package press

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSONRoundTrip(t *testing.T) {
	t.Parallel()

	d := NewDate(2026, time.March, 14)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-14"`, string(data))

	var parsed Date
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, d, parsed)
}

func TestDateJSONNull(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var parsed Date
	require.NoError(t, json.Unmarshal([]byte("null"), &parsed))
	assert.True(t, parsed.IsZero())
}

func TestDateOfTruncatesTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, time.June, 2, 18, 45, 12, 0, time.UTC)
	assert.Equal(t, "2026-06-02", DateOf(ts).String())
}

func TestParseISODateRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := ParseISODate("June 2, 2026")
	require.Error(t, err)
}

func TestComplete(t *testing.T) {
	t.Parallel()

	rec := PressRelease{
		Company:       "Novo Nordisk",
		PublishedDate: NewDate(2026, time.May, 1),
		Title:         "A title",
		URL:           "https://www.novonordisk.com/news/a-title.html",
	}
	assert.True(t, rec.Complete())

	noURL := rec
	noURL.URL = ""
	assert.False(t, noURL.Complete())

	noDate := rec
	noDate.PublishedDate = Date{}
	assert.False(t, noDate.Complete())
}

func TestDocumentIDPrefersURL(t *testing.T) {
	t.Parallel()

	rec := PressRelease{
		Company: "Pfizer",
		Title:   "New drug trial results",
		URL:     "https://www.pfizer.com/news/press-release/detail",
	}
	assert.Equal(t, rec.URL, rec.DocumentID())
}

func TestDocumentIDCompositeIsStable(t *testing.T) {
	t.Parallel()

	a := PressRelease{Company: "Pfizer", Title: "New  Drug Trial Results"}
	b := PressRelease{Company: "Pfizer", Title: "new drug trial results"}
	assert.Equal(t, a.DocumentID(), b.DocumentID())
	assert.Contains(t, a.DocumentID(), "Pfizer:")

	other := PressRelease{Company: "Pfizer", Title: "a different title"}
	assert.NotEqual(t, a.DocumentID(), other.DocumentID())
}

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "new drug trial results", NormalizeTitle("  New   Drug\tTrial Results "))
	assert.Equal(t, "", NormalizeTitle("   "))
}
