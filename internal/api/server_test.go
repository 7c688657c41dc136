package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prerna1001/pharma-press-tracker/internal/database"
	"github.com/prerna1001/pharma-press-tracker/internal/press"
	"github.com/prerna1001/pharma-press-tracker/internal/search"
)

type fakeStore struct {
	records []press.PressRelease
	listErr error
}

func (f *fakeStore) Reset(context.Context) error                      { return nil }
func (f *fakeStore) Insert(context.Context, press.PressRelease) error { return nil }
func (f *fakeStore) List(context.Context) ([]press.PressRelease, error) {
	return f.records, f.listErr
}
func (f *fakeStore) GetByURL(_ context.Context, url string) (press.PressRelease, error) {
	for _, rec := range f.records {
		if rec.URL == url {
			return rec, nil
		}
	}
	return press.PressRelease{}, database.ErrNotFound
}
func (f *fakeStore) Close() {}

type fakeIndex struct {
	result Result
	err    error
}

// Result aliases keep the fake readable.
type Result = search.Result

func (f *fakeIndex) EnsureIndex(context.Context) error { return nil }
func (f *fakeIndex) DeleteIndex(context.Context) error { return nil }
func (f *fakeIndex) BulkUpsert(_ context.Context, docs []search.Document) (int, error) {
	return len(docs), nil
}
func (f *fakeIndex) Search(context.Context, search.Query) (search.Result, error) {
	return f.result, f.err
}
func (f *fakeIndex) Companies(context.Context) ([]string, error) {
	return []string{"Acme"}, f.err
}
func (f *fakeIndex) DateRange(context.Context) (press.Date, press.Date, error) {
	return press.NewDate(2026, time.January, 1), press.NewDate(2026, time.June, 1), f.err
}
func (f *fakeIndex) GetByID(context.Context, string) (search.Document, bool, error) {
	return search.Document{}, false, nil
}
func (f *fakeIndex) FilterConfigDoc(context.Context) (search.FilterConfig, error) {
	return search.FilterConfig{}, f.err
}
func (f *fakeIndex) EnsureFilterConfig(context.Context, search.FilterConfig) error { return nil }

type testEnvelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Message string          `json:"message"`
}

func doRequest(t *testing.T, server *Server, path string) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func newTestServer(store database.Store, index search.Index) *Server {
	queries := search.NewService(index, zap.NewNop(), 20, 100)
	return NewServer(store, queries, zap.NewNop())
}

func sampleRecords() []press.PressRelease {
	return []press.PressRelease{
		{
			Company:       "Acme",
			PublishedDate: press.NewDate(2026, time.March, 14),
			Title:         "Trial results announced",
			URL:           "https://acme.test/news/trial-results",
			FullText:      "Body text",
		},
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeStore{}, &fakeIndex{})
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestListPressReleases(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeStore{records: sampleRecords()}, &fakeIndex{})
	rec, env := doRequest(t, server, "/api/press-releases")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "https://acme.test/news/trial-results", items[0]["id"])
	assert.Equal(t, "Trial results announced", items[0]["title"])
	assert.Equal(t, "Acme", items[0]["company"])
	assert.Equal(t, "2026-03-14", items[0]["published_date"])
	assert.NotContains(t, items[0], "full_text")
}

func TestListPressReleasesStoreFailure(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeStore{listErr: errors.New("connection refused")}, &fakeIndex{})
	rec, env := doRequest(t, server, "/api/press-releases")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", env.Status)
}

func TestSearchRequiresQ(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeStore{}, &fakeIndex{})
	rec, env := doRequest(t, server, "/api/search")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", env.Status)
}

func TestSearchReturnsHits(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{result: Result{
		Total: 1,
		Hits: []search.Hit{{
			Doc: search.Document{
				Company:       "Acme",
				Title:         "Trial results announced",
				PublishedDate: "2026-03-14",
				URL:           "https://acme.test/news/trial-results",
			},
			BodyFragments: []string{"the <em>trial</em> met its endpoint"},
		}},
	}}
	server := newTestServer(&fakeStore{}, index)
	rec, env := doRequest(t, server, "/api/search?q=trial")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)

	var hits []search.QueryHit
	require.NoError(t, json.Unmarshal(env.Data, &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "the trial met its endpoint", hits[0].Summary)
}

func TestSearchDegradesOnIndexError(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeStore{}, &fakeIndex{err: errors.New("cluster down")})
	rec, env := doRequest(t, server, "/api/search?q=trial")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)
	require.NotNil(t, env.Count)
	assert.Equal(t, 0, *env.Count)
}

func TestQueryPressReleasesRejectsBadDate(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeStore{}, &fakeIndex{})
	rec, env := doRequest(t, server, "/api/query-press-releases?start_date=March+1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", env.Status)
}

func TestDetailFound(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeStore{records: sampleRecords()}, &fakeIndex{})
	rec, env := doRequest(t, server,
		"/api/press-releases/detail?url=https%3A%2F%2Facme.test%2Fnews%2Ftrial-results")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)

	var record press.PressRelease
	require.NoError(t, json.Unmarshal(env.Data, &record))
	assert.Equal(t, "Trial results announced", record.Title)
}

func TestDetailNotFound(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeStore{}, &fakeIndex{})
	rec, env := doRequest(t, server, "/api/press-releases/detail?url=https%3A%2F%2Facme.test%2Fmissing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", env.Status)
}

func TestDetailRequiresURL(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeStore{}, &fakeIndex{})
	rec, _ := doRequest(t, server, "/api/press-releases/detail")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPagedPressReleases(t *testing.T) {
	t.Parallel()

	hits := make([]search.Hit, 10)
	for i := range hits {
		hits[i] = search.Hit{Doc: search.Document{URL: "https://acme.test/item"}}
	}
	server := newTestServer(&fakeStore{}, &fakeIndex{result: Result{Total: 25, Hits: hits}})
	rec, env := doRequest(t, server, "/press-releases/all?page=2&size=10")

	assert.Equal(t, http.StatusOK, rec.Code)

	var page search.PageResult
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Items, 10)
}

func TestPagedPressReleasesRejectsBadPage(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeStore{}, &fakeIndex{})
	rec, _ := doRequest(t, server, "/press-releases/all?page=x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilterConfig(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeStore{}, &fakeIndex{})
	rec, env := doRequest(t, server, "/api/filter-config")

	assert.Equal(t, http.StatusOK, rec.Code)

	var cfg search.FilterConfig
	require.NoError(t, json.Unmarshal(env.Data, &cfg))
	assert.NotEmpty(t, cfg.Fields)
}

func TestInitialData(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeStore{}, &fakeIndex{result: Result{Total: 1, Hits: []search.Hit{{
		Doc: search.Document{Title: "Trial results announced"},
	}}}})
	rec, env := doRequest(t, server, "/api/initial-data")

	assert.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Filters  search.FilterOptions `json:"filters"`
		Releases []search.Document    `json:"releases"`
		Total    int                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, []string{"Acme"}, payload.Filters.Companies)
	assert.Equal(t, 1, payload.Total)
	require.Len(t, payload.Releases, 1)
}
