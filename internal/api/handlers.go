package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/prerna1001/pharma-press-tracker/internal/database"
	"github.com/prerna1001/pharma-press-tracker/internal/press"
	"github.com/prerna1001/pharma-press-tracker/internal/search"
)

// pressReleaseSummary is the listing shape: record identity and
// metadata without the body text.
type pressReleaseSummary struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Company       string     `json:"company"`
	PublishedDate press.Date `json:"published_date"`
	URL           string     `json:"url"`
}

func summarize(record press.PressRelease) pressReleaseSummary {
	return pressReleaseSummary{
		ID:            record.DocumentID(),
		Title:         record.Title,
		Company:       record.Company,
		PublishedDate: record.PublishedDate,
		URL:           record.URL,
	}
}

// listPressReleases handles GET /api/press-releases. It returns every
// stored record, newest first, without full text.
func (s *Server) listPressReleases(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("List press releases failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list press releases")
		return
	}
	summaries := make([]pressReleaseSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, summarize(record))
	}
	writeData(w, summaries, len(summaries))
}

// pressReleaseDetail handles GET /api/press-releases/detail?url=.
func (s *Server) pressReleaseDetail(w http.ResponseWriter, r *http.Request) {
	rawURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "url parameter is required")
		return
	}
	record, err := s.store.GetByURL(r.Context(), rawURL)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "press release not found")
			return
		}
		s.logger.Error("Press release lookup failed",
			zap.String("url", rawURL), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load press release")
		return
	}
	writeData(w, record, 1)
}

// queryPressReleases handles GET /api/query-press-releases. The company
// parameter repeats; dates are inclusive ISO bounds.
func (s *Server) queryPressReleases(w http.ResponseWriter, r *http.Request) {
	params, err := queryParams(r, r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	params.Highlights = true
	s.runQuery(w, r, params)
}

// searchPressReleases handles GET /api/search. The q parameter is
// mandatory.
func (s *Server) searchPressReleases(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}
	params, err := queryParams(r, q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	params.Highlights = true
	s.runQuery(w, r, params)
}

// filterPressReleases handles GET /api/filter-press-releases, the
// legacy filter shape mapped onto the same query engine. Title text is
// matched without highlighting.
func (s *Server) filterPressReleases(w http.ResponseWriter, r *http.Request) {
	params, err := queryParams(r, r.URL.Query().Get("title"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.runQuery(w, r, params)
}

// runQuery executes a query and writes the envelope. An index failure
// degrades to an empty result set instead of failing the request.
func (s *Server) runQuery(w http.ResponseWriter, r *http.Request, params search.QueryParams) {
	result, err := s.queries.Query(r.Context(), params)
	if err != nil {
		s.logger.Error("Query failed", zap.Error(err))
		writeData(w, []search.QueryHit{}, 0)
		return
	}
	writeData(w, result.Hits, len(result.Hits))
}

// pagedPressReleases handles GET /press-releases/all?page=&size=.
func (s *Server) pagedPressReleases(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	size, err := intParam(r, "size", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.queries.Page(r.Context(), page, size)
	if err != nil {
		s.logger.Error("Paged listing failed", zap.Error(err))
		writeData(w, search.PageResult{Items: []search.Document{}, Page: page}, 0)
		return
	}
	writeData(w, result, len(result.Items))
}

// filterConfig handles GET /api/filter-config.
func (s *Server) filterConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.queries.FilterConfig(r.Context())
	if err != nil {
		s.logger.Error("Filter config failed", zap.Error(err))
		writeData(w, search.FilterConfig{}, 0)
		return
	}
	writeData(w, cfg, len(cfg.Fields))
}

// initialData handles GET /api/initial-data: the filter options plus
// the first page of records, for one-call client bootstrap.
func (s *Server) initialData(w http.ResponseWriter, r *http.Request) {
	filters, err := s.queries.FilterOptions(r.Context())
	if err != nil {
		s.logger.Error("Filter options failed", zap.Error(err))
		writeData(w, map[string]any{
			"filters":  search.FilterOptions{Companies: []string{}},
			"releases": []search.Document{},
			"total":    0,
		}, 0)
		return
	}
	page, err := s.queries.Page(r.Context(), 1, 0)
	if err != nil {
		s.logger.Error("Initial page failed", zap.Error(err))
		page = search.PageResult{Items: []search.Document{}}
	}
	writeData(w, map[string]any{
		"filters":  filters,
		"releases": page.Items,
		"total":    page.Total,
	}, len(page.Items))
}

func queryParams(r *http.Request, text string) (search.QueryParams, error) {
	params := search.QueryParams{
		Text:      strings.TrimSpace(text),
		Companies: companiesParam(r),
	}
	var err error
	if params.StartDate, err = dateParam(r, "start_date"); err != nil {
		return params, err
	}
	if params.EndDate, err = dateParam(r, "end_date"); err != nil {
		return params, err
	}
	if params.Limit, err = intParam(r, "limit", 0); err != nil {
		return params, err
	}
	return params, nil
}

func companiesParam(r *http.Request) []string {
	var companies []string
	for _, value := range r.URL.Query()["company"] {
		if value = strings.TrimSpace(value); value != "" {
			companies = append(companies, value)
		}
	}
	return companies
}

func dateParam(r *http.Request, name string) (press.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return press.Date{}, nil
	}
	date, err := press.ParseISODate(raw)
	if err != nil {
		return press.Date{}, fmt.Errorf("invalid %s: expected YYYY-MM-DD", name)
	}
	return date, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid %s: expected a non-negative integer", name)
	}
	return value, nil
}
