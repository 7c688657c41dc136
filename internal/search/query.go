package search

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/prerna1001/pharma-press-tracker/internal/press"
)

// Service layers term expansion and snippet selection over a generic
// Index. The engine's highlighter frequently returns either nothing or
// repeated boilerplate fragments, so the service re-ranks and filters
// fragments before handing anything to a client.
type Service struct {
	index        Index
	logger       *zap.Logger
	defaultLimit int
	maxLimit     int
}

// NewService wires the ranking layer to an index.
func NewService(index Index, logger *zap.Logger, defaultLimit, maxLimit int) *Service {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &Service{
		index:        index,
		logger:       logger,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// QueryParams is one query call.
type QueryParams struct {
	Text       string
	Companies  []string
	StartDate  press.Date
	EndDate    press.Date
	Limit      int
	From       int
	Highlights bool
}

// QueryHit is one ranked result with its selected snippets.
type QueryHit struct {
	Title         string   `json:"title"`
	Company       string   `json:"company"`
	PublishedDate string   `json:"published_date"`
	URL           string   `json:"url"`
	Summary       string   `json:"summary"`
	Matches       []string `json:"matches,omitempty"`
}

// QueryResult is the ordered hit list plus the engine's total.
type QueryResult struct {
	Hits  []QueryHit `json:"hits"`
	Total int        `json:"total"`
}

// ExpandTerms splits free text into lowercase tokens, drops
// single-character tokens, and for each token longer than two characters
// adds a naive singular/plural variant. "trial" yields trial and trials,
// "results" yields results and result. This boosts recall against exact
// substring matching; it is not a lemmatizer.
func ExpandTerms(text string) []string {
	seen := make(map[string]struct{})
	var terms []string
	add := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	for _, token := range strings.Fields(strings.ToLower(text)) {
		if utf8.RuneCountInString(token) < 2 {
			continue
		}
		add(token)
		if len(token) > 2 {
			if strings.HasSuffix(token, "s") {
				add(strings.TrimSuffix(token, "s"))
			} else {
				add(token + "s")
			}
		}
	}
	return terms
}

// Query runs one search and post-processes each hit's highlight
// fragments into a summary and at most three match snippets.
func (s *Service) Query(ctx context.Context, params QueryParams) (QueryResult, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	terms := ExpandTerms(params.Text)

	res, err := s.index.Search(ctx, Query{
		RawText:   params.Text,
		Terms:     terms,
		Companies: params.Companies,
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
		From:      params.From,
		Size:      limit,
		Highlight: params.Highlights,
	})
	if err != nil {
		return QueryResult{}, fmt.Errorf("query: %w", err)
	}
	s.logger.Debug("Query executed",
		zap.String("text", params.Text),
		zap.Int("terms", len(terms)),
		zap.Int("total", res.Total))

	result := QueryResult{Total: res.Total, Hits: make([]QueryHit, 0, len(res.Hits))}
	for _, hit := range res.Hits {
		matches, summary := selectSnippets(hit, terms)
		result.Hits = append(result.Hits, QueryHit{
			Title:         hit.Doc.Title,
			Company:       hit.Doc.Company,
			PublishedDate: hit.Doc.PublishedDate,
			URL:           hit.Doc.URL,
			Summary:       summary,
			Matches:       matches,
		})
	}
	return result, nil
}

const maxMatches = 3

type fragment struct {
	text    string
	norm    string
	isTitle bool
	freq    int
}

var markupPattern = regexp.MustCompile(`<[^>]+>`)

func stripMarkup(s string) string {
	return strings.TrimSpace(markupPattern.ReplaceAllString(s, ""))
}

func normalizeFragment(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(stripMarkup(s)), " "))
}

// selectSnippets reduces a hit's highlight fragments to at most three
// matches and one summary, with tiered fallbacks:
//
//  1. rank by (title first, fragment frequency, length) so rare short
//     fragments beat boilerplate repeated through the body
//  2. dedupe and drop repeated body fragments unless that empties the set
//  3. require a fragment to literally contain an expanded term
//  4. fall back to the best-ranked candidate, then to a substring window
//     cut straight out of the body text
func selectSnippets(hit Hit, terms []string) ([]string, string) {
	fragments := collectFragments(hit)

	ranked := make([]fragment, len(fragments))
	copy(ranked, fragments)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].isTitle != ranked[j].isTitle {
			return ranked[i].isTitle
		}
		if ranked[i].freq != ranked[j].freq {
			return ranked[i].freq < ranked[j].freq
		}
		return len(ranked[i].text) < len(ranked[j].text)
	})

	deduped := dedupeFragments(ranked)

	survivors := make([]fragment, 0, len(deduped))
	for _, f := range deduped {
		if !f.isTitle && f.freq > 1 {
			continue
		}
		survivors = append(survivors, f)
	}
	if len(survivors) == 0 {
		survivors = deduped
	}

	if len(terms) > 0 {
		contained := make([]fragment, 0, len(survivors))
		for _, f := range survivors {
			if containsAnyTerm(f.text, terms) {
				contained = append(contained, f)
			}
		}
		survivors = contained
	}

	if len(survivors) == 0 && len(ranked) > 0 {
		best := ranked[0]
		if len(terms) == 0 || containsAnyTerm(best.text, terms) {
			survivors = []fragment{best}
		}
	}

	if len(survivors) == 0 {
		if window := windowSnippet(hit.Doc.FullText, terms); window != "" {
			survivors = []fragment{{text: window}}
		}
	}

	if len(survivors) > maxMatches {
		survivors = survivors[:maxMatches]
	}

	matches := make([]string, 0, len(survivors))
	for _, f := range survivors {
		matches = append(matches, f.text)
	}

	summary := ""
	if len(matches) > 0 {
		summary = matches[0]
	}
	if summary != "" && len(terms) > 0 && !containsAnyTerm(summary, terms) {
		if window := windowSnippet(hit.Doc.FullText, terms); window != "" {
			summary = window
		}
	}
	return matches, summary
}

func collectFragments(hit Hit) []fragment {
	var fragments []fragment
	for _, raw := range hit.TitleFragments {
		text := stripMarkup(raw)
		if text == "" {
			continue
		}
		fragments = append(fragments, fragment{text: text, norm: normalizeFragment(raw), isTitle: true})
	}
	for _, raw := range hit.BodyFragments {
		text := stripMarkup(raw)
		if text == "" {
			continue
		}
		fragments = append(fragments, fragment{text: text, norm: normalizeFragment(raw)})
	}
	counts := make(map[string]int, len(fragments))
	for _, f := range fragments {
		counts[f.norm]++
	}
	for i := range fragments {
		fragments[i].freq = counts[fragments[i].norm]
	}
	return fragments
}

func dedupeFragments(fragments []fragment) []fragment {
	seen := make(map[string]struct{}, len(fragments))
	out := make([]fragment, 0, len(fragments))
	for _, f := range fragments {
		if _, ok := seen[f.norm]; ok {
			continue
		}
		seen[f.norm] = struct{}{}
		out = append(out, f)
	}
	return out
}

func containsAnyTerm(text string, terms []string) bool {
	lower := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

const snippetWindow = 240

// windowSnippet cuts a fixed-width window out of the body text around
// the earliest query-term occurrence, marking truncation with ellipses.
// Returns "" when no term occurs in the text.
func windowSnippet(fullText string, terms []string) string {
	if fullText == "" || len(terms) == 0 {
		return ""
	}
	lower := strings.ToLower(fullText)
	pos := -1
	for _, term := range terms {
		if i := strings.Index(lower, term); i >= 0 && (pos < 0 || i < pos) {
			pos = i
		}
	}
	if pos < 0 {
		return ""
	}

	start := pos - snippetWindow/2
	if start < 0 {
		start = 0
	}
	end := start + snippetWindow
	if end > len(fullText) {
		end = len(fullText)
	}
	for start > 0 && !utf8.RuneStart(fullText[start]) {
		start--
	}
	for end < len(fullText) && !utf8.RuneStart(fullText[end]) {
		end++
	}

	snippet := strings.TrimSpace(fullText[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(fullText) {
		snippet += "..."
	}
	return snippet
}

// FilterOptions is what a client needs to render search filters.
type FilterOptions struct {
	Companies []string   `json:"companies"`
	MinDate   press.Date `json:"min_date"`
	MaxDate   press.Date `json:"max_date"`
}

// FilterOptions aggregates the live facet values from the index.
func (s *Service) FilterOptions(ctx context.Context) (FilterOptions, error) {
	companies, err := s.index.Companies(ctx)
	if err != nil {
		return FilterOptions{}, fmt.Errorf("filter options: %w", err)
	}
	sort.Strings(companies)
	minDate, maxDate, err := s.index.DateRange(ctx)
	if err != nil {
		return FilterOptions{}, fmt.Errorf("filter options: %w", err)
	}
	return FilterOptions{Companies: companies, MinDate: minDate, MaxDate: maxDate}, nil
}

// FilterConfig returns the stored filter field configuration merged
// with live facet options so select fields carry current values.
func (s *Service) FilterConfig(ctx context.Context) (FilterConfig, error) {
	cfg, err := s.index.FilterConfigDoc(ctx)
	if err != nil {
		return FilterConfig{}, fmt.Errorf("filter config: %w", err)
	}
	if len(cfg.Fields) == 0 {
		cfg = DefaultFilterConfig(s.maxLimit)
	}
	opts, err := s.FilterOptions(ctx)
	if err != nil {
		return FilterConfig{}, err
	}
	for i, field := range cfg.Fields {
		switch field.Name {
		case "company":
			cfg.Fields[i].Options = opts.Companies
		case "published_date":
			cfg.Fields[i].Min = opts.MinDate.String()
			cfg.Fields[i].Max = opts.MaxDate.String()
		}
	}
	return cfg, nil
}

// PageResult is one page of the full archive, newest first.
type PageResult struct {
	Items      []Document `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Size       int        `json:"size"`
	TotalPages int        `json:"total_pages"`
}

// Page returns offset-paginated records without any text matching.
func (s *Service) Page(ctx context.Context, page, size int) (PageResult, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = s.defaultLimit
	}
	if size > s.maxLimit {
		size = s.maxLimit
	}
	res, err := s.index.Search(ctx, Query{From: (page - 1) * size, Size: size})
	if err != nil {
		return PageResult{}, fmt.Errorf("page: %w", err)
	}
	items := make([]Document, 0, len(res.Hits))
	for _, hit := range res.Hits {
		items = append(items, hit.Doc)
	}
	totalPages := 0
	if res.Total > 0 {
		totalPages = (res.Total + size - 1) / size
	}
	return PageResult{
		Items:      items,
		Total:      res.Total,
		Page:       page,
		Size:       size,
		TotalPages: totalPages,
	}, nil
}
