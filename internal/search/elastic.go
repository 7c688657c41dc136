package search

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"github.com/prerna1001/pharma-press-tracker/internal/press"
)

const filterConfigDocID = "filter-config"

// ElasticConfig points the client at the cluster.
type ElasticConfig struct {
	Addresses     []string
	Username      string
	Password      string
	Index         string
	ConfigIndex   string
	SkipTLSVerify bool
}

// ElasticIndex implements Index against an Elasticsearch cluster.
type ElasticIndex struct {
	client      *elasticsearch.Client
	index       string
	configIndex string
	logger      *zap.Logger
}

// NewElasticIndex builds the client and verifies connectivity.
func NewElasticIndex(cfg ElasticConfig, logger *zap.Logger) (*ElasticIndex, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	}
	if cfg.SkipTLSVerify {
		// Local clusters ship self-signed certs.
		esCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		}
	}
	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", press.ErrIndex, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: connect: %s", press.ErrIndex, res.String())
	}

	index := cfg.Index
	if index == "" {
		index = "press_releases"
	}
	configIndex := cfg.ConfigIndex
	if configIndex == "" {
		configIndex = index + "_config"
	}
	return &ElasticIndex{
		client:      client,
		index:       index,
		configIndex: configIndex,
		logger:      logger,
	}, nil
}

var indexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"company":        map[string]any{"type": "keyword"},
			"title":          map[string]any{"type": "text", "analyzer": "standard"},
			"published_date": map[string]any{"type": "date"},
			"url":            map[string]any{"type": "keyword"},
			"full_text":      map[string]any{"type": "text", "analyzer": "standard"},
		},
	},
}

// EnsureIndex creates the collection with mappings if it does not exist.
func (e *ElasticIndex) EnsureIndex(ctx context.Context) error {
	exists, err := e.indexExists(ctx, e.index)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	body, err := jsonReader(indexMapping)
	if err != nil {
		return err
	}
	res, err := e.client.Indices.Create(e.index,
		e.client.Indices.Create.WithContext(ctx),
		e.client.Indices.Create.WithBody(body),
	)
	return e.finish(res, err, "create index")
}

// DeleteIndex removes the collection; a missing index is not an error.
func (e *ElasticIndex) DeleteIndex(ctx context.Context) error {
	res, err := e.client.Indices.Delete([]string{e.index},
		e.client.Indices.Delete.WithContext(ctx),
		e.client.Indices.Delete.WithIgnoreUnavailable(true),
	)
	return e.finish(res, err, "delete index")
}

// BulkUpsert indexes all documents in one bulk request and returns the
// number that succeeded.
func (e *ElasticIndex) BulkUpsert(ctx context.Context, docs []Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	var buf bytes.Buffer
	for _, doc := range docs {
		id := doc.URL
		if id == "" {
			record := press.PressRelease{Company: doc.Company, Title: doc.Title}
			id = record.DocumentID()
		}
		action, err := json.Marshal(map[string]any{
			"index": map[string]any{"_index": e.index, "_id": id},
		})
		if err != nil {
			return 0, fmt.Errorf("marshal bulk action: %w", err)
		}
		source, err := json.Marshal(doc)
		if err != nil {
			return 0, fmt.Errorf("marshal document: %w", err)
		}
		buf.Write(action)
		buf.WriteByte('\n')
		buf.Write(source)
		buf.WriteByte('\n')
	}

	res, err := e.client.Bulk(bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: bulk: %v", press.ErrIndex, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("%w: bulk: %s", press.ErrIndex, res.String())
	}

	var parsed struct {
		Items []map[string]struct {
			Status int `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("%w: decode bulk response: %v", press.ErrIndex, err)
	}
	success := 0
	for _, item := range parsed.Items {
		for _, op := range item {
			if op.Status >= 200 && op.Status < 300 {
				success++
			}
		}
	}
	if failed := len(parsed.Items) - success; failed > 0 {
		e.logger.Warn("Bulk indexing had failures",
			zap.Int("indexed", success), zap.Int("failed", failed))
	}
	return success, nil
}

// Search translates the engine-neutral query into the bool-query DSL:
// a weighted multi-field match plus per-term wildcard clauses as should
// clauses, with companies and date range applied as hard filters, sorted
// by published date descending.
func (e *ElasticIndex) Search(ctx context.Context, q Query) (Result, error) {
	body := map[string]any{
		"query": buildBoolQuery(q),
		"from":  q.From,
		"size":  q.Size,
		"sort": []any{
			map[string]any{"published_date": map[string]any{"order": "desc"}},
		},
	}
	if q.Highlight {
		body["highlight"] = map[string]any{
			"fields": map[string]any{
				"title": map[string]any{"number_of_fragments": 1},
				"full_text": map[string]any{
					"number_of_fragments": 3,
					"fragment_size":       180,
				},
			},
		}
	}

	reader, err := jsonReader(body)
	if err != nil {
		return Result{}, err
	}
	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(reader),
	)
	if err != nil {
		return Result{}, fmt.Errorf("%w: search: %v", press.ErrIndex, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return Result{}, fmt.Errorf("%w: search: %s", press.ErrIndex, res.String())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Score     float64             `json:"_score"`
				Source    Document            `json:"_source"`
				Highlight map[string][]string `json:"highlight"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("%w: decode search response: %v", press.ErrIndex, err)
	}

	result := Result{Total: parsed.Hits.Total.Value}
	for _, hit := range parsed.Hits.Hits {
		result.Hits = append(result.Hits, Hit{
			Doc:            hit.Source,
			Score:          hit.Score,
			TitleFragments: hit.Highlight["title"],
			BodyFragments:  hit.Highlight["full_text"],
		})
	}
	return result, nil
}

func buildBoolQuery(q Query) map[string]any {
	boolQuery := map[string]any{}

	var filters []any
	if len(q.Companies) > 0 {
		filters = append(filters, map[string]any{
			"terms": map[string]any{"company": q.Companies},
		})
	}
	if !q.StartDate.IsZero() || !q.EndDate.IsZero() {
		bounds := map[string]any{}
		if !q.StartDate.IsZero() {
			bounds["gte"] = q.StartDate.String()
		}
		if !q.EndDate.IsZero() {
			bounds["lte"] = q.EndDate.String()
		}
		filters = append(filters, map[string]any{
			"range": map[string]any{"published_date": bounds},
		})
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	if q.RawText != "" {
		should := []any{
			map[string]any{
				"multi_match": map[string]any{
					"query":  q.RawText,
					"fields": []string{"title^2", "full_text"},
				},
			},
		}
		for _, term := range q.Terms {
			if len(term) < 3 {
				continue
			}
			for _, field := range []string{"title", "full_text"} {
				should = append(should, map[string]any{
					"wildcard": map[string]any{
						field: map[string]any{
							"value":            "*" + term + "*",
							"case_insensitive": true,
						},
					},
				})
			}
		}
		boolQuery["should"] = should
		boolQuery["minimum_should_match"] = 1
	}

	if len(boolQuery) == 0 {
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{"bool": boolQuery}
}

// Companies returns the distinct company list via a term aggregation.
func (e *ElasticIndex) Companies(ctx context.Context) ([]string, error) {
	body := map[string]any{
		"size": 0,
		"aggs": map[string]any{
			"companies": map[string]any{
				"terms": map[string]any{"field": "company", "size": 100},
			},
		},
	}
	raw, err := e.aggregate(ctx, body)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Aggregations struct {
			Companies struct {
				Buckets []struct {
					Key string `json:"key"`
				} `json:"buckets"`
			} `json:"companies"`
		} `json:"aggregations"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode aggregation: %v", press.ErrIndex, err)
	}
	companies := make([]string, 0, len(parsed.Aggregations.Companies.Buckets))
	for _, bucket := range parsed.Aggregations.Companies.Buckets {
		companies = append(companies, bucket.Key)
	}
	return companies, nil
}

// DateRange returns the min and max published dates via aggregations.
func (e *ElasticIndex) DateRange(ctx context.Context) (press.Date, press.Date, error) {
	body := map[string]any{
		"size": 0,
		"aggs": map[string]any{
			"min_date": map[string]any{
				"min": map[string]any{"field": "published_date", "format": "yyyy-MM-dd"},
			},
			"max_date": map[string]any{
				"max": map[string]any{"field": "published_date", "format": "yyyy-MM-dd"},
			},
		},
	}
	raw, err := e.aggregate(ctx, body)
	if err != nil {
		return press.Date{}, press.Date{}, err
	}
	var parsed struct {
		Aggregations struct {
			MinDate struct {
				ValueAsString string `json:"value_as_string"`
			} `json:"min_date"`
			MaxDate struct {
				ValueAsString string `json:"value_as_string"`
			} `json:"max_date"`
		} `json:"aggregations"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return press.Date{}, press.Date{}, fmt.Errorf("%w: decode aggregation: %v", press.ErrIndex, err)
	}
	minDate, _ := press.ParseISODate(parsed.Aggregations.MinDate.ValueAsString)
	maxDate, _ := press.ParseISODate(parsed.Aggregations.MaxDate.ValueAsString)
	return minDate, maxDate, nil
}

func (e *ElasticIndex) aggregate(ctx context.Context, body map[string]any) ([]byte, error) {
	reader, err := jsonReader(body)
	if err != nil {
		return nil, err
	}
	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(reader),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregate: %v", press.ErrIndex, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: aggregate: %s", press.ErrIndex, res.String())
	}
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read aggregation: %v", press.ErrIndex, err)
	}
	return raw, nil
}

// GetByID fetches one document by its id.
func (e *ElasticIndex) GetByID(ctx context.Context, id string) (Document, bool, error) {
	res, err := e.client.Get(e.index, id, e.client.Get.WithContext(ctx))
	if err != nil {
		return Document{}, false, fmt.Errorf("%w: get: %v", press.ErrIndex, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return Document{}, false, nil
	}
	if res.IsError() {
		return Document{}, false, fmt.Errorf("%w: get: %s", press.ErrIndex, res.String())
	}
	var parsed struct {
		Source Document `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return Document{}, false, fmt.Errorf("%w: decode get response: %v", press.ErrIndex, err)
	}
	return parsed.Source, true, nil
}

// FilterConfigDoc reads the stored filter configuration document.
func (e *ElasticIndex) FilterConfigDoc(ctx context.Context) (FilterConfig, error) {
	res, err := e.client.Get(e.configIndex, filterConfigDocID,
		e.client.Get.WithContext(ctx))
	if err != nil {
		return FilterConfig{}, fmt.Errorf("%w: get filter config: %v", press.ErrIndex, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return FilterConfig{}, nil
	}
	if res.IsError() {
		return FilterConfig{}, fmt.Errorf("%w: get filter config: %s", press.ErrIndex, res.String())
	}
	var parsed struct {
		Source FilterConfig `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return FilterConfig{}, fmt.Errorf("%w: decode filter config: %v", press.ErrIndex, err)
	}
	return parsed.Source, nil
}

// EnsureFilterConfig writes the filter configuration document.
func (e *ElasticIndex) EnsureFilterConfig(ctx context.Context, cfg FilterConfig) error {
	reader, err := jsonReader(cfg)
	if err != nil {
		return err
	}
	res, err := e.client.Index(e.configIndex, reader,
		e.client.Index.WithContext(ctx),
		e.client.Index.WithDocumentID(filterConfigDocID),
	)
	return e.finish(res, err, "write filter config")
}

func (e *ElasticIndex) indexExists(ctx context.Context, name string) (bool, error) {
	res, err := e.client.Indices.Exists([]string{name},
		e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("%w: index exists: %v", press.ErrIndex, err)
	}
	defer res.Body.Close()
	return res.StatusCode == http.StatusOK, nil
}

func (e *ElasticIndex) finish(res *esapi.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", press.ErrIndex, op, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: %s: %s", press.ErrIndex, op, res.String())
	}
	return nil
}

func jsonReader(v any) (*bytes.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return bytes.NewReader(data), nil
}

var _ Index = (*ElasticIndex)(nil)
