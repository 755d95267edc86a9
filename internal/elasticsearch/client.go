// Package elasticsearch wraps the Elasticsearch client behind the query
// executor contract: count, paged search, aggregate, scan. Any transport or
// backend failure is caught here, logged, and degraded to an empty result so
// metric computations never see a fault.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/jonesrussell/forge-metrics/internal/config"
	"github.com/jonesrussell/forge-metrics/internal/domain"
	"github.com/jonesrussell/forge-metrics/internal/logger"
)

// Client wraps the Elasticsearch client with the executor contract.
type Client struct {
	esClient *es.Client
	config   *config.ElasticsearchConfig
	logger   logger.Logger
}

// NewClient creates a new Elasticsearch client and verifies the connection.
func NewClient(cfg *config.ElasticsearchConfig, log logger.Logger) (*Client, error) {
	addresses := []string{cfg.URL}
	if !strings.HasPrefix(cfg.URL, "http://") && !strings.HasPrefix(cfg.URL, "https://") {
		addresses = []string{"http://" + cfg.URL}
	}

	clientConfig := es.Config{
		Addresses:  addresses,
		MaxRetries: cfg.MaxRetries,
	}

	if cfg.Username != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	esClient, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	client := &Client{
		esClient: esClient,
		config:   cfg,
		logger:   log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping elasticsearch: %w", err)
	}

	return client, nil
}

// Ping verifies the Elasticsearch connection.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.esClient.Ping(c.esClient.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("elasticsearch ping failed: %s", string(body))
	}

	return nil
}

// HealthCheck checks Elasticsearch cluster health.
func (c *Client) HealthCheck(ctx context.Context) error {
	res, err := c.esClient.Cluster.Health(
		c.esClient.Cluster.Health.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("cluster unhealthy [%d]: %s", res.StatusCode, string(body))
	}

	return nil
}

// Count returns the number of documents matching the filter, or 0 on any
// backend failure.
func (c *Client) Count(ctx context.Context, filter map[string]any) int64 {
	body, err := encodeBody(map[string]any{"query": filter})
	if err != nil {
		c.logger.Error("Failed to encode count body", logger.Error(err))
		return 0
	}

	res, err := c.esClient.Count(
		c.esClient.Count.WithContext(ctx),
		c.esClient.Count.WithIndex(c.config.IndexPattern),
		c.esClient.Count.WithBody(body),
	)
	raw, err := c.readResponse(res, err, "count")
	if err != nil {
		return 0
	}

	var out struct {
		Count int64 `json:"count"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		c.logger.Error("Failed to decode count response", logger.Error(err))
		return 0
	}
	return out.Count
}

// SearchPage returns a page of documents matching the filter, sorted by the
// given field, with the total hit count. Empty page on failure.
func (c *Client) SearchPage(ctx context.Context, filter map[string]any, sortField, order string, from, size int) domain.Page {
	body := map[string]any{
		"query": filter,
		"sort":  []any{map[string]any{sortField: map[string]any{"order": order}}},
		"from":  from,
		"size":  size,
	}

	raw, err := c.search(ctx, body)
	if err != nil {
		return domain.Page{Items: []domain.Event{}}
	}

	var out struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source domain.Event `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		c.logger.Error("Failed to decode search response", logger.Error(err))
		return domain.Page{Items: []domain.Event{}}
	}

	items := make([]domain.Event, 0, len(out.Hits.Hits))
	for i := range out.Hits.Hits {
		items = append(items, out.Hits.Hits[i].Source)
	}
	return domain.Page{Items: items, Total: out.Hits.Total.Value}
}

// Aggregate runs the given aggregations over the filter with size 0 and
// returns the raw aggregation payloads keyed by name, plus the total hit
// count. Empty result on failure.
func (c *Client) Aggregate(ctx context.Context, filter map[string]any, aggs map[string]any) domain.AggResult {
	body := map[string]any{
		"query": filter,
		"aggs":  aggs,
		"size":  0,
	}

	raw, err := c.search(ctx, body)
	if err != nil {
		return domain.AggResult{Aggregations: map[string]json.RawMessage{}}
	}

	var out struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
		} `json:"hits"`
		Aggregations map[string]json.RawMessage `json:"aggregations"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		c.logger.Error("Failed to decode aggregation response", logger.Error(err))
		return domain.AggResult{Aggregations: map[string]json.RawMessage{}}
	}
	if out.Aggregations == nil {
		out.Aggregations = map[string]json.RawMessage{}
	}
	return domain.AggResult{Aggregations: out.Aggregations, TotalHits: out.Hits.Total.Value}
}

// Scan returns every document matching the filter, projected to the given
// source fields, using the scroll API. Unordered. Empty slice on failure.
func (c *Client) Scan(ctx context.Context, filter map[string]any, fields []string) []domain.Event {
	body := map[string]any{
		"query":   filter,
		"size":    c.config.ScrollSize,
		"sort":    []any{"_doc"},
		"_source": fields,
	}
	if len(fields) == 0 {
		delete(body, "_source")
	}

	encoded, err := encodeBody(body)
	if err != nil {
		c.logger.Error("Failed to encode scan body", logger.Error(err))
		return []domain.Event{}
	}

	res, err := c.esClient.Search(
		c.esClient.Search.WithContext(ctx),
		c.esClient.Search.WithIndex(c.config.IndexPattern),
		c.esClient.Search.WithBody(encoded),
		c.esClient.Search.WithScroll(c.config.ScrollKeep),
	)
	raw, err := c.readResponse(res, err, "scan")
	if err != nil {
		return []domain.Event{}
	}

	var events []domain.Event
	scrollID := ""
	for {
		var out struct {
			ScrollID string `json:"_scroll_id"`
			Hits     struct {
				Hits []struct {
					Source domain.Event `json:"_source"`
				} `json:"hits"`
			} `json:"hits"`
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			c.logger.Error("Failed to decode scan response", logger.Error(err))
			break
		}
		if out.ScrollID != "" {
			scrollID = out.ScrollID
		}
		if len(out.Hits.Hits) == 0 {
			break
		}
		for i := range out.Hits.Hits {
			events = append(events, out.Hits.Hits[i].Source)
		}

		res, err := c.esClient.Scroll(
			c.esClient.Scroll.WithContext(ctx),
			c.esClient.Scroll.WithScrollID(scrollID),
			c.esClient.Scroll.WithScroll(c.config.ScrollKeep),
		)
		raw, err = c.readResponse(res, err, "scroll")
		if err != nil {
			break
		}
	}

	if scrollID != "" {
		c.clearScroll(ctx, scrollID)
	}
	if events == nil {
		events = []domain.Event{}
	}
	return events
}

// clearScroll releases server-side scroll resources; best effort.
func (c *Client) clearScroll(ctx context.Context, scrollID string) {
	res, err := c.esClient.ClearScroll(
		c.esClient.ClearScroll.WithContext(ctx),
		c.esClient.ClearScroll.WithScrollID(scrollID),
	)
	if err != nil {
		c.logger.Debug("Failed to clear scroll", logger.Error(err))
		return
	}
	_ = res.Body.Close()
}

// search runs a search request and returns the raw response body.
func (c *Client) search(ctx context.Context, body map[string]any) ([]byte, error) {
	encoded, err := encodeBody(body)
	if err != nil {
		c.logger.Error("Failed to encode query", logger.Error(err))
		return nil, err
	}

	res, err := c.esClient.Search(
		c.esClient.Search.WithContext(ctx),
		c.esClient.Search.WithIndex(c.config.IndexPattern),
		c.esClient.Search.WithBody(encoded),
		c.esClient.Search.WithTimeout(c.config.Timeout),
		c.esClient.Search.WithTrackTotalHits(true),
	)
	return c.readResponse(res, err, "search")
}

// readResponse drains an esapi response, turning transport errors and error
// status codes into logged errors for the degrade-to-empty path.
func (c *Client) readResponse(res *esapi.Response, err error, op string) ([]byte, error) {
	if err != nil {
		c.logger.Error("Elasticsearch request failed",
			logger.String("op", op),
			logger.Error(err),
		)
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()

	raw, readErr := io.ReadAll(res.Body)
	if readErr != nil {
		c.logger.Error("Failed to read elasticsearch response",
			logger.String("op", op),
			logger.Error(readErr),
		)
		return nil, readErr
	}

	if res.IsError() {
		c.logger.Error("Elasticsearch returned error",
			logger.String("op", op),
			logger.Int("status", res.StatusCode),
			logger.String("body", string(raw)),
		)
		return nil, fmt.Errorf("elasticsearch returned error [%d]", res.StatusCode)
	}

	return raw, nil
}

// encodeBody creates an io.Reader from the query map.
func encodeBody(body map[string]any) (io.Reader, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	return &buf, nil
}
