// Package service implements the named metric catalog: ~30 derived-metric
// computations composed from the filter builder and the store executor.
package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/jonesrussell/forge-metrics/internal/domain"
	"github.com/jonesrussell/forge-metrics/internal/elasticsearch"
	"github.com/jonesrussell/forge-metrics/internal/logger"
)

// Store is the query executor contract, the engine's only I/O boundary.
// Implementations degrade backend failures to empty results; see the
// elasticsearch package.
type Store interface {
	Count(ctx context.Context, filter map[string]any) int64
	SearchPage(ctx context.Context, filter map[string]any, sortField, order string, from, size int) domain.Page
	Aggregate(ctx context.Context, filter map[string]any, aggs map[string]any) domain.AggResult
	Scan(ctx context.Context, filter map[string]any, fields []string) []domain.Event
}

// Runner executes the named metric computations against a Store.
// It holds no state between calls; concurrent use is safe as long as the
// Store is safe for concurrent use.
type Runner struct {
	store  Store
	logger logger.Logger
}

// NewRunner creates a new metric runner.
func NewRunner(store Store, log logger.Logger) *Runner {
	return &Runner{
		store:  store,
		logger: log,
	}
}

// termsAggDepth is how many ranked buckets are requested from the store;
// mean and median are computed over all of them before paginating.
const termsAggDepth = 1000

// cardinalityPrecision is the precision threshold for distinct-author counts.
const cardinalityPrecision = 3000

// CountEvents returns the number of documents matching the params.
func (r *Runner) CountEvents(ctx context.Context, repos []string, p domain.QueryParams) int64 {
	return r.store.Count(ctx, elasticsearch.BuildFilter(repos, p))
}

// CountAuthors returns the approximate number of distinct event authors.
func (r *Runner) CountAuthors(ctx context.Context, repos []string, p domain.QueryParams) int64 {
	aggs := map[string]any{
		"agg1": map[string]any{
			"cardinality": map[string]any{
				"field":               "author",
				"precision_threshold": cardinalityPrecision,
			},
		},
	}
	res := r.store.Aggregate(ctx, elasticsearch.BuildFilter(repos, p), aggs)

	var parsed struct {
		Value int64 `json:"value"`
	}
	if raw, ok := res.Aggregations["agg1"]; ok {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			r.logger.Error("Failed to decode cardinality aggregation", logger.Error(err))
		}
	}
	return parsed.Value
}

// topTerms is the generic ranked-grouping operation: group matching documents
// by field, rank buckets by descending count, compute mean and median over
// all bucket counts, then slice the [From, From+Size) page.
func (r *Runner) topTerms(ctx context.Context, repos []string, field string, p domain.QueryParams) domain.TopTerms {
	aggs := map[string]any{
		"agg1": map[string]any{
			"terms": map[string]any{
				"field": field,
				"size":  termsAggDepth,
				"order": map[string]any{"_count": "desc"},
			},
		},
	}
	res := r.store.Aggregate(ctx, elasticsearch.BuildFilter(repos, p), aggs)

	var parsed struct {
		Buckets []domain.TermBucket `json:"buckets"`
	}
	if raw, ok := res.Aggregations["agg1"]; ok {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			r.logger.Error("Failed to decode terms aggregation",
				logger.String("field", field),
				logger.Error(err),
			)
		}
	}
	buckets := parsed.Buckets

	counts := make([]float64, len(buckets))
	for i, b := range buckets {
		counts[i] = float64(b.DocCount)
	}

	return domain.TopTerms{
		Items:       slicePage(buckets, p.From, p.Size),
		CountAvg:    mean(counts),
		CountMedian: median(counts),
		Total:       len(buckets),
		TotalHits:   res.TotalHits,
	}
}

// EventsHisto buckets matching events into a date histogram at the requested
// interval, zero-filled across the full [Gte, Lte] window, and returns the
// mean bucket count.
func (r *Runner) EventsHisto(ctx context.Context, repos []string, p domain.QueryParams) domain.EventsHisto {
	histo := map[string]any{
		"field":         "created_at",
		"interval":      p.Interval,
		"format":        intervalToFormat(p.Interval),
		"min_doc_count": 0,
	}
	bounds := map[string]any{}
	if p.Gte != nil {
		bounds["min"] = *p.Gte
	}
	if p.Lte != nil {
		bounds["max"] = *p.Lte
	}
	if len(bounds) > 0 {
		histo["extended_bounds"] = bounds
	}

	aggs := map[string]any{
		"agg1": map[string]any{"date_histogram": histo},
		"avg_count": map[string]any{
			"avg_bucket": map[string]any{"buckets_path": "agg1>_count"},
		},
	}
	res := r.store.Aggregate(ctx, elasticsearch.BuildFilter(repos, p), aggs)

	out := domain.EventsHisto{Buckets: []domain.HistoBucket{}}
	if raw, ok := res.Aggregations["agg1"]; ok {
		var parsed struct {
			Buckets []domain.HistoBucket `json:"buckets"`
		}
		if err := json.Unmarshal(raw, &parsed); err != nil {
			r.logger.Error("Failed to decode date histogram", logger.Error(err))
		} else if parsed.Buckets != nil {
			out.Buckets = parsed.Buckets
		}
	}
	if raw, ok := res.Aggregations["avg_count"]; ok {
		var parsed domain.AvgValue
		if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Value != nil {
			out.AvgCount = *parsed.Value
		}
	}
	return out
}

// intervalToFormat derives the histogram display granularity from the
// interval's unit suffix. Anything not ending in h/d/w/M/y falls back to the
// minute-level format; downstream consumers rely on these exact strings.
func intervalToFormat(interval string) string {
	switch {
	case strings.HasSuffix(interval, "h"):
		return "yyyy-MM-dd HH:00"
	case strings.HasSuffix(interval, "d"), strings.HasSuffix(interval, "w"):
		return "yyyy-MM-dd"
	case strings.HasSuffix(interval, "M"):
		return "yyyy-MM"
	case strings.HasSuffix(interval, "y"):
		return "yyyy"
	default:
		return "yyyy-MM-dd HH:mm"
	}
}

// slicePage returns the [from, from+size) window of buckets, clamped.
func slicePage(buckets []domain.TermBucket, from, size int) []domain.TermBucket {
	if from < 0 {
		from = 0
	}
	if size <= 0 || from >= len(buckets) {
		return []domain.TermBucket{}
	}
	to := from + size
	if to > len(buckets) {
		to = len(buckets)
	}
	return buckets[from:to]
}

// mean returns the arithmetic mean, or 0 for an empty series.
func mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

// median returns the median, averaging the two middle values for an even
// series length, or 0 for an empty series.
func median(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	sorted := append([]float64(nil), series...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
