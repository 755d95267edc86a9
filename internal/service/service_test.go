package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jonesrussell/forge-metrics/internal/domain"
	"github.com/jonesrussell/forge-metrics/internal/logger"
	"github.com/jonesrussell/forge-metrics/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunner(store service.Store) *service.Runner {
	return service.NewRunner(store, logger.NewNop())
}

func TestTopTermsStats(t *testing.T) {
	store := &stubStore{
		aggregateFn: func(_, aggs map[string]any) domain.AggResult {
			assert.Equal(t, "author", termsAggField(t, aggs))
			return termsResult(t, 20,
				domain.TermBucket{Key: "alice", DocCount: 10},
				domain.TermBucket{Key: "bob", DocCount: 5},
				domain.TermBucket{Key: "carol", DocCount: 3},
				domain.TermBucket{Key: "dave", DocCount: 2},
			)
		},
	}
	r := newRunner(store)

	got := r.EventsTopAuthors(context.Background(), []string{".*"}, domain.QueryParams{
		EType: domain.EventTypes(),
		Size:  10,
	})

	assert.Len(t, got.Items, 4)
	assert.Equal(t, "alice", got.Items[0].Key)
	assert.InDelta(t, 5.0, got.CountAvg, 1e-9)
	// Counts sorted: 2 3 5 10; the two middles average to 4.
	assert.InDelta(t, 4.0, got.CountMedian, 1e-9)
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, int64(20), got.TotalHits)
}

func TestTopTermsPagination(t *testing.T) {
	store := &stubStore{
		aggregateFn: func(_, _ map[string]any) domain.AggResult {
			return termsResult(t, 20,
				domain.TermBucket{Key: "alice", DocCount: 10},
				domain.TermBucket{Key: "bob", DocCount: 5},
				domain.TermBucket{Key: "carol", DocCount: 3},
				domain.TermBucket{Key: "dave", DocCount: 2},
			)
		},
	}
	r := newRunner(store)

	got := r.EventsTopAuthors(context.Background(), []string{".*"}, domain.QueryParams{
		EType: domain.EventTypes(),
		From:  1,
		Size:  2,
	})

	require.Len(t, got.Items, 2)
	assert.Equal(t, "bob", got.Items[0].Key)
	assert.Equal(t, "carol", got.Items[1].Key)
	// Stats still cover the whole ranking, not the page.
	assert.Equal(t, 4, got.Total)
}

func TestTopTermsEmpty(t *testing.T) {
	r := newRunner(&stubStore{
		aggregateFn: func(_, _ map[string]any) domain.AggResult {
			return termsResult(t, 0)
		},
	})

	got := r.EventsTopAuthors(context.Background(), []string{".*"}, domain.QueryParams{
		EType: domain.EventTypes(),
		Size:  10,
	})

	assert.NotNil(t, got.Items)
	assert.Empty(t, got.Items)
	assert.Zero(t, got.CountAvg)
	assert.Zero(t, got.CountMedian)
	assert.Zero(t, got.Total)
	assert.Zero(t, got.TotalHits)
}

func TestCountAuthors(t *testing.T) {
	store := &stubStore{
		aggregateFn: func(_, aggs map[string]any) domain.AggResult {
			agg := aggs["agg1"].(map[string]any)
			cardinality, ok := agg["cardinality"].(map[string]any)
			require.True(t, ok, "count_authors must use a cardinality aggregation")
			assert.Equal(t, "author", cardinality["field"])

			raw, err := json.Marshal(map[string]any{"value": 42})
			require.NoError(t, err)
			return domain.AggResult{Aggregations: map[string]json.RawMessage{"agg1": raw}}
		},
	}
	r := newRunner(store)

	got := r.CountAuthors(context.Background(), []string{".*"}, domain.QueryParams{EType: domain.EventTypes()})
	assert.Equal(t, int64(42), got)
}

func TestEventsHisto(t *testing.T) {
	gte := int64(1000)
	lte := int64(2000)

	store := &stubStore{
		aggregateFn: func(_, aggs map[string]any) domain.AggResult {
			histo := aggs["agg1"].(map[string]any)["date_histogram"].(map[string]any)
			assert.Equal(t, "1d", histo["interval"])
			assert.Equal(t, "yyyy-MM-dd", histo["format"])
			assert.Equal(t, 0, histo["min_doc_count"])
			bounds := histo["extended_bounds"].(map[string]any)
			assert.Equal(t, gte, bounds["min"])
			assert.Equal(t, lte, bounds["max"])

			buckets, err := json.Marshal(map[string]any{"buckets": []domain.HistoBucket{
				{KeyAsString: "2026-01-01", Key: 1000, DocCount: 3},
				{KeyAsString: "2026-01-02", Key: 2000, DocCount: 0},
			}})
			require.NoError(t, err)
			avg, err := json.Marshal(map[string]any{"value": 1.5})
			require.NoError(t, err)
			return domain.AggResult{Aggregations: map[string]json.RawMessage{
				"agg1":      buckets,
				"avg_count": avg,
			}}
		},
	}
	r := newRunner(store)

	got := r.EventsHisto(context.Background(), []string{".*"}, domain.QueryParams{
		EType:    []string{domain.TypeCreated},
		Gte:      &gte,
		Lte:      &lte,
		Interval: "1d",
	})

	require.Len(t, got.Buckets, 2)
	assert.Equal(t, int64(3), got.Buckets[0].DocCount)
	assert.InDelta(t, 1.5, got.AvgCount, 1e-9)
}

func TestEventsHistoNullAverage(t *testing.T) {
	store := &stubStore{
		aggregateFn: func(_, _ map[string]any) domain.AggResult {
			buckets, err := json.Marshal(map[string]any{"buckets": []domain.HistoBucket{}})
			require.NoError(t, err)
			avg := json.RawMessage(`{"value": null}`)
			return domain.AggResult{Aggregations: map[string]json.RawMessage{
				"agg1":      buckets,
				"avg_count": avg,
			}}
		},
	}
	r := newRunner(store)

	got := r.EventsHisto(context.Background(), []string{".*"}, domain.QueryParams{
		EType:    []string{domain.TypeCreated},
		Interval: "3h",
	})

	assert.NotNil(t, got.Buckets)
	assert.Empty(t, got.Buckets)
	assert.Zero(t, got.AvgCount)
}

func TestIntervalToFormat(t *testing.T) {
	tests := []struct {
		interval string
		want     string
	}{
		{"3h", "yyyy-MM-dd HH:00"},
		{"1d", "yyyy-MM-dd"},
		{"2w", "yyyy-MM-dd"},
		{"1M", "yyyy-MM"},
		{"1y", "yyyy"},
		{"30m", "yyyy-MM-dd HH:mm"},
		{"", "yyyy-MM-dd HH:mm"},
	}
	for _, tt := range tests {
		t.Run(tt.interval, func(t *testing.T) {
			assert.Equal(t, tt.want, service.IntervalToFormat(tt.interval))
		})
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{7}, 7},
		{"odd", []float64{9, 1, 5}, 5},
		{"even", []float64{4, 1, 3, 2}, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, service.Median(tt.series), 1e-9)
		})
	}
}

func TestSlicePage(t *testing.T) {
	buckets := []domain.TermBucket{{Key: "a"}, {Key: "b"}, {Key: "c"}}

	assert.Len(t, service.SlicePage(buckets, 0, 2), 2)
	assert.Len(t, service.SlicePage(buckets, 2, 5), 1)
	assert.Empty(t, service.SlicePage(buckets, 3, 10))
	assert.Empty(t, service.SlicePage(buckets, 0, 0))
	assert.Len(t, service.SlicePage(buckets, -1, 3), 3)
}

func TestFloatTrunc(t *testing.T) {
	assert.InDelta(t, 1.66, service.FloatTrunc(1.6666), 1e-9)
	assert.InDelta(t, 0.0, service.FloatTrunc(0), 1e-9)
}
