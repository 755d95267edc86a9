package service

import (
	"context"
	"encoding/json"

	"github.com/jonesrussell/forge-metrics/internal/domain"
	"github.com/jonesrussell/forge-metrics/internal/elasticsearch"
	"github.com/jonesrussell/forge-metrics/internal/logger"
)

// Duration thresholds for the merge-time distribution, in seconds.
const (
	durationDay   = 86400
	durationWeek  = 604800
	durationMonth = 2678400
)

// ChangeMergedCountByDuration buckets merged changes by how long they took
// to merge: a day or less, up to a week, up to a month, and longer.
func (r *Runner) ChangeMergedCountByDuration(ctx context.Context, repos []string, p domain.QueryParams) map[string]domain.RangeBucket {
	q := p.WithTypes(domain.TypeChange)
	q.State = domain.StateMerged

	aggs := map[string]any{
		"agg1": map[string]any{
			"range": map[string]any{
				"field": "duration",
				"keyed": true,
				"ranges": []map[string]any{
					{"to": durationDay},
					{"from": durationDay + 1, "to": durationWeek},
					{"from": durationWeek + 1, "to": durationMonth},
					{"from": durationMonth + 1},
				},
			},
		},
	}
	res := r.store.Aggregate(ctx, elasticsearch.BuildFilter(repos, q), aggs)

	buckets := map[string]domain.RangeBucket{}
	if raw, ok := res.Aggregations["agg1"]; ok {
		var parsed struct {
			Buckets map[string]domain.RangeBucket `json:"buckets"`
		}
		if err := json.Unmarshal(raw, &parsed); err != nil {
			r.logger.Error("Failed to decode duration ranges", logger.Error(err))
		} else if parsed.Buckets != nil {
			buckets = parsed.Buckets
		}
	}
	return buckets
}

// ChangeMergedAvgDuration returns the mean time to merge, in seconds.
// The value is null when no merged change matches.
func (r *Runner) ChangeMergedAvgDuration(ctx context.Context, repos []string, p domain.QueryParams) domain.AvgValue {
	q := p.WithTypes(domain.TypeChange)
	q.State = domain.StateMerged

	aggs := map[string]any{
		"agg1": map[string]any{
			"avg": map[string]any{"field": "duration"},
		},
	}
	res := r.store.Aggregate(ctx, elasticsearch.BuildFilter(repos, q), aggs)

	var avg domain.AvgValue
	if raw, ok := res.Aggregations["agg1"]; ok {
		if err := json.Unmarshal(raw, &avg); err != nil {
			r.logger.Error("Failed to decode duration average", logger.Error(err))
		}
	}
	return avg
}
