package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jonesrussell/forge-metrics/internal/domain"
	"github.com/stretchr/testify/require"
)

// stubStore implements service.Store with per-call hooks so each test can
// script the backend's answers and inspect the filters it receives.
type stubStore struct {
	countFn     func(filter map[string]any) int64
	searchFn    func(filter map[string]any, sortField, order string, from, size int) domain.Page
	aggregateFn func(filter, aggs map[string]any) domain.AggResult
	scanFn      func(filter map[string]any, fields []string) []domain.Event
}

func (s *stubStore) Count(_ context.Context, filter map[string]any) int64 {
	if s.countFn == nil {
		return 0
	}
	return s.countFn(filter)
}

func (s *stubStore) SearchPage(_ context.Context, filter map[string]any, sortField, order string, from, size int) domain.Page {
	if s.searchFn == nil {
		return domain.Page{Items: []domain.Event{}}
	}
	return s.searchFn(filter, sortField, order, from, size)
}

func (s *stubStore) Aggregate(_ context.Context, filter map[string]any, aggs map[string]any) domain.AggResult {
	if s.aggregateFn == nil {
		return domain.AggResult{Aggregations: map[string]json.RawMessage{}}
	}
	return s.aggregateFn(filter, aggs)
}

func (s *stubStore) Scan(_ context.Context, filter map[string]any, fields []string) []domain.Event {
	if s.scanFn == nil {
		return nil
	}
	return s.scanFn(filter, fields)
}

// termsResult builds an AggResult as the store would return it for a terms
// aggregation.
func termsResult(t *testing.T, totalHits int64, buckets ...domain.TermBucket) domain.AggResult {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"buckets": buckets})
	require.NoError(t, err)
	return domain.AggResult{
		Aggregations: map[string]json.RawMessage{"agg1": raw},
		TotalHits:    totalHits,
	}
}

// etypesOf extracts the type membership clause from a built filter.
func etypesOf(t *testing.T, filter map[string]any) []string {
	t.Helper()
	clauses := filter["bool"].(map[string]any)["filter"].([]any)
	for _, c := range clauses {
		if terms, ok := c.(map[string]any)["terms"].(map[string]any); ok {
			if types, ok := terms["type"].([]string); ok {
				return types
			}
		}
	}
	t.Fatal("filter has no type clause")
	return nil
}

// termsValuesOf extracts a terms membership clause for a field, nil if absent.
func termsValuesOf(filter map[string]any, field string) []string {
	clauses := filter["bool"].(map[string]any)["filter"].([]any)
	for _, c := range clauses {
		if terms, ok := c.(map[string]any)["terms"].(map[string]any); ok {
			if vals, ok := terms[field].([]string); ok {
				return vals
			}
		}
	}
	return nil
}

// stateOf extracts the state equality clause, empty if absent.
func stateOf(filter map[string]any) string {
	clauses := filter["bool"].(map[string]any)["filter"].([]any)
	for _, c := range clauses {
		if term, ok := c.(map[string]any)["term"].(map[string]any); ok {
			if state, ok := term["state"].(string); ok {
				return state
			}
		}
	}
	return ""
}

// createdAtOf extracts the created_at range clause.
func createdAtOf(t *testing.T, filter map[string]any) map[string]any {
	t.Helper()
	clauses := filter["bool"].(map[string]any)["filter"].([]any)
	for _, c := range clauses {
		if rangeClause, ok := c.(map[string]any)["range"].(map[string]any); ok {
			if createdAt, ok := rangeClause["created_at"].(map[string]any); ok {
				return createdAt
			}
		}
	}
	t.Fatal("filter has no created_at clause")
	return nil
}

// termsAggField extracts the grouping field of a terms aggregation request.
func termsAggField(t *testing.T, aggs map[string]any) string {
	t.Helper()
	agg, ok := aggs["agg1"].(map[string]any)
	require.True(t, ok, "aggregation request must have agg1")
	terms, ok := agg["terms"].(map[string]any)
	if !ok {
		return ""
	}
	return terms["field"].(string)
}
