package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/forge-metrics/internal/api"
	"github.com/jonesrussell/forge-metrics/internal/config"
	"github.com/jonesrussell/forge-metrics/internal/domain"
	"github.com/jonesrussell/forge-metrics/internal/logger"
	"github.com/jonesrussell/forge-metrics/internal/metrics"
	"github.com/jonesrussell/forge-metrics/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore scripts the backend for handler tests.
type stubStore struct {
	countFn func(filter map[string]any) int64
}

func (s *stubStore) Count(_ context.Context, filter map[string]any) int64 {
	if s.countFn == nil {
		return 0
	}
	return s.countFn(filter)
}

func (s *stubStore) SearchPage(_ context.Context, _ map[string]any, _, _ string, _, _ int) domain.Page {
	return domain.Page{Items: []domain.Event{}}
}

func (s *stubStore) Aggregate(_ context.Context, _ map[string]any, _ map[string]any) domain.AggResult {
	return domain.AggResult{Aggregations: map[string]json.RawMessage{}}
}

func (s *stubStore) Scan(_ context.Context, _ map[string]any, _ []string) []domain.Event {
	return nil
}

type stubHealth struct {
	err error
}

func (s *stubHealth) HealthCheck(context.Context) error {
	return s.err
}

func testConfig() *config.Config {
	return &config.Config{
		Service: config.ServiceConfig{
			Name:         "forge-metrics",
			Version:      "test",
			Port:         9876,
			MaxPageSize:  1000,
			QueryTimeout: 5 * time.Second,
		},
	}
}

func newTestRouter(t *testing.T, store service.Store, health api.HealthChecker) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog := service.NewCatalog(service.NewRunner(store, logger.NewNop()))
	handler := api.NewHandler(catalog, health, testConfig(), logger.NewNop())

	router := gin.New()
	api.SetupRoutes(router, handler, metrics.New("test"))
	return router
}

func doRequest(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestQueryUnknownName(t *testing.T) {
	router := newTestRouter(t, &stubStore{}, &stubHealth{})

	w := doRequest(router, "/api/0/query/no_such_query")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNKNOWN_QUERY", resp.Code)
}

func TestQueryCountEvents(t *testing.T) {
	store := &stubStore{
		countFn: func(map[string]any) int64 { return 7 },
	}
	router := newTestRouter(t, store, &stubHealth{})

	w := doRequest(router, "/api/0/query/count_events")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", w.Body.String())
}

func TestQueryRepositories(t *testing.T) {
	var patterns []string
	store := &stubStore{
		countFn: func(filter map[string]any) int64 {
			clauses := filter["bool"].(map[string]any)["filter"].([]any)
			should := clauses[0].(map[string]any)["bool"].(map[string]any)["should"].([]any)
			patterns = nil
			for _, s := range should {
				regexp := s.(map[string]any)["regexp"].(map[string]any)
				value := regexp["repository_fullname"].(map[string]any)["value"].(string)
				patterns = append(patterns, value)
			}
			return 0
		},
	}
	router := newTestRouter(t, store, &stubHealth{})

	tests := []struct {
		name string
		path string
		want []string
	}{
		{"anchors stripped", "/api/0/query/count_events?repositories=%5E%5EorgA/.*,orgB/repo", []string{"orgA/.*", "orgB/repo"}},
		{"default matches everything", "/api/0/query/count_events", []string{".*"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.path)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, patterns)
		})
	}
}

func TestQueryDateParsing(t *testing.T) {
	var createdAt map[string]any
	store := &stubStore{
		countFn: func(filter map[string]any) int64 {
			clauses := filter["bool"].(map[string]any)["filter"].([]any)
			for _, c := range clauses {
				if rc, ok := c.(map[string]any)["range"].(map[string]any); ok {
					if inner, ok := rc["created_at"].(map[string]any); ok {
						createdAt = inner
					}
				}
			}
			return 0
		},
	}
	router := newTestRouter(t, store, &stubHealth{})

	w := doRequest(router, "/api/0/query/count_events?gte=2026-01-01&lte=2026-02-01")

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, createdAt)
	wantGte := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	wantLte := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, wantGte, createdAt["gte"])
	assert.Equal(t, wantLte, createdAt["lte"])
}

func TestQueryInvalidParams(t *testing.T) {
	router := newTestRouter(t, &stubStore{}, &stubHealth{})

	tests := []struct {
		name string
		path string
	}{
		{"bad gte date", "/api/0/query/count_events?gte=January"},
		{"bad size", "/api/0/query/count_events?size=lots"},
		{"negative from", "/api/0/query/count_events?from=-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.path)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp api.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "INVALID_PARAMS", resp.Code)
		})
	}
}

func TestQueriesListing(t *testing.T) {
	router := newTestRouter(t, &stubStore{}, &stubHealth{})

	w := doRequest(router, "/api/0/queries")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Queries []string `json:"queries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Queries, 36)
	assert.Contains(t, resp.Queries, "count_events")
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		router := newTestRouter(t, &stubStore{}, &stubHealth{})

		w := doRequest(router, "/health")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "healthy")
	})

	t.Run("backend down", func(t *testing.T) {
		router := newTestRouter(t, &stubStore{}, &stubHealth{err: errors.New("no nodes")})

		w := doRequest(router, "/health")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
