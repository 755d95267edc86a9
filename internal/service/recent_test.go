package service_test

import (
	"context"
	"testing"

	"github.com/jonesrussell/forge-metrics/internal/domain"
	"github.com/jonesrussell/forge-metrics/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagedQueries(t *testing.T) {
	tests := []struct {
		name      string
		run       func(*service.Runner, context.Context, domain.QueryParams) domain.Page
		wantTypes []string
		wantState string
		wantSort  string
		wantOrder string
	}{
		{
			name: "last_merged_changes",
			run: func(r *service.Runner, ctx context.Context, p domain.QueryParams) domain.Page {
				return r.LastMergedChanges(ctx, []string{".*"}, p)
			},
			wantTypes: []string{domain.TypeChange},
			wantState: domain.StateMerged,
			wantSort:  "closed_at",
			wantOrder: "desc",
		},
		{
			name: "last_opened_changes",
			run: func(r *service.Runner, ctx context.Context, p domain.QueryParams) domain.Page {
				return r.LastOpenedChanges(ctx, []string{".*"}, p)
			},
			wantTypes: []string{domain.TypeChange},
			wantState: domain.StateOpen,
			wantSort:  "created_at",
			wantOrder: "desc",
		},
		{
			name: "last_abandoned_changes",
			run: func(r *service.Runner, ctx context.Context, p domain.QueryParams) domain.Page {
				return r.LastAbandonedChanges(ctx, []string{".*"}, p)
			},
			wantTypes: []string{domain.TypeChange},
			wantState: domain.StateClosed,
			wantSort:  "created_at",
			wantOrder: "desc",
		},
		{
			name: "last_review_events",
			run: func(r *service.Runner, ctx context.Context, p domain.QueryParams) domain.Page {
				return r.LastReviewEvents(ctx, []string{".*"}, p)
			},
			wantTypes: []string{domain.TypeReviewed},
			wantSort:  "created_at",
			wantOrder: "desc",
		},
		{
			name: "last_comment_events",
			run: func(r *service.Runner, ctx context.Context, p domain.QueryParams) domain.Page {
				return r.LastCommentEvents(ctx, []string{".*"}, p)
			},
			wantTypes: []string{domain.TypeCommented},
			wantSort:  "created_at",
			wantOrder: "desc",
		},
		{
			name: "oldest_open_changes",
			run: func(r *service.Runner, ctx context.Context, p domain.QueryParams) domain.Page {
				return r.OldestOpenChanges(ctx, []string{".*"}, p)
			},
			wantTypes: []string{domain.TypeChange},
			wantState: domain.StateOpen,
			wantSort:  "created_at",
			wantOrder: "asc",
		},
		{
			name: "changes_and_events",
			run: func(r *service.Runner, ctx context.Context, p domain.QueryParams) domain.Page {
				return r.ChangesAndEvents(ctx, []string{".*"}, p)
			},
			wantTypes: domain.AllTypes(),
			wantSort:  "created_at",
			wantOrder: "asc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{
				searchFn: func(filter map[string]any, sortField, order string, from, size int) domain.Page {
					assert.ElementsMatch(t, tt.wantTypes, etypesOf(t, filter))
					assert.Equal(t, tt.wantState, stateOf(filter))
					assert.Equal(t, tt.wantSort, sortField)
					assert.Equal(t, tt.wantOrder, order)
					assert.Equal(t, 5, from)
					assert.Equal(t, 25, size)
					return domain.Page{Items: []domain.Event{{ChangeID: "c1"}}, Total: 1}
				},
			}
			r := newRunner(store)

			got := tt.run(r, context.Background(), domain.QueryParams{
				EType: domain.EventTypes(),
				From:  5,
				Size:  25,
			})

			require.Len(t, got.Items, 1)
			assert.Equal(t, int64(1), got.Total)
		})
	}
}

func TestLastStateChangedChanges(t *testing.T) {
	store := &stubStore{
		searchFn: func(filter map[string]any, sortField, _ string, _, _ int) domain.Page {
			switch stateOf(filter) {
			case domain.StateMerged:
				assert.Equal(t, "closed_at", sortField)
				return domain.Page{Items: []domain.Event{{ChangeID: "m1"}}, Total: 1}
			case domain.StateOpen:
				assert.Equal(t, "created_at", sortField)
				return domain.Page{Items: []domain.Event{{ChangeID: "o1"}}, Total: 1}
			}
			t.Fatalf("unexpected state %q", stateOf(filter))
			return domain.Page{}
		},
	}
	r := newRunner(store)

	got := r.LastStateChangedChanges(context.Background(), []string{".*"}, domain.QueryParams{
		EType: domain.EventTypes(),
		Size:  10,
	})

	require.Len(t, got.MergedChanges.Items, 1)
	assert.Equal(t, "m1", got.MergedChanges.Items[0].ChangeID)
	require.Len(t, got.OpenedChanges.Items, 1)
	assert.Equal(t, "o1", got.OpenedChanges.Items[0].ChangeID)
}
