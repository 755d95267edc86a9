package service

import (
	"context"
	"errors"
	"sort"

	"github.com/jonesrussell/forge-metrics/internal/domain"
)

// ErrUnknownQuery is returned by Catalog.Run for a name outside the catalog.
var ErrUnknownQuery = errors.New("unknown query")

// QueryName identifies a metric in the catalog.
type QueryName string

// The query catalog. The set is closed; callers select a metric by name.
const (
	QueryCountEvents                 QueryName = "count_events"
	QueryCountAuthors                QueryName = "count_authors"
	QueryEventsHisto                 QueryName = "events_histo"
	QueryReposTopMerged              QueryName = "repos_top_merged"
	QueryReposTopOpened              QueryName = "repos_top_opened"
	QueryEventsTopAuthors            QueryName = "events_top_authors"
	QueryChangesTopApproval          QueryName = "changes_top_approval"
	QueryChangesTopCommented         QueryName = "changes_top_commented"
	QueryChangesTopReviewed          QueryName = "changes_top_reviewed"
	QueryAuthorsTopReviewed          QueryName = "authors_top_reviewed"
	QueryAuthorsTopCommented         QueryName = "authors_top_commented"
	QueryAuthorsTopMerged            QueryName = "authors_top_merged"
	QueryAuthorsTopOpened            QueryName = "authors_top_opened"
	QueryPeersExchangeStrength       QueryName = "peers_exchange_strength"
	QueryChangeMergedCountByDuration QueryName = "change_merged_count_by_duration"
	QueryChangeMergedAvgDuration     QueryName = "change_merged_avg_duration"
	QueryChangesClosedRatios         QueryName = "changes_closed_ratios"
	QueryFirstCommentOnChanges       QueryName = "first_comment_on_changes"
	QueryFirstReviewOnChanges        QueryName = "first_review_on_changes"
	QueryColdChanges                 QueryName = "cold_changes"
	QueryHotChanges                  QueryName = "hot_changes"
	QueryNewContributors             QueryName = "new_contributors"
	QueryChangesLifecycleHistos      QueryName = "changes_lifecycle_histos"
	QueryChangesLifecycleStats       QueryName = "changes_lifecycle_stats"
	QueryChangesReviewHistos         QueryName = "changes_review_histos"
	QueryChangesReviewStats          QueryName = "changes_review_stats"
	QueryMostActiveAuthorsStats      QueryName = "most_active_authors_stats"
	QueryMostReviewedAuthorsStats    QueryName = "most_reviewed_authors_stats"
	QueryLastMergedChanges           QueryName = "last_merged_changes"
	QueryLastOpenedChanges           QueryName = "last_opened_changes"
	QueryLastStateChangedChanges     QueryName = "last_state_changed_changes"
	QueryLastReviewEvents            QueryName = "last_review_events"
	QueryLastCommentEvents           QueryName = "last_comment_events"
	QueryLastAbandonedChanges        QueryName = "last_abandoned_changes"
	QueryOldestOpenChanges           QueryName = "oldest_open_changes"
	QueryChangesAndEvents            QueryName = "changes_and_events"
)

type queryFunc func(ctx context.Context, repos []string, p domain.QueryParams) any

// Catalog maps query names to runner computations.
type Catalog struct {
	queries map[QueryName]queryFunc
}

// NewCatalog builds the catalog over a runner.
func NewCatalog(r *Runner) *Catalog {
	wrap := func(fn func(context.Context, []string, domain.QueryParams) domain.TopTerms) queryFunc {
		return func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return fn(ctx, repos, p)
		}
	}
	wrapPage := func(fn func(context.Context, []string, domain.QueryParams) domain.Page) queryFunc {
		return func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return fn(ctx, repos, p)
		}
	}
	wrapFirst := func(fn func(context.Context, []string, domain.QueryParams) domain.FirstEventStats) queryFunc {
		return func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return fn(ctx, repos, p)
		}
	}
	wrapHisto := func(fn func(context.Context, []string, domain.QueryParams) map[string]domain.EventsHisto) queryFunc {
		return func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return fn(ctx, repos, p)
		}
	}

	return &Catalog{queries: map[QueryName]queryFunc{
		QueryCountEvents: func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return r.CountEvents(ctx, repos, p)
		},
		QueryCountAuthors: func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return r.CountAuthors(ctx, repos, p)
		},
		QueryEventsHisto: func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return r.EventsHisto(ctx, repos, p)
		},
		QueryReposTopMerged:      wrap(r.ReposTopMerged),
		QueryReposTopOpened:      wrap(r.ReposTopOpened),
		QueryEventsTopAuthors:    wrap(r.EventsTopAuthors),
		QueryChangesTopApproval:  wrap(r.ChangesTopApproval),
		QueryChangesTopCommented: wrap(r.ChangesTopCommented),
		QueryChangesTopReviewed:  wrap(r.ChangesTopReviewed),
		QueryAuthorsTopReviewed:  wrap(r.AuthorsTopReviewed),
		QueryAuthorsTopCommented: wrap(r.AuthorsTopCommented),
		QueryAuthorsTopMerged:    wrap(r.AuthorsTopMerged),
		QueryAuthorsTopOpened:    wrap(r.AuthorsTopOpened),
		QueryPeersExchangeStrength: func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return r.PeersExchangeStrength(ctx, repos, p)
		},
		QueryChangeMergedCountByDuration: func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return r.ChangeMergedCountByDuration(ctx, repos, p)
		},
		QueryChangeMergedAvgDuration: func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return r.ChangeMergedAvgDuration(ctx, repos, p)
		},
		QueryChangesClosedRatios: func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return r.ChangesClosedRatios(ctx, repos, p)
		},
		QueryFirstCommentOnChanges: wrapFirst(r.FirstCommentOnChanges),
		QueryFirstReviewOnChanges:  wrapFirst(r.FirstReviewOnChanges),
		QueryColdChanges: func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return r.ColdChanges(ctx, repos, p)
		},
		QueryHotChanges: func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return r.HotChanges(ctx, repos, p)
		},
		QueryNewContributors: func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return r.NewContributors(ctx, repos, p)
		},
		QueryChangesLifecycleHistos: wrapHisto(r.ChangesLifecycleHistos),
		QueryChangesLifecycleStats: func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return r.ChangesLifecycleStats(ctx, repos, p)
		},
		QueryChangesReviewHistos: wrapHisto(r.ChangesReviewHistos),
		QueryChangesReviewStats: func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return r.ChangesReviewStats(ctx, repos, p)
		},
		QueryMostActiveAuthorsStats: func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return r.MostActiveAuthorsStats(ctx, repos, p)
		},
		QueryMostReviewedAuthorsStats: func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return r.MostReviewedAuthorsStats(ctx, repos, p)
		},
		QueryLastMergedChanges: wrapPage(r.LastMergedChanges),
		QueryLastOpenedChanges: wrapPage(r.LastOpenedChanges),
		QueryLastStateChangedChanges: func(ctx context.Context, repos []string, p domain.QueryParams) any {
			return r.LastStateChangedChanges(ctx, repos, p)
		},
		QueryLastReviewEvents:     wrapPage(r.LastReviewEvents),
		QueryLastCommentEvents:    wrapPage(r.LastCommentEvents),
		QueryLastAbandonedChanges: wrapPage(r.LastAbandonedChanges),
		QueryOldestOpenChanges:    wrapPage(r.OldestOpenChanges),
		QueryChangesAndEvents:     wrapPage(r.ChangesAndEvents),
	}}
}

// Run executes the named query. It returns ErrUnknownQuery for a name
// outside the catalog.
func (c *Catalog) Run(ctx context.Context, name string, repos []string, p domain.QueryParams) (any, error) {
	fn, ok := c.queries[QueryName(name)]
	if !ok {
		return nil, ErrUnknownQuery
	}
	return fn(ctx, repos, p), nil
}

// Names lists the catalog's query names in lexical order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.queries))
	for name := range c.queries {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}
