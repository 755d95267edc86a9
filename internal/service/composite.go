package service

import (
	"context"

	"github.com/jonesrussell/forge-metrics/internal/domain"
)

// reviewEventTypes are the review-activity transitions used by the review
// composites.
var reviewEventTypes = []string{
	domain.TypeCommented,
	domain.TypeReviewed,
}

// ChangesLifecycleHistos returns one date histogram per lifecycle transition.
// Author filters are interpreted against the change owner.
func (r *Runner) ChangesLifecycleHistos(ctx context.Context, repos []string, p domain.QueryParams) map[string]domain.EventsHisto {
	q := p.WithOnAuthors()
	histos := make(map[string]domain.EventsHisto, len(lifecycleEventTypes))
	for _, etype := range lifecycleEventTypes {
		histos[etype] = r.EventsHisto(ctx, repos, q.WithTypes(etype))
	}
	return histos
}

// ChangesLifecycleStats combines the closed ratios, per-transition
// histograms, per-transition activity averages, and per-transition event and
// author counts into one report.
func (r *Runner) ChangesLifecycleStats(ctx context.Context, repos []string, p domain.QueryParams) domain.LifecycleStats {
	q := p.WithOnAuthors()
	stats := domain.LifecycleStats{
		Ratios: r.ChangesClosedRatios(ctx, repos, q),
		Histos: r.ChangesLifecycleHistos(ctx, repos, q),
		Avgs:   make(map[string]float64, len(lifecycleEventTypes)),
		Events: make(map[string]domain.EventCounts, len(lifecycleEventTypes)),
	}
	for _, etype := range lifecycleEventTypes {
		stats.Avgs[etype] = floatTrunc(stats.Histos[etype].AvgCount)
		byType := q.WithTypes(etype)
		stats.Events[etype] = domain.EventCounts{
			EventsCount:  r.CountEvents(ctx, repos, byType),
			AuthorsCount: r.CountAuthors(ctx, repos, byType),
		}
	}
	return stats
}

// ChangesReviewHistos returns one date histogram per review transition.
func (r *Runner) ChangesReviewHistos(ctx context.Context, repos []string, p domain.QueryParams) map[string]domain.EventsHisto {
	histos := make(map[string]domain.EventsHisto, len(reviewEventTypes))
	for _, etype := range reviewEventTypes {
		histos[etype] = r.EventsHisto(ctx, repos, p.WithTypes(etype))
	}
	return histos
}

// ChangesReviewStats combines first-event latencies, per-transition
// histograms, and per-transition event and author counts into one report.
func (r *Runner) ChangesReviewStats(ctx context.Context, repos []string, p domain.QueryParams) domain.ReviewStats {
	stats := domain.ReviewStats{
		FirstEventDelay: domain.FirstEventDelay{
			Comment: r.FirstCommentOnChanges(ctx, repos, p),
			Review:  r.FirstReviewOnChanges(ctx, repos, p),
		},
		Histos: r.ChangesReviewHistos(ctx, repos, p),
		Events: make(map[string]domain.EventCounts, len(reviewEventTypes)),
	}
	for _, etype := range reviewEventTypes {
		byType := p.WithTypes(etype)
		stats.Events[etype] = domain.EventCounts{
			EventsCount:  r.CountEvents(ctx, repos, byType),
			AuthorsCount: r.CountAuthors(ctx, repos, byType),
		}
	}
	return stats
}

// MostActiveAuthorsStats returns the author leaderboard per activity kind:
// changes created, reviews, comments, and changes merged.
func (r *Runner) MostActiveAuthorsStats(ctx context.Context, repos []string, p domain.QueryParams) map[string]domain.TopTerms {
	return map[string]domain.TopTerms{
		domain.TypeCreated:   r.EventsTopAuthors(ctx, repos, p.WithTypes(domain.TypeCreated)),
		domain.TypeReviewed:  r.EventsTopAuthors(ctx, repos, p.WithTypes(domain.TypeReviewed)),
		domain.TypeCommented: r.EventsTopAuthors(ctx, repos, p.WithTypes(domain.TypeCommented)),
		domain.TypeMerged:    r.AuthorsTopMerged(ctx, repos, p),
	}
}

// MostReviewedAuthorsStats returns the change owners receiving the most
// reviews and the most comments.
func (r *Runner) MostReviewedAuthorsStats(ctx context.Context, repos []string, p domain.QueryParams) domain.ReviewedAuthorsStats {
	return domain.ReviewedAuthorsStats{
		Reviewed:  r.AuthorsTopReviewed(ctx, repos, p),
		Commented: r.AuthorsTopCommented(ctx, repos, p),
	}
}

// floatTrunc truncates to two decimal places.
func floatTrunc(v float64) float64 {
	return float64(int64(v*100)) / 100
}
