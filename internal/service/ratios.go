package service

import (
	"context"
	"math"

	"github.com/jonesrussell/forge-metrics/internal/domain"
)

// lifecycleEventTypes are the change lifecycle transitions used by the
// ratio and lifecycle metrics, in presentation order.
var lifecycleEventTypes = []string{
	domain.TypeCreated,
	domain.TypeMerged,
	domain.TypeAbandoned,
	domain.TypeCommitPushed,
	domain.TypeCommitForcePush,
}

// ChangesClosedRatios reports merged/created and abandoned/created as
// percentages, plus the average number of pushes per created change.
// Author filters are interpreted against the change owner.
func (r *Runner) ChangesClosedRatios(ctx context.Context, repos []string, p domain.QueryParams) domain.ClosedRatios {
	q := p.WithOnAuthors()

	counts := make(map[string]int64, len(lifecycleEventTypes))
	for _, etype := range lifecycleEventTypes {
		counts[etype] = r.CountEvents(ctx, repos, q.WithTypes(etype))
	}

	created := counts[domain.TypeCreated]
	pushed := counts[domain.TypeCommitPushed] + counts[domain.TypeCommitForcePush]

	ratios := domain.ClosedRatios{Iterations: 1}
	if created > 0 {
		ratios.MergedRatio = round1(float64(counts[domain.TypeMerged]) / float64(created) * 100)
		ratios.AbandonedRatio = round1(float64(counts[domain.TypeAbandoned]) / float64(created) * 100)
		ratios.Iterations = round1(float64(pushed)/float64(created) + 1)
	}
	return ratios
}

// round1 rounds to one decimal place, halves away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
