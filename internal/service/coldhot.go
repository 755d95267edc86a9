package service

import (
	"context"
	"sort"

	"github.com/jonesrussell/forge-metrics/internal/domain"
	"github.com/jonesrussell/forge-metrics/internal/elasticsearch"
)

// hotChangesProbeSize is how deep the comment leaderboard is sampled before
// picking the buckets above the median.
const hotChangesProbeSize = 500

// ColdChanges returns open changes that received no review or comment at
// all, oldest first, capped at Size when positive.
func (r *Runner) ColdChanges(ctx context.Context, repos []string, p domain.QueryParams) domain.ChangeList {
	open := p.WithTypes(domain.TypeChange)
	open.State = domain.StateOpen
	changes := r.store.Scan(ctx, elasticsearch.BuildFilter(repos, open), nil)

	active := p.WithTypes(domain.TypeCommented, domain.TypeReviewed)
	active.State = ""
	touched := map[string]struct{}{}
	for _, ev := range r.store.Scan(ctx, elasticsearch.BuildFilter(repos, active), []string{"change_id"}) {
		touched[ev.ChangeID] = struct{}{}
	}

	cold := []domain.Event{}
	for _, change := range changes {
		if _, ok := touched[change.ChangeID]; !ok {
			cold = append(cold, change)
		}
	}
	sort.Slice(cold, func(i, j int) bool {
		ci, cj := cold[i].CreatedAt, cold[j].CreatedAt
		switch {
		case ci == nil:
			return false
		case cj == nil:
			return true
		default:
			return ci.Before(*cj)
		}
	})
	if p.Size > 0 && len(cold) > p.Size {
		cold = cold[:p.Size]
	}
	return domain.ChangeList{Items: cold}
}

// HotChanges returns open changes whose comment activity is strictly above
// the median of the comment leaderboard, most commented first, capped at
// Size. The change lookup ignores the time window so that still-open changes
// created before it are included.
func (r *Runner) HotChanges(ctx context.Context, repos []string, p domain.QueryParams) domain.HotChangeList {
	probe := p.Clone()
	probe.Size = hotChangesProbeSize
	top := r.ChangesTopCommented(ctx, repos, probe)

	scores := map[string]int64{}
	ids := []string{}
	for _, b := range top.Items {
		if float64(b.DocCount) > top.CountMedian {
			scores[b.Key] = b.DocCount
			ids = append(ids, b.Key)
		}
	}

	hot := []domain.HotChange{}
	if len(ids) > 0 {
		lookup := domain.QueryParams{
			EType:     []string{domain.TypeChange},
			State:     domain.StateOpen,
			ChangeIDs: ids,
		}
		for _, change := range r.store.Scan(ctx, elasticsearch.BuildFilter(repos, lookup), nil) {
			hot = append(hot, domain.HotChange{Event: change, HotScore: scores[change.ChangeID]})
		}
		sort.Slice(hot, func(i, j int) bool {
			return hot[i].HotScore > hot[j].HotScore
		})
		if p.Size > 0 && len(hot) > p.Size {
			hot = hot[:p.Size]
		}
	}
	return domain.HotChangeList{Items: hot}
}
