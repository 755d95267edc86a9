package service

import (
	"context"

	"github.com/jonesrussell/forge-metrics/internal/domain"
)

// newContributorsDepth is how many ranked authors are compared between the
// current window and all prior history.
const newContributorsDepth = 10000

// NewContributors returns authors active in the query window who had no
// activity before it started.
func (r *Runner) NewContributors(ctx context.Context, repos []string, p domain.QueryParams) domain.TermBucketList {
	current := p.Clone()
	current.Size = newContributorsDepth
	recent := r.EventsTopAuthors(ctx, repos, current)

	before := current.Clone()
	before.Lte = before.Gte
	before.Gte = nil
	known := map[string]struct{}{}
	for _, b := range r.EventsTopAuthors(ctx, repos, before).Items {
		known[b.Key] = struct{}{}
	}

	items := []domain.TermBucket{}
	for _, b := range recent.Items {
		if _, ok := known[b.Key]; !ok {
			items = append(items, b)
		}
	}
	return domain.TermBucketList{Items: items}
}
