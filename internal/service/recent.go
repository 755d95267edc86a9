package service

import (
	"context"

	"github.com/jonesrussell/forge-metrics/internal/domain"
	"github.com/jonesrussell/forge-metrics/internal/elasticsearch"
)

// page runs a sorted, paginated document search for the given params.
func (r *Runner) page(ctx context.Context, repos []string, p domain.QueryParams, sortField, order string) domain.Page {
	return r.store.SearchPage(ctx, elasticsearch.BuildFilter(repos, p), sortField, order, p.From, p.Size)
}

// LastMergedChanges pages merged changes, most recently closed first.
func (r *Runner) LastMergedChanges(ctx context.Context, repos []string, p domain.QueryParams) domain.Page {
	q := p.WithTypes(domain.TypeChange)
	q.State = domain.StateMerged
	return r.page(ctx, repos, q, "closed_at", "desc")
}

// LastOpenedChanges pages open changes, most recently created first.
func (r *Runner) LastOpenedChanges(ctx context.Context, repos []string, p domain.QueryParams) domain.Page {
	q := p.WithTypes(domain.TypeChange)
	q.State = domain.StateOpen
	return r.page(ctx, repos, q, "created_at", "desc")
}

// LastAbandonedChanges pages abandoned changes, most recently created first.
func (r *Runner) LastAbandonedChanges(ctx context.Context, repos []string, p domain.QueryParams) domain.Page {
	q := p.WithTypes(domain.TypeChange)
	q.State = domain.StateClosed
	return r.page(ctx, repos, q, "created_at", "desc")
}

// lastEvents pages matching events, newest first.
func (r *Runner) lastEvents(ctx context.Context, repos []string, p domain.QueryParams) domain.Page {
	return r.page(ctx, repos, p, "created_at", "desc")
}

// LastReviewEvents pages review events, newest first.
func (r *Runner) LastReviewEvents(ctx context.Context, repos []string, p domain.QueryParams) domain.Page {
	return r.lastEvents(ctx, repos, p.WithTypes(domain.TypeReviewed))
}

// LastCommentEvents pages comment events, newest first.
func (r *Runner) LastCommentEvents(ctx context.Context, repos []string, p domain.QueryParams) domain.Page {
	return r.lastEvents(ctx, repos, p.WithTypes(domain.TypeCommented))
}

// OldestOpenChanges pages open changes, oldest first.
func (r *Runner) OldestOpenChanges(ctx context.Context, repos []string, p domain.QueryParams) domain.Page {
	q := p.WithTypes(domain.TypeChange)
	q.State = domain.StateOpen
	return r.page(ctx, repos, q, "created_at", "asc")
}

// ChangesAndEvents pages changes and events interleaved in chronological
// order.
func (r *Runner) ChangesAndEvents(ctx context.Context, repos []string, p domain.QueryParams) domain.Page {
	return r.page(ctx, repos, p.WithTypes(domain.AllTypes()...), "created_at", "asc")
}

// LastStateChangedChanges combines the latest merged and latest opened
// change pages.
func (r *Runner) LastStateChangedChanges(ctx context.Context, repos []string, p domain.QueryParams) domain.StateChangedPages {
	return domain.StateChangedPages{
		MergedChanges: r.LastMergedChanges(ctx, repos, p),
		OpenedChanges: r.LastOpenedChanges(ctx, repos, p),
	}
}
