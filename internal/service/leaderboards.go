package service

import (
	"context"

	"github.com/jonesrussell/forge-metrics/internal/domain"
)

// ReposTopMerged ranks repositories by merged changes. Author filters are
// interpreted against the change owner.
func (r *Runner) ReposTopMerged(ctx context.Context, repos []string, p domain.QueryParams) domain.TopTerms {
	q := p.WithOnAuthors().WithTypes(domain.TypeMerged)
	return r.topTerms(ctx, repos, "repository_fullname", q)
}

// ReposTopOpened ranks repositories by currently open changes.
func (r *Runner) ReposTopOpened(ctx context.Context, repos []string, p domain.QueryParams) domain.TopTerms {
	q := p.WithTypes(domain.TypeChange)
	q.State = domain.StateOpen
	return r.topTerms(ctx, repos, "repository_fullname", q)
}

// EventsTopAuthors ranks authors by matching event count.
func (r *Runner) EventsTopAuthors(ctx context.Context, repos []string, p domain.QueryParams) domain.TopTerms {
	return r.topTerms(ctx, repos, "author", p)
}

// ChangesTopApproval ranks review approval labels by frequency.
func (r *Runner) ChangesTopApproval(ctx context.Context, repos []string, p domain.QueryParams) domain.TopTerms {
	return r.topTerms(ctx, repos, "approval", p.WithTypes(domain.TypeReviewed))
}

// ChangesTopCommented ranks changes by comment event count.
func (r *Runner) ChangesTopCommented(ctx context.Context, repos []string, p domain.QueryParams) domain.TopTerms {
	return r.topTerms(ctx, repos, "change_id", p.WithTypes(domain.TypeCommented))
}

// ChangesTopReviewed ranks changes by review event count.
func (r *Runner) ChangesTopReviewed(ctx context.Context, repos []string, p domain.QueryParams) domain.TopTerms {
	return r.topTerms(ctx, repos, "change_id", p.WithTypes(domain.TypeReviewed))
}

// AuthorsTopReviewed ranks change owners by reviews received.
func (r *Runner) AuthorsTopReviewed(ctx context.Context, repos []string, p domain.QueryParams) domain.TopTerms {
	return r.topTerms(ctx, repos, "on_author", p.WithTypes(domain.TypeReviewed))
}

// AuthorsTopCommented ranks change owners by comments received.
func (r *Runner) AuthorsTopCommented(ctx context.Context, repos []string, p domain.QueryParams) domain.TopTerms {
	return r.topTerms(ctx, repos, "on_author", p.WithTypes(domain.TypeCommented))
}

// AuthorsTopMerged ranks change owners by merged changes. Author filters are
// interpreted against the change owner.
func (r *Runner) AuthorsTopMerged(ctx context.Context, repos []string, p domain.QueryParams) domain.TopTerms {
	q := p.WithOnAuthors().WithTypes(domain.TypeMerged)
	return r.topTerms(ctx, repos, "on_author", q)
}

// AuthorsTopOpened ranks authors by currently open changes.
func (r *Runner) AuthorsTopOpened(ctx context.Context, repos []string, p domain.QueryParams) domain.TopTerms {
	q := p.WithTypes(domain.TypeChange)
	q.State = domain.StateOpen
	return r.topTerms(ctx, repos, "author", q)
}
