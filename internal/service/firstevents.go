package service

import (
	"context"
	"sort"
	"time"

	"github.com/jonesrussell/forge-metrics/internal/domain"
	"github.com/jonesrussell/forge-metrics/internal/elasticsearch"
)

// topFirstEventAuthors caps the author leaderboard of the first-event stats.
const topFirstEventAuthors = 10

// firstEventOnChanges scans matching events, keeps the earliest event per
// change, and reports the average delay between change creation and that
// first event plus the authors who most often got there first.
func (r *Runner) firstEventOnChanges(ctx context.Context, repos []string, p domain.QueryParams) domain.FirstEventStats {
	fields := []string{"change_id", "author", "created_at", "on_created_at"}
	events := r.store.Scan(ctx, elasticsearch.BuildFilter(repos, p), fields)

	type first struct {
		createdAt       time.Time
		changeCreatedAt time.Time
		author          string
	}
	firsts := map[string]first{}
	for _, ev := range events {
		if ev.ChangeID == "" || ev.CreatedAt == nil || ev.OnCreatedAt == nil {
			continue
		}
		cur, seen := firsts[ev.ChangeID]
		if !seen || ev.CreatedAt.Before(cur.createdAt) {
			firsts[ev.ChangeID] = first{
				createdAt:       *ev.CreatedAt,
				changeCreatedAt: *ev.OnCreatedAt,
				author:          ev.Author,
			}
		}
	}

	stats := domain.FirstEventStats{TopAuthors: []domain.AuthorCount{}}
	if len(firsts) == 0 {
		return stats
	}

	var totalDelay int64
	wins := map[string]int64{}
	for _, f := range firsts {
		totalDelay += int64(f.createdAt.Sub(f.changeCreatedAt).Seconds())
		wins[f.author]++
	}
	stats.FirstEventDelayAvg = totalDelay / int64(len(firsts))

	authors := make([]domain.AuthorCount, 0, len(wins))
	for author, count := range wins {
		authors = append(authors, domain.AuthorCount{Author: author, Count: count})
	}
	sort.Slice(authors, func(i, j int) bool {
		if authors[i].Count != authors[j].Count {
			return authors[i].Count > authors[j].Count
		}
		return authors[i].Author < authors[j].Author
	})
	if len(authors) > topFirstEventAuthors {
		authors = authors[:topFirstEventAuthors]
	}
	stats.TopAuthors = authors
	return stats
}

// FirstCommentOnChanges reports first-comment latency per change.
func (r *Runner) FirstCommentOnChanges(ctx context.Context, repos []string, p domain.QueryParams) domain.FirstEventStats {
	return r.firstEventOnChanges(ctx, repos, p.WithTypes(domain.TypeCommented))
}

// FirstReviewOnChanges reports first-review latency per change.
func (r *Runner) FirstReviewOnChanges(ctx context.Context, repos []string, p domain.QueryParams) domain.FirstEventStats {
	return r.firstEventOnChanges(ctx, repos, p.WithTypes(domain.TypeReviewed))
}
