package service

import (
	"context"
	"sort"

	"github.com/jonesrussell/forge-metrics/internal/domain"
)

// PeersExchangeStrength measures collaboration intensity between author
// pairs: for each top reviewer or commenter, their review and comment
// events are grouped by the change owner they landed on, and counts are
// accumulated per unordered pair. Self-interactions are skipped.
func (r *Runner) PeersExchangeStrength(ctx context.Context, repos []string, p domain.QueryParams) []domain.PeerStrength {
	q := p.WithTypes(domain.TypeReviewed, domain.TypeCommented)

	scores := map[[2]string]int64{}
	for _, author := range r.topTerms(ctx, repos, "author", q).Items {
		byAuthor := q.Clone()
		byAuthor.Authors = []string{author.Key}
		for _, peer := range r.topTerms(ctx, repos, "on_author", byAuthor).Items {
			if peer.Key == author.Key {
				continue
			}
			pair := [2]string{author.Key, peer.Key}
			if pair[0] > pair[1] {
				pair[0], pair[1] = pair[1], pair[0]
			}
			scores[pair] += peer.DocCount
		}
	}

	out := make([]domain.PeerStrength, 0, len(scores))
	for pair, strength := range scores {
		out = append(out, domain.PeerStrength{Peers: pair, Strength: strength})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Strength != out[j].Strength {
			return out[i].Strength > out[j].Strength
		}
		if out[i].Peers[0] != out[j].Peers[0] {
			return out[i].Peers[0] < out[j].Peers[0]
		}
		return out[i].Peers[1] < out[j].Peers[1]
	})
	return out
}
