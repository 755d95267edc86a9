package elasticsearch

import (
	"slices"

	"github.com/jonesrussell/forge-metrics/internal/domain"
)

// BuildFilter composes the boolean filter expression for a query: repository
// patterns OR-ed together, an inclusive created_at window, type membership,
// optional author/on_author/change_id membership, then either the
// Change-specific clause (state) or the event-specific clause (on_created_at
// window, approval), and a must_not excluding ExcludeAuthors from both author
// roles.
//
// Pure function of its inputs; the filter is built fresh per call and never
// reused, since sibling metric calls derive different params.
func BuildFilter(repositories []string, p domain.QueryParams) map[string]any {
	repos := make([]any, 0, len(repositories))
	for _, pattern := range repositories {
		repos = append(repos, map[string]any{
			"regexp": map[string]any{
				"repository_fullname": map[string]any{"value": pattern},
			},
		})
	}

	createdAt := map[string]any{"format": "epoch_millis"}
	if p.Gte != nil {
		createdAt["gte"] = *p.Gte
	}
	if p.Lte != nil {
		createdAt["lte"] = *p.Lte
	}

	filter := []any{
		map[string]any{"bool": map[string]any{"should": repos}},
		map[string]any{"range": map[string]any{"created_at": createdAt}},
		map[string]any{"terms": map[string]any{"type": p.EType}},
	}

	if len(p.Authors) > 0 {
		filter = append(filter, map[string]any{"terms": map[string]any{"author": p.Authors}})
	}
	if len(p.OnAuthors) > 0 {
		filter = append(filter, map[string]any{"terms": map[string]any{"on_author": p.OnAuthors}})
	}
	if len(p.ChangeIDs) > 0 {
		filter = append(filter, map[string]any{"terms": map[string]any{"change_id": p.ChangeIDs}})
	}

	if slices.Contains(p.EType, domain.TypeChange) {
		filter = appendChangesClauses(filter, p)
	} else {
		filter = appendEventsClauses(filter, p)
	}

	mustNot := []any{}
	if len(p.ExcludeAuthors) > 0 {
		// A peer must not appear in either role.
		mustNot = append(mustNot,
			map[string]any{"terms": map[string]any{"author": p.ExcludeAuthors}},
			map[string]any{"terms": map[string]any{"on_author": p.ExcludeAuthors}},
		)
	}

	return map[string]any{
		"bool": map[string]any{
			"filter":   filter,
			"must_not": mustNot,
		},
	}
}

// appendChangesClauses adds the Change-specific clause: state equality,
// skipped when absent.
func appendChangesClauses(filter []any, p domain.QueryParams) []any {
	if p.State != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"state": p.State}})
	}
	return filter
}

// appendEventsClauses adds the event-specific clauses: a window on the target
// change's creation time (ECSameDate forces it to the event window) and an
// optional approval equality.
func appendEventsClauses(filter []any, p domain.QueryParams) []any {
	onCCGte := p.OnCCGte
	onCCLte := p.OnCCLte
	if p.ECSameDate {
		onCCGte = p.Gte
		onCCLte = p.Lte
	}

	onCreatedAt := map[string]any{"format": "epoch_millis"}
	if onCCGte != nil {
		onCreatedAt["gte"] = *onCCGte
	}
	if onCCLte != nil {
		onCreatedAt["lte"] = *onCCLte
	}
	filter = append(filter, map[string]any{"range": map[string]any{"on_created_at": onCreatedAt}})

	if p.Approval != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"approval": p.Approval}})
	}
	return filter
}
