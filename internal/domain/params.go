package domain

// QueryParams is the bag of filter knobs a named query is invoked with.
//
// Values are passed by value and treated as immutable: a metric that needs to
// narrow or redirect a query calls Clone first and mutates its own copy, so
// sibling computations sharing the caller's params never observe each other's
// changes.
type QueryParams struct {
	// Gte and Lte bound the event creation time, inclusive, epoch millis.
	// A nil bound leaves that side open.
	Gte *int64
	Lte *int64

	// EType is the set of document types to match. Required: every metric
	// sets it (or the boundary supplies the full event-type list).
	EType []string

	// At most one of Authors / OnAuthors is active per query; see
	// WithOnAuthors.
	Authors        []string
	OnAuthors      []string
	ExcludeAuthors []string

	// State matches Change documents only.
	State string
	// Approval matches review events only.
	Approval string

	ChangeIDs []string

	// Secondary window on the target change's creation time, for
	// event-typed queries. ECSameDate forces it to equal [Gte, Lte].
	OnCCGte    *int64
	OnCCLte    *int64
	ECSameDate bool

	// Pagination over ranked results.
	From int
	Size int

	// Interval for date-histogram queries, e.g. "3h", "1d".
	Interval string
}

// Clone returns a deep copy; slice and pointer fields are duplicated so the
// copy can be mutated freely.
func (p QueryParams) Clone() QueryParams {
	out := p
	out.Gte = cloneInt64(p.Gte)
	out.Lte = cloneInt64(p.Lte)
	out.OnCCGte = cloneInt64(p.OnCCGte)
	out.OnCCLte = cloneInt64(p.OnCCLte)
	out.EType = cloneStrings(p.EType)
	out.Authors = cloneStrings(p.Authors)
	out.OnAuthors = cloneStrings(p.OnAuthors)
	out.ExcludeAuthors = cloneStrings(p.ExcludeAuthors)
	out.ChangeIDs = cloneStrings(p.ChangeIDs)
	return out
}

// WithOnAuthors returns a copy where an Authors constraint is moved onto
// OnAuthors, for queries whose subject shifts from "events by X" to "events
// on changes authored by X". Any ExcludeAuthors constraint is dropped in that
// context. A params value without Authors is returned unchanged (copied).
func (p QueryParams) WithOnAuthors() QueryParams {
	out := p.Clone()
	if len(out.Authors) == 0 {
		return out
	}
	out.OnAuthors = out.Authors
	out.Authors = nil
	out.ExcludeAuthors = nil
	return out
}

// WithTypes returns a copy narrowed to the given document types.
func (p QueryParams) WithTypes(types ...string) QueryParams {
	out := p.Clone()
	out.EType = types
	return out
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneStrings(v []string) []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v...)
}
