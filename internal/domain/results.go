package domain

import "encoding/json"

// TermBucket is a single (key, count) pair from a terms aggregation.
type TermBucket struct {
	Key      string `json:"key"`
	DocCount int64  `json:"doc_count"`
}

// TopTerms is the result of the generic ranked-grouping operation: a page of
// buckets plus mean and median computed over all returned bucket counts.
type TopTerms struct {
	Items       []TermBucket `json:"items"`
	CountAvg    float64      `json:"count_avg"`
	CountMedian float64      `json:"count_median"`
	Total       int          `json:"total"`
	TotalHits   int64        `json:"total_hits"`
}

// Page is a sorted slice of matching documents with the overall hit count.
type Page struct {
	Items []Event `json:"items"`
	Total int64   `json:"total"`
}

// AggResult carries the raw aggregations of a search response, keyed by
// aggregation name, for the caller to decode, plus the total hit count.
type AggResult struct {
	Aggregations map[string]json.RawMessage
	TotalHits    int64
}

// HistoBucket is a single date-histogram bucket.
type HistoBucket struct {
	KeyAsString string `json:"key_as_string"`
	Key         int64  `json:"key"`
	DocCount    int64  `json:"doc_count"`
}

// EventsHisto is a zero-filled date histogram over the query window together
// with the mean bucket count.
type EventsHisto struct {
	Buckets  []HistoBucket `json:"buckets"`
	AvgCount float64       `json:"avg_count"`
}

// ClosedRatios summarizes the change lifecycle over a window. Ratios are
// percentages rounded to one decimal; Iterations is the average number of
// commit pushes per created change plus the initial one.
type ClosedRatios struct {
	MergedRatio    float64 `json:"merged/created"`
	AbandonedRatio float64 `json:"abandoned/created"`
	Iterations     float64 `json:"iterations/created"`
}

// PeerStrength is an undirected interaction score between two authors.
// Peers is canonicalized by sorting the two identifiers.
type PeerStrength struct {
	Peers    [2]string `json:"peers"`
	Strength int64     `json:"strength"`
}

// AuthorCount is an (author, count) pair.
type AuthorCount struct {
	Author string `json:"author"`
	Count  int64  `json:"count"`
}

// FirstEventStats reports, over all changes with at least one matching event,
// the average delay in seconds between change creation and its first event,
// and the authors who most often produced that first event.
type FirstEventStats struct {
	FirstEventDelayAvg int64         `json:"first_event_delay_avg"`
	TopAuthors         []AuthorCount `json:"top_authors"`
}

// TermBucketList wraps a plain list of term buckets.
type TermBucketList struct {
	Items []TermBucket `json:"items"`
}

// ChangeList wraps a plain list of change documents.
type ChangeList struct {
	Items []Event `json:"items"`
}

// HotChangeList wraps changes annotated with their hot score.
type HotChangeList struct {
	Items []HotChange `json:"items"`
}

// RangeBucket is a single bucket of a keyed range aggregation.
type RangeBucket struct {
	From     *float64 `json:"from,omitempty"`
	To       *float64 `json:"to,omitempty"`
	DocCount int64    `json:"doc_count"`
}

// AvgValue is the result of an average aggregation. Value is nil when no
// document matched.
type AvgValue struct {
	Value *float64 `json:"value"`
}

// EventCounts pairs the number of matching events with the number of
// distinct authors producing them.
type EventCounts struct {
	EventsCount  int64 `json:"events_count"`
	AuthorsCount int64 `json:"authors_count"`
}

// LifecycleStats is the composite lifecycle report.
type LifecycleStats struct {
	Ratios ClosedRatios           `json:"ratios"`
	Histos map[string]EventsHisto `json:"histos"`
	Avgs   map[string]float64     `json:"avgs"`
	Events map[string]EventCounts `json:"events"`
}

// ReviewStats is the composite review-activity report.
type ReviewStats struct {
	FirstEventDelay FirstEventDelay        `json:"first_event_delay"`
	Histos          map[string]EventsHisto `json:"histos"`
	Events          map[string]EventCounts `json:"events"`
}

// FirstEventDelay groups first-comment and first-review latency stats.
type FirstEventDelay struct {
	Comment FirstEventStats `json:"comment"`
	Review  FirstEventStats `json:"review"`
}

// ReviewedAuthorsStats pairs the most reviewed and most commented authors.
type ReviewedAuthorsStats struct {
	Reviewed  TopTerms `json:"reviewed"`
	Commented TopTerms `json:"commented"`
}

// StateChangedPages pairs the latest merged and opened change pages.
type StateChangedPages struct {
	MergedChanges Page `json:"merged_changes"`
	OpenedChanges Page `json:"opened_changes"`
}
