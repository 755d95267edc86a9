// Package domain defines the document model, query parameters, and result
// types shared by the store adapter and the metric catalog.
package domain

import "time"

// Event type discriminants as stored in the index. A "Change" document is the
// change itself; every other type is an action performed on a change.
const (
	TypeChange          = "Change"
	TypeCreated         = "ChangeCreatedEvent"
	TypeMerged          = "ChangeMergedEvent"
	TypeAbandoned       = "ChangeAbandonedEvent"
	TypeCommitPushed    = "ChangeCommitPushedEvent"
	TypeCommitForcePush = "ChangeCommitForcePushedEvent"
	TypeReviewed        = "ChangeReviewedEvent"
	TypeCommented       = "ChangeCommentedEvent"
)

// Change states. Only present on Change-typed documents.
const (
	StateOpen   = "OPEN"
	StateMerged = "MERGED"
	StateClosed = "CLOSED"
)

// EventTypes lists the event discriminants (everything but Change itself).
// This is the default type filter applied by the HTTP boundary when the
// caller does not narrow the query.
func EventTypes() []string {
	return []string{
		TypeCreated,
		TypeMerged,
		TypeAbandoned,
		TypeCommitPushed,
		TypeCommitForcePush,
		TypeReviewed,
		TypeCommented,
	}
}

// AllTypes lists every document type including Change.
func AllTypes() []string {
	return append([]string{TypeChange}, EventTypes()...)
}

// Event is an immutable fact about an action on a change, or the change
// document itself. Fields are optional because scans project a subset.
type Event struct {
	ID                 string     `json:"id,omitempty"`
	Type               string     `json:"type,omitempty"`
	ChangeID           string     `json:"change_id,omitempty"`
	Author             string     `json:"author,omitempty"`
	OnAuthor           string     `json:"on_author,omitempty"`
	RepositoryFullname string     `json:"repository_fullname,omitempty"`
	Title              string     `json:"title,omitempty"`
	URL                string     `json:"url,omitempty"`
	State              string     `json:"state,omitempty"`
	Approval           string     `json:"approval,omitempty"`
	Duration           int64      `json:"duration,omitempty"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
	OnCreatedAt        *time.Time `json:"on_created_at,omitempty"`
	ClosedAt           *time.Time `json:"closed_at,omitempty"`
}

// HotChange is an open change annotated with its comment-event count.
type HotChange struct {
	Event
	HotScore int64 `json:"hot_score"`
}
