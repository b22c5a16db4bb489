package destinations

import (
	"context"
	"time"
)

// ListFilter narrows List results. Query matches the resolved student's
// number or name.
type ListFilter struct {
	DestinationType string
	Status          string
	Query           string
	Limit           int
	Offset          int
}

// Repo defines persistence operations for destination records.
//
// Upsert is keyed by student id: the first submission creates the record,
// every later one replaces the payload in place and resets the review state
// to pending. Review applies a pending -> approved/rejected transition and
// returns ErrInvalidTransition when the record is already terminal.
type Repo interface {
	Upsert(ctx context.Context, record Record) (Record, error)
	GetByID(ctx context.Context, recordID string) (Record, error)
	Review(ctx context.Context, recordID, decision string, reviewer *string, comment *string, reviewedAt time.Time) (Record, error)
	Delete(ctx context.Context, recordID string) error
	BulkDelete(ctx context.Context, recordIDs []string) (int64, error)
	List(ctx context.Context, filter ListFilter) ([]Record, int, error)
}
