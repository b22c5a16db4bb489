package destinations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"gradtrack-backend/internal/shared/telemetry"
)

// Service owns the destination record store and the review workflow.
type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertInput describes one submission for a student.
type UpsertInput struct {
	StudentID       string
	DestinationType string
	Payload         Payload
	BatchID         *string
}

// Upsert creates or fully replaces the student's destination record. A
// resubmission always lands in pending state with cleared review metadata;
// this is the only path that reopens an approved or rejected record.
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (Record, error) {
	if strings.TrimSpace(in.StudentID) == "" {
		return Record{}, ErrInvalidInput
	}
	code, ok := NormalizeType(in.DestinationType)
	if !ok {
		return Record{}, ErrInvalidInput
	}
	record := Record{
		ID:              uuid.NewString(),
		StudentID:       in.StudentID,
		DestinationType: code,
		Payload:         in.Payload,
		Status:          StatusPending,
		BatchID:         in.BatchID,
		SubmittedAt:     time.Now().UTC(),
	}
	return s.Repo.Upsert(ctx, record)
}

// Review applies a reviewer decision to a single pending record.
func (s *Service) Review(ctx context.Context, recordID, decision string, reviewer *string, comment *string) (Record, error) {
	if strings.TrimSpace(recordID) == "" || !ValidDecision(decision) {
		return Record{}, ErrInvalidInput
	}
	return s.Repo.Review(ctx, recordID, decision, reviewer, comment, time.Now().UTC())
}

// ReviewOutcome is the per-record result of a bulk review.
type ReviewOutcome struct {
	RecordID string  `json:"recordId"`
	OK       bool    `json:"ok"`
	Error    string  `json:"error,omitempty"`
	Record   *Record `json:"record,omitempty"`
}

// BulkReview applies the decision to each record independently. A record that
// is missing or already terminal fails on its own; the rest still go through.
func (s *Service) BulkReview(ctx context.Context, recordIDs []string, decision string, reviewer *string, comment *string) ([]ReviewOutcome, error) {
	if !ValidDecision(decision) {
		return nil, ErrInvalidInput
	}
	outcomes := make([]ReviewOutcome, 0, len(recordIDs))
	for _, id := range recordIDs {
		record, err := s.Review(ctx, id, decision, reviewer, comment)
		if err != nil {
			outcomes = append(outcomes, ReviewOutcome{RecordID: id, Error: reviewErrorCode(err)})
			continue
		}
		outcomes = append(outcomes, ReviewOutcome{RecordID: id, OK: true, Record: &record})
	}
	return outcomes, nil
}

func (s *Service) Get(ctx context.Context, recordID string) (Record, error) {
	if strings.TrimSpace(recordID) == "" {
		return Record{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, recordID)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Record, int, error) {
	return s.Repo.List(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, recordID string) error {
	if strings.TrimSpace(recordID) == "" {
		return ErrInvalidInput
	}
	return s.Repo.Delete(ctx, recordID)
}

// BulkDelete removes exactly the given records; nonexistent ids are a no-op.
func (s *Service) BulkDelete(ctx context.Context, recordIDs []string) (int64, error) {
	deleted, err := s.Repo.BulkDelete(ctx, recordIDs)
	if err != nil {
		return 0, err
	}
	telemetry.Info("destinations.bulk_delete", map[string]any{
		"requested": len(recordIDs),
		"deleted":   deleted,
	})
	return deleted, nil
}

func reviewErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal_error"
	}
}
