package imports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gradtrack-backend/internal/destinations"
	"gradtrack-backend/internal/shared/telemetry"
	"gradtrack-backend/internal/students"
)

// StudentDirectory resolves an external student number to a roster entry.
type StudentDirectory interface {
	LookupByStudentNo(ctx context.Context, studentNo string) (students.Student, error)
}

// DestinationStore applies the upsert-by-student semantics of the record store.
type DestinationStore interface {
	Upsert(ctx context.Context, in destinations.UpsertInput) (destinations.Record, error)
}

// Service is the batch import coordinator. It owns the batch bookkeeping and
// drives each row through validate -> resolve -> upsert, recording every
// row-level fault in the failure ledger instead of aborting.
type Service struct {
	Batches      BatchRepo
	Ledger       FailureLedger
	Students     StudentDirectory
	Destinations DestinationStore
}

func NewService(batches BatchRepo, ledger FailureLedger, roster StudentDirectory, store DestinationStore) *Service {
	return &Service{
		Batches:      batches,
		Ledger:       ledger,
		Students:     roster,
		Destinations: store,
	}
}

// RunImportInput describes one import invocation. InitiatorID is nil when the
// caller's identity could not be resolved; that never blocks the import.
type RunImportInput struct {
	Name        string
	SourceFile  string
	Rows        []Row
	InitiatorID *string
}

type outcomeKind int

const (
	outcomeOK outcomeKind = iota
	outcomeValidationError
	outcomeNotFound
	outcomePersistenceError
)

// rowOutcome is the result of processing a single row. Outcomes are reduced
// into the batch counters and, for failures, into ledger entries; the same
// contract would hold under parallel row processing.
type rowOutcome struct {
	kind      outcomeKind
	studentNo *string
	message   string
}

// RunImport creates the batch record, processes every row in input order, and
// finalizes the batch with exact success/failure counts. Only a failure to
// create or finalize the batch bookkeeping itself is fatal; every row-level
// fault is converted into a RowFailure and processing continues.
func (s *Service) RunImport(ctx context.Context, in RunImportInput) (Batch, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Batch{}, ErrInvalidInput
	}

	batch := Batch{
		ID:           uuid.NewString(),
		Name:         in.Name,
		SourceFile:   in.SourceFile,
		TotalRecords: len(in.Rows),
		Status:       StatusProcessing,
		CreatedBy:    in.InitiatorID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Batches.CreateBatch(ctx, batch); err != nil {
		return Batch{}, fmt.Errorf("create import batch: %w", err)
	}

	successCount := 0
	failureCount := 0
	for i, row := range in.Rows {
		rowNumber := i + 1
		outcome := s.processRow(ctx, batch.ID, row)
		if outcome.kind == outcomeOK {
			successCount++
			continue
		}
		failureCount++
		failure := RowFailure{
			ID:        uuid.NewString(),
			BatchID:   batch.ID,
			RowNumber: rowNumber,
			RawRow:    row,
			StudentNo: outcome.studentNo,
			Message:   outcome.message,
		}
		if err := s.Ledger.Record(ctx, failure); err != nil {
			telemetry.Error("import.ledger_write_failed", map[string]any{
				"batch_id":   batch.ID,
				"row_number": rowNumber,
				"error":      err.Error(),
			})
		}
	}

	if err := s.Batches.FinalizeBatch(ctx, batch.ID, StatusCompleted, successCount, failureCount); err != nil {
		return Batch{}, fmt.Errorf("finalize import batch %s: %w", batch.ID, err)
	}

	batch.Status = StatusCompleted
	batch.SuccessCount = successCount
	batch.FailureCount = failureCount
	batch.UpdatedAt = time.Now().UTC()

	telemetry.Info("import.completed", map[string]any{
		"batch_id":      batch.ID,
		"total_records": batch.TotalRecords,
		"success_count": successCount,
		"failure_count": failureCount,
	})
	return batch, nil
}

// processRow runs a single row through the pipeline. A panic in the store is
// contained here so one poisoned row cannot take the rest of the batch down.
func (s *Service) processRow(ctx context.Context, batchID string, row Row) (outcome rowOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			outcome = rowOutcome{
				kind:      outcomePersistenceError,
				studentNo: rowStudentNo(row),
				message:   fmt.Sprintf("row processing panic: %v", rec),
			}
		}
	}()

	destinationType, err := ValidateRow(row)
	if err != nil {
		// The identifier is recorded alongside the validation failure
		// whenever the row carried one.
		return rowOutcome{
			kind:      outcomeValidationError,
			studentNo: rowStudentNo(row),
			message:   err.Error(),
		}
	}

	studentNo := strings.TrimSpace(row[FieldStudentNo])
	student, err := s.Students.LookupByStudentNo(ctx, studentNo)
	if err != nil {
		if errors.Is(err, students.ErrNotFound) {
			return rowOutcome{
				kind:      outcomeNotFound,
				studentNo: &studentNo,
				message:   fmt.Sprintf("student %q not found in roster", studentNo),
			}
		}
		return rowOutcome{
			kind:      outcomePersistenceError,
			studentNo: &studentNo,
			message:   fmt.Sprintf("student lookup failed: %v", err),
		}
	}

	_, err = s.Destinations.Upsert(ctx, destinations.UpsertInput{
		StudentID:       student.ID,
		DestinationType: destinationType,
		Payload:         PayloadFromRow(row),
		BatchID:         &batchID,
	})
	if err != nil {
		return rowOutcome{
			kind:      outcomePersistenceError,
			studentNo: &studentNo,
			message:   fmt.Sprintf("failed to save destination record: %v", err),
		}
	}
	return rowOutcome{kind: outcomeOK}
}

func rowStudentNo(row Row) *string {
	if no := strings.TrimSpace(row[FieldStudentNo]); no != "" {
		return &no
	}
	return nil
}

// GetBatch returns one batch by id.
func (s *Service) GetBatch(ctx context.Context, batchID string) (Batch, error) {
	if strings.TrimSpace(batchID) == "" {
		return Batch{}, ErrInvalidInput
	}
	return s.Batches.GetBatch(ctx, batchID)
}

// ListBatches returns a page of batches, newest first.
func (s *Service) ListBatches(ctx context.Context, limit, offset int) ([]Batch, int, error) {
	return s.Batches.ListBatches(ctx, limit, offset)
}

// ListFailures returns the failure ledger entries for a batch ordered by row
// number.
func (s *Service) ListFailures(ctx context.Context, batchID string) ([]RowFailure, error) {
	if strings.TrimSpace(batchID) == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.Batches.GetBatch(ctx, batchID); err != nil {
		return nil, err
	}
	return s.Ledger.ListByBatch(ctx, batchID)
}

// DeleteBatch removes a batch and, through the ledger's cascade, its row
// failures.
func (s *Service) DeleteBatch(ctx context.Context, batchID string) error {
	if strings.TrimSpace(batchID) == "" {
		return ErrInvalidInput
	}
	return s.Batches.DeleteBatch(ctx, batchID)
}
