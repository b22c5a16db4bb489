package destinations_test

import (
	"context"
	"errors"
	"testing"

	"gradtrack-backend/internal/destinations"
	"gradtrack-backend/internal/students"
)

func newTestService(t *testing.T) (*destinations.Service, *students.MemoryRepo) {
	t.Helper()
	roster := students.NewMemoryRepo()
	roster.Add(students.Student{ID: "stu-1", StudentNo: "2021001", FullName: "Alice Zhang"})
	roster.Add(students.Student{ID: "stu-2", StudentNo: "2021002", FullName: "Bob Li"})
	return destinations.NewService(destinations.NewMemoryRepo(roster)), roster
}

func strPtr(s string) *string { return &s }

func TestUpsertCreatesPendingRecord(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	record, err := svc.Upsert(ctx, destinations.UpsertInput{
		StudentID:       "stu-1",
		DestinationType: destinations.TypeEmployment,
		Payload:         destinations.Payload{Employer: "Acme Co", Position: "Engineer"},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if record.Status != destinations.StatusPending {
		t.Fatalf("status = %s", record.Status)
	}
	if record.BatchID != nil {
		t.Fatalf("manual submission should carry no batch id, got %v", record.BatchID)
	}
}

func TestUpsertNormalizesSynonymType(t *testing.T) {
	svc, _ := newTestService(t)
	record, err := svc.Upsert(context.Background(), destinations.UpsertInput{
		StudentID:       "stu-1",
		DestinationType: "就业",
		Payload:         destinations.Payload{Employer: "Acme Co"},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if record.DestinationType != destinations.TypeEmployment {
		t.Fatalf("type = %s", record.DestinationType)
	}
}

func TestUpsertRejectsUnknownType(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Upsert(context.Background(), destinations.UpsertInput{
		StudentID:       "stu-1",
		DestinationType: "bogus",
	})
	if !errors.Is(err, destinations.ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestResubmissionReplacesRecordAndResetsReview(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, destinations.UpsertInput{
		StudentID:       "stu-1",
		DestinationType: destinations.TypeEmployment,
		Payload:         destinations.Payload{Employer: "Acme Co"},
	})
	if err != nil {
		t.Fatalf("first Upsert: %v", err)
	}

	approved, err := svc.Review(ctx, first.ID, destinations.DecisionApproved, strPtr("reviewer-1"), strPtr("looks good"))
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if approved.Status != destinations.StatusApproved {
		t.Fatalf("status = %s", approved.Status)
	}

	second, err := svc.Upsert(ctx, destinations.UpsertInput{
		StudentID:       "stu-1",
		DestinationType: destinations.TypeFurtherStudy,
		Payload:         destinations.Payload{SchoolName: "State University"},
	})
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("resubmission must update the same record, not create a second one")
	}
	if second.Status != destinations.StatusPending {
		t.Fatalf("status after resubmission = %s", second.Status)
	}
	if second.ReviewedBy != nil || second.ReviewComment != nil || second.ReviewedAt != nil {
		t.Fatalf("review metadata not cleared: %+v", second)
	}
	if second.Payload.SchoolName != "State University" || second.Payload.Employer != "" {
		t.Fatalf("payload not replaced: %+v", second.Payload)
	}
}

func TestReviewGuardsTerminalStates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	record, err := svc.Upsert(ctx, destinations.UpsertInput{
		StudentID:       "stu-1",
		DestinationType: destinations.TypeEmployment,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := svc.Review(ctx, record.ID, destinations.DecisionRejected, strPtr("reviewer-1"), nil); err != nil {
		t.Fatalf("Review: %v", err)
	}

	_, err = svc.Review(ctx, record.ID, destinations.DecisionApproved, strPtr("reviewer-2"), nil)
	if !errors.Is(err, destinations.ErrInvalidTransition) {
		t.Fatalf("err = %v", err)
	}

	// The record is unchanged by the rejected transition attempt.
	got, err := svc.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != destinations.StatusRejected {
		t.Fatalf("status = %s", got.Status)
	}
	if got.ReviewedBy == nil || *got.ReviewedBy != "reviewer-1" {
		t.Fatalf("reviewer = %v", got.ReviewedBy)
	}
}

func TestReviewRejectsUnknownDecision(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Review(context.Background(), "rec-1", "maybe", nil, nil)
	if !errors.Is(err, destinations.ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestBulkReviewIsolatesFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pending, err := svc.Upsert(ctx, destinations.UpsertInput{
		StudentID:       "stu-1",
		DestinationType: destinations.TypeEmployment,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	terminal, err := svc.Upsert(ctx, destinations.UpsertInput{
		StudentID:       "stu-2",
		DestinationType: destinations.TypeOther,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := svc.Review(ctx, terminal.ID, destinations.DecisionApproved, nil, nil); err != nil {
		t.Fatalf("Review: %v", err)
	}

	outcomes, err := svc.BulkReview(ctx, []string{terminal.ID, "missing", pending.ID}, destinations.DecisionApproved, strPtr("reviewer-1"), nil)
	if err != nil {
		t.Fatalf("BulkReview: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("outcomes = %d", len(outcomes))
	}
	if outcomes[0].OK || outcomes[0].Error != "invalid_transition" {
		t.Fatalf("terminal outcome = %+v", outcomes[0])
	}
	if outcomes[1].OK || outcomes[1].Error != "not_found" {
		t.Fatalf("missing outcome = %+v", outcomes[1])
	}
	if !outcomes[2].OK || outcomes[2].Record == nil || outcomes[2].Record.Status != destinations.StatusApproved {
		t.Fatalf("pending outcome = %+v", outcomes[2])
	}
}

func TestBulkDeleteIgnoresMissingIDs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	keep, err := svc.Upsert(ctx, destinations.UpsertInput{
		StudentID:       "stu-1",
		DestinationType: destinations.TypeEmployment,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	doomed, err := svc.Upsert(ctx, destinations.UpsertInput{
		StudentID:       "stu-2",
		DestinationType: destinations.TypeOther,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	deleted, err := svc.BulkDelete(ctx, []string{doomed.ID, "no-such-record"})
	if err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d", deleted)
	}
	if _, err := svc.Get(ctx, keep.ID); err != nil {
		t.Fatalf("kept record gone: %v", err)
	}
	if _, err := svc.Get(ctx, doomed.ID); !errors.Is(err, destinations.ErrNotFound) {
		t.Fatalf("deleted record still present: %v", err)
	}
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, destinations.UpsertInput{
		StudentID:       "stu-1",
		DestinationType: destinations.TypeEmployment,
		Payload:         destinations.Payload{Employer: "Acme Co"},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	study, err := svc.Upsert(ctx, destinations.UpsertInput{
		StudentID:       "stu-2",
		DestinationType: destinations.TypeFurtherStudy,
		Payload:         destinations.Payload{SchoolName: "State University"},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := svc.Review(ctx, study.ID, destinations.DecisionApproved, nil, nil); err != nil {
		t.Fatalf("Review: %v", err)
	}

	byType, total, err := svc.List(ctx, destinations.ListFilter{DestinationType: destinations.TypeEmployment})
	if err != nil {
		t.Fatalf("List by type: %v", err)
	}
	if total != 1 || len(byType) != 1 || byType[0].StudentID != "stu-1" {
		t.Fatalf("byType = %+v total=%d", byType, total)
	}

	byStatus, total, err := svc.List(ctx, destinations.ListFilter{Status: destinations.StatusApproved})
	if err != nil {
		t.Fatalf("List by status: %v", err)
	}
	if total != 1 || byStatus[0].StudentID != "stu-2" {
		t.Fatalf("byStatus = %+v", byStatus)
	}

	byQuery, total, err := svc.List(ctx, destinations.ListFilter{Query: "Bob"})
	if err != nil {
		t.Fatalf("List by query: %v", err)
	}
	if total != 1 || byQuery[0].StudentID != "stu-2" {
		t.Fatalf("byQuery = %+v", byQuery)
	}
}
