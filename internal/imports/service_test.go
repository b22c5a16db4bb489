package imports_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gradtrack-backend/internal/destinations"
	"gradtrack-backend/internal/imports"
	"gradtrack-backend/internal/students"
)

func newTestService(t *testing.T) (*imports.Service, *imports.MemoryRepo, *destinations.Service, *students.MemoryRepo) {
	t.Helper()
	roster := students.NewMemoryRepo()
	roster.Add(students.Student{ID: "stu-1", StudentNo: "2021001", FullName: "Alice Zhang"})
	roster.Add(students.Student{ID: "stu-2", StudentNo: "2021002", FullName: "Bob Li"})

	importRepo := imports.NewMemoryRepo()
	destinationSvc := destinations.NewService(destinations.NewMemoryRepo(roster))
	svc := imports.NewService(importRepo, importRepo, roster, destinationSvc)
	return svc, importRepo, destinationSvc, roster
}

func TestRunImportExampleScenario(t *testing.T) {
	svc, importRepo, destinationSvc, _ := newTestService(t)
	ctx := context.Background()

	rows := []imports.Row{
		{"student_no": "2021001", "destination_type": "employment", "employer": "Acme Co"},
		{"student_no": "does-not-exist", "destination_type": "employment"},
		{"student_no": "2021002", "destination_type": "further_study", "school_name": "State University"},
	}

	batch, err := svc.RunImport(ctx, imports.RunImportInput{Name: "class of 2025", Rows: rows})
	if err != nil {
		t.Fatalf("RunImport: %v", err)
	}

	if batch.Status != imports.StatusCompleted {
		t.Fatalf("status = %s", batch.Status)
	}
	if batch.TotalRecords != 3 || batch.SuccessCount != 2 || batch.FailureCount != 1 {
		t.Fatalf("counts = total %d success %d failure %d", batch.TotalRecords, batch.SuccessCount, batch.FailureCount)
	}
	if batch.SuccessCount+batch.FailureCount != batch.TotalRecords {
		t.Fatalf("count invariant violated")
	}

	failures, err := importRepo.ListByBatch(ctx, batch.ID)
	if err != nil {
		t.Fatalf("ListByBatch: %v", err)
	}
	if len(failures) != 1 {
		t.Fatalf("failures = %d", len(failures))
	}
	if failures[0].RowNumber != 2 {
		t.Fatalf("failure row number = %d", failures[0].RowNumber)
	}
	if failures[0].StudentNo == nil || *failures[0].StudentNo != "does-not-exist" {
		t.Fatalf("failure student no = %v", failures[0].StudentNo)
	}

	records, _, err := destinationSvc.List(ctx, destinations.ListFilter{})
	if err != nil {
		t.Fatalf("List records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d", len(records))
	}
	byStudent := make(map[string]destinations.Record)
	for _, record := range records {
		byStudent[record.StudentID] = record
	}
	employment := byStudent["stu-1"]
	if employment.Status != destinations.StatusPending || employment.DestinationType != destinations.TypeEmployment || employment.Payload.Employer != "Acme Co" {
		t.Fatalf("record for 2021001 = %+v", employment)
	}
	study := byStudent["stu-2"]
	if study.Status != destinations.StatusPending || study.DestinationType != destinations.TypeFurtherStudy || study.Payload.SchoolName != "State University" {
		t.Fatalf("record for 2021002 = %+v", study)
	}
}

func TestRunImportFaultIsolation(t *testing.T) {
	svc, importRepo, _, roster := newTestService(t)
	ctx := context.Background()

	const n = 10
	const badRow = 4
	var rows []imports.Row
	for i := 1; i <= n; i++ {
		no := fmt.Sprintf("2022%03d", i)
		roster.Add(students.Student{ID: "stu-bulk-" + no, StudentNo: no, FullName: "Student " + no})
		row := imports.Row{"student_no": no, "destination_type": "employment"}
		if i == badRow {
			delete(row, "student_no")
		}
		rows = append(rows, row)
	}

	batch, err := svc.RunImport(ctx, imports.RunImportInput{Name: "bulk", Rows: rows})
	if err != nil {
		t.Fatalf("RunImport: %v", err)
	}
	if batch.SuccessCount != n-1 || batch.FailureCount != 1 {
		t.Fatalf("counts = success %d failure %d", batch.SuccessCount, batch.FailureCount)
	}

	failures, err := importRepo.ListByBatch(ctx, batch.ID)
	if err != nil {
		t.Fatalf("ListByBatch: %v", err)
	}
	if len(failures) != 1 || failures[0].RowNumber != badRow {
		t.Fatalf("failures = %+v", failures)
	}
	if failures[0].StudentNo != nil {
		t.Fatalf("expected nil student no for missing identifier, got %q", *failures[0].StudentNo)
	}
	if failures[0].Message != imports.MsgStudentNoRequired {
		t.Fatalf("message = %q", failures[0].Message)
	}
}

func TestRunImportUnknownTypeFailsBeforeResolution(t *testing.T) {
	svc, importRepo, _, _ := newTestService(t)
	ctx := context.Background()

	batch, err := svc.RunImport(ctx, imports.RunImportInput{
		Name: "bad type",
		Rows: []imports.Row{{"student_no": "2021001", "destination_type": "bogus"}},
	})
	if err != nil {
		t.Fatalf("RunImport: %v", err)
	}
	if batch.FailureCount != 1 {
		t.Fatalf("failure count = %d", batch.FailureCount)
	}

	failures, _ := importRepo.ListByBatch(ctx, batch.ID)
	if len(failures) != 1 {
		t.Fatalf("failures = %d", len(failures))
	}
	// The identifier was extracted before validation failed, so it is kept.
	if failures[0].StudentNo == nil || *failures[0].StudentNo != "2021001" {
		t.Fatalf("student no = %v", failures[0].StudentNo)
	}
	if failures[0].RawRow["destination_type"] != "bogus" {
		t.Fatalf("raw row not retained: %+v", failures[0].RawRow)
	}
}

func TestRunImportNilInitiator(t *testing.T) {
	svc, importRepo, _, _ := newTestService(t)
	ctx := context.Background()

	batch, err := svc.RunImport(ctx, imports.RunImportInput{
		Name:        "anonymous",
		Rows:        []imports.Row{{"student_no": "2021001", "destination_type": "employment"}},
		InitiatorID: nil,
	})
	if err != nil {
		t.Fatalf("RunImport: %v", err)
	}
	if batch.CreatedBy != nil {
		t.Fatalf("created by = %v", batch.CreatedBy)
	}

	stored, err := importRepo.GetBatch(ctx, batch.ID)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if stored.CreatedBy != nil {
		t.Fatalf("stored created by = %v", stored.CreatedBy)
	}
}

func TestRunImportRerunIsIdempotentPerStudent(t *testing.T) {
	svc, _, destinationSvc, _ := newTestService(t)
	ctx := context.Background()

	rows := []imports.Row{{"student_no": "2021001", "destination_type": "employment", "employer": "Acme Co"}}

	first, err := svc.RunImport(ctx, imports.RunImportInput{Name: "run 1", Rows: rows})
	if err != nil {
		t.Fatalf("first RunImport: %v", err)
	}
	second, err := svc.RunImport(ctx, imports.RunImportInput{Name: "run 2", Rows: rows})
	if err != nil {
		t.Fatalf("second RunImport: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("expected two independent batch audit records")
	}

	records, total, err := destinationSvc.List(ctx, destinations.ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(records) != 1 {
		t.Fatalf("expected exactly one record, got %d", total)
	}
	if records[0].BatchID == nil || *records[0].BatchID != second.ID {
		t.Fatalf("record batch id = %v, want %s", records[0].BatchID, second.ID)
	}
}

func TestRunImportDuplicateRowsLastWriterWins(t *testing.T) {
	svc, _, destinationSvc, _ := newTestService(t)
	ctx := context.Background()

	rows := []imports.Row{
		{"student_no": "2021001", "destination_type": "employment", "employer": "First Corp"},
		{"student_no": "2021001", "destination_type": "employment", "employer": "Second Corp"},
	}
	batch, err := svc.RunImport(ctx, imports.RunImportInput{Name: "dupes", Rows: rows})
	if err != nil {
		t.Fatalf("RunImport: %v", err)
	}
	if batch.SuccessCount != 2 {
		t.Fatalf("success count = %d", batch.SuccessCount)
	}

	records, total, err := destinationSvc.List(ctx, destinations.ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected one record, got %d", total)
	}
	if records[0].Payload.Employer != "Second Corp" {
		t.Fatalf("employer = %q", records[0].Payload.Employer)
	}
}

func TestRunImportRequiresName(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.RunImport(context.Background(), imports.RunImportInput{Name: "  "})
	if !errors.Is(err, imports.ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestRunImportEmptyRows(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	batch, err := svc.RunImport(context.Background(), imports.RunImportInput{Name: "empty"})
	if err != nil {
		t.Fatalf("RunImport: %v", err)
	}
	if batch.Status != imports.StatusCompleted || batch.TotalRecords != 0 {
		t.Fatalf("batch = %+v", batch)
	}
}

func TestListFailuresUnknownBatch(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.ListFailures(context.Background(), "missing")
	if !errors.Is(err, imports.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestDeleteBatchRemovesFailures(t *testing.T) {
	svc, importRepo, _, _ := newTestService(t)
	ctx := context.Background()

	batch, err := svc.RunImport(ctx, imports.RunImportInput{
		Name: "doomed",
		Rows: []imports.Row{{"destination_type": "employment"}},
	})
	if err != nil {
		t.Fatalf("RunImport: %v", err)
	}

	if err := svc.DeleteBatch(ctx, batch.ID); err != nil {
		t.Fatalf("DeleteBatch: %v", err)
	}
	if _, err := importRepo.GetBatch(ctx, batch.ID); !errors.Is(err, imports.ErrNotFound) {
		t.Fatalf("batch still present: %v", err)
	}
	failures, err := importRepo.ListByBatch(ctx, batch.ID)
	if err != nil {
		t.Fatalf("ListByBatch: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("failures not cascaded: %d", len(failures))
	}
}
