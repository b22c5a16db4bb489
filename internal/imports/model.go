package imports

import "time"

// Batch statuses. A batch is created as processing, becomes completed exactly
// once after its rows have been walked, and is immutable afterwards. Failed
// is reserved for setup-level faults that happen before any row is touched.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Row is one decoded spreadsheet row: a flat field map produced by the
// upstream tokenizer. Expected keys are student_no, destination_type and any
// subset of the destination payload fields.
type Row map[string]string

// Batch is the audit record of one import invocation.
type Batch struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SourceFile   string    `json:"sourceFile,omitempty"`
	TotalRecords int       `json:"totalRecords"`
	SuccessCount int       `json:"successCount"`
	FailureCount int       `json:"failureCount"`
	Status       string    `json:"status"`
	CreatedBy    *string   `json:"createdBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RowFailure explains why one row of a batch produced no destination record.
// The raw row is retained verbatim so operators can diagnose the input.
type RowFailure struct {
	ID        string    `json:"id"`
	BatchID   string    `json:"batchId"`
	RowNumber int       `json:"rowNumber"`
	RawRow    Row       `json:"rawRow,omitempty"`
	StudentNo *string   `json:"studentNo,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
