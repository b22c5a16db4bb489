package imports

import "context"

// BatchRepo defines persistence operations for import batches. A batch has a
// single writer: the coordinator invocation that created it.
type BatchRepo interface {
	CreateBatch(ctx context.Context, batch Batch) error
	GetBatch(ctx context.Context, batchID string) (Batch, error)
	ListBatches(ctx context.Context, limit, offset int) ([]Batch, int, error)
	FinalizeBatch(ctx context.Context, batchID, status string, successCount, failureCount int) error
	DeleteBatch(ctx context.Context, batchID string) error
}

// FailureLedger is the append-only store of per-row failures. Entries are
// never updated or deleted individually; they go away only when the owning
// batch is deleted.
type FailureLedger interface {
	Record(ctx context.Context, failure RowFailure) error
	ListByBatch(ctx context.Context, batchID string) ([]RowFailure, error)
}
