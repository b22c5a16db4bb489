package imports

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo implements BatchRepo and FailureLedger in memory for tests and
// database-less runs.
type MemoryRepo struct {
	mu       sync.RWMutex
	batches  map[string]Batch
	failures map[string][]RowFailure
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		batches:  make(map[string]Batch),
		failures: make(map[string][]RowFailure),
	}
}

func (r *MemoryRepo) CreateBatch(ctx context.Context, batch Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = now
	}
	batch.UpdatedAt = now
	r.batches[batch.ID] = batch
	return nil
}

func (r *MemoryRepo) GetBatch(ctx context.Context, batchID string) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	batch, ok := r.batches[batchID]
	if !ok {
		return Batch{}, ErrNotFound
	}
	return batch, nil
}

func (r *MemoryRepo) ListBatches(ctx context.Context, limit, offset int) ([]Batch, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	all := make([]Batch, 0, len(r.batches))
	for _, batch := range r.batches {
		all = append(all, batch)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []Batch{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *MemoryRepo) FinalizeBatch(ctx context.Context, batchID, status string, successCount, failureCount int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	batch, ok := r.batches[batchID]
	if !ok || batch.Status != StatusProcessing {
		return ErrNotFound
	}
	batch.Status = status
	batch.SuccessCount = successCount
	batch.FailureCount = failureCount
	batch.UpdatedAt = time.Now().UTC()
	r.batches[batchID] = batch
	return nil
}

func (r *MemoryRepo) DeleteBatch(ctx context.Context, batchID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.batches[batchID]; !ok {
		return ErrNotFound
	}
	delete(r.batches, batchID)
	delete(r.failures, batchID)
	return nil
}

func (r *MemoryRepo) Record(ctx context.Context, failure RowFailure) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if failure.CreatedAt.IsZero() {
		failure.CreatedAt = time.Now().UTC()
	}
	r.failures[failure.BatchID] = append(r.failures[failure.BatchID], failure)
	return nil
}

func (r *MemoryRepo) ListByBatch(ctx context.Context, batchID string) ([]RowFailure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	failures := make([]RowFailure, len(r.failures[batchID]))
	copy(failures, r.failures[batchID])
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].RowNumber < failures[j].RowNumber
	})
	return failures, nil
}
