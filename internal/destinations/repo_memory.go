package destinations

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gradtrack-backend/internal/students"
)

// MemoryRepo is an in-memory record store used when no database is configured
// and in tests. Students is optional; when set it is used to enrich records
// with roster attributes and to match free-text queries.
type MemoryRepo struct {
	mu        sync.RWMutex
	records   map[string]Record
	byStudent map[string]string

	Students students.Repo
}

func NewMemoryRepo(roster students.Repo) *MemoryRepo {
	return &MemoryRepo{
		records:   make(map[string]Record),
		byStudent: make(map[string]string),
		Students:  roster,
	}
}

func (r *MemoryRepo) Upsert(ctx context.Context, record Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if existingID, ok := r.byStudent[record.StudentID]; ok {
		existing := r.records[existingID]
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else {
		record.CreatedAt = now
	}
	record.Status = StatusPending
	record.ReviewComment = nil
	record.ReviewedBy = nil
	record.ReviewedAt = nil
	record.UpdatedAt = now

	r.records[record.ID] = record
	r.byStudent[record.StudentID] = record.ID
	return record, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, recordID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	record, ok := r.records[recordID]
	r.mu.RUnlock()
	if !ok {
		return Record{}, ErrNotFound
	}
	r.enrich(ctx, &record)
	return record, nil
}

func (r *MemoryRepo) Review(ctx context.Context, recordID, decision string, reviewer *string, comment *string, reviewedAt time.Time) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[recordID]
	if !ok {
		return Record{}, ErrNotFound
	}
	if record.Status != StatusPending {
		return Record{}, fmt.Errorf("%w: record is %s", ErrInvalidTransition, record.Status)
	}
	record.Status = decision
	record.ReviewedBy = reviewer
	record.ReviewComment = comment
	record.ReviewedAt = &reviewedAt
	record.UpdatedAt = time.Now().UTC()
	r.records[recordID] = record
	return record, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, recordID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(recordID)
	return nil
}

func (r *MemoryRepo) BulkDelete(ctx context.Context, recordIDs []string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for _, id := range recordIDs {
		if r.remove(id) {
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryRepo) List(ctx context.Context, filter ListFilter) ([]Record, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	all := make([]Record, 0, len(r.records))
	for _, record := range r.records {
		all = append(all, record)
	}
	r.mu.RUnlock()

	var matched []Record
	for i := range all {
		record := all[i]
		r.enrich(ctx, &record)
		if filter.DestinationType != "" && record.DestinationType != filter.DestinationType {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		if filter.Query != "" && !matchesQuery(record, filter.Query) {
			continue
		}
		matched = append(matched, record)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].SubmittedAt.Equal(matched[j].SubmittedAt) {
			return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []Record{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *MemoryRepo) remove(recordID string) bool {
	record, ok := r.records[recordID]
	if !ok {
		return false
	}
	delete(r.records, recordID)
	delete(r.byStudent, record.StudentID)
	return true
}

func (r *MemoryRepo) enrich(ctx context.Context, record *Record) {
	if r.Students == nil {
		return
	}
	student, err := r.Students.GetByID(ctx, record.StudentID)
	if err != nil {
		return
	}
	record.StudentNo = student.StudentNo
	record.StudentName = student.FullName
}

func matchesQuery(record Record, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(record.StudentNo), q) ||
		strings.Contains(strings.ToLower(record.StudentName), q)
}
