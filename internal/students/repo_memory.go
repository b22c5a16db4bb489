package students

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory roster used when no database is configured and
// in tests.
type MemoryRepo struct {
	mu          sync.RWMutex
	byID        map[string]Student
	byStudentNo map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:        make(map[string]Student),
		byStudentNo: make(map[string]string),
	}
}

// Add seeds a roster entry.
func (r *MemoryRepo) Add(student Student) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	r.byID[student.ID] = student
	r.byStudentNo[student.StudentNo] = student.ID
}

func (r *MemoryRepo) LookupByStudentNo(ctx context.Context, studentNo string) (Student, error) {
	if err := ctx.Err(); err != nil {
		return Student{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byStudentNo[studentNo]
	if !ok {
		return Student{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, studentID string) (Student, error) {
	if err := ctx.Err(); err != nil {
		return Student{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	student, ok := r.byID[studentID]
	if !ok {
		return Student{}, ErrNotFound
	}
	return student, nil
}
