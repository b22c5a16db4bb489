package students

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRepoLookupByStudentNo(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Add(Student{ID: "stu-1", StudentNo: "2021001", FullName: "Alice Zhang"})

	student, err := repo.LookupByStudentNo(context.Background(), "2021001")
	if err != nil {
		t.Fatalf("LookupByStudentNo: %v", err)
	}
	if student.ID != "stu-1" {
		t.Fatalf("id = %s", student.ID)
	}
}

func TestMemoryRepoLookupIsCaseSensitive(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Add(Student{ID: "stu-1", StudentNo: "A2021001", FullName: "Alice Zhang"})

	if _, err := repo.LookupByStudentNo(context.Background(), "a2021001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestMemoryRepoLookupNotFound(t *testing.T) {
	repo := NewMemoryRepo()
	if _, err := repo.LookupByStudentNo(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}
