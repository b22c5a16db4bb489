package students

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "student not found" }

// Repo defines read access to the student roster. LookupByStudentNo matches
// the external student number case-sensitively against the canonical roster
// field.
type Repo interface {
	LookupByStudentNo(ctx context.Context, studentNo string) (Student, error)
	GetByID(ctx context.Context, studentID string) (Student, error)
}
