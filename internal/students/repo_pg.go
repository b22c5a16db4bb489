package students

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) LookupByStudentNo(ctx context.Context, studentNo string) (Student, error) {
	const query = `
SELECT id, student_no, full_name, class_name, enrollment_year, created_at, updated_at
FROM students
WHERE student_no = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, studentNo))
}

func (r *PGRepo) GetByID(ctx context.Context, studentID string) (Student, error) {
	const query = `
SELECT id, student_no, full_name, class_name, enrollment_year, created_at, updated_at
FROM students
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, studentID))
}

func (r *PGRepo) scanOne(row *sql.Row) (Student, error) {
	var s Student
	var className sql.NullString
	var enrollmentYear sql.NullInt64
	err := row.Scan(
		&s.ID,
		&s.StudentNo,
		&s.FullName,
		&className,
		&enrollmentYear,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, err
	}
	if className.Valid {
		s.ClassName = className.String
	}
	if enrollmentYear.Valid {
		s.EnrollmentYear = int(enrollmentYear.Int64)
	}
	return s, nil
}
