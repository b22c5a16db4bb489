package destinations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const recordColumns = `id, student_id, destination_type, employer, position, salary, work_location,
       school_name, major, degree_level, country, venture_name, founder_role, description,
       status, review_comment, reviewed_by, reviewed_at, submitted_at, batch_id, created_at, updated_at`

// Upsert inserts or fully replaces the record for a student in one statement.
// The conflict target is the unique student_id key, so two submissions for
// the same student can never produce two rows, and the later write wins.
func (r *PGRepo) Upsert(ctx context.Context, record Record) (Record, error) {
	const query = `
INSERT INTO destination_records (
	id, student_id, destination_type, employer, position, salary, work_location,
	school_name, major, degree_level, country, venture_name, founder_role, description,
	status, batch_id, submitted_at, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now(), now())
ON CONFLICT (student_id) DO UPDATE SET
  destination_type = EXCLUDED.destination_type,
  employer = EXCLUDED.employer,
  position = EXCLUDED.position,
  salary = EXCLUDED.salary,
  work_location = EXCLUDED.work_location,
  school_name = EXCLUDED.school_name,
  major = EXCLUDED.major,
  degree_level = EXCLUDED.degree_level,
  country = EXCLUDED.country,
  venture_name = EXCLUDED.venture_name,
  founder_role = EXCLUDED.founder_role,
  description = EXCLUDED.description,
  status = EXCLUDED.status,
  review_comment = NULL,
  reviewed_by = NULL,
  reviewed_at = NULL,
  batch_id = EXCLUDED.batch_id,
  submitted_at = EXCLUDED.submitted_at,
  updated_at = now()
RETURNING ` + recordColumns
	row := r.DB.QueryRowContext(ctx, query,
		record.ID,
		record.StudentID,
		record.DestinationType,
		nullableString(record.Payload.Employer),
		nullableString(record.Payload.Position),
		record.Payload.Salary,
		nullableString(record.Payload.WorkLocation),
		nullableString(record.Payload.SchoolName),
		nullableString(record.Payload.Major),
		nullableString(record.Payload.DegreeLevel),
		nullableString(record.Payload.Country),
		nullableString(record.Payload.VentureName),
		nullableString(record.Payload.FounderRole),
		nullableString(record.Payload.Description),
		StatusPending,
		record.BatchID,
		record.SubmittedAt,
	)
	return scanRecord(row, false)
}

func (r *PGRepo) GetByID(ctx context.Context, recordID string) (Record, error) {
	const query = `
SELECT r.id, r.student_id, s.student_no, s.full_name, r.destination_type,
       r.employer, r.position, r.salary, r.work_location,
       r.school_name, r.major, r.degree_level, r.country,
       r.venture_name, r.founder_role, r.description,
       r.status, r.review_comment, r.reviewed_by, r.reviewed_at,
       r.submitted_at, r.batch_id, r.created_at, r.updated_at
FROM destination_records r
JOIN students s ON s.id = r.student_id
WHERE r.id = $1
LIMIT 1`
	return scanRecord(r.DB.QueryRowContext(ctx, query, recordID), true)
}

// Review applies a pending -> decision transition. The status guard lives in
// the WHERE clause so a concurrent reviewer cannot double-apply a decision.
func (r *PGRepo) Review(ctx context.Context, recordID, decision string, reviewer *string, comment *string, reviewedAt time.Time) (Record, error) {
	const query = `
UPDATE destination_records
SET status = $2, reviewed_by = $3, review_comment = $4, reviewed_at = $5, updated_at = now()
WHERE id = $1 AND status = $6
RETURNING ` + recordColumns
	row := r.DB.QueryRowContext(ctx, query, recordID, decision, reviewer, comment, reviewedAt, StatusPending)
	record, err := scanRecord(row, false)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Record{}, err
	}
	// No pending row matched: distinguish a missing record from a terminal one.
	var status string
	statusErr := r.DB.QueryRowContext(ctx, `SELECT status FROM destination_records WHERE id = $1`, recordID).Scan(&status)
	if errors.Is(statusErr, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if statusErr != nil {
		return Record{}, statusErr
	}
	return Record{}, fmt.Errorf("%w: record is %s", ErrInvalidTransition, status)
}

func (r *PGRepo) Delete(ctx context.Context, recordID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM destination_records WHERE id = $1`, recordID)
	return err
}

// BulkDelete removes exactly the given ids; ids with no matching record are
// ignored. Returns the number of rows actually deleted.
func (r *PGRepo) BulkDelete(ctx context.Context, recordIDs []string) (int64, error) {
	if len(recordIDs) == 0 {
		return 0, nil
	}
	query, args, err := psql.Delete("destination_records").
		Where(sq.Eq{"id": recordIDs}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build bulk delete: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// List returns a filtered page of records plus the total count for the same
// filters, newest submissions first.
func (r *PGRepo) List(ctx context.Context, filter ListFilter) ([]Record, int, error) {
	base := psql.Select(
		"r.id", "r.student_id", "s.student_no", "s.full_name", "r.destination_type",
		"r.employer", "r.position", "r.salary", "r.work_location",
		"r.school_name", "r.major", "r.degree_level", "r.country",
		"r.venture_name", "r.founder_role", "r.description",
		"r.status", "r.review_comment", "r.reviewed_by", "r.reviewed_at",
		"r.submitted_at", "r.batch_id", "r.created_at", "r.updated_at",
	).
		From("destination_records r").
		Join("students s ON s.id = r.student_id")

	base = applyFilter(base, filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query, args, err := base.
		OrderBy("r.submitted_at DESC", "r.id").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows, true)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := applyFilter(
		psql.Select("COUNT(*)").
			From("destination_records r").
			Join("students s ON s.id = r.student_id"),
		filter,
	).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func applyFilter(builder sq.SelectBuilder, filter ListFilter) sq.SelectBuilder {
	if filter.DestinationType != "" {
		builder = builder.Where(sq.Eq{"r.destination_type": filter.DestinationType})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"r.status": filter.Status})
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"s.student_no": pattern},
			sq.ILike{"s.full_name": pattern},
		})
	}
	return builder
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner, withStudent bool) (Record, error) {
	var record Record
	var studentNo, fullName sql.NullString
	var employer, position, workLocation sql.NullString
	var schoolName, major, degreeLevel, country sql.NullString
	var ventureName, founderRole, description sql.NullString
	var salary sql.NullFloat64
	var reviewComment, reviewedBy, batchID sql.NullString
	var reviewedAt sql.NullTime

	dest := []any{&record.ID, &record.StudentID}
	if withStudent {
		dest = append(dest, &studentNo, &fullName)
	}
	dest = append(dest,
		&record.DestinationType,
		&employer, &position, &salary, &workLocation,
		&schoolName, &major, &degreeLevel, &country,
		&ventureName, &founderRole, &description,
		&record.Status, &reviewComment, &reviewedBy, &reviewedAt,
		&record.SubmittedAt, &batchID, &record.CreatedAt, &record.UpdatedAt,
	)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}

	record.StudentNo = studentNo.String
	record.StudentName = fullName.String
	record.Payload = Payload{
		Employer:     employer.String,
		Position:     position.String,
		WorkLocation: workLocation.String,
		SchoolName:   schoolName.String,
		Major:        major.String,
		DegreeLevel:  degreeLevel.String,
		Country:      country.String,
		VentureName:  ventureName.String,
		FounderRole:  founderRole.String,
		Description:  description.String,
	}
	if salary.Valid {
		v := salary.Float64
		record.Payload.Salary = &v
	}
	if reviewComment.Valid {
		record.ReviewComment = &reviewComment.String
	}
	if reviewedBy.Valid {
		record.ReviewedBy = &reviewedBy.String
	}
	if reviewedAt.Valid {
		record.ReviewedAt = &reviewedAt.Time
	}
	if batchID.Valid {
		record.BatchID = &batchID.String
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
