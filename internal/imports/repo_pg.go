package imports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements BatchRepo and FailureLedger using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) CreateBatch(ctx context.Context, batch Batch) error {
	const query = `
INSERT INTO import_batches (id, name, source_file, total_records, success_count, failure_count, status, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		batch.ID,
		batch.Name,
		nullableString(batch.SourceFile),
		batch.TotalRecords,
		batch.SuccessCount,
		batch.FailureCount,
		batch.Status,
		batch.CreatedBy,
	)
	return err
}

func (r *PGRepo) GetBatch(ctx context.Context, batchID string) (Batch, error) {
	const query = `
SELECT id, name, source_file, total_records, success_count, failure_count, status, created_by, created_at, updated_at
FROM import_batches
WHERE id = $1
LIMIT 1`
	return scanBatch(r.DB.QueryRowContext(ctx, query, batchID))
}

func (r *PGRepo) ListBatches(ctx context.Context, limit, offset int) ([]Batch, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, name, source_file, total_records, success_count, failure_count, status, created_by, created_at, updated_at
FROM import_batches
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, 0, err
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM import_batches`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

// FinalizeBatch records the terminal status and final counters. The status
// guard keeps an already-terminal batch immutable.
func (r *PGRepo) FinalizeBatch(ctx context.Context, batchID, status string, successCount, failureCount int) error {
	const query = `
UPDATE import_batches
SET status = $2, success_count = $3, failure_count = $4, updated_at = now()
WHERE id = $1 AND status = $5`
	res, err := r.DB.ExecContext(ctx, query, batchID, status, successCount, failureCount, StatusProcessing)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBatch removes a batch; its row failures go with it via the foreign
// key cascade.
func (r *PGRepo) DeleteBatch(ctx context.Context, batchID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM import_batches WHERE id = $1`, batchID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Record(ctx context.Context, failure RowFailure) error {
	const query = `
INSERT INTO import_row_failures (id, batch_id, row_number, raw_row, student_no, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now())`
	rawRow, err := marshalRow(failure.RawRow)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		failure.ID,
		failure.BatchID,
		failure.RowNumber,
		rawRow,
		failure.StudentNo,
		failure.Message,
	)
	return err
}

func (r *PGRepo) ListByBatch(ctx context.Context, batchID string) ([]RowFailure, error) {
	const query = `
SELECT id, batch_id, row_number, raw_row, student_no, message, created_at
FROM import_row_failures
WHERE batch_id = $1
ORDER BY row_number`
	rows, err := r.DB.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failures []RowFailure
	for rows.Next() {
		var failure RowFailure
		var rawRow sql.NullString
		var studentNo sql.NullString
		if err := rows.Scan(
			&failure.ID,
			&failure.BatchID,
			&failure.RowNumber,
			&rawRow,
			&studentNo,
			&failure.Message,
			&failure.CreatedAt,
		); err != nil {
			return nil, err
		}
		if rawRow.Valid && rawRow.String != "" {
			if err := json.Unmarshal([]byte(rawRow.String), &failure.RawRow); err != nil {
				return nil, err
			}
		}
		if studentNo.Valid {
			failure.StudentNo = &studentNo.String
		}
		failures = append(failures, failure)
	}
	return failures, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (Batch, error) {
	var batch Batch
	var sourceFile sql.NullString
	var createdBy sql.NullString
	err := row.Scan(
		&batch.ID,
		&batch.Name,
		&sourceFile,
		&batch.TotalRecords,
		&batch.SuccessCount,
		&batch.FailureCount,
		&batch.Status,
		&createdBy,
		&batch.CreatedAt,
		&batch.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Batch{}, ErrNotFound
		}
		return Batch{}, err
	}
	if sourceFile.Valid {
		batch.SourceFile = sourceFile.String
	}
	if createdBy.Valid {
		batch.CreatedBy = &createdBy.String
	}
	return batch, nil
}

func marshalRow(row Row) (any, error) {
	if row == nil {
		return nil, nil
	}
	data, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
