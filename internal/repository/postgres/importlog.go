package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skillang/leadg-crm/internal/domain"
)

// ImportLogRepo tracks drop-folder files through the import queue.
type ImportLogRepo struct{ db *sql.DB }

// NewImportLogRepo creates a Postgres-backed import log repository.
func NewImportLogRepo(db *sql.DB) *ImportLogRepo { return &ImportLogRepo{db: db} }

// Discover registers a newly seen drop-folder file as pending. Returns
// true when the file was not already known.
func (r *ImportLogRepo) Discover(ctx context.Context, key string, size int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO lead_import_log (original_key, status, file_size)
		 VALUES ($1, 'pending', $2)
		 ON CONFLICT (original_key) DO NOTHING`,
		key, size)
	if err != nil {
		return false, fmt.Errorf("discover %s: %w", key, err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

// Claim atomically moves one pending file to processing. Returns false
// when another worker got there first.
func (r *ImportLogRepo) Claim(ctx context.Context, key string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE lead_import_log
		 SET status='processing', retry_count=retry_count+1, started_at=NOW()
		 WHERE original_key=$1 AND status='pending'`,
		key)
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

// NextPending returns up to limit pending keys, smallest files first so
// quick wins drain the queue ahead of big uploads.
func (r *ImportLogRepo) NextPending(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT original_key FROM lead_import_log
		 WHERE status = 'pending'
		 ORDER BY file_size ASC, created_at ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("next pending: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err == nil {
			keys = append(keys, k)
		}
	}
	return keys, rows.Err()
}

// MarkCompleted finalizes a successful import.
func (r *ImportLogRepo) MarkCompleted(ctx context.Context, key, renamedKey string, recordCount, errorCount int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE lead_import_log
		 SET status='completed', renamed_key=$1, record_count=$2, error_count=$3, processed_at=NOW()
		 WHERE original_key=$4`,
		renamedKey, recordCount, errorCount, key)
	if err != nil {
		return fmt.Errorf("mark completed %s: %w", key, err)
	}
	return nil
}

// MarkFailed records a processing failure.
func (r *ImportLogRepo) MarkFailed(ctx context.Context, key, errMsg string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE lead_import_log SET status='failed', error_message=$1 WHERE original_key=$2`,
		errMsg, key)
	if err != nil {
		return fmt.Errorf("mark failed %s: %w", key, err)
	}
	return nil
}

// ResetStuck returns files left in 'processing' by a prior crash to the
// queue, failing out anything past the retry limit.
func (r *ImportLogRepo) ResetStuck(ctx context.Context, maxRetries int) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE lead_import_log SET status='pending'
		 WHERE status='processing' AND retry_count < $1`, maxRetries); err != nil {
		return fmt.Errorf("reset stuck: %w", err)
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE lead_import_log SET status='failed', error_message='max retries exceeded'
		 WHERE status='processing' AND retry_count >= $1`, maxRetries); err != nil {
		return fmt.Errorf("fail stuck: %w", err)
	}
	return nil
}

// List returns recent import jobs, newest first.
func (r *ImportLogRepo) List(ctx context.Context, limit, offset int) ([]domain.ImportJob, int, error) {
	if limit <= 0 {
		limit = 50
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lead_import_log`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count import jobs: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, original_key, COALESCE(renamed_key,''), status, file_size,
		       record_count, error_count, COALESCE(error_message,''), retry_count,
		       started_at, processed_at, created_at
		FROM lead_import_log
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list import jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.ImportJob
	for rows.Next() {
		var j domain.ImportJob
		if err := rows.Scan(&j.ID, &j.OriginalKey, &j.RenamedKey, &j.Status, &j.FileSize,
			&j.RecordCount, &j.ErrorCount, &j.ErrorMessage, &j.RetryCount,
			&j.StartedAt, &j.ProcessedAt, &j.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan import job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, total, rows.Err()
}

// Get returns one import job by id.
func (r *ImportLogRepo) Get(ctx context.Context, id int64) (*domain.ImportJob, error) {
	j := &domain.ImportJob{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, original_key, COALESCE(renamed_key,''), status, file_size,
		       record_count, error_count, COALESCE(error_message,''), retry_count,
		       started_at, processed_at, created_at
		FROM lead_import_log
		WHERE id = $1`, id).Scan(
		&j.ID, &j.OriginalKey, &j.RenamedKey, &j.Status, &j.FileSize,
		&j.RecordCount, &j.ErrorCount, &j.ErrorMessage, &j.RetryCount,
		&j.StartedAt, &j.ProcessedAt, &j.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get import job: %w", err)
	}
	return j, nil
}
