package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/matda59/video-to-mp3-converter/internal/models"
)

// ErrNotFound is returned when the requested history row does not exist.
var ErrNotFound = errors.New("history: not found")

// HistoryRepository is the data access layer for the conversion history.
// Every call runs as its own statement or transaction; the driver serializes
// concurrent writers.
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Insert writes a new history row and returns the assigned job id.
func (r *HistoryRepository) Insert(ctx context.Context, original, converted, status string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO history (original_file, converted_file, status, created_at) VALUES (?, ?, ?, ?)`,
		original, converted, status, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateStatus sets the status for the given job and reports whether a row
// was updated. Absent ids update nothing and return false.
func (r *HistoryRepository) UpdateStatus(ctx context.Context, id int64, status string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE history SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetByID returns the row for id, or nil if absent.
func (r *HistoryRepository) GetByID(ctx context.Context, id int64) (*models.ConversionJob, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, original_file, converted_file, status, created_at FROM history WHERE id = ?`, id)

	var job models.ConversionJob
	err := row.Scan(&job.ID, &job.OriginalFile, &job.ConvertedFile, &job.Status, &job.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ListAll returns every history row, newest first.
func (r *HistoryRepository) ListAll(ctx context.Context) ([]models.ConversionJob, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, original_file, converted_file, status, created_at FROM history ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []models.ConversionJob
	for rows.Next() {
		var job models.ConversionJob
		if err := rows.Scan(&job.ID, &job.OriginalFile, &job.ConvertedFile, &job.Status, &job.CreatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Delete removes the row for id and returns its converted_file so the caller
// can unlink the artifact. Returns ErrNotFound when the id is absent.
func (r *HistoryRepository) Delete(ctx context.Context, id int64) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var converted string
	err = tx.QueryRowContext(ctx, `SELECT converted_file FROM history WHERE id = ?`, id).Scan(&converted)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id); err != nil {
		return "", err
	}
	return converted, tx.Commit()
}

// MarkOrphans flips rows still in_progress to error and returns how many were
// touched. Called once at startup: their workers died with the previous
// process, so nothing will ever finalize them.
func (r *HistoryRepository) MarkOrphans(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE history SET status = ? WHERE status = ?`,
		models.StatusError, models.StatusInProgress)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
