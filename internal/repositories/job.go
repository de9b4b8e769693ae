package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/shared"
)

const jobColumns = `id, sequence, description, session_id, total_frames, status,
	error_message, session_strategy, created_at, updated_at, deleted_at`

// JobRepository persists finished generation jobs.
//
// Handles job CRUD operations with soft delete support and session lookups.
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new JobRepository with the given database connection
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// ValidateJob checks the fields the jobs table requires.
func ValidateJob(job *models.JobRecord) error {
	switch {
	case strings.TrimSpace(job.Description) == "":
		return fmt.Errorf("%w: job description is required", shared.ErrInvalidInput)
	case job.Status != models.JobSucceeded && job.Status != models.JobFailed:
		return fmt.Errorf("%w: unknown job status %q", shared.ErrInvalidInput, job.Status)
	case job.Status == models.JobSucceeded && job.SessionID == "":
		return fmt.Errorf("%w: a successful job needs a session", shared.ErrInvalidInput)
	case job.TotalFrames < 0:
		return fmt.Errorf("%w: frame count must not be negative", shared.ErrInvalidInput)
	}
	return nil
}

// Create inserts a new job with generated ID and sequence. Timestamps default to now.
func (r *JobRepository) Create(ctx context.Context, job *models.JobRecord) error {
	if err := ValidateJob(job); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "jobs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	job.ID = shared.GenerateID()
	job.Sequence = sequence

	query := `
		INSERT INTO jobs (id, sequence, description, session_id, total_frames, status,
			error_message, session_strategy, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		job.ID,
		job.Sequence,
		job.Description,
		nullable(job.SessionID),
		job.TotalFrames,
		string(job.Status),
		nullable(job.ErrorMessage),
		nullable(job.SessionStrategy),
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	return nil
}

// Get retrieves a job by ID, excluding soft-deleted jobs
func (r *JobRepository) Get(ctx context.Context, id string) (*models.JobRecord, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetBySession retrieves the most recent job that produced sessionID.
func (r *JobRepository) GetBySession(ctx context.Context, sessionID string) (*models.JobRecord, error) {
	query := `
		SELECT ` + jobColumns + ` FROM jobs
		WHERE session_id = ? AND deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, sessionID))
}

// Delete soft-deletes a job by ID
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE jobs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: job %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves jobs newest first, excluding soft-deleted jobs.
// A non-positive limit returns every job; a non-empty status filters by outcome.
func (r *JobRepository) List(ctx context.Context, limit int, status models.JobStatus) ([]models.JobRecord, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE deleted_at IS NULL`
	args := []any{}

	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}

	query += " ORDER BY sequence DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.JobRecord
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

// scanOne scans a single [sql.Row] into a [models.JobRecord]
func (r *JobRepository) scanOne(row *sql.Row) (*models.JobRecord, error) {
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job", shared.ErrNotFound)
	}
	return job, err
}

func scanJob(s scanner) (*models.JobRecord, error) {
	var (
		job       models.JobRecord
		sessionID sql.NullString
		status    string
		errMsg    sql.NullString
		strategy  sql.NullString
		deletedAt sql.NullTime
	)

	err := s.Scan(
		&job.ID, &job.Sequence, &job.Description, &sessionID, &job.TotalFrames, &status,
		&errMsg, &strategy, &job.CreatedAt, &job.UpdatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}

	job.Status = models.JobStatus(status)
	job.SessionID = sessionID.String
	job.ErrorMessage = errMsg.String
	job.SessionStrategy = strategy.String
	if deletedAt.Valid {
		job.DeletedAt = &deletedAt.Time
	}

	return &job, nil
}
