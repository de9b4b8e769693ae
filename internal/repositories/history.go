package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/paprika/internal/models"
)

// HistoryRecorder implements tasks.JobRecorder and edit.Recorder on top of the history database.
type HistoryRecorder struct {
	Jobs  *JobRepository
	Edits *EditRepository
}

// NewHistoryRecorder creates a recorder backed by db.
func NewHistoryRecorder(db *sql.DB) *HistoryRecorder {
	return &HistoryRecorder{Jobs: NewJobRepository(db), Edits: NewEditRepository(db)}
}

// RecordJob stores a finished job.
func (h *HistoryRecorder) RecordJob(ctx context.Context, rec models.JobRecord) error {
	if err := h.Jobs.Create(ctx, &rec); err != nil {
		return fmt.Errorf("failed to record job: %w", err)
	}
	return nil
}

// RecordEdit stores a submitted edit.
func (h *HistoryRecorder) RecordEdit(ctx context.Context, rec models.EditRecord) error {
	if err := h.Edits.Create(ctx, &rec); err != nil {
		return fmt.Errorf("failed to record edit: %w", err)
	}
	return nil
}

// StoryboardContext returns the description of the job that produced sessionID.
func (h *HistoryRecorder) StoryboardContext(ctx context.Context, sessionID string) (string, error) {
	job, err := h.Jobs.GetBySession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return job.Description, nil
}
