package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenHistory(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func succeeded(desc, session string) *models.JobRecord {
	return &models.JobRecord{
		Description:     desc,
		SessionID:       session,
		TotalFrames:     4,
		Status:          models.JobSucceeded,
		SessionStrategy: "explicit",
	}
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := NextSequence(ctx, db, "jobs")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(ctx, db, "missing"); err == nil {
		t.Error("expected error for unknown sequence table")
	}
}

func TestJobRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		repo := NewJobRepository(setupTestDB(t))
		job := succeeded("a cat chases a mouse", "abc")

		if err := repo.Create(ctx, job); err != nil {
			t.Fatalf("failed to create job: %v", err)
		}
		if job.ID == "" || job.Sequence != 1 || job.CreatedAt.IsZero() {
			t.Errorf("create should fill id, sequence and timestamps: %+v", job)
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewJobRepository(setupTestDB(t))
		job := succeeded("a cat", "abc")
		if err := repo.Create(ctx, job); err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		got, err := repo.Get(ctx, job.ID)
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}
		if got.Description != "a cat" || got.SessionID != "abc" || got.TotalFrames != 4 || got.Status != models.JobSucceeded {
			t.Errorf("unexpected job %+v", got)
		}
		if got.ErrorMessage != "" || got.DeletedAt != nil {
			t.Errorf("nullable columns should scan empty: %+v", got)
		}
	})

	t.Run("Failed Job Without Session", func(t *testing.T) {
		repo := NewJobRepository(setupTestDB(t))
		job := &models.JobRecord{Description: "a cat", Status: models.JobFailed, ErrorMessage: "Failed to generate storyboard"}
		if err := repo.Create(ctx, job); err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		got, err := repo.Get(ctx, job.ID)
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}
		if got.SessionID != "" || got.ErrorMessage != "Failed to generate storyboard" {
			t.Errorf("unexpected job %+v", got)
		}
	})

	t.Run("GetBySession Returns Latest", func(t *testing.T) {
		repo := NewJobRepository(setupTestDB(t))
		_ = repo.Create(ctx, succeeded("first", "abc"))
		_ = repo.Create(ctx, succeeded("second", "abc"))
		_ = repo.Create(ctx, succeeded("other", "def"))

		got, err := repo.GetBySession(ctx, "abc")
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}
		if got.Description != "second" {
			t.Errorf("expected latest job, got %q", got.Description)
		}

		if _, err := repo.GetBySession(ctx, "zzz"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewJobRepository(setupTestDB(t))
		job := succeeded("a cat", "abc")
		_ = repo.Create(ctx, job)

		if err := repo.Delete(ctx, job.ID); err != nil {
			t.Fatalf("failed to delete job: %v", err)
		}
		if _, err := repo.Get(ctx, job.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound for deleted job, got %v", err)
		}
		if err := repo.Delete(ctx, job.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewJobRepository(setupTestDB(t))
		_ = repo.Create(ctx, succeeded("one", "a1"))
		_ = repo.Create(ctx, &models.JobRecord{Description: "two", Status: models.JobFailed, ErrorMessage: "boom"})
		three := succeeded("three", "a3")
		_ = repo.Create(ctx, three)
		_ = repo.Delete(ctx, three.ID)
		_ = repo.Create(ctx, succeeded("four", "a4"))

		all, err := repo.List(ctx, 0, "")
		if err != nil {
			t.Fatalf("failed to list jobs: %v", err)
		}
		if len(all) != 3 || all[0].Description != "four" || all[2].Description != "one" {
			t.Errorf("expected newest first without deleted jobs, got %+v", all)
		}

		limited, _ := repo.List(ctx, 1, "")
		if len(limited) != 1 || limited[0].Description != "four" {
			t.Errorf("unexpected limited list %+v", limited)
		}

		failed, _ := repo.List(ctx, 0, models.JobFailed)
		if len(failed) != 1 || failed[0].ErrorMessage != "boom" {
			t.Errorf("unexpected failed list %+v", failed)
		}
	})

	t.Run("Validation", func(t *testing.T) {
		repo := NewJobRepository(setupTestDB(t))
		tests := []struct {
			name string
			job  *models.JobRecord
		}{
			{"empty description", &models.JobRecord{Description: " ", Status: models.JobFailed}},
			{"unknown status", &models.JobRecord{Description: "a", Status: "pending"}},
			{"success without session", &models.JobRecord{Description: "a", Status: models.JobSucceeded}},
			{"negative frames", &models.JobRecord{Description: "a", Status: models.JobFailed, TotalFrames: -1}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if err := repo.Create(ctx, tt.job); !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
			})
		}

		if seq, _ := NextSequence(ctx, repo.db, "jobs"); seq != 1 {
			t.Errorf("invalid jobs should not consume sequence numbers, next is %d", seq)
		}
	})
}

func TestEditRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create And List", func(t *testing.T) {
		repo := NewEditRepository(setupTestDB(t))
		first := &models.EditRecord{SessionID: "abc", FrameNumber: 2, Instructions: "make it night", Success: true, Message: "Frame 2 edited successfully!"}
		second := &models.EditRecord{SessionID: "abc", FrameNumber: 1, Instructions: "add rain", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}

		if err := repo.Create(ctx, first); err != nil {
			t.Fatalf("failed to create edit: %v", err)
		}
		if err := repo.Create(ctx, second); err != nil {
			t.Fatalf("failed to create edit: %v", err)
		}
		_ = repo.Create(ctx, &models.EditRecord{SessionID: "def", FrameNumber: 1})

		if first.ID == 0 || second.ID <= first.ID {
			t.Errorf("ids should increase: %d %d", first.ID, second.ID)
		}

		edits, err := repo.ListBySession(ctx, "abc")
		if err != nil {
			t.Fatalf("failed to list edits: %v", err)
		}
		if len(edits) != 2 {
			t.Fatalf("expected 2 edits, got %d", len(edits))
		}
		if !edits[0].Success || edits[0].FrameNumber != 2 || edits[0].Message != "Frame 2 edited successfully!" {
			t.Errorf("unexpected first edit %+v", edits[0])
		}
		if edits[1].Success || edits[1].Message != "" {
			t.Errorf("unexpected second edit %+v", edits[1])
		}
	})

	t.Run("Validation", func(t *testing.T) {
		repo := NewEditRepository(setupTestDB(t))
		if err := repo.Create(ctx, &models.EditRecord{FrameNumber: 1}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for missing session, got %v", err)
		}
		if err := repo.Create(ctx, &models.EditRecord{SessionID: "abc"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for frame 0, got %v", err)
		}
	})
}

func TestHistoryRecorder(t *testing.T) {
	ctx := context.Background()
	h := NewHistoryRecorder(setupTestDB(t))

	if err := h.RecordJob(ctx, *succeeded("a cat chases a mouse", "abc")); err != nil {
		t.Fatalf("RecordJob failed: %v", err)
	}
	if err := h.RecordEdit(ctx, models.EditRecord{SessionID: "abc", FrameNumber: 1, Instructions: "add rain", Success: true}); err != nil {
		t.Fatalf("RecordEdit failed: %v", err)
	}

	got, err := h.StoryboardContext(ctx, "abc")
	if err != nil || got != "a cat chases a mouse" {
		t.Errorf("StoryboardContext = %q, %v", got, err)
	}
	if _, err := h.StoryboardContext(ctx, "zzz"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := h.RecordJob(ctx, models.JobRecord{}); err == nil {
		t.Error("expected validation error")
	}
}
