package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/shared"
)

// EditRepository persists frame edits. Edits are append-only.
type EditRepository struct {
	db *sql.DB
}

// NewEditRepository creates a new EditRepository with the given database connection
func NewEditRepository(db *sql.DB) *EditRepository {
	return &EditRepository{db: db}
}

// Create inserts an edit and sets its ID.
func (r *EditRepository) Create(ctx context.Context, edit *models.EditRecord) error {
	switch {
	case edit.SessionID == "":
		return fmt.Errorf("validation failed: %w: session id is required", shared.ErrInvalidInput)
	case edit.FrameNumber < 1:
		return fmt.Errorf("validation failed: %w: frame number must be positive", shared.ErrInvalidInput)
	}

	if edit.CreatedAt.IsZero() {
		edit.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO job_edits (session_id, frame_number, instructions, success, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		edit.SessionID,
		edit.FrameNumber,
		edit.Instructions,
		edit.Success,
		nullable(edit.Message),
		edit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert edit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get edit id: %w", err)
	}
	edit.ID = id

	return nil
}

// ListBySession returns the edits of a session in submission order.
func (r *EditRepository) ListBySession(ctx context.Context, sessionID string) ([]models.EditRecord, error) {
	query := `
		SELECT id, session_id, frame_number, instructions, success, message, created_at
		FROM job_edits
		WHERE session_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query edits: %w", err)
	}
	defer rows.Close()

	var edits []models.EditRecord
	for rows.Next() {
		var (
			e   models.EditRecord
			msg sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.FrameNumber, &e.Instructions, &e.Success, &msg, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan edit: %w", err)
		}
		e.Message = msg.String
		edits = append(edits, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return edits, nil
}
