package models

import "time"

// GenerateRequest is the body of a generation request.
type GenerateRequest struct {
	UserDescription string `json:"user_description"`
}

// EditRequest is the body of a frame edit request.
type EditRequest struct {
	SessionID         string `json:"session_id"`
	FrameNumber       int    `json:"frame_number"`
	EditInstructions  string `json:"edit_instructions"`
	StoryboardContext string `json:"storyboard_context"`
}

// EditResponse is the service's answer to an [EditRequest].
type EditResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	FrameNumber    int    `json:"frame_number,omitempty"`
	ImagePath      string `json:"image_path,omitempty"`
	PDFRegenerated bool   `json:"pdf_regenerated,omitempty"`
}

// Health is the body of the service health endpoint.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}

// Healthy reports whether the service described itself as healthy.
func (h Health) Healthy() bool {
	return h.Status == "healthy"
}

// JobStatus is the final status of a recorded job.
type JobStatus string

const (
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// JobRecord is one finished generation job as kept in the history database.
type JobRecord struct {
	ID              string     `json:"id"`
	Sequence        int64      `json:"sequence"`
	Description     string     `json:"description"`
	SessionID       string     `json:"session_id,omitempty"`
	TotalFrames     int        `json:"total_frames"`
	Status          JobStatus  `json:"status"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	SessionStrategy string     `json:"session_strategy,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

// EditRecord is one submitted frame edit as kept in the history database.
type EditRecord struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"session_id"`
	FrameNumber  int       `json:"frame_number"`
	Instructions string    `json:"instructions"`
	Success      bool      `json:"success"`
	Message      string    `json:"message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// StoryboardSummary describes a finished storyboard for display or export.
type StoryboardSummary struct {
	SessionID       string      `json:"session_id"`
	Description     string      `json:"description"`
	TotalFrames     int         `json:"total_frames"`
	SessionStrategy string      `json:"session_strategy,omitempty"`
	ArtifactURL     string      `json:"artifact_url"`
	Frames          []FrameCard `json:"frames"`
}

// ArtifactResult is the outcome of downloading one artifact.
type ArtifactResult struct {
	Path    string `json:"path"`
	File    string `json:"file,omitempty"`
	Bytes   int64  `json:"bytes"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DownloadResult summarizes an artifact download.
type DownloadResult struct {
	SessionID       string           `json:"session_id"`
	OutputDirectory string           `json:"output_directory"`
	Total           int              `json:"total"`
	Succeeded       int              `json:"succeeded"`
	Failed          int              `json:"failed"`
	Artifacts       []ArtifactResult `json:"artifacts"`
	ManifestPath    string           `json:"-"`
	CreatedAt       time.Time        `json:"created_at"`
}
