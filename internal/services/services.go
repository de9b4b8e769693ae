// package services defines interface Service for interacting with the storyboard service
package services

import (
	"context"
	"io"

	"github.com/desertthunder/paprika/internal/models"
)

// Service defines the operations the client needs from a storyboard backend.
type Service interface {
	// Generate starts a job for description and returns the progress stream body.
	// The caller must close the returned reader.
	Generate(ctx context.Context, description string) (io.ReadCloser, error)

	// EditFrame asks the service to re-render one frame of a session.
	// A response with Success false is returned without error.
	EditFrame(ctx context.Context, req models.EditRequest) (*models.EditResponse, error)

	// Health reports the service status.
	Health(ctx context.Context) (*models.Health, error)

	// Fetch opens an artifact by its server path (e.g. /output/{session}/frame_001.png).
	Fetch(ctx context.Context, path string) (io.ReadCloser, error)

	// ArtifactURL returns the absolute URL of an artifact path.
	ArtifactURL(path string) string

	// Name returns a short description of the backend.
	Name() string
}
