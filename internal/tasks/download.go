package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/paprika/internal/formatter"
	"github.com/desertthunder/paprika/internal/gallery"
	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/shared"
	"golang.org/x/time/rate"
)

// DownloadOpts contains configuration for artifact downloads.
type DownloadOpts struct {
	OutputDir  string  // Target directory (default: storyboard_{session})
	NumWorkers int     // Concurrent workers (default: 4, max: 10)
	RateLimit  float64 // Requests per second (default: 5)
}

type downloadJob struct {
	index int
	path  string
}

// Download fetches every frame image and the storyboard document of a session concurrently with
// rate limiting and progress tracking, then writes a manifest.json summarizing the results.
//
// Individual artifact failures are recorded in the result and do not stop the download.
func (e *GenerationEngine) Download(
	ctx context.Context,
	sessionID string,
	totalFrames int,
	opts DownloadOpts,
	prog chan<- ProgressUpdate,
) (*models.DownloadResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", shared.ErrMissingArgument)
	}
	if totalFrames < 0 {
		return nil, fmt.Errorf("%w: frame count must not be negative", shared.ErrInvalidArgument)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = "storyboard_" + sessionID
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := e.artifactPaths(sessionID, totalFrames)
	result := &models.DownloadResult{
		SessionID:       sessionID,
		OutputDirectory: opts.OutputDir,
		Total:           len(paths),
		Artifacts:       make([]models.ArtifactResult, len(paths)),
		CreatedAt:       time.Now().UTC(),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan downloadJob, len(paths))
	results := make(chan downloadJob, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.downloadWorker(ctx, &wg, limiter, jobs, results, result.Artifacts, opts.OutputDir)
	}

	for i, p := range paths {
		result.Artifacts[i] = models.ArtifactResult{Path: p, Error: "not attempted"}
		jobs <- downloadJob{index: i, path: p}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for job := range results {
		completed++
		res := result.Artifacts[job.index]
		if res.Success {
			result.Succeeded++
		}
		e.sendProgress(prog, downloadUpdate(completed, len(paths), res))
	}
	result.Failed = result.Total - result.Succeeded

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "manifest.json")
	e.sendProgress(prog, manifestUpdate(manifestPath))
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("download completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	e.logger.Info("download finished", "session", sessionID, "succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}

// artifactPaths lists frame images in order followed by the storyboard document.
func (e *GenerationEngine) artifactPaths(sessionID string, totalFrames int) []string {
	root := e.outputRoot
	paths := make([]string, 0, totalFrames+1)
	for n := 1; n <= totalFrames; n++ {
		paths = append(paths, gallery.FramePath(root, sessionID, n))
	}
	return append(paths, gallery.ArtifactPath(root, sessionID, e.artifactName))
}

// downloadWorker fetches artifacts from the jobs channel. Each worker writes only its own slots of out.
func (e *GenerationEngine) downloadWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan downloadJob,
	results chan<- downloadJob,
	out []models.ArtifactResult,
	dir string,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			out[job.index].Error = ctx.Err().Error()
			results <- job
			continue
		default:
		}

		if err := limiter.Wait(ctx); err != nil {
			out[job.index].Error = err.Error()
			results <- job
			continue
		}

		out[job.index] = e.downloadOne(ctx, job.path, dir)
		results <- job
	}
}

func (e *GenerationEngine) downloadOne(ctx context.Context, artifact, dir string) models.ArtifactResult {
	res := models.ArtifactResult{Path: artifact}

	body, err := e.svc.Fetch(ctx, artifact)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer body.Close()

	target := filepath.Join(dir, path.Base(artifact))
	f, err := os.Create(target)
	if err != nil {
		res.Error = fmt.Sprintf("failed to create file: %v", err)
		return res
	}

	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(target)
		res.Error = fmt.Sprintf("failed to write file: %v", err)
		return res
	}

	res.File = target
	res.Bytes = n
	res.Success = true
	return res
}
