package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/paprika/internal/gallery"
	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/progress"
	"github.com/desertthunder/paprika/internal/services"
	"github.com/desertthunder/paprika/internal/session"
	"github.com/desertthunder/paprika/internal/shared"
	"github.com/desertthunder/paprika/internal/stream"
)

// MsgStreamLost is the failure reported when the stream ends without a terminal event.
const MsgStreamLost = "Connection to storyboard service lost before the storyboard finished"

// MsgStartFailed is the failure reported when a job could not be started.
const MsgStartFailed = "Failed to start generation"

// Toast texts for finished jobs.
const (
	MsgGenerated      = "Storyboard generated successfully!"
	MsgGenerateFailed = "Failed to generate storyboard"
)

// Notice returns the toast for a finished [Engine.Run] call.
func Notice(err error) models.Notice {
	switch {
	case err == nil:
		return models.Notice{Level: models.NoticeSuccess, Message: MsgGenerated}
	case errors.Is(err, shared.ErrGenerationInFlight):
		return models.Notice{Level: models.NoticeInfo, Message: "A storyboard is already being generated"}
	case errors.Is(err, shared.ErrInvalidInput):
		return models.Notice{Level: models.NoticeError, Message: "Please describe your storyboard"}
	default:
		return models.Notice{Level: models.NoticeError, Message: MsgGenerateFailed}
	}
}

// GenerationResult contains everything known about a finished job.
type GenerationResult struct {
	Description string // Trimmed job input, kept as the storyboard context
	SessionID   string // Resolved session (empty on failure)
	Strategy    session.Strategy
	TotalFrames int
	State       progress.State // Final progress snapshot
}

// Succeeded reports whether the job produced a storyboard.
func (r *GenerationResult) Succeeded() bool {
	return r != nil && r.State.Outcome == progress.Succeeded && r.SessionID != ""
}

// Engine defines the storyboard operations.
type Engine interface {
	// Run submits description, follows the progress stream, and populates the gallery on success.
	Run(ctx context.Context, description string, progress chan<- ProgressUpdate) (*GenerationResult, error)

	// Download fetches every frame and the storyboard document of a session into a local directory.
	Download(ctx context.Context, sessionID string, totalFrames int, opts DownloadOpts, progress chan<- ProgressUpdate) (*models.DownloadResult, error)
}

// JobRecorder persists finished jobs. Recording is best effort; errors are logged only.
type JobRecorder interface {
	RecordJob(ctx context.Context, rec models.JobRecord) error
}

// GenerationEngine implements [Engine].
// Contains dependencies on the storyboard service, the process job state and the frame gallery.
type GenerationEngine struct {
	svc       services.Service
	state     *models.JobState
	gallery   *gallery.Gallery
	resolver  *session.Resolver
	labels    []string
	firstStep int
	logger    *log.Logger
	recorder  JobRecorder

	outputRoot   string
	artifactName string
}

// NewGenerationEngine creates an engine. cfg supplies step labels and artifact naming.
func NewGenerationEngine(svc services.Service, state *models.JobState, g *gallery.Gallery, cfg *shared.Config, logger *log.Logger) *GenerationEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &GenerationEngine{
		svc:       svc,
		state:     state,
		gallery:   g,
		resolver:  session.NewResolver(cfg.Service.ArtifactName, logger),
		labels:    cfg.Progress.Labels,
		firstStep: cfg.Progress.FirstStep,
		logger:    logger,

		outputRoot:   cfg.Service.OutputRoot,
		artifactName: cfg.Service.ArtifactName,
	}
}

// SetRecorder enables job history. A nil recorder disables it.
func (e *GenerationEngine) SetRecorder(r JobRecorder) {
	e.recorder = r
}

// Resolver returns the session resolver, e.g. to inspect its fallback count.
func (e *GenerationEngine) Resolver() *session.Resolver {
	return e.resolver
}

// NewJob clears the session, storyboard context, frame cards and selection left by the previous
// job. It is refused while a job is in flight.
func (e *GenerationEngine) NewJob() error {
	if e.state.Generating.Active() {
		return shared.ErrGenerationInFlight
	}
	e.state.Reset()
	e.gallery.Reset()
	return nil
}

// Initial returns the progress state shown before a job starts.
func (e *GenerationEngine) Initial() progress.State {
	return progress.New(e.labels, e.firstStep)
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *GenerationEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run performs a full generation job.
//
// Only one job runs at a time per [models.JobState]; a second call while a job is in flight
// returns [shared.ErrGenerationInFlight] without touching any state. Progress made before a
// failure stays in the returned result.
func (e *GenerationEngine) Run(ctx context.Context, description string, prog chan<- ProgressUpdate) (*GenerationResult, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is empty", shared.ErrInvalidInput)
	}
	if !e.state.Generating.TryAcquire() {
		return nil, shared.ErrGenerationInFlight
	}
	defer e.state.Generating.Release()

	e.state.Reset()
	e.gallery.Reset()

	result := &GenerationResult{Description: description, State: e.Initial()}
	logger := e.logger.With("job", shared.GenerateID()[:8])
	logger.Info("starting storyboard generation", "description_len", len(description))
	e.sendProgress(prog, submitUpdate(result.State))

	body, err := e.svc.Generate(ctx, description)
	if err != nil {
		logger.Error("failed to start generation", "err", err)
		result.State = progress.Fail(result.State, MsgStartFailed)
		return e.finish(ctx, result, prog, fmt.Errorf("%w: %w", shared.ErrJobFailed, err))
	}
	defer body.Close()

	reader := stream.NewEventReader(body, logger)
	for !result.State.Done() {
		ev, err := reader.ReadEvent()
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Warn("stream ended without a terminal event")
			} else {
				logger.Error("stream read failed", "err", err)
			}
			result.State = progress.Fail(result.State, MsgStreamLost)
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			return e.finish(ctx, result, prog, fmt.Errorf("%w: %w", shared.ErrTransport, err))
		}

		result.State = progress.Reduce(result.State, ev)
		e.state.Observe(result.State.CurrentStep, result.State.TotalFrames, result.State.CurrentFrame)
		logger.Debug("stream event", "type", ev.Type(), "step", result.State.CurrentStep, "message", result.State.Message)

		if !ev.Type().IsTerminal() {
			e.sendProgress(prog, eventUpdate(ev, result.State))
		}
	}

	if result.State.Outcome == progress.Failed {
		logger.Error("storyboard generation failed", "message", result.State.Err)
		return e.finish(ctx, result, prog, fmt.Errorf("%w: %s", shared.ErrJobFailed, result.State.Err))
	}

	complete := *result.State.Result
	res, err := e.resolver.Resolve(complete)
	if err != nil {
		result.State.Outcome = progress.Failed
		result.State.Err = err.Error()
		return e.finish(ctx, result, prog, err)
	}

	frames := max(complete.TotalFrames, result.State.TotalFrames)
	result.SessionID = res.SessionID
	result.Strategy = res.Strategy
	result.TotalFrames = frames

	e.state.Resolve(res.SessionID, description)
	e.gallery.Populate(frames, res.SessionID)
	logger.Info("storyboard generated", "session", res.SessionID, "strategy", res.Strategy, "frames", frames)

	e.sendProgress(prog, resolveUpdate(result.State, res.SessionID, frames))
	e.sendProgress(prog, eventUpdate(complete, result.State))
	return e.finish(ctx, result, prog, nil)
}

// finish records the job and reports failures on the progress channel.
func (e *GenerationEngine) finish(ctx context.Context, result *GenerationResult, prog chan<- ProgressUpdate, err error) (*GenerationResult, error) {
	if err != nil {
		e.sendProgress(prog, failedUpdate(result.State))
	}

	if e.recorder != nil {
		rec := models.JobRecord{
			Description:     result.Description,
			SessionID:       result.SessionID,
			TotalFrames:     max(result.TotalFrames, result.State.TotalFrames),
			Status:          models.JobSucceeded,
			SessionStrategy: string(result.Strategy),
		}
		if err != nil {
			rec.Status = models.JobFailed
			rec.ErrorMessage = result.State.Err
		}
		if rerr := e.recorder.RecordJob(context.WithoutCancel(ctx), rec); rerr != nil {
			e.logger.Warn("failed to record job", "err", rerr)
		}
	}
	return result, err
}

// Summary describes a successful result with absolute artifact URLs.
func (e *GenerationEngine) Summary(result *GenerationResult) models.StoryboardSummary {
	cards := e.gallery.Cards()
	for i := range cards {
		cards[i].ImagePath = e.svc.ArtifactURL(cards[i].ImagePath)
	}
	return models.StoryboardSummary{
		SessionID:       result.SessionID,
		Description:     result.Description,
		TotalFrames:     result.TotalFrames,
		SessionStrategy: string(result.Strategy),
		ArtifactURL:     e.svc.ArtifactURL(e.gallery.ArtifactLink()),
		Frames:          cards,
	}
}
