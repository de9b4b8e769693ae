package tasks

import (
	"fmt"

	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/progress"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // progress.State for generation phases, models.ArtifactResult for downloads
}

// State returns the progress snapshot carried by a generation update.
func (u ProgressUpdate) State() (progress.State, bool) {
	s, ok := u.Data.(progress.State)
	return s, ok
}

// Operation phase enumeration
type Phase int

const (
	Submit Phase = iota
	StepStarted
	StepProgressed
	StepCompleted
	Succeeded
	Failed
	Resolve
	Download
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case Submit:
		return "submit"
	case StepStarted:
		return "step_start"
	case StepProgressed:
		return "step_progress"
	case StepCompleted:
		return "step_complete"
	case Succeeded:
		return "complete"
	case Failed:
		return "error"
	case Resolve:
		return "resolve_session"
	case Download:
		return "download"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// IsTerminal reports whether no further generation updates follow this phase.
func (p Phase) IsTerminal() bool {
	return p == Succeeded || p == Failed
}

func phaseOf(ev models.Event) Phase {
	switch ev.(type) {
	case models.StepStart:
		return StepStarted
	case models.StepProgress:
		return StepProgressed
	case models.StepComplete:
		return StepCompleted
	case models.Complete:
		return Succeeded
	default:
		return Failed
	}
}

func submitUpdate(s progress.State) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Submit,
		Total:   len(s.Steps),
		Message: "Submitting storyboard request...",
		Data:    s,
	}
}

func eventUpdate(ev models.Event, s progress.State) ProgressUpdate {
	msg := s.Message
	if c, ok := ev.(models.StepComplete); ok {
		// Completion text belongs to the step; the loading message is left as is.
		msg = c.Message
	}
	return ProgressUpdate{
		Phase:   phaseOf(ev),
		Step:    s.CurrentStep,
		Total:   len(s.Steps),
		Message: msg,
		Data:    s,
	}
}

func resolveUpdate(s progress.State, sessionID string, frames int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Resolve,
		Step:    s.CurrentStep,
		Total:   len(s.Steps),
		Message: fmt.Sprintf("Session %s: %d frames generated", sessionID, frames),
		Data:    s,
	}
}

func failedUpdate(s progress.State) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Failed,
		Step:    s.CurrentStep,
		Total:   len(s.Steps),
		Message: s.Err,
		Data:    s,
	}
}

func downloadUpdate(step, total int, res models.ArtifactResult) ProgressUpdate {
	if !res.Success {
		return ProgressUpdate{
			Phase:   Download,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, res.Path, res.Error),
			Data:    res,
		}
	}
	return ProgressUpdate{
		Phase:   Download,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d bytes)", step, total, res.Path, res.Bytes),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: "Writing manifest " + path,
	}
}
