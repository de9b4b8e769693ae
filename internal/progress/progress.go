// package progress reduces stream events into the stepped progress shown to the user.
package progress

import (
	"fmt"

	"github.com/desertthunder/paprika/internal/models"
)

// Outcome is the terminal result of a job.
type Outcome string

const (
	Running   Outcome = ""
	Succeeded Outcome = "succeeded"
	Failed    Outcome = "failed"
)

// State is a snapshot of a job's progress.
//
// States are values: [Reduce] returns a new State and never mutates its input's steps.
type State struct {
	Steps        []models.ProgressStep `json:"steps"`
	CurrentStep  int                   `json:"current_step"`
	TotalFrames  int                   `json:"total_frames"`
	CurrentFrame int                   `json:"current_frame"`
	Message      string                `json:"message,omitempty"`
	Outcome      Outcome               `json:"outcome,omitempty"`
	Err          string                `json:"error,omitempty"`
	Result       *models.Complete      `json:"-"`

	firstStep int
}

// New creates one pending step per label. firstStep is the wire number of the first phase.
func New(labels []string, firstStep int) State {
	steps := make([]models.ProgressStep, len(labels))
	for i, label := range labels {
		steps[i] = models.ProgressStep{Index: i, Status: models.StepPending, Label: label}
	}
	return State{Steps: steps, firstStep: firstStep}
}

// Done reports whether the job reached a terminal outcome.
func (s State) Done() bool {
	return s.Outcome != Running
}

// Percent returns the overall completion of the job across all steps.
func (s State) Percent() float64 {
	if len(s.Steps) == 0 {
		return 0
	}
	if s.Outcome == Succeeded {
		return 1
	}
	var sum int
	for _, step := range s.Steps {
		sum += step.Percent
	}
	return float64(sum) / float64(100*len(s.Steps))
}

// Active returns the highest step that has started, if any.
func (s State) Active() (models.ProgressStep, bool) {
	for i := len(s.Steps) - 1; i >= 0; i-- {
		if s.Steps[i].Status != models.StepPending {
			return s.Steps[i], true
		}
	}
	return models.ProgressStep{}, false
}

func (s State) clone() State {
	s.Steps = append([]models.ProgressStep(nil), s.Steps...)
	return s
}

// index maps a wire step number to a slice index. ok is false for out of range steps.
func (s State) index(step int) (int, bool) {
	i := step - s.firstStep
	return i, i >= 0 && i < len(s.Steps)
}

// Reduce applies ev to s and returns the new state.
//
// Events received after a terminal outcome are ignored. Completed steps never change.
func Reduce(s State, ev models.Event) State {
	if s.Done() {
		return s
	}
	next := s.clone()

	switch e := ev.(type) {
	case models.StepStart:
		next.Message = e.Message
		if i, ok := next.index(e.Step); ok {
			next.observe(e.Step, e.TotalFrames, 0)
			next.promote(i, models.StepActive)
			if e.Message != "" && next.Steps[i].Status != models.StepCompleted {
				next.Steps[i].Label = e.Message
			}
		}
	case models.StepProgress:
		next.Message = e.Message
		if i, ok := next.index(e.Step); ok && next.Steps[i].Status != models.StepCompleted {
			next.observe(e.Step, e.TotalFrames, e.CurrentFrame)
			next.promote(i, models.StepInProgress)
			next.Steps[i].Percent = FramePercent(e.CurrentFrame, e.TotalFrames)
			next.Steps[i].Label = FrameLabel(e.CurrentFrame, e.TotalFrames, e.Generating)
		}
	case models.StepComplete:
		if i, ok := next.index(e.Step); ok && next.Steps[i].Status != models.StepCompleted {
			next.observe(e.Step, e.TotalFrames, 0)
			next.Steps[i].Status = models.StepCompleted
			next.Steps[i].Percent = 100
			if e.Message != "" {
				next.Steps[i].Label = e.Message
			}
		}
	case models.Complete:
		next.observe(0, e.TotalFrames, 0)
		next.Message = e.Message
		next.Outcome = Succeeded
		result := e
		next.Result = &result
	case models.Failure:
		next.Message = e.Message
		next.Outcome = Failed
		next.Err = e.Message
	default:
		return s
	}
	return next
}

// Fail ends the job with message unless it already has an outcome.
func Fail(s State, message string) State {
	return Reduce(s, models.Failure{Message: message})
}

func (s *State) observe(step, totalFrames, currentFrame int) {
	s.CurrentStep = max(s.CurrentStep, step)
	s.TotalFrames = max(s.TotalFrames, totalFrames)
	s.CurrentFrame = max(s.CurrentFrame, currentFrame)
}

// promote raises the status of step i without ever lowering it.
func (s *State) promote(i int, status models.StepStatus) {
	if status.Rank() > s.Steps[i].Status.Rank() {
		s.Steps[i].Status = status
	}
}

// FramePercent returns 100*current/total clamped to [0,100], or 0 when total is not positive.
func FramePercent(current, total int) int {
	if total <= 0 {
		return 0
	}
	return min(max(100*current/total, 0), 100)
}

// FrameLabel renders the label of a frame generation step.
func FrameLabel(current, total int, generating bool) string {
	if generating {
		return fmt.Sprintf("Generating frame %d/%d...", current, total)
	}
	return fmt.Sprintf("Generated frame %d/%d", current, total)
}
