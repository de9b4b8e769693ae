package models

import (
	"sync"
	"sync/atomic"
)

const (
	guardIdle int32 = iota
	guardBusy
)

// Guard is a two-state in-flight flag (idle or busy) with an atomic try-acquire.
//
// The zero value is idle.
type Guard struct {
	state atomic.Int32
}

// TryAcquire moves the guard from idle to busy. It returns false if the guard was already busy.
func (g *Guard) TryAcquire() bool {
	return g.state.CompareAndSwap(guardIdle, guardBusy)
}

// Release returns the guard to idle.
func (g *Guard) Release() {
	g.state.Store(guardIdle)
}

// Active reports whether the guard is busy.
func (g *Guard) Active() bool {
	return g.state.Load() == guardBusy
}

// JobState is the process-wide state of the storyboard client.
//
// A single JobState is created per process and passed by pointer to every component that needs it.
// Progress counters only move forward within a job and are zeroed by [JobState.Reset].
type JobState struct {
	Generating Guard
	Editing    Guard

	mu                sync.RWMutex
	currentStep       int
	totalFrames       int
	currentFrame      int
	sessionID         string
	storyboardContext string
}

// NewJobState returns an idle job state.
func NewJobState() *JobState {
	return &JobState{}
}

// Reset clears progress counters, the session id and the storyboard context at the start of a job.
func (s *JobState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStep = 0
	s.totalFrames = 0
	s.currentFrame = 0
	s.sessionID = ""
	s.storyboardContext = ""
}

// Observe records a progress snapshot. Values lower than the ones already recorded are ignored.
func (s *JobState) Observe(step, totalFrames, currentFrame int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStep = max(s.currentStep, step)
	s.totalFrames = max(s.totalFrames, totalFrames)
	s.currentFrame = max(s.currentFrame, currentFrame)
}

// Counters returns the last known step, frame total and current frame.
func (s *JobState) Counters() (step, totalFrames, currentFrame int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentStep, s.totalFrames, s.currentFrame
}

// Resolve stores the outcome of a completed job: its session id and the description that produced it.
func (s *JobState) Resolve(sessionID, storyboardContext string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = sessionID
	s.storyboardContext = storyboardContext
}

// SessionID returns the session id of the last completed job, or "" if none.
func (s *JobState) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// StoryboardContext returns the description of the last completed job.
func (s *JobState) StoryboardContext() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storyboardContext
}

// StepStatus is the render status of a [ProgressStep].
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepActive     StepStatus = "active"
	StepInProgress StepStatus = "in-progress"
	StepCompleted  StepStatus = "completed"
)

// Rank orders statuses so that a step never moves backwards.
func (s StepStatus) Rank() int {
	switch s {
	case StepActive:
		return 1
	case StepInProgress:
		return 2
	case StepCompleted:
		return 3
	default:
		return 0
	}
}

// ProgressStep is one phase of a generation job as shown to the user.
type ProgressStep struct {
	Index   int        `json:"index"`
	Status  StepStatus `json:"status"`
	Percent int        `json:"percent"`
	Label   string     `json:"label"`
}

// FrameCard is one rendered frame of a completed storyboard.
type FrameCard struct {
	FrameNumber int    `json:"frame_number"`
	ImagePath   string `json:"image_path"`
	Selected    bool   `json:"selected"`
}

// NoticeLevel is the severity of a [Notice].
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

// Notice is a short user-facing message (a toast in the TUI, a line on the CLI).
type Notice struct {
	Level   NoticeLevel
	Message string
}

// IsError reports whether the notice reports a failure.
func (n Notice) IsError() bool {
	return n.Level == NoticeError
}
