// package edit implements the frame edit sub-flow: choose a frame, describe a change, submit it.
package edit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/paprika/internal/gallery"
	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/shared"
)

// User-facing notice texts.
const (
	MsgEmptyInstructions = "Please enter edit instructions"
	MsgNoSelection       = "No frame selected"
	MsgEditFailed        = "Edit failed"
	MsgTransportFailed   = "Failed to edit frame"
	MsgEditInFlight      = "An edit is already being applied"
	MsgNotOpen           = "Edit form is not open"
)

// State is the edit session's position in its lifecycle.
type State int

const (
	Idle State = iota
	FormVisible
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FormVisible:
		return "form-visible"
	case Submitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Editor sends frame edit requests to the storyboard service.
//
// A non-nil response with Success false is a rejection; an error means no usable response was received.
type Editor interface {
	EditFrame(ctx context.Context, req models.EditRequest) (*models.EditResponse, error)
}

// Recorder stores submitted edits. Implementations must not block for long.
type Recorder interface {
	RecordEdit(ctx context.Context, rec models.EditRecord) error
}

// Session drives one edit form over the frames of the current storyboard.
type Session struct {
	editor   Editor
	state    *models.JobState
	gallery  *gallery.Gallery
	logger   *log.Logger
	recorder Recorder

	mu           sync.Mutex
	current      State
	instructions string
	frame        int
}

// NewSession creates an idle edit session.
func NewSession(editor Editor, state *models.JobState, g *gallery.Gallery, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{editor: editor, state: state, gallery: g, logger: logger}
}

// SetRecorder enables edit history. A nil recorder disables it.
func (s *Session) SetRecorder(r Recorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder = r
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Instructions returns the text currently in the form.
func (s *Session) Instructions() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instructions
}

// Frame returns the frame number the form was opened for.
func (s *Session) Frame() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// SetInstructions replaces the form text. It is ignored unless the form is visible.
func (s *Session) SetInstructions(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == FormVisible {
		s.instructions = text
	}
}

// Open shows the form for the selected frame. Opening from idle clears previous instructions.
func (s *Session) Open() (models.Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.current {
	case Submitting:
		return errorNotice(MsgEditInFlight), shared.ErrEditInFlight
	case FormVisible:
		if n := s.gallery.Selected(); n != 0 {
			s.frame = n
		}
		return models.Notice{}, nil
	}

	n := s.gallery.Selected()
	if n == 0 {
		return errorNotice(MsgNoSelection), shared.ErrNoSelection
	}
	s.current = FormVisible
	s.frame = n
	s.instructions = ""
	return models.Notice{}, nil
}

// OpenFrame selects frame n in the gallery and opens the form for it.
func (s *Session) OpenFrame(n int) (models.Notice, error) {
	if s.State() == Submitting {
		return errorNotice(MsgEditInFlight), shared.ErrEditInFlight
	}
	if err := s.gallery.Focus(n); err != nil {
		return errorNotice(MsgNoSelection), err
	}
	return s.Open()
}

// Close hides the form. It is refused while a submission is in flight.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == Submitting {
		return shared.ErrEditInFlight
	}
	s.current = Idle
	return nil
}

// Submit sends the form's instructions for the selected frame.
//
// Validation failures send nothing and leave the form as it was. On success the form closes and
// the frame image and storyboard link are refreshed. On failure the form stays open with its
// instructions intact. The returned notice describes every outcome.
func (s *Session) Submit(ctx context.Context) (models.Notice, error) {
	s.mu.Lock()
	if s.current != FormVisible {
		s.mu.Unlock()
		return errorNotice(MsgNotOpen), shared.ErrEditNotOpen
	}

	instructions := strings.TrimSpace(s.instructions)
	if instructions == "" {
		s.mu.Unlock()
		return errorNotice(MsgEmptyInstructions), shared.ErrEmptyInstructions
	}

	sessionID := s.state.SessionID()
	frame := s.gallery.Selected()
	if sessionID == "" || frame == 0 {
		s.mu.Unlock()
		return errorNotice(MsgNoSelection), shared.ErrNoSelection
	}

	if !s.state.Editing.TryAcquire() {
		s.mu.Unlock()
		return errorNotice(MsgEditInFlight), shared.ErrEditInFlight
	}
	defer s.state.Editing.Release()

	s.current = Submitting
	s.frame = frame
	recorder := s.recorder
	s.mu.Unlock()

	req := models.EditRequest{
		SessionID:         sessionID,
		FrameNumber:       frame,
		EditInstructions:  instructions,
		StoryboardContext: s.state.StoryboardContext(),
	}
	logger := s.logger.With("session", sessionID, "frame", frame)
	logger.Info("submitting frame edit")

	resp, err := s.editor.EditFrame(ctx, req)

	notice, result := s.settle(frame, resp, err)
	if result != nil {
		logger.Error("frame edit failed", "err", result)
	} else {
		logger.Info("frame edited", "image", resp.ImagePath, "pdf_regenerated", resp.PDFRegenerated)
	}

	if recorder != nil {
		rec := models.EditRecord{
			SessionID:    sessionID,
			FrameNumber:  frame,
			Instructions: instructions,
			Success:      result == nil,
			Message:      notice.Message,
		}
		if rerr := recorder.RecordEdit(ctx, rec); rerr != nil {
			logger.Warn("failed to record edit", "err", rerr)
		}
	}
	return notice, result
}

// settle applies the outcome of a submission and returns the notice to show.
func (s *Session) settle(frame int, resp *models.EditResponse, err error) (models.Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case err != nil:
		s.current = FormVisible
		if errors.Is(err, context.Canceled) {
			return errorNotice(MsgTransportFailed), err
		}
		return errorNotice(MsgTransportFailed), fmt.Errorf("%w: %w", shared.ErrTransport, err)
	case resp == nil || !resp.Success:
		s.current = FormVisible
		msg := MsgEditFailed
		if resp != nil && strings.TrimSpace(resp.Message) != "" {
			msg = resp.Message
		}
		return errorNotice(msg), fmt.Errorf("%w: %s", shared.ErrEditRejected, msg)
	}

	s.current = Idle
	if _, rerr := s.gallery.RefreshImage(frame); rerr != nil {
		s.logger.Warn("edited frame no longer in gallery", "frame", frame, "err", rerr)
	}
	s.gallery.RefreshArtifactLink()
	return models.Notice{Level: models.NoticeSuccess, Message: fmt.Sprintf("Frame %d edited successfully!", frame)}, nil
}

func errorNotice(msg string) models.Notice {
	return models.Notice{Level: models.NoticeError, Message: msg}
}
