package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/paprika/internal/shared"
	"github.com/urfave/cli/v3"
)

type editOutput struct {
	SessionID   string `json:"session_id"`
	FrameNumber int    `json:"frame_number"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Edit re-renders one frame of an existing storyboard.
//
// The storyboard context comes from --context or, failing that, from the recorded job.
func (r *Runner) Edit(ctx context.Context, cmd *cli.Command) error {
	sessionID, err := sessionArg(cmd)
	if err != nil {
		return err
	}

	frame := cmd.Int("frame")
	if frame < 1 {
		return fmt.Errorf("%w: --frame must be at least 1", shared.ErrInvalidArgument)
	}

	storyboardContext := strings.TrimSpace(cmd.String("context"))
	frames := frame
	if h := r.History(); h != nil {
		if job, err := h.Jobs.GetBySession(ctx, sessionID); err == nil {
			if storyboardContext == "" {
				storyboardContext = job.Description
			}
			frames = max(frames, job.TotalFrames)
		} else if !errors.Is(err, shared.ErrNotFound) {
			r.logger.Warn("failed to look up session in history", "session", sessionID, "err", err)
		}
	}
	if storyboardContext == "" {
		r.logger.Warn("no storyboard context for session; the edit may drift from the story", "session", sessionID)
	}

	r.state.Resolve(sessionID, storyboardContext)
	r.gallery.Populate(frames, sessionID)

	if notice, err := r.editor.OpenFrame(frame); err != nil {
		r.writeNotice(notice)
		return err
	}
	r.editor.SetInstructions(cmd.String("instructions"))

	notice, editErr := r.editor.Submit(ctx)

	out := editOutput{
		SessionID:   sessionID,
		FrameNumber: frame,
		Success:     editErr == nil,
		Message:     notice.Message,
	}
	if editErr == nil {
		if card, err := r.gallery.Card(frame); err == nil {
			out.ImageURL = r.client.ArtifactURL(card.ImagePath)
		}
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(out, true); err != nil {
			return err
		}
		return editErr
	}

	r.writeNotice(notice)
	if out.ImageURL != "" {
		r.writePlain("Image: %s\n", out.ImageURL)
		r.writePlain("PDF:   %s\n", r.client.ArtifactURL(r.gallery.ArtifactLink()))
	}
	return editErr
}
