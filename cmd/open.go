package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/paprika/internal/gallery"
	"github.com/desertthunder/paprika/internal/shared"
	"github.com/urfave/cli/v3"
)

// Open opens the storyboard PDF of a session, or one of its frames, in the browser.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	sessionID, err := sessionArg(cmd)
	if err != nil {
		return err
	}

	svc := r.config.Service
	path := gallery.ArtifactPath(svc.OutputRoot, sessionID, svc.ArtifactName)
	switch n := cmd.Int("frame"); {
	case n < 0:
		return fmt.Errorf("%w: --frame must be at least 1", shared.ErrInvalidArgument)
	case n > 0:
		path = gallery.FramePath(svc.OutputRoot, sessionID, n)
	}

	url := r.client.ArtifactURL(path)
	if cmd.Bool("print") {
		return r.writePlain("%s\n", url)
	}

	r.logger.Debug("opening browser", "url", url)
	if err := r.open(url); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return r.writePlain("Opened %s\n", url)
}
