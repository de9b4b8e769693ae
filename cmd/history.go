package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/paprika/internal/formatter"
	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/shared"
	"github.com/urfave/cli/v3"
)

// ListHistory prints recorded generation jobs, newest first.
func (r *Runner) ListHistory(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		format = formatter.JSON
	}

	status := models.JobStatus(strings.ToLower(strings.TrimSpace(cmd.String("status"))))
	switch status {
	case "", models.JobSucceeded, models.JobFailed:
	default:
		return fmt.Errorf("%w: unknown status %q (use succeeded or failed)", shared.ErrInvalidArgument, status)
	}

	h := r.History()
	if h == nil {
		return fmt.Errorf("%w: job history is disabled", shared.ErrMissingConfig)
	}

	records, err := h.Jobs.List(ctx, cmd.Int("limit"), status)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}
	return formatter.RenderHistory(r.output, format, records)
}
