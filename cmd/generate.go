package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/paprika/internal/formatter"
	"github.com/desertthunder/paprika/internal/shared"
	"github.com/desertthunder/paprika/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Generate runs a full generation job and prints a summary of the storyboard.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	description := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if description == "" {
		return fmt.Errorf("%w: a description is required", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		format = formatter.JSON
	}
	quiet := cmd.Bool("quiet") || format == formatter.JSON

	r.History()
	r.logger.Info("starting storyboard generation", "service", r.client.Name())
	if !quiet {
		r.writePlain("Generating storyboard...\n\n")
	}

	result, err := run(r, quiet, func(progressCh chan<- tasks.ProgressUpdate) (*tasks.GenerationResult, error) {
		return r.engine.Run(ctx, description, progressCh)
	})
	if err != nil {
		if !quiet {
			r.writePlain("\n")
			r.writeNotice(tasks.Notice(err))
		}
		return err
	}

	summary := r.engine.Summary(result)
	if !quiet {
		r.writePlain("\n")
		r.writeNotice(tasks.Notice(nil))
		r.writePlain("\n")
	}
	if err := formatter.RenderSummary(r.output, format, summary); err != nil {
		return err
	}

	if cmd.Bool("download") {
		if _, err := r.download(ctx, result.SessionID, result.TotalFrames, r.downloadOpts(result.SessionID, "", 0, 0), quiet); err != nil {
			return err
		}
	}

	if cmd.Bool("open") {
		if err := r.open(summary.ArtifactURL); err != nil {
			r.logger.Warn("failed to open browser", "url", summary.ArtifactURL, "err", err)
		}
	}
	return nil
}

// run executes op with a progress channel drained by a printer goroutine.
// It returns only after every update has been printed.
func run[T any](r *Runner, quiet bool, op func(chan<- tasks.ProgressUpdate) (T, error)) (T, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if !quiet {
				r.printProgress(update)
			}
		}
	}()

	result, err := op(progressCh)
	close(progressCh)
	<-done
	return result, err
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	step := update.Step - r.config.Progress.FirstStep + 1

	switch update.Phase {
	case tasks.Submit:
		r.writePlain("📤 %s\n", update.Message)
	case tasks.StepStarted:
		r.writePlain("\n▶ [%d/%d] %s\n", step, update.Total, update.Message)
	case tasks.StepProgressed:
		r.writePlain("   %s\n", update.Message)
	case tasks.StepCompleted:
		r.writePlain("✓ %s\n", update.Message)
	case tasks.Resolve:
		r.writePlain("\n📁 %s\n", update.Message)
	case tasks.Download:
		r.writePlain("   %s\n", update.Message)
	case tasks.WriteManifest:
		r.writePlain("📝 %s\n", update.Message)
	}
}
