package main

import (
	"context"
	"path/filepath"

	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Download fetches the frames and PDF of a session into a local directory.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	sessionID, err := sessionArg(cmd)
	if err != nil {
		return err
	}

	frames, err := r.framesFor(ctx, cmd, sessionID)
	if err != nil {
		return err
	}

	opts := r.downloadOpts(sessionID, cmd.String("output"), cmd.Int("workers"), cmd.Float("rate"))
	quiet := cmd.Bool("json")

	result, err := r.download(ctx, sessionID, frames, opts, quiet)
	if err != nil {
		return err
	}

	if quiet {
		return r.writeJSON(result, true)
	}
	return nil
}

// downloadOpts fills unset download options from the config.
func (r *Runner) downloadOpts(sessionID, output string, workers int, rate float64) tasks.DownloadOpts {
	if output == "" && r.config.Download.OutputDir != "" && sessionID != "" {
		output = filepath.Join(r.config.Download.OutputDir, "storyboard_"+sessionID)
	}
	if workers <= 0 {
		workers = r.config.Download.Workers
	}
	if rate <= 0 {
		rate = r.config.Download.RateLimit
	}
	return tasks.DownloadOpts{OutputDir: output, NumWorkers: workers, RateLimit: rate}
}

func (r *Runner) download(ctx context.Context, sessionID string, frames int, opts tasks.DownloadOpts, quiet bool) (*models.DownloadResult, error) {
	r.logger.Info("downloading storyboard", "session", sessionID, "frames", frames)
	if !quiet {
		r.writePlainHeader("Downloading storyboard " + sessionID)
	}

	result, err := run(r, quiet, func(progressCh chan<- tasks.ProgressUpdate) (*models.DownloadResult, error) {
		return r.engine.Download(ctx, sessionID, frames, opts, progressCh)
	})
	if err != nil {
		return result, err
	}

	if !quiet {
		r.writePlainln("Downloaded %d/%d artifacts to %s", result.Succeeded, result.Total, result.OutputDirectory)
		if result.Failed > 0 {
			r.writePlain("Failed (%d):\n", result.Failed)
			for _, a := range result.Artifacts {
				if !a.Success {
					r.writePlain("  ✗ %s: %s\n", a.Path, a.Error)
				}
			}
		}
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	return result, nil
}
