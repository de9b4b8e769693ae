package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/paprika/internal/shared"
	"github.com/desertthunder/paprika/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for generating and editing storyboards.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.TUIFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)
	r.History()

	model := ui.NewModel(ctx, ui.Options{
		Generator: r.engine,
		Gallery:   r.gallery,
		Editor:    r.editor,
		URL:       r.client.ArtifactURL,
		Open:      r.open,
		Logger:    r.logger,
	})
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if err := model.Err(); err != nil {
		r.logger.Debug("last job ended with an error", "err", err)
	}
	return nil
}
