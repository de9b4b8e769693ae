// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// generateCommand runs a generation job from the command line
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"gen"},
		Usage:     "Generate a storyboard from a description",
		ArgsUsage: "<description>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Summary format (text, markdown, json)",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the summary as JSON (same as --format json)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the storyboard PDF in the browser when done",
			},
			&cli.BoolFlag{
				Name:  "download",
				Usage: "Download frames and PDF when done",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Do not print progress",
			},
		},
		Action: r.Generate,
	}
}

// editCommand re-renders one frame of an existing storyboard
func editCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "edit",
		Usage: "Edit one frame of a generated storyboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "session",
				Aliases:  []string{"s"},
				Usage:    "Session ID of the storyboard",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "frame",
				Aliases:  []string{"n"},
				Usage:    "Frame number (1-based)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "instructions",
				Aliases:  []string{"i"},
				Usage:    "What should change in the frame",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "context",
				Usage: "Storyboard description (default: recovered from history)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the service response as JSON",
			},
		},
		Action: r.Edit,
	}
}

// downloadCommand fetches the artifacts of a session
func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "download",
		Aliases: []string{"dl"},
		Usage:   "Download frame images and the PDF of a storyboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "session",
				Aliases:  []string{"s"},
				Usage:    "Session ID of the storyboard",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "frames",
				Usage: "Number of frames (default: recovered from history)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: storyboard_{session})",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent downloads (default from config)",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Requests per second (default from config)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the manifest as JSON",
			},
		},
		Action: r.Download,
	}
}

// openCommand opens a storyboard artifact in the browser
func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "open",
		Usage: "Open the storyboard PDF (or one frame) in the browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "session",
				Aliases:  []string{"s"},
				Usage:    "Session ID of the storyboard",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "frame",
				Aliases: []string{"n"},
				Usage:   "Open this frame image instead of the PDF",
			},
			&cli.BoolFlag{
				Name:  "print",
				Usage: "Print the URL instead of opening it",
			},
		},
		Action: r.Open,
	}
}

// historyCommand lists recorded jobs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List previous storyboard jobs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of jobs to list (0 for all)",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only list jobs with this status (succeeded, failed)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (text, csv, json)",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON (same as --format json)",
			},
		},
		Action: r.ListHistory,
	}
}

// statusCommand checks the storyboard service
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "status",
		Aliases: []string{"health"},
		Usage:   "Check the storyboard service (calls the health endpoint)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Status,
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a configuration file from the template",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the history database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive storyboard generation.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for storyboard generation and editing",
		Action:  r.TUI,
	}
}
