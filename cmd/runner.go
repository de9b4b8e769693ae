package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/paprika/internal/edit"
	"github.com/desertthunder/paprika/internal/gallery"
	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/repositories"
	"github.com/desertthunder/paprika/internal/services"
	"github.com/desertthunder/paprika/internal/shared"
	"github.com/desertthunder/paprika/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	client     services.Service
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	open       func(string) error

	state   *models.JobState
	gallery *gallery.Gallery
	engine  *tasks.GenerationEngine
	editor  *edit.Session

	db      *sql.DB
	history *repositories.HistoryRecorder
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Service    services.Service // Defaults to a StoryboardClient for Config.Service
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Open       func(string) error // Defaults to shared.OpenBrowser
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Open == nil {
		opts.Open = shared.OpenBrowser
	}

	r := &Runner{
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		open:       opts.Open,
	}
	r.configure(opts.Config, opts.Service)
	return r
}

// configure (re)builds the service client and job components for config.
// A nil svc builds a StoryboardClient from config.
func (r *Runner) configure(config *shared.Config, svc services.Service) {
	if svc == nil {
		svc = services.NewStoryboardClient(config.Service, r.httpClient)
	}

	r.config = config
	r.client = svc
	r.state = models.NewJobState()
	r.gallery = gallery.New(config.Service.OutputRoot, config.Service.ArtifactName)
	r.engine = tasks.NewGenerationEngine(svc, r.state, r.gallery, config, r.logger)
	r.editor = edit.NewSession(svc, r.state, r.gallery, r.logger)
	if r.history != nil {
		r.engine.SetRecorder(r.history)
		r.editor.SetRecorder(r.history)
	}
}

// Load reads the --config file (defaults when it does not exist) and applies --log-level.
// It runs before every command.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	config := shared.DefaultConfig()
	if _, err := os.Stat(r.configPath); err == nil {
		if config, err = shared.LoadConfig(r.configPath); err != nil {
			return ctx, err
		}
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	if err := config.Validate(); err != nil {
		return ctx, err
	}

	level := config.Log.Level
	if l := cmd.String("log-level"); l != "" {
		level = l
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))

	r.configure(config, nil)
	return ctx, nil
}

// SetLogger replaces the logger of the runner and every component built from it.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.configure(r.config, r.client)
}

// History opens the job history database on first use and attaches it to the engine and edit session.
// It returns nil when history is disabled; errors are logged and disable history for the run.
func (r *Runner) History() *repositories.HistoryRecorder {
	if r.history != nil || !r.config.Database.RecordHistory {
		return r.history
	}

	db, err := shared.OpenHistory(r.config.Database)
	if err != nil {
		r.logger.Warn("job history unavailable", "path", r.config.Database.Path, "err", err)
		r.config.Database.RecordHistory = false
		return nil
	}

	r.db = db
	r.history = repositories.NewHistoryRecorder(db)
	r.engine.SetRecorder(r.history)
	r.editor.SetRecorder(r.history)
	return r.history
}

// Close releases the history database.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.history = nil
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		generateCommand, editCommand, downloadCommand, openCommand, historyCommand, statusCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

func (r *Runner) writeNotice(n models.Notice) error {
	switch n.Level {
	case models.NoticeSuccess:
		return r.writePlain("✓ %s\n", n.Message)
	case models.NoticeError:
		return r.writePlain("✗ %s\n", n.Message)
	default:
		return r.writePlain("%s\n", n.Message)
	}
}

// sessionArg returns the trimmed --session flag or an ErrMissingArgument.
func sessionArg(cmd *cli.Command) (string, error) {
	sid := strings.TrimSpace(cmd.String("session"))
	if sid == "" {
		return "", fmt.Errorf("%w: --session is required", shared.ErrMissingArgument)
	}
	return sid, nil
}

// framesFor returns the --frames flag, falling back to the frame count recorded in history.
func (r *Runner) framesFor(ctx context.Context, cmd *cli.Command, sessionID string) (int, error) {
	if n := cmd.Int("frames"); n > 0 {
		return n, nil
	}
	if h := r.History(); h != nil {
		if job, err := h.Jobs.GetBySession(ctx, sessionID); err == nil {
			return job.TotalFrames, nil
		}
	}
	return 0, fmt.Errorf("%w: --frames is required for session %s (not in history)", shared.ErrMissingArgument, sessionID)
}
