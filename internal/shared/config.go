package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Service  ServiceConfig  `toml:"service"`
	Progress ProgressConfig `toml:"progress"`
	Database DatabaseConfig `toml:"database"`
	Download DownloadConfig `toml:"download"`
	Log      LogConfig      `toml:"log"`
}

// ServiceConfig describes the remote storyboard service.
type ServiceConfig struct {
	BaseURL      string `toml:"base_url"`
	GeneratePath string `toml:"generate_path"`
	EditPath     string `toml:"edit_path"`
	HealthPath   string `toml:"health_path"`
	OutputRoot   string `toml:"output_root"`
	ArtifactName string `toml:"artifact_name"`
}

// ProgressConfig declares the job phases shown as progress steps.
type ProgressConfig struct {
	FirstStep int      `toml:"first_step"`
	Labels    []string `toml:"labels"`
}

// DatabaseConfig contains job history database settings.
type DatabaseConfig struct {
	Path          string `toml:"path"`
	MaxOpenConns  int    `toml:"max_open_conns"`
	MaxIdleConns  int    `toml:"max_idle_conns"`
	RecordHistory bool   `toml:"record_history"`
}

// DownloadConfig contains artifact download settings.
type DownloadConfig struct {
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
	OutputDir string  `toml:"output_dir"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level   string `toml:"level"`
	TUIFile string `toml:"tui_file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the defaults from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Service.BaseURL) == "":
		return fmt.Errorf("%w: service.base_url is required", ErrInvalidConfig)
	case c.Service.OutputRoot == "":
		return fmt.Errorf("%w: service.output_root is required", ErrInvalidConfig)
	case c.Service.ArtifactName == "":
		return fmt.Errorf("%w: service.artifact_name is required", ErrInvalidConfig)
	case len(c.Progress.Labels) == 0:
		return fmt.Errorf("%w: progress.labels must declare at least one step", ErrInvalidConfig)
	case c.Progress.FirstStep < 0:
		return fmt.Errorf("%w: progress.first_step must not be negative", ErrInvalidConfig)
	case c.Download.Workers < 0:
		return fmt.Errorf("%w: download.workers must not be negative", ErrInvalidConfig)
	case c.Download.RateLimit < 0:
		return fmt.Errorf("%w: download.rate_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}
