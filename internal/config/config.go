package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tgienger/taskflow/internal/models"
	"gopkg.in/yaml.v3"
)

const appName = "taskflow"

// Config is the on-disk configuration. Every field is optional.
type Config struct {
	DataDir string    `yaml:"data_dir"`
	DBFile  string    `yaml:"db_file"`
	Log     LogConfig `yaml:"log"`
	UI      UIConfig  `yaml:"ui"`
}

// LogConfig controls the rotating log file
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// UIConfig holds presentation defaults
type UIConfig struct {
	DefaultView models.ViewMode `yaml:"default_view"`
	Filter      FilterConfig    `yaml:"filter"`
}

// FilterConfig seeds the status and priority filters at startup.
// Names are case-insensitive; empty means ALL.
type FilterConfig struct {
	Status   string `yaml:"status"`
	Priority string `yaml:"priority"`
}

// Default returns the configuration used when no file exists
func Default() (*Config, error) {
	dataDir, err := defaultDataDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		DataDir: dataDir,
		DBFile:  appName + ".db",
		Log: LogConfig{
			Level:      "info",
			File:       appName + ".log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		UI: UIConfig{DefaultView: models.ViewKanban},
	}, nil
}

// Load reads the YAML file at path over the defaults. An empty path means
// the default location; a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if dir := os.Getenv("TASKFLOW_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted silently
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if c.DBFile == "" {
		return errors.New("db_file must not be empty")
	}
	if c.UI.DefaultView == "" {
		c.UI.DefaultView = models.ViewKanban
	}
	if !c.UI.DefaultView.Valid() {
		return fmt.Errorf("ui.default_view: unknown view %q", c.UI.DefaultView)
	}
	if _, err := c.Filters(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	return nil
}

// Filters returns the initial task filters
func (c *Config) Filters() (models.TaskFilters, error) {
	f := models.DefaultFilters()
	if c.UI.Filter.Status != "" {
		st, ok := models.ParseStatus(c.UI.Filter.Status)
		if !ok {
			return f, fmt.Errorf("ui.filter.status: unknown status %q", c.UI.Filter.Status)
		}
		f.Status = st
	}
	if c.UI.Filter.Priority != "" {
		p, ok := models.ParsePriority(c.UI.Filter.Priority)
		if !ok {
			return f, fmt.Errorf("ui.filter.priority: unknown priority %q", c.UI.Filter.Priority)
		}
		f.Priority = p
	}
	return f, nil
}

// DBPath returns the absolute database path
func (c *Config) DBPath() string {
	return c.resolve(c.DBFile)
}

// LogPath returns the absolute log file path
func (c *Config) LogPath() string {
	return c.resolve(c.Log.File)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// DefaultPath returns $XDG_CONFIG_HOME/taskflow/config.yaml
func DefaultPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, appName, "config.yaml"), nil
}

// defaultDataDir uses the XDG data directory or falls back to the home directory
func defaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, appName), nil
}
