package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/irahardianto/stopgate/internal/platform/logger"
	"gopkg.in/yaml.v3"
)

// GlobalConfig holds user-level settings that persist across projects.
type GlobalConfig struct {
	// Shell overrides the shell gates run under. Empty means $SHELL or the platform default.
	Shell       string       `yaml:"shell"`
	OutputLimit int          `yaml:"output_limit"`
	Output      OutputConfig `yaml:"output"`

	OutputColor   bool `yaml:"-"` // derived from Output.Color
	OutputVerbose bool `yaml:"-"` // derived from Output.Verbose
	OutputStream  bool `yaml:"-"` // derived from Output.Stream
}

// OutputConfig holds output-related user preferences.
type OutputConfig struct {
	Color   *bool `yaml:"color"`
	Verbose *bool `yaml:"verbose"`
	// Stream forwards gate output to stderr while gates run.
	Stream *bool `yaml:"stream"`
}

// LoadGlobalConfig reads user-level configuration from ~/.config/stopgate/config.yaml.
// If the file does not exist, default values are returned (not an error).
// Environment variables override file values.
func (l *Loader) LoadGlobalConfig(ctx context.Context) (*GlobalConfig, error) {
	home, err := l.fs.UserHomeDir()
	if err != nil {
		cfg := defaultGlobalConfig()
		applyEnvOverrides(cfg, l.getenv, logger.FromContext(ctx))
		return cfg, nil
	}
	path := filepath.Join(home, ".config", "stopgate", "config.yaml")
	return l.LoadGlobalConfigFrom(ctx, path)
}

// LoadGlobalConfigFrom reads user-level configuration from a specific path.
// If the file does not exist, default values are returned (not an error).
// Environment variables override file values.
func (l *Loader) LoadGlobalConfigFrom(ctx context.Context, path string) (*GlobalConfig, error) {
	log := logger.FromContext(ctx)
	log.Debug("loading global config", "path", path)
	cfg := defaultGlobalConfig()

	path = filepath.Clean(path)

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if l.fs.IsNotExist(err) {
			applyEnvOverrides(cfg, l.getenv, log)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.Output.Color != nil {
		cfg.OutputColor = *cfg.Output.Color
	}
	if cfg.Output.Verbose != nil {
		cfg.OutputVerbose = *cfg.Output.Verbose
	}
	if cfg.Output.Stream != nil {
		cfg.OutputStream = *cfg.Output.Stream
	}

	applyEnvOverrides(cfg, l.getenv, log)

	return cfg, nil
}

// LoadGlobalConfig reads user-level configuration using the real file system.
func LoadGlobalConfig(ctx context.Context) (*GlobalConfig, error) {
	return NewLoader(&RealFileSystem{}).LoadGlobalConfig(ctx)
}

func defaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		OutputColor: true,
	}
}

// applyEnvOverrides applies STOPGATE_* environment variables to the config.
func applyEnvOverrides(cfg *GlobalConfig, getenv func(string) string, log *slog.Logger) {
	if shell := getenv("STOPGATE_SHELL"); shell != "" {
		cfg.Shell = shell
	}

	if limit := getenv("STOPGATE_OUTPUT_LIMIT"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			log.Warn("invalid STOPGATE_OUTPUT_LIMIT value, ignoring", "value", limit)
		} else {
			cfg.OutputLimit = n
		}
	}

	if isTruthy(getenv("STOPGATE_NO_COLOR")) {
		cfg.OutputColor = false
	}

	if stream := getenv("STOPGATE_STREAM"); stream != "" {
		cfg.OutputStream = isTruthy(stream)
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
