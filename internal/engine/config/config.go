// Package config handles parsing and validation of stopgate configuration files.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/irahardianto/stopgate/internal/platform/logger"
	"gopkg.in/yaml.v3"
)

// Defaults applied to gates and runs when the config leaves them unset.
const (
	DefaultOrder       = 100
	DefaultOutputLimit = 4000
)

// Relative locations inside a project.
const (
	Dir         = ".stopgate"
	GatesFile   = "gates.yaml"
	ResultsFile = "last-run.json"
)

// ErrConfigNotFound is returned when the config file does not exist.
var ErrConfigNotFound = errors.New("no .stopgate/gates.yaml found. Run 'stopgate init' first")

// StopgateConfig is the top-level project configuration.
type StopgateConfig struct {
	Version  int      `yaml:"version"`
	Defaults Defaults `yaml:"defaults"`
	Gates    []Gate   `yaml:"gates"`
}

// Defaults holds project-wide settings and fallbacks for gates missing optional fields.
type Defaults struct {
	Blocking    *bool `yaml:"blocking"`
	FailFast    *bool `yaml:"fail_fast"`
	OutputLimit int   `yaml:"output_limit"`
}

// Gate represents a single gate entry as written in gates.yaml.
type Gate struct {
	Name     string `yaml:"name"`
	Command  string `yaml:"command"`
	Order    *int   `yaml:"order,omitempty"`
	Blocking *bool  `yaml:"blocking,omitempty"`
	Enabled  *bool  `yaml:"enabled,omitempty"`
}

// IsBlocking returns whether a failure of this gate stops the run.
// Falls back to true if not explicitly set.
func (g *Gate) IsBlocking() bool {
	if g.Blocking != nil {
		return *g.Blocking
	}
	return true
}

// IsEnabled returns whether the gate takes part in runs.
func (g *Gate) IsEnabled() bool {
	if g.Enabled != nil {
		return *g.Enabled
	}
	return true
}

// GetOrder returns the gate's sort key, defaulting to DefaultOrder.
func (g *Gate) GetOrder() int {
	if g.Order != nil {
		return *g.Order
	}
	return DefaultOrder
}

// FailFast reports whether remaining blocking gates are skipped after a blocking failure.
func (c *StopgateConfig) FailFast() bool {
	if c.Defaults.FailFast != nil {
		return *c.Defaults.FailFast
	}
	return true
}

// OutputLimit returns the character budget for reported gate output.
func (c *StopgateConfig) OutputLimit() int {
	if c.Defaults.OutputLimit > 0 {
		return c.Defaults.OutputLimit
	}
	return DefaultOutputLimit
}

// ActiveGates returns the enabled gates sorted by order.
// Gates with equal order keep their declaration order.
func (c *StopgateConfig) ActiveGates() []Gate {
	var gates []Gate
	for _, g := range c.Gates {
		if g.IsEnabled() {
			gates = append(gates, g)
		}
	}
	sort.SliceStable(gates, func(i, j int) bool {
		return gates[i].GetOrder() < gates[j].GetOrder()
	})
	return gates
}

// Loader handles loading configuration from the file system.
type Loader struct {
	fs     FileSystem
	getenv func(string) string
}

// NewLoader creates a new Loader with the given file system.
// Uses os.Getenv for environment variable lookups by default.
func NewLoader(fs FileSystem) *Loader {
	return &Loader{fs: fs, getenv: os.Getenv}
}

// NewLoaderWithEnv creates a Loader with a custom getenv function for testability.
func NewLoaderWithEnv(fs FileSystem, getenv func(string) string) *Loader {
	return &Loader{fs: fs, getenv: getenv}
}

// Load reads and parses a gates.yaml configuration file from the given path.
// JSON files with the same keys are accepted too.
// Returns ErrConfigNotFound if the file does not exist.
func (l *Loader) Load(ctx context.Context, path string) (*StopgateConfig, error) {
	logger.FromContext(ctx).Debug("loading config file", "path", path)
	path = filepath.Clean(path)

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if l.fs.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg StopgateConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load reads and parses a gates.yaml configuration file using the real file system.
// Returns ErrConfigNotFound if the file does not exist.
func Load(ctx context.Context, path string) (*StopgateConfig, error) {
	return NewLoader(&RealFileSystem{}).Load(ctx, path)
}

// applyDefaults applies values from the defaults section to gates missing optional fields.
func applyDefaults(cfg *StopgateConfig) {
	for i := range cfg.Gates {
		g := &cfg.Gates[i]

		if g.Blocking == nil && cfg.Defaults.Blocking != nil {
			val := *cfg.Defaults.Blocking
			g.Blocking = &val
		}
	}
}

// validate checks that all gates have the required fields and unique names.
// Returns a joined error so users can fix every problem at once.
func validate(cfg *StopgateConfig) error {
	var errs []error
	seen := make(map[string]bool, len(cfg.Gates))
	for i, g := range cfg.Gates {
		if g.Name == "" {
			errs = append(errs, fmt.Errorf("gate at position %d: missing required field 'name'", i+1))
			continue
		}
		if seen[g.Name] {
			errs = append(errs, fmt.Errorf("gate %q: duplicate name", g.Name))
		}
		seen[g.Name] = true

		if g.Command == "" {
			errs = append(errs, fmt.Errorf("gate %q: missing required field 'command'", g.Name))
		}
	}
	if cfg.Defaults.OutputLimit < 0 {
		errs = append(errs, fmt.Errorf("defaults.output_limit must not be negative, got %d", cfg.Defaults.OutputLimit))
	}

	return errors.Join(errs...)
}
