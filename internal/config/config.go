package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lu-zhengda/appsweep/internal/utils"
	"gopkg.in/yaml.v3"
)

// Config holds all appsweep configuration.
type Config struct {
	AppDirs        []string      `yaml:"app_dirs"`
	LibraryDir     string        `yaml:"library_dir"`
	ExtraScanRoots []string      `yaml:"extra_scan_roots"`
	Exclude        []string      `yaml:"exclude"`
	Remove         RemoveConfig  `yaml:"remove"`
	History        HistoryConfig `yaml:"history"`
}

// RemoveConfig controls how removals treat a running application.
type RemoveConfig struct {
	QuitRunning bool   `yaml:"quit_running"`
	QuitWait    string `yaml:"quit_wait"`
}

// HistoryConfig toggles the removal log.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Warning describes a problem found while validating a config.
type Warning struct {
	Field      string
	Message    string
	Suggestion string
}

// Default returns a Config with all default values populated.
func Default() *Config {
	return &Config{
		AppDirs:        []string{"/Applications", "~/Applications"},
		LibraryDir:     "~/Library",
		ExtraScanRoots: []string{"HTTPStorages", "Cookies"},
		Exclude:        []string{},
		Remove: RemoveConfig{
			QuitRunning: true,
			QuitWait:    "2s",
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// DefaultPath returns ~/.config/appsweep/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "appsweep", "config.yaml"), nil
}

// Load loads config from the given path. If path is empty, it uses the
// default location. If the file does not exist, it creates it with default
// values.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	return LoadFrom(path)
}

// LoadFrom loads and parses config from the given path. Missing fields
// keep their default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAndValidate parses raw YAML and returns the config together with
// validation warnings. A parse failure is reported as a single warning and a
// nil config.
func LoadAndValidate(data []byte) (*Config, []Warning) {
	cfg, err := parse(data)
	if err != nil {
		return nil, []Warning{{Message: err.Error()}}
	}
	return cfg, cfg.Validate()
}

func parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save marshals the config to YAML and writes it to the given path,
// creating parent directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports settings that will be ignored or fall back to defaults.
func (c *Config) Validate() []Warning {
	var warnings []Warning

	if len(c.AppDirs) == 0 {
		warnings = append(warnings, Warning{
			Field:      "app_dirs",
			Message:    "no application directories configured",
			Suggestion: "add /Applications",
		})
	}
	if strings.TrimSpace(c.LibraryDir) == "" {
		warnings = append(warnings, Warning{
			Field:      "library_dir",
			Message:    "library directory is empty, ~/Library will be used",
			Suggestion: "library_dir: ~/Library",
		})
	}
	for _, root := range c.ExtraScanRoots {
		if filepath.IsAbs(root) || strings.Contains(root, "..") {
			warnings = append(warnings, Warning{
				Field:   "extra_scan_roots",
				Message: fmt.Sprintf("%q must be a directory name inside the library directory", root),
			})
		}
	}
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			warnings = append(warnings, Warning{
				Field:   "exclude",
				Message: fmt.Sprintf("invalid glob pattern %q", pattern),
			})
		}
	}
	if c.Remove.QuitWait != "" {
		if _, err := parseDuration(c.Remove.QuitWait); err != nil {
			warnings = append(warnings, Warning{
				Field:      "remove.quit_wait",
				Message:    fmt.Sprintf("cannot parse %q, using 2s", c.Remove.QuitWait),
				Suggestion: "use a value like 2s, 500ms or 1m",
			})
		}
	}
	return warnings
}

// AppRoots returns AppDirs with ~ expanded.
func (c *Config) AppRoots() []string {
	roots := make([]string, 0, len(c.AppDirs))
	for _, d := range c.AppDirs {
		roots = append(roots, utils.ExpandHome(d))
	}
	return roots
}

// Library returns the expanded library directory, ~/Library when unset.
func (c *Config) Library() string {
	if strings.TrimSpace(c.LibraryDir) == "" {
		return utils.LibraryPath("")
	}
	return utils.ExpandHome(c.LibraryDir)
}

// QuitWait returns how long to wait for a running application to exit.
func (c *Config) QuitWait() time.Duration {
	return ParseDuration(c.Remove.QuitWait)
}

// IsExcluded checks if the given path matches any of the configured exclude
// patterns. Patterns support doublestar globs ("**/com.apple.*") and are
// matched against the full path and against the base name. A leading ~ is
// expanded.
func (c *Config) IsExcluded(path string) bool {
	for _, pattern := range c.Exclude {
		pattern = utils.ExpandHome(pattern)

		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
		// Handle "dir/**" matching the directory itself.
		if strings.HasSuffix(pattern, "/**") && path == strings.TrimSuffix(pattern, "/**") {
			return true
		}
		if matched, _ := doublestar.Match(pattern, filepath.Base(path)); matched {
			return true
		}
	}
	return false
}

// ParseDuration parses duration strings like "2s", "500ms" or "1d" into
// time.Duration. Returns 2 seconds for empty or unparseable strings.
func ParseDuration(s string) time.Duration {
	d, err := parseDuration(s)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err == nil {
			if days < 0 {
				return 0, fmt.Errorf("negative duration %q", s)
			}
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}
