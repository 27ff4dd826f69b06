// internal/config/config.go
//
// This package handles configuration and the .crewdeck directory structure.
// Every directory crewdeck runs from gets a .crewdeck/ folder holding the
// config file, diagnostic logs, exported reports, and custom view profiles.
//
// Environment overrides are resolved here, once, at construction time. The
// rest of the codebase only ever sees the resulting Config value.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DeckDir is the name of the directory we create in each working directory.
	DeckDir = ".crewdeck"

	// DefaultBaseURL matches the command-center backend's default bind address.
	DefaultBaseURL = "http://localhost:5000"

	defaultProfileID      = "recruit"
	defaultTimeoutSeconds = 10
)

const defaultProjectConfigYAML = `# crewdeck configuration
version: 1

# Backend the dashboard talks to. CREWDECK_API_URL overrides base_url.
api:
  base_url: http://localhost:5000
  timeout_seconds: 10

# View profile: recruit | robotics | any descriptor in .crewdeck/profiles/.
# CREWDECK_PROFILE overrides.
profile: recruit

# Internal mode unlocks the sources and compliance tabs and swaps branding.
# CREWDECK_INTERNAL overrides.
internal: false

# Settings for the bundled demo server (crewdeck serve).
sim:
  host: 127.0.0.1
  port: 5000
`

// APIConfig describes how to reach the backend.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SimConfig configures the bundled demo server.
type SimConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Fixtures string `yaml:"fixtures,omitempty"`
}

// ProjectConfig models .crewdeck/config.yaml.
type ProjectConfig struct {
	Version  int       `yaml:"version"`
	API      APIConfig `yaml:"api"`
	Profile  string    `yaml:"profile"`
	Internal bool      `yaml:"internal"`
	Sim      SimConfig `yaml:"sim"`
}

// Config holds the runtime configuration for crewdeck.
type Config struct {
	// ProjectDir is the directory where the user ran `crewdeck` from.
	ProjectDir string

	// DeckProjectDir is ProjectDir/.crewdeck.
	DeckProjectDir string

	Project ProjectConfig
}

// InitDeckDir creates the .crewdeck directory structure in the given directory.
// It is called when the CLI starts up.
//
// Structure created:
// .crewdeck/
// ├── logs/      <- diagnostic logbook
// ├── reports/   <- exported compliance reports
// └── profiles/  <- custom view profile descriptors
func InitDeckDir(projectDir string) error {
	deckDir := filepath.Join(projectDir, DeckDir)

	dirs := []string{
		filepath.Join(deckDir, "logs"),
		filepath.Join(deckDir, "reports"),
		filepath.Join(deckDir, "profiles"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return ensureProjectConfig(filepath.Join(deckDir, "config.yaml"))
}

// NewConfig creates a Config populated from .crewdeck/config.yaml (when
// present) and CREWDECK_* environment overrides.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:     projectDir,
		DeckProjectDir: filepath.Join(projectDir, DeckDir),
		Project:        defaultProjectConfig(),
	}

	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	cfg.Project.normalize()
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DeckProjectDir, "logs")
}

// LogbookPath returns the diagnostic log file location.
func (c *Config) LogbookPath() string {
	return filepath.Join(c.LogsDir(), "crewdeck.log")
}

// ReportsDir returns the directory for exported report artifacts.
func (c *Config) ReportsDir() string {
	return filepath.Join(c.DeckProjectDir, "reports")
}

// ProfilesDir returns the directory holding custom profile descriptors.
func (c *Config) ProfilesDir() string {
	return filepath.Join(c.DeckProjectDir, "profiles")
}

// ProjectConfigPath returns the on-disk location for the config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.DeckProjectDir, "config.yaml")
}

// BaseURL returns the backend base URL, trailing slash trimmed.
func (c *Config) BaseURL() string {
	return c.Project.API.BaseURL
}

// APITimeout returns the per-request timeout for backend calls.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.Project.API.TimeoutSeconds) * time.Second
}

// ProfileID returns the configured view profile identifier.
func (c *Config) ProfileID() string {
	return c.Project.Profile
}

// InternalMode reports whether internal tabs and branding are enabled.
func (c *Config) InternalMode() bool {
	return c.Project.Internal
}

// SetProfile updates the configured profile and persists it back to
// .crewdeck/config.yaml so the next launch keeps the selection.
func (c *Config) SetProfile(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("config: profile id is required")
	}
	c.Project.Profile = id
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	c.Project = parsed
	return nil
}

func (c *Config) applyEnvOverrides() {
	if value := strings.TrimSpace(os.Getenv("CREWDECK_API_URL")); value != "" {
		c.Project.API.BaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv("CREWDECK_PROFILE")); value != "" {
		c.Project.Profile = value
	}
	if value := strings.TrimSpace(os.Getenv("CREWDECK_INTERNAL")); value != "" {
		if internal, err := strconv.ParseBool(value); err == nil {
			c.Project.Internal = internal
		}
	}
	if value := strings.TrimSpace(os.Getenv("CREWDECK_SIM_HOST")); value != "" {
		c.Project.Sim.Host = value
	}
	if value := strings.TrimSpace(os.Getenv("CREWDECK_SIM_PORT")); value != "" {
		if port, err := strconv.Atoi(value); err == nil && port >= 0 && port <= 65535 {
			c.Project.Sim.Port = port
		}
	}
}

func defaultProjectConfig() ProjectConfig {
	cfg := ProjectConfig{}
	cfg.applyDefaults()
	return cfg
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.API.BaseURL) == "" {
		pc.API.BaseURL = DefaultBaseURL
	}
	if pc.API.TimeoutSeconds == 0 {
		pc.API.TimeoutSeconds = defaultTimeoutSeconds
	}
	if strings.TrimSpace(pc.Profile) == "" {
		pc.Profile = defaultProfileID
	}
	if strings.TrimSpace(pc.Sim.Host) == "" {
		pc.Sim.Host = "127.0.0.1"
	}
	if pc.Sim.Port == 0 {
		pc.Sim.Port = 5000
	}
}

func (pc *ProjectConfig) normalize() {
	pc.API.BaseURL = strings.TrimRight(strings.TrimSpace(pc.API.BaseURL), "/")
	pc.Profile = strings.ToLower(strings.TrimSpace(pc.Profile))
	pc.Sim.Host = strings.TrimSpace(pc.Sim.Host)
	pc.Sim.Fixtures = strings.TrimSpace(pc.Sim.Fixtures)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	parsed, err := url.Parse(pc.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", pc.API.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("api.base_url is missing a host")
	}
	if pc.API.TimeoutSeconds < 0 {
		return fmt.Errorf("api.timeout_seconds must not be negative")
	}
	if strings.TrimSpace(pc.Profile) == "" {
		return fmt.Errorf("profile is required")
	}
	if pc.Sim.Port < 0 || pc.Sim.Port > 65535 {
		return fmt.Errorf("sim.port must be between 0 and 65535")
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.DeckProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure deck dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
