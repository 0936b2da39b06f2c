// ABOUTME: Configuration loading for fleetdeck
// ABOUTME: Supports YAML and TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/fleetdeck/fleetdeck/internal/poll"
)

// Config represents the complete fleetdeck configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Poll      PollConfig      `yaml:"poll" toml:"poll"`
	Reconnect ReconnectConfig `yaml:"reconnect" toml:"reconnect"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// ServerConfig locates the orchestrator endpoints.
type ServerConfig struct {
	// BaseURL is the REST API root, e.g. http://localhost:8000
	BaseURL string `yaml:"base_url" toml:"base_url"`
	// StreamURL is the push event stream endpoint, e.g. ws://localhost:8000/ws/events
	StreamURL string `yaml:"stream_url" toml:"stream_url"`
	// Token is an optional bearer token; ${VAR} expansion makes env-sourced
	// tokens convenient.
	Token string `yaml:"token" toml:"token"`
}

// PollConfig holds the pull cadence per resource, as duration strings.
type PollConfig struct {
	Intervals map[string]string `yaml:"intervals" toml:"intervals"`

	// Parsed schedule, populated by Load.
	Schedule poll.Schedule `yaml:"-" toml:"-"`
}

// ReconnectConfig tunes the push channel retry policy.
type ReconnectConfig struct {
	MaxAttempts int           `yaml:"max_attempts" toml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"-" toml:"-"`
	MaxDelay    time.Duration `yaml:"-" toml:"-"`

	// Raw string values for unmarshaling
	BaseDelayRaw string `yaml:"base_delay" toml:"base_delay"`
	MaxDelayRaw  string `yaml:"max_delay" toml:"max_delay"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed
// Config. The format is chosen by extension: .toml is TOML, everything else
// is YAML. Environment variables in the format ${VAR_NAME} are expanded, and
// duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if filepath.Ext(path) == ".toml" {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and
// valid. Returns an error describing the first validation failure.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("server.base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.base_url must use http or https scheme")
	}

	if c.Server.StreamURL == "" {
		return fmt.Errorf("server.stream_url is required")
	}
	su, err := url.Parse(c.Server.StreamURL)
	if err != nil {
		return fmt.Errorf("server.stream_url is not a valid URL: %w", err)
	}
	if su.Scheme != "ws" && su.Scheme != "wss" {
		return fmt.Errorf("server.stream_url must use ws or wss scheme")
	}

	if c.Reconnect.MaxAttempts < 0 {
		return fmt.Errorf("reconnect.max_attempts must not be negative")
	}

	return nil
}

// parseDurations converts raw duration strings into their typed fields.
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Reconnect.BaseDelayRaw != "" {
		cfg.Reconnect.BaseDelay, err = time.ParseDuration(cfg.Reconnect.BaseDelayRaw)
		if err != nil {
			return fmt.Errorf("parsing base_delay %q: %w", cfg.Reconnect.BaseDelayRaw, err)
		}
	}

	if cfg.Reconnect.MaxDelayRaw != "" {
		cfg.Reconnect.MaxDelay, err = time.ParseDuration(cfg.Reconnect.MaxDelayRaw)
		if err != nil {
			return fmt.Errorf("parsing max_delay %q: %w", cfg.Reconnect.MaxDelayRaw, err)
		}
	}

	if len(cfg.Poll.Intervals) > 0 {
		schedule := make(poll.Schedule, len(cfg.Poll.Intervals))
		for resource, raw := range cfg.Poll.Intervals {
			interval, err := time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("parsing poll interval for %s %q: %w", resource, raw, err)
			}
			schedule[poll.Resource(resource)] = interval
		}
		cfg.Poll.Schedule = schedule
	}

	return nil
}

// Schedule returns the configured polling schedule, or the default cadence
// when the config does not set one.
func (c *Config) Schedule() poll.Schedule {
	if len(c.Poll.Schedule) > 0 {
		return c.Poll.Schedule
	}
	return poll.DefaultSchedule()
}
