package cliconfig

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/bft-labs/wabridge/internal/adapters/fs"
	"github.com/bft-labs/wabridge/internal/domain"
)

// DefaultPort is the HTTP listen port when neither PORT nor a flag is set.
const DefaultPort = 4000

// Default file layout under Home.
const (
	DefaultSessionDir = "session"
	DefaultUploadDir  = "uploads"
	DefaultLogFile    = "logs/history.log"
)

// Config holds CLI configuration for wabridge.
type Config struct {
	Home string
	Port int

	MarkerPath string
	SessionDir string
	UploadDir  string
	LogFile    string

	LogLevel      string
	LogMaxSizeMB  int
	LogMaxBackups int

	SendTimeout     time.Duration
	ShutdownTimeout time.Duration

	// MaxUploadSize is human readable ("20MiB"); Validate fills MaxUploadBytes.
	MaxUploadSize  string
	MaxUploadBytes int64

	CORSOrigins []string
	Metrics     bool
	DeviceName  string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Home:            ".",
		Port:            DefaultPort,
		LogLevel:        "info",
		LogMaxBackups:   3,
		SendTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxUploadSize:   "20MiB",
		Metrics:         true,
		DeviceName:      "wabridge",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Home == "" {
		c.Home = "."
	}

	// Derived layout
	if c.MarkerPath == "" {
		c.MarkerPath = filepath.Join(c.Home, fs.DefaultMarkerName)
	}
	if c.SessionDir == "" {
		c.SessionDir = filepath.Join(c.Home, DefaultSessionDir)
	}
	if c.UploadDir == "" {
		c.UploadDir = filepath.Join(c.Home, DefaultUploadDir)
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.Home, filepath.FromSlash(DefaultLogFile))
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", domain.ErrInvalidConfig, c.Port)
	}
	if c.SendTimeout < 0 {
		return fmt.Errorf("%w: send timeout must not be negative", domain.ErrInvalidConfig)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.LogMaxSizeMB < 0 || c.LogMaxBackups < 0 {
		return fmt.Errorf("%w: log rotation values must not be negative", domain.ErrInvalidConfig)
	}

	if c.MaxUploadSize != "" {
		n, err := humanize.ParseBytes(c.MaxUploadSize)
		if err != nil {
			return fmt.Errorf("%w: max upload size %q: %v", domain.ErrInvalidConfig, c.MaxUploadSize, err)
		}
		c.MaxUploadBytes = int64(n)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: max upload size must be positive", domain.ErrInvalidConfig)
	}

	c.CORSOrigins = cleanList(c.CORSOrigins)

	return nil
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func cleanList(in []string) []string {
	var out []string
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setList sets a string list if not empty and flag not changed.
func (s *configSetter) setList(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]string(nil), value...)
}

// setDuration parses and sets a duration from string if valid and flag not changed.
// "0" is accepted and means "no limit" where the setting allows it.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
