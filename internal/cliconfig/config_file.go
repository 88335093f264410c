package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations and sizes to make
// TOML friendly.
type FileConfig struct {
	Home            string   `toml:"home"`
	Port            int      `toml:"port"`
	MarkerPath      string   `toml:"marker_path"`
	SessionDir      string   `toml:"session_dir"`
	UploadDir       string   `toml:"upload_dir"`
	LogFile         string   `toml:"log_file"`
	LogLevel        string   `toml:"log_level"`
	LogMaxSizeMB    int      `toml:"log_max_size_mb"`
	LogMaxBackups   int      `toml:"log_max_backups"`
	SendTimeout     string   `toml:"send_timeout"`
	ShutdownTimeout string   `toml:"shutdown_timeout"`
	MaxUploadSize   string   `toml:"max_upload_size"`
	CORSOrigins     []string `toml:"cors_origins"`
	Metrics         *bool    `toml:"metrics"`
	DeviceName      string   `toml:"device_name"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.wabridge/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".wabridge", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("home", fc.Home, &cfg.Home)
	s.setString("marker", fc.MarkerPath, &cfg.MarkerPath)
	s.setString("session-dir", fc.SessionDir, &cfg.SessionDir)
	s.setString("upload-dir", fc.UploadDir, &cfg.UploadDir)
	s.setString("log-file", fc.LogFile, &cfg.LogFile)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("max-upload-size", fc.MaxUploadSize, &cfg.MaxUploadSize)
	s.setString("device-name", fc.DeviceName, &cfg.DeviceName)

	if err := s.setDuration("send-timeout", fc.SendTimeout, &cfg.SendTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}

	s.setInt("port", fc.Port, &cfg.Port)
	s.setInt("log-max-size", fc.LogMaxSizeMB, &cfg.LogMaxSizeMB)
	s.setInt("log-max-backups", fc.LogMaxBackups, &cfg.LogMaxBackups)

	s.setList("cors-origin", fc.CORSOrigins, &cfg.CORSOrigins)
	s.setBool("metrics", fc.Metrics, &cfg.Metrics)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
