package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables: PORT and
// WABRIDGE_*. WABRIDGE_PORT wins over PORT.
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setIntFromString("port", os.Getenv("PORT"), &cfg.Port); err != nil {
		return err
	}
	if err := s.setIntFromString("port", os.Getenv("WABRIDGE_PORT"), &cfg.Port); err != nil {
		return err
	}

	s.setString("home", os.Getenv("WABRIDGE_HOME"), &cfg.Home)
	s.setString("marker", os.Getenv("WABRIDGE_MARKER_PATH"), &cfg.MarkerPath)
	s.setString("session-dir", os.Getenv("WABRIDGE_SESSION_DIR"), &cfg.SessionDir)
	s.setString("upload-dir", os.Getenv("WABRIDGE_UPLOAD_DIR"), &cfg.UploadDir)
	s.setString("log-file", os.Getenv("WABRIDGE_LOG_FILE"), &cfg.LogFile)
	s.setString("log-level", os.Getenv("WABRIDGE_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("max-upload-size", os.Getenv("WABRIDGE_MAX_UPLOAD_SIZE"), &cfg.MaxUploadSize)
	s.setString("device-name", os.Getenv("WABRIDGE_DEVICE_NAME"), &cfg.DeviceName)

	if err := s.setDuration("send-timeout", os.Getenv("WABRIDGE_SEND_TIMEOUT"), &cfg.SendTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv("WABRIDGE_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("log-max-size", os.Getenv("WABRIDGE_LOG_MAX_SIZE_MB"), &cfg.LogMaxSizeMB); err != nil {
		return err
	}
	if err := s.setIntFromString("log-max-backups", os.Getenv("WABRIDGE_LOG_MAX_BACKUPS"), &cfg.LogMaxBackups); err != nil {
		return err
	}

	if v := os.Getenv("WABRIDGE_CORS_ORIGINS"); v != "" {
		s.setList("cors-origin", cleanList([]string{v}), &cfg.CORSOrigins)
	}
	s.setBoolFromString("metrics", os.Getenv("WABRIDGE_METRICS"), &cfg.Metrics)

	return nil
}
