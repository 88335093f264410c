package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// HistoryTimeFormat is the timestamp layout of history lines.
const HistoryTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// HistoryConfig configures the history log.
type HistoryConfig struct {
	// Path of the history file. Empty means console-only.
	Path string
	// MaxSizeMB enables rotation when positive.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept.
	MaxBackups int
	// Echo receives a console copy of every line. May be nil.
	Echo io.Writer
}

// History implements ports.HistoryLog. Each line is written to the history
// file as "[<UTC timestamp>] <message>".
type History struct {
	mu   sync.Mutex
	out  *captureWriter
	file io.Closer
	log  zerolog.Logger
	echo zerolog.Logger
	now  func() time.Time
}

// OpenHistory opens the history file described by cfg. If the file cannot be
// opened the returned History is still usable but only echoes to the console;
// the error reports why.
func OpenHistory(cfg HistoryConfig) (*History, error) {
	if cfg.Path == "" {
		return newHistory(nil, nil, cfg.Echo), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return newHistory(nil, nil, cfg.Echo), fmt.Errorf("create log dir: %w", err)
	}

	if cfg.MaxSizeMB > 0 {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		return newHistory(rotator, rotator, cfg.Echo), nil
	}

	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return newHistory(nil, nil, cfg.Echo), fmt.Errorf("open history log: %w", err)
	}
	return newHistory(f, f, cfg.Echo), nil
}

func newHistory(w io.Writer, closer io.Closer, echo io.Writer) *History {
	h := &History{
		file: closer,
		log:  zerolog.Nop(),
		echo: zerolog.Nop(),
		now:  time.Now,
	}

	if w != nil {
		h.out = &captureWriter{w: w}
		h.log = zerolog.New(zerolog.ConsoleWriter{
			Out:             h.out,
			NoColor:         true,
			PartsOrder:      []string{zerolog.TimestampFieldName, zerolog.MessageFieldName},
			FormatTimestamp: func(i interface{}) string { return fmt.Sprintf("[%s]", i) },
		})
	}

	if echo != nil {
		h.echo = zerolog.New(zerolog.ConsoleWriter{
			Out:        echo,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}

	return h
}

// Log appends message to the history file and echoes it to the console.
// A write failure is echoed and returned; the next line tries the file again.
func (h *History) Log(message string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.echo.Info().Msg(message)

	if h.out == nil {
		return nil
	}

	h.out.err = nil
	h.log.Log().
		Str(zerolog.TimestampFieldName, h.now().UTC().Format(HistoryTimeFormat)).
		Msg(message)

	if err := h.out.err; err != nil {
		h.echo.Error().Err(err).Msg("Failed to write log")
		return err
	}
	return nil
}

// Close closes the history file.
func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.file == nil {
		return nil
	}
	err := h.file.Close()
	h.file = nil
	h.out = nil
	return err
}

// captureWriter records the last write error instead of handing it to
// zerolog, which would print it to stderr on its own.
type captureWriter struct {
	w   io.Writer
	err error
}

func (c *captureWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(p); err != nil {
		c.err = err
	}
	return len(p), nil
}
