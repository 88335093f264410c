package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/wabridge/internal/ports"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapter(zerolog.New(&buf))

	z.Info("file sent",
		ports.String("target", "1@c.us"),
		ports.Int("attempt", 1),
		ports.Int64("bytes", 2048),
		ports.Bool("group", false),
		ports.Duration("duration", 1500*time.Millisecond),
		ports.Err(errors.New("boom")),
	)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}

	checks := map[string]any{
		"level":    "info",
		"message":  "file sent",
		"target":   "1@c.us",
		"attempt":  float64(1),
		"bytes":    float64(2048),
		"group":    false,
		"duration": float64(1500),
		"error":    "boom",
	}
	for k, want := range checks {
		if got[k] != want {
			t.Errorf("%s = %v, want %v", k, got[k], want)
		}
	}
}

func TestZerologAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapter(zerolog.New(&buf).Level(zerolog.WarnLevel))

	z.Debug("hidden")
	z.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("unexpected output %q", buf.String())
	}
	z.Warn("shown")
	if buf.Len() == 0 {
		t.Fatal("warn not written")
	}
}
