package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bft-labs/wabridge/internal/domain"
	"github.com/bft-labs/wabridge/internal/ports"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

// mockMarker tracks marker existence in memory.
type mockMarker struct {
	mu      sync.Mutex
	exists  bool
	sets    int
	clears  int
	failSet error
}

func (m *mockMarker) SetReady() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.failSet != nil {
		return m.failSet
	}
	m.exists = true
	return nil
}

func (m *mockMarker) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.exists = false
	return nil
}

func (m *mockMarker) Exists() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exists
}

// mockHistory records history lines.
type mockHistory struct {
	mu    sync.Mutex
	lines []string
}

func (h *mockHistory) Log(message string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lines = append(h.lines, message)
	return nil
}

func (h *mockHistory) Lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.lines...)
}

func (h *mockHistory) Contains(substr string) bool {
	for _, l := range h.Lines() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

// mockSession records sends and optionally fails them.
type mockSession struct {
	mu      sync.Mutex
	texts   []sentText
	media   []sentMedia
	sendErr error
	block   bool
}

type sentText struct {
	target domain.Target
	text   string
}

type sentMedia struct {
	target domain.Target
	media  domain.Media
}

func (s *mockSession) Start(ctx context.Context, events chan<- domain.Event) error { return nil }
func (s *mockSession) Close() error                                                { return nil }

func (s *mockSession) SendText(ctx context.Context, target domain.Target, text string) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.texts = append(s.texts, sentText{target, text})
	return nil
}

func (s *mockSession) SendMedia(ctx context.Context, target domain.Target, media domain.Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.media = append(s.media, sentMedia{target, media})
	return nil
}

func (s *mockSession) Texts() []sentText {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentText{}, s.texts...)
}

func (s *mockSession) Media() []sentMedia {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMedia{}, s.media...)
}

// mockEmitter tracks readiness and send events.
type mockEmitter struct {
	mu          sync.Mutex
	transitions []readinessChange
	successes   []string
	failures    []string
}

type readinessChange struct {
	previous bool
	current  bool
	reason   string
}

func (m *mockEmitter) OnReadinessChange(previous, current bool, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, readinessChange{previous, current, reason})
}

func (m *mockEmitter) OnSendSuccess(kind string, bytes int64, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.successes = append(m.successes, kind)
}

func (m *mockEmitter) OnSendError(kind string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, kind)
}

func (m *mockEmitter) Transitions() []readinessChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]readinessChange{}, m.transitions...)
}

// mockQR records rendered codes.
type mockQR struct {
	codes []string
	err   error
}

func (q *mockQR) Render(code string) error {
	q.codes = append(q.codes, code)
	return q.err
}

// fakeUpload is an in-memory Upload.
type fakeUpload struct {
	name    string
	data    []byte
	size    int64
	readErr error
}

func (u *fakeUpload) Name() string { return u.name }

func (u *fakeUpload) Size() int64 {
	if u.size > 0 {
		return u.size
	}
	return int64(len(u.data))
}

func (u *fakeUpload) ReadAll() ([]byte, error) {
	if u.readErr != nil {
		return nil, u.readErr
	}
	return u.data, nil
}

var errTransport = errors.New("transport closed")

func newTestReadiness(marker *mockMarker, history *mockHistory, emitter ReadinessEmitter) *Readiness {
	return NewReadiness(marker, history, mockLogger{}, emitter)
}
