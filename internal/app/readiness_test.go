package app

import (
	"errors"
	"testing"
)

func TestNewReadiness(t *testing.T) {
	r := newTestReadiness(&mockMarker{}, &mockHistory{}, nil)

	if r == nil {
		t.Fatal("NewReadiness returned nil")
	}
	if r.Ready() {
		t.Error("initial readiness = true, want false")
	}
}

func TestReadiness_MarkerFollowsValue(t *testing.T) {
	tests := []struct {
		name  string
		steps []bool
	}{
		{"ready", []bool{true}},
		{"ready then not ready", []bool{true, false}},
		{"not ready is idempotent", []bool{false, false}},
		{"ready is idempotent", []bool{true, true}},
		{"flapping", []bool{true, false, true, false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker := &mockMarker{}
			r := newTestReadiness(marker, &mockHistory{}, nil)

			for i, ready := range tt.steps {
				if ready {
					r.MarkReady("test")
				} else {
					r.MarkNotReady("test")
				}
				if r.Ready() != ready {
					t.Fatalf("step %d: Ready() = %v, want %v", i, r.Ready(), ready)
				}
				if marker.Exists() != ready {
					t.Fatalf("step %d: marker exists = %v, want %v", i, marker.Exists(), ready)
				}
			}
		})
	}
}

func TestReadiness_EmitsOnlyOnChange(t *testing.T) {
	emitter := &mockEmitter{}
	r := newTestReadiness(&mockMarker{}, &mockHistory{}, emitter)

	r.MarkNotReady("boot")
	r.MarkReady("session ready")
	r.MarkReady("session ready again")
	r.MarkNotReady("disconnected")

	events := emitter.Transitions()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].previous || !events[0].current || events[0].reason != "session ready" {
		t.Errorf("event 0 = %+v, want false->true (session ready)", events[0])
	}
	if !events[1].previous || events[1].current || events[1].reason != "disconnected" {
		t.Errorf("event 1 = %+v, want true->false (disconnected)", events[1])
	}
}

func TestReadiness_MarkerFailureIsNotFatal(t *testing.T) {
	marker := &mockMarker{failSet: errors.New("read-only filesystem")}
	history := &mockHistory{}
	r := newTestReadiness(marker, history, nil)

	r.MarkReady("session ready")

	if !r.Ready() {
		t.Error("in-memory readiness must survive a marker failure")
	}
	if !history.Contains("Failed to set ready marker: read-only filesystem") {
		t.Errorf("marker failure not logged, history = %v", history.Lines())
	}
}
