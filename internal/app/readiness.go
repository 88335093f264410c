package app

import (
	"sync"

	"github.com/bft-labs/wabridge/internal/ports"
)

// ReadinessEmitter is called when the readiness value changes.
type ReadinessEmitter interface {
	OnReadinessChange(previous, current bool, reason string)
}

// Readiness owns the process-wide "session usable" flag and keeps the marker
// file in lockstep with it. The marker is updated while the lock is held, so
// readers never observe a value whose marker update is still pending.
type Readiness struct {
	mu      sync.RWMutex
	ready   bool
	marker  ports.MarkerStore
	history ports.HistoryLog
	logger  ports.Logger
	emitter ReadinessEmitter
}

// NewReadiness creates a readiness flag that starts out false.
// emitter may be nil.
func NewReadiness(marker ports.MarkerStore, history ports.HistoryLog, logger ports.Logger, emitter ReadinessEmitter) *Readiness {
	return &Readiness{
		marker:  marker,
		history: history,
		logger:  logger,
		emitter: emitter,
	}
}

// Ready returns the current value.
func (r *Readiness) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

// MarkReady sets the flag and writes the marker.
func (r *Readiness) MarkReady(reason string) {
	r.set(true, reason)
}

// MarkNotReady clears the flag and removes the marker.
func (r *Readiness) MarkNotReady(reason string) {
	r.set(false, reason)
}

func (r *Readiness) set(ready bool, reason string) {
	r.mu.Lock()
	previous := r.ready
	r.ready = ready

	var err error
	if ready {
		err = r.marker.SetReady()
	} else {
		err = r.marker.Clear()
	}
	r.mu.Unlock()

	// Marker failures are reported, never propagated: the in-memory value
	// stays authoritative for request handling.
	if err != nil {
		op := "clear"
		if ready {
			op = "set"
		}
		r.logger.Error("ready marker update failed", ports.String("op", op), ports.Err(err))
		_ = r.history.Log("Failed to " + op + " ready marker: " + err.Error())
	}

	if previous == ready {
		return
	}

	// Emit event outside of lock
	if r.emitter != nil {
		r.emitter.OnReadinessChange(previous, ready, reason)
	}

	r.logger.Info("readiness transition",
		ports.Bool("from", previous),
		ports.Bool("to", ready),
		ports.String("reason", reason),
	)
}
