package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"

	"github.com/bft-labs/wabridge/internal/ports"
)

// Process clears readiness when the process is about to die, so the marker
// file never outlives the session it describes.
type Process struct {
	readiness *Readiness
	history   ports.HistoryLog
	logger    ports.Logger
	signals   []os.Signal

	// exit terminates the process; replaced in tests.
	exit func(code int)

	mu     sync.Mutex
	signal os.Signal
}

// NewProcess creates a process lifecycle manager that reacts to signals.
func NewProcess(readiness *Readiness, history ports.HistoryLog, logger ports.Logger, signals ...os.Signal) *Process {
	return &Process{
		readiness: readiness,
		history:   history,
		logger:    logger,
		signals:   signals,
		exit:      os.Exit,
	}
}

// NotifyContext returns a context that is canceled on the first termination
// signal. Readiness is cleared before the context is canceled.
func (p *Process) NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	if len(p.signals) == 0 {
		return ctx, cancel
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, p.signals...)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			p.mu.Lock()
			p.signal = sig
			p.mu.Unlock()
			p.Shutdown("Received " + signalName(sig) + ", cleaning up...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// Signal returns the signal that triggered shutdown, or nil.
func (p *Process) Signal() os.Signal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signal
}

// Shutdown clears readiness and records why.
func (p *Process) Shutdown(cause string) {
	p.logger.Info("shutting down", ports.String("cause", cause))
	_ = p.history.Log(cause)
	p.readiness.MarkNotReady("shutdown")
}

// Fatal records an unexpected fault, clears readiness and exits with status 1.
func (p *Process) Fatal(fault any, stack []byte) {
	detail := fmt.Sprint(fault)
	if len(stack) > 0 {
		detail += "\n" + string(stack)
	}
	p.logger.Error("fatal error", ports.String("fault", fmt.Sprint(fault)))
	_ = p.history.Log("Uncaught exception: " + detail)
	p.readiness.MarkNotReady("fatal error")
	p.exit(1)
}

// Go runs fn in a goroutine and treats a panic in it as fatal.
func (p *Process) Go(fn func()) {
	go func() {
		defer p.Recover()
		fn()
	}()
}

// Recover must be deferred directly. It turns a panic into Fatal.
func (p *Process) Recover() {
	if r := recover(); r != nil {
		p.Fatal(r, debug.Stack())
	}
}

func signalName(sig os.Signal) string {
	switch sig.String() {
	case "interrupt":
		return "SIGINT"
	case "terminated":
		return "SIGTERM"
	case "hangup":
		return "SIGHUP"
	}
	return sig.String()
}
