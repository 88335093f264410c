package wabridge

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bft-labs/wabridge/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/wabridge/internal/adapters/http"
	logAdapter "github.com/bft-labs/wabridge/internal/adapters/log"
	"github.com/bft-labs/wabridge/internal/adapters/metrics"
	"github.com/bft-labs/wabridge/internal/adapters/whatsapp"
	"github.com/bft-labs/wabridge/internal/app"
	"github.com/bft-labs/wabridge/internal/cliconfig"
	"github.com/bft-labs/wabridge/internal/domain"
	"github.com/bft-labs/wabridge/internal/ports"
)

// Config holds the bridge configuration.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// eventBuffer bounds how far the session may run ahead of the controller.
const eventBuffer = 64

// Bridge wires a session client to the readiness state, the marker file and
// the HTTP API. Use New() to create an instance.
type Bridge struct {
	config Config
	opts   options
	logger ports.Logger

	lifecycle *app.Lifecycle
	readiness *app.Readiness
	process   *app.Process
	history   *logAdapter.History
	marker    *fs.MarkerFile
	staging   *fs.Staging
	recorder  *metrics.Recorder

	mu      sync.Mutex
	session ports.SessionClient
	errCh   chan error
}

// New creates a bridge in StateStopped. Nothing touches the network until
// Start or Run. The history log is opened here; if it cannot be, history
// lines only go to the console.
func New(cfg Config, opts ...Option) (*Bridge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := logAdapter.NewZerologAdapter(o.logger)

	history, err := logAdapter.OpenHistory(logAdapter.HistoryConfig{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Echo:       o.console,
	})
	if err != nil {
		logger.Warn("history log unavailable, console only", ports.String("path", cfg.LogFile), ports.Err(err))
	}

	var recorder *metrics.Recorder
	var readinessEmitter app.ReadinessEmitter
	if cfg.Metrics {
		recorder = metrics.NewRecorder()
		readinessEmitter = recorder
	}

	var stateEmit app.StateEmitter
	if o.stateHandler != nil {
		stateEmit = stateEmitter{fn: o.stateHandler}
	}

	marker := fs.NewMarkerFile(cfg.MarkerPath)
	readiness := app.NewReadiness(marker, history, logger, readinessEmitter)

	return &Bridge{
		config:    cfg,
		opts:      o,
		logger:    logger,
		lifecycle: app.NewLifecycle(logger, stateEmit),
		readiness: readiness,
		process:   app.NewProcess(readiness, history, logger, o.signals...),
		history:   history,
		marker:    marker,
		staging:   fs.NewStaging(cfg.UploadDir),
		recorder:  recorder,
	}, nil
}

// Run starts the bridge and blocks until ctx is canceled, a shutdown signal
// arrives or a worker fails. The marker is cleared before Run returns.
// A panic on the calling goroutine is treated as fatal and exits the process.
func (b *Bridge) Run(ctx context.Context) error {
	defer b.process.Recover()

	ctx, stop := b.process.NotifyContext(ctx)
	defer stop()

	if err := b.Start(ctx); err != nil {
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		if sig := b.process.Signal(); sig != nil {
			b.logger.Info("shutdown signal received", ports.String("signal", sig.String()))
		}
	case runErr = <-b.errCh:
		b.logger.Error("bridge worker failed", ports.Err(runErr))
	}

	if err := b.Stop(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Start prepares the on-disk layout, connects the session and starts serving
// the HTTP API in the background. It returns once the session connection has
// been started; the session becomes ready asynchronously.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := b.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	b.prepare()

	session, err := b.openSession(ctx)
	if err != nil {
		_ = b.lifecycle.TransitionTo(app.StateCrashed, "session open failed")
		return err
	}
	b.session = session

	var sendEmitter app.SendEventEmitter
	var metricsHandler http.Handler
	if b.recorder != nil {
		sendEmitter = b.recorder
		metricsHandler = b.recorder.Handler()
	}

	sender := app.NewSender(app.SenderConfig{
		Timeout:        b.config.SendTimeout,
		MaxUploadBytes: b.config.MaxUploadBytes,
	}, b.readiness, session, b.history, b.logger, sendEmitter)

	var qr ports.QRRenderer
	if b.opts.qrWriter != nil {
		qr = whatsapp.NewTerminalQR(b.opts.qrWriter)
	}
	commands := app.NewCommands(app.CommandsConfig{
		Timeout: b.config.SendTimeout,
		Go:      b.spawn,
	}, session, b.history, b.logger)
	controller := app.NewController(b.readiness, b.history, qr, commands, b.logger)

	server := httpAdapter.NewServer(httpAdapter.Config{
		Addr:            b.config.Addr(),
		CORSOrigins:     b.config.CORSOrigins,
		ShutdownTimeout: b.config.ShutdownTimeout,
		Metrics:         metricsHandler,
	}, sender, b.staging, b.logger)

	runCtx, cancel := context.WithCancel(ctx)
	b.lifecycle.SetCancel(cancel)
	b.errCh = make(chan error, 2)
	events := make(chan domain.Event, eventBuffer)

	b.spawn(func() {
		if err := controller.Run(runCtx, events); err != nil && runCtx.Err() == nil {
			b.errCh <- fmt.Errorf("session controller: %w", err)
		}
	})
	b.spawn(func() {
		var err error
		if b.opts.listener != nil {
			err = server.Serve(runCtx, b.opts.listener)
		} else {
			err = server.Run(runCtx)
		}
		if err != nil {
			b.errCh <- fmt.Errorf("http api: %w", err)
		}
	})

	if err := session.Start(runCtx, events); err != nil {
		cancel()
		_ = session.Close()
		_ = b.lifecycle.WaitWithTimeout(b.config.ShutdownTimeout)
		_ = b.lifecycle.TransitionTo(app.StateCrashed, "session start failed")
		return fmt.Errorf("start session: %w", err)
	}

	return b.lifecycle.TransitionTo(app.StateRunning, "session started")
}

// Stop disconnects the session, shuts the HTTP API down and clears the
// marker. Returns ErrShutdownTimeout if workers did not exit in time.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.lifecycle.CanStop() {
		return domain.ErrNotRunning
	}
	if err := b.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		return err
	}

	b.readiness.MarkNotReady("stopped")
	b.lifecycle.Cancel()

	if b.session != nil {
		if err := b.session.Close(); err != nil {
			b.logger.Warn("session close failed", ports.Err(err))
		}
	}

	err := b.lifecycle.WaitWithTimeout(b.config.ShutdownTimeout)

	// Covers a ready event that raced the cancel.
	b.readiness.MarkNotReady("stopped")

	if err != nil {
		_ = b.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = b.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

// Close releases the history log. Call it after Stop or Run returns.
func (b *Bridge) Close() error {
	return b.history.Close()
}

// Ready reports whether the session currently accepts sends.
func (b *Bridge) Ready() bool {
	return b.readiness.Ready()
}

// Status returns the current run state.
// Safe to call concurrently from any goroutine.
func (b *Bridge) Status() State {
	return convertState(b.lifecycle.State())
}

// MarkerPath returns the path of the readiness marker file.
func (b *Bridge) MarkerPath() string {
	return b.marker.Path()
}

// prepare clears a stale marker and creates the working directories.
// Failures are logged; the bridge still starts.
func (b *Bridge) prepare() {
	if err := b.marker.Clear(); err != nil {
		b.logger.Warn("stale marker not cleared", ports.String("path", b.marker.Path()), ports.Err(err))
	}

	if err := b.staging.Ensure(); err != nil {
		b.logger.Warn("upload dir unavailable", ports.String("dir", b.staging.Dir()), ports.Err(err))
	} else if n, err := b.staging.Sweep(); err != nil {
		b.logger.Warn("upload sweep failed", ports.String("dir", b.staging.Dir()), ports.Err(err))
	} else if n > 0 {
		b.logger.Info("removed stale uploads", ports.Int("count", n))
	}

	if err := os.MkdirAll(b.config.SessionDir, 0o700); err != nil {
		b.logger.Warn("session dir unavailable", ports.String("dir", b.config.SessionDir), ports.Err(err))
	}
}

func (b *Bridge) openSession(ctx context.Context) (ports.SessionClient, error) {
	if b.opts.session != nil {
		return b.opts.session, nil
	}
	return whatsapp.NewClient(ctx, whatsapp.Config{
		SessionDir: b.config.SessionDir,
		DeviceName: b.config.DeviceName,
		Go:         b.process.Go,
	}, b.protocolLogger(), b.logger)
}

func (b *Bridge) protocolLogger() zerolog.Logger {
	return b.opts.logger.With().Str("component", "whatsapp").Logger()
}

// spawn runs fn as a tracked worker. A panic in fn is fatal.
func (b *Bridge) spawn(fn func()) {
	b.lifecycle.AddWorker()
	b.process.Go(func() {
		defer b.lifecycle.WorkerDone()
		fn()
	})
}
