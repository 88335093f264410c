package wabridge

import (
	"io"
	"net"
	"os"

	"github.com/rs/zerolog"

	"github.com/bft-labs/wabridge/internal/domain"
	"github.com/bft-labs/wabridge/internal/ports"
)

// SessionClient is the chat session driven by the bridge.
type SessionClient = ports.SessionClient

// Event is a session lifecycle event or inbound message.
type Event = domain.Event

// Option configures optional behavior of a Bridge.
type Option func(*options)

type options struct {
	logger       zerolog.Logger
	session      SessionClient
	qrWriter     io.Writer
	console      io.Writer
	listener     net.Listener
	signals      []os.Signal
	stateHandler func(previous, current State, reason string)
}

func defaultOptions() options {
	return options{
		logger:   zerolog.Nop(),
		qrWriter: os.Stdout,
		console:  os.Stdout,
		signals:  defaultSignals(),
	}
}

// WithLogger sets the operational logger. It is also handed to the protocol
// library. If not provided, nothing is logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSessionClient replaces the WhatsApp session with another implementation.
// The bridge takes ownership and closes it on Stop.
func WithSessionClient(session SessionClient) Option {
	return func(o *options) {
		o.session = session
	}
}

// WithQRWriter sets where pairing QR codes are printed. nil disables QR output.
func WithQRWriter(w io.Writer) Option {
	return func(o *options) {
		o.qrWriter = w
	}
}

// WithConsole sets where history lines are echoed. nil disables the echo.
func WithConsole(w io.Writer) Option {
	return func(o *options) {
		o.console = w
	}
}

// WithListener serves the HTTP API on ln instead of listening on the
// configured port.
func WithListener(ln net.Listener) Option {
	return func(o *options) {
		o.listener = ln
	}
}

// WithSignals sets the signals Run treats as a shutdown request.
// No arguments disables signal handling.
func WithSignals(signals ...os.Signal) Option {
	return func(o *options) {
		o.signals = signals
	}
}

// WithStateHandler registers a callback for run state changes.
// It is called synchronously; implementations should return quickly.
func WithStateHandler(fn func(previous, current State, reason string)) Option {
	return func(o *options) {
		o.stateHandler = fn
	}
}
