package app

import (
	"context"
	"fmt"

	"github.com/bft-labs/wabridge/internal/domain"
	"github.com/bft-labs/wabridge/internal/ports"
)

// Controller applies session lifecycle events to the readiness state.
// Events are handled one at a time in arrival order.
type Controller struct {
	readiness *Readiness
	history   ports.HistoryLog
	qr        ports.QRRenderer
	commands  *Commands
	logger    ports.Logger
}

// NewController creates a lifecycle controller. qr and commands may be nil.
func NewController(readiness *Readiness, history ports.HistoryLog, qr ports.QRRenderer, commands *Commands, logger ports.Logger) *Controller {
	return &Controller{
		readiness: readiness,
		history:   history,
		qr:        qr,
		commands:  commands,
		logger:    logger,
	}
}

// Run consumes events until ctx is canceled or events is closed.
func (c *Controller) Run(ctx context.Context, events <-chan domain.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.Handle(ctx, ev)
		}
	}
}

// Handle applies a single event.
func (c *Controller) Handle(ctx context.Context, ev domain.Event) {
	c.logger.Debug("session event", ports.String("event", ev.String()))

	switch ev.Kind {
	case domain.EventQR:
		if c.qr != nil {
			if err := c.qr.Render(ev.QRCode); err != nil {
				c.logger.Warn("qr render failed", ports.Err(err))
				c.log("Failed to render QR: " + err.Error())
			}
		}
		c.readiness.MarkNotReady("qr issued")
		c.log("QR generated (waiting for scan)")

	case domain.EventLoading:
		c.log(fmt.Sprintf("Loading %d%%: %s", ev.Percent, ev.Detail))

	case domain.EventReady:
		c.readiness.MarkReady("session ready")
		c.logger.Info("session is ready")
		c.log("Session is ready!")

	case domain.EventStateChanged:
		c.log("State changed: " + ev.Detail)

	case domain.EventDisconnected:
		c.readiness.MarkNotReady("disconnected")
		c.logger.Warn("session disconnected", ports.String("reason", orUnknown(ev.Detail)))
		c.log("Disconnected: " + orUnknown(ev.Detail))

	case domain.EventAuthFailure:
		c.readiness.MarkNotReady("auth failure")
		c.logger.Error("session auth failure", ports.String("reason", orUnknown(ev.Detail)))
		c.log("Auth failure: " + orUnknown(ev.Detail))

	case domain.EventError:
		// Readiness is deliberately left alone: a transport error does not
		// by itself mean the session is unusable.
		c.logger.Error("session client error", ports.Err(ev.Err))
		c.log("Client error: " + errString(ev.Err))

	case domain.EventMessage:
		if c.commands != nil && ev.Message != nil {
			c.commands.Dispatch(ctx, *ev.Message)
		}

	default:
		c.logger.Warn("unknown session event", ports.Int("kind", int(ev.Kind)))
	}
}

func (c *Controller) log(message string) {
	if err := c.history.Log(message); err != nil {
		c.logger.Debug("history write failed", ports.Err(err))
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func errString(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}
