package domain

import "fmt"

// EventKind identifies a session lifecycle event.
type EventKind int

const (
	EventQR EventKind = iota
	EventLoading
	EventReady
	EventStateChanged
	EventDisconnected
	EventAuthFailure
	EventError
	EventMessage
)

// String returns a human-readable representation of the kind.
func (k EventKind) String() string {
	switch k {
	case EventQR:
		return "qr"
	case EventLoading:
		return "loading"
	case EventReady:
		return "ready"
	case EventStateChanged:
		return "state_changed"
	case EventDisconnected:
		return "disconnected"
	case EventAuthFailure:
		return "auth_failure"
	case EventError:
		return "error"
	case EventMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Event is a single session event. Which payload fields are set depends on Kind:
//
//   - EventQR: QRCode
//   - EventLoading: Percent, Detail (stage description)
//   - EventStateChanged: Detail (new state)
//   - EventDisconnected, EventAuthFailure: Detail (reason)
//   - EventError: Err
//   - EventMessage: Message
type Event struct {
	Kind    EventKind
	QRCode  string
	Percent int
	Detail  string
	Err     error
	Message *InboundMessage
}

// InboundMessage is a text message received by the session.
type InboundMessage struct {
	// From is the sender's identifier.
	From string
	// ChatID is the serialized conversation identifier the message arrived in.
	ChatID string
	// IsGroup reports whether ChatID is a group conversation.
	IsGroup bool
	// Body is the plain text content; empty for non-text messages.
	Body string
}

func QRIssued(code string) Event { return Event{Kind: EventQR, QRCode: code} }

func Loading(percent int, stage string) Event {
	return Event{Kind: EventLoading, Percent: percent, Detail: stage}
}

func Ready() Event { return Event{Kind: EventReady} }

func StateChanged(state string) Event { return Event{Kind: EventStateChanged, Detail: state} }

func Disconnected(reason string) Event { return Event{Kind: EventDisconnected, Detail: reason} }

func AuthFailure(reason string) Event { return Event{Kind: EventAuthFailure, Detail: reason} }

func TransportError(err error) Event { return Event{Kind: EventError, Err: err} }

func MessageReceived(msg InboundMessage) Event { return Event{Kind: EventMessage, Message: &msg} }

// String renders the event for debug logging.
func (e Event) String() string {
	switch e.Kind {
	case EventLoading:
		return fmt.Sprintf("%s %d%% %s", e.Kind, e.Percent, e.Detail)
	case EventError:
		return fmt.Sprintf("%s %v", e.Kind, e.Err)
	case EventMessage:
		if e.Message != nil {
			return fmt.Sprintf("%s from %s in %s", e.Kind, e.Message.From, e.Message.ChatID)
		}
	}
	if e.Detail != "" {
		return e.Kind.String() + " " + e.Detail
	}
	return e.Kind.String()
}
