package ports

import (
	"context"

	"github.com/bft-labs/wabridge/internal/domain"
)

// SessionClient is the chat-protocol session the bridge drives.
// Implementations own the protocol connection and its on-disk session data.
type SessionClient interface {
	// Start connects the session and begins publishing lifecycle events and
	// inbound messages to events. It returns once the connection attempt has
	// been started; events keep flowing until ctx is canceled or Close is called.
	Start(ctx context.Context, events chan<- domain.Event) error

	// SendText delivers a plain text message to target.
	// Returns an error if the protocol rejected or failed the send.
	SendText(ctx context.Context, target domain.Target, text string) error

	// SendMedia delivers a file payload to target.
	SendMedia(ctx context.Context, target domain.Target, media domain.Media) error

	// Close disconnects the session and releases its resources. Idempotent.
	Close() error
}
