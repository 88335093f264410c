package domain

import "errors"

// Domain errors represent error conditions in the wabridge domain.
// These errors are returned by the application layer and can be checked with errors.Is.
var (
	// ErrNotReady is returned when a send is attempted before the session is usable.
	ErrNotReady = errors.New("wabridge: session not ready")

	// ErrMissingMessage is returned when a text send has no message body.
	ErrMissingMessage = errors.New("wabridge: missing message")

	// ErrMissingTarget is returned when neither chatId nor number was supplied.
	ErrMissingTarget = errors.New("wabridge: provide either chatId or number")

	// ErrMissingFile is returned when a file send has no uploaded payload.
	ErrMissingFile = errors.New("wabridge: missing file")

	// ErrPayloadTooLarge is returned when an upload exceeds the size limit.
	ErrPayloadTooLarge = errors.New("wabridge: file too large")

	// ErrAlreadyRunning is returned when Start is called on a running bridge.
	ErrAlreadyRunning = errors.New("wabridge: already running")

	// ErrNotRunning is returned when Stop is called on a bridge that is not running.
	ErrNotRunning = errors.New("wabridge: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("wabridge: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("wabridge: invalid configuration")
)

// SendError reports that the session client failed to deliver a payload.
// Error returns the underlying message unchanged so it can be shown to callers.
type SendError struct {
	Target Target
	Err    error
}

func (e *SendError) Error() string {
	if e.Err == nil {
		return "send failed"
	}
	return e.Err.Error()
}

func (e *SendError) Unwrap() error { return e.Err }
