package wabridge

import "github.com/bft-labs/wabridge/internal/app"

// State represents the run state of a Bridge.
type State int

const (
	// StateStopped indicates the bridge is not running.
	StateStopped State = iota
	// StateStarting indicates Start is preparing the session and API.
	StateStarting
	// StateRunning indicates the HTTP API is serving and the session is connecting or connected.
	StateRunning
	// StateStopping indicates a graceful shutdown is in progress.
	StateStopping
	// StateCrashed indicates the bridge stopped because of an error.
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	return app.State(s).String()
}

func convertState(s app.State) State {
	switch s {
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}

// stateEmitter adapts the WithStateHandler callback to app.StateEmitter.
type stateEmitter struct {
	fn func(previous, current State, reason string)
}

func (e stateEmitter) OnStateChange(previous, current app.State, reason string) {
	e.fn(convertState(previous), convertState(current), reason)
}
