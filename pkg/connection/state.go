package connection

// State is the accessory link state.
type State uint8

const (
	// StateDisconnected indicates no link and no attempt in progress.
	StateDisconnected State = iota

	// StateConnecting indicates a caller-initiated connect is in progress.
	StateConnecting

	// StateConnected indicates a live session with a resolved command endpoint.
	StateConnected

	// StateReconnecting indicates the supervisor is recovering a lost link.
	StateReconnecting

	// StateFailed indicates the last connect or reconnect sequence failed.
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// CanConnect reports whether a caller may start a connect from s.
func (s State) CanConnect() bool {
	return s == StateDisconnected || s == StateFailed
}

// Busy reports whether a connect or reconnect is in progress.
func (s State) Busy() bool {
	return s == StateConnecting || s == StateReconnecting
}

// ValidTransition reports whether from -> to is an edge of the link state
// diagram. Any state may go to Disconnected except Disconnected itself.
func ValidTransition(from, to State) bool {
	if to == StateDisconnected {
		return from != StateDisconnected
	}
	switch from {
	case StateDisconnected, StateFailed:
		return to == StateConnecting
	case StateConnecting:
		return to == StateConnected || to == StateFailed
	case StateConnected:
		return to == StateReconnecting
	case StateReconnecting:
		return to == StateConnected || to == StateFailed
	}
	return false
}
