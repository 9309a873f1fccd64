package core

import "time"

// StateKind identifies one of the closed set of state variants.
type StateKind string

// The state kinds a container can be in.
const (
	KindInitial StateKind = "Initial"
	KindLoading StateKind = "Loading"
	KindLoaded  StateKind = "Loaded"
	KindError   StateKind = "Error"
)

// A State is an immutable snapshot of the container's condition. Exactly one
// state is current at any instant. The set of states is closed; render layers
// must treat it as exhaustive.
type State interface {
	StateKind() StateKind
}

// InitialState is the state of a container before any event is processed and
// after a reset. It carries no payload.
type InitialState struct{}

// StateKind returns KindInitial.
func (s InitialState) StateKind() StateKind {
	return KindInitial
}

// LoadingState reports an in-flight operation. Progress is nil when the
// operation does not report progress, as in the load path.
type LoadingState struct {
	Operation string   `json:"operation"`
	Progress  *float64 `json:"progress,omitempty"`
}

// StateKind returns KindLoading.
func (s LoadingState) StateKind() StateKind {
	return KindLoading
}

// LoadedState carries successfully loaded or updated data together with
// operation metadata.
type LoadedState struct {
	Data      string         `json:"data"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// StateKind returns KindLoaded.
func (s LoadedState) StateKind() StateKind {
	return KindLoaded
}

// ErrorState reports a failed operation. ErrorCode is the machine-readable
// classification of the failure.
type ErrorState struct {
	Message   string    `json:"message"`
	ErrorCode ErrorCode `json:"error_code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StateKind returns KindError.
func (s ErrorState) StateKind() StateKind {
	return KindError
}
