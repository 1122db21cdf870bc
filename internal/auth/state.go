package auth

import (
	"github.com/personai/persona/internal/models"
)

// Phase is the lifecycle position of the auth bootstrap.
type Phase int

const (
	Processing Phase = iota
	Success
	Error
)

func (p Phase) String() string {
	switch p {
	case Processing:
		return "processing"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// User-facing status messages for the bootstrap lifecycle.
const (
	MsgVerifying     = "Verifying your authentication..."
	MsgExchanging    = "Exchanging authorization code..."
	MsgValidating    = "Validating temporary sign-in token..."
	MsgFinalizing    = "Finalizing authentication..."
	MsgWelcome       = "Welcome to Persona! Your account is ready."
	MsgTokenAccepted = "Temporary token authentication successful!"

	MsgNoCredentials  = "No valid authentication credentials received. Please try signing in again."
	MsgNetworkFailure = "Network error. Please check your connection and try again."
	MsgGenericFailure = "Authentication failed. Please try again."
)

// maxPendingProgress caps the cosmetic progress bar while the exchange is
// unresolved; only a real transition to Success completes it.
const maxPendingProgress = 90

// State is the observable condition of the bootstrap at one instant.
// Success and Error are terminal.
type State struct {
	Phase    Phase
	Message  string
	Progress float64
	User     models.User
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s.Phase == Success || s.Phase == Error
}

// Initial returns the state the machine starts in.
func Initial() State {
	return State{Phase: Processing, Message: MsgVerifying}
}

// Event is the tagged union of inputs the reducer accepts.
type Event interface {
	isEvent()
}

// Note updates the status message and floors the progress while processing.
type Note struct {
	Message  string
	Progress float64
}

// Tick advances the cosmetic progress indicator by Delta, capped below completion.
type Tick struct {
	Delta float64
}

// Resolved moves the machine to the terminal Success state.
type Resolved struct {
	User    models.User
	Message string
}

// Failed moves the machine to the terminal Error state.
type Failed struct {
	Reason string
}

func (Note) isEvent()     {}
func (Tick) isEvent()     {}
func (Resolved) isEvent() {}
func (Failed) isEvent()   {}

// Reduce applies one event to a state and returns the next state. Pure:
// no I/O, no clocks. Events arriving after a terminal state are ignored.
func Reduce(s State, ev Event) State {
	if s.Terminal() {
		return s
	}

	switch e := ev.(type) {
	case Note:
		s.Message = e.Message
		if e.Progress > s.Progress {
			s.Progress = e.Progress
		}
		if s.Progress > maxPendingProgress {
			s.Progress = maxPendingProgress
		}
	case Tick:
		s.Progress += e.Delta
		if s.Progress > maxPendingProgress {
			s.Progress = maxPendingProgress
		}
	case Resolved:
		s.Phase = Success
		s.Message = e.Message
		s.User = e.User
		s.Progress = 100
	case Failed:
		s.Phase = Error
		s.Message = e.Reason
	}

	return s
}
