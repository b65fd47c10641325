// internal/interest/state.go

package interest

import "github.com/imadgeboyega/matchmaking-backend/internal/users"

// State is the relationship of an ordered pair (A, B)
type State int

const (
	StateNone State = iota
	StatePendingAToB
	StatePendingBToA
	StateAccepted
	// StateCrossedPending: both sides sent interest before either accepted. It is never merged.
	StateCrossedPending
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "NONE"
	case StatePendingAToB:
		return "PENDING_A_TO_B"
	case StatePendingBToA:
		return "PENDING_B_TO_A"
	case StateAccepted:
		return "ACCEPTED"
	case StateCrossedPending:
		return "CROSSED_PENDING"
	default:
		return "UNKNOWN"
	}
}

// StateOf derives the state of (a, b) from a's edge sets
func StateOf(a, b *users.User) State {
	if users.Contains(a.AcceptedInterests, b.ID) {
		return StateAccepted
	}
	aToB := users.Contains(a.SentInterests, b.ID)
	bToA := users.Contains(a.ReceivedInterests, b.ID)
	switch {
	case aToB && bToA:
		return StateCrossedPending
	case aToB:
		return StatePendingAToB
	case bToA:
		return StatePendingBToA
	default:
		return StateNone
	}
}
