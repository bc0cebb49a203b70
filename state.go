package dashAuth

import "fmt"

// Phase is the coarse session phase.
type Phase uint8

const (
	// PhaseHydrating is the initial phase, left exactly once.
	PhaseHydrating Phase = iota
	PhaseAnonymous
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseHydrating:
		return "hydrating"
	case PhaseAnonymous:
		return "anonymous"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// State is an immutable snapshot of the session. User is set iff Phase is
// PhaseAuthenticated.
type State struct {
	Phase Phase
	User  *User
}

// InitialState returns the hydrating state every Engine starts in.
func InitialState() State {
	return State{Phase: PhaseHydrating}
}

// Loading reports whether hydration is still pending.
func (s State) Loading() bool { return s.Phase == PhaseHydrating }

// Authenticated reports whether a user is signed in.
func (s State) Authenticated() bool { return s.Phase == PhaseAuthenticated && s.User != nil }

func (s State) String() string {
	if s.User == nil {
		return s.Phase.String()
	}
	return s.Phase.String() + "(" + s.User.ID + ")"
}

// Event is an input to State.Apply.
type Event interface {
	eventName() string
}

// EventResolvedAnonymous ends hydration without a session.
type EventResolvedAnonymous struct{}

// EventResolvedAuthenticated ends hydration with a restored session.
type EventResolvedAuthenticated struct{ User User }

// EventSignedIn follows any operation that issued a session.
type EventSignedIn struct{ User User }

// EventSignedOut follows logout.
type EventSignedOut struct{}

// EventUserSet installs (non-nil) or clears (nil) the current user.
type EventUserSet struct{ User *User }

func (EventResolvedAnonymous) eventName() string     { return "resolved_anonymous" }
func (EventResolvedAuthenticated) eventName() string { return "resolved_authenticated" }
func (EventSignedIn) eventName() string              { return "signed_in" }
func (EventSignedOut) eventName() string             { return "signed_out" }
func (EventUserSet) eventName() string               { return "user_set" }

// Apply returns the state that follows ev. It never mutates s. Hydration
// events are only valid while hydrating and every other event only after.
func (s State) Apply(ev Event) (State, error) {
	if ev == nil {
		return s, fmt.Errorf("%w: nil event in %s", ErrInvalidTransition, s.Phase)
	}

	if s.Phase == PhaseHydrating {
		switch e := ev.(type) {
		case EventResolvedAnonymous:
			return State{Phase: PhaseAnonymous}, nil
		case EventResolvedAuthenticated:
			return authenticated(e.User), nil
		}
		return s, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, ev.eventName(), s.Phase)
	}

	switch e := ev.(type) {
	case EventSignedIn:
		return authenticated(e.User), nil
	case EventSignedOut:
		return State{Phase: PhaseAnonymous}, nil
	case EventUserSet:
		if e.User == nil {
			return State{Phase: PhaseAnonymous}, nil
		}
		return authenticated(*e.User), nil
	}
	return s, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, ev.eventName(), s.Phase)
}

func authenticated(u User) State {
	return State{Phase: PhaseAuthenticated, User: &u}
}
