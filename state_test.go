package dashAuth

import (
	"errors"
	"testing"
)

func TestStateApplyTransitions(t *testing.T) {
	alice := User{ID: "1", Email: "a@b.com"}
	anon := State{Phase: PhaseAnonymous}
	authed := State{Phase: PhaseAuthenticated, User: &User{ID: "2"}}

	tests := []struct {
		name      string
		from      State
		event     Event
		wantPhase Phase
		wantUser  string
		wantErr   bool
	}{
		{name: "hydrate anonymous", from: InitialState(), event: EventResolvedAnonymous{}, wantPhase: PhaseAnonymous},
		{name: "hydrate authenticated", from: InitialState(), event: EventResolvedAuthenticated{User: alice}, wantPhase: PhaseAuthenticated, wantUser: "1"},
		{name: "sign in while hydrating", from: InitialState(), event: EventSignedIn{User: alice}, wantPhase: PhaseHydrating, wantErr: true},
		{name: "logout while hydrating", from: InitialState(), event: EventSignedOut{}, wantPhase: PhaseHydrating, wantErr: true},
		{name: "hydrate twice", from: anon, event: EventResolvedAnonymous{}, wantPhase: PhaseAnonymous, wantErr: true},
		{name: "sign in", from: anon, event: EventSignedIn{User: alice}, wantPhase: PhaseAuthenticated, wantUser: "1"},
		{name: "sign in replaces user", from: authed, event: EventSignedIn{User: alice}, wantPhase: PhaseAuthenticated, wantUser: "1"},
		{name: "sign out", from: authed, event: EventSignedOut{}, wantPhase: PhaseAnonymous},
		{name: "sign out anonymous", from: anon, event: EventSignedOut{}, wantPhase: PhaseAnonymous},
		{name: "set user", from: anon, event: EventUserSet{User: &alice}, wantPhase: PhaseAuthenticated, wantUser: "1"},
		{name: "clear user", from: authed, event: EventUserSet{}, wantPhase: PhaseAnonymous},
		{name: "nil event", from: anon, event: nil, wantPhase: PhaseAnonymous, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.from.Apply(tt.event)
			if tt.wantErr != (err != nil) {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition, got %v", err)
			}
			if got.Phase != tt.wantPhase {
				t.Fatalf("expected %s, got %s", tt.wantPhase, got.Phase)
			}
			gotUser := ""
			if got.User != nil {
				gotUser = got.User.ID
			}
			if err == nil && gotUser != tt.wantUser {
				t.Fatalf("expected user %q, got %q", tt.wantUser, gotUser)
			}
		})
	}
}

func TestStateApplyDoesNotAlias(t *testing.T) {
	u := User{ID: "1", Name: "before"}
	st, err := State{Phase: PhaseAnonymous}.Apply(EventUserSet{User: &u})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	u.Name = "after"
	if st.User.Name != "before" {
		t.Fatalf("state aliases caller's user")
	}
}

func TestStateLoadingOnlyWhileHydrating(t *testing.T) {
	if !InitialState().Loading() {
		t.Fatal("initial state must be loading")
	}
	for _, p := range []Phase{PhaseAnonymous, PhaseAuthenticated} {
		if (State{Phase: p}).Loading() {
			t.Fatalf("%s must not be loading", p)
		}
	}
}
