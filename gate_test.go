package dashAuth

import "testing"

func TestGateDecisions(t *testing.T) {
	hydrating := InitialState()
	anon := State{Phase: PhaseAnonymous}
	authed := State{Phase: PhaseAuthenticated, User: &User{ID: "1"}}

	tests := []struct {
		name  string
		path  string
		state State
		want  DecisionKind
	}{
		{name: "loading never redirects", path: "/dashboard", state: hydrating, want: DecisionLoading},
		{name: "loading on public path", path: "/signin", state: hydrating, want: DecisionLoading},
		{name: "anonymous deep link", path: "/dashboard/users/42", state: anon, want: DecisionRedirect},
		{name: "anonymous root", path: "/", state: anon, want: DecisionAllow},
		{name: "anonymous sign-in", path: "/signin", state: anon, want: DecisionAllow},
		{name: "anonymous public sub-path", path: "/verify-email/abc", state: anon, want: DecisionAllow},
		{name: "anonymous lookalike path", path: "/signin-x", state: anon, want: DecisionRedirect},
		{name: "anonymous otp", path: "/verify-email-otp", state: anon, want: DecisionAllow},
		{name: "anonymous success", path: "/success", state: anon, want: DecisionAllow},
		{name: "authenticated private", path: "/dashboard", state: authed, want: DecisionAllow},
		{name: "authenticated public", path: "/signup", state: authed, want: DecisionAllow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Gate(tt.path, tt.state)
			if got.Kind != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got.Kind)
			}
			if got.Kind == DecisionRedirect && got.Location != PathSignIn {
				t.Fatalf("expected redirect to %s, got %q", PathSignIn, got.Location)
			}
		})
	}
}
