package flows

import (
	"context"

	"github.com/MrEthical07/dashAuth/authapi"
)

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Hydrate.ReadToken != nil && s.deps.Session.Persist != nil && s.deps.Logout.Clear != nil
}

func (s Service) Hydrate(ctx context.Context) HydrateResult {
	return RunHydrate(ctx, s.deps.Hydrate)
}

func (s Service) IssueSession(ctx context.Context, issue func(context.Context) (*authapi.AuthResponse, error)) SessionResult {
	return RunIssueSession(ctx, issue, s.deps.Session)
}

func (s Service) Logout(ctx context.Context) error {
	return RunLogout(ctx, s.deps.Logout)
}
