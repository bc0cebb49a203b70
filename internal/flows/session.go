package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/dashAuth/authapi"
)

// SessionErrors carries host-level sentinel errors used by session flows.
type SessionErrors struct {
	MissingToken error
}

// SessionDeps captures the dependencies of every operation that ends in an
// issued session.
type SessionDeps struct {
	Persist func(context.Context, *authapi.AuthResponse) error
	// Rollback removes whatever a failed Persist managed to write.
	Rollback func(context.Context) error
	Now      func() time.Time
	Errors   SessionErrors
}

// SessionResult reports an issue attempt. Persisted is true only when the
// response was written to the credential record.
type SessionResult struct {
	Response  *authapi.AuthResponse
	Elapsed   time.Duration
	Persisted bool
	Err       error
}

// RunIssueSession performs one backend call and persists the session it
// returns. Backend errors come back unchanged. A failed Persist is rolled
// back so no partial record outlives the reported failure.
func RunIssueSession(
	ctx context.Context,
	issue func(context.Context) (*authapi.AuthResponse, error),
	deps SessionDeps,
) SessionResult {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	start := now()
	resp, err := issue(ctx)
	elapsed := now().Sub(start)
	if err != nil {
		return SessionResult{Elapsed: elapsed, Err: err}
	}
	if resp == nil || resp.AccessToken == "" {
		missing := deps.Errors.MissingToken
		if missing == nil {
			missing = errors.New("session response missing access token")
		}
		return SessionResult{Response: resp, Elapsed: elapsed, Err: missing}
	}

	if err := deps.Persist(ctx, resp); err != nil {
		if deps.Rollback != nil {
			err = joinErr(err, deps.Rollback(ctx))
		}
		return SessionResult{Response: resp, Elapsed: elapsed, Err: err}
	}
	return SessionResult{Response: resp, Elapsed: elapsed, Persisted: true}
}

// LogoutDeps captures logout dependencies.
type LogoutDeps struct {
	Clear func(context.Context) error
}

// RunLogout removes the credential record. Removing absent records is not an
// error, so repeated logouts are harmless.
func RunLogout(ctx context.Context, deps LogoutDeps) error {
	return deps.Clear(ctx)
}

func joinErr(errs ...error) error {
	return errors.Join(errs...)
}
