package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/dashAuth/authapi"
)

// HydrateOutcome classifies how a hydration resolved.
type HydrateOutcome int

const (
	// HydrateAnonymous: no persisted token.
	HydrateAnonymous HydrateOutcome = iota
	// HydrateCached: token and cached user trusted without a network call.
	HydrateCached
	// HydrateRevalidated: the backend confirmed the token and returned the user.
	HydrateRevalidated
	// HydrateCleared: the records were unusable or rejected and were removed.
	HydrateCleared
)

func (o HydrateOutcome) String() string {
	switch o {
	case HydrateAnonymous:
		return "anonymous"
	case HydrateCached:
		return "cached"
	case HydrateRevalidated:
		return "revalidated"
	case HydrateCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// HydrateDeps captures hydration dependencies. TokenExpired may be nil, in
// which case a cached user is always trusted.
type HydrateDeps struct {
	ReadToken    func(context.Context) (string, bool, error)
	ReadUser     func(context.Context) (*authapi.User, bool, error)
	WriteUser    func(context.Context, *authapi.User) error
	Clear        func(context.Context) error
	FetchUser    func(context.Context) (*authapi.User, error)
	TokenExpired func(token string) bool
	Timeout      time.Duration
}

// HydrateResult is the resolved hydration. User is set iff the outcome is
// HydrateCached or HydrateRevalidated.
type HydrateResult struct {
	Outcome HydrateOutcome
	User    *authapi.User
	// Stale is set when a cached user was discarded because its token expired.
	Stale bool
	// FetchErr is the backend rejection that led to HydrateCleared.
	FetchErr error
	// Err is a persistence or decoding failure. The outcome is still final.
	Err error
}

// RunHydrate reconstructs the session from the persisted records. It always
// resolves; failures are reported in the result, never by blocking.
func RunHydrate(ctx context.Context, deps HydrateDeps) HydrateResult {
	token, ok, err := deps.ReadToken(ctx)
	if err != nil {
		return HydrateResult{Outcome: HydrateAnonymous, Err: err}
	}
	if !ok || token == "" {
		return HydrateResult{Outcome: HydrateAnonymous}
	}

	user, cached, err := deps.ReadUser(ctx)
	if err != nil {
		return HydrateResult{Outcome: HydrateCleared, Err: joinErr(err, deps.Clear(ctx))}
	}

	stale := false
	if cached && user != nil {
		if deps.TokenExpired == nil || !deps.TokenExpired(token) {
			return HydrateResult{Outcome: HydrateCached, User: user}
		}
		stale = true
	}

	fetchCtx := ctx
	if deps.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, deps.Timeout)
		defer cancel()
	}

	current, err := deps.FetchUser(fetchCtx)
	if err != nil {
		return HydrateResult{
			Outcome:  HydrateCleared,
			Stale:    stale,
			FetchErr: err,
			Err:      deps.Clear(ctx),
		}
	}
	if current == nil {
		current = &authapi.User{}
	}

	return HydrateResult{
		Outcome: HydrateRevalidated,
		User:    current,
		Stale:   stale,
		Err:     deps.WriteUser(ctx, current),
	}
}
