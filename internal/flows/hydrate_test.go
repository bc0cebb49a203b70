package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/dashAuth/authapi"
)

type fakeRecord struct {
	token    string
	user     *authapi.User
	readErr  error
	userErr  error
	cleared  int
	written  *authapi.User
	fetched  int
	fetchErr error
	fetchRes *authapi.User
}

func (f *fakeRecord) deps() HydrateDeps {
	return HydrateDeps{
		ReadToken: func(context.Context) (string, bool, error) {
			if f.readErr != nil {
				return "", false, f.readErr
			}
			return f.token, f.token != "", nil
		},
		ReadUser: func(context.Context) (*authapi.User, bool, error) {
			if f.userErr != nil {
				return nil, false, f.userErr
			}
			return f.user, f.user != nil, nil
		},
		WriteUser: func(_ context.Context, u *authapi.User) error {
			f.written = u
			f.user = u
			return nil
		},
		Clear: func(context.Context) error {
			f.cleared++
			f.token, f.user = "", nil
			return nil
		},
		FetchUser: func(ctx context.Context) (*authapi.User, error) {
			f.fetched++
			if f.fetchErr != nil {
				return nil, f.fetchErr
			}
			return f.fetchRes, nil
		},
	}
}

func TestRunHydrateNoToken(t *testing.T) {
	f := &fakeRecord{}
	res := RunHydrate(context.Background(), f.deps())
	if res.Outcome != HydrateAnonymous || res.User != nil || res.Err != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if f.fetched != 0 {
		t.Fatal("expected no backend call without a token")
	}
}

func TestRunHydrateCachedUserSkipsNetwork(t *testing.T) {
	f := &fakeRecord{token: "T", user: &authapi.User{ID: "1", Email: "a@b.com"}}
	res := RunHydrate(context.Background(), f.deps())
	if res.Outcome != HydrateCached || res.User == nil || res.User.ID != "1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if f.fetched != 0 {
		t.Fatal("expected no backend call with a cached user")
	}
}

func TestRunHydrateFetchesMissingUser(t *testing.T) {
	f := &fakeRecord{token: "T", fetchRes: &authapi.User{ID: "1", Email: "a@b.com"}}
	res := RunHydrate(context.Background(), f.deps())
	if res.Outcome != HydrateRevalidated || res.User.ID != "1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if f.written == nil || f.written.Email != "a@b.com" {
		t.Fatal("expected fetched user to be cached")
	}
}

func TestRunHydrateRejectedTokenClears(t *testing.T) {
	rejected := errors.New("401")
	f := &fakeRecord{token: "T", fetchErr: rejected}
	res := RunHydrate(context.Background(), f.deps())
	if res.Outcome != HydrateCleared || res.User != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if !errors.Is(res.FetchErr, rejected) {
		t.Fatalf("expected fetch error to be reported, got %v", res.FetchErr)
	}
	if res.Err != nil {
		t.Fatalf("expected no persistence error, got %v", res.Err)
	}
	if f.cleared != 1 || f.token != "" {
		t.Fatal("expected records to be cleared")
	}
}

func TestRunHydrateExpiredTokenRevalidates(t *testing.T) {
	f := &fakeRecord{
		token:    "expired",
		user:     &authapi.User{ID: "1", Name: "old"},
		fetchRes: &authapi.User{ID: "1", Name: "new"},
	}
	deps := f.deps()
	deps.TokenExpired = func(token string) bool { return token == "expired" }

	res := RunHydrate(context.Background(), deps)
	if res.Outcome != HydrateRevalidated || !res.Stale {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.User.Name != "new" {
		t.Fatalf("expected refreshed user, got %+v", res.User)
	}
}

func TestRunHydrateCorruptUserClears(t *testing.T) {
	corrupt := errors.New("corrupt")
	f := &fakeRecord{token: "T", userErr: corrupt}
	res := RunHydrate(context.Background(), f.deps())
	if res.Outcome != HydrateCleared || !errors.Is(res.Err, corrupt) {
		t.Fatalf("unexpected result %+v", res)
	}
	if f.cleared != 1 {
		t.Fatal("expected records to be cleared")
	}
}

func TestRunHydrateReadFailureResolvesAnonymous(t *testing.T) {
	down := errors.New("store down")
	f := &fakeRecord{readErr: down}
	res := RunHydrate(context.Background(), f.deps())
	if res.Outcome != HydrateAnonymous || !errors.Is(res.Err, down) {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRunHydrateTimeoutBoundsFetch(t *testing.T) {
	f := &fakeRecord{token: "T"}
	deps := f.deps()
	deps.Timeout = 20 * time.Millisecond
	deps.FetchUser = func(ctx context.Context) (*authapi.User, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	start := time.Now()
	res := RunHydrate(context.Background(), deps)
	if time.Since(start) > time.Second {
		t.Fatal("expected fetch to be bounded by the timeout")
	}
	if res.Outcome != HydrateCleared || !errors.Is(res.FetchErr, context.DeadlineExceeded) {
		t.Fatalf("unexpected result %+v", res)
	}
}
