package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	dashAuth "github.com/MrEthical07/dashAuth"
	"github.com/MrEthical07/dashAuth/authapi"
	"github.com/MrEthical07/dashAuth/internal/fakebackend"
	"github.com/MrEthical07/dashAuth/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) (*fakebackend.Backend, string) {
	t.Helper()
	be, err := fakebackend.New(fakebackend.Config{Code: func() string { return "123456" }})
	require.NoError(t, err)
	srv := httptest.NewServer(be.Handler())
	t.Cleanup(srv.Close)
	return be, srv.URL
}

func testConfig(baseURL string) dashAuth.Config {
	cfg := dashAuth.DefaultConfig()
	cfg.API.BaseURL = baseURL
	return cfg
}

func newEngine(t *testing.T, baseURL string, store session.Store) *dashAuth.Engine {
	t.Helper()
	engine, err := dashAuth.New().WithConfig(testConfig(baseURL)).WithStore(store).Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	return engine
}

func okHandler(t *testing.T, wantPhase dashAuth.Phase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, ok := StateFromContext(r.Context())
		assert.True(t, ok, "state should be in context")
		assert.Equal(t, wantPhase, st.Phase)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestGateServesLoadingBeforeHydration(t *testing.T) {
	_, url := newBackend(t)
	engine := newEngine(t, url, session.NewMemoryStore())

	h := Gate(Static(engine))(okHandler(t, dashAuth.PhaseAnonymous))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Loading")
}

func TestGateRedirectsAnonymousDeepLinks(t *testing.T) {
	_, url := newBackend(t)
	engine := newEngine(t, url, session.NewMemoryStore())
	_, err := engine.Hydrate(context.Background())
	require.NoError(t, err)

	h := Gate(Static(engine))(okHandler(t, dashAuth.PhaseAnonymous))

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{method: http.MethodGet, path: "/dashboard/users", want: http.StatusFound},
		{method: http.MethodPost, path: "/dashboard/users", want: http.StatusSeeOther},
		{method: http.MethodGet, path: "/signin", want: http.StatusNoContent},
		{method: http.MethodGet, path: "/verify-email/abc", want: http.StatusNoContent},
		{method: http.MethodGet, path: "/", want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			require.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusFound || tt.want == http.StatusSeeOther {
				assert.Equal(t, dashAuth.PathSignIn, rec.Header().Get("Location"))
			}
		})
	}
}

func TestGateOptions(t *testing.T) {
	_, url := newBackend(t)
	engine := newEngine(t, url, session.NewMemoryStore())

	loading := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	h := Gate(Static(engine), WithLoadingHandler(loading), WithSignInPath("/login"))(okHandler(t, dashAuth.PhaseAnonymous))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	_, err := engine.Hydrate(context.Background())
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestGateWithoutEngineFails(t *testing.T) {
	h := Gate(FromContext())(http.NotFoundHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGateAllowsAuthenticated(t *testing.T) {
	be, url := newBackend(t)
	be.AddAccount(fakebackend.Account{
		User:     authapi.User{Email: "a@b.com", IsEmailVerified: true},
		Password: "secret1",
	})
	engine := newEngine(t, url, session.NewMemoryStore())
	_, err := engine.Login(context.Background(), "a@b.com", "secret1", false)
	require.NoError(t, err)

	h := Gate(Static(engine))(okHandler(t, dashAuth.PhaseAuthenticated))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
