package middleware

import (
	"context"
	"net/http"

	dashAuth "github.com/MrEthical07/dashAuth"
)

type stateContextKey struct{}

// StateFromContext returns the session state Gate resolved for the request.
func StateFromContext(ctx context.Context) (dashAuth.State, bool) {
	st, ok := ctx.Value(stateContextKey{}).(dashAuth.State)
	return st, ok
}

// EngineFunc resolves the Engine that owns the session of r.
type EngineFunc func(r *http.Request) *dashAuth.Engine

// Static serves every request from one long-lived Engine.
func Static(engine *dashAuth.Engine) EngineFunc {
	return func(*http.Request) *dashAuth.Engine { return engine }
}

// FromContext uses the per-request Engine installed by CookieSessions.
func FromContext() EngineFunc {
	return func(r *http.Request) *dashAuth.Engine {
		engine, _ := EngineFromContext(r.Context())
		return engine
	}
}

type gateOptions struct {
	loading    http.Handler
	signInPath string
}

// Option customizes Gate.
type Option func(*gateOptions)

// WithLoadingHandler replaces the placeholder served while hydration is
// pending.
func WithLoadingHandler(h http.Handler) Option {
	return func(o *gateOptions) {
		if h != nil {
			o.loading = h
		}
	}
}

// WithSignInPath overrides the redirect target.
func WithSignInPath(path string) Option {
	return func(o *gateOptions) {
		if path != "" {
			o.signInPath = path
		}
	}
}

func defaultLoading(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", "1")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Loading..."))
}

// Gate enforces the dashboard route policy on every request.
func Gate(resolve EngineFunc, opts ...Option) func(http.Handler) http.Handler {
	o := gateOptions{
		loading:    http.HandlerFunc(defaultLoading),
		signInPath: dashAuth.PathSignIn,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			engine := resolve(r)
			if engine == nil {
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}

			decision, st := engine.Evaluate(r.URL.Path)
			switch decision.Kind {
			case dashAuth.DecisionLoading:
				o.loading.ServeHTTP(w, r)
			case dashAuth.DecisionRedirect:
				http.Redirect(w, r, o.signInPath, redirectStatus(r.Method))
			default:
				ctx := context.WithValue(r.Context(), stateContextKey{}, st)
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}

func redirectStatus(method string) int {
	if method == http.MethodGet || method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
