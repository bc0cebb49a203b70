package middleware

import (
	"context"
	"log/slog"
	"net/http"

	dashAuth "github.com/MrEthical07/dashAuth"
	"github.com/MrEthical07/dashAuth/session"
)

type engineContextKey struct{}

// EngineFromContext returns the Engine CookieSessions built for the request.
func EngineFromContext(ctx context.Context) (*dashAuth.Engine, bool) {
	engine, ok := ctx.Value(engineContextKey{}).(*dashAuth.Engine)
	return engine, ok && engine != nil
}

// EngineFactory builds the Engine for one HTTP exchange.
type EngineFactory func(w http.ResponseWriter, r *http.Request) (*dashAuth.Engine, error)

// CookieEngines returns a factory whose Engines keep the credential record in
// the exchange's cookies. configure, when non-nil, runs on every Builder
// before Build.
func CookieEngines(cfg dashAuth.Config, configure func(*dashAuth.Builder)) EngineFactory {
	cookies := cfg.CookieOptions()
	return func(w http.ResponseWriter, r *http.Request) (*dashAuth.Engine, error) {
		b := dashAuth.New().
			WithConfig(cfg).
			WithStore(session.NewCookieStore(w, r, cookies))
		if configure != nil {
			configure(b)
		}
		return b.Build()
	}
}

// CookieSessions builds, hydrates and installs a per-request Engine. The
// Engine is closed when the handler returns.
func CookieSessions(factory EngineFactory, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			engine, err := factory(w, r)
			if err != nil {
				logger.ErrorContext(ctx, "dashauth: session engine build failed", "error", err)
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
			defer engine.Close()

			if _, err := engine.Hydrate(ctx); err != nil {
				logger.WarnContext(ctx, "dashauth: hydration degraded",
					"path", r.URL.Path,
					"error", err,
				)
			}

			ctx = context.WithValue(ctx, engineContextKey{}, engine)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
