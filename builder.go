package dashAuth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/MrEthical07/dashAuth/authapi"
	"github.com/MrEthical07/dashAuth/internal/flows"
	"github.com/MrEthical07/dashAuth/internal/limiters"
	"github.com/MrEthical07/dashAuth/jwt"
	"github.com/MrEthical07/dashAuth/session"
	"github.com/MrEthical07/dashAuth/transport"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine.
//
// Builder instances are intended to be configured during initialization and
// used for exactly one Build.
type Builder struct {
	config     Config
	store      session.Store
	httpClient *http.Client
	redis      redis.UniversalClient
	identity   IdentityTokenProvider
	auditSink  AuditSink
	logger     *slog.Logger
	clock      func() time.Time
	hooks      transport.Hooks
	observer   func(State)

	built bool
}

// New returns a Builder preloaded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets where the credential record lives. Defaults to an
// in-process session.MemoryStore.
func (b *Builder) WithStore(s session.Store) *Builder {
	b.store = s
	return b
}

func (b *Builder) WithHTTPClient(h *http.Client) *Builder {
	b.httpClient = h
	return b
}

// WithRedis shares resend cooldowns through Redis instead of process memory.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithIdentityProvider(p IdentityTokenProvider) *Builder {
	b.identity = p
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithClock overrides time.Now for expiry checks, cooldowns and audit stamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// WithHooks observes every transport request in addition to the Engine's
// own metric hooks.
func (b *Builder) WithHooks(h transport.Hooks) *Builder {
	b.hooks = h
	return b
}

// WithStateObserver is called after every applied transition, outside the
// Engine lock. It may call back into the Engine, including from the
// hydration transition. Transitions racing with hydration may be reported
// before it.
func (b *Builder) WithStateObserver(fn func(State)) *Builder {
	b.observer = fn
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the Engine. The Google flag is
// resolved here, once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		store = session.NewMemoryStore()
	}
	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	engine := &Engine{
		config:        cloneConfig(cfg),
		identity:      b.identity,
		googleEnabled: cfg.Google.ClientID != "",
		logger:        logger,
		clock:         clock,
		observer:      b.observer,
		state:         InitialState(),
	}
	engine.metrics = NewMetrics(cfg.Metrics)
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.creds = NewCredentials(store, cfg.Persistence.TokenKey, cfg.Persistence.UserKey, cfg.Persistence.TTLDays)
	engine.resend = limiters.NewResendLimiter(b.redis, cfg.Resend.Cooldown, clock)

	opts := []transport.Option{
		transport.WithLogger(logger),
		transport.WithHooks(engine.transportHooks(b.hooks)),
	}
	if b.httpClient != nil {
		opts = append(opts, transport.WithHTTPClient(b.httpClient))
	}
	if cfg.API.Tracing {
		opts = append(opts, transport.WithTracing())
	}
	engine.http = transport.New(transport.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.RequestTimeout,
		UserAgent: cfg.API.UserAgent,
	}, engine.creds, opts...)
	engine.api = authapi.New(engine.http)

	engine.flows = flows.New(engine.flowDeps())

	b.built = true

	return engine, nil
}

func (e *Engine) flowDeps() flows.Deps {
	var expired func(string) bool
	if e.config.Revalidation.RevalidateExpired {
		leeway := e.config.Revalidation.Leeway
		expired = func(token string) bool {
			isExpired, known := jwt.Expired(token, e.now(), leeway)
			return known && isExpired
		}
	}

	return flows.Deps{
		Hydrate: flows.HydrateDeps{
			ReadToken:    e.creds.Token,
			ReadUser:     e.creds.User,
			WriteUser:    e.creds.SetUser,
			Clear:        e.creds.Clear,
			FetchUser:    e.api.GetCurrentUser,
			TokenExpired: expired,
			Timeout:      e.config.API.RequestTimeout,
		},
		Session: flows.SessionDeps{
			Persist:  e.creds.Save,
			Rollback: e.creds.Clear,
			Now:      e.now,
			Errors: flows.SessionErrors{
				MissingToken: ErrMissingToken,
			},
		},
		Logout: flows.LogoutDeps{
			Clear: e.creds.Clear,
		},
	}
}

func (e *Engine) transportHooks(user transport.Hooks) transport.Hooks {
	return transport.Hooks{
		OnRequest: user.OnRequest,
		OnResponse: func(ctx context.Context, resp *http.Response, d time.Duration) {
			e.metrics.Observe(MetricRequestLatency, d)
			if user.OnResponse != nil {
				user.OnResponse(ctx, resp, d)
			}
		},
		OnError: func(ctx context.Context, apiErr *transport.APIError) {
			if apiErr.IsNetwork() {
				e.metricInc(MetricNetworkError)
			}
			if user.OnError != nil {
				user.OnError(ctx, apiErr)
			}
		},
	}
}
