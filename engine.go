package dashAuth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/dashAuth/authapi"
	"github.com/MrEthical07/dashAuth/internal/audit"
	"github.com/MrEthical07/dashAuth/internal/flows"
	"github.com/MrEthical07/dashAuth/internal/limiters"
	"github.com/MrEthical07/dashAuth/transport"
)

// Engine is the client session: it owns the credential record, the state
// machine and the auth API client. Safe for concurrent use after Build.
//
// Concurrent sign-ins are not de-duplicated; the last response to arrive
// wins.
type Engine struct {
	config        Config
	api           *authapi.Client
	http          *transport.Client
	creds         *Credentials
	flows         flows.Service
	identity      IdentityTokenProvider
	googleEnabled bool
	resend        limiters.ResendLimiter
	audit         *audit.Dispatcher
	metrics       *Metrics
	logger        *slog.Logger
	clock         func() time.Time
	observer      func(State)

	mu          sync.RWMutex
	state       State
	hydrateOnce sync.Once
	hydrateErr  error
	closed      atomic.Bool
}

// operation ties an Engine method to its metric and audit names.
type operation struct {
	name      string
	success   MetricID
	failure   MetricID
	okEvent   string
	failEvent string
}

var (
	opLogin        = operation{"login", MetricLoginSuccess, MetricLoginFailure, auditEventLoginSuccess, auditEventLoginFailure}
	opSignUp       = operation{"signup", MetricSignUpSuccess, MetricSignUpFailure, auditEventSignUpSuccess, auditEventSignUpFailure}
	opGoogle       = operation{"google", MetricGoogleSuccess, MetricGoogleFailure, auditEventGoogleSuccess, auditEventGoogleFailure}
	opVerifyOtp    = operation{"verify_email_otp", MetricOTPVerifySuccess, MetricOTPVerifyFailure, auditEventOTPVerified, auditEventOTPFailure}
	opVerifyEmail  = operation{"verify_email", MetricEmailVerified, MetricEmailVerifyFailure, auditEventEmailVerified, auditEventOTPFailure}
	opSelectRole   = operation{"select_role", MetricRoleSelected, MetricRoleSelectFailure, auditEventRoleSelected, auditEventRoleSelected}
	opRequestOtp   = operation{"request_email_otp", MetricOTPRequested, metricNone, auditEventOTPRequested, auditEventOTPRequested}
	opResend       = operation{"resend_code", MetricResendSent, metricNone, auditEventResendCode, auditEventResendCode}
	opForgotPasswd = operation{"forgot_password", MetricPasswordResetRequest, metricNone, auditEventPasswordResetRequest, auditEventPasswordResetRequest}
)

// metricNone is ignored by Metrics.Inc.
const metricNone = metricIDCount

func (e *Engine) ready() error {
	if e == nil || e.api == nil {
		return ErrEngineNotReady
	}
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return nil
}

func (e *Engine) now() time.Time {
	if e == nil || e.clock == nil {
		return time.Now()
	}
	return e.clock()
}

// Close stops the audit dispatcher after draining it. Further operations
// return ErrEngineClosed.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.closed.Store(true)
	if e.audit != nil {
		e.audit.Close()
	}
}

func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// State returns a snapshot of the session.
func (e *Engine) State() State {
	if e == nil {
		return InitialState()
	}
	e.mu.RLock()
	st := e.state
	e.mu.RUnlock()
	st.User = cloneUser(st.User)
	return st
}

// GoogleEnabled reports whether Google sign-in was configured at Build.
func (e *Engine) GoogleEnabled() bool {
	return e != nil && e.googleEnabled
}

// Config returns a copy of the configuration the Engine was built with.
func (e *Engine) Config() Config {
	if e == nil {
		return defaultConfig()
	}
	return cloneConfig(e.config)
}

func (e *Engine) apply(ev Event) (State, error) {
	next, err := e.transition(ev)
	if err == nil {
		e.notify(next)
	}
	return next, err
}

// transition applies ev without reporting it to the observer.
func (e *Engine) transition(ev Event) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := e.state.Apply(ev)
	if err == nil {
		e.state = next
	}
	return next, err
}

// notify must not run under e.mu or inside hydrateOnce; observers may call
// back into the Engine.
func (e *Engine) notify(st State) {
	if e.observer != nil {
		e.observer(State{Phase: st.Phase, User: cloneUser(st.User)})
	}
}

/*
====================================
HYDRATION
====================================
*/

// Hydrate reconstructs the session from the credential record. It runs once;
// later and concurrent calls wait for and return the same resolution. The
// returned error is only ever a persistence failure, and even then the state
// has left PhaseHydrating.
func (e *Engine) Hydrate(ctx context.Context) (State, error) {
	if err := e.ready(); err != nil {
		return e.State(), err
	}
	var resolved *State
	e.hydrateOnce.Do(func() {
		resolved, e.hydrateErr = e.hydrate(ctx)
	})
	if resolved != nil {
		e.notify(*resolved)
	}
	return e.State(), e.hydrateErr
}

// hydrate returns the resolved state for the caller to report once the
// once-guard is released.
func (e *Engine) hydrate(ctx context.Context) (*State, error) {
	start := e.now()
	res := e.flows.Hydrate(ctx)

	var ev Event = EventResolvedAnonymous{}
	if res.User != nil && (res.Outcome == flows.HydrateCached || res.Outcome == flows.HydrateRevalidated) {
		ev = EventResolvedAuthenticated{User: *res.User}
	}
	st, err := e.transition(ev)
	if err != nil {
		return nil, err
	}

	meta := func() map[string]string {
		m := map[string]string{
			"outcome":  res.Outcome.String(),
			"duration": sinceMillis(start, e.now()),
		}
		if res.Stale {
			m["stale"] = "true"
		}
		return m
	}

	switch res.Outcome {
	case flows.HydrateCached:
		e.metricInc(MetricHydrateAuthenticated)
		e.emitAudit(ctx, auditEventHydrateAuthenticated, true, st.User, "", nil, meta)
	case flows.HydrateRevalidated:
		e.metricInc(MetricHydrateAuthenticated)
		e.metricInc(MetricHydrateRevalidated)
		e.emitAudit(ctx, auditEventHydrateRevalidated, true, st.User, "", nil, meta)
	case flows.HydrateCleared:
		e.metricInc(MetricHydrateAnonymous)
		e.metricInc(MetricHydrateCleared)
		cause := res.FetchErr
		if cause == nil {
			cause = res.Err
		}
		e.logger.InfoContext(ctx, "dashauth: persisted session discarded",
			"stale", res.Stale,
			"error", cause,
		)
		e.emitAudit(ctx, auditEventHydrateCleared, false, nil, "", cause, meta)
	default:
		e.metricInc(MetricHydrateAnonymous)
		e.emitAudit(ctx, auditEventHydrateAnonymous, true, nil, "", res.Err, meta)
	}

	if res.Err != nil {
		if errors.Is(res.Err, ErrCorruptUser) && !hasStoreFailure(res.Err) {
			e.logger.WarnContext(ctx, "dashauth: cached user unreadable", "error", res.Err)
			return &st, nil
		}
		e.logger.ErrorContext(ctx, "dashauth: hydration persistence failure", "error", res.Err)
		return &st, res.Err
	}
	return &st, nil
}

// hasStoreFailure reports whether err carries anything besides a corrupt
// user record, e.g. a failed Clear joined to it.
func hasStoreFailure(err error) bool {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return false
	}
	for _, inner := range joined.Unwrap() {
		if inner != nil && !errors.Is(inner, ErrCorruptUser) {
			return true
		}
	}
	return false
}

// awaitHydration makes every mutation observe a resolved state.
func (e *Engine) awaitHydration(ctx context.Context) {
	_, _ = e.Hydrate(ctx)
}

/*
====================================
SIGN-IN FAMILY
====================================
*/

// Login signs in with email and password. On success the token and user are
// persisted and the session is authenticated; errors are returned unchanged.
func (e *Engine) Login(ctx context.Context, email, password string, rememberMe bool) (*AuthResponse, error) {
	return e.issue(ctx, opLogin, email, func(ctx context.Context) (*AuthResponse, error) {
		return e.api.SignIn(ctx, authapi.SignInRequest{
			Email:      email,
			Password:   password,
			RememberMe: rememberMe,
		})
	})
}

func (e *Engine) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	return e.issue(ctx, opSignUp, req.Email, func(ctx context.Context) (*AuthResponse, error) {
		return e.api.SignUp(ctx, req)
	})
}

// SignInWithGoogle exchanges a resolved Google ID token for a session.
func (e *Engine) SignInWithGoogle(ctx context.Context, idToken string) (*AuthResponse, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if !e.googleEnabled {
		return nil, ErrGoogleDisabled
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, ErrEmptyIdentityToken
	}
	return e.issue(ctx, opGoogle, "", func(ctx context.Context) (*AuthResponse, error) {
		return e.api.SignInWithGoogle(ctx, authapi.GoogleAuthRequest{IDToken: idToken})
	})
}

// SignInWithIdentityProvider asks the configured provider for a token and
// signs in with it.
func (e *Engine) SignInWithIdentityProvider(ctx context.Context) (*AuthResponse, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if !e.googleEnabled {
		return nil, ErrGoogleDisabled
	}
	if e.identity == nil {
		return nil, ErrNoIdentityProvider
	}

	idToken, err := e.identity.RequestIdentityToken(ctx)
	if err != nil {
		e.recordFailure(ctx, opGoogle, "", err)
		return nil, err
	}
	return e.SignInWithGoogle(ctx, idToken)
}

// VerifyEmailOtp completes passwordless sign-in. The session is always
// persisted on success.
func (e *Engine) VerifyEmailOtp(ctx context.Context, req VerifyEmailOtpRequest) (*AuthResponse, error) {
	return e.issue(ctx, opVerifyOtp, req.Email, func(ctx context.Context) (*AuthResponse, error) {
		return e.api.VerifyEmailOtp(ctx, req)
	})
}

// SelectRole assigns the account role; the re-issued session replaces the
// current one.
func (e *Engine) SelectRole(ctx context.Context, role Role) (*AuthResponse, error) {
	return e.issue(ctx, opSelectRole, "", func(ctx context.Context) (*AuthResponse, error) {
		return e.api.SelectRole(ctx, authapi.SelectRoleRequest{Role: role})
	})
}

// VerifyEmail confirms a link code. When the backend issues a session with
// the confirmation it is persisted and the session becomes authenticated.
func (e *Engine) VerifyEmail(ctx context.Context, code string) (*VerifyEmailResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	e.awaitHydration(ctx)

	res, err := e.api.VerifyEmail(ctx, authapi.VerifyEmailRequest{Code: code})
	if err != nil {
		e.recordFailure(ctx, opVerifyEmail, "", err)
		return nil, err
	}

	sess, ok := res.Session()
	if !ok {
		e.metricInc(opVerifyEmail.success)
		e.emitAudit(ctx, opVerifyEmail.okEvent, true, nil, "", nil, nil)
		return res, nil
	}
	issued := e.flows.IssueSession(ctx, func(context.Context) (*AuthResponse, error) {
		return sess, nil
	})
	if issued.Err != nil {
		e.recordFailure(ctx, opVerifyEmail, sess.User.Email, issued.Err)
		return nil, issued.Err
	}
	e.signedIn(ctx, opVerifyEmail, sess.User)
	return res, nil
}

func (e *Engine) issue(ctx context.Context, op operation, email string, call func(context.Context) (*AuthResponse, error)) (*AuthResponse, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	e.awaitHydration(ctx)

	res := e.flows.IssueSession(ctx, call)
	if res.Err != nil {
		e.recordFailure(ctx, op, email, res.Err)
		return nil, res.Err
	}
	e.signedIn(ctx, op, res.Response.User)
	return res.Response, nil
}

func (e *Engine) signedIn(ctx context.Context, op operation, u User) {
	st, err := e.apply(EventSignedIn{User: u})
	if err != nil {
		e.logger.ErrorContext(ctx, "dashauth: transition rejected", "op", op.name, "error", err)
		return
	}
	e.metricInc(op.success)
	e.logger.InfoContext(ctx, "dashauth: signed in",
		"op", op.name,
		"user_id", u.ID,
		"email", authapi.MaskEmail(u.Email),
	)
	e.emitAudit(ctx, op.okEvent, true, st.User, "", nil, nil)
}

func (e *Engine) recordFailure(ctx context.Context, op operation, email string, err error) {
	e.metricInc(op.failure)

	event := op.failEvent
	if _, ok := authapi.IsEmailVerificationError(err); ok && op.name == opLogin.name {
		e.metricInc(MetricVerificationRequired)
		event = auditEventVerificationRequired
	}

	attrs := []any{"op", op.name, "error", err}
	if email != "" {
		attrs = append(attrs, "email", authapi.MaskEmail(email))
	}
	if apiErr, ok := transport.AsAPIError(err); ok {
		attrs = append(attrs, "status", apiErr.Status, "request_id", apiErr.RequestID)
	}
	e.logger.WarnContext(ctx, "dashauth: operation failed", attrs...)
	e.emitAudit(ctx, event, false, nil, email, err, func() map[string]string {
		return map[string]string{"op": op.name}
	})
}

/*
====================================
CODES AND RECOVERY
====================================
*/

// RequestEmailOtp sends a sign-in code. The resend cooldown starts on success.
func (e *Engine) RequestEmailOtp(ctx context.Context, email string) (*RequestEmailOtpResponse, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	resp, err := e.api.RequestEmailOtp(ctx, authapi.RequestEmailOtpRequest{Email: email})
	if err != nil {
		e.recordFailure(ctx, opRequestOtp, email, err)
		return nil, err
	}
	e.startCooldown(ctx, email)
	e.metricInc(opRequestOtp.success)
	e.emitAudit(ctx, opRequestOtp.okEvent, true, nil, email, nil, func() map[string]string {
		if resp.IsNewUser {
			return map[string]string{"new_user": "true"}
		}
		return nil
	})
	return resp, nil
}

// ResendCode resends a verification code unless the previous one is still
// cooling down, in which case the error is a *CooldownError matching
// ErrResendCooldown.
func (e *Engine) ResendCode(ctx context.Context, email string) (*MessageResponse, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	left, err := e.resend.Remaining(ctx, email)
	if err != nil {
		e.logger.WarnContext(ctx, "dashauth: resend limiter unavailable", "error", err)
	}
	if left > 0 {
		e.metricInc(MetricResendCooldown)
		cooldown := &CooldownError{Remaining: left}
		e.emitAudit(ctx, opResend.failEvent, false, nil, email, cooldown, nil)
		return nil, cooldown
	}

	resp, err := e.api.ResendCode(ctx, authapi.ResendCodeRequest{Email: email})
	if err != nil {
		e.recordFailure(ctx, opResend, email, err)
		return nil, err
	}
	e.startCooldown(ctx, email)
	e.metricInc(opResend.success)
	e.emitAudit(ctx, opResend.okEvent, true, nil, email, nil, nil)
	return resp, nil
}

// ResendRemaining reports how long until ResendCode is allowed for email.
func (e *Engine) ResendRemaining(ctx context.Context, email string) time.Duration {
	if e == nil || e.resend == nil {
		return 0
	}
	left, _ := e.resend.Remaining(ctx, email)
	return left
}

func (e *Engine) startCooldown(ctx context.Context, email string) {
	if err := e.resend.Start(ctx, email); err != nil {
		e.logger.WarnContext(ctx, "dashauth: resend cooldown not recorded", "error", err)
	}
}

// ForgotPassword asks the backend to send a reset code.
func (e *Engine) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	resp, err := e.api.ForgotPassword(ctx, authapi.ForgotPasswordRequest{Email: email})
	if err != nil {
		e.recordFailure(ctx, opForgotPasswd, email, err)
		return nil, err
	}
	e.metricInc(opForgotPasswd.success)
	e.emitAudit(ctx, opForgotPasswd.okEvent, true, nil, email, nil, nil)
	return resp, nil
}

/*
====================================
SIGN-OUT AND USER
====================================
*/

// Logout removes both records and ends the session. Logging out while
// already anonymous leaves the records absent and returns nil. Navigation is
// the caller's job.
func (e *Engine) Logout(ctx context.Context) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.awaitHydration(ctx)

	before := e.State()
	clearErr := e.flows.Logout(ctx)
	if _, err := e.apply(EventSignedOut{}); err != nil {
		return err
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, clearErr == nil, before.User, "", clearErr, nil)
	if clearErr != nil {
		e.logger.ErrorContext(ctx, "dashauth: logout could not clear records", "error", clearErr)
		return clearErr
	}
	return nil
}

// SetUser installs u (or clears the user when nil) and its cached copy
// without a network call. The state changes even if the write fails.
func (e *Engine) SetUser(ctx context.Context, u *User) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.awaitHydration(ctx)

	u = cloneUser(u)
	st, err := e.apply(EventUserSet{User: u})
	if err != nil {
		return err
	}

	writeErr := e.creds.SetUser(ctx, u)
	e.metricInc(MetricUserSet)
	e.emitAudit(ctx, auditEventUserSet, writeErr == nil, st.User, "", writeErr, nil)
	return writeErr
}

// Token returns the persisted bearer token, if any.
func (e *Engine) Token(ctx context.Context) (string, bool, error) {
	if err := e.ready(); err != nil {
		return "", false, err
	}
	return e.creds.Token(ctx)
}

// API exposes the typed client for endpoints that do not change the session.
func (e *Engine) API() *authapi.Client {
	if e == nil {
		return nil
	}
	return e.api
}
