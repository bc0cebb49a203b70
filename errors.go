package dashAuth

import "errors"

var (
	// ErrInvalidTransition is returned when an event does not apply to the
	// current phase. The state is left unchanged.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrGoogleDisabled is returned by Google sign-in when no client ID is configured.
	ErrGoogleDisabled = errors.New("google sign-in disabled")
	// ErrNoIdentityProvider is returned when Google sign-in is enabled but no
	// identity token provider was configured.
	ErrNoIdentityProvider = errors.New("identity token provider not configured")
	// ErrEmptyIdentityToken is returned when a provider resolves to an empty token.
	ErrEmptyIdentityToken = errors.New("empty identity token")
	// ErrResendCooldown is returned by ResendCode while the previous code is
	// still cooling down. Callers can unwrap a *CooldownError for the wait.
	ErrResendCooldown = errors.New("resend cooldown active")
	// ErrMissingToken is returned when the backend answers a sign-in without
	// an access token. Nothing is persisted.
	ErrMissingToken = errors.New("session response missing access token")
	// ErrCorruptUser is returned when the cached user record cannot be decoded.
	ErrCorruptUser = errors.New("cached user record corrupt")
	// ErrEngineClosed is returned by operations on a closed Engine.
	ErrEngineClosed = errors.New("engine closed")
	// ErrEngineNotReady is returned by operations on a nil or unbuilt Engine.
	ErrEngineNotReady = errors.New("engine not ready")
)
