package dashAuth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MrEthical07/dashAuth/authapi"
	"github.com/MrEthical07/dashAuth/internal/audit"
	"github.com/MrEthical07/dashAuth/session"
	"github.com/MrEthical07/dashAuth/transport"
)

const (
	auditEventLoginSuccess         = "login_success"
	auditEventLoginFailure         = "login_failure"
	auditEventVerificationRequired = "verification_required"
	auditEventSignUpSuccess        = "signup_success"
	auditEventSignUpFailure        = "signup_failure"
	auditEventGoogleSuccess        = "google_success"
	auditEventGoogleFailure        = "google_failure"
	auditEventOTPRequested         = "otp_requested"
	auditEventOTPVerified          = "otp_verified"
	auditEventOTPFailure           = "otp_failure"
	auditEventEmailVerified        = "email_verified"
	auditEventResendCode           = "resend_code"
	auditEventPasswordResetRequest = "password_reset_request"
	auditEventRoleSelected         = "role_selected"
	auditEventLogout               = "logout"
	auditEventUserSet              = "user_set"
	auditEventHydrateAuthenticated = "hydrate_authenticated"
	auditEventHydrateAnonymous     = "hydrate_anonymous"
	auditEventHydrateRevalidated   = "hydrate_revalidated"
	auditEventHydrateCleared       = "hydrate_cleared"
)

// AuditErrorCode is the coarse failure class recorded on audit events.
// Raw error strings never reach a sink.
type AuditErrorCode string

const (
	auditErrNetwork              AuditErrorCode = "network"
	auditErrUnauthorized         AuditErrorCode = "unauthorized"
	auditErrVerificationRequired AuditErrorCode = "verification_required"
	auditErrForbidden            AuditErrorCode = "forbidden"
	auditErrRejected             AuditErrorCode = "rejected"
	auditErrServer               AuditErrorCode = "server_error"
	auditErrInvalidResponse      AuditErrorCode = "invalid_response"
	auditErrInvalidTransition    AuditErrorCode = "invalid_transition"
	auditErrCooldown             AuditErrorCode = "cooldown"
	auditErrPersistence          AuditErrorCode = "persistence_unavailable"
	auditErrCorruptRecord        AuditErrorCode = "corrupt_record"
	auditErrIdentity             AuditErrorCode = "identity_provider"
	auditErrInternal             AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	user *User,
	email string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := audit.Event{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		Phase:     e.State().Phase.String(),
		Success:   success,
		Metadata:  metadata,
	}
	if user != nil {
		event.UserID = user.ID
		if email == "" {
			email = user.Email
		}
	}
	if email != "" {
		event.Email = authapi.MaskEmail(email)
	}
	if apiErr, ok := transport.AsAPIError(err); ok {
		event.Status = apiErr.Status
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	if _, ok := authapi.IsEmailVerificationError(err); ok {
		return auditErrVerificationRequired
	}
	if apiErr, ok := transport.AsAPIError(err); ok {
		switch {
		case apiErr.IsNetwork():
			return auditErrNetwork
		case apiErr.Status == http.StatusUnauthorized:
			return auditErrUnauthorized
		case apiErr.Status == http.StatusForbidden:
			return auditErrForbidden
		case apiErr.Status >= 500:
			return auditErrServer
		case apiErr.Status >= 400:
			return auditErrRejected
		default:
			return auditErrInvalidResponse
		}
	}

	switch {
	case errors.Is(err, ErrInvalidTransition):
		return auditErrInvalidTransition
	case errors.Is(err, ErrResendCooldown):
		return auditErrCooldown
	case errors.Is(err, session.ErrRedisUnavailable),
		errors.Is(err, session.ErrDatabaseUnavailable):
		return auditErrPersistence
	case errors.Is(err, ErrMissingToken):
		return auditErrInvalidResponse
	case errors.Is(err, ErrCorruptUser):
		return auditErrCorruptRecord
	case errors.Is(err, ErrGoogleDisabled),
		errors.Is(err, ErrNoIdentityProvider),
		errors.Is(err, ErrEmptyIdentityToken):
		return auditErrIdentity
	default:
		return auditErrInternal
	}
}

func sinceMillis(start, end time.Time) string {
	return end.Sub(start).Round(time.Millisecond).String()
}
