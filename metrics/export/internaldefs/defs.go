package internaldefs

import (
	dashAuth "github.com/MrEthical07/dashAuth"
)

// CounterDef names one Engine counter for exporters.
type CounterDef struct {
	ID   dashAuth.MetricID
	Name string
	Help string
}

// HistogramDef names one Engine histogram for exporters.
type HistogramDef struct {
	ID   dashAuth.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: dashAuth.MetricLoginSuccess, Name: "dashauth_login_success_total", Help: "Successful password sign-ins."},
	{ID: dashAuth.MetricLoginFailure, Name: "dashauth_login_failure_total", Help: "Failed password sign-ins."},
	{ID: dashAuth.MetricVerificationRequired, Name: "dashauth_verification_required_total", Help: "Sign-ins rejected for an unverified email."},
	{ID: dashAuth.MetricSignUpSuccess, Name: "dashauth_signup_success_total", Help: "Successful sign-ups."},
	{ID: dashAuth.MetricSignUpFailure, Name: "dashauth_signup_failure_total", Help: "Failed sign-ups."},
	{ID: dashAuth.MetricGoogleSuccess, Name: "dashauth_google_success_total", Help: "Successful Google sign-ins."},
	{ID: dashAuth.MetricGoogleFailure, Name: "dashauth_google_failure_total", Help: "Failed Google sign-ins."},
	{ID: dashAuth.MetricOTPRequested, Name: "dashauth_otp_requested_total", Help: "Email sign-in codes requested."},
	{ID: dashAuth.MetricOTPVerifySuccess, Name: "dashauth_otp_verify_success_total", Help: "Successful email code sign-ins."},
	{ID: dashAuth.MetricOTPVerifyFailure, Name: "dashauth_otp_verify_failure_total", Help: "Failed email code sign-ins."},
	{ID: dashAuth.MetricEmailVerified, Name: "dashauth_email_verified_total", Help: "Confirmed email verification codes."},
	{ID: dashAuth.MetricEmailVerifyFailure, Name: "dashauth_email_verify_failure_total", Help: "Rejected email verification codes."},
	{ID: dashAuth.MetricResendSent, Name: "dashauth_resend_sent_total", Help: "Verification codes resent."},
	{ID: dashAuth.MetricResendCooldown, Name: "dashauth_resend_cooldown_total", Help: "Resends refused during the cooldown."},
	{ID: dashAuth.MetricRoleSelected, Name: "dashauth_role_selected_total", Help: "Successful role selections."},
	{ID: dashAuth.MetricRoleSelectFailure, Name: "dashauth_role_select_failure_total", Help: "Failed role selections."},
	{ID: dashAuth.MetricPasswordResetRequest, Name: "dashauth_password_reset_request_total", Help: "Password reset codes requested."},
	{ID: dashAuth.MetricNetworkError, Name: "dashauth_network_error_total", Help: "Requests that never reached the backend."},
	{ID: dashAuth.MetricLogout, Name: "dashauth_logout_total", Help: "Logouts."},
	{ID: dashAuth.MetricUserSet, Name: "dashauth_user_set_total", Help: "Direct user replacements."},
	{ID: dashAuth.MetricHydrateAuthenticated, Name: "dashauth_hydrate_authenticated_total", Help: "Hydrations that restored a session."},
	{ID: dashAuth.MetricHydrateAnonymous, Name: "dashauth_hydrate_anonymous_total", Help: "Hydrations that resolved anonymous."},
	{ID: dashAuth.MetricHydrateRevalidated, Name: "dashauth_hydrate_revalidated_total", Help: "Hydrations that asked the backend for the current user."},
	{ID: dashAuth.MetricHydrateCleared, Name: "dashauth_hydrate_cleared_total", Help: "Hydrations that discarded the persisted records."},
	{ID: dashAuth.MetricGateRedirect, Name: "dashauth_gate_redirect_total", Help: "Navigations redirected to sign-in."},
	{ID: dashAuth.MetricGateLoading, Name: "dashauth_gate_loading_total", Help: "Navigations served a loading placeholder."},
}

var HistogramDefs = []HistogramDef{
	{ID: dashAuth.MetricRequestLatency, Name: "dashauth_request_latency_seconds", Help: "Auth API request latency."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The last
// Engine bucket is +Inf.
var HistogramUpperBounds = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

const (
	AuditDroppedName = "dashauth_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// NormalizeBuckets pads or truncates raw to the Engine's eight buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
