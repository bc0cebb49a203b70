package dashAuth

import (
	"net/url"
	"strconv"

	"github.com/MrEthical07/dashAuth/authapi"
)

// IntentKind says what a caller should do after an operation.
type IntentKind uint8

const (
	// IntentNavigate means go to Intent.Location.
	IntentNavigate IntentKind = iota
	// IntentError means show Intent.Message and stay.
	IntentError
	// IntentNotice means show Intent.Message as a confirmation and stay.
	IntentNotice
)

// Intent is the pure result of mapping an operation outcome to UI behaviour.
type Intent struct {
	Kind     IntentKind
	Location string
	Message  string
}

func navigate(loc string) Intent { return Intent{Kind: IntentNavigate, Location: loc} }

func errorIntent(err error, fallback string) Intent {
	return Intent{Kind: IntentError, Message: authapi.ErrorMessage(err, fallback)}
}

// VerifyEmailLocation builds the verification route for email. from is
// "signin" or "signup".
func VerifyEmailLocation(email, from string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("from", from)
	return PathVerifyEmail + "?" + q.Encode()
}

// InvalidFormOutcome reports a form rejected before submission. Nothing was
// sent to the backend.
func InvalidFormOutcome(err error) Intent {
	return Intent{Kind: IntentError, Message: authapi.ValidationMessage(err)}
}

// SignInOutcome maps a Login result. An unverified account always routes to
// verification, preferring the email the backend echoed.
func SignInOutcome(err error, submittedEmail string) Intent {
	if err == nil {
		return navigate(PathDashboard)
	}
	if email, ok := authapi.IsEmailVerificationError(err); ok {
		if email == "" {
			email = submittedEmail
		}
		return navigate(VerifyEmailLocation(email, "signin"))
	}
	return errorIntent(err, "Sign in failed")
}

func SignUpOutcome(err error, submittedEmail string) Intent {
	if err != nil {
		return errorIntent(err, "Sign up failed")
	}
	return navigate(VerifyEmailLocation(submittedEmail, "signup"))
}

func GoogleOutcome(err error) Intent {
	if err != nil {
		return errorIntent(err, "Google sign in failed")
	}
	return navigate(PathDashboard)
}

// ForgotPasswordOutcome maps a ForgotPassword result. Unverified accounts
// are sent to verification first.
func ForgotPasswordOutcome(err error, submittedEmail string) Intent {
	if err == nil {
		return Intent{Kind: IntentNotice, Message: "OTP sent"}
	}
	if email, ok := authapi.IsEmailVerificationError(err); ok {
		if email == "" {
			email = submittedEmail
		}
		return navigate(VerifyEmailLocation(email, "signup"))
	}
	return errorIntent(err, "Failed to send OTP")
}

// VerifyEmailOutcome maps a successful VerifyEmail result.
func VerifyEmailOutcome(res *VerifyEmailResult) Intent {
	if res != nil {
		if _, ok := res.Session(); ok {
			return navigate(PathDashboard)
		}
	}
	return navigate(PathSignIn)
}

// EmailOTPRequestedOutcome routes to code entry after RequestEmailOtp.
func EmailOTPRequestedOutcome(resp *RequestEmailOtpResponse, email string) Intent {
	isNew := resp != nil && resp.IsNewUser
	q := url.Values{}
	q.Set("email", email)
	q.Set("isNewUser", strconv.FormatBool(isNew))
	return navigate(PathVerifyEmailOtp + "?" + q.Encode())
}
