package dashAuth

import "strings"

// DecisionKind is the outcome of the route policy.
type DecisionKind uint8

const (
	// DecisionLoading means hydration is pending: render a placeholder.
	DecisionLoading DecisionKind = iota
	// DecisionRedirect means navigate to Decision.Location.
	DecisionRedirect
	DecisionAllow
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionLoading:
		return "loading"
	case DecisionRedirect:
		return "redirect"
	case DecisionAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// Decision is returned by Gate.
type Decision struct {
	Kind     DecisionKind
	Location string
}

const (
	PathRoot           = "/"
	PathSignIn         = "/signin"
	PathSignUp         = "/signup"
	PathForgotPassword = "/forgot-password"
	PathVerifyEmail    = "/verify-email"
	PathVerifyEmailOtp = "/verify-email-otp"
	PathEmailLogin     = "/email-login"
	PathSuccess        = "/success"
	PathDashboard      = "/dashboard"
	PathSelectRole     = "/select-role"
)

// PublicPaths lists the routes reachable without a session. Each entry also
// covers its sub-paths.
var PublicPaths = []string{
	PathSignIn,
	PathSignUp,
	PathForgotPassword,
	PathVerifyEmail,
	PathVerifyEmailOtp,
	PathEmailLogin,
	PathSuccess,
}

// IsPublicPath reports whether path needs no session. Matching is by whole
// path segment: "/verify-email/abc" is public, "/signin-x" is not.
func IsPublicPath(path string) bool {
	if path == "" || path == PathRoot {
		return true
	}
	for _, p := range PublicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Gate decides what to do with a navigation to path given st. It is
// evaluated on every navigation; nothing is cached.
func Gate(path string, st State) Decision {
	if st.Loading() {
		return Decision{Kind: DecisionLoading}
	}
	if !st.Authenticated() && !IsPublicPath(path) {
		return Decision{Kind: DecisionRedirect, Location: PathSignIn}
	}
	return Decision{Kind: DecisionAllow}
}

// Gate evaluates the route policy against the Engine's current state and
// counts loading and redirect decisions.
func (e *Engine) Gate(path string) Decision {
	d, _ := e.Evaluate(path)
	return d
}

// Evaluate is Gate that also returns the state the decision was made on.
func (e *Engine) Evaluate(path string) (Decision, State) {
	st := e.State()
	d := Gate(path, st)
	switch d.Kind {
	case DecisionLoading:
		e.metricInc(MetricGateLoading)
	case DecisionRedirect:
		e.metricInc(MetricGateRedirect)
	}
	return d, st
}
