package authapi

import (
	"context"
)

const (
	PathSignIn          = "/app/auth/signin"
	PathSignUp          = "/app/auth/signup?platform=web"
	PathGoogle          = "/app/auth/google?platform=web"
	PathForgotPassword  = "/app/auth/forgot-password"
	PathVerifyEmail     = "/app/auth/verify-email"
	PathVerifyEmailOtp  = "/app/auth/verify-email-otp?platform=web"
	PathRequestEmailOtp = "/app/auth/request-email-otp"
	PathResendCode      = "/app/auth/resend-code"
	PathMe              = "/app/auth/me"
	PathSelectRole      = "/app/auth/select-role"
)

// Requester is the transport used by Client; *transport.Client satisfies it.
type Requester interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Client is a typed wrapper over the auth endpoints. Every method is one
// request; errors come back from the transport unchanged.
type Client struct {
	http Requester
}

func New(r Requester) *Client {
	return &Client{http: r}
}

func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error) {
	return c.session(ctx, PathSignIn, req)
}

func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	return c.session(ctx, PathSignUp, req)
}

// SignInWithGoogle exchanges an external identity token for a session.
func (c *Client) SignInWithGoogle(ctx context.Context, req GoogleAuthRequest) (*AuthResponse, error) {
	return c.session(ctx, PathGoogle, req)
}

func (c *Client) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*MessageResponse, error) {
	out := &MessageResponse{}
	if err := c.http.Post(ctx, PathForgotPassword, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) VerifyEmail(ctx context.Context, req VerifyEmailRequest) (*VerifyEmailResult, error) {
	out := &VerifyEmailResult{}
	if err := c.http.Post(ctx, PathVerifyEmail, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyEmailOtp completes passwordless sign-in; Name is required by the
// backend for new accounts.
func (c *Client) VerifyEmailOtp(ctx context.Context, req VerifyEmailOtpRequest) (*AuthResponse, error) {
	return c.session(ctx, PathVerifyEmailOtp, req)
}

func (c *Client) RequestEmailOtp(ctx context.Context, req RequestEmailOtpRequest) (*RequestEmailOtpResponse, error) {
	out := &RequestEmailOtpResponse{}
	if err := c.http.Post(ctx, PathRequestEmailOtp, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ResendCode(ctx context.Context, req ResendCodeRequest) (*MessageResponse, error) {
	out := &MessageResponse{}
	if err := c.http.Post(ctx, PathResendCode, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCurrentUser confirms the persisted token is still accepted.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	out := &User{}
	if err := c.http.Get(ctx, PathMe, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SelectRole assigns the account role and returns a re-issued session.
func (c *Client) SelectRole(ctx context.Context, req SelectRoleRequest) (*AuthResponse, error) {
	return c.session(ctx, PathSelectRole, req)
}

func (c *Client) session(ctx context.Context, path string, body any) (*AuthResponse, error) {
	out := &AuthResponse{}
	if err := c.http.Post(ctx, path, body, out); err != nil {
		return nil, err
	}
	return out, nil
}
