package authapi

// User is the signed-in principal as returned by the backend.
type User struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	ProfileImage    string `json:"profileImage,omitempty"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

// AuthResponse is returned by every operation that issues a session.
type AuthResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}

// MessageResponse is returned by operations that issue no session.
type MessageResponse struct {
	Message string `json:"message"`
}

type SignInRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe,omitempty"`
}

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type GoogleAuthRequest struct {
	IDToken string `json:"idToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type VerifyEmailRequest struct {
	Code string `json:"code"`
}

type VerifyEmailOtpRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
	Name  string `json:"name,omitempty"`
}

type RequestEmailOtpRequest struct {
	Email string `json:"email"`
}

// RequestEmailOtpResponse tells the caller whether the address belongs to a
// new account, in which case a name must be collected during verification.
type RequestEmailOtpResponse struct {
	Message   string `json:"message"`
	IsNewUser bool   `json:"isNewUser"`
}

type ResendCodeRequest struct {
	Email string `json:"email"`
}

// Role is an account role chosen after sign-up.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleStoreOwner Role = "store_owner"
)

type SelectRoleRequest struct {
	Role Role `json:"role"`
}

// VerifyEmailResult is either a full session or a bare message, depending on
// which flow the code was issued for.
type VerifyEmailResult struct {
	User        *User  `json:"user,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Session returns the issued session when the backend returned one.
func (r VerifyEmailResult) Session() (*AuthResponse, bool) {
	if r.AccessToken == "" || r.User == nil {
		return nil, false
	}
	return &AuthResponse{User: *r.User, AccessToken: r.AccessToken}, true
}
