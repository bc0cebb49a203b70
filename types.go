package dashAuth

import (
	"fmt"
	"time"

	"github.com/MrEthical07/dashAuth/authapi"
)

// Wire types are shared with authapi so callers need only one import.
type (
	User                    = authapi.User
	AuthResponse            = authapi.AuthResponse
	SignUpRequest           = authapi.SignUpRequest
	VerifyEmailOtpRequest   = authapi.VerifyEmailOtpRequest
	VerifyEmailResult       = authapi.VerifyEmailResult
	RequestEmailOtpResponse = authapi.RequestEmailOtpResponse
	MessageResponse         = authapi.MessageResponse
	Role                    = authapi.Role
)

const (
	RoleCustomer   = authapi.RoleCustomer
	RoleStoreOwner = authapi.RoleStoreOwner
)

// CooldownError carries the remaining wait of a rejected resend.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: retry in %s", ErrResendCooldown, e.Remaining.Round(time.Second))
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrResendCooldown
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
