package authapi

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	MinPasswordLength       = 6
	MinStrongPasswordLength = 8
	MinNameLength           = 2
	MaxNameLength           = 50
	OTPCodeLength           = 6
	passwordSpecials        = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`
)

var (
	otpCodePattern = regexp.MustCompile(`^\d{6}$`)
	// format only; is.Email resolves MX records
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var (
	emailRules = []validation.Rule{
		validation.Required.Error("Email is required"),
		validation.Match(emailPattern).Error("Please enter a valid email address"),
	}
	otpRules = []validation.Rule{
		validation.Required.Error("Verification code is required"),
		validation.Match(otpCodePattern).Error("Verification code must be 6 digits"),
	}
	nameRules = []validation.Rule{
		validation.Length(MinNameLength, MaxNameLength).Error("Name must be between 2 and 50 characters"),
	}
)

// Validate checks the sign-in form before it is sent.
func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Password,
			validation.Required.Error("Password is required"),
			validation.Length(MinPasswordLength, 0).Error("Password must be at least 6 characters"),
		),
	)
}

// Validate checks the sign-up form. Passwords must be strong.
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, append([]validation.Rule{validation.Required.Error("Name is required")}, nameRules...)...),
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Password,
			validation.Required.Error("Password is required"),
			validation.By(StrongPassword),
		),
		validation.Field(&r.Phone, validation.Length(7, 15), is.Digit),
	)
}

func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Email, emailRules...))
}

func (r RequestEmailOtpRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Email, emailRules...))
}

func (r ResendCodeRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Email, emailRules...))
}

func (r VerifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Code, otpRules...))
}

func (r GoogleAuthRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.IDToken, validation.Required))
}

func (r SelectRoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.Required, validation.In(RoleCustomer, RoleStoreOwner)),
	)
}

// ValidateOtp checks the OTP form; newUser makes the name mandatory.
func (r VerifyEmailOtpRequest) ValidateOtp(newUser bool) error {
	name := nameRules
	if newUser {
		name = append([]validation.Rule{validation.Required.Error("Name is required for new users")}, nameRules...)
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Code, otpRules...),
		validation.Field(&r.Name, name...),
	)
}

// Validate checks the OTP form for an existing account.
func (r VerifyEmailOtpRequest) Validate() error {
	return r.ValidateOtp(false)
}

// StrongPassword requires at least 8 characters with a lower-case letter, an
// upper-case letter, a digit and one of the accepted special characters.
func StrongPassword(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if len([]rune(s)) < MinStrongPasswordLength {
		return errors.New("Password must be at least 8 characters")
	}

	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if !lower || !upper || !digit || !special {
		return errors.New("Password must contain uppercase, lowercase, number, and special character")
	}
	return nil
}

// ValidateStringEquals builds a rule that requires a confirmation field to
// match str.
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// ValidationMessage returns the first field message of a form validation
// error, by field name, or the error text for anything else.
func ValidationMessage(err error) string {
	if err == nil {
		return ""
	}
	var fields validation.Errors
	if !errors.As(err, &fields) {
		return err.Error()
	}
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v != nil {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return err.Error()
	}
	sort.Strings(keys)
	return fields[keys[0]].Error()
}
