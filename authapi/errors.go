package authapi

import (
	"net/http"

	"github.com/MrEthical07/dashAuth/transport"
)

// IsEmailVerificationError reports whether err is the backend's "email not
// verified" rejection: status 403 with an email key in the body. The
// returned email is the one the backend echoed and may be empty when the key
// was sent as "" or null; callers fall back to the submitted address.
func IsEmailVerificationError(err error) (string, bool) {
	apiErr, ok := transport.AsAPIError(err)
	if !ok || apiErr.Status != http.StatusForbidden || !apiErr.Data.EmailPresent() {
		return "", false
	}
	return apiErr.Data.Email, true
}

// IsNetworkError reports whether err never reached the backend.
func IsNetworkError(err error) bool {
	apiErr, ok := transport.AsAPIError(err)
	return ok && apiErr.IsNetwork()
}

// ErrorMessage picks the most specific human-readable text for err, falling
// back to fallback for nil errors and empty messages.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	apiErr, ok := transport.AsAPIError(err)
	if !ok {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return fallback
	}
	if apiErr.Data != nil {
		if apiErr.Data.Message != "" {
			return apiErr.Data.Message
		}
		if apiErr.Data.Error != "" {
			return apiErr.Data.Error
		}
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
