package transport

import (
	"encoding/json"
	"errors"
	"strconv"
)

const (
	// NetworkErrorMessage is reported when no response was received.
	NetworkErrorMessage = "Network error. Please check your connection."
	// RequestFailedMessage is the fallback when an error body carries no text.
	RequestFailedMessage = "Request failed"
	// InvalidResponseMessage is reported when a 2xx body is not valid JSON.
	InvalidResponseMessage = "Invalid response from server"
)

// ErrorData is the JSON error body returned by the backend. The email key is
// sent only when the account exists but its address is not verified yet;
// HasEmail records that the key was present even when its value is empty or
// null.
type ErrorData struct {
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	Email    string `json:"email,omitempty"`
	HasEmail bool   `json:"-"`
}

func (d *ErrorData) UnmarshalJSON(raw []byte) error {
	type body ErrorData
	var decoded body
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return err
	}
	_, decoded.HasEmail = keys["email"]
	*d = ErrorData(decoded)
	return nil
}

// EmailPresent reports whether the body carried the email key.
func (d *ErrorData) EmailPresent() bool {
	return d != nil && (d.HasEmail || d.Email != "")
}

// APIError is the single error shape produced by Client. Status 0 means no
// response was received at all.
type APIError struct {
	Status    int
	Data      *ErrorData
	Message   string
	RequestID string
	Err       error
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Status == 0 {
		return "api: " + e.Message
	}
	return "api: status " + strconv.Itoa(e.Status) + ": " + e.Message
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsNetwork reports whether the request never reached the backend.
func (e *APIError) IsNetwork() bool {
	return e != nil && e.Status == 0
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if err == nil || !errors.As(err, &apiErr) || apiErr == nil {
		return nil, false
	}
	return apiErr, true
}

func newNetworkError(requestID string, cause error) *APIError {
	return &APIError{
		Status:    0,
		Message:   NetworkErrorMessage,
		RequestID: requestID,
		Err:       cause,
	}
}

func newStatusError(status int, data *ErrorData, requestID string) *APIError {
	if data == nil {
		data = &ErrorData{}
	}
	msg := data.Message
	if msg == "" {
		msg = data.Error
	}
	if msg == "" {
		msg = RequestFailedMessage
	}
	return &APIError{
		Status:    status,
		Data:      data,
		Message:   msg,
		RequestID: requestID,
	}
}
