// Package apierror normalizes backend failures into a single error shape.
package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// CodeVerificationRequired is sent by the backend when the account email is not verified yet.
const CodeVerificationRequired = "VERIFICATION_REQUIRED"

// Error is the normalized form of every failed backend call
type Error struct {
	Message              string `json:"error"`
	Code                 string `json:"code,omitempty"`
	VerificationRequired bool   `json:"verificationRequired,omitempty"`
	Status               int    `json:"status,omitempty"`
	StatusCode           int    `json:"statusCode,omitempty"`

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// body is the error payload the backend returns on non-2xx responses
type body struct {
	Error                string `json:"error"`
	Message              string `json:"message"`
	Code                 string `json:"code"`
	VerificationRequired bool   `json:"verificationRequired"`
}

// FromResponse builds an Error from an HTTP status and response body
func FromResponse(status int, raw []byte) *Error {
	var b body
	if len(raw) > 0 {
		// Non-JSON bodies fall back to the status text.
		_ = json.Unmarshal(raw, &b)
	}

	msg := strings.TrimSpace(b.Error)
	if msg == "" {
		msg = strings.TrimSpace(b.Message)
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = "request failed"
	}

	return &Error{
		Message:              msg,
		Code:                 b.Code,
		VerificationRequired: b.VerificationRequired || b.Code == CodeVerificationRequired,
		Status:               status,
		StatusCode:           status,
	}
}

// FromTransport wraps a failure that never produced an HTTP response
func FromTransport(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{Message: err.Error(), cause: err}
}

// As extracts an *Error from an error chain
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthorized reports whether err is a 401 from the backend
func IsUnauthorized(err error) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Status == http.StatusNotFound
}

// IsVerificationRequired reports whether the backend asked for account verification
func IsVerificationRequired(err error) bool {
	apiErr, ok := As(err)
	return ok && apiErr.VerificationRequired
}
