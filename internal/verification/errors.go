package verification

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized reason a lookup could not be used.
type ErrorCategory string

const (
	// ErrorTransport means the request never produced a response.
	ErrorTransport ErrorCategory = "transport"

	// ErrorHTTPStatus means the endpoint answered with a non-2xx status.
	ErrorHTTPStatus ErrorCategory = "http_status"

	// ErrorBadData means the body could not be decoded.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorRejected means the endpoint answered with a non-success status field.
	ErrorRejected ErrorCategory = "rejected"
)

// TransportError wraps every failure of the verification call. The gateway
// treats all categories the same way: it falls back to simulated data.
type TransportError struct {
	Category   ErrorCategory
	StatusCode int
	Message    string
	Underlying error
}

func (e *TransportError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("verification [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("verification [%s]: %s", e.Category, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Underlying
}

func newTransportError(category ErrorCategory, message string, underlying error) *TransportError {
	return &TransportError{Category: category, Message: message, Underlying: underlying}
}

// CategoryOf extracts the category from err, or "" when err is not a TransportError.
func CategoryOf(err error) ErrorCategory {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Category
	}
	return ""
}
