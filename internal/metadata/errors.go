package metadata

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
)

// ErrorType categorizes a metadata pipeline failure.
type ErrorType int

const (
	// ErrTypeNetwork indicates a socket/connection-level failure.
	ErrTypeNetwork ErrorType = iota
	// ErrTypeHTTP indicates a non-2xx response from the device.
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed response document.
	ErrTypeParse
	// ErrTypeDigest indicates the security-token digest could not be built.
	ErrTypeDigest
	// ErrTypeTimeout indicates the device did not respond in time.
	ErrTypeTimeout
)

// String returns a human-readable name for the error type.
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeDigest:
		return "Digest Error"
	case ErrTypeTimeout:
		return "Timeout"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(et))
	}
}

// DeviceError is a failure from one device's metadata pipeline. It carries
// the pipeline step that failed so per-device failure events stay
// diagnosable without aborting the discovery session.
type DeviceError struct {
	Type       ErrorType
	Step       string // pipeline step, e.g. "GetProfiles"
	Message    string
	StatusCode int // HTTP status (ErrTypeHTTP only)
	Err        error
}

// Error implements the error interface.
func (e *DeviceError) Error() string {
	msg := e.Message
	if e.Step != "" {
		msg = e.Step + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// NewNetworkError wraps a transport failure, classifying timeouts.
func NewNetworkError(message string, err error) *DeviceError {
	t := ErrTypeNetwork
	if isTimeout(err) {
		t = ErrTypeTimeout
	}
	return &DeviceError{Type: t, Message: message, Err: err}
}

// NewHTTPError reports a non-2xx device response.
func NewHTTPError(statusCode int, message string) *DeviceError {
	return &DeviceError{Type: ErrTypeHTTP, Message: message, StatusCode: statusCode}
}

// NewParseError wraps a malformed-response failure.
func NewParseError(message string, err error) *DeviceError {
	return &DeviceError{Type: ErrTypeParse, Message: message, Err: err}
}

// NewDigestError wraps a security-token construction failure.
func NewDigestError(message string, err error) *DeviceError {
	return &DeviceError{Type: ErrTypeDigest, Message: message, Err: err}
}

// isTimeout reports whether err is a timeout anywhere in its chain.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if os.IsTimeout(err) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout()
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsNetworkError reports whether err is a transport-level failure.
func IsNetworkError(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Type == ErrTypeNetwork || devErr.Type == ErrTypeTimeout
	}
	return false
}

// IsHTTPError reports whether err is a non-2xx device response, returning
// the status code when it is.
func IsHTTPError(err error) (int, bool) {
	var devErr *DeviceError
	if errors.As(err, &devErr) && devErr.Type == ErrTypeHTTP {
		return devErr.StatusCode, true
	}
	return 0, false
}

// IsParseError reports whether err is a malformed-response failure.
func IsParseError(err error) bool {
	var devErr *DeviceError
	return errors.As(err, &devErr) && devErr.Type == ErrTypeParse
}

// IsDigestError reports whether err is an authentication-construction
// failure.
func IsDigestError(err error) bool {
	var devErr *DeviceError
	return errors.As(err, &devErr) && devErr.Type == ErrTypeDigest
}

// statusText is a convenience for HTTP error messages.
func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "unexpected status"
}
