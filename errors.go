package cryptutil

import (
	"errors"
	"fmt"
)

// Error types represent different categories of errors

// ValidationError represents a rejected argument or configuration value.
// Operations that return it have not touched the filesystem or the network.
type ValidationError struct {
	Field   string // The field or parameter that failed validation
	Value   any    // The invalid value
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// KeyFormatError reports key material that does not decode to a key of the
// size the cipher suite expects.
type KeyFormatError struct {
	Suite   CipherSuite // Suite the key was decoded for
	Message string      // Human-readable error message
	Err     error       // Underlying error
}

func (e *KeyFormatError) Error() string {
	return fmt.Sprintf("key format error: %s: %s", e.Suite, e.Message)
}

func (e *KeyFormatError) Unwrap() error {
	return e.Err
}

// IOError represents a file system I/O error
type IOError struct {
	Operation string // "read", "write", "open", "close", etc.
	Path      string // File path
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("io error: %s %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("io error: %s: %s", e.Operation, e.Message)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// AuthenticationError represents an envelope that failed verification:
// a bad tag, a malformed or truncated token, or an expired timestamp.
type AuthenticationError struct {
	Path    string // File path, if applicable
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *AuthenticationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("authentication error: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("authentication error: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// NetworkError represents a failed round trip to the OTP validation service.
type NetworkError struct {
	URL        string // Request URL with the OTP redacted
	StatusCode int    // HTTP status, zero if no response was received
	Message    string // Human-readable error message
	Err        error  // Underlying error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network error: %s (status %d): %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("network error: %s: %s", e.URL, e.Message)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports an OTP response body with content but no
// parsable key=value line.
type MalformedResponseError struct {
	Lines   int    // Number of non-blank lines seen
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %s (%d lines)", e.Message, e.Lines)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// Common sentinel errors
var (
	ErrEmptyPath          = errors.New("file path cannot be empty")
	ErrInvalidExtension   = errors.New("the provided file must be a key file")
	ErrInvalidKey         = errors.New("invalid encryption key")
	ErrAuthFailed         = errors.New("authentication failed - data may be corrupted or tampered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrUnsupportedCipher  = errors.New("unsupported cipher suite")
	ErrUnsupportedVersion = errors.New("unsupported envelope version")
	ErrInvalidHashRecord  = errors.New("invalid password hash record")
	ErrUnsupportedScheme  = errors.New("unsupported password hash scheme")
	ErrUnexpectedStatus   = errors.New("unexpected HTTP status")
	ErrNonceMismatch      = errors.New("response nonce does not match request nonce")
	ErrMalformedResponse  = errors.New("malformed OTP response")
)

// Helper functions for creating structured errors

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, err error) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: err.Error(),
		Err:     err,
	}
}

// NewKeyFormatError creates a new key format error
func NewKeyFormatError(suite CipherSuite, err error) error {
	return &KeyFormatError{
		Suite:   suite,
		Message: err.Error(),
		Err:     err,
	}
}

// NewIOError creates a new I/O error
func NewIOError(operation, path string, err error) error {
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   err.Error(),
		Err:       err,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(path string, err error) error {
	return &AuthenticationError{
		Path:    path,
		Message: err.Error(),
		Err:     err,
	}
}

// NewNetworkError creates a new network error
func NewNetworkError(url string, status int, err error) error {
	return &NetworkError{
		URL:        url,
		StatusCode: status,
		Message:    err.Error(),
		Err:        err,
	}
}

// Error checking helpers

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsKeyFormatError checks if an error is a key format error
func IsKeyFormatError(err error) bool {
	var ke *KeyFormatError
	return errors.As(err, &ke)
}

// IsIOError checks if an error is an I/O error
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}

// IsAuthenticationError checks if an error is an authentication error
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// IsNetworkError checks if an error is a network error
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsMalformedResponseError checks if an error is a malformed response error
func IsMalformedResponseError(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}

// withPath fills in the path of an authentication error produced by the
// in-memory cipher so file operations can report which file failed.
func withPath(err error, path string) error {
	var ae *AuthenticationError
	if errors.As(err, &ae) && ae.Path == "" {
		return &AuthenticationError{Path: path, Message: ae.Message, Err: ae.Err}
	}
	return err
}
