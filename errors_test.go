package cryptutil

import (
	"errors"
	"testing"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ValidationError
		wantMsg string
	}{
		{
			name: "with field",
			err: &ValidationError{
				Field:   "path",
				Value:   "a.txt",
				Message: "the provided file must be a key file",
				Err:     ErrInvalidExtension,
			},
			wantMsg: "validation error: path: the provided file must be a key file",
		},
		{
			name: "without field",
			err: &ValidationError{
				Message: "invalid configuration",
			},
			wantMsg: "validation error: invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.wantMsg)
			}
			if unwrapped := tt.err.Unwrap(); unwrapped != tt.err.Err {
				t.Errorf("ValidationError.Unwrap() = %v, want %v", unwrapped, tt.err.Err)
			}
		})
	}
}

func TestKeyFormatError(t *testing.T) {
	err := &KeyFormatError{Suite: CipherAES256GCM, Message: "invalid encryption key", Err: ErrInvalidKey}

	want := "key format error: aes-256-gcm: invalid encryption key"
	if got := err.Error(); got != want {
		t.Errorf("KeyFormatError.Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidKey) {
		t.Error("KeyFormatError does not unwrap to ErrInvalidKey")
	}
}

func TestIOError(t *testing.T) {
	baseErr := errors.New("permission denied")

	tests := []struct {
		name    string
		err     *IOError
		wantMsg string
	}{
		{
			name: "with path",
			err: &IOError{
				Operation: "read",
				Path:      "/test/file.dat",
				Message:   "permission denied",
				Err:       baseErr,
			},
			wantMsg: "io error: read /test/file.dat: permission denied",
		},
		{
			name: "operation only",
			err: &IOError{
				Operation: "close",
				Message:   "failed to flush",
			},
			wantMsg: "io error: close: failed to flush",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("IOError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestAuthenticationError(t *testing.T) {
	tests := []struct {
		name    string
		err     *AuthenticationError
		wantMsg string
	}{
		{
			name: "with path",
			err: &AuthenticationError{
				Path:    "/test/secret.enc",
				Message: "invalid token",
				Err:     ErrInvalidToken,
			},
			wantMsg: "authentication error: /test/secret.enc: invalid token",
		},
		{
			name: "without path",
			err: &AuthenticationError{
				Message: "token has expired",
			},
			wantMsg: "authentication error: token has expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("AuthenticationError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestNetworkError(t *testing.T) {
	tests := []struct {
		name    string
		err     *NetworkError
		wantMsg string
	}{
		{
			name: "with status",
			err: &NetworkError{
				URL:        "https://api.example.com/verify",
				StatusCode: 503,
				Message:    "unexpected HTTP status",
			},
			wantMsg: "network error: https://api.example.com/verify (status 503): unexpected HTTP status",
		},
		{
			name: "no response",
			err: &NetworkError{
				URL:     "https://api.example.com/verify",
				Message: "connection refused",
			},
			wantMsg: "network error: https://api.example.com/verify: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("NetworkError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestMalformedResponseError(t *testing.T) {
	err := &MalformedResponseError{Lines: 3, Message: "no key=value lines", Err: ErrMalformedResponse}

	want := "malformed response: no key=value lines (3 lines)"
	if got := err.Error(); got != want {
		t.Errorf("MalformedResponseError.Error() = %q, want %q", got, want)
	}
}

func TestErrorCheckers(t *testing.T) {
	ve := &ValidationError{Message: "test"}
	ke := &KeyFormatError{Message: "test"}
	ie := &IOError{Operation: "read", Message: "test"}
	ae := &AuthenticationError{Message: "test"}
	ne := &NetworkError{Message: "test"}
	me := &MalformedResponseError{Message: "test"}
	genericErr := errors.New("generic error")

	tests := []struct {
		name string
		err  error
		fn   func(error) bool
		want bool
	}{
		{"IsValidationError with ValidationError", ve, IsValidationError, true},
		{"IsValidationError with other error", genericErr, IsValidationError, false},
		{"IsKeyFormatError with KeyFormatError", ke, IsKeyFormatError, true},
		{"IsKeyFormatError with other error", genericErr, IsKeyFormatError, false},
		{"IsIOError with IOError", ie, IsIOError, true},
		{"IsIOError with other error", genericErr, IsIOError, false},
		{"IsAuthenticationError with AuthenticationError", ae, IsAuthenticationError, true},
		{"IsAuthenticationError with other error", genericErr, IsAuthenticationError, false},
		{"IsNetworkError with NetworkError", ne, IsNetworkError, true},
		{"IsNetworkError with other error", genericErr, IsNetworkError, false},
		{"IsMalformedResponseError with MalformedResponseError", me, IsMalformedResponseError, true},
		{"IsMalformedResponseError with other error", genericErr, IsMalformedResponseError, false},
		{"IsAuthenticationError through wrapping", NewIOError("read", "/p", ae), IsAuthenticationError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.err); got != tt.want {
				t.Errorf("error checker = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorConstructors(t *testing.T) {
	baseErr := errors.New("test")

	t.Run("NewValidationError", func(t *testing.T) {
		err := NewValidationError("field", 123, baseErr)
		ve, ok := err.(*ValidationError)
		if !ok {
			t.Fatal("NewValidationError should create ValidationError")
		}
		if ve.Field != "field" || ve.Value != 123 || ve.Message != "test" || ve.Err != baseErr {
			t.Errorf("NewValidationError fields incorrect: %+v", ve)
		}
	})

	t.Run("NewKeyFormatError", func(t *testing.T) {
		err := NewKeyFormatError(CipherFernet, baseErr)
		ke, ok := err.(*KeyFormatError)
		if !ok {
			t.Fatal("NewKeyFormatError should create KeyFormatError")
		}
		if ke.Suite != CipherFernet || !errors.Is(err, baseErr) {
			t.Errorf("NewKeyFormatError fields incorrect: %+v", ke)
		}
	})

	t.Run("NewIOError", func(t *testing.T) {
		err := NewIOError("read", "/path", baseErr)
		ie, ok := err.(*IOError)
		if !ok {
			t.Fatal("NewIOError should create IOError")
		}
		if ie.Operation != "read" || ie.Path != "/path" {
			t.Errorf("NewIOError fields incorrect: %+v", ie)
		}
	})

	t.Run("NewAuthenticationError", func(t *testing.T) {
		err := NewAuthenticationError("/path", baseErr)
		ae, ok := err.(*AuthenticationError)
		if !ok {
			t.Fatal("NewAuthenticationError should create AuthenticationError")
		}
		if ae.Path != "/path" {
			t.Errorf("NewAuthenticationError fields incorrect: %+v", ae)
		}
	})

	t.Run("NewNetworkError", func(t *testing.T) {
		err := NewNetworkError("https://example.com", 502, baseErr)
		ne, ok := err.(*NetworkError)
		if !ok {
			t.Fatal("NewNetworkError should create NetworkError")
		}
		if ne.URL != "https://example.com" || ne.StatusCode != 502 {
			t.Errorf("NewNetworkError fields incorrect: %+v", ne)
		}
	})
}

func TestWithPath(t *testing.T) {
	t.Run("fills empty path", func(t *testing.T) {
		err := withPath(NewAuthenticationError("", ErrInvalidToken), "/secret.enc")

		var ae *AuthenticationError
		if !errors.As(err, &ae) {
			t.Fatalf("withPath returned %T, want *AuthenticationError", err)
		}
		if ae.Path != "/secret.enc" {
			t.Errorf("Path = %q, want /secret.enc", ae.Path)
		}
		if !errors.Is(err, ErrInvalidToken) {
			t.Error("withPath lost the wrapped sentinel")
		}
	})

	t.Run("keeps existing path", func(t *testing.T) {
		err := withPath(NewAuthenticationError("/a.enc", ErrAuthFailed), "/b.enc")

		var ae *AuthenticationError
		if errors.As(err, &ae) && ae.Path != "/a.enc" {
			t.Errorf("Path = %q, want /a.enc", ae.Path)
		}
	})

	t.Run("other errors pass through", func(t *testing.T) {
		in := NewIOError("read", "/x", errors.New("disk full"))
		if got := withPath(in, "/y"); got != in {
			t.Errorf("withPath changed a non-authentication error: %v", got)
		}
	})
}
