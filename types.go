package cryptutil

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// CipherSuite represents the envelope format used for file encryption
type CipherSuite uint8

const (
	// CipherFernet produces Fernet tokens (AES-128-CBC + HMAC-SHA256),
	// compatible with Python's cryptography.fernet
	CipherFernet CipherSuite = iota
	// CipherAES256GCM uses AES-256 with Galois/Counter Mode
	CipherAES256GCM
	// CipherChaCha20Poly1305 uses ChaCha20 stream cipher with Poly1305 MAC
	CipherChaCha20Poly1305
)

// String returns the string representation of the cipher suite
func (c CipherSuite) String() string {
	switch c {
	case CipherFernet:
		return "fernet"
	case CipherAES256GCM:
		return "aes-256-gcm"
	case CipherChaCha20Poly1305:
		return "chacha20-poly1305"
	default:
		return "unknown"
	}
}

// Scheme identifies a password hashing scheme
type Scheme uint8

const (
	// SchemePBKDF2SHA256 is passlib's pbkdf2_sha256
	SchemePBKDF2SHA256 Scheme = iota
	// SchemePBKDF2SHA512 is passlib's pbkdf2_sha512
	SchemePBKDF2SHA512
	// SchemePBKDF2SHA1 is passlib's pbkdf2_sha1
	SchemePBKDF2SHA1
	// SchemeArgon2id is the PHC argon2id format
	SchemeArgon2id
)

// Ident returns the identifier written between the first two '$' of a
// hash record.
func (s Scheme) Ident() string {
	switch s {
	case SchemePBKDF2SHA256:
		return "pbkdf2-sha256"
	case SchemePBKDF2SHA512:
		return "pbkdf2-sha512"
	case SchemePBKDF2SHA1:
		return "pbkdf2"
	case SchemeArgon2id:
		return "argon2id"
	default:
		return "unknown"
	}
}

// String returns the string representation of the scheme
func (s Scheme) String() string {
	return s.Ident()
}

// DefaultRounds is the PBKDF2 iteration count new hash records are created
// with unless HasherConfig.Rounds says otherwise.
const DefaultRounds = 30000

// Argon2idParams contains parameters for Argon2id password hashing
type Argon2idParams struct {
	Memory      uint32 `validate:"min=8"` // Memory in KiB (e.g., 64*1024 for 64MB)
	Iterations  uint32 `validate:"min=1"` // Number of iterations (time parameter)
	Parallelism uint8  `validate:"min=1"` // Degree of parallelism
	KeySize     uint32 `validate:"min=16"` // Derived hash size in bytes (default 32)
}

// HasherConfig contains configuration for a password Hasher
type HasherConfig struct {
	// Scheme used for new hash records. Verification always follows the
	// scheme named in the record.
	Scheme Scheme `validate:"lte=3"`

	// Rounds is the PBKDF2 iteration count (default DefaultRounds)
	Rounds int `validate:"min=1"`

	// SaltSize in bytes (default 16)
	SaltSize int `validate:"min=8,max=1024"`

	// Argon2 parameters, used when Scheme is SchemeArgon2id
	Argon2 Argon2idParams

	// Logger receives debug events. Defaults to a no-op logger.
	Logger *zerolog.Logger `validate:"-"`
}

// CipherConfig contains configuration for a FileCipher
type CipherConfig struct {
	// Suite used for new envelopes. Decryption follows the envelope.
	Suite CipherSuite `validate:"lte=2"`

	// MaxAge rejects envelopes older than this on decryption. Zero disables
	// the check.
	MaxAge time.Duration `validate:"gte=0"`

	// Logger receives debug events. Defaults to a no-op logger.
	Logger *zerolog.Logger `validate:"-"`
}

// DefaultEndpoint is the Yubico OTP verification endpoint
const DefaultEndpoint = "https://api.yubico.com/wsapi/2.0/verify"

// DefaultNonceLength is the length of the nonce sent with each OTP request
const DefaultNonceLength = 25

// RelayConfig contains configuration for an OTP Relay
type RelayConfig struct {
	// Endpoint is the verification URL (default DefaultEndpoint)
	Endpoint string `validate:"required,url"`

	// HTTPClient issues the request. Defaults to http.DefaultClient.
	HTTPClient *http.Client `validate:"-"`

	// Timeout bounds a single request when positive
	Timeout time.Duration `validate:"gte=0"`

	// NonceLength of the generated request nonce (Yubico accepts 16 to 40)
	NonceLength int `validate:"min=16,max=40"`

	// VerifyNonce rejects responses whose nonce field does not echo the
	// request nonce. Off by default.
	VerifyNonce bool

	// Logger receives debug events. Defaults to a no-op logger.
	Logger *zerolog.Logger `validate:"-"`

	// TracerProvider creates request spans. Defaults to the global provider.
	TracerProvider trace.TracerProvider `validate:"-"`
}

func loggerOrNop(l *zerolog.Logger) zerolog.Logger {
	if l == nil {
		return zerolog.Nop()
	}
	return *l
}
