package cryptutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
	"golang.org/x/crypto/chacha20poly1305"
)

// CipherEngine seals plaintext into a self-contained envelope and opens it
// again. Engines carry their key and must not be shared past one call.
type CipherEngine interface {
	// Seal encrypts plaintext, stamping the envelope with now
	Seal(plaintext []byte, now time.Time) ([]byte, error)

	// Open authenticates and decrypts an envelope. Envelopes older than
	// maxAge are rejected when maxAge is positive.
	Open(envelope []byte, maxAge time.Duration, now time.Time) ([]byte, error)

	// Suite returns the cipher suite the engine implements
	Suite() CipherSuite
}

// FernetEngine implements CipherEngine with Fernet tokens
type FernetEngine struct {
	key *fernet.Key
}

// NewFernetEngine creates a new Fernet engine
func NewFernetEngine(key *fernet.Key) *FernetEngine {
	return &FernetEngine{key: key}
}

// Seal returns a URL-safe base64 Fernet token
func (e *FernetEngine) Seal(plaintext []byte, now time.Time) ([]byte, error) {
	tok, err := fernet.EncryptAndSignAtTime(plaintext, e.key, now)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt: %w", err)
	}
	return tok, nil
}

// Open verifies and decrypts a Fernet token. The fernet package reports
// every failure the same way, so a bad tag, a malformed token and an
// expired one all surface as ErrInvalidToken. The age check runs against
// the fernet package's own clock.
func (e *FernetEngine) Open(envelope []byte, maxAge time.Duration, _ time.Time) ([]byte, error) {
	msg := fernet.VerifyAndDecrypt(envelope, maxAge, []*fernet.Key{e.key})
	if msg == nil {
		return nil, NewAuthenticationError("", ErrInvalidToken)
	}
	return msg, nil
}

// Suite returns CipherFernet
func (e *FernetEngine) Suite() CipherSuite {
	return CipherFernet
}

// AEADEngine implements CipherEngine with an AEAD cipher and the binary
// envelope described by envelopeHeader.
type AEADEngine struct {
	suite CipherSuite
	aead  cipher.AEAD
}

// NewAESGCMEngine creates a new AES-256-GCM cipher engine
func NewAESGCMEngine(key []byte) (*AEADEngine, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("AES-256 requires a 32-byte key, got %d bytes", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AEADEngine{suite: CipherAES256GCM, aead: aead}, nil
}

// NewChaCha20Poly1305Engine creates a new ChaCha20-Poly1305 cipher engine
func NewChaCha20Poly1305Engine(key []byte) (*AEADEngine, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("ChaCha20-Poly1305 requires a %d-byte key, got %d bytes",
			chacha20poly1305.KeySize, len(key))
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	return &AEADEngine{suite: CipherChaCha20Poly1305, aead: aead}, nil
}

// Seal encrypts plaintext under a fresh random nonce. The envelope header
// is bound to the ciphertext as additional data.
func (e *AEADEngine) Seal(plaintext []byte, now time.Time) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	header := newEnvelopeHeader(e.suite, now, nonce)
	ad, err := header.MarshalBinary()
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(ad), len(ad)+len(plaintext)+e.aead.Overhead())
	copy(out, ad)
	return e.aead.Seal(out, nonce, plaintext, ad), nil
}

// Open authenticates and decrypts an envelope produced by Seal
func (e *AEADEngine) Open(envelope []byte, maxAge time.Duration, now time.Time) ([]byte, error) {
	header, ad, ciphertext, err := parseEnvelope(envelope)
	if err != nil {
		return nil, NewAuthenticationError("", err)
	}
	if header.Suite != e.suite {
		return nil, NewAuthenticationError("", fmt.Errorf("%w: envelope is %s, engine is %s",
			ErrInvalidToken, header.Suite, e.suite))
	}
	if len(header.Nonce) != e.aead.NonceSize() {
		return nil, NewAuthenticationError("", fmt.Errorf("%w: nonce must be %d bytes, got %d",
			ErrInvalidToken, e.aead.NonceSize(), len(header.Nonce)))
	}

	plaintext, err := e.aead.Open(nil, header.Nonce, ciphertext, ad)
	if err != nil {
		return nil, NewAuthenticationError("", ErrAuthFailed)
	}

	// Age is checked only once the timestamp is known to be authentic
	if maxAge > 0 && now.Sub(header.Time()) > maxAge {
		return nil, NewAuthenticationError("", ErrTokenExpired)
	}

	// An empty plaintext must still be distinguishable from a failure
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

// Suite returns the cipher suite of the engine
func (e *AEADEngine) Suite() CipherSuite {
	return e.suite
}

// NewCipherEngine creates a new cipher engine based on the cipher suite.
// key is the decoded 32-byte key.
func NewCipherEngine(suite CipherSuite, key *fernet.Key) (CipherEngine, error) {
	switch suite {
	case CipherFernet:
		return NewFernetEngine(key), nil
	case CipherAES256GCM:
		return NewAESGCMEngine(key[:])
	case CipherChaCha20Poly1305:
		return NewChaCha20Poly1305Engine(key[:])
	default:
		return nil, ErrUnsupportedCipher
	}
}
