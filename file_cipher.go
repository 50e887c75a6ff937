package cryptutil

import (
	"fmt"
	"time"

	"github.com/absfs/absfs"
	"github.com/rs/zerolog"
)

// FileCipher encrypts and decrypts whole files on a filesystem. Files are
// buffered in memory in full.
type FileCipher struct {
	fs     absfs.Filer
	config CipherConfig
	log    zerolog.Logger
	now    func() time.Time
}

// NewFileCipher creates a file cipher backed by fs. A nil fs selects the
// host filesystem.
func NewFileCipher(fs absfs.Filer, config CipherConfig) (*FileCipher, error) {
	if fs == nil {
		fs = OSFiler{}
	}
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &FileCipher{
		fs:     fs,
		config: config,
		log:    loggerOrNop(config.Logger).With().Str("component", "cipher").Logger(),
		now:    time.Now,
	}, nil
}

// EncryptBytes seals plaintext with the encoded key using the configured
// suite. Every call draws a fresh nonce.
func (c *FileCipher) EncryptBytes(plaintext, key []byte) ([]byte, error) {
	k, err := DecodeKey(c.config.Suite, key)
	if err != nil {
		return nil, err
	}
	defer WipeKey(k)

	engine, err := NewCipherEngine(c.config.Suite, k)
	if err != nil {
		return nil, NewKeyFormatError(c.config.Suite, err)
	}

	return engine.Seal(plaintext, c.now())
}

// DecryptBytes authenticates and opens an envelope with the encoded key.
// The suite is taken from the envelope, not from the configuration.
func (c *FileCipher) DecryptBytes(envelope, key []byte) ([]byte, error) {
	suite := CipherFernet
	if isAEADEnvelope(envelope) {
		header, _, _, err := parseEnvelope(envelope)
		if err != nil {
			return nil, NewAuthenticationError("", err)
		}
		suite = header.Suite
	}

	k, err := DecodeKey(suite, key)
	if err != nil {
		return nil, err
	}
	defer WipeKey(k)

	engine, err := NewCipherEngine(suite, k)
	if err != nil {
		return nil, NewKeyFormatError(suite, err)
	}

	return engine.Open(envelope, c.config.MaxAge, c.now())
}

// EncryptFile encrypts the contents of src and writes the envelope to dst.
// A missing src is created empty and encrypts as empty plaintext. dst is
// only opened once encryption has succeeded.
func (c *FileCipher) EncryptFile(src, dst string, key []byte) error {
	if err := ValidateFilePath("source", src); err != nil {
		return err
	}
	if err := ValidateFilePath("destination", dst); err != nil {
		return err
	}

	plaintext, err := readFile(c.fs, src)
	if err != nil {
		return err
	}

	envelope, err := c.EncryptBytes(plaintext, key)
	if err != nil {
		return err
	}

	if err := writeFile(c.fs, dst, envelope, 0644); err != nil {
		return err
	}

	c.log.Debug().
		Str("source", src).
		Str("destination", dst).
		Stringer("suite", c.config.Suite).
		Int("size", len(envelope)).
		Msg("encrypted file")
	return nil
}

// DecryptFile decrypts the envelope in src and writes the plaintext to dst.
// Authentication failures are returned before dst is opened, so dst is
// never created or truncated for a bad key or a tampered envelope.
func (c *FileCipher) DecryptFile(src, dst string, key []byte) error {
	if err := ValidateFilePath("source", src); err != nil {
		return err
	}
	if err := ValidateFilePath("destination", dst); err != nil {
		return err
	}

	envelope, err := readFile(c.fs, src)
	if err != nil {
		return err
	}

	plaintext, err := c.DecryptBytes(envelope, key)
	if err != nil {
		return withPath(err, src)
	}

	if err := writeFile(c.fs, dst, plaintext, 0644); err != nil {
		return err
	}

	c.log.Debug().
		Str("source", src).
		Str("destination", dst).
		Int("size", len(plaintext)).
		Msg("decrypted file")
	return nil
}

// EncryptFile encrypts src into dst on the host filesystem using Fernet
func EncryptFile(src, dst string, key []byte) error {
	c, err := NewFileCipher(nil, CipherConfig{})
	if err != nil {
		return err
	}
	return c.EncryptFile(src, dst, key)
}

// DecryptFile decrypts src into dst on the host filesystem
func DecryptFile(src, dst string, key []byte) error {
	c, err := NewFileCipher(nil, CipherConfig{})
	if err != nil {
		return err
	}
	return c.DecryptFile(src, dst, key)
}
