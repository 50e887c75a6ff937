package cryptutil

import (
	"bytes"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/fernet/fernet-go"
)

// GenerateKey returns a fresh 32-byte key from crypto/rand, encoded as
// URL-safe base64 the way Fernet keys are stored in keyfiles.
func GenerateKey() ([]byte, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	defer memguard.WipeBytes(k[:])

	return []byte(k.Encode()), nil
}

// DecodeKey parses encoded key material as read from a keyfile. Hex,
// standard base64 and URL-safe base64 are accepted; surrounding whitespace
// is ignored. Callers should pass the result to WipeKey when done.
func DecodeKey(suite CipherSuite, key []byte) (*fernet.Key, error) {
	trimmed := bytes.TrimSpace(key)
	if len(trimmed) == 0 {
		return nil, NewKeyFormatError(suite, fmt.Errorf("%w: key is empty", ErrInvalidKey))
	}

	k, err := fernet.DecodeKey(string(trimmed))
	if err != nil {
		return nil, NewKeyFormatError(suite, fmt.Errorf("%w: %v", ErrInvalidKey, err))
	}
	return k, nil
}

// WipeKey zeroes decoded key material
func WipeKey(k *fernet.Key) {
	if k != nil {
		memguard.WipeBytes(k[:])
	}
}
