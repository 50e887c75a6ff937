package cryptutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

const (
	// envelopeMagic identifies AEAD envelopes. Fernet tokens always start
	// with "gAAAAA" so the two formats cannot be confused.
	envelopeMagic = "CUTL"

	// envelopeVersion is the current AEAD envelope version
	envelopeVersion = uint8(1)

	// minEnvelopeHeaderSize is the fixed part of the header:
	// 4 bytes (magic) + 1 byte (version) + 1 byte (suite) +
	// 8 bytes (timestamp) + 2 bytes (nonce size) = 16 bytes
	minEnvelopeHeaderSize = 16
)

// envelopeHeader precedes the ciphertext of an AEAD envelope
type envelopeHeader struct {
	Version   uint8       // Envelope format version
	Suite     CipherSuite // Cipher suite used for encryption
	Timestamp int64       // Unix seconds at encryption time
	Nonce     []byte      // Nonce for encryption
}

func newEnvelopeHeader(suite CipherSuite, now time.Time, nonce []byte) *envelopeHeader {
	return &envelopeHeader{
		Version:   envelopeVersion,
		Suite:     suite,
		Timestamp: now.Unix(),
		Nonce:     nonce,
	}
}

// Size returns the total size of the header in bytes
func (h *envelopeHeader) Size() int {
	return minEnvelopeHeaderSize + len(h.Nonce)
}

// Time returns the encryption timestamp
func (h *envelopeHeader) Time() time.Time {
	return time.Unix(h.Timestamp, 0)
}

// MarshalBinary encodes the header
func (h *envelopeHeader) MarshalBinary() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, h.Size()))

	buf.WriteString(envelopeMagic)
	buf.WriteByte(h.Version)
	buf.WriteByte(byte(h.Suite))
	if err := binary.Write(buf, binary.BigEndian, h.Timestamp); err != nil {
		return nil, fmt.Errorf("failed to write timestamp: %w", err)
	}
	if len(h.Nonce) > 0xFFFF {
		return nil, fmt.Errorf("nonce too long: %d bytes", len(h.Nonce))
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(h.Nonce))); err != nil {
		return nil, fmt.Errorf("failed to write nonce size: %w", err)
	}
	buf.Write(h.Nonce)

	return buf.Bytes(), nil
}

// isAEADEnvelope reports whether data starts with the AEAD envelope magic
func isAEADEnvelope(data []byte) bool {
	return bytes.HasPrefix(data, []byte(envelopeMagic))
}

// parseEnvelope splits an AEAD envelope into its decoded header, the raw
// header bytes used as additional data, and the ciphertext.
func parseEnvelope(data []byte) (*envelopeHeader, []byte, []byte, error) {
	if len(data) < minEnvelopeHeaderSize {
		return nil, nil, nil, fmt.Errorf("%w: envelope too short", ErrInvalidToken)
	}
	if !isAEADEnvelope(data) {
		return nil, nil, nil, fmt.Errorf("%w: invalid magic bytes", ErrInvalidToken)
	}

	h := &envelopeHeader{
		Version: data[4],
		Suite:   CipherSuite(data[5]),
	}
	if h.Version != envelopeVersion {
		return nil, nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Suite != CipherAES256GCM && h.Suite != CipherChaCha20Poly1305 {
		return nil, nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedCipher, h.Suite)
	}

	h.Timestamp = int64(binary.BigEndian.Uint64(data[6:14]))
	nonceSize := int(binary.BigEndian.Uint16(data[14:16]))

	end := minEnvelopeHeaderSize + nonceSize
	if len(data) < end {
		return nil, nil, nil, fmt.Errorf("%w: envelope too short for nonce", ErrInvalidToken)
	}
	h.Nonce = append([]byte(nil), data[minEnvelopeHeaderSize:end]...)

	return h, data[:end], data[end:], nil
}
