package cryptutil

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"hash"
	"strconv"
	"strings"
	"sync"

	"github.com/awnumar/memguard"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// Hasher produces and verifies self-describing password hash records.
// Records use the modular crypt format understood by passlib:
//
//	$pbkdf2-sha256$30000$<salt>$<digest>
//	$argon2id$v=19$m=65536,t=3,p=4$<salt>$<digest>
//
// Verification reads the scheme and cost from the record, so records made
// under an older configuration keep verifying after the defaults change.
type Hasher struct {
	config HasherConfig
	log    zerolog.Logger
}

// NewHasher creates a hasher, filling unset fields with defaults
func NewHasher(config HasherConfig) (*Hasher, error) {
	// Set defaults
	if config.Rounds == 0 {
		config.Rounds = DefaultRounds
	}
	if config.SaltSize == 0 {
		config.SaltSize = 16
	}
	if config.Argon2.Memory == 0 {
		config.Argon2.Memory = 64 * 1024 // 64 MB
	}
	if config.Argon2.Iterations == 0 {
		config.Argon2.Iterations = 3
	}
	if config.Argon2.Parallelism == 0 {
		config.Argon2.Parallelism = 4
	}
	if config.Argon2.KeySize == 0 {
		config.Argon2.KeySize = 32
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Hasher{
		config: config,
		log:    loggerOrNop(config.Logger).With().Str("component", "hasher").Logger(),
	}, nil
}

// Config returns the effective configuration
func (h *Hasher) Config() HasherConfig {
	return h.config
}

// Hash derives a record for password under a fresh random salt. Hashing
// the same password twice yields different records.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.config.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	rec := &hashRecord{
		scheme: h.config.Scheme,
		rounds: h.config.Rounds,
		argon2: h.config.Argon2,
		salt:   salt,
	}
	rec.digest = rec.derive([]byte(password))
	defer memguard.WipeBytes(rec.digest)

	h.log.Debug().Stringer("scheme", rec.scheme).Int("rounds", rec.rounds).Msg("hashed password")
	return rec.String(), nil
}

// Verify reports whether password matches record. A mismatch is not an
// error; only a record that cannot be parsed is.
func (h *Hasher) Verify(password, record string) (bool, error) {
	rec, err := parseHashRecord(record)
	if err != nil {
		return false, err
	}

	candidate := rec.derive([]byte(password))
	defer memguard.WipeBytes(candidate)

	ok := subtle.ConstantTimeCompare(candidate, rec.digest) == 1
	h.log.Debug().Stringer("scheme", rec.scheme).Bool("match", ok).Msg("verified password")
	return ok, nil
}

// NeedsRehash reports whether record was produced with a scheme or cost
// other than the hasher's own. Unparsable records always need rehashing.
func (h *Hasher) NeedsRehash(record string) bool {
	rec, err := parseHashRecord(record)
	if err != nil {
		return true
	}
	if rec.scheme != h.config.Scheme || len(rec.salt) != h.config.SaltSize {
		return true
	}
	if rec.scheme == SchemeArgon2id {
		return rec.argon2 != h.config.Argon2
	}
	return rec.rounds != h.config.Rounds
}

var (
	defaultHasherMu sync.RWMutex
	defaultHasher   *Hasher
)

func init() {
	h, err := NewHasher(HasherConfig{})
	if err != nil {
		panic(err)
	}
	defaultHasher = h
}

// SetDefaultHasher replaces the hasher used by HashPassword and
// VerifyPassword. Call it during program initialization to change the
// process-wide cost.
func SetDefaultHasher(h *Hasher) {
	if h == nil {
		return
	}
	defaultHasherMu.Lock()
	defaultHasher = h
	defaultHasherMu.Unlock()
}

// DefaultHasher returns the process-wide hasher
func DefaultHasher() *Hasher {
	defaultHasherMu.RLock()
	defer defaultHasherMu.RUnlock()
	return defaultHasher
}

// HashPassword hashes password with the process-wide hasher
// (pbkdf2-sha256, 30000 rounds unless reconfigured).
func HashPassword(password string) (string, error) {
	return DefaultHasher().Hash(password)
}

// VerifyPassword checks password against a hash record
func VerifyPassword(password, record string) (bool, error) {
	return DefaultHasher().Verify(password, record)
}

// hashRecord is a parsed password hash record
type hashRecord struct {
	scheme Scheme
	rounds int            // PBKDF2 schemes
	argon2 Argon2idParams // argon2id
	salt   []byte
	digest []byte
}

// pbkdf2Hash returns the PRF and digest size of a PBKDF2 scheme
func pbkdf2Hash(s Scheme) (func() hash.Hash, int) {
	switch s {
	case SchemePBKDF2SHA512:
		return sha512.New, sha512.Size
	case SchemePBKDF2SHA1:
		return sha1.New, sha1.Size
	default:
		return sha256.New, sha256.Size
	}
}

func (r *hashRecord) derive(password []byte) []byte {
	if r.scheme == SchemeArgon2id {
		return argon2.IDKey(
			password,
			r.salt,
			r.argon2.Iterations,
			r.argon2.Memory,
			r.argon2.Parallelism,
			r.argon2.KeySize,
		)
	}

	hashFunc, size := pbkdf2Hash(r.scheme)
	return pbkdf2.Key(password, r.salt, r.rounds, size, hashFunc)
}

// String encodes the record
func (r *hashRecord) String() string {
	if r.scheme == SchemeArgon2id {
		return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
			argon2.Version,
			r.argon2.Memory, r.argon2.Iterations, r.argon2.Parallelism,
			base64.RawStdEncoding.EncodeToString(r.salt),
			base64.RawStdEncoding.EncodeToString(r.digest))
	}
	return fmt.Sprintf("$%s$%d$%s$%s", r.scheme.Ident(), r.rounds, ab64Encode(r.salt), ab64Encode(r.digest))
}

func invalidRecord(format string, args ...any) error {
	return NewValidationError("record", nil, fmt.Errorf("%w: "+format, append([]any{ErrInvalidHashRecord}, args...)...))
}

// parseHashRecord decodes a record produced by this package or by passlib
func parseHashRecord(record string) (*hashRecord, error) {
	parts := strings.Split(record, "$")
	if len(parts) < 2 || parts[0] != "" {
		return nil, invalidRecord("missing scheme identifier")
	}

	switch parts[1] {
	case SchemePBKDF2SHA256.Ident():
		return parsePBKDF2Record(SchemePBKDF2SHA256, parts)
	case SchemePBKDF2SHA512.Ident():
		return parsePBKDF2Record(SchemePBKDF2SHA512, parts)
	case SchemePBKDF2SHA1.Ident():
		return parsePBKDF2Record(SchemePBKDF2SHA1, parts)
	case SchemeArgon2id.Ident():
		return parseArgon2Record(parts)
	default:
		return nil, NewValidationError("record", nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, parts[1]))
	}
}

func parsePBKDF2Record(scheme Scheme, parts []string) (*hashRecord, error) {
	if len(parts) != 5 {
		return nil, invalidRecord("expected 4 fields, got %d", len(parts)-1)
	}

	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds < 1 || strconv.Itoa(rounds) != parts[2] {
		return nil, invalidRecord("bad rounds %q", parts[2])
	}

	salt, err := ab64Decode(parts[3])
	if err != nil {
		return nil, invalidRecord("bad salt: %v", err)
	}

	digest, err := ab64Decode(parts[4])
	if err != nil {
		return nil, invalidRecord("bad digest: %v", err)
	}
	if _, size := pbkdf2Hash(scheme); len(digest) != size {
		return nil, invalidRecord("digest must be %d bytes, got %d", size, len(digest))
	}

	return &hashRecord{scheme: scheme, rounds: rounds, salt: salt, digest: digest}, nil
}

func parseArgon2Record(parts []string) (*hashRecord, error) {
	if len(parts) != 6 {
		return nil, invalidRecord("expected 5 fields, got %d", len(parts)-1)
	}

	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return nil, invalidRecord("unsupported argon2 version %q", parts[2])
	}

	var p Argon2idParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return nil, invalidRecord("bad parameters %q", parts[3])
	}
	if parts[3] != fmt.Sprintf("m=%d,t=%d,p=%d", p.Memory, p.Iterations, p.Parallelism) ||
		p.Iterations < 1 || p.Parallelism < 1 || p.Memory < 8*uint32(p.Parallelism) {
		return nil, invalidRecord("bad parameters %q", parts[3])
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, invalidRecord("bad salt: %v", err)
	}

	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(digest) < 4 {
		return nil, invalidRecord("bad digest")
	}
	p.KeySize = uint32(len(digest))

	return &hashRecord{scheme: SchemeArgon2id, argon2: p, salt: salt, digest: digest}, nil
}

// ab64Encode is passlib's "adapted base64": standard base64 without
// padding, with '+' replaced by '.'.
func ab64Encode(b []byte) string {
	return strings.ReplaceAll(base64.RawStdEncoding.EncodeToString(b), "+", ".")
}

func ab64Decode(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.ReplaceAll(s, ".", "+"))
}
