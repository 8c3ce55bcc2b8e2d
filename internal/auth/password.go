package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

// MaxPasswordLength bounds accepted plaintext passwords in bytes.
const MaxPasswordLength = 64

const saltLength = 16

var (
	ErrEmptyPassword     = errors.New("Password cannot be empty")
	ErrExceededMaxLength = fmt.Errorf("Password cannot be longer than %d characters", MaxPasswordLength)
	ErrInvalidHashFormat = errors.New("Invalid password hash format")
	ErrHashing           = errors.New("An error occurred while hashing the password")
)

// PasswordHasher hashes and verifies passwords with argon2id. Hashes are
// self-contained PHC strings carrying the parameters and a fresh random salt,
// so nothing is stored alongside them.
//
// Hashing is deliberately expensive; a weighted semaphore caps how many
// computations run at once so a burst of logins cannot starve the rest of
// the server.
type PasswordHasher struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	gate    *semaphore.Weighted
}

// PasswordParams tune the argon2id cost. Zero values fall back to defaults.
type PasswordParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// NewPasswordHasher builds a hasher with the given cost parameters.
func NewPasswordHasher(params PasswordParams) *PasswordHasher {
	if params.Time == 0 {
		params.Time = 1
	}
	if params.MemoryKiB == 0 {
		params.MemoryKiB = 64 * 1024
	}
	if params.Threads == 0 {
		params.Threads = 4
	}
	return &PasswordHasher{
		time:    params.Time,
		memory:  params.MemoryKiB,
		threads: params.Threads,
		keyLen:  32,
		gate:    semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
}

// Hash derives an argon2id hash of the password and encodes it as
// $argon2id$v=19$m=..,t=..,p=..$salt$key. Each call draws a new salt, so
// hashing the same password twice yields different strings.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := checkPassword(password); err != nil {
		return "", err
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", ErrHashing
	}

	key, err := h.deriveKey(ctx, []byte(password), salt, h.time, h.memory, h.threads, h.keyLen)
	if err != nil {
		return "", err
	}

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify recomputes the hash with the parameters embedded in encodedHash and
// compares in constant time. A mismatch is (false, nil); errors are reserved
// for malformed input or hashing failure.
func (h *PasswordHasher) Verify(ctx context.Context, password, encodedHash string) (bool, error) {
	if encodedHash == "" {
		return false, ErrEmptyPassword
	}
	if err := checkPassword(password); err != nil {
		return false, err
	}

	params, salt, expected, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	key, err := h.deriveKey(ctx, []byte(password), salt, params.Time, params.MemoryKiB, params.Threads, uint32(len(expected)))
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

func (h *PasswordHasher) deriveKey(ctx context.Context, password, salt []byte, time, memory uint32, threads uint8, keyLen uint32) ([]byte, error) {
	if err := h.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.gate.Release(1)
	return argon2.IDKey(password, salt, time, memory, threads, keyLen), nil
}

func checkPassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if len(password) > MaxPasswordLength {
		return ErrExceededMaxLength
	}
	return nil
}

func decodeHash(encoded string) (PasswordParams, []byte, []byte, error) {
	var params PasswordParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return params, nil, nil, ErrInvalidHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params, nil, nil, ErrInvalidHashFormat
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.MemoryKiB, &params.Time, &params.Threads); err != nil {
		return params, nil, nil, ErrInvalidHashFormat
	}

	// argon2.IDKey panics on rounds or parallelism below 1, and a
	// zero-length key crashes its internal hash. Degenerate values are
	// malformed input here, not a reason to die.
	if params.Time < 1 || params.Threads < 1 {
		return params, nil, nil, ErrInvalidHashFormat
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return params, nil, nil, ErrInvalidHashFormat
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return params, nil, nil, ErrInvalidHashFormat
	}

	return params, salt, key, nil
}
