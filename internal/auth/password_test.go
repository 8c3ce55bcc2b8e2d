package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHasher() *PasswordHasher {
	// Low-cost parameters keep the test suite fast.
	return NewPasswordHasher(PasswordParams{Time: 1, MemoryKiB: 1024, Threads: 1})
}

func TestHashAndVerifyRoundTrip(t *testing.T) {
	hasher := testHasher()
	ctx := context.Background()

	hash, err := hasher.Hash(ctx, "password1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	match, err := hasher.Verify(ctx, "password1", hash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestVerifyRejectsWrongPassword(t *testing.T) {
	hasher := testHasher()
	ctx := context.Background()

	hash, err := hasher.Hash(ctx, "password1")
	require.NoError(t, err)

	match, err := hasher.Verify(ctx, "password2", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestHashUsesFreshSalt(t *testing.T) {
	hasher := testHasher()
	ctx := context.Background()

	first, err := hasher.Hash(ctx, "password1")
	require.NoError(t, err)
	second, err := hasher.Hash(ctx, "password1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	for _, hash := range []string{first, second} {
		match, err := hasher.Verify(ctx, "password1", hash)
		require.NoError(t, err)
		assert.True(t, match)
	}
}

func TestHashLengthBounds(t *testing.T) {
	hasher := testHasher()
	ctx := context.Background()

	_, err := hasher.Hash(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = hasher.Hash(ctx, strings.Repeat("a", MaxPasswordLength+1))
	assert.ErrorIs(t, err, ErrExceededMaxLength)

	// 64 bytes exactly is still accepted.
	hash, err := hasher.Hash(ctx, strings.Repeat("a", MaxPasswordLength))
	require.NoError(t, err)
	match, err := hasher.Verify(ctx, strings.Repeat("a", MaxPasswordLength), hash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestVerifyLengthBounds(t *testing.T) {
	hasher := testHasher()
	ctx := context.Background()

	hash, err := hasher.Hash(ctx, "password1")
	require.NoError(t, err)

	_, err = hasher.Verify(ctx, "", hash)
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = hasher.Verify(ctx, strings.Repeat("a", MaxPasswordLength+1), hash)
	assert.ErrorIs(t, err, ErrExceededMaxLength)

	_, err = hasher.Verify(ctx, "password1", "")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	hasher := testHasher()
	ctx := context.Background()

	for _, stored := range []string{
		"not-a-hash",
		"$bcrypt$v=19$m=1024,t=1,p=1$abc$def",
		"$argon2id$v=18$m=1024,t=1,p=1$abc$def",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$def",
		"$argon2id$v=19$bogus$abc$def",
		// Parseable but degenerate parameters must not reach the key
		// derivation, which panics on them.
		"$argon2id$v=19$m=1024,t=0,p=1$c2FsdHNhbHQ$AAAAAAAAAAAAAAAAAAAAAA",
		"$argon2id$v=19$m=1024,t=1,p=0$c2FsdHNhbHQ$AAAAAAAAAAAAAAAAAAAAAA",
		"$argon2id$v=19$m=1024,t=1,p=1$$AAAAAAAAAAAAAAAAAAAAAA",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$",
	} {
		_, err := hasher.Verify(ctx, "password1", stored)
		assert.ErrorIs(t, err, ErrInvalidHashFormat, "stored=%q", stored)
	}
}
