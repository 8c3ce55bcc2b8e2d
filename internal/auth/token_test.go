package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParse(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	token, expiresAt, err := tm.Generate("user-1", "a@x.com")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.True(t, claims.ExpiresAt.Time.After(time.Now()))
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	claims := &Claims{
		Email: "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = tm.Parse(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseRejectsTamperedSignature(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	token, _, err := tm.Generate("user-1", "a@x.com")
	require.NoError(t, err)

	tampered := []byte(token)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	_, err = tm.Parse(string(tampered))
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	token, _, err := other.Generate("user-1", "a@x.com")
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestParseRejectsMalformedToken(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := tm.Parse(token)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token=%q", token)
	}
}

func TestParseRejectsWrongSigningMethod(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.Error(t, err)
}
