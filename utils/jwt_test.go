package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("test-secret", 42, "student", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "student", claims.Role)
}

func TestExpiredToken(t *testing.T) {
	token, err := GenerateToken("test-secret", 1, "teacher", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("test-secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", 1, "teacher", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("secret-b", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageToken(t *testing.T) {
	_, err := ParseToken("test-secret", "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
