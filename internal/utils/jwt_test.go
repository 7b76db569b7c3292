package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("u1", "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "Alice", claims.UserName)
	assert.Greater(t, claims.ExpiresAt, claims.IssuedAt)
}

func TestParseTokenInvalid(t *testing.T) {
	_, err := ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestParseTokenWrongSecret(t *testing.T) {
	SetJWTSecret("secret-a")
	token, err := GenerateToken("u1", "Alice")
	require.NoError(t, err)

	SetJWTSecret("secret-b")
	defer SetJWTSecret("secret-a")

	_, err = ParseToken(token)
	assert.Error(t, err)
}
