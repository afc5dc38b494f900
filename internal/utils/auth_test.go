package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery", 4)
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery", hash)

	require.True(t, VerifyPassword(hash, "correct horse battery"))
	require.False(t, VerifyPassword(hash, "wrong password"))
	require.False(t, VerifyPassword("not a bcrypt hash", "correct horse battery"))
}

func TestNewAccessToken(t *testing.T) {
	tok, err := NewAccessToken("test-secret", 42, "ORGANIZER", 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	require.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), tok.Exp, 5*time.Second)

	parsed, err := jwt.Parse(tok.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.EqualValues(t, 42, claims["sub"])
	require.Equal(t, "ORGANIZER", claims["role"])
}

func TestAccessToken_WrongSecretRejected(t *testing.T) {
	tok, err := NewAccessToken("test-secret", 42, "PARTICIPANT", 15)
	require.NoError(t, err)

	_, err = jwt.Parse(tok.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	require.Error(t, err)
}
