package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestAccessTokenExpired(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("live token", func(t *testing.T) {
		token := signedToken(t, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})
		require.False(t, accessTokenExpired(token, now))
	})

	t.Run("expired token", func(t *testing.T) {
		token := signedToken(t, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		})
		require.True(t, accessTokenExpired(token, now))
	})

	t.Run("expiring within the skew window", func(t *testing.T) {
		token := signedToken(t, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expirySkew / 2)),
		})
		require.True(t, accessTokenExpired(token, now))
	})

	t.Run("no exp claim", func(t *testing.T) {
		token := signedToken(t, jwt.RegisteredClaims{Subject: "1"})
		require.False(t, accessTokenExpired(token, now))
	})

	t.Run("opaque token", func(t *testing.T) {
		require.False(t, accessTokenExpired("not-a-jwt", now))
	})
}
