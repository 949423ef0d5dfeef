package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	service := NewJWTService("test-secret")
	userID := uuid.New()

	token, err := service.GenerateToken(userID, "ann@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ann@x.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(TokenExpiry), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTService_ExpiryHorizon(t *testing.T) {
	service := NewJWTService("test-secret")
	userID := uuid.New()

	t.Run("still valid six days in", func(t *testing.T) {
		token, err := service.generateTokenAt(userID, "ann@x.com", time.Now().Add(-6*24*time.Hour))
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.NoError(t, err)
	})

	t.Run("expired after eight days", func(t *testing.T) {
		token, err := service.generateTokenAt(userID, "ann@x.com", time.Now().Add(-8*24*time.Hour))
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestJWTService_Malformed(t *testing.T) {
	service := NewJWTService("test-secret")

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewJWTService("other-secret")
		token, err := other.GenerateToken(uuid.New(), "ann@x.com")
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})
}
