package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthService_RequiresSecret(t *testing.T) {
	_, err := NewAuthService("", "ecg-academy", testLogger)
	assert.Error(t, err)
}

func TestAuthService_RoundTrip(t *testing.T) {
	svc, err := NewAuthService("s3cret", "ecg-academy", testLogger)
	require.NoError(t, err)

	token, err := svc.CreateJWT(context.Background(), "u1", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateJWT(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UID)
	assert.Equal(t, "admin", claims.Role)
}

func TestAuthService_Rejects(t *testing.T) {
	svc, err := NewAuthService("s3cret", "ecg-academy", testLogger)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("expired", func(t *testing.T) {
		token, err := svc.CreateJWT(ctx, "u1", "", -time.Minute)
		require.NoError(t, err)
		_, err = svc.ValidateJWT(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewAuthService("other", "ecg-academy", testLogger)
		require.NoError(t, err)
		token, err := other.CreateJWT(ctx, "u1", "", time.Hour)
		require.NoError(t, err)
		_, err = svc.ValidateJWT(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewAuthService("s3cret", "someone-else", testLogger)
		require.NoError(t, err)
		token, err := other.CreateJWT(ctx, "u1", "", time.Hour)
		require.NoError(t, err)
		_, err = svc.ValidateJWT(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("no uid", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Issuer:    "ecg-academy",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		token, err := raw.SignedString([]byte("s3cret"))
		require.NoError(t, err)
		_, err = svc.ValidateJWT(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateJWT(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})
}
