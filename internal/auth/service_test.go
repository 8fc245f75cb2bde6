// internal/auth/service_test.go

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(accessExpiry time.Duration) Service {
	return NewService(&Config{
		JWTSecret:          "test-secret",
		AccessTokenExpiry:  accessExpiry,
		RefreshTokenExpiry: 24 * time.Hour,
	})
}

func TestIssueAndValidate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(time.Hour)

	pair, err := svc.IssueTokens(ctx, 42)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := svc.ValidateToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "access", claims.Type)

	claims, err = svc.ValidateToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.Type)
}

func TestValidateToken(t *testing.T) {
	ctx := context.Background()

	t.Run("garbage token", func(t *testing.T) {
		svc := newTestService(time.Hour)

		_, err := svc.ValidateToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		svc := newTestService(-time.Minute)

		pair, err := svc.IssueTokens(ctx, 1)
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		svc := newTestService(time.Hour)
		other := NewService(&Config{
			JWTSecret:          "different-secret",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: time.Hour,
		})

		pair, err := svc.IssueTokens(ctx, 1)
		require.NoError(t, err)

		_, err = other.ValidateToken(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(time.Hour)

	pair, err := svc.IssueTokens(ctx, 7)
	require.NoError(t, err)

	t.Run("refresh token yields a fresh pair", func(t *testing.T) {
		fresh, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(ctx, fresh.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.UserID)
	})

	t.Run("access token is refused", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})
}
