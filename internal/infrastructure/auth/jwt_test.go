package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gtfsreview/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "gtfs-review-test",
	})
}

func TestNewJWTService_DefaultExpiration(t *testing.T) {
	s := NewJWTService(config.JWTConfig{Secret: "secret"})
	assert.Equal(t, 8*time.Hour, s.Expiration())
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	s := newTestJWTService()

	token, err := s.Generate("admin")
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), token.ExpiresAt, 5*time.Second)

	claims, err := s.Validate(token.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "gtfs-review-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Greater(t, claims.RemainingTTL(), 14*time.Minute)
}

func TestJWTService_UniqueTokenIDs(t *testing.T) {
	s := newTestJWTService()
	a, err := s.Generate("admin")
	require.NoError(t, err)
	b, err := s.Generate("admin")
	require.NoError(t, err)

	ca, err := s.Validate(a.Token)
	require.NoError(t, err)
	cb, err := s.Validate(b.Token)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestJWTService_Validate_Errors(t *testing.T) {
	s := newTestJWTService()

	t.Run("expired", func(t *testing.T) {
		issued := time.Now().Add(-time.Hour)
		s.now = func() time.Time { return issued }
		token, err := s.Generate("admin")
		s.now = time.Now
		require.NoError(t, err)

		_, err = s.Validate(token.Token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("not yet valid", func(t *testing.T) {
		future := time.Now().Add(time.Hour)
		s.now = func() time.Time { return future }
		token, err := s.Generate("admin")
		s.now = time.Now
		require.NoError(t, err)

		_, err = s.Validate(token.Token)
		assert.ErrorIs(t, err, ErrTokenNotYetValid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret", Issuer: "gtfs-review-test"})
		token, err := other.Generate("admin")
		require.NoError(t, err)

		_, err = s.Validate(token.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "someone-else"})
		token, err := other.Generate("admin")
		require.NoError(t, err)

		_, err = s.Validate(token.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong role", func(t *testing.T) {
		now := time.Now()
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "jti",
				Issuer:    "gtfs-review-test",
				Audience:  jwt.ClaimStrings{"gtfs-review-test"},
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
				IssuedAt:  jwt.NewNumericDate(now),
			},
			Username: "admin",
			Role:     "viewer",
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
		require.NoError(t, err)

		_, err = s.Validate(signed)
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})

	t.Run("other signing method", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "admin", Role: RoleAdmin})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = s.Validate(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_RemainingTTL(t *testing.T) {
	assert.Zero(t, (&Claims{}).RemainingTTL())

	past := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}
	assert.Zero(t, past.RemainingTTL())
}
