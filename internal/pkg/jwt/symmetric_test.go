package jwt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/twofactor/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func newTestJWT(t *testing.T, c clocker) *Symmetric {
	t.Helper()

	j, err := NewHS512(Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "twofactor",
		Audiences: []string{"twofactor-api"},
		TTL:       10 * time.Minute,
		Clock:     c,
		UUID:      fixedID("jti-1"),
	})
	require.NoError(t, err)
	return j
}

func TestNewHS512(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("short")})
	assert.ErrorIs(t, err, ErrSigningKeyTooShort)
}

func TestSymmetric(t *testing.T) {
	start := time.Unix(1700000000, 0)

	t.Run("RoundTrip", func(t *testing.T) {
		// Arrange
		j := newTestJWT(t, clock.NewManual(start))

		// Act
		tok, err := j.Generate("identity", []string{ScopeVerify})
		require.NoError(t, err)
		claims, err := j.Verify(tok)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "identity", claims.Service)
		assert.Equal(t, "jti-1", claims.ID)
		assert.Equal(t, []string{ScopeVerify}, claims.Scopes)
	})

	t.Run("Expired", func(t *testing.T) {
		mc := clock.NewManual(start)
		j := newTestJWT(t, mc)
		tok, err := j.Generate("identity", nil)
		require.NoError(t, err)

		mc.Advance(11 * time.Minute)
		_, err = j.Verify(tok)

		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("Tampered", func(t *testing.T) {
		j := newTestJWT(t, clock.NewManual(start))
		tok, err := j.Generate("identity", nil)
		require.NoError(t, err)

		parts := strings.Split(tok, ".")
		require.Len(t, parts, 3)
		parts[2] = strings.Repeat("A", len(parts[2]))

		_, err = j.Verify(strings.Join(parts, "."))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("MissingService", func(t *testing.T) {
		j := newTestJWT(t, clock.NewManual(start))
		_, err := j.Generate("", nil)
		assert.ErrorIs(t, err, ErrMissingService)
	})
}

func TestAuthContext(t *testing.T) {
	assert.Nil(t, GetAuth(context.Background()))

	ctx := SetAuth(context.Background(), Claims{Service: "identity"})
	require.NotNil(t, GetAuth(ctx))
	assert.Equal(t, "identity", GetAuth(ctx).Service)
}
