package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/twofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/twofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/twofactor/internal/twofactor/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("twofactor"),
		tcpostgres.WithUsername("twofactor"),
		tcpostgres.WithPassword("twofactor"),
		tcpostgres.WithInitScripts(filepath.Join("..", "..", "..", "..", "migrations", "000001_create_twofactor_tokens.up.sql")),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewDB(pool, instrument.NewNoop())
}

func TestDB(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	rec := entity.TokenRecord{
		ID:            1,
		OwnerID:       42,
		Kind:          entity.KindHOTP,
		EncryptedSeed: "AbCdEfGhIjKlMnOp$00112233445566778899aabbccddeeff",
		Counter:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	t.Run("MissingOwner", func(t *testing.T) {
		got, err := s.GetTokenByOwner(ctx, 42)

		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("CreateThenGet", func(t *testing.T) {
		require.NoError(t, s.CreateToken(ctx, rec))

		got, err := s.GetTokenByOwner(ctx, 42)

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, entity.KindHOTP, got.Kind)
		assert.Equal(t, rec.EncryptedSeed, got.EncryptedSeed)
		assert.Equal(t, uint64(1), got.Counter)
		assert.True(t, now.Equal(got.CreatedAt))
	})

	t.Run("OneCredentialPerOwner", func(t *testing.T) {
		dup := rec
		dup.ID = 2

		err := s.CreateToken(ctx, dup)

		assert.ErrorIs(t, err, goerror.ErrConflict)
	})

	t.Run("AdvanceCounterIsConditional", func(t *testing.T) {
		ok, err := s.AdvanceTokenCounter(ctx, rec.ID, 1, 2, now.Add(time.Minute))
		require.NoError(t, err)
		stale, err := s.AdvanceTokenCounter(ctx, rec.ID, 1, 2, now.Add(time.Minute))
		require.NoError(t, err)

		assert.True(t, ok)
		assert.False(t, stale)

		got, err := s.GetTokenByOwner(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), got.Counter)
	})

	t.Run("ReplaceSeed", func(t *testing.T) {
		next := rec
		next.Kind = entity.KindTOTP
		next.EncryptedSeed = "ZyXwVuTsRqPoNmLk$ffeeddccbbaa99887766554433221100"
		next.Counter = 0
		next.UpdatedAt = now.Add(time.Hour)

		require.NoError(t, s.ReplaceTokenSeed(ctx, next))

		got, err := s.GetTokenByOwner(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, entity.KindTOTP, got.Kind)
		assert.Equal(t, next.EncryptedSeed, got.EncryptedSeed)
		assert.Equal(t, uint64(0), got.Counter)
	})

	t.Run("ReplaceMissing", func(t *testing.T) {
		ghost := rec
		ghost.ID = 999

		assert.ErrorIs(t, s.ReplaceTokenSeed(ctx, ghost), goerror.ErrNotFound)
	})

	t.Run("DeleteExhaustedIsConditional", func(t *testing.T) {
		stale, err := s.DeleteExhaustedToken(ctx, rec.ID, 7)
		require.NoError(t, err)
		ok, err := s.DeleteExhaustedToken(ctx, rec.ID, 0)
		require.NoError(t, err)

		assert.False(t, stale)
		assert.True(t, ok)
	})

	t.Run("DeleteByOwner", func(t *testing.T) {
		require.NoError(t, s.CreateToken(ctx, rec))

		removed, err := s.DeleteTokenByOwner(ctx, 42)
		require.NoError(t, err)
		again, err := s.DeleteTokenByOwner(ctx, 42)
		require.NoError(t, err)

		require.NotNil(t, removed)
		assert.Equal(t, entity.KindHOTP, removed.Kind)
		assert.Nil(t, again)
	})
}
