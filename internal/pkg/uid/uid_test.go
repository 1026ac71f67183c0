package uid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake(t *testing.T) {
	t.Run("NodeOutOfRange", func(t *testing.T) {
		_, err := NewSnowflakeNode(1024)
		assert.ErrorIs(t, err, ErrInvalidNode)

		_, err = NewSnowflakeNode(-1)
		assert.ErrorIs(t, err, ErrInvalidNode)
	})

	t.Run("UniqueAndIncreasing", func(t *testing.T) {
		// Arrange
		gen, err := NewSnowflakeNode(7)
		require.NoError(t, err)

		// Act
		seen := make(map[int64]struct{}, 1000)
		prev := int64(0)
		for range 1000 {
			id := gen.Generate()

			// Assert
			assert.Greater(t, id, prev)
			_, dup := seen[id]
			assert.False(t, dup)
			seen[id] = struct{}{}
			prev = id
		}
	})

	t.Run("FromHostname", func(t *testing.T) {
		gen, err := NewSnowflake()
		require.NoError(t, err)
		assert.Positive(t, gen.Generate())
	})
}

func TestUUID(t *testing.T) {
	got := NewUUID().Generate()

	parsed, err := uuid.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}
