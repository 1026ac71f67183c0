package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual(t *testing.T) {
	t.Run("AdvanceAndSet", func(t *testing.T) {
		// Arrange
		start := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
		c := NewManual(start)

		// Act
		c.Advance(30 * time.Second)

		// Assert
		assert.Equal(t, start.Add(30*time.Second), c.Now())

		c.Set(start)
		assert.Equal(t, start, c.Now())
	})

	t.Run("SystemClockMovesForward", func(t *testing.T) {
		c := New()
		assert.False(t, c.Now().Before(time.Now().Add(-time.Second)))
	})
}
