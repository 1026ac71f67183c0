package seedcipher

import (
	"bytes"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storedPattern = regexp.MustCompile(`^[A-Za-z0-9]{16}\$([0-9a-f]{32})+$`)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()

	c, err := New([]byte("django-secret" + "encryption-key"))
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("EmptyKeyIsConfigFault", func(t *testing.T) {
		c, err := New(nil)
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrEmptyKey)
	})
}

func TestCipher_SealOpen(t *testing.T) {
	c := newTestCipher(t)

	t.Run("RoundTripAllLengths", func(t *testing.T) {
		for n := 1; n <= 48; n++ {
			// Arrange
			seed := bytes.Repeat([]byte{'s'}, n)
			seed[0] = byte(n)

			// Act
			stored, err := c.Seal(seed)
			require.NoError(t, err)
			got, err := c.Open(stored)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, seed, got, "length %d", n)
			assert.Regexp(t, storedPattern, stored)
		}
	})

	t.Run("FreshSaltEveryCall", func(t *testing.T) {
		a, err := c.Seal([]byte("s33d"))
		require.NoError(t, err)
		b, err := c.Seal([]byte("s33d"))
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
		assert.NotEqual(t, strings.SplitN(a, "$", 2)[0], strings.SplitN(b, "$", 2)[0])
	})

	t.Run("BlockAlignedSeedIsNotPadded", func(t *testing.T) {
		stored, err := c.Seal(bytes.Repeat([]byte{0xAB}, 32))
		require.NoError(t, err)

		_, ct, _ := strings.Cut(stored, "$")
		assert.Len(t, ct, 64)
	})

	t.Run("ShortSeedPadsToOneBlock", func(t *testing.T) {
		stored, err := c.Seal([]byte("s33d"))
		require.NoError(t, err)

		_, ct, _ := strings.Cut(stored, "$")
		assert.Len(t, ct, 32)
	})

	t.Run("EmbeddedNULTruncates", func(t *testing.T) {
		stored, err := c.Seal([]byte("ab\x00cd"))
		require.NoError(t, err)

		got, err := c.Open(stored)
		require.NoError(t, err)
		assert.Equal(t, []byte("ab"), got)
	})

	t.Run("EmptySeed", func(t *testing.T) {
		_, err := c.Seal(nil)
		assert.ErrorIs(t, err, ErrEmptySeed)
	})

	t.Run("DifferentGlobalKeyDoesNotRecoverSeed", func(t *testing.T) {
		seed := bytes.Repeat([]byte{'k'}, 16)
		stored, err := c.Seal(seed)
		require.NoError(t, err)

		other, err := New([]byte("another-key"))
		require.NoError(t, err)

		got, err := other.Open(stored)
		require.NoError(t, err)
		assert.NotEqual(t, seed, got)
	})

	t.Run("ConcurrentUse", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := range 32 {
			wg.Go(func() {
				seed := []byte{byte(i + 1), 'x', 'y'}
				stored, err := c.Seal(seed)
				assert.NoError(t, err)
				got, err := c.Open(stored)
				assert.NoError(t, err)
				assert.Equal(t, seed, got)
			})
		}
		wg.Wait()
	})
}

func TestCipher_EncryptDecrypt(t *testing.T) {
	c := newTestCipher(t)

	t.Run("BlocksAreIndependent", func(t *testing.T) {
		// Arrange
		block := []byte("0123456789abcdef")
		seed := append(append([]byte{}, block...), block...)

		// Act
		ct, err := c.Encrypt(seed, "fixedsalt0000000")

		// Assert
		require.NoError(t, err)
		require.Len(t, ct, 64)
		assert.Equal(t, ct[:32], ct[32:])
	})

	t.Run("DeterministicForSameSalt", func(t *testing.T) {
		seed := []byte("0123456789abcdef")
		a, err := c.Encrypt(seed, "saltA")
		require.NoError(t, err)
		b, err := c.Encrypt(seed, "saltA")
		require.NoError(t, err)
		d, err := c.Encrypt(seed, "saltB")
		require.NoError(t, err)

		assert.Equal(t, a, b)
		assert.NotEqual(t, a, d)

		got, err := c.Decrypt(a, "saltA")
		require.NoError(t, err)
		assert.Equal(t, seed, got)
	})

	t.Run("EmptySalt", func(t *testing.T) {
		_, err := c.Encrypt([]byte("s33d"), "")
		assert.ErrorIs(t, err, ErrEmptySalt)
	})
}

func TestCipher_OpenFormatErrors(t *testing.T) {
	c := newTestCipher(t)

	tests := []struct {
		name   string
		stored string
	}{
		{name: "Empty", stored: ""},
		{name: "MissingSeparator", stored: "abcdef0123456789abcdef0123456789"},
		{name: "MissingSalt", stored: "$abcdef0123456789abcdef0123456789"},
		{name: "MissingCiphertext", stored: "saltsaltsaltsalt$"},
		{name: "NotHex", stored: "saltsaltsaltsalt$zz"},
		{name: "NotBlockMultiple", stored: "saltsaltsaltsalt$abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Open(tt.stored)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestCipher_SealSalt(t *testing.T) {
	c, err := New([]byte("global"))
	require.NoError(t, err)

	sealed, err := c.Seal([]byte("s33d"))
	require.NoError(t, err)

	salt, _, ok := strings.Cut(sealed, Separator)
	require.True(t, ok)
	assert.Regexp(t, `^[A-Za-z0-9]{16}$`, salt)
}
