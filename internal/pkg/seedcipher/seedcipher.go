package seedcipher

import (
	"bytes"
	"crypto/aes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
)

const (
	// SaltLength is the number of characters in a generated salt.
	SaltLength = 16

	// Separator splits the salt from the ciphertext in the stored form.
	Separator = "$"

	saltAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	fillerAlphabet = " !\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"
	padDelimiter   = 0x00
)

var (
	// ErrEmptyKey indicates missing global key material. It is a configuration fault.
	ErrEmptyKey = errors.New("seedcipher: global key is empty")
	// ErrEmptySeed indicates an attempt to encrypt a zero-length seed.
	ErrEmptySeed = errors.New("seedcipher: seed is empty")
	// ErrEmptySalt indicates a zero-length salt.
	ErrEmptySalt = errors.New("seedcipher: salt is empty")
	// ErrInvalidFormat indicates a corrupt stored value.
	ErrInvalidFormat = errors.New("seedcipher: invalid encrypted seed format")
)

// Cipher seals and opens seeds with a fixed global key. It holds no mutable
// state and is safe for concurrent use.
type Cipher struct {
	globalKey []byte
	random    io.Reader
}

// New returns a Cipher bound to globalKey.
func New(globalKey []byte) (*Cipher, error) {
	if len(globalKey) == 0 {
		return nil, ErrEmptyKey
	}

	k := make([]byte, len(globalKey))
	copy(k, globalKey)

	return &Cipher{globalKey: k, random: rand.Reader}, nil
}

// Seal encrypts seed under a fresh random salt and returns "salt$hex".
func (c *Cipher) Seal(seed []byte) (string, error) {
	salt, err := c.newSalt()
	if err != nil {
		return "", err
	}

	ct, err := c.Encrypt(seed, salt)
	if err != nil {
		return "", err
	}

	return salt + Separator + ct, nil
}

// Open reverses Seal.
func (c *Cipher) Open(stored string) ([]byte, error) {
	salt, ct, ok := strings.Cut(stored, Separator)
	if !ok || salt == "" || ct == "" {
		return nil, ErrInvalidFormat
	}

	return c.Decrypt(ct, salt)
}

// Encrypt pads and encrypts seed with the key derived from salt and returns
// lowercase hex.
func (c *Cipher) Encrypt(seed []byte, salt string) (string, error) {
	if len(seed) == 0 {
		return "", ErrEmptySeed
	}

	padded, err := c.pad(seed)
	if err != nil {
		return "", err
	}

	out, err := c.crypt(salt, padded, false)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(out), nil
}

// Decrypt reverses Encrypt, truncating the plaintext at the first NUL byte.
func (c *Cipher) Decrypt(ciphertextHex, salt string) ([]byte, error) {
	raw, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return nil, ErrInvalidFormat
	}

	plain, err := c.crypt(salt, raw, true)
	if err != nil {
		return nil, err
	}

	if i := bytes.IndexByte(plain, padDelimiter); i >= 0 {
		plain = plain[:i]
	}

	return plain, nil
}

// crypt runs every block through AES on its own, with no chaining between
// blocks, to stay compatible with stored values.
func (c *Cipher) crypt(salt string, in []byte, decrypt bool) ([]byte, error) {
	if salt == "" {
		return nil, ErrEmptySalt
	}

	key := c.deriveKey(salt)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("seedcipher: aes init failed: %w", err)
	}

	out := make([]byte, len(in))
	for i := 0; i < len(in); i += aes.BlockSize {
		if decrypt {
			block.Decrypt(out[i:i+aes.BlockSize], in[i:i+aes.BlockSize])
		} else {
			block.Encrypt(out[i:i+aes.BlockSize], in[i:i+aes.BlockSize])
		}
	}

	return out, nil
}

func (c *Cipher) deriveKey(salt string) [sha256.Size]byte {
	h := sha256.New()
	h.Write(c.globalKey)
	h.Write([]byte(salt))

	var key [sha256.Size]byte
	copy(key[:], h.Sum(nil))
	return key
}

func (c *Cipher) pad(seed []byte) ([]byte, error) {
	rem := len(seed) % aes.BlockSize
	if rem == 0 {
		out := make([]byte, len(seed))
		copy(out, seed)
		return out, nil
	}

	filler, err := randomString(c.random, fillerAlphabet, aes.BlockSize-rem-1)
	if err != nil {
		return nil, fmt.Errorf("seedcipher: filler generation failed: %w", err)
	}

	out := make([]byte, 0, len(seed)+aes.BlockSize-rem)
	out = append(out, seed...)
	out = append(out, padDelimiter)
	out = append(out, filler...)
	return out, nil
}

func (c *Cipher) newSalt() (string, error) {
	salt, err := randomString(c.random, saltAlphabet, SaltLength)
	if err != nil {
		return "", fmt.Errorf("seedcipher: salt generation failed: %w", err)
	}
	return salt, nil
}

func randomString(r io.Reader, alphabet string, n int) (string, error) {
	var sb strings.Builder
	sb.Grow(n)

	limit := big.NewInt(int64(len(alphabet)))
	for range n {
		idx, err := rand.Int(r, limit)
		if err != nil {
			return "", err
		}
		sb.WriteByte(alphabet[idx.Int64()])
	}

	return sb.String(), nil
}
