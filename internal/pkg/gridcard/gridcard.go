// Package gridcard issues printable grid-card keys and the HOTP code sheets
// derived from them.
//
// A key is a random base36 body followed by one checksum character, the first
// hex digit of MD5(body). The seed behind a card is SHA-256(body || secret)
// with every NUL byte replaced by '0', which keeps it safe for the NUL
// delimited padding of package seedcipher.
package gridcard

import (
	"crypto/md5" //nolint:gosec // checksum only, not a security boundary
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
	// BodyLength is the number of random characters in a key.
	BodyLength = 10
	// ChecksumLength is the number of trailing checksum characters.
	ChecksumLength = 1
	// KeyLength is the full printed key length.
	KeyLength = BodyLength + ChecksumLength
	// DefaultSheetSize is the number of codes printed on one card.
	DefaultSheetSize = 100

	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var (
	// ErrEmptySecret indicates missing server secret material.
	ErrEmptySecret = errors.New("gridcard: server secret is empty")
	// ErrInvalidKey indicates a key with a bad length, alphabet or checksum.
	ErrInvalidKey = errors.New("gridcard: invalid key")
)

type codeGenerator interface {
	HOTPSequence(seed []byte, n int) ([]string, error)
}

// Sheet is one printable card. It is handed to the holder and never stored.
type Sheet struct {
	Key   string
	Codes []string
}

// Codec derives seeds and code sheets from keys under one server secret.
type Codec struct {
	secret []byte
	codes  codeGenerator
	random io.Reader
}

// NewCodec returns a Codec. codes produces the HOTP sequence for a seed.
func NewCodec(serverSecret []byte, codes codeGenerator) (*Codec, error) {
	if len(serverSecret) == 0 {
		return nil, ErrEmptySecret
	}

	s := make([]byte, len(serverSecret))
	copy(s, serverSecret)

	return &Codec{secret: s, codes: codes, random: rand.Reader}, nil
}

// RandomKey returns a fresh key with a valid checksum.
func (c *Codec) RandomKey() (string, error) {
	var sb strings.Builder
	sb.Grow(KeyLength)

	limit := big.NewInt(int64(len(alphabet)))
	for range BodyLength {
		idx, err := rand.Int(c.random, limit)
		if err != nil {
			return "", fmt.Errorf("gridcard: random key failed: %w", err)
		}
		sb.WriteByte(alphabet[idx.Int64()])
	}

	body := sb.String()
	return body + Checksum(body), nil
}

// Checksum returns the checksum characters for body.
func Checksum(body string) string {
	sum := md5.Sum([]byte(body)) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])[:ChecksumLength]
}

// Normalize lowercases and trims key.
func Normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// VerifyChecksum reports whether key is well formed and its trailing
// character matches the checksum of its body. Case is ignored.
func VerifyChecksum(key string) bool {
	key = Normalize(key)
	if len(key) != KeyLength {
		return false
	}

	for i := 0; i < len(key); i++ {
		if !strings.ContainsRune(alphabet, rune(key[i])) {
			return false
		}
	}

	body := key[:BodyLength]
	return key[BodyLength:] == Checksum(body)
}

// KeyToSeed derives the HOTP seed behind key.
func (c *Codec) KeyToSeed(key string) ([]byte, error) {
	if !VerifyChecksum(key) {
		return nil, ErrInvalidKey
	}

	body := Normalize(key)[:BodyLength]

	h := sha256.New()
	h.Write([]byte(body))
	h.Write(c.secret)
	seed := h.Sum(nil)

	for i := range seed {
		if seed[i] == 0x00 {
			seed[i] = '0'
		}
	}

	return seed, nil
}

// ListCodes returns the first n HOTP codes (counters 0..n-1) for seed. The
// same seed always yields the same list.
func (c *Codec) ListCodes(seed []byte, n int) ([]string, error) {
	if n <= 0 {
		n = DefaultSheetSize
	}

	return c.codes.HOTPSequence(seed, n)
}

// NewSheet issues a new key and its first n codes.
func (c *Codec) NewSheet(n int) (Sheet, error) {
	key, err := c.RandomKey()
	if err != nil {
		return Sheet{}, err
	}

	seed, err := c.KeyToSeed(key)
	if err != nil {
		return Sheet{}, err
	}

	codes, err := c.ListCodes(seed, n)
	if err != nil {
		return Sheet{}, err
	}

	return Sheet{Key: key, Codes: codes}, nil
}
