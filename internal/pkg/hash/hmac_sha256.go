package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// ErrEmptySecret is returned when the HMAC key is blank.
var ErrEmptySecret = errors.New("hash: hmac secret is required")

// HMACSHA256 produces lowercase hex HMAC-SHA256 digests under a fixed key.
type HMACSHA256 struct {
	secret []byte
}

// NewHMACSHA256 creates a keyed hasher. The secret must not be empty.
func NewHMACSHA256(secret string) (*HMACSHA256, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	return &HMACSHA256{secret: []byte(secret)}, nil
}

// Hash returns the hex digest of str. It never fails.
func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	return s.digest(str), nil
}

// Verify reports whether hashed is the digest of str.
func (s *HMACSHA256) Verify(hashed, str string) bool {
	return subtle.ConstantTimeCompare([]byte(hashed), s.digest(str)) == 1
}

func (s *HMACSHA256) digest(str string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(str))
	sum := mac.Sum(nil)

	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum)
	return out
}
