package entity

import (
	"errors"
	"strings"
	"time"
)

var ErrKindUnknown = errors.New("twofactor: token kind is unknown")

type Kind int16

const (
	// KindUnknown is mean kind is not known / not set.
	KindUnknown Kind = 0

	// KindTOTP mean codes are derived from the current time step.
	KindTOTP Kind = 1

	// KindHOTP mean codes are derived from a counter, either from a soft token or a printed grid card.
	KindHOTP Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindTOTP:
		return "totp"
	case KindHOTP:
		return "hotp"
	default:
		return "unknown"
	}
}

func (k Kind) IsUnknown() bool {
	return k != KindTOTP && k != KindHOTP
}

func KindFromString(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "totp":
		return KindTOTP
	case "hotp":
		return KindHOTP
	default:
		return KindUnknown
	}
}

// TokenRecord is the single second-factor credential of an owner.
type TokenRecord struct {
	ID            int64
	OwnerID       int64
	Kind          Kind
	EncryptedSeed string
	Counter       uint64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Clone returns a copy safe to mutate.
func (t *TokenRecord) Clone() *TokenRecord {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
