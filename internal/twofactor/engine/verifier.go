package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shandysiswandi/twofactor/internal/pkg/seedcipher"
	"github.com/shandysiswandi/twofactor/internal/twofactor/entity"
)

var (
	// ErrNoCredential is returned when there is no record to check against.
	ErrNoCredential = errors.New("engine: no credential")
	// ErrUnknownKind is returned for a record whose kind is neither TOTP nor HOTP.
	ErrUnknownKind = errors.New("engine: unknown token kind")
)

type seedOpener interface {
	Open(stored string) ([]byte, error)
}

// Outcome reports a verification result. Mutated means the record counter
// changed and must be saved; Delete means the record must be removed.
// Neither is ever set together with Valid=false.
type Outcome struct {
	Valid   bool
	Mutated bool
	Delete  bool
}

// Verifier is the single entry point for checking a submitted code.
type Verifier struct {
	digits int
	cipher seedOpener
	totp   *TotpChecker
	hotp   *HotpChecker
	now    func() time.Time
}

func NewVerifier(digits int, cipher seedOpener, totp *TotpChecker, hotp *HotpChecker, now func() time.Time) *Verifier {
	return &Verifier{digits: digits, cipher: cipher, totp: totp, hotp: hotp, now: now}
}

// CheckAuthCode checks code against rec. A malformed code is a plain miss and
// leaves rec untouched. On an HOTP match rec.Counter is advanced in place.
// Errors are reserved for corrupt records and cache or configuration faults.
func (v *Verifier) CheckAuthCode(ctx context.Context, rec *entity.TokenRecord, code string) (Outcome, error) {
	if rec == nil {
		return Outcome{}, ErrNoCredential
	}
	if !v.wellFormed(code) {
		return Outcome{}, nil
	}

	switch rec.Kind {
	case entity.KindTOTP:
		seed, err := v.cipher.Open(rec.EncryptedSeed)
		if err != nil {
			return Outcome{}, err
		}

		ok, err := v.totp.Check(ctx, rec.OwnerID, seed, code, v.now())
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Valid: ok}, nil

	case entity.KindHOTP:
		seed, err := v.cipher.Open(rec.EncryptedSeed)
		if err != nil {
			return Outcome{}, err
		}

		// the salt is fresh on every seal, so it changes whenever the seed does
		generation, _, _ := strings.Cut(rec.EncryptedSeed, seedcipher.Separator)

		res, err := v.hotp.Check(ctx, rec.OwnerID, generation, seed, code, rec.Counter)
		if err != nil {
			return Outcome{}, err
		}
		if !res.Matched {
			return Outcome{}, nil
		}

		rec.Counter = res.Counter
		return Outcome{Valid: true, Mutated: true, Delete: res.Delete}, nil

	default:
		return Outcome{}, ErrUnknownKind
	}
}

func (v *Verifier) wellFormed(code string) bool {
	if code == "" || len(code) != v.digits {
		return false
	}

	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}

	return true
}
