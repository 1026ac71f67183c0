package engine

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shandysiswandi/twofactor/internal/pkg/cache"
	"github.com/shandysiswandi/twofactor/internal/pkg/clock"
	"github.com/shandysiswandi/twofactor/internal/pkg/gridcard"
	"github.com/shandysiswandi/twofactor/internal/pkg/hash"
	"github.com/shandysiswandi/twofactor/internal/pkg/otp"
	"github.com/shandysiswandi/twofactor/internal/twofactor/entity"
)

const (
	DefaultMaxCounter         uint64 = 100
	DefaultLowWaterMark       uint64 = 10
	DefaultRateLimitWindow           = 600 * time.Second
	DefaultRateLimitThreshold        = 10
	DefaultSeedSize                  = 30
)

var ErrMissingDependency = errors.New("engine: missing dependency")

type seedCipher interface {
	Seal(seed []byte) (string, error)
	Open(stored string) ([]byte, error)
}

type codeGenerator interface {
	Digits() int
	Period() time.Duration
	Window() uint
	MatchTOTP(seed []byte, code string, at time.Time) (bool, error)
	MatchHOTP(seed []byte, code string, counter uint64) (bool, error)
	TOTPURI(seed []byte, label string) (string, error)
	HOTPURI(seed []byte, label string, counter uint64) (string, error)
}

type cardCodec interface {
	KeyToSeed(key string) ([]byte, error)
	ListCodes(seed []byte, n int) ([]string, error)
	NewSheet(n int) (gridcard.Sheet, error)
}

// Config holds the engine policy. Zero values fall back to the defaults.
type Config struct {
	MaxCounter         uint64
	LowWaterMark       uint64
	ReplayTTL          time.Duration
	RateLimitWindow    time.Duration
	RateLimitThreshold int
	SeedSize           int
	SheetSize          int
}

type Dependency struct {
	Config Config
	Cipher seedCipher
	Codes  codeGenerator
	Cards  cardCodec
	Cache  cache.Cache
	Hash   hash.Hash
	Clock  clock.Clocker
}

// Engine bundles the verifier with the credential lifecycle helpers.
type Engine struct {
	cfg      Config
	cipher   seedCipher
	codes    codeGenerator
	cards    cardCodec
	clock    clock.Clocker
	random   io.Reader
	verifier *Verifier
	hotp     *HotpChecker
}

func New(dep Dependency) (*Engine, error) {
	if dep.Cipher == nil || dep.Codes == nil || dep.Cards == nil || dep.Cache == nil || dep.Hash == nil || dep.Clock == nil {
		return nil, ErrMissingDependency
	}

	cfg := dep.Config
	if cfg.MaxCounter == 0 {
		cfg.MaxCounter = DefaultMaxCounter
	}
	if cfg.LowWaterMark == 0 {
		cfg.LowWaterMark = DefaultLowWaterMark
	}
	if cfg.ReplayTTL <= 0 {
		cfg.ReplayTTL = dep.Codes.Period() * time.Duration(dep.Codes.Window())
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = DefaultRateLimitWindow
	}
	if cfg.RateLimitThreshold <= 0 {
		cfg.RateLimitThreshold = DefaultRateLimitThreshold
	}
	if cfg.SeedSize <= 0 {
		cfg.SeedSize = DefaultSeedSize
	}
	if cfg.SheetSize <= 0 {
		cfg.SheetSize = gridcard.DefaultSheetSize
	}

	guard := NewReplayGuard(dep.Cache, dep.Hash, cfg.ReplayTTL)
	limiter := NewRateLimiter(dep.Cache, dep.Clock, cfg.RateLimitWindow, cfg.RateLimitThreshold)
	totpChecker := NewTotpChecker(dep.Codes, guard)
	hotpChecker := NewHotpChecker(dep.Codes, limiter, cfg.MaxCounter)

	return &Engine{
		cfg:      cfg,
		cipher:   dep.Cipher,
		codes:    dep.Codes,
		cards:    dep.Cards,
		clock:    dep.Clock,
		random:   rand.Reader,
		verifier: NewVerifier(dep.Codes.Digits(), dep.Cipher, totpChecker, hotpChecker, dep.Clock.Now),
		hotp:     hotpChecker,
	}, nil
}

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) CheckAuthCode(ctx context.Context, rec *entity.TokenRecord, code string) (Outcome, error) {
	return e.verifier.CheckAuthCode(ctx, rec, code)
}

// EnableRandom builds a new record with a random seed. KindUnknown means TOTP.
func (e *Engine) EnableRandom(owner int64, kind entity.Kind) (*entity.TokenRecord, error) {
	if kind == entity.KindUnknown {
		kind = entity.KindTOTP
	}
	if kind.IsUnknown() {
		return nil, ErrUnknownKind
	}

	now := e.clock.Now()
	rec := &entity.TokenRecord{OwnerID: owner, Kind: kind, CreatedAt: now, UpdatedAt: now}
	if err := e.ResetSeed(rec, nil); err != nil {
		return nil, err
	}

	return rec, nil
}

// EnableFromGridCard builds an HOTP record bound to a printed card. The
// counter starts at 1 because the first code is spent when the card is
// printed.
func (e *Engine) EnableFromGridCard(owner int64, key string) (*entity.TokenRecord, error) {
	seed, err := e.cards.KeyToSeed(key)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	rec := &entity.TokenRecord{OwnerID: owner, Kind: entity.KindHOTP, CreatedAt: now, UpdatedAt: now}
	if err := e.ResetSeed(rec, seed); err != nil {
		return nil, err
	}
	rec.Counter = 1

	return rec, nil
}

// ResetSeed replaces the seed of rec with seed, or a random one when seed is
// empty, and rewinds the counter. rec is changed in memory only.
func (e *Engine) ResetSeed(rec *entity.TokenRecord, seed []byte) error {
	if rec == nil {
		return ErrNoCredential
	}

	if len(seed) == 0 {
		s, err := e.randomSeed()
		if err != nil {
			return err
		}
		seed = s
	}

	sealed, err := e.cipher.Seal(seed)
	if err != nil {
		return err
	}

	rec.EncryptedSeed = sealed
	rec.Counter = 0
	rec.UpdatedAt = e.clock.Now()
	return nil
}

// randomSeed draws SeedSize random bytes without NUL so the seed survives the
// NUL delimited padding of the cipher.
func (e *Engine) randomSeed() ([]byte, error) {
	seed := make([]byte, e.cfg.SeedSize)
	if _, err := io.ReadFull(e.random, seed); err != nil {
		return nil, fmt.Errorf("engine: random seed: %w", err)
	}

	var one [1]byte
	for i := range seed {
		for seed[i] == 0x00 {
			if _, err := io.ReadFull(e.random, one[:]); err != nil {
				return nil, fmt.Errorf("engine: random seed: %w", err)
			}
			seed[i] = one[0]
		}
	}

	return seed, nil
}

// Base32Secret returns the seed of rec in the form soft-token apps accept.
func (e *Engine) Base32Secret(rec *entity.TokenRecord) (string, error) {
	if rec == nil {
		return "", ErrNoCredential
	}

	seed, err := e.cipher.Open(rec.EncryptedSeed)
	if err != nil {
		return "", err
	}

	return otp.Secret(seed), nil
}

// ProvisioningURI returns the otpauth URI for rec.
func (e *Engine) ProvisioningURI(rec *entity.TokenRecord, label string) (string, error) {
	if rec == nil {
		return "", ErrNoCredential
	}

	seed, err := e.cipher.Open(rec.EncryptedSeed)
	if err != nil {
		return "", err
	}

	switch rec.Kind {
	case entity.KindTOTP:
		return e.codes.TOTPURI(seed, label)
	case entity.KindHOTP:
		return e.codes.HOTPURI(seed, label, rec.Counter)
	default:
		return "", ErrUnknownKind
	}
}

// ListCodes returns the first n printable codes of seed. n <= 0 means the
// configured sheet size.
func (e *Engine) ListCodes(seed []byte, n int) ([]string, error) {
	if n <= 0 {
		n = e.cfg.SheetSize
	}
	return e.cards.ListCodes(seed, n)
}

// NewGridCard issues a fresh key with its code sheet.
func (e *Engine) NewGridCard(n int) (gridcard.Sheet, error) {
	if n <= 0 {
		n = e.cfg.SheetSize
	}
	return e.cards.NewSheet(n)
}

// Remaining returns the HOTP codes left on rec. TOTP records never run out.
func (e *Engine) Remaining(rec *entity.TokenRecord) uint64 {
	if rec == nil || rec.Kind != entity.KindHOTP {
		return 0
	}
	return e.hotp.Remaining(rec.Counter)
}

// RemainingLow reports whether an HOTP record is at or below lowWaterMark
// codes. Zero lowWaterMark means the configured one.
func (e *Engine) RemainingLow(rec *entity.TokenRecord, lowWaterMark uint64) bool {
	if rec == nil || rec.Kind != entity.KindHOTP {
		return false
	}
	if lowWaterMark == 0 {
		lowWaterMark = e.cfg.LowWaterMark
	}
	return e.hotp.RemainingLow(rec.Counter, lowWaterMark)
}
