package otp

import (
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/pquerna/otp/totp"
)

// DefaultPeriod is the TOTP time step used by standard authenticator apps.
const DefaultPeriod uint = 30

var (
	// ErrEmptySeed indicates a zero-length seed.
	ErrEmptySeed = errors.New("otp: seed is empty")
	// ErrMissingLabel indicates an empty account label for a provisioning URI.
	ErrMissingLabel = errors.New("otp: account label is required")
)

var b32NoPadding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Config describes code shape and the accepted TOTP window.
type Config struct {
	// Issuer is shown by authenticator apps next to the account label.
	Issuer string
	// Digits is the code length. Anything but 6 or 8 falls back to 6.
	Digits otp.Digits
	// Period is the TOTP step. Zero means DefaultPeriod.
	Period uint
	// ForwardDrift is how many steps after now are accepted.
	ForwardDrift uint
	// BackwardDrift is how many steps before now are accepted.
	BackwardDrift uint
}

// Generator computes codes for a fixed Config.
type Generator struct {
	cfg Config
}

// NewGenerator normalizes cfg and returns a Generator.
func NewGenerator(cfg Config) *Generator {
	if cfg.Digits != otp.DigitsSix && cfg.Digits != otp.DigitsEight {
		cfg.Digits = otp.DigitsSix
	}
	if cfg.Period == 0 {
		cfg.Period = DefaultPeriod
	}

	return &Generator{cfg: cfg}
}

// Digits returns the configured code length.
func (g *Generator) Digits() int {
	return g.cfg.Digits.Length()
}

// Period returns the TOTP step.
func (g *Generator) Period() time.Duration {
	return time.Duration(g.cfg.Period) * time.Second
}

// Window returns the number of TOTP steps a single code stays acceptable.
func (g *Generator) Window() uint {
	return g.cfg.BackwardDrift + g.cfg.ForwardDrift + 1
}

// Secret returns seed as unpadded base32, the form authenticator apps accept.
func Secret(seed []byte) string {
	return b32NoPadding.EncodeToString(seed)
}

// HOTP returns the zero-padded code at counter.
func (g *Generator) HOTP(seed []byte, counter uint64) (string, error) {
	if len(seed) == 0 {
		return "", ErrEmptySeed
	}

	return hotp.GenerateCodeCustom(Secret(seed), counter, hotp.ValidateOpts{
		Digits:    g.cfg.Digits,
		Algorithm: otp.AlgorithmSHA1,
	})
}

// HOTPSequence returns the codes for counters 0..n-1.
func (g *Generator) HOTPSequence(seed []byte, n int) ([]string, error) {
	out := make([]string, 0, max(n, 0))
	for i := range n {
		code, err := g.HOTP(seed, uint64(i))
		if err != nil {
			return nil, err
		}
		out = append(out, code)
	}

	return out, nil
}

// MatchHOTP reports whether code equals the HOTP at exactly counter.
func (g *Generator) MatchHOTP(seed []byte, code string, counter uint64) (bool, error) {
	want, err := g.HOTP(seed, counter)
	if err != nil {
		return false, err
	}

	return equal(want, code), nil
}

// TOTP returns the code for the step containing at.
func (g *Generator) TOTP(seed []byte, at time.Time) (string, error) {
	if len(seed) == 0 {
		return "", ErrEmptySeed
	}

	return totp.GenerateCodeCustom(Secret(seed), at, totp.ValidateOpts{
		Period:    g.cfg.Period,
		Digits:    g.cfg.Digits,
		Algorithm: otp.AlgorithmSHA1,
	})
}

// TOTPWindow returns the codes for steps at-BackwardDrift through
// at+ForwardDrift, oldest first.
func (g *Generator) TOTPWindow(seed []byte, at time.Time) ([]string, error) {
	step := g.Period()
	out := make([]string, 0, g.Window())

	for k := -int(g.cfg.BackwardDrift); k <= int(g.cfg.ForwardDrift); k++ {
		code, err := g.TOTP(seed, at.Add(time.Duration(k)*step))
		if err != nil {
			return nil, err
		}
		out = append(out, code)
	}

	return out, nil
}

// MatchTOTP reports whether code matches any step in the drift window around at.
func (g *Generator) MatchTOTP(seed []byte, code string, at time.Time) (bool, error) {
	window, err := g.TOTPWindow(seed, at)
	if err != nil {
		return false, err
	}

	matched := false
	for _, want := range window {
		// keep scanning so timing does not reveal the matching step
		if equal(want, code) {
			matched = true
		}
	}

	return matched, nil
}

// TOTPURI builds an otpauth://totp URI for seed.
func (g *Generator) TOTPURI(seed []byte, label string) (string, error) {
	if len(seed) == 0 {
		return "", ErrEmptySeed
	}
	if label == "" {
		return "", ErrMissingLabel
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      g.cfg.Issuer,
		AccountName: label,
		Period:      g.cfg.Period,
		Secret:      seed,
		Digits:      g.cfg.Digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}

	return key.URL(), nil
}

// HOTPURI builds an otpauth://hotp URI for seed carrying the next counter.
func (g *Generator) HOTPURI(seed []byte, label string, counter uint64) (string, error) {
	if len(seed) == 0 {
		return "", ErrEmptySeed
	}
	if label == "" {
		return "", ErrMissingLabel
	}

	key, err := hotp.Generate(hotp.GenerateOpts{
		Issuer:      g.cfg.Issuer,
		AccountName: label,
		Secret:      seed,
		Digits:      g.cfg.Digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}

	u, err := url.Parse(key.URL())
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("counter", strconv.FormatUint(counter, 10))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func equal(want, got string) bool {
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}
