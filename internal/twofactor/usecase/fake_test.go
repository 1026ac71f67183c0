package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/twofactor/internal/pkg/cache"
	"github.com/shandysiswandi/twofactor/internal/pkg/clock"
	"github.com/shandysiswandi/twofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/twofactor/internal/pkg/goroutine"
	"github.com/shandysiswandi/twofactor/internal/pkg/gridcard"
	"github.com/shandysiswandi/twofactor/internal/pkg/hash"
	"github.com/shandysiswandi/twofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/twofactor/internal/pkg/otp"
	"github.com/shandysiswandi/twofactor/internal/pkg/qrcode"
	"github.com/shandysiswandi/twofactor/internal/pkg/seedcipher"
	"github.com/shandysiswandi/twofactor/internal/pkg/uid"
	"github.com/shandysiswandi/twofactor/internal/pkg/validator"
	"github.com/shandysiswandi/twofactor/internal/twofactor/engine"
	"github.com/shandysiswandi/twofactor/internal/twofactor/entity"
	"github.com/stretchr/testify/require"
)

type fakeDB struct {
	mu     sync.Mutex
	tokens map[int64]entity.TokenRecord
	err    error

	// afterGet runs with the lock held, after a copy has been handed out.
	afterGet func(stored *entity.TokenRecord)
	advances int
}

func newFakeDB() *fakeDB {
	return &fakeDB{tokens: make(map[int64]entity.TokenRecord)}
}

func (f *fakeDB) put(rec entity.TokenRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[rec.OwnerID] = rec
}

func (f *fakeDB) get(owner int64) (entity.TokenRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.tokens[owner]
	return rec, ok
}

func (f *fakeDB) GetTokenByOwner(_ context.Context, ownerID int64) (*entity.TokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.tokens[ownerID]
	if !ok {
		return nil, nil
	}
	out := rec
	if f.afterGet != nil {
		f.afterGet(&rec)
		f.tokens[ownerID] = rec
	}
	return &out, nil
}

func (f *fakeDB) CreateToken(_ context.Context, rec entity.TokenRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	if _, ok := f.tokens[rec.OwnerID]; ok {
		return goerror.ErrConflict
	}
	f.tokens[rec.OwnerID] = rec
	return nil
}

func (f *fakeDB) ReplaceTokenSeed(_ context.Context, rec entity.TokenRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cur, ok := f.tokens[rec.OwnerID]
	if !ok || cur.ID != rec.ID {
		return goerror.ErrNotFound
	}
	cur.Kind = rec.Kind
	cur.EncryptedSeed = rec.EncryptedSeed
	cur.Counter = rec.Counter
	cur.UpdatedAt = rec.UpdatedAt
	f.tokens[rec.OwnerID] = cur
	return nil
}

func (f *fakeDB) AdvanceTokenCounter(_ context.Context, id int64, from, to uint64, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.advances++
	for owner, rec := range f.tokens {
		if rec.ID == id && rec.Counter == from {
			rec.Counter = to
			rec.UpdatedAt = at
			f.tokens[owner] = rec
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDB) DeleteExhaustedToken(_ context.Context, id int64, counter uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for owner, rec := range f.tokens {
		if rec.ID == id && rec.Counter == counter {
			delete(f.tokens, owner)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDB) DeleteTokenByOwner(_ context.Context, ownerID int64) (*entity.TokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.tokens[ownerID]
	if !ok {
		return nil, nil
	}
	delete(f.tokens, ownerID)
	return &rec, nil
}

type fakeMessaging struct {
	mu        sync.Mutex
	exhausted []ExhaustedEvent
	disabled  []DisabledEvent
	codesLow  []CodesLowEvent
}

func (f *fakeMessaging) PublishExhausted(_ context.Context, msg ExhaustedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exhausted = append(f.exhausted, msg)
	return nil
}

func (f *fakeMessaging) PublishDisabled(_ context.Context, msg DisabledEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabled = append(f.disabled, msg)
	return nil
}

func (f *fakeMessaging) PublishCodesLow(_ context.Context, msg CodesLowEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codesLow = append(f.codesLow, msg)
	return nil
}

type suite struct {
	uc      *Usecase
	db      *fakeDB
	msg     *fakeMessaging
	routine *goroutine.Manager
	clock   *clock.Manual
	cipher  *seedcipher.Cipher
}

func newSuite(t *testing.T) *suite {
	t.Helper()
	return newSuiteWithCache(t, nil)
}

// newSuiteWithCache builds a suite over c, or over an in-memory cache when c is nil.
func newSuiteWithCache(t *testing.T, c cache.Cache) *suite {
	t.Helper()

	clk := clock.NewManual(time.Unix(1700000000, 0))
	if c == nil {
		c = cache.NewMemory(clk)
	}
	codes := otp.NewGenerator(otp.Config{Issuer: "Acme", ForwardDrift: 1, BackwardDrift: 1})

	cipher, err := seedcipher.New([]byte("test-global-key"))
	require.NoError(t, err)
	cards, err := gridcard.NewCodec([]byte("test-secret"), codes)
	require.NoError(t, err)
	hmac, err := hash.NewHMACSHA256("replay-secret")
	require.NoError(t, err)
	eng, err := engine.New(engine.Dependency{
		Cipher: cipher,
		Codes:  codes,
		Cards:  cards,
		Cache:  c,
		Hash:   hmac,
		Clock:  clk,
	})
	require.NoError(t, err)
	v, err := validator.NewV10Validator()
	require.NoError(t, err)
	sf, err := uid.NewSnowflakeNode(1)
	require.NoError(t, err)

	s := &suite{
		db:      newFakeDB(),
		msg:     &fakeMessaging{},
		routine: goroutine.NewManager(10),
		clock:   clk,
		cipher:  cipher,
	}
	s.uc = New(Dependency{
		RepoDB:        s.db,
		RepoMessaging: s.msg,
		Engine:        eng,
		QRCode:        qrcode.NewRenderer(128),
		Validator:     v,
		UID:           sf,
		Clock:         clk,
		Instrument:    instrument.NewNoop(),
		Goroutine:     s.routine,
	})

	return s
}

type downCache struct{}

func (downCache) Get(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("%w: dial tcp 127.0.0.1:6379: connect: connection refused", cache.ErrUnavailable)
}

func (downCache) Set(context.Context, string, []byte, time.Duration) error {
	return fmt.Errorf("%w: dial tcp 127.0.0.1:6379: connect: connection refused", cache.ErrUnavailable)
}

// seed stores a record for owner 42 over the seed "s33d".
func (s *suite) seed(t *testing.T, kind entity.Kind, counter uint64) entity.TokenRecord {
	t.Helper()

	sealed, err := s.cipher.Seal([]byte("s33d"))
	require.NoError(t, err)

	rec := entity.TokenRecord{
		ID:            1001,
		OwnerID:       42,
		Kind:          kind,
		EncryptedSeed: sealed,
		Counter:       counter,
		CreatedAt:     s.clock.Now(),
		UpdatedAt:     s.clock.Now(),
	}
	s.db.put(rec)
	return rec
}

// drain waits for every queued event.
func (s *suite) drain(t *testing.T) {
	t.Helper()
	require.NoError(t, s.routine.Wait())
}

func requireCode(t *testing.T, err error, typ goerror.Type, code goerror.Code) *goerror.Error {
	t.Helper()

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, typ, gerr.Type())
	require.Equal(t, code, gerr.Code())
	return gerr
}
