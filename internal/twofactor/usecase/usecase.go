package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/shandysiswandi/twofactor/internal/pkg/clock"
	"github.com/shandysiswandi/twofactor/internal/pkg/goroutine"
	"github.com/shandysiswandi/twofactor/internal/pkg/gridcard"
	"github.com/shandysiswandi/twofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/twofactor/internal/pkg/uid"
	"github.com/shandysiswandi/twofactor/internal/pkg/validator"
	"github.com/shandysiswandi/twofactor/internal/twofactor/engine"
	"github.com/shandysiswandi/twofactor/internal/twofactor/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	DisableReasonRequested   = "requested"
	DisableReasonExhausted   = "exhausted"
	DisableReasonUserDeleted = "user_deleted"
)

type ExhaustedEvent struct {
	OwnerID    int64
	Kind       entity.Kind
	Counter    uint64
	OccurredAt time.Time
}

type DisabledEvent struct {
	OwnerID    int64
	Kind       entity.Kind
	Reason     string
	OccurredAt time.Time
}

type CodesLowEvent struct {
	OwnerID    int64
	Remaining  uint64
	OccurredAt time.Time
}

type repoMessaging interface {
	PublishExhausted(ctx context.Context, msg ExhaustedEvent) error
	PublishDisabled(ctx context.Context, msg DisabledEvent) error
	PublishCodesLow(ctx context.Context, msg CodesLowEvent) error
}

type repoDB interface {
	// GetTokenByOwner returns nil, nil when the owner has no credential.
	GetTokenByOwner(ctx context.Context, ownerID int64) (*entity.TokenRecord, error)

	CreateToken(ctx context.Context, rec entity.TokenRecord) error
	ReplaceTokenSeed(ctx context.Context, rec entity.TokenRecord) error
	AdvanceTokenCounter(ctx context.Context, id int64, from, to uint64, at time.Time) (bool, error)

	DeleteExhaustedToken(ctx context.Context, id int64, counter uint64) (bool, error)
	DeleteTokenByOwner(ctx context.Context, ownerID int64) (*entity.TokenRecord, error)
}

type codeEngine interface {
	CheckAuthCode(ctx context.Context, rec *entity.TokenRecord, code string) (engine.Outcome, error)
	EnableRandom(owner int64, kind entity.Kind) (*entity.TokenRecord, error)
	EnableFromGridCard(owner int64, key string) (*entity.TokenRecord, error)
	ResetSeed(rec *entity.TokenRecord, seed []byte) error
	Base32Secret(rec *entity.TokenRecord) (string, error)
	ProvisioningURI(rec *entity.TokenRecord, label string) (string, error)
	NewGridCard(n int) (gridcard.Sheet, error)
	Remaining(rec *entity.TokenRecord) uint64
	RemainingLow(rec *entity.TokenRecord, lowWaterMark uint64) bool
}

type qrRenderer interface {
	DataURI(content string) (string, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	engine        codeEngine
	qrcode        qrRenderer
	validator     validator.Validator
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager

	verifications metric.Int64Counter
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Engine        codeEngine
	QRCode        qrRenderer
	Validator     validator.Validator
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	verifications, err := dep.Instrument.Meter("twofactor.usecase").Int64Counter(
		"twofactor.verifications",
		metric.WithDescription("Number of second-factor code checks"),
	)
	if err != nil {
		slog.Error("failed to create verification counter", "error", err)
	}

	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		engine:        dep.Engine,
		qrcode:        dep.QRCode,
		validator:     dep.Validator,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
		verifications: verifications,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("twofactor.usecase").Start(ctx, name)
}

func (s *Usecase) countVerification(ctx context.Context, kind entity.Kind, result string) {
	if s.verifications == nil {
		return
	}
	s.verifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.String("result", result),
	))
}

// publish runs fn after the response path is done with ctx. Publication is
// best effort; the state change it reports is already committed.
func (s *Usecase) publish(ctx context.Context, name string, fn func(ctx context.Context) error) {
	bg := context.WithoutCancel(ctx)
	s.goroutine.Go(bg, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to publish event", "event", name, "error", err)
			return err
		}
		return nil
	})
}

func defaultLabel(ownerID int64, label string) string {
	if label != "" {
		return label
	}
	return strconv.FormatInt(ownerID, 10)
}
