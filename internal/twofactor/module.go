package twofactor

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/twofactor/internal/pkg/cache"
	"github.com/shandysiswandi/twofactor/internal/pkg/clock"
	"github.com/shandysiswandi/twofactor/internal/pkg/config"
	"github.com/shandysiswandi/twofactor/internal/pkg/goroutine"
	"github.com/shandysiswandi/twofactor/internal/pkg/gridcard"
	"github.com/shandysiswandi/twofactor/internal/pkg/hash"
	"github.com/shandysiswandi/twofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/twofactor/internal/pkg/messaging"
	"github.com/shandysiswandi/twofactor/internal/pkg/otp"
	"github.com/shandysiswandi/twofactor/internal/pkg/qrcode"
	"github.com/shandysiswandi/twofactor/internal/pkg/router"
	"github.com/shandysiswandi/twofactor/internal/pkg/seedcipher"
	"github.com/shandysiswandi/twofactor/internal/pkg/uid"
	"github.com/shandysiswandi/twofactor/internal/pkg/validator"
	"github.com/shandysiswandi/twofactor/internal/twofactor/engine"
	"github.com/shandysiswandi/twofactor/internal/twofactor/inbound"
	"github.com/shandysiswandi/twofactor/internal/twofactor/outbound/db"
	"github.com/shandysiswandi/twofactor/internal/twofactor/outbound/mq"
	"github.com/shandysiswandi/twofactor/internal/twofactor/usecase"
)

type Dependency struct {
	Ctx        context.Context
	DBConn     *pgxpool.Pool              `validate:"required"`
	Cache      cache.Cache                `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Cipher     *seedcipher.Cipher         `validate:"required"`
	Codes      *otp.Generator             `validate:"required"`
	Cards      *gridcard.Codec            `validate:"required"`
	QRCode     *qrcode.Renderer           `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	eng, err := engine.New(engine.Dependency{
		Config: engine.Config{
			MaxCounter:         uint64(dep.Config.GetUint("twofactor.hotp.max_counter")),
			LowWaterMark:       uint64(dep.Config.GetUint("twofactor.hotp.low_water_mark")),
			ReplayTTL:          dep.Config.GetSecond("twofactor.replay_ttl"),
			RateLimitWindow:    dep.Config.GetSecond("twofactor.rate_limit.window"),
			RateLimitThreshold: dep.Config.GetInt("twofactor.rate_limit.threshold"),
			SheetSize:          dep.Config.GetInt("twofactor.gridcard.size"),
		},
		Cipher: dep.Cipher,
		Codes:  dep.Codes,
		Cards:  dep.Cards,
		Cache:  dep.Cache,
		Hash:   dep.HMAC,
		Clock:  dep.Clock,
	})
	if err != nil {
		return err
	}

	dbToken := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbToken,
		RepoMessaging: repoMsg,
		Engine:        eng,
		QRCode:        dep.QRCode,
		Validator:     dep.Validator,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
