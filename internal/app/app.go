package app

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/twofactor/internal/pkg/cache"
	"github.com/shandysiswandi/twofactor/internal/pkg/clock"
	"github.com/shandysiswandi/twofactor/internal/pkg/config"
	"github.com/shandysiswandi/twofactor/internal/pkg/goroutine"
	"github.com/shandysiswandi/twofactor/internal/pkg/gridcard"
	"github.com/shandysiswandi/twofactor/internal/pkg/hash"
	"github.com/shandysiswandi/twofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/twofactor/internal/pkg/jwt"
	"github.com/shandysiswandi/twofactor/internal/pkg/messaging"
	"github.com/shandysiswandi/twofactor/internal/pkg/otp"
	"github.com/shandysiswandi/twofactor/internal/pkg/qrcode"
	"github.com/shandysiswandi/twofactor/internal/pkg/router"
	"github.com/shandysiswandi/twofactor/internal/pkg/seedcipher"
	"github.com/shandysiswandi/twofactor/internal/pkg/uid"
	"github.com/shandysiswandi/twofactor/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	jwt       jwt.JWT
	casbin    *casbin.Enforcer
	cipher    *seedcipher.Cipher
	codes     *otp.Generator
	cards     *gridcard.Codec
	qrcode    *qrcode.Renderer

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	cache     cache.Cache
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initSecrets()
	app.initJWT()
	app.initCasbin()
	app.initDatabase()
	app.initCache()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
