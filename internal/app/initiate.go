package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	libOTP "github.com/pquerna/otp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sethvargo/go-retry"
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

const envPrefix = "TWOFACTOR"

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path,
		config.WithDotEnv(".env"),
		config.WithEnvPrefix(envPrefix),
		config.WithDefaults(map[string]any{
			"app.server.max_goroutine":         100,
			"twofactor.digits":                 6,
			"twofactor.totp.period":            otp.DefaultPeriod,
			"twofactor.totp.forward_drift":     1,
			"twofactor.totp.backward_drift":    1,
			"twofactor.hotp.max_counter":       100,
			"twofactor.hotp.low_water_mark":    10,
			"twofactor.rate_limit.window":      600,
			"twofactor.rate_limit.threshold":   10,
			"twofactor.gridcard.size":          100,
			"twofactor.qrcode.size":            256,
			"app.server.startup_max_retries":   5,
			"app.server.startup_backoff_ms":    200,
			"modules.twofactor.enabled":        true,
			"modules.twofactor.consumer_names": "",
		}),
	)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.qrcode = qrcode.NewRenderer(a.config.GetInt("twofactor.qrcode.size"))

	hmac, err := hash.NewHMACSHA256(a.config.GetString("hash.hmac.secret"))
	if err != nil {
		slog.Error("failed to init hmac", "error", err)
		os.Exit(1)
	}
	a.hmac = hmac

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake()
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow

	a.codes = otp.NewGenerator(otp.Config{
		Issuer:        a.config.GetString("twofactor.issuer"),
		Digits:        libOTP.Digits(a.config.GetInt("twofactor.digits")),
		Period:        a.config.GetUint("twofactor.totp.period"),
		ForwardDrift:  a.config.GetUint("twofactor.totp.forward_drift"),
		BackwardDrift: a.config.GetUint("twofactor.totp.backward_drift"),
	})
}

// initSecrets builds the seed cipher and the grid card codec. Missing key
// material is fatal.
func (a *App) initSecrets() {
	secretKey := a.config.GetString("twofactor.secret_key")
	encryptionKey := a.config.GetString("twofactor.encryption_key")

	cipher, err := seedcipher.New([]byte(secretKey + encryptionKey))
	if err != nil {
		slog.Error("failed to init seed cipher", "error", err)
		os.Exit(1)
	}
	a.cipher = cipher

	cards, err := gridcard.NewCodec([]byte(secretKey), a.codes)
	if err != nil {
		slog.Error("failed to init grid card codec", "error", err)
		os.Exit(1)
	}
	a.cards = cards
}

func (a *App) initJWT() {
	defaultJWT, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(a.config.GetString("jwt.secret")),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetMinute("jwt.ttl_minutes"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		slog.Error("failed to init jwt token", "error", err)
		os.Exit(1)
	}
	a.jwt = defaultJWT
}

// waitReady pings a dependency until it answers or the retry budget is spent.
func (a *App) waitReady(name string, ping func(ctx context.Context) error) error {
	b := retry.NewFibonacci(a.config.GetMillisecond("app.server.startup_backoff_ms"))
	b = retry.WithCappedDuration(5*time.Second, b)
	b = retry.WithMaxRetries(uint64(a.config.GetUint("app.server.startup_max_retries")), b)

	return retry.Do(a.ctx, b, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := ping(pingCtx); err != nil {
			slog.Warn("dependency is not ready yet", "name", name, "error", err)
			return retry.RetryableError(err)
		}

		return nil
	})
}

func (a *App) initDatabase() {
	config, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		slog.Error("failed to parse DB connection string.", "error", err)
		os.Exit(1)
	}

	config.MaxConns = a.config.GetInt32("database.pool.max_conns")
	config.MinConns = a.config.GetInt32("database.pool.min_conns")
	config.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	config.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	config.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	if err := a.waitReady("Database", pool.Ping); err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	a.dbConn = pool
}

func (a *App) initCache() {
	rdb := redis.NewClient(&redis.Options{
		Addr:     a.config.GetString("redis.address"),
		Password: a.config.GetString("redis.password"),
		DB:       a.config.GetInt("redis.db"),
	})

	if err := a.waitReady("Redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() }); err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	a.cacheConn = rdb
	a.cache = cache.NewRedis(rdb, a.config.GetString("redis.key_prefix"))
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(driver, messaging.FactoryOptions{
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("messaging.nats.name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.PingInterval(a.config.GetSecond("messaging.nats.ping_interval_seconds")),
				nats.MaxPingsOutstanding(a.config.GetInt("messaging.nats.max_pings_outstanding")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) initCasbin() {
	e, err := router.NewEnforcer()
	if err != nil {
		slog.Error("failed to init casbin", "error", err)
		os.Exit(1)
	}

	a.casbin = e
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		JWT:        a.jwt,
		Instrument: a.ins,
		Enforcer:   a.casbin,
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", router.HeaderCorrelationID},
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				return a.cacheConn.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				a.dbConn.Close()

				return nil
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
