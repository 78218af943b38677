package bootstrap

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/mail"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/audit"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/memory"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/redis"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/flash"
	http_handlers "github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/handlers"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/router"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/views"
)

const confirmTokenIssuer = "account-service"

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string, debug bool) (*sql.DB, error)

	// Migrate runs when DB_AUTO_MIGRATE is set. Nil skips migrations.
	Migrate func(ctx context.Context, db *sql.DB) error

	// NewRedis is optional; nil disables Redis entirely.
	NewRedis func(addr, password string, db int) RedisClient

	NewMailer func(cfg *config.Config) (mail.Mailer, func(), error)

	NewRouter func(router.Deps) (http.Handler, error)

	// BcryptCost defaults to 12.
	BcryptCost int
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 1) db
	db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
	if err != nil {
		return nil, nil, err
	}

	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	if cfg.DBAutoMigrate && deps.Migrate != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := deps.Migrate(ctx, db)
		cancel()
		if err != nil {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	}

	// 2) user repo
	userRepo := postgres.NewUserRepo(db)

	// 3) redis (best-effort)
	var redisCli RedisClient
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()

		if err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; using in-memory sessions and rate limits")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 4) session store + limiter
	var sessionStore auth.SessionStore
	var limiter middleware.RateLimiter
	if rc, ok := redisCli.(*redis.Client); ok {
		sessionStore = redis.NewSessionStore(rc)
		limiter = redis.NewFixedWindowLimiter(rc)
	} else {
		sessionStore = memory.NewSessionStore()
	}

	// 5) mail transport
	mailer, closeMailer, err := deps.NewMailer(cfg)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}
	if closeMailer != nil {
		cleanupFns = append(cleanupFns, closeMailer)
	}

	// 6) security
	cost := deps.BcryptCost
	if cost == 0 {
		cost = 12
	}
	hasher := security.NewBcryptHasher(cost)
	confirmTokens := security.NewConfirmTokenSigner(cfg.ConfirmTokenSecret, confirmTokenIssuer, cfg.ConfirmTokenTTL)

	// seed (dev only)
	if cfg.Env == "dev" && cfg.SeedAdminEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		postgres.SeedAdmin(ctx, userRepo, hasher, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
		cancel()
	}

	// 7) service
	auditLog := audit.New(logger.Logger)
	authSvc := auth.NewService(
		userRepo,
		hasher,
		confirmTokens,
		sessionStore,
		mailer,
		auth.Config{
			SessionTTL:                cfg.SessionTTL,
			EmailConfirmationDisabled: cfg.EmailConfirmationDisabled,
			ConfirmURLBase:            cfg.ConfirmURLBase(),
		},
	).WithAudit(auditLog.Event)

	// 8) presentation
	pages, err := views.New(SiteName, cfg.AuthURLPrefix)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}
	flashes := flash.NewStore([]byte(cfg.SessionSecret), cfg.SessionCookieSecure)
	writeErr := response.HTMLError(pages)

	// 9) handlers + middleware
	authH := http_handlers.NewAuthHandler(authSvc, pages, flashes, auditLog, writeErr, http_handlers.Config{
		Prefix:        cfg.AuthURLPrefix,
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: cfg.SessionCookieSecure,
	})
	pageH := http_handlers.NewPageHandler(pages, flashes, writeErr)

	// a typed nil *redis.Client would not compare equal to nil inside the handler
	var redisPinger http_handlers.Pinger
	if redisCli != nil {
		redisPinger = redisCli
	}
	healthH := http_handlers.NewHealthHandler(db, redisPinger)

	// rate limit: redis (fail-open), per-process counters without it
	rl := func(key string, limit int, window time.Duration) router.Middleware {
		rlCfg := middleware.FixedWindowConfig{
			RouteKey: key,
			Limit:    limit,
			Window:   window,
		}
		if limiter == nil {
			return middleware.RateLimitInMemory(rlCfg, writeErr)
		}
		return middleware.RateLimitFixedWindow(limiter, rlCfg, writeErr)
	}

	// 10) router
	mux, err := deps.NewRouter(router.Deps{
		Health:  healthH,
		Auth:    authH,
		Pages:   pageH,
		Metrics: promhttp.Handler(),

		Prefix:    cfg.AuthURLPrefix,
		BodyLimit: cfg.BodyLimit,

		LoadUserMW:         middleware.LoadUser(authSvc, cfg.SessionCookieSecure, writeErr),
		RequireLoginMW:     middleware.RequireLogin(flashes, cfg.AuthURLPrefix+"/login"),
		RequireConfirmedMW: middleware.RequireConfirmed(cfg.AuthURLPrefix + "/unconfirmed"),
		RequireAdminMW:     middleware.RequireAdmin(flashes),
		CSRFMW:             middleware.CSRFProtection([]string{cfg.PublicBaseURL}, writeErr),

		RegisterLimitMW: rl("auth.register", 5, time.Minute),
		LoginLimitMW:    rl("auth.login", 10, time.Minute),
		ResendLimitMW:   rl("auth.resend", 3, 10*time.Minute),
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 11) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		Migrate:    postgres.Migrate,
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewMailer: newMailer,
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
