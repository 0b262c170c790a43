// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Taskflow HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when configured.
//  5. Run database migrations (idempotent).
//  6. Build the signing key ring and token service.
//  7. Wire domain services and HTTP handlers.
//  8. Start background loops (key rotation, token janitor).
//  9. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/taskflow/internal/api"
	"github.com/taibuivan/taskflow/internal/platform/config"
	"github.com/taibuivan/taskflow/internal/platform/constants"
	"github.com/taibuivan/taskflow/internal/platform/cookie"
	"github.com/taibuivan/taskflow/internal/platform/migration"
	pgstore "github.com/taibuivan/taskflow/internal/platform/postgres"
	"github.com/taibuivan/taskflow/internal/platform/ratelimit"
	redisstore "github.com/taibuivan/taskflow/internal/platform/redis"
	"github.com/taibuivan/taskflow/internal/platform/sec"
	"github.com/taibuivan/taskflow/internal/tasks/category"
	"github.com/taibuivan/taskflow/internal/tasks/todo"
	"github.com/taibuivan/taskflow/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("redis", cfg.RedisURL != ""),
	)

	// Root context for background loops; cancelled on shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	startupCtx, startupCancel := context.WithTimeout(rootCtx, constants.StartupTimeout)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Signing Keys ───────────────────────────────────────────────────
	keyRing, err := sec.NewKeyRing(sec.KeyRingConfig{
		Seed:    cfg.JWTSecret,
		History: cfg.KeyHistory,
		Logger:  log,
	})
	must(log, err, "initialize key ring")

	tokenService, err := sec.NewTokenService(keyRing, cfg.JWTSecret, constants.AuthIssuer, nil)
	must(log, err, "initialize token service")

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	tokenRepository := auth.NewTokenRepository(pool)

	var (
		resetRepository auth.ResetTokenRepository
		limiter         ratelimit.Limiter
		checkCache      func() error
	)
	if rdb != nil {
		resetRepository = auth.NewResetTokenRepository(rdb)
		limiter = ratelimit.NewRedis(rdb, cfg.RateLimitMax, cfg.RateLimitWindow)
		checkCache = func() error { return redisstore.Ping(context.Background(), rdb) }
	} else {
		resetRepository = auth.NewMemoryResetTokenRepository(time.Now)
		limiter = ratelimit.NewMemory(rootCtx, cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	categoryRepository := category.NewPostgresRepository(pool)
	categoryService := category.NewService(categoryRepository)

	todoService := todo.NewService(todo.NewPostgresRepository(pool), categoryRepository)

	issuer := auth.NewIssuer(tokenService, tokenRepository)
	verifier := auth.NewVerifier(tokenService, tokenRepository, userRepository, nil)
	authService := auth.NewService(userRepository, tokenRepository, resetRepository, auth.NewTransactor(pool), issuer, tokenService, categoryService, nil)

	refreshCookie := cookie.Policy{
		Name:       constants.RefreshTokenCookieName,
		Path:       constants.RefreshTokenCookiePath,
		MaxAge:     sec.RefreshTokenTTL,
		Production: cfg.IsProduction(),
		Signer:     cookie.NewSigner(cfg.JWTSecret),
	}

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: checkCache,
	}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, verifier, refreshCookie, cfg.IsDevelopment()),
		Category:  category.NewHandler(categoryService),
		Todo:      todo.NewHandler(todoService),
	}

	server := api.NewServer(cfg, log, api.Dependencies{Verifier: verifier, Limiter: limiter}, handlers)

	// ── 8. Background Loops ───────────────────────────────────────────────
	fatal := make(chan error, 1)

	rotation := time.NewTicker(cfg.KeyRotationInterval)
	defer rotation.Stop()
	go func() {
		// A ring that can no longer rotate must not keep signing.
		if err := keyRing.Run(rootCtx, rotation.C); err != nil {
			fatal <- err
		}
	}()

	sweep := time.NewTicker(cfg.TokenJanitorInterval)
	defer sweep.Stop()
	go auth.NewJanitor(tokenRepository, nil, log).Run(rootCtx, sweep.C)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal, server error or a fatal background failure.
	exitCode := 0
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
		exitCode = 1
	case err := <-fatal:
		log.Error("key_rotation_failed", slog.Any("error", err))
		exitCode = 1
	}

	rootCancel()

	// Give in-flight requests enough time to complete.
	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		exitCode = 1
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
	log.Info("server_stopped_cleanly")
}

// newLogger builds the JSON stdout logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
