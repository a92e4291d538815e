package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/geoclick/clicktracker/internal/api"
	"github.com/geoclick/clicktracker/internal/api/handler"
	"github.com/geoclick/clicktracker/internal/core/ports"
	"github.com/geoclick/clicktracker/internal/core/service"
	"github.com/geoclick/clicktracker/internal/infrastructure/config"
	"github.com/geoclick/clicktracker/internal/infrastructure/db/breaker"
	"github.com/geoclick/clicktracker/internal/infrastructure/db/memory"
	mongodb "github.com/geoclick/clicktracker/internal/infrastructure/db/mongo"
	redisdb "github.com/geoclick/clicktracker/internal/infrastructure/db/redis"
	"github.com/geoclick/clicktracker/pkg/logger"
)

const (
	shutdownTimeout        = 10 * time.Second
	sessionCleanupInterval = time.Minute
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		log := logger.Init(logger.Options{})
		log.Error().Err(err).Msg("clicktracker exited")
		os.Exit(1)
	}
}

// run wires the service and blocks until ctx is cancelled or the listener
// fails. Every opened resource is released before it returns.
func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "clicktracker",
	})

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("MongoDB disconnect failed")
		}
	}()

	userStore := mongodb.NewUserRepository(db)
	clickStore := mongodb.NewClickRepository(db)
	if err := mongodb.EnsureIndexes(ctx, userStore, clickStore); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	checks := map[string]handler.Check{
		"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	}

	// --- Sessions ---
	var sessionStore ports.SessionStore
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return fmt.Errorf("connect to Redis: %w", err)
		}
		defer rdb.Close()
		sessionStore = redisdb.NewSessionStore(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	default:
		mem := memory.NewSessionStore()
		mem.StartCleanup(ctx, sessionCleanupInterval)
		sessionStore = mem
	}

	breakerCfg := breaker.DefaultConfig()
	users := breaker.NewUserRepository(userStore, breakerCfg, log)
	clicks := breaker.NewClickRepository(clickStore, breakerCfg, log)
	sessions := breaker.NewSessionStore(sessionStore, breakerCfg, log)

	// --- Services ---
	hasher := service.NewBcryptHasher()
	userService := service.NewUserService(users, hasher, log)
	authService := service.NewAuthService(users, sessions, hasher, service.NewTokenSigner(cfg.SessionSecret()), cfg.Session.TTL, log)
	clickService := service.NewClickService(clicks, log)

	if err := bootstrapAdmin(ctx, log, userService, cfg.Admin); err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Auth:   authService,
		Users:  userService,
		Clicks: clickService,
		Health: checks,
		Log:    log,
	}, api.Options{
		CookieName:         cfg.Session.CookieName,
		CookieSecure:       cfg.Session.CookieSecure,
		RegistrationPolicy: cfg.RegistrationPolicy,
		StaticDir:          cfg.StaticDir,
		LoginRateLimit:     cfg.Login.RateLimit,
		LoginRateBurst:     cfg.Login.RateBurst,
		TrustProxy:         cfg.TrustProxy,
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("session_backend", cfg.Session.Backend).
			Str("registration", cfg.RegistrationPolicy).
			Bool("trust_proxy", cfg.TrustProxy).
			Msg("server listening")
		serveErr <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func bootstrapAdmin(ctx context.Context, log zerolog.Logger, users *service.UserService, admin config.AdminConfig) error {
	created, err := users.EnsureAdmin(ctx, admin.Username, admin.Password)
	if err != nil {
		return fmt.Errorf("bootstrap admin account: %w", err)
	}
	if created {
		log.Info().Str("username", admin.Username).Msg("admin account created")
	}
	if admin.Password == config.DefaultAdminPassword {
		log.Warn().Str("username", admin.Username).Msg("admin account uses the default password; set ADMIN_PASSWORD")
	}
	return nil
}
