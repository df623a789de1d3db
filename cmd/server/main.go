package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/attendly/go-workforce-server/auth"
	"github.com/attendly/go-workforce-server/cache"
	"github.com/attendly/go-workforce-server/internal/config"
	"github.com/attendly/go-workforce-server/server"
	"github.com/attendly/go-workforce-server/sessions"
	"github.com/attendly/go-workforce-server/storage/postgres"
	"github.com/attendly/go-workforce-server/tenant"
	"github.com/attendly/go-workforce-server/token"
	"github.com/common-nighthawk/go-figure"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.New()
	logger := newLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
	logger.Info().Msg("server stopped")
}

func run(cfg config.Config, logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(cfg.GetAppName())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return errors.Wrap(err, "[run] connect postgres")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return errors.Wrap(err, "[run] ping postgres")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.GetRedisPassword(),
		DB:       cfg.GetRedisDB(),
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "[run] ping redis")
	}

	srv, err := buildServer(cfg, logger, pool, redisClient)
	if err != nil {
		return errors.Wrap(err, "[run] build server")
	}

	httpServer := &http.Server{Addr: cfg.GetPort(), Handler: srv.Handler()}
	go listenAndServe(httpServer, logger)
	waitForStopSignal()
	return shutdown(httpServer)
}

func buildServer(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool, redisClient *redis.Client) (*server.Server, error) {
	store := cache.NewRedisStore(redisClient)
	userRepo := postgres.NewUserRepo(pool)
	companyRepo := postgres.NewCompanyRepo(pool)

	issuer, err := token.New(cfg.GetJWTSecret(),
		token.WithAccessExpiry(cfg.GetAccessTokenExpiry()),
		token.WithRefreshSecret(cfg.GetJWTRefreshSecret()),
		token.WithIssuerName(cfg.GetBaseURL()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[buildServer] token issuer")
	}

	sessionStore := sessions.NewStore(store, cfg.GetSessionTTL())
	userCache := cache.NewUserCache(store, cfg.GetUserCacheTTL())

	authService, err := auth.NewService(
		auth.Repos{Users: userRepo, Companies: companyRepo},
		issuer,
		sessionStore,
		userCache,
		auth.WithBcryptCost(cfg.GetBcryptCost()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[buildServer] auth service")
	}

	resolver, err := tenant.NewResolver(companyRepo)
	if err != nil {
		return nil, errors.Wrap(err, "[buildServer] tenant resolver")
	}

	return server.New(cfg, logger, server.Deps{
		Auth:     authService,
		Tokens:   issuer,
		Resolver: resolver,
		Cache:    store,
	})
}

func newLogger(cfg config.Config) zerolog.Logger {
	if cfg.GetEnv() == "DEV" {
		return log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func listenAndServe(httpServer *http.Server, logger zerolog.Logger) {
	logger.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "[shutdown] server.Shutdown")
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
