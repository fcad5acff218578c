package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/identity-store/internal/api"
	"github.com/99minutos/identity-store/internal/core/ports"
	"github.com/99minutos/identity-store/internal/core/service"
	"github.com/99minutos/identity-store/internal/core/store"
	"github.com/99minutos/identity-store/internal/infrastructure/config"
	"github.com/99minutos/identity-store/internal/infrastructure/db"
	"github.com/99minutos/identity-store/internal/infrastructure/db/redis"
	"github.com/99minutos/identity-store/internal/infrastructure/queue"
	"github.com/99minutos/identity-store/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{Service: "identity-api"})
		log.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "identity-api",
	})

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("identity-api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	var (
		provider ports.CollectionProvider
		rdb      *goredis.Client
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := db.Open(gctx, cfg.Store)
		provider = p
		return err
	})
	if cfg.Redis.Addr != "" {
		g.Go(func() error {
			c, err := redis.Connect(gctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
			rdb = c
			return err
		})
	}
	if err := g.Wait(); err != nil {
		closeBackends(provider, rdb)
		return err
	}
	defer closeBackends(provider, rdb)

	users, err := store.NewUserStore(ctx, provider.Users())
	if err != nil {
		return err
	}
	roles, err := store.NewRoleStore(ctx, provider.Roles())
	if err != nil {
		return err
	}

	var throttle service.LoginThrottle
	if rdb != nil {
		throttle = redis.NewLoginThrottle(rdb, cfg.Login.MaxAttempts, cfg.Login.Lockout)
	}

	authService := service.NewAuthService(users, throttle, service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL,
	}, logger.Component("auth"))
	roleService := service.NewRoleService(roles, users, logger.Component("roles"))

	if err := roleService.EnsureRoles(ctx, cfg.SeedRoles...); err != nil {
		return err
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Membership.Workers, roleService, logger.Component("membership"))
	dispatcher.Start(workerCtx)

	e := api.NewRouter(api.Dependencies{
		Auth:       authService,
		Roles:      roleService,
		Membership: dispatcher,
		Store:      provider,
		Redis:      rdb,
		JWTSecret:  cfg.JWT.Secret,
		JWTIssuer:  cfg.JWT.Issuer,
		Log:        log,
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Store.Backend).Msg("identity-api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		stopWorkers()
		dispatcher.Wait()
		return err
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	stopWorkers()
	dispatcher.Wait()
	return nil
}

func closeBackends(provider ports.CollectionProvider, rdb *goredis.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log := logger.Get()
	if provider != nil {
		if err := provider.Close(ctx); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("close redis")
		}
	}
}
