// Command api serves the work items HTTP API.
//
// @title                       Work Items API
// @version                     1.0
// @description                 Task tracker backend: accounts, session tokens and work items.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/portfolio/workitems-api/internal/api"
	"github.com/portfolio/workitems-api/internal/api/handler"
	"github.com/portfolio/workitems-api/internal/core/ports"
	"github.com/portfolio/workitems-api/internal/core/service"
	redisstore "github.com/portfolio/workitems-api/internal/infrastructure/db/redis"
	"github.com/portfolio/workitems-api/internal/infrastructure/store"
	"github.com/portfolio/workitems-api/internal/pkg/config"
	"github.com/portfolio/workitems-api/internal/pkg/validation"
	"github.com/portfolio/workitems-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(ctx)

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "workitems-api",
	})

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("store close")
		}
	}()

	checks := map[string]handler.Check{st.Driver: st.Ping}

	var idempotency ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
		}
		defer rdb.Close()

		idempotency = redisstore.NewIdempotencyStore(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotency keys enabled")
	}

	tokens, err := service.NewTokenManager(service.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid token configuration")
	}

	validate := validation.New()
	authService := service.NewAuthService(st.Users, tokens, validate, log.With().Str("component", "auth").Logger())
	workItemService := service.NewWorkItemService(st.WorkItems, idempotency, cfg.Redis.IdempotencyTTL, validate, log.With().Str("component", "work_items").Logger())

	e := api.NewRouter(api.Deps{
		Config:          cfg,
		Logger:          log,
		AuthService:     authService,
		WorkItemService: workItemService,
		Tokens:          tokens,
		Validator:       validate,
		Checks:          checks,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Dur("timeout", cfg.HTTP.ShutdownTimeout).Msg("graceful shutdown failed")
	}
}
