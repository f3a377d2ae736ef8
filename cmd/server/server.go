package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"persona-chat/internal/config"
	"persona-chat/internal/infrastructure"
	"persona-chat/internal/infrastructure/crontab"
	"persona-chat/internal/infrastructure/logger"
	"persona-chat/internal/infrastructure/observability"
	"persona-chat/internal/infrastructure/titlequeue"
	"persona-chat/internal/interfaces/httpserver"
)

type Application struct {
	httpServer *httpserver.HTTPServer
	crontab    *crontab.Crontab
	titlePool  *titlequeue.Pool
	infra      *infrastructure.Infrastructure
}

// @title Persona Chat API
// @version 1.0
// @description Streaming chat with AI characters, conversation history and a daily message quota.
// @contact.name Persona Chat Team
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func (application *Application) Start(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	application.titlePool.Start(ctx)
	defer application.titlePool.Stop()
	defer application.infra.Validator.Close()

	eg.Go(func() error {
		return application.crontab.Run(ctx)
	})
	eg.Go(func() error {
		return application.httpServer.Run(ctx)
	})

	return eg.Wait()
}

func main() {
	config.LoadEnvFiles()
	log := logger.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	configured, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("configure logger")
	}
	log = configured

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("initialize observability")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown telemetry")
			}
		}()
	}

	application, err := CreateApplication()
	if err != nil {
		log.Fatal().Err(err).Msg("create application")
	}

	log.Info().Str("version", config.Version).Int("port", cfg.HTTPPort).Msg("starting persona-chat")
	if err := application.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		stop()
		os.Exit(1)
	}
	log.Info().Msg("application stopped")
}
