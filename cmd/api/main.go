package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinfolio-backend/internal/application/portfolio"
	"coinfolio-backend/internal/config"
	"coinfolio-backend/internal/interfaces/router"
	"coinfolio-backend/internal/pkg/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	logger.Setup(cfg.LogLevel, cfg.Env)

	app, deps, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}
	defer deps.Close()
	log.Info().Bool("redis", deps.Redis != nil).Str("price_source", cfg.PriceSource).Msg("dependencies ready")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sched *portfolio.Scheduler
	if cfg.RevalueInterval > 0 {
		sched = portfolio.NewScheduler(deps.Revaluer, cfg.RevalueInterval, cfg.RevalueOnStart)
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("scheduler start")
		}
	} else {
		log.Info().Msg("in-process revaluation disabled")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msgf("Server running at http://localhost:%s", cfg.Port)
		log.Info().Msgf("Health check: http://localhost:%s/health/json", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("server stopped")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
	case <-ctx.Done():
	}

	if sched != nil {
		sched.Stop()
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
