package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbeisheim/enginechess-backend/internal/config"
	"github.com/benbeisheim/enginechess-backend/internal/enginesrv"
	"github.com/benbeisheim/enginechess-backend/internal/logging"
)

func main() {
	cfg, err := config.LoadEngine(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	log := logging.New(cfg.LogLevel, cfg.PrettyLogs)

	srv := enginesrv.NewServer(enginesrv.UCIFactory(cfg.EnginePath, cfg.MoveTime, cfg.SkillLevel), log)
	if !srv.Initialize() {
		log.Error().Str("engine", cfg.EnginePath).Msg("engine not started, check the path; will retry on first request")
	}
	defer srv.Close()

	app := srv.App(cfg.AllowOrigins)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down engine service")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.Addr).Str("engine", cfg.EnginePath).Msg("engine service listening")
	if err := app.Listen(cfg.Addr); err != nil {
		log.Error().Err(err).Msg("listen failed")
	}
}
