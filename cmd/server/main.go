package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbeisheim/enginechess-backend/internal/config"
	"github.com/benbeisheim/enginechess-backend/internal/controller"
	"github.com/benbeisheim/enginechess-backend/internal/engine"
	"github.com/benbeisheim/enginechess-backend/internal/logging"
	"github.com/benbeisheim/enginechess-backend/internal/middleware"
	"github.com/benbeisheim/enginechess-backend/internal/model"
	"github.com/benbeisheim/enginechess-backend/internal/service"
	"github.com/benbeisheim/enginechess-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.LoadServer(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	log := logging.New(cfg.LogLevel, cfg.PrettyLogs)

	archive, err := storage.Open(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("failed to open game archive")
	}
	defer archive.Close()

	// Initialize services
	gameManager := service.NewGameManager(archive, log)
	if n, err := gameManager.Restore(); err != nil {
		log.Warn().Err(err).Msg("failed to restore archived games")
	} else if n > 0 {
		log.Info().Int("games", n).Msg("restored archived games")
	}
	engineClient := engine.NewClient(cfg.EngineURL, log)
	monitor := service.NewHealthMonitor(engineClient, cfg.HealthInterval, log)
	gameService := service.NewGameService(gameManager, engineClient, monitor, model.Color(cfg.HumanColor), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go monitor.Run(ctx)

	app := newApp(cfg, gameService, log)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.Addr).Str("engine", cfg.EngineURL).Msg("board service listening")
	if err := app.Listen(cfg.Addr); err != nil {
		log.Error().Err(err).Msg("listen failed")
	}
}

func newApp(cfg config.Server, gameService *service.GameService, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Client-ID",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	app.Use(middleware.RequestLogger(log))

	// Initialize controllers
	gameController := controller.NewGameController(gameService)
	wsController := controller.NewWebSocketController(gameService, log)

	// Set up WebSocket routes
	app.Use("/ws", middleware.EnsureClientID())
	app.Get("/ws/game/:gameId", middleware.WebSocketUpgrade(gameService.HasGame), websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}))

	// Set up REST routes
	api := app.Group("/api")
	api.Get("/status", gameController.EngineStatus)
	api.Get("/archive/:gameId", gameController.ArchivedGame)
	gameController.Register(api.Group("/game"))

	return app
}
