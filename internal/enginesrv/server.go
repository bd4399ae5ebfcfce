package enginesrv

import (
	"fmt"
	"strings"
	"sync"

	"github.com/benbeisheim/enginechess-backend/internal/engine"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"
)

// Server owns at most one running Searcher. Searches are serialised; the
// engine process handles one position at a time.
type Server struct {
	factory  SearcherFactory
	mu       sync.Mutex
	searcher Searcher
	log      zerolog.Logger
}

func NewServer(factory SearcherFactory, log zerolog.Logger) *Server {
	return &Server{
		factory: factory,
		log:     log.With().Str("component", "engine-server").Logger(),
	}
}

// Initialize starts the engine if it is not running.
func (s *Server) Initialize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initializeLocked()
}

func (s *Server) initializeLocked() bool {
	if s.searcher != nil {
		return true
	}
	searcher, err := s.factory()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to start engine")
		return false
	}
	s.searcher = searcher
	s.log.Info().Msg("engine started")
	return true
}

func (s *Server) closeLocked() {
	if s.searcher == nil {
		return
	}
	if err := s.searcher.Close(); err != nil {
		s.log.Warn().Err(err).Msg("engine close failed")
	}
	s.searcher = nil
}

// Close stops the engine.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

// App builds the fiber app exposing the engine.
func (s *Server) App(allowOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Content-Type, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("chess engine service running, ready for moves")
	})
	app.Get("/health", s.health)
	app.Post("/make_move", s.makeMove)
	app.Post("/restart_engine", s.restartEngine)
	return app
}

func (s *Server) health(c *fiber.Ctx) error {
	s.mu.Lock()
	initialized := s.searcher != nil
	s.mu.Unlock()

	return c.JSON(engine.Health{Status: "healthy", EngineInitialized: initialized})
}

func (s *Server) makeMove(c *fiber.Ctx) error {
	var req engine.MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(engine.MoveReply{Error: "no JSON body received"})
	}
	fen := strings.TrimSpace(req.FEN)
	if fen == "" {
		return c.Status(fiber.StatusBadRequest).JSON(engine.MoveReply{Error: "FEN not provided"})
	}

	fenOpt, err := chess.FEN(fen)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(engine.MoveReply{Error: fmt.Sprintf("invalid FEN: %v", err)})
	}
	game := chess.NewGame(fenOpt)

	if len(game.ValidMoves()) == 0 {
		return c.JSON(engine.MoveReply{Status: terminalStatus(game)})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initializeLocked() {
		return c.Status(fiber.StatusInternalServerError).JSON(engine.MoveReply{Error: "could not initialize engine"})
	}

	s.log.Debug().Str("fen", fen).Msg("searching")
	move, err := s.searcher.BestMove(game)
	if err != nil {
		// The process may have died; restart it once and retry.
		s.log.Warn().Err(err).Msg("search failed, restarting engine")
		s.closeLocked()
		if !s.initializeLocked() {
			return c.Status(fiber.StatusInternalServerError).JSON(engine.MoveReply{Error: "error restarting engine"})
		}
		move, err = s.searcher.BestMove(game)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(engine.MoveReply{Error: fmt.Sprintf("engine error: %v", err)})
		}
	}

	reply := engine.MoveReply{BestMove: uciNotation(move)}
	if err := game.Move(move); err == nil {
		reply.FENAfterMove = game.Position().String()
	}
	s.log.Info().Str("best_move", reply.BestMove).Msg("best move calculated")
	return c.JSON(reply)
}

func (s *Server) restartEngine(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeLocked()
	ok := s.initializeLocked()
	return c.JSON(engine.RestartReply{Success: ok, Message: "engine restarted"})
}

// terminalStatus describes a position without legal moves.
func terminalStatus(game *chess.Game) string {
	switch game.Position().Status() {
	case chess.Checkmate:
		winner := "black"
		if game.Position().Turn() == chess.Black {
			winner = "white"
		}
		return "checkmate, " + winner + " wins"
	case chess.Stalemate:
		return "stalemate"
	}
	return "game over"
}

// uciNotation renders a move as <from><to> plus an optional promotion
// letter.
func uciNotation(m *chess.Move) string {
	s := m.S1().String() + m.S2().String()
	if p := m.Promo(); p != chess.NoPieceType {
		s += p.String()
	}
	return s
}
