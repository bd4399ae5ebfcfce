package service

import (
	"errors"
	"fmt"

	"github.com/benbeisheim/enginechess-backend/internal/engine"
	"github.com/benbeisheim/enginechess-backend/internal/model"
	"github.com/benbeisheim/enginechess-backend/internal/pgn"
	"github.com/benbeisheim/enginechess-backend/internal/storage"
	"github.com/benbeisheim/enginechess-backend/internal/ws"
	"github.com/rs/zerolog"
)

// EngineClient is the engine collaborator as seen by the service.
type EngineClient interface {
	HealthChecker
	BestMove(fen string) (engine.MoveReply, error)
	Restart() error
}

type GameService struct {
	gameManager *GameManager
	engine      EngineClient
	monitor     *HealthMonitor
	humanColor  model.Color
	log         zerolog.Logger
}

func NewGameService(gameManager *GameManager, engineClient EngineClient, monitor *HealthMonitor, humanColor model.Color, log zerolog.Logger) *GameService {
	gs := &GameService{
		gameManager: gameManager,
		engine:      engineClient,
		monitor:     monitor,
		humanColor:  humanColor,
		log:         log.With().Str("component", "game-service").Logger(),
	}
	monitor.OnChange(gs.broadcastConnectivity)
	return gs
}

func (gs *GameService) CreateGame(humanColor string) (string, error) {
	color := gs.humanColor
	switch model.Color(humanColor) {
	case model.White, model.Black:
		color = model.Color(humanColor)
	case "":
	default:
		return "", fmt.Errorf("unknown color %q", humanColor)
	}
	return gs.gameManager.CreateGame(color).ID, nil
}

// DeleteGame removes a game. A game waiting on the engine is refused; the
// busy check and the retirement happen under the game's own lock.
func (gs *GameService) DeleteGame(gameID string) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.Close(); err != nil {
		return err
	}
	return gs.gameManager.RemoveGame(gameID)
}

// Resign ends the game as a loss for the human.
func (gs *GameService) Resign(gameID string) (model.GameView, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameView{}, err
	}
	if _, err := game.Resign(); err != nil {
		return game.GetState(), err
	}
	gs.gameManager.Save(game)
	return game.GetState(), nil
}

// ExportPGN renders the game as PGN.
func (gs *GameService) ExportPGN(gameID string) (string, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return "", err
	}
	moves, result := game.Transcript()
	header := pgn.Header{
		Event:  "Game against the engine",
		Site:   "enginechess",
		Date:   game.CreatedAt,
		White:  "Engine",
		Black:  "Engine",
		Result: result,
	}
	if game.HumanColor() == model.Black {
		header.Black = "Human"
	} else {
		header.White = "Human"
	}
	return pgn.Export(header, moves)
}

// HasGame reports whether a live game with this ID exists.
func (gs *GameService) HasGame(gameID string) bool {
	_, err := gs.gameManager.GetGame(gameID)
	return err == nil
}

func (gs *GameService) ListGames() []model.Summary {
	return gs.gameManager.ListGames()
}

func (gs *GameService) GetGameState(gameID string) (model.GameView, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameView{}, err
	}
	return game.GetState(), nil
}

// SelectSquare selects the square named like "e2" and returns the updated
// view with its candidate destinations.
func (gs *GameService) SelectSquare(gameID string, square string) (model.GameView, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameView{}, err
	}
	p, err := model.ParseSquare(square)
	if err != nil {
		return game.GetState(), err
	}
	if _, err := game.Select(p); err != nil {
		return game.GetState(), err
	}
	return game.GetState(), nil
}

func (gs *GameService) HandleMove(gameID string, req model.MoveRequest) (model.GameView, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameView{}, err
	}
	move, err := req.Resolve()
	if err != nil {
		return game.GetState(), err
	}
	if _, err := game.MakeMove(move); err != nil {
		return game.GetState(), err
	}
	gs.gameManager.Save(game)
	return game.GetState(), nil
}

// RequestEngineMove sends the current FEN to the engine and applies its
// reply. The game is busy for the whole exchange; a failing exchange leaves
// the position unchanged and records the reason as the game's status.
func (gs *GameService) RequestEngineMove(gameID string) (model.GameView, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameView{}, err
	}
	fen, release, err := game.BeginEngineRequest()
	if err != nil {
		return game.GetState(), err
	}

	err = func() error {
		defer release()
		return gs.playEngineReply(game, fen)
	}()
	gs.monitor.CheckNow()

	if err == nil {
		gs.gameManager.Save(game)
	}
	return game.GetState(), err
}

func (gs *GameService) playEngineReply(game *model.Game, fen string) error {
	if ok, diag := model.IsValidFEN(fen); !ok {
		game.SetStatus("position not sent to engine: " + diag.Error())
		gs.log.Error().Str("game", game.ID).Str("fen", fen).Str("problem", string(diag.Kind)).Msg("refusing to send invalid FEN")
		return diag
	}

	reply, err := gs.engine.BestMove(fen)
	if err != nil {
		game.SetStatus("Error: " + err.Error())
		gs.log.Warn().Err(err).Str("game", game.ID).Msg("engine request failed")
		if engine.NeedsRestart(err) {
			go gs.restartEngine()
		}
		return fmt.Errorf("engine move: %w", err)
	}

	if reply.BestMove == "" {
		status := reply.Status
		if status == "" {
			status = "engine returned no move"
		}
		game.SetStatus(status)
		return nil
	}

	if _, err := game.ApplyEngineMove(reply.BestMove); err != nil {
		game.SetStatus(fmt.Sprintf("Error: engine move %q rejected: %v", reply.BestMove, err))
		return fmt.Errorf("engine move %q: %w", reply.BestMove, err)
	}
	return nil
}

func (gs *GameService) restartEngine() {
	gs.log.Info().Msg("requesting engine restart")
	if err := gs.engine.Restart(); err != nil {
		gs.log.Error().Err(err).Msg("engine restart failed")
		return
	}
	gs.monitor.CheckNow()
}

func (gs *GameService) ResetGame(gameID string) (model.GameView, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameView{}, err
	}
	if err := game.Reset(); err != nil {
		return game.GetState(), err
	}
	gs.gameManager.Save(game)
	return game.GetState(), nil
}

func (gs *GameService) FlipBoard(gameID string) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Flip()
}

func (gs *GameService) UndoMove(gameID string) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Undo()
}

// FENReport is the outcome of validating a game's current FEN.
type FENReport struct {
	FEN        string               `json:"fen"`
	Valid      bool                 `json:"valid"`
	Diagnostic *model.FENDiagnostic `json:"diagnostic,omitempty"`
}

func (gs *GameService) ValidateGameFEN(gameID string) (FENReport, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return FENReport{}, err
	}
	return CheckFEN(game.FEN()), nil
}

// CheckFEN validates an arbitrary FEN string.
func CheckFEN(fen string) FENReport {
	ok, diag := model.IsValidFEN(fen)
	return FENReport{FEN: fen, Valid: ok, Diagnostic: diag}
}

func (gs *GameService) ArchivedGame(gameID string) (storage.GameRecord, error) {
	rec, err := gs.gameManager.Archived(gameID)
	if errors.Is(err, storage.ErrNotFound) {
		return rec, model.ErrGameNotFound
	}
	return rec, err
}

func (gs *GameService) EngineStatus() Connectivity {
	return gs.monitor.Status()
}

func (gs *GameService) RegisterConnection(gameID string, clientID string, conn model.Conn) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.RegisterConnection(clientID, conn); err != nil {
		return err
	}
	if msg, err := ws.NewMessage(ws.MessageTypeEngineStatus, gs.monitor.Status()); err == nil {
		_ = game.Send(conn, msg)
	}
	return nil
}

func (gs *GameService) UnregisterConnection(gameID string, clientID string, conn model.Conn) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(clientID, conn)
}

// SendError writes an error message to a single client of a game.
func (gs *GameService) SendError(gameID string, conn model.Conn, cause error) {
	msg, err := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: cause.Error()})
	if err != nil {
		return
	}
	if game, err := gs.gameManager.GetGame(gameID); err == nil {
		_ = game.Send(conn, msg)
		return
	}
	_ = conn.WriteJSON(msg)
}

func (gs *GameService) broadcastConnectivity(status Connectivity) {
	msg, err := ws.NewMessage(ws.MessageTypeEngineStatus, status)
	if err != nil {
		gs.log.Error().Err(err).Msg("failed to marshal engine status")
		return
	}
	gs.gameManager.Each(func(game *model.Game) {
		if game.ConnectionCount() > 0 {
			game.Publish(msg)
		}
	})
}
