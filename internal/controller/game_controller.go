package controller

import (
	"errors"

	"github.com/benbeisheim/enginechess-backend/internal/engine"
	"github.com/benbeisheim/enginechess-backend/internal/model"
	"github.com/benbeisheim/enginechess-backend/internal/pgn"
	"github.com/benbeisheim/enginechess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// Register mounts the game routes on router.
func (gc *GameController) Register(router fiber.Router) {
	router.Post("/create", gc.CreateGame)
	router.Get("/list", gc.ListGames)
	router.Post("/fen/validate", gc.ValidateFEN)
	router.Get("/:gameId", gc.GetGameState)
	router.Delete("/:gameId", gc.DeleteGame)
	router.Post("/:gameId/select", gc.SelectSquare)
	router.Post("/:gameId/move", gc.MakeMove)
	router.Post("/:gameId/engine", gc.EngineMove)
	router.Post("/:gameId/reset", gc.ResetGame)
	router.Post("/:gameId/flip", gc.FlipBoard)
	router.Post("/:gameId/undo", gc.UndoMove)
	router.Post("/:gameId/resign", gc.Resign)
	router.Get("/:gameId/pgn", gc.ExportPGN)
	router.Get("/:gameId/fen", gc.GameFEN)
}

// errorStatus maps service errors to HTTP statuses.
func errorStatus(err error) int {
	var engErr *engine.EngineError
	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrNotImplemented):
		return fiber.StatusNotImplemented
	case errors.Is(err, model.ErrEngineBusy),
		errors.Is(err, model.ErrGameOver):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrInvalidFEN),
		errors.Is(err, pgn.ErrReplay):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, model.ErrMalformedNotation),
		errors.Is(err, model.ErrOffBoard),
		errors.Is(err, model.ErrNoPieceAtSource),
		errors.Is(err, model.ErrIllegalMove),
		errors.Is(err, model.ErrNotYourTurn):
		return fiber.StatusBadRequest
	case errors.Is(err, engine.ErrEngineUnreachable):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &engErr):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func writeError(c *fiber.Ctx, err error, state *model.GameView) error {
	body := fiber.Map{"error": err.Error()}
	if state != nil && state.ID != "" {
		body["state"] = state
	}
	return c.Status(errorStatus(err)).JSON(body)
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var body struct {
		HumanColor string `json:"humanColor"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	gameID, err := gc.gameService.CreateGame(body.HumanColor)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) ListGames(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"games": gc.gameService.ListGames(),
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(gameState)
}

func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	if err := gc.gameService.DeleteGame(c.Params("gameId")); err != nil {
		return writeError(c, err, nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (gc *GameController) SelectSquare(c *fiber.Ctx) error {
	var body struct {
		Square string `json:"square"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	gameState, err := gc.gameService.SelectSquare(c.Params("gameId"), body.Square)
	if err != nil {
		return writeError(c, err, &gameState)
	}
	return c.JSON(gameState)
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var req model.MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	gameState, err := gc.gameService.HandleMove(c.Params("gameId"), req)
	if err != nil {
		return writeError(c, err, &gameState)
	}
	return c.JSON(gameState)
}

func (gc *GameController) EngineMove(c *fiber.Ctx) error {
	gameState, err := gc.gameService.RequestEngineMove(c.Params("gameId"))
	if err != nil {
		return writeError(c, err, &gameState)
	}
	return c.JSON(gameState)
}

func (gc *GameController) ResetGame(c *fiber.Ctx) error {
	gameState, err := gc.gameService.ResetGame(c.Params("gameId"))
	if err != nil {
		return writeError(c, err, &gameState)
	}
	return c.JSON(gameState)
}

func (gc *GameController) FlipBoard(c *fiber.Ctx) error {
	return writeError(c, gc.gameService.FlipBoard(c.Params("gameId")), nil)
}

func (gc *GameController) UndoMove(c *fiber.Ctx) error {
	return writeError(c, gc.gameService.UndoMove(c.Params("gameId")), nil)
}

func (gc *GameController) Resign(c *fiber.Ctx) error {
	gameState, err := gc.gameService.Resign(c.Params("gameId"))
	if err != nil {
		return writeError(c, err, &gameState)
	}
	return c.JSON(gameState)
}

// ExportPGN serves the game as a PGN document.
func (gc *GameController) ExportPGN(c *fiber.Ctx) error {
	doc, err := gc.gameService.ExportPGN(c.Params("gameId"))
	if err != nil {
		return writeError(c, err, nil)
	}
	c.Set(fiber.HeaderContentType, "application/x-chess-pgn")
	return c.SendString(doc)
}

func (gc *GameController) GameFEN(c *fiber.Ctx) error {
	report, err := gc.gameService.ValidateGameFEN(c.Params("gameId"))
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(report)
}

// ValidateFEN checks a FEN supplied by the client.
func (gc *GameController) ValidateFEN(c *fiber.Ctx) error {
	var body struct {
		FEN string `json:"fen"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(service.CheckFEN(body.FEN))
}

func (gc *GameController) ArchivedGame(c *fiber.Ctx) error {
	rec, err := gc.gameService.ArchivedGame(c.Params("gameId"))
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(rec)
}

func (gc *GameController) EngineStatus(c *fiber.Ctx) error {
	return c.JSON(gc.gameService.EngineStatus())
}
