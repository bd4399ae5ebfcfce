package controller

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/enginechess-backend/internal/middleware"
	"github.com/benbeisheim/enginechess-backend/internal/model"
	"github.com/benbeisheim/enginechess-backend/internal/service"
	"github.com/benbeisheim/enginechess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

type WebSocketController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewWebSocketController(gameService *service.GameService, log zerolog.Logger) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		log:         log.With().Str("component", "websocket").Logger(),
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	clientID, _ := c.Locals(middleware.ClientIDKey).(string)
	log := wsc.log.With().Str("game", gameID).Str("client", clientID).Logger()

	// Register this connection with the game
	if err := wsc.gameService.RegisterConnection(gameID, clientID, c); err != nil {
		log.Warn().Err(err).Msg("failed to register connection")
		wsc.gameService.SendError(gameID, c, err)
		c.Close()
		return
	}

	// Start message handling loop
	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("read error")
			break
		}

		if messageType != websocket.TextMessage {
			continue
		}
		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Debug().Err(err).Msg("parse error")
			wsc.gameService.SendError(gameID, c, fmt.Errorf("malformed message: %w", err))
			continue
		}

		if err := wsc.handleMessage(gameID, msg); err != nil {
			log.Debug().Err(err).Str("type", string(msg.Type)).Msg("handle error")
			wsc.gameService.SendError(gameID, c, err)
		}
	}

	// Clean up when connection closes
	wsc.gameService.UnregisterConnection(gameID, clientID, c)
}

// handleMessage runs one client command. Successful commands answer through
// the game's state broadcast.
func (wsc *WebSocketController) handleMessage(gameID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeSelect:
		var payload ws.SelectPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}
		_, err := wsc.gameService.SelectSquare(gameID, payload.Square)
		return err

	case ws.MessageTypeMove:
		var req model.MoveRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		_, err := wsc.gameService.HandleMove(gameID, req)
		return err

	case ws.MessageTypeEngineMove:
		_, err := wsc.gameService.RequestEngineMove(gameID)
		return err

	case ws.MessageTypeReset:
		_, err := wsc.gameService.ResetGame(gameID)
		return err

	case ws.MessageTypeFlip:
		return wsc.gameService.FlipBoard(gameID)

	case ws.MessageTypeUndo:
		return wsc.gameService.UndoMove(gameID)

	case ws.MessageTypeResign:
		_, err := wsc.gameService.Resign(gameID)
		return err

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}
