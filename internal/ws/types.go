package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	// client -> server
	MessageTypeSelect     MessageType = "select"
	MessageTypeMove       MessageType = "move"
	MessageTypeEngineMove MessageType = "engineMove"
	MessageTypeReset      MessageType = "reset"
	MessageTypeFlip       MessageType = "flip"
	MessageTypeUndo       MessageType = "undo"
	MessageTypeResign     MessageType = "resign"

	// server -> client
	MessageTypeGameState    MessageType = "gameState"
	MessageTypeEngineStatus MessageType = "engineStatus"
	MessageTypeError        MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SelectPayload names the square a client clicked.
type SelectPayload struct {
	Square string `json:"square"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage marshals payload into a message of the given type.
func NewMessage(t MessageType, payload interface{}) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}
