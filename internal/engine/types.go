// Package engine talks to the engine collaborator: a small HTTP service that
// wraps a UCI engine and answers best-move queries for a FEN.
package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Health is the body of GET /health.
type Health struct {
	Status            string `json:"status,omitempty"`
	EngineInitialized bool   `json:"engine_initialized"`
}

// MoveRequest is the body of POST /make_move.
type MoveRequest struct {
	FEN string `json:"fen"`
}

// MoveReply is the body of a /make_move response. A reply without BestMove
// but with Status is a terminal position; Error marks a failure.
type MoveReply struct {
	BestMove     string `json:"best_move,omitempty"`
	Status       string `json:"status,omitempty"`
	Error        string `json:"error,omitempty"`
	FENAfterMove string `json:"fen_after_move,omitempty"`
}

// RestartReply is the body of a /restart_engine response.
type RestartReply struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

var ErrEngineUnreachable = errors.New("engine unreachable")

// EngineError is a failure reported by the collaborator, either as a non-2xx
// status or as an error field in the body.
type EngineError struct {
	StatusCode int
	Message    string
}

func (e *EngineError) Error() string {
	if e.StatusCode != 0 && e.StatusCode/100 != 2 {
		return fmt.Sprintf("engine error (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("engine error: %s", e.Message)
}

var engineNames = []string{"engine", "motor", "stockfish", "cfish"}

// NeedsRestart reports whether err looks like the engine process itself is
// at fault, in which case a restart is worth requesting.
func NeedsRestart(err error) bool {
	if err == nil {
		return false
	}
	var engErr *EngineError
	if !errors.As(err, &engErr) {
		return false
	}
	msg := strings.ToLower(engErr.Message)
	for _, name := range engineNames {
		if strings.Contains(msg, name) {
			return true
		}
	}
	return false
}
