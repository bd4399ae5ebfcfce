package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const defaultHealthTimeout = 5 * time.Second

// Client calls the engine collaborator over HTTP.
type Client struct {
	baseURL       string
	http          *fiber.Client
	healthTimeout time.Duration
	log           zerolog.Logger
}

func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          &fiber.Client{},
		healthTimeout: defaultHealthTimeout,
		log:           log.With().Str("component", "engine-client").Logger(),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health probes GET /health. Any transport failure or non-2xx status is
// ErrEngineUnreachable.
func (c *Client) Health() (Health, error) {
	var health Health
	code, body, errs := c.http.Get(c.baseURL + "/health").Timeout(c.healthTimeout).Bytes()
	if len(errs) > 0 {
		return health, fmt.Errorf("%w: %v", ErrEngineUnreachable, errors.Join(errs...))
	}
	if code/100 != 2 {
		return health, fmt.Errorf("%w: health returned HTTP %d", ErrEngineUnreachable, code)
	}
	if err := json.Unmarshal(body, &health); err != nil {
		return health, fmt.Errorf("%w: decode health: %v", ErrEngineUnreachable, err)
	}
	return health, nil
}

// BestMove posts fen to /make_move. No timeout is applied; the engine decides
// how long it thinks.
func (c *Client) BestMove(fen string) (MoveReply, error) {
	var reply MoveReply
	c.log.Debug().Str("fen", fen).Msg("requesting best move")

	code, body, errs := c.http.Post(c.baseURL + "/make_move").JSON(MoveRequest{FEN: fen}).Bytes()
	if len(errs) > 0 {
		return reply, fmt.Errorf("%w: %v", ErrEngineUnreachable, errors.Join(errs...))
	}

	decodeErr := json.Unmarshal(body, &reply)
	if code/100 != 2 {
		msg := reply.Error
		if decodeErr != nil || msg == "" {
			msg = fmt.Sprintf("HTTP error: %d", code)
		}
		return reply, &EngineError{StatusCode: code, Message: msg}
	}
	if decodeErr != nil {
		return reply, &EngineError{StatusCode: code, Message: fmt.Sprintf("malformed reply: %v", decodeErr)}
	}
	if reply.Error != "" {
		return reply, &EngineError{StatusCode: code, Message: reply.Error}
	}
	c.log.Debug().Str("best_move", reply.BestMove).Str("status", reply.Status).Msg("engine replied")
	return reply, nil
}

// Restart asks the collaborator to restart its engine process.
func (c *Client) Restart() error {
	code, body, errs := c.http.Post(c.baseURL + "/restart_engine").Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrEngineUnreachable, errors.Join(errs...))
	}
	var reply RestartReply
	_ = json.Unmarshal(body, &reply)
	if code/100 != 2 {
		return &EngineError{StatusCode: code, Message: reply.Error}
	}
	if !reply.Success && reply.Error != "" {
		return &EngineError{StatusCode: code, Message: reply.Error}
	}
	return nil
}
