package enginesrv

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/benbeisheim/enginechess-backend/internal/engine"
	"github.com/gofiber/fiber/v2"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"
)

// firstMoveSearcher plays the first legal move, failing the first failures
// searches.
type firstMoveSearcher struct {
	failures int
	closed   bool
}

func (s *firstMoveSearcher) BestMove(game *chess.Game) (*chess.Move, error) {
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("engine pipe closed")
	}
	moves := game.ValidMoves()
	if len(moves) == 0 {
		return nil, ErrNoBestMove
	}
	return moves[0], nil
}

func (s *firstMoveSearcher) Close() error {
	s.closed = true
	return nil
}

type countingFactory struct {
	mu       sync.Mutex
	started  []*firstMoveSearcher
	failures int
	broken   bool
}

func (f *countingFactory) factory() SearcherFactory {
	return func() (Searcher, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.broken {
			return nil, errors.New("executable not found")
		}
		s := &firstMoveSearcher{failures: f.failures}
		f.failures = 0
		f.started = append(f.started, s)
		return s, nil
	}
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, engine.MoveReply, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	var reply engine.MoveReply
	_ = json.Unmarshal(data, &reply)
	return resp.StatusCode, reply, data
}

func TestHealthReportsEngineState(t *testing.T) {
	f := &countingFactory{}
	srv := NewServer(f.factory(), zerolog.Nop())
	app := srv.App("*")

	_, _, data := call(t, app, http.MethodGet, "/health", "")
	if !strings.Contains(string(data), `"engine_initialized":false`) {
		t.Fatalf("expected uninitialized engine, got %s", data)
	}
	if !srv.Initialize() {
		t.Fatalf("Initialize failed")
	}
	_, _, data = call(t, app, http.MethodGet, "/health", "")
	if !strings.Contains(string(data), `"engine_initialized":true`) {
		t.Fatalf("expected initialized engine, got %s", data)
	}
}

func TestMakeMove(t *testing.T) {
	f := &countingFactory{}
	app := NewServer(f.factory(), zerolog.Nop()).App("*")

	code, reply, data := call(t, app, http.MethodPost, "/make_move", `{"fen":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, data)
	}
	if len(reply.BestMove) != 4 || reply.FENAfterMove == "" || reply.Error != "" {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if len(f.started) != 1 {
		t.Fatalf("engine should start lazily once, started %d", len(f.started))
	}
}

func TestMakeMoveRejectsBadInput(t *testing.T) {
	app := NewServer((&countingFactory{}).factory(), zerolog.Nop()).App("*")

	cases := []struct {
		name string
		body string
		want string
	}{
		{"NoBody", "", "no JSON body received"},
		{"EmptyFEN", `{"fen":"  "}`, "FEN not provided"},
		{"InvalidFEN", `{"fen":"not a fen"}`, "invalid FEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, reply, data := call(t, app, http.MethodPost, "/make_move", tc.body)
			if code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", code, data)
			}
			if !strings.HasPrefix(reply.Error, tc.want) {
				t.Fatalf("expected error %q, got %q", tc.want, reply.Error)
			}
		})
	}
}

func TestMakeMoveTerminalPositions(t *testing.T) {
	app := NewServer((&countingFactory{}).factory(), zerolog.Nop()).App("*")

	cases := []struct {
		name string
		fen  string
		want string
	}{
		// Fool's mate.
		{"Checkmate", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", "checkmate, black wins"},
		{"Stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", "stalemate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, reply, data := call(t, app, http.MethodPost, "/make_move", `{"fen":"`+tc.fen+`"}`)
			if code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", code, data)
			}
			if reply.BestMove != "" || reply.Status != tc.want {
				t.Fatalf("unexpected reply %+v", reply)
			}
		})
	}
}

func TestMakeMoveRestartsFailedEngine(t *testing.T) {
	f := &countingFactory{failures: 1}
	app := NewServer(f.factory(), zerolog.Nop()).App("*")

	code, reply, data := call(t, app, http.MethodPost, "/make_move", `{"fen":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"}`)
	if code != http.StatusOK || reply.BestMove == "" {
		t.Fatalf("expected a move after restart, got %d: %s", code, data)
	}
	if len(f.started) != 2 || !f.started[0].closed {
		t.Fatalf("expected the failed engine to be replaced, started %d", len(f.started))
	}
}

func TestMakeMoveEngineUnavailable(t *testing.T) {
	f := &countingFactory{broken: true}
	app := NewServer(f.factory(), zerolog.Nop()).App("*")

	code, reply, _ := call(t, app, http.MethodPost, "/make_move", `{"fen":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"}`)
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if !engine.NeedsRestart(&engine.EngineError{StatusCode: code, Message: reply.Error}) {
		t.Fatalf("error %q should read as an engine failure", reply.Error)
	}
}

func TestRestartEngine(t *testing.T) {
	f := &countingFactory{}
	srv := NewServer(f.factory(), zerolog.Nop())
	srv.Initialize()
	app := srv.App("*")

	_, _, data := call(t, app, http.MethodPost, "/restart_engine", "")
	var reply engine.RestartReply
	if err := json.Unmarshal(data, &reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reply.Success {
		t.Fatalf("expected success, got %s", data)
	}
	if len(f.started) != 2 || !f.started[0].closed {
		t.Fatalf("expected restart to replace the engine")
	}
}

func TestUCINotation(t *testing.T) {
	fenOpt, err := chess.FEN("8/4P3/8/8/8/8/8/k6K w - - 0 1")
	if err != nil {
		t.Fatalf("FEN: %v", err)
	}
	game := chess.NewGame(fenOpt)
	found := false
	for _, m := range game.ValidMoves() {
		if m.Promo() == chess.Queen {
			found = true
			if got := uciNotation(m); got != "e7e8q" {
				t.Fatalf("expected e7e8q, got %s", got)
			}
		}
	}
	if !found {
		t.Fatalf("no queen promotion generated")
	}
}
