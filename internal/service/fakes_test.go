package service

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/benbeisheim/enginechess-backend/internal/engine"
	"github.com/benbeisheim/enginechess-backend/internal/model"
	"github.com/benbeisheim/enginechess-backend/internal/ws"
	"github.com/rs/zerolog"
)

type fakeEngine struct {
	mu        sync.Mutex
	health    engine.Health
	healthErr error
	reply     engine.MoveReply
	moveErr   error
	fens      []string
	restarts  int
	// inFlight, when set, is called while BestMove is running.
	inFlight func()
}

func (f *fakeEngine) Health() (engine.Health, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.health, f.healthErr
}

func (f *fakeEngine) BestMove(fen string) (engine.MoveReply, error) {
	f.mu.Lock()
	f.fens = append(f.fens, fen)
	reply, err, inFlight := f.reply, f.moveErr, f.inFlight
	f.mu.Unlock()

	if inFlight != nil {
		inFlight()
	}
	return reply, err
}

func (f *fakeEngine) Restart() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restarts++
	return nil
}

func (f *fakeEngine) restartCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.restarts
}

func newTestService(eng *fakeEngine) (*GameService, *GameManager) {
	gm := NewGameManager(nil, zerolog.Nop())
	monitor := NewHealthMonitor(eng, time.Hour, zerolog.Nop())
	return NewGameService(gm, eng, monitor, model.White, zerolog.Nop()), gm
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

// recordingConn keeps every message written to it.
type recordingConn struct {
	mu       sync.Mutex
	messages []ws.Message
}

func (c *recordingConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg, ok := v.(ws.Message); ok {
		c.messages = append(c.messages, msg)
	}
	return nil
}

func (c *recordingConn) WriteMessage(int, []byte) error { return nil }

func (c *recordingConn) Close() error { return nil }

func (c *recordingConn) states(t *testing.T) []model.GameView {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var views []model.GameView
	for _, msg := range c.messages {
		if msg.Type != ws.MessageTypeGameState {
			continue
		}
		var view model.GameView
		if err := json.Unmarshal(msg.Payload, &view); err != nil {
			t.Fatalf("decode state: %v", err)
		}
		views = append(views, view)
	}
	return views
}

func (c *recordingConn) count(typ ws.MessageType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, msg := range c.messages {
		if msg.Type == typ {
			n++
		}
	}
	return n
}
