package model

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/enginechess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

var (
	ErrNotYourTurn = errors.New("not your turn")
	ErrIllegalMove = errors.New("invalid move, not legal")
	ErrGameOver    = errors.New("game is over")
)

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// The connections for a specific game. Outgoing broadcasts go through a FIFO
// outbox drained by at most one goroutine, so clients see snapshots in the
// order they were taken.
type GameConnections struct {
	connections map[string]Conn // clientID -> connection
	mu          sync.RWMutex
	writeMu     sync.Mutex

	outboxMu sync.Mutex
	outbox   []ws.Message
	draining bool
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game owns one GameState and the clients watching it. Every mutation runs
// under mu; the state is replaced, never patched, on reset.
type Game struct {
	ID          string
	CreatedAt   time.Time
	mu          sync.Mutex
	state       *GameState
	players     Players
	humanColor  Color
	engineBusy  bool
	closed      bool
	result      string
	status      string
	encodeFEN   FENEncoder
	connections *GameConnections
	whiteClock  *Clock
	blackClock  *Clock
	log         zerolog.Logger
}

// FENEncoder renders a state as FEN. Games use ToFEN unless told otherwise.
type FENEncoder func(*GameState) string

// GameView is the snapshot sent to clients.
type GameView struct {
	ID             string         `json:"gameId"`
	FEN            string         `json:"fen"`
	ToMove         Color          `json:"toMove"`
	MoveHistory    []string       `json:"moveHistory"`
	Plies          []Ply          `json:"plies"`
	CapturedPieces CapturedPieces `json:"capturedPieces"`
	SelectedSquare *Position      `json:"selectedSquare"`
	LegalMoves     []Position     `json:"legalMoves"`
	LastMove       *SimpleMove    `json:"lastMove"`
	Squares        []SquareView   `json:"squares"`
	Players        Players        `json:"players"`
	EngineBusy     bool           `json:"engineBusy"`
	Result         string         `json:"result,omitempty"`
	Status         string         `json:"status"`
	FENDiagnostic  *FENDiagnostic `json:"fenDiagnostic,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func NewGame(id string, humanColor Color, log zerolog.Logger) *Game {
	if humanColor != Black {
		humanColor = White
	}
	g := &Game{
		ID:          id,
		CreatedAt:   time.Now(),
		state:       NewGameState(),
		players:     newPlayers(humanColor),
		humanColor:  humanColor,
		encodeFEN:   ToFEN,
		connections: NewGameConnections(),
		whiteClock:  NewClock(),
		blackClock:  NewClock(),
		log:         log.With().Str("game", id).Logger(),
	}
	g.status = g.turnStatus()
	g.whiteClock.Start()
	return g
}

func (g *Game) GetState() GameView {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.view()
}

// view builds a snapshot. Callers hold mu.
func (g *Game) view() GameView {
	s := g.state.Clone()
	fen := g.encodeFEN(s)
	_, diag := IsValidFEN(fen)
	players := g.players
	players.White.TimeUsed = tenths(g.whiteClock.GetTimeUsed())
	players.Black.TimeUsed = tenths(g.blackClock.GetTimeUsed())
	return GameView{
		ID:             g.ID,
		FEN:            fen,
		ToMove:         s.ToMove,
		MoveHistory:    s.MoveHistory,
		Plies:          s.Plies,
		CapturedPieces: s.CapturedPieces,
		SelectedSquare: s.SelectedSquare,
		LegalMoves:     s.LegalMoves,
		LastMove:       s.LastMove,
		Squares:        RenderBoard(s),
		Players:        players,
		EngineBusy:     g.engineBusy,
		Result:         g.result,
		Status:         g.status,
		FENDiagnostic:  diag,
		CreatedAt:      g.CreatedAt,
	}
}

// FEN returns the FEN of the current position.
func (g *Game) FEN() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.encodeFEN(g.state)
}

// SetFENEncoder replaces the encoder used for views and engine requests.
// A nil encoder restores ToFEN.
func (g *Game) SetFENEncoder(enc FENEncoder) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if enc == nil {
		enc = ToFEN
	}
	g.encodeFEN = enc
}

// playable reports why the game cannot take a move or selection, if it
// cannot. Callers hold mu.
func (g *Game) playable() error {
	switch {
	case g.closed:
		return ErrGameNotFound
	case g.engineBusy:
		return ErrEngineBusy
	case g.result != "":
		return ErrGameOver
	}
	return nil
}

// MoveHistory returns a copy of the applied moves.
func (g *Game) MoveHistory() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]string(nil), g.state.MoveHistory...)
}

// Select computes candidates for the piece on p. Only the side to move can
// be selected; anything else clears the selection.
func (g *Game) Select(p Position) ([]Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !boundaryCheck(p) {
		return nil, fmt.Errorf("%w: %v", ErrOffBoard, p)
	}
	if err := g.playable(); err != nil {
		return nil, err
	}

	var candidates []Position
	if piece := g.state.Board.At(p); piece != nil && piece.Color == g.state.ToMove {
		candidates = g.state.Select(p)
	} else {
		g.state.ClearSelection()
	}
	g.broadcastLocked()
	return candidates, nil
}

// MakeMove applies a human move. The destination must be one of the
// candidates the move generator produces for the source square.
func (g *Game) MakeMove(move SimpleMove) (*Piece, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.playable(); err != nil {
		return nil, err
	}
	if err := g.validateMove(move); err != nil {
		return nil, err
	}
	return g.executeMove(move, ControllerHuman)
}

func (g *Game) validateMove(move SimpleMove) error {
	if !boundaryCheck(move.From) || !boundaryCheck(move.To) {
		return fmt.Errorf("%w: %s", ErrOffBoard, move.UCI())
	}
	piece := g.state.Board.At(move.From)
	if piece == nil {
		return fmt.Errorf("%w: %s", ErrNoPieceAtSource, move.From)
	}
	if piece.Color != g.state.ToMove {
		return ErrNotYourTurn
	}
	for _, to := range CandidateMoves(g.state, move.From) {
		if to == move.To {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrIllegalMove, move.UCI())
}

// ApplyEngineMove applies a move received from the engine. Engine moves are
// trusted and not checked against the candidate set.
func (g *Game) ApplyEngineMove(notation string) (*Piece, error) {
	move, err := ParseUCIMove(notation)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil, ErrGameNotFound
	}
	if g.result != "" {
		return nil, ErrGameOver
	}
	return g.executeMove(move, ControllerEngine)
}

func (g *Game) executeMove(move SimpleMove, mover Controller) (*Piece, error) {
	movingSide := g.state.ToMove
	captured, err := applyMove(g.state, move, mover)
	if err != nil {
		return nil, err
	}

	// Stop current side's clock and start the other
	if movingSide == White {
		g.whiteClock.Stop()
		g.blackClock.Start()
	} else {
		g.blackClock.Stop()
		g.whiteClock.Start()
	}

	ev := g.log.Info().Str("move", move.UCI()).Str("mover", string(mover)).Int("ply", g.state.Ply())
	if captured != nil {
		ev = ev.Str("captured", captured.Symbol())
	}
	ev.Msg("move applied")

	g.status = g.turnStatus()
	g.broadcastLocked()
	return captured, nil
}

func (g *Game) turnStatus() string {
	return fmt.Sprintf("%s to move", g.state.ToMove)
}

// Reset replaces the position with a fresh starting position.
func (g *Game) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrGameNotFound
	}
	if g.engineBusy {
		return ErrEngineBusy
	}
	g.state = NewGameState()
	g.result = ""
	g.whiteClock.Reset()
	g.blackClock.Reset()
	g.whiteClock.Start()
	g.status = g.turnStatus()
	g.log.Info().Msg("game reset")
	g.broadcastLocked()
	return nil
}

// Flip is not supported.
func (g *Game) Flip() error {
	return fmt.Errorf("flip board: %w", ErrNotImplemented)
}

// Undo is not supported.
func (g *Game) Undo() error {
	return fmt.Errorf("undo move: %w", ErrNotImplemented)
}

// BeginEngineRequest marks the game busy and returns the FEN to send. The
// returned release func clears the busy flag and must run on every exit path.
func (g *Game) BeginEngineRequest() (string, func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.playable(); err != nil {
		return "", nil, err
	}
	g.engineBusy = true
	g.state.ClearSelection()
	g.status = "waiting for engine"
	fen := g.encodeFEN(g.state)
	g.broadcastLocked()

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			g.engineBusy = false
			g.broadcastLocked()
		})
	}
	return fen, release, nil
}

// IsEngineBusy reports whether an engine request is outstanding.
func (g *Game) IsEngineBusy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.engineBusy
}

// SetStatus sets the user-visible status line.
func (g *Game) SetStatus(status string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.status = status
	g.broadcastLocked()
}

// Summary is the short listing entry for a game.
type Summary struct {
	ID        string    `json:"gameId"`
	Moves     int       `json:"moves"`
	FEN       string    `json:"fen"`
	ToMove    Color     `json:"toMove"`
	Result    string    `json:"result,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (g *Game) Summary() Summary {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Summary{
		ID:        g.ID,
		Moves:     len(g.state.MoveHistory),
		FEN:       g.encodeFEN(g.state),
		ToMove:    g.state.ToMove,
		Result:    g.result,
		CreatedAt: g.CreatedAt,
	}
}

// HumanColor is the side the human plays.
func (g *Game) HumanColor() Color {
	return g.humanColor
}

// Result is "1-0", "0-1" or empty while the game is still going.
func (g *Game) Result() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.result
}

// Transcript returns the applied moves and the result in one snapshot.
func (g *Game) Transcript() ([]string, string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]string(nil), g.state.MoveHistory...), g.result
}

// Resign ends the game with the human side losing and returns the result.
func (g *Game) Resign() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.playable(); err != nil {
		return "", err
	}
	g.result = "0-1"
	if g.humanColor == Black {
		g.result = "1-0"
	}
	g.whiteClock.Stop()
	g.blackClock.Stop()
	g.status = g.resignedStatus()
	g.log.Info().Str("result", g.result).Int("ply", g.state.Ply()).Msg("human resigned")
	g.broadcastLocked()
	return g.result, nil
}

func (g *Game) resignedStatus() string {
	return fmt.Sprintf("%s resigned, %s", g.humanColor, g.result)
}

// Close retires the game and disconnects its clients. It refuses while an
// engine request is outstanding; afterwards every operation reports
// ErrGameNotFound.
func (g *Game) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrGameNotFound
	}
	if g.engineBusy {
		g.mu.Unlock()
		return ErrEngineBusy
	}
	g.closed = true
	g.whiteClock.Stop()
	g.blackClock.Stop()
	g.mu.Unlock()

	g.connections.mu.Lock()
	conns := g.connections.connections
	g.connections.connections = make(map[string]Conn)
	g.connections.mu.Unlock()

	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()
	for _, conn := range conns {
		_ = conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "game deleted"),
		)
		conn.Close()
	}
	g.log.Info().Msg("game closed")
	return nil
}

func (g *Game) RegisterConnection(clientID string, conn Conn) error {
	g.connections.mu.Lock()
	if _, exists := g.connections.connections[clientID]; exists {
		// If we already have a healthy connection, keep it and reject the new one
		g.connections.mu.Unlock()
		_ = conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(
				websocket.CloseNormalClosure,
				"Connection already exists",
			),
		)
		conn.Close()
		return nil
	}

	g.connections.connections[clientID] = conn
	g.connections.mu.Unlock()
	g.log.Debug().Str("client", clientID).Msg("registered connection")

	// Send initial state
	g.mu.Lock()
	g.broadcastLocked()
	g.mu.Unlock()
	return nil
}

func (g *Game) UnregisterConnection(clientID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	// Only unregister if this is still the current connection
	if current, exists := g.connections.connections[clientID]; exists && current == conn {
		delete(g.connections.connections, clientID)
		g.log.Debug().Str("client", clientID).Msg("unregistered connection")
	}
}

// ConnectionCount is the number of registered clients.
func (g *Game) ConnectionCount() int {
	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()

	return len(g.connections.connections)
}

// broadcastLocked snapshots the state and queues it for every client.
// Callers hold mu, which fixes the order snapshots enter the outbox.
func (g *Game) broadcastLocked() {
	if g.ConnectionCount() == 0 {
		return
	}
	msg, err := ws.NewMessage(ws.MessageTypeGameState, g.view())
	if err != nil {
		g.log.Error().Err(err).Msg("failed to marshal state")
		return
	}
	g.Publish(msg)
}

// Publish queues msg for every registered connection without waiting for
// it to be written. Messages are delivered in the order they were published.
func (g *Game) Publish(msg ws.Message) {
	gc := g.connections
	gc.outboxMu.Lock()
	defer gc.outboxMu.Unlock()

	gc.outbox = append(gc.outbox, msg)
	if !gc.draining {
		gc.draining = true
		go g.drain()
	}
}

func (g *Game) drain() {
	gc := g.connections
	for {
		gc.outboxMu.Lock()
		if len(gc.outbox) == 0 {
			gc.draining = false
			gc.outboxMu.Unlock()
			return
		}
		msg := gc.outbox[0]
		gc.outbox[0] = ws.Message{}
		gc.outbox = gc.outbox[1:]
		gc.outboxMu.Unlock()

		g.Broadcast(msg)
	}
}

// pending reports whether queued messages are still being written.
func (gc *GameConnections) pending() bool {
	gc.outboxMu.Lock()
	defer gc.outboxMu.Unlock()

	return gc.draining || len(gc.outbox) > 0
}

// Broadcast sends msg to every registered connection, dropping those that
// fail.
func (g *Game) Broadcast(msg ws.Message) {
	// Get a snapshot of connections under the connections mutex
	g.connections.mu.RLock()
	activeConnections := make(map[string]Conn, len(g.connections.connections))
	for clientID, conn := range g.connections.connections {
		activeConnections[clientID] = conn
	}
	g.connections.mu.RUnlock()

	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()
	for clientID, conn := range activeConnections {
		if err := conn.WriteJSON(msg); err != nil {
			g.log.Warn().Err(err).Str("client", clientID).Msg("failed to send message, dropping connection")
			g.UnregisterConnection(clientID, conn)
			continue
		}
	}
}

// Send writes msg to a single connection, serialised with broadcasts.
func (g *Game) Send(conn Conn, msg ws.Message) error {
	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()

	return conn.WriteJSON(msg)
}

// RestoreGame rebuilds a game by replaying moves from the starting position.
// Moves are trusted, as they were when first applied.
func RestoreGame(id string, humanColor Color, createdAt time.Time, moves []string, result string, log zerolog.Logger) (*Game, error) {
	g := NewGame(id, humanColor, log)
	g.CreatedAt = createdAt
	for i, notation := range moves {
		move, err := ParseUCIMove(notation)
		if err != nil {
			return nil, fmt.Errorf("replay move %d: %w", i+1, err)
		}
		mover := ControllerEngine
		if g.state.ToMove == g.humanColor {
			mover = ControllerHuman
		}
		if _, err := applyMove(g.state, move, mover); err != nil {
			return nil, fmt.Errorf("replay move %d: %w", i+1, err)
		}
	}
	g.status = g.turnStatus()
	if g.state.ToMove == Black {
		g.whiteClock.Stop()
		g.blackClock.Start()
	}
	if result != "" {
		g.result = result
		g.status = g.resignedStatus()
		g.whiteClock.Stop()
		g.blackClock.Stop()
	}
	return g, nil
}
