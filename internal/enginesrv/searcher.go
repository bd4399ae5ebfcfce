// Package enginesrv serves best-move queries from a UCI engine process over
// HTTP. It is the collaborator the board service's engine client talks to.
package enginesrv

import (
	"errors"
	"strconv"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
)

var ErrNoBestMove = errors.New("engine returned no best move")

// Searcher picks a move for a position.
type Searcher interface {
	BestMove(game *chess.Game) (*chess.Move, error)
	Close() error
}

// SearcherFactory starts a new Searcher, e.g. a fresh engine process.
type SearcherFactory func() (Searcher, error)

// UCISearcher wraps a UCI engine (e.g. Stockfish or Cfish).
type UCISearcher struct {
	eng      *uci.Engine
	moveTime time.Duration
}

// NewUCISearcher starts the engine binary at path. A negative skill leaves
// the engine's Skill Level option untouched.
func NewUCISearcher(path string, moveTime time.Duration, skill int) (*UCISearcher, error) {
	eng, err := uci.New(path)
	if err != nil {
		return nil, err
	}

	cmds := []uci.Cmd{uci.CmdUCI, uci.CmdIsReady}
	if skill >= 0 {
		cmds = append(cmds, uci.CmdSetOption{Name: "Skill Level", Value: strconv.Itoa(skill)})
	}
	cmds = append(cmds, uci.CmdUCINewGame)
	if err := eng.Run(cmds...); err != nil {
		eng.Close()
		return nil, err
	}

	return &UCISearcher{eng: eng, moveTime: moveTime}, nil
}

// UCIFactory returns a factory starting UCISearchers with fixed settings.
func UCIFactory(path string, moveTime time.Duration, skill int) SearcherFactory {
	return func() (Searcher, error) {
		return NewUCISearcher(path, moveTime, skill)
	}
}

func (s *UCISearcher) BestMove(game *chess.Game) (*chess.Move, error) {
	cmdPos := uci.CmdPosition{Position: game.Position()}
	cmdGo := uci.CmdGo{MoveTime: s.moveTime}

	if err := s.eng.Run(cmdPos, cmdGo); err != nil {
		return nil, err
	}

	move := s.eng.SearchResults().BestMove
	if move == nil {
		return nil, ErrNoBestMove
	}
	return move, nil
}

// Close shuts down the engine process.
func (s *UCISearcher) Close() error {
	if s.eng != nil {
		return s.eng.Close()
	}
	return nil
}
