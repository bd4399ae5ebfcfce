package model

import "time"

// GameState is one chess position: placement, side to move, the moves that
// produced it and the current selection.
type GameState struct {
	Board          *BoardState    `json:"boardState"`
	ToMove         Color          `json:"toMove"`
	MoveHistory    []string       `json:"moveHistory"`
	Plies          []Ply          `json:"plies"`
	CapturedPieces CapturedPieces `json:"capturedPieces"`
	SelectedSquare *Position      `json:"selectedSquare"`
	LegalMoves     []Position     `json:"legalMoves"`
	LastMove       *SimpleMove    `json:"lastMove"`
}

// CapturedPieces lists captures by the side that made them.
type CapturedPieces struct {
	White []Piece `json:"white"`
	Black []Piece `json:"black"`
}

func NewGameState() *GameState {
	return &GameState{
		Board:       newBoard(),
		ToMove:      White,
		MoveHistory: make([]string, 0),
		Plies:       make([]Ply, 0),
		CapturedPieces: CapturedPieces{
			White: make([]Piece, 0),
			Black: make([]Piece, 0),
		},
		LegalMoves: make([]Position, 0),
	}
}

// NewEmptyGameState returns a state with no pieces on the board.
func NewEmptyGameState() *GameState {
	s := NewGameState()
	s.Board = newEmptyBoard()
	return s
}

// Ply count so far.
func (s *GameState) Ply() int {
	return len(s.MoveHistory)
}

// Select records a selected square and its candidate destinations. Selecting
// an empty square clears the selection.
func (s *GameState) Select(p Position) []Position {
	if s.Board.At(p) == nil {
		s.ClearSelection()
		return nil
	}
	sq := p
	s.SelectedSquare = &sq
	s.LegalMoves = CandidateMoves(s, p)
	return s.LegalMoves
}

func (s *GameState) ClearSelection() {
	s.SelectedSquare = nil
	s.LegalMoves = make([]Position, 0)
}

// IsCandidate reports whether to is in the current selection's candidate set.
func (s *GameState) IsCandidate(to Position) bool {
	for _, c := range s.LegalMoves {
		if c == to {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the state.
func (s *GameState) Clone() *GameState {
	c := &GameState{
		Board:       newEmptyBoard(),
		ToMove:      s.ToMove,
		MoveHistory: append(make([]string, 0, len(s.MoveHistory)), s.MoveHistory...),
		Plies:       append(make([]Ply, 0, len(s.Plies)), s.Plies...),
		CapturedPieces: CapturedPieces{
			White: append(make([]Piece, 0, len(s.CapturedPieces.White)), s.CapturedPieces.White...),
			Black: append(make([]Piece, 0, len(s.CapturedPieces.Black)), s.CapturedPieces.Black...),
		},
		LegalMoves: append(make([]Position, 0, len(s.LegalMoves)), s.LegalMoves...),
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if piece := s.Board.Board[y][x]; piece != nil {
				cp := *piece
				c.Board.Board[y][x] = &cp
			}
		}
	}
	if s.SelectedSquare != nil {
		sq := *s.SelectedSquare
		c.SelectedSquare = &sq
	}
	if s.LastMove != nil {
		lm := *s.LastMove
		c.LastMove = &lm
	}
	return c
}

func (s *GameState) recordPly(move SimpleMove, piece Piece, captured *Piece, mover Controller) {
	s.Plies = append(s.Plies, Ply{
		Piece:         piece,
		From:          move.From,
		To:            move.To,
		CapturedPiece: captured,
		Notation:      move.UCI(),
		Mover:         mover,
		PlayedAt:      time.Now(),
	})
	if captured != nil {
		switch piece.Color {
		case White:
			s.CapturedPieces.White = append(s.CapturedPieces.White, *captured)
		case Black:
			s.CapturedPieces.Black = append(s.CapturedPieces.Black, *captured)
		}
	}
}
