package model

import "fmt"

// ApplyMove moves the piece on from to to and returns whatever was standing
// on to. Legality is the caller's business; the state is left untouched when
// an error is returned.
func ApplyMove(s *GameState, from, to Position) (*Piece, error) {
	return applyMove(s, SimpleMove{From: from, To: to}, ControllerHuman)
}

func applyMove(s *GameState, move SimpleMove, mover Controller) (*Piece, error) {
	if !boundaryCheck(move.From) || !boundaryCheck(move.To) {
		return nil, fmt.Errorf("%w: %v -> %v", ErrOffBoard, move.From, move.To)
	}
	piece := s.Board.At(move.From)
	if piece == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPieceAtSource, move.From)
	}
	captured := s.Board.At(move.To)

	s.Board.Place(move.From, nil)
	s.Board.Place(move.To, piece)

	s.MoveHistory = append(s.MoveHistory, move.UCI())
	s.recordPly(move, *piece, captured, mover)
	lm := move
	s.LastMove = &lm
	s.ToMove = s.ToMove.Opponent()
	s.ClearSelection()

	return captured, nil
}
