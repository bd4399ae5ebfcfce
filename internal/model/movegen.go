package model

// moveGenerator produces candidate destinations for the piece on from.
type moveGenerator func(board *BoardState, piece *Piece, from Position) []Position

// Only pawns have a generator. Every other kind yields no candidates until a
// generator is registered for it.
var moveGenerators = map[PieceType]moveGenerator{
	Pawn: getPsuedoPawnMoves,
}

// CandidateMoves returns the destinations the piece on from may move to under
// the reduced rule set. Nothing is filtered for check.
func CandidateMoves(s *GameState, from Position) []Position {
	piece := s.Board.At(from)
	if piece == nil {
		return []Position{}
	}
	gen, ok := moveGenerators[piece.Type]
	if !ok {
		return []Position{}
	}
	return gen(s.Board, piece, from)
}

func pawnDirection(c Color) int {
	if c == Black {
		return 1
	}
	return -1
}

func pawnHomeRow(c Color) int {
	if c == Black {
		return 1
	}
	return 6
}

func getPsuedoPawnMoves(board *BoardState, piece *Piece, from Position) []Position {
	pawnMoves := []Position{}
	dir := pawnDirection(piece.Color)

	// Check move forward 1
	one := Position{X: from.X, Y: from.Y + dir}
	if boundaryCheck(one) && board.At(one) == nil {
		pawnMoves = append(pawnMoves, one)
		// Check move forward 2 from the home rank
		two := Position{X: from.X, Y: from.Y + 2*dir}
		if from.Y == pawnHomeRow(piece.Color) && boundaryCheck(two) && board.At(two) == nil {
			pawnMoves = append(pawnMoves, two)
		}
	}
	// Check captures
	for _, dx := range []int{-1, 1} {
		target := Position{X: from.X + dx, Y: from.Y + dir}
		if !boundaryCheck(target) {
			continue
		}
		if victim := board.At(target); victim != nil && victim.Color != piece.Color {
			pawnMoves = append(pawnMoves, target)
		}
	}
	return pawnMoves
}
