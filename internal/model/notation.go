package model

import "fmt"

// SquareToAlgebraic maps a zero-based (row, col) to a square name such as
// "e2". Row 0 is rank 8 and col 0 is file a.
func SquareToAlgebraic(row, col int) (string, error) {
	p := Position{X: col, Y: row}
	if !boundaryCheck(p) {
		return "", fmt.Errorf("%w: row %d col %d", ErrOffBoard, row, col)
	}
	return p.getSquareNotation(), nil
}

// ParseSquare is the inverse of SquareToAlgebraic.
func ParseSquare(square string) (Position, error) {
	if len(square) != 2 {
		return Position{}, fmt.Errorf("%w: %q", ErrMalformedNotation, square)
	}
	file, rank := square[0], square[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Position{}, fmt.Errorf("%w: %q", ErrMalformedNotation, square)
	}
	return Position{X: int(file - 'a'), Y: 8 - int(rank-'0')}, nil
}

// ParseUCIMove parses "<file><rank><file><rank>" into board coordinates.
// Occupancy and legality are not checked.
func ParseUCIMove(move string) (SimpleMove, error) {
	if len(move) != 4 {
		return SimpleMove{}, fmt.Errorf("%w: %q is not four characters", ErrMalformedNotation, move)
	}
	from, err := ParseSquare(move[:2])
	if err != nil {
		return SimpleMove{}, fmt.Errorf("%w: %q", ErrMalformedNotation, move)
	}
	to, err := ParseSquare(move[2:])
	if err != nil {
		return SimpleMove{}, fmt.Errorf("%w: %q", ErrMalformedNotation, move)
	}
	return SimpleMove{From: from, To: to}, nil
}

// UCI returns the four character notation of the move.
func (m SimpleMove) UCI() string {
	return m.From.getSquareNotation() + m.To.getSquareNotation()
}
