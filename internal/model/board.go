package model

import "fmt"

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

// fenLetter is the lower-case FEN letter for the piece type.
func (p PieceType) fenLetter() byte {
	switch p {
	case King:
		return 'k'
	case Queen:
		return 'q'
	case Rook:
		return 'r'
	case Bishop:
		return 'b'
	case Knight:
		return 'n'
	case Pawn:
		return 'p'
	}
	return '?'
}

type BoardState struct {
	Board [][]*Piece `json:"board"`
}

type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

// Symbol returns the FEN letter, upper-case for white.
func (p Piece) Symbol() string {
	letter := p.Type.fenLetter()
	if p.Color == White {
		letter -= 'a' - 'A'
	}
	return string(letter)
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) getSquareNotation() string {
	return fmt.Sprintf("%c%d", p.X+97, 8-p.Y)
}

func (p Position) String() string {
	if !boundaryCheck(p) {
		return fmt.Sprintf("(%d,%d)", p.Y, p.X)
	}
	return p.getSquareNotation()
}

func boundaryCheck(position Position) bool {
	return position.X >= 0 && position.X < 8 && position.Y >= 0 && position.Y < 8
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

func newBoard() *BoardState {
	board := &BoardState{}
	for i := 0; i < 8; i++ {
		board.Board = append(board.Board, make([]*Piece, 8))
	}
	for x, pieceType := range backRank {
		board.Board[0][x] = &Piece{Type: pieceType, Color: Black}
		board.Board[7][x] = &Piece{Type: pieceType, Color: White}
	}
	for i := 0; i < 8; i++ {
		board.Board[1][i] = &Piece{Type: Pawn, Color: Black}
		board.Board[6][i] = &Piece{Type: Pawn, Color: White}
	}
	return board
}

func newEmptyBoard() *BoardState {
	board := &BoardState{}
	for i := 0; i < 8; i++ {
		board.Board = append(board.Board, make([]*Piece, 8))
	}
	return board
}

// At returns the piece on a square, nil for empty or off-board squares.
func (b *BoardState) At(p Position) *Piece {
	if !boundaryCheck(p) {
		return nil
	}
	return b.Board[p.Y][p.X]
}

// Place puts a piece (or nil) on a square. Off-board squares are ignored.
func (b *BoardState) Place(p Position, piece *Piece) {
	if !boundaryCheck(p) {
		return
	}
	b.Board[p.Y][p.X] = piece
}
