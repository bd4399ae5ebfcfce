package model

import (
	"fmt"
	"strings"
)

// StartFEN is the FEN of the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ToFEN encodes the state. Castling rights, en passant and the halfmove clock
// are constants and do not reflect the game's history.
func ToFEN(s *GameState) string {
	var sb strings.Builder
	for y := 0; y < 8; y++ {
		if y > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for x := 0; x < 8; x++ {
			piece := s.Board.Board[y][x]
			if piece == nil {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(piece.Symbol())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	fullMove := len(s.MoveHistory)/2 + 1
	fmt.Fprintf(&sb, " %s KQkq - 0 %d", s.ToMove.fenLetter(), fullMove)
	return sb.String()
}
