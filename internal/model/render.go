package model

var unicodePieces = map[string]string{
	"R": "♖", "N": "♘", "B": "♗", "Q": "♕", "K": "♔", "P": "♙",
	"r": "♜", "n": "♞", "b": "♝", "q": "♛", "k": "♚", "p": "♟",
}

type PieceView struct {
	Type    PieceType `json:"type"`
	Color   Color     `json:"color"`
	Symbol  string    `json:"symbol"`
	Unicode string    `json:"unicode"`
}

// SquareView is what a client needs to draw one square.
type SquareView struct {
	Square    string     `json:"square"`
	Position  Position   `json:"position"`
	Rank      int        `json:"rank"`
	File      string     `json:"file"`
	Piece     *PieceView `json:"piece"`
	Shade     string     `json:"shade"`
	Selected  bool       `json:"selected"`
	Candidate bool       `json:"candidate"`
	LastMove  bool       `json:"lastMove"`
}

// RenderBoard lists the 64 squares from a8 to h1, row by row.
func RenderBoard(s *GameState) []SquareView {
	squares := make([]SquareView, 0, 64)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := Position{X: x, Y: y}
			name := p.getSquareNotation()
			view := SquareView{
				Square:    name,
				Position:  p,
				Rank:      8 - y,
				File:      name[:1],
				Shade:     "light",
				Selected:  s.SelectedSquare != nil && *s.SelectedSquare == p,
				Candidate: s.IsCandidate(p),
				LastMove:  s.LastMove != nil && (s.LastMove.From == p || s.LastMove.To == p),
			}
			if (x+y)%2 == 1 {
				view.Shade = "dark"
			}
			if piece := s.Board.Board[y][x]; piece != nil {
				symbol := piece.Symbol()
				view.Piece = &PieceView{
					Type:    piece.Type,
					Color:   piece.Color,
					Symbol:  symbol,
					Unicode: unicodePieces[symbol],
				}
			}
			squares = append(squares, view)
		}
	}
	return squares
}
