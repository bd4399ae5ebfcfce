package model

import "time"

type SimpleMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Ply is the display record of one applied move.
type Ply struct {
	Piece         Piece      `json:"piece"`
	From          Position   `json:"from"`
	To            Position   `json:"to"`
	CapturedPiece *Piece     `json:"capturedPiece"`
	Notation      string     `json:"notation"`
	Mover         Controller `json:"mover"`
	PlayedAt      time.Time  `json:"playedAt"`
}

// MoveRequest is a move command from a client, either as coordinates or as
// a four character notation string.
type MoveRequest struct {
	From     *Position `json:"from,omitempty"`
	To       *Position `json:"to,omitempty"`
	Notation string    `json:"move,omitempty"`
}

// Resolve turns the request into board coordinates.
func (r MoveRequest) Resolve() (SimpleMove, error) {
	if r.Notation != "" {
		return ParseUCIMove(r.Notation)
	}
	if r.From == nil || r.To == nil {
		return SimpleMove{}, ErrMalformedNotation
	}
	return SimpleMove{From: *r.From, To: *r.To}, nil
}
