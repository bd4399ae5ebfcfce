package model

import "errors"

var (
	ErrMalformedNotation = errors.New("malformed move notation")
	ErrNoPieceAtSource   = errors.New("no piece at from square")
	ErrOffBoard          = errors.New("square is off the board")
	ErrNotImplemented    = errors.New("not implemented")
	ErrEngineBusy        = errors.New("engine request already in progress")
	ErrInvalidFEN        = errors.New("invalid FEN")
	ErrGameNotFound      = errors.New("game not found")
)
