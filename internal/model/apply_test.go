package model

import (
	"errors"
	"testing"
)

func TestApplyMoveE2E4(t *testing.T) {
	s := NewGameState()
	captured, err := ApplyMove(s, Position{X: 4, Y: 6}, Position{X: 4, Y: 4})
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if captured != nil {
		t.Errorf("expected no capture, got %+v", captured)
	}
	if s.ToMove != Black {
		t.Errorf("expected black to move, got %s", s.ToMove)
	}
	if len(s.MoveHistory) != 1 || s.MoveHistory[0] != "e2e4" {
		t.Errorf("expected history [e2e4], got %v", s.MoveHistory)
	}
	if s.Board.At(Position{X: 4, Y: 6}) != nil {
		t.Errorf("source square should be empty")
	}
	if p := s.Board.At(Position{X: 4, Y: 4}); p == nil || p.Type != Pawn || p.Color != White {
		t.Errorf("expected white pawn on e4, got %+v", p)
	}
	if s.LastMove == nil || s.LastMove.UCI() != "e2e4" {
		t.Errorf("expected last move e2e4, got %v", s.LastMove)
	}
}

func TestApplyMoveReturnsCapturedPiece(t *testing.T) {
	s := NewGameState()
	for _, m := range []string{"e2e4", "d7d5"} {
		move, _ := ParseUCIMove(m)
		if _, err := ApplyMove(s, move.From, move.To); err != nil {
			t.Fatalf("ApplyMove(%s): %v", m, err)
		}
	}
	captured, err := ApplyMove(s, Position{X: 4, Y: 4}, Position{X: 3, Y: 3})
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if captured == nil || captured.Type != Pawn || captured.Color != Black {
		t.Fatalf("expected captured black pawn, got %+v", captured)
	}
	if len(s.CapturedPieces.White) != 1 {
		t.Errorf("expected white to have one capture, got %v", s.CapturedPieces.White)
	}
	if got := s.Plies[2].CapturedPiece; got == nil || got.Type != Pawn {
		t.Errorf("ply should record the capture, got %+v", got)
	}
}

func TestApplyMoveErrorsLeaveStateUnchanged(t *testing.T) {
	s := NewGameState()
	before := ToFEN(s)

	if _, err := ApplyMove(s, Position{X: 4, Y: 4}, Position{X: 4, Y: 3}); !errors.Is(err, ErrNoPieceAtSource) {
		t.Fatalf("expected ErrNoPieceAtSource, got %v", err)
	}
	if _, err := ApplyMove(s, Position{X: 4, Y: 6}, Position{X: 4, Y: 8}); !errors.Is(err, ErrOffBoard) {
		t.Fatalf("expected ErrOffBoard, got %v", err)
	}
	if ToFEN(s) != before || len(s.MoveHistory) != 0 || s.ToMove != White {
		t.Fatalf("state changed after failed moves")
	}
}

func TestApplyMoveDoesNotCheckLegality(t *testing.T) {
	s := NewGameState()
	// Knight jumps are not generated but the applier trusts its caller.
	if _, err := ApplyMove(s, Position{X: 6, Y: 7}, Position{X: 5, Y: 5}); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if p := s.Board.At(Position{X: 5, Y: 5}); p == nil || p.Type != Knight {
		t.Fatalf("expected knight on f3, got %+v", p)
	}
}

func TestSideToMoveMatchesPly(t *testing.T) {
	s := NewGameState()
	moves := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4"}
	for i, m := range moves {
		move, _ := ParseUCIMove(m)
		if _, err := ApplyMove(s, move.From, move.To); err != nil {
			t.Fatalf("ApplyMove(%s): %v", m, err)
		}
		want := White
		if (i+1)%2 == 1 {
			want = Black
		}
		if s.ToMove != want {
			t.Fatalf("after %d plies expected %s, got %s", i+1, want, s.ToMove)
		}
		if s.Ply() != i+1 {
			t.Fatalf("expected ply %d, got %d", i+1, s.Ply())
		}
	}
}
