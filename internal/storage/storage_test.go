package storage

import (
	"errors"
	"testing"
	"time"
)

func TestStorage(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("Failed to open in-memory storage: %v", err)
	}
	defer s.Close()

	t.Run("MissingGame", func(t *testing.T) {
		_, err := s.LoadGame("nope")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		rec := GameRecord{
			ID:          "g1",
			HumanColor:  "white",
			MoveHistory: []string{"e2e4", "e7e5"},
			FEN:         "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2",
			CreatedAt:   time.Now(),
		}
		if err := s.SaveGame(rec); err != nil {
			t.Fatalf("SaveGame: %v", err)
		}
		got, err := s.LoadGame("g1")
		if err != nil {
			t.Fatalf("LoadGame: %v", err)
		}
		if got.FEN != rec.FEN {
			t.Errorf("Expected FEN %q, got %q", rec.FEN, got.FEN)
		}
		if len(got.MoveHistory) != 2 || got.MoveHistory[1] != "e7e5" {
			t.Errorf("Unexpected move history %v", got.MoveHistory)
		}
		if got.UpdatedAt.IsZero() {
			t.Errorf("Expected UpdatedAt to be set")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := s.SaveGame(GameRecord{ID: "g1", MoveHistory: []string{}}); err != nil {
			t.Fatalf("SaveGame: %v", err)
		}
		got, err := s.LoadGame("g1")
		if err != nil {
			t.Fatalf("LoadGame: %v", err)
		}
		if len(got.MoveHistory) != 0 {
			t.Errorf("Expected history to be replaced, got %v", got.MoveHistory)
		}
	})

	t.Run("ListAndDelete", func(t *testing.T) {
		if err := s.SaveGame(GameRecord{ID: "g2"}); err != nil {
			t.Fatalf("SaveGame: %v", err)
		}
		list, err := s.ListGames()
		if err != nil {
			t.Fatalf("ListGames: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("Expected 2 games, got %d", len(list))
		}
		if list[0].ID != "g1" || list[1].ID != "g2" {
			t.Errorf("Expected key order g1, g2, got %s, %s", list[0].ID, list[1].ID)
		}
		if err := s.DeleteGame("g1"); err != nil {
			t.Fatalf("DeleteGame: %v", err)
		}
		if _, err := s.LoadGame("g1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected deleted game to be gone, got %v", err)
		}
	})
}
