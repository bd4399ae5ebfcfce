package model

import (
	"fmt"
	"strings"
)

type FENProblem string

const (
	FENRankCount     FENProblem = "rank_count"
	FENInvalidSymbol FENProblem = "invalid_symbol"
	FENRankOverflow  FENProblem = "rank_overflow"
	FENRankUnderflow FENProblem = "rank_underflow"
)

// FENDiagnostic explains why a FEN failed structural validation. Rank is
// zero-based from the first rank string (rank 8); Column is the character
// index inside that rank string.
type FENDiagnostic struct {
	Kind   FENProblem `json:"kind"`
	Rank   int        `json:"rank"`
	Column int        `json:"column"`
	Symbol string     `json:"symbol,omitempty"`
	Count  int        `json:"count"`
}

func (d *FENDiagnostic) Error() string {
	switch d.Kind {
	case FENRankCount:
		return fmt.Sprintf("invalid FEN: expected 8 ranks, got %d", d.Count)
	case FENInvalidSymbol:
		return fmt.Sprintf("invalid FEN: invalid symbol %q in rank %d at column %d", d.Symbol, d.Rank+1, d.Column)
	case FENRankOverflow:
		return fmt.Sprintf("invalid FEN: rank %d covers %d squares, more than 8", d.Rank+1, d.Count)
	case FENRankUnderflow:
		return fmt.Sprintf("invalid FEN: rank %d covers %d squares, fewer than 8", d.Rank+1, d.Count)
	}
	return "invalid FEN"
}

func (d *FENDiagnostic) Unwrap() error {
	return ErrInvalidFEN
}

// IsValidFEN checks the piece placement field of fen: eight ranks, each
// covering exactly eight squares with legal symbols. The remaining fields are
// not inspected. The diagnostic is nil when the FEN is valid.
func IsValidFEN(fen string) (bool, *FENDiagnostic) {
	placement, _, _ := strings.Cut(fen, " ")
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return false, &FENDiagnostic{Kind: FENRankCount, Rank: -1, Column: -1, Count: len(ranks)}
	}
	for i, rank := range ranks {
		count := 0
		for col, ch := range rank {
			switch {
			case ch >= '1' && ch <= '8':
				count += int(ch - '0')
			case strings.ContainsRune("prnbqkPRNBQK", ch):
				count++
			default:
				return false, &FENDiagnostic{Kind: FENInvalidSymbol, Rank: i, Column: col, Symbol: string(ch), Count: count}
			}
		}
		if count > 8 {
			return false, &FENDiagnostic{Kind: FENRankOverflow, Rank: i, Column: -1, Count: count}
		}
		if count < 8 {
			return false, &FENDiagnostic{Kind: FENRankUnderflow, Rank: i, Column: -1, Count: count}
		}
	}
	return true, nil
}

// ValidateFEN is IsValidFEN in error form.
func ValidateFEN(fen string) error {
	if ok, diag := IsValidFEN(fen); !ok {
		return diag
	}
	return nil
}
