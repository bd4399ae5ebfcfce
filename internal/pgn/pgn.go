// Package pgn writes games as PGN. Moves are replayed through notnil/chess,
// which supplies full legality checking and SAN, so a history the reduced
// board model accepted but real chess rules do not is reported rather than
// exported.
package pgn

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/notnil/chess"
)

var ErrReplay = errors.New("move history cannot be replayed")

// Header holds the seven-tag roster fields this service fills in.
type Header struct {
	Event  string
	Site   string
	Date   time.Time
	White  string
	Black  string
	Result string // "1-0", "0-1", "1/2-1/2"; empty or "*" while unfinished
}

// Export replays moves (four or five character UCI strings) from the
// starting position and renders the game.
func Export(h Header, moves []string) (string, error) {
	game := chess.NewGame()
	for i, notation := range moves {
		move, err := chess.UCINotation{}.Decode(game.Position(), notation)
		if err != nil {
			return "", fmt.Errorf("%w: move %d %q: %v", ErrReplay, i+1, notation, err)
		}
		if err := game.Move(move); err != nil {
			return "", fmt.Errorf("%w: move %d %q: %v", ErrReplay, i+1, notation, err)
		}
	}

	result := h.Result
	if result == "" || result == "*" {
		result = "*"
		if outcome := game.Outcome(); outcome != chess.NoOutcome {
			result = string(outcome)
		}
	}

	var sb strings.Builder
	tag := func(key, value string) {
		fmt.Fprintf(&sb, "[%s \"%s\"]\n", key, strings.ReplaceAll(value, `"`, `'`))
	}
	tag("Event", h.Event)
	tag("Site", h.Site)
	tag("Date", h.Date.Format("2006.01.02"))
	tag("Round", "-")
	tag("White", h.White)
	tag("Black", h.Black)
	tag("Result", result)
	sb.WriteByte('\n')

	positions := game.Positions()
	for i, move := range game.Moves() {
		if i%2 == 0 {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%d. ", i/2+1)
		} else {
			sb.WriteByte(' ')
		}
		sb.WriteString(chess.AlgebraicNotation{}.Encode(positions[i], move))
	}
	if len(moves) > 0 {
		sb.WriteByte(' ')
	}
	sb.WriteString(result)
	sb.WriteByte('\n')
	return sb.String(), nil
}
