// service/game_manager.go
package service

import (
	"sort"
	"sync"

	"github.com/benbeisheim/enginechess-backend/internal/model"
	"github.com/benbeisheim/enginechess-backend/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Archive persists games between runs.
type Archive interface {
	SaveGame(rec storage.GameRecord) error
	LoadGame(id string) (storage.GameRecord, error)
	ListGames() ([]storage.GameRecord, error)
	DeleteGame(id string) error
}

type GameManager struct {
	games   map[string]*model.Game
	archive Archive
	mu      sync.RWMutex
	log     zerolog.Logger
}

// NewGameManager builds a manager. archive may be nil.
func NewGameManager(archive Archive, log zerolog.Logger) *GameManager {
	return &GameManager{
		games:   make(map[string]*model.Game),
		archive: archive,
		log:     log.With().Str("component", "game-manager").Logger(),
	}
}

func (gm *GameManager) CreateGame(humanColor model.Color) *model.Game {
	gameID := uuid.New().String()
	game := model.NewGame(gameID, humanColor, gm.log)

	gm.mu.Lock()
	gm.games[gameID] = game
	gm.mu.Unlock()

	gm.log.Info().Str("game", gameID).Str("human", string(game.HumanColor())).Msg("game created")
	gm.Save(game)
	return game
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, model.ErrGameNotFound
	}

	return game, nil
}

// ListGames returns summaries ordered by creation time.
func (gm *GameManager) ListGames() []model.Summary {
	gm.mu.RLock()
	summaries := make([]model.Summary, 0, len(gm.games))
	for _, game := range gm.games {
		summaries = append(summaries, game.Summary())
	}
	gm.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries
}

// RemoveGame drops a game from memory and from the archive.
func (gm *GameManager) RemoveGame(gameID string) error {
	gm.mu.Lock()
	_, exists := gm.games[gameID]
	delete(gm.games, gameID)
	gm.mu.Unlock()

	if !exists {
		return model.ErrGameNotFound
	}
	if gm.archive != nil {
		if err := gm.archive.DeleteGame(gameID); err != nil {
			return err
		}
	}
	gm.log.Info().Str("game", gameID).Msg("game removed")
	return nil
}

// Each calls fn for every live game.
func (gm *GameManager) Each(fn func(*model.Game)) {
	gm.mu.RLock()
	games := make([]*model.Game, 0, len(gm.games))
	for _, game := range gm.games {
		games = append(games, game)
	}
	gm.mu.RUnlock()

	for _, game := range games {
		fn(game)
	}
}

// Save writes the game to the archive, if one is configured. Failures are
// logged and otherwise ignored; the live game is authoritative.
func (gm *GameManager) Save(game *model.Game) {
	if gm.archive == nil {
		return
	}
	summary := game.Summary()
	moves, result := game.Transcript()
	rec := storage.GameRecord{
		ID:          game.ID,
		HumanColor:  string(game.HumanColor()),
		MoveHistory: moves,
		FEN:         summary.FEN,
		Result:      result,
		CreatedAt:   game.CreatedAt,
	}
	if err := gm.archive.SaveGame(rec); err != nil {
		gm.log.Error().Err(err).Str("game", game.ID).Msg("failed to archive game")
	}
}

// Archived loads a game record from the archive.
func (gm *GameManager) Archived(gameID string) (storage.GameRecord, error) {
	if gm.archive == nil {
		return storage.GameRecord{}, storage.ErrNotFound
	}
	return gm.archive.LoadGame(gameID)
}

// Restore replays every archived game into memory. Records that fail to
// replay are skipped.
func (gm *GameManager) Restore() (int, error) {
	if gm.archive == nil {
		return 0, nil
	}
	records, err := gm.archive.ListGames()
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, rec := range records {
		game, err := model.RestoreGame(rec.ID, model.Color(rec.HumanColor), rec.CreatedAt, rec.MoveHistory, rec.Result, gm.log)
		if err != nil {
			gm.log.Warn().Err(err).Str("game", rec.ID).Msg("skipping archived game")
			continue
		}
		gm.mu.Lock()
		gm.games[rec.ID] = game
		gm.mu.Unlock()
		restored++
	}
	return restored, nil
}
