package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tmash55/oddsmash-sub001/internal/models"
)

// FileRoster serves player-to-team lookups from a reference roster file
// loaded once at startup. The file is a JSON array of player records.
type FileRoster struct {
	players []models.PlayerRecord
	byName  map[string]*models.PlayerRecord
	logger  zerolog.Logger
}

// Load reads the roster file into memory.
func Load(path string, logger zerolog.Logger) (*FileRoster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var players []models.PlayerRecord
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("failed to decode roster file: %w", err)
	}

	roster := &FileRoster{
		players: players,
		byName:  make(map[string]*models.PlayerRecord, len(players)),
		logger:  logger.With().Str("component", "roster").Logger(),
	}
	for i := range players {
		roster.byName[strings.ToLower(players[i].Name)] = &players[i]
	}

	roster.logger.Info().
		Str("path", path).
		Int("players", len(players)).
		Msg("loaded reference roster")
	return roster, nil
}

// FindPlayerExact does a case-insensitive exact name lookup.
func (r *FileRoster) FindPlayerExact(_ context.Context, name string) (*models.PlayerRecord, error) {
	if record, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return record, nil
	}
	return nil, nil
}

// ListAllPlayers returns the full roster for fuzzy matching.
func (r *FileRoster) ListAllPlayers(_ context.Context) ([]models.PlayerRecord, error) {
	return r.players, nil
}
