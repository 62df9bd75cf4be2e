package resolver

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tmash55/oddsmash-sub001/internal/entity"
	"github.com/tmash55/oddsmash-sub001/internal/extract"
	"github.com/tmash55/oddsmash-sub001/internal/models"
)

// Matching thresholds.
const (
	// minTeamPairScore is the floor on the mean home/away similarity for a
	// direct team-name match.
	minTeamPairScore = 0.5
	// minPlayerMatchScore is the floor for fuzzy player-to-roster matches.
	minPlayerMatchScore = 0.7
	// minInferredTeamScore is the floor for an inferred team matching a
	// game side.
	minInferredTeamScore = 0.8

	singleTeamConfidence = 0.85
	twoTeamConfidence    = 0.95
)

// RosterSource looks up players for team inference.
type RosterSource interface {
	FindPlayerExact(ctx context.Context, name string) (*models.PlayerRecord, error)
	ListAllPlayers(ctx context.Context) ([]models.PlayerRecord, error)
}

// Resolution is the outcome of one event-resolution attempt.
type Resolution struct {
	Game       *models.GameData
	Confidence float64
}

// EventResolver matches selections to sporting events, directly by team
// names or indirectly through player-to-team inference.
type EventResolver struct {
	roster RosterSource
	logger zerolog.Logger
}

// NewEventResolver creates an event resolver. The roster source may be nil,
// which disables player inference.
func NewEventResolver(roster RosterSource, logger zerolog.Logger) *EventResolver {
	return &EventResolver{
		roster: roster,
		logger: logger.With().Str("component", "event_resolver").Logger(),
	}
}

// Resolve finds the event for a selection. Team names are tried first; when
// missing or placeholder, the slip's player props are used to infer teams.
func (r *EventResolver) Resolve(ctx context.Context, awayTeam, homeTeam string, games []models.GameData, slip []models.BetSelection) Resolution {
	if len(games) == 0 {
		return Resolution{}
	}

	if usableTeamText(awayTeam) && usableTeamText(homeTeam) {
		return r.resolveByTeams(awayTeam, homeTeam, games)
	}
	return r.resolveByPlayers(ctx, games, slip)
}

// usableTeamText rejects empty and placeholder team fields.
func usableTeamText(s string) bool {
	trimmed := strings.TrimSpace(s)
	return trimmed != "" && !strings.EqualFold(trimmed, "n/a")
}

// resolveByTeams scores every game in both team orientations and keeps the
// best pair at or above the floor.
func (r *EventResolver) resolveByTeams(awayTeam, homeTeam string, games []models.GameData) Resolution {
	var best Resolution
	for i := range games {
		game := &games[i]

		parsed := (entity.TeamSimilarity(awayTeam, game.AwayTeam.Name) +
			entity.TeamSimilarity(homeTeam, game.HomeTeam.Name)) / 2
		flipped := (entity.TeamSimilarity(awayTeam, game.HomeTeam.Name) +
			entity.TeamSimilarity(homeTeam, game.AwayTeam.Name)) / 2

		score := parsed
		if flipped > score {
			score = flipped
		}
		if score > best.Confidence {
			best = Resolution{Game: game, Confidence: score}
		}
	}

	if best.Confidence < minTeamPairScore {
		r.logger.Debug().
			Str("away", awayTeam).
			Str("home", homeTeam).
			Float64("best_score", best.Confidence).
			Msg("no game met the team similarity floor")
		return Resolution{}
	}
	return best
}

// resolveByPlayers infers the event from which teams the slip's players
// belong to. One inferred team picks any game featuring it; two inferred
// teams require a game between exactly those two; more than two means a
// multi-event parlay this mechanism cannot pin to one game.
func (r *EventResolver) resolveByPlayers(ctx context.Context, games []models.GameData, slip []models.BetSelection) Resolution {
	if r.roster == nil {
		return Resolution{}
	}

	teams := make(map[string]struct{})
	for _, sel := range slip {
		if sel.Player == "" || extract.IsGameLevelMarket(sel.Market) {
			continue
		}
		if team := r.teamForPlayer(ctx, sel.Player); team != "" {
			teams[team] = struct{}{}
		}
	}

	switch len(teams) {
	case 0:
		return Resolution{}
	case 1:
		var team string
		for t := range teams {
			team = t
		}
		for i := range games {
			game := &games[i]
			if entity.TeamSimilarity(team, game.HomeTeam.Name) > minInferredTeamScore ||
				entity.TeamSimilarity(team, game.AwayTeam.Name) > minInferredTeamScore {
				return Resolution{Game: game, Confidence: singleTeamConfidence}
			}
		}
		return Resolution{}
	case 2:
		pair := make([]string, 0, 2)
		for t := range teams {
			pair = append(pair, t)
		}
		for i := range games {
			game := &games[i]
			if teamsMatchGame(pair[0], pair[1], game) || teamsMatchGame(pair[1], pair[0], game) {
				return Resolution{Game: game, Confidence: twoTeamConfidence}
			}
		}
		return Resolution{}
	default:
		r.logger.Debug().
			Int("inferred_teams", len(teams)).
			Msg("multi-event parlay, cannot infer a single game")
		return Resolution{}
	}
}

func teamsMatchGame(away, home string, game *models.GameData) bool {
	return entity.TeamSimilarity(away, game.AwayTeam.Name) > minInferredTeamScore &&
		entity.TeamSimilarity(home, game.HomeTeam.Name) > minInferredTeamScore
}

// teamForPlayer resolves a player's club, exact lookup first, then fuzzy
// matching over the full roster using name variations.
func (r *EventResolver) teamForPlayer(ctx context.Context, player string) string {
	if record, err := r.roster.FindPlayerExact(ctx, player); err == nil && record != nil {
		return entity.NormalizeTeamName(record.TeamName)
	}

	roster, err := r.roster.ListAllPlayers(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("roster listing failed, skipping player inference")
		return ""
	}

	variations := entity.NameVariations(player)
	bestScore := 0.0
	bestTeam := ""
	for _, record := range roster {
		score := entity.NameSimilarity(player, record.Name)
		for _, v := range variations {
			if s := entity.NameSimilarity(v, record.Name); s > score {
				score = s
			}
		}
		if score > bestScore {
			bestScore = score
			bestTeam = record.TeamName
		}
	}

	if bestScore < minPlayerMatchScore {
		return ""
	}
	return entity.NormalizeTeamName(bestTeam)
}
