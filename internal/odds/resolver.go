package odds

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tmash55/oddsmash-sub001/internal/entity"
	"github.com/tmash55/oddsmash-sub001/internal/extract"
	"github.com/tmash55/oddsmash-sub001/internal/models"
	"github.com/tmash55/oddsmash-sub001/pkg/americanodds"
)

const (
	// minPropMatchScore is the floor for a player-prop outcome description
	// to count as the selection's player.
	minPropMatchScore = 0.7
	// minTeamMatchScore is the floor for fuzzy team matching on game-level
	// markets.
	minTeamMatchScore = 0.8
	// strongPropMatchScore marks a player match confident enough that
	// multiple equally-scored outcomes are distinct lines, not ambiguity.
	strongPropMatchScore = 0.9
	// propTieWindow groups candidate scores that are too close to call.
	propTieWindow = 0.1
)

var halfPoint = decimal.NewFromFloat(0.5)

// OddsSource fetches bookmaker listings for one event.
type OddsSource interface {
	EventOdds(ctx context.Context, sportKey, eventID string, markets, bookmakers []string) ([]models.BookmakerOdds, error)
}

// Resolver builds per-selection odds snapshots across sportsbooks.
type Resolver struct {
	source OddsSource
	logger zerolog.Logger
}

// NewResolver creates an odds resolver over the given feed.
func NewResolver(source OddsSource, logger zerolog.Logger) *Resolver {
	return &Resolver{
		source: source,
		logger: logger.With().Str("component", "odds_resolver").Logger(),
	}
}

// Snapshot resolves current odds for one selection across the given
// sportsbooks. It never fails: fetch errors and missing event IDs come back
// as empty snapshots with the error recorded in metadata.
func (r *Resolver) Snapshot(ctx context.Context, sel models.BetSelection, bookmakers []string) models.OddsSnapshot {
	snapshot := models.OddsSnapshot{
		Bookmakers: make(map[string]models.BookmakerQuote),
		Metadata: models.SnapshotMetadata{
			PlayerSearched:  sel.Player,
			LineSearched:    lineText(sel.Line),
			BetTypeSearched: string(sel.BetType),
			MarketSearched:  sel.Market,
			LastUpdated:     time.Now().UTC(),
		},
	}

	if sel.GameID == "" {
		snapshot.Metadata.Error = "No event ID available"
		return snapshot
	}

	markets := splitMarkets(sel.MarketAPIKey)
	if len(markets) == 0 {
		snapshot.Metadata.Error = "No market key configured for " + sel.Market
		return snapshot
	}

	listings, err := r.source.EventOdds(ctx, sel.SportAPIKey, sel.GameID, markets, bookmakers)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("selection_id", sel.ID).
			Str("event_id", sel.GameID).
			Msg("odds fetch failed")
		snapshot.Metadata.Error = err.Error()
		return snapshot
	}

	snapshot.Metadata.TotalBookmakers = len(listings)

	for _, bm := range listings {
		quote := r.matchBookmaker(sel, bm)
		if quote == nil {
			continue
		}
		snapshot.Bookmakers[bm.Key] = *quote
		snapshot.Metadata.MatchesFound++

		if snapshot.Metadata.BestOdds == nil || americanodds.Better(quote.Price, *snapshot.Metadata.BestOdds) {
			price := quote.Price
			snapshot.Metadata.BestOdds = &price
			snapshot.Metadata.BestBook = bm.Key
		}
	}

	r.logger.Debug().
		Str("selection_id", sel.ID).
		Int("matches", snapshot.Metadata.MatchesFound).
		Int("bookmakers", snapshot.Metadata.TotalBookmakers).
		Msg("resolved odds snapshot")
	return snapshot
}

// matchBookmaker finds this bookmaker's price for the selection, or nil if
// it does not list the exact line.
func (r *Resolver) matchBookmaker(sel models.BetSelection, bm models.BookmakerOdds) *models.BookmakerQuote {
	var merged []models.Outcome
	for _, market := range bm.Markets {
		merged = append(merged, market.Outcomes...)
	}
	if len(merged) == 0 {
		return nil
	}

	var candidates []models.Outcome
	if extract.IsGameLevelMarket(sel.Market) {
		candidates = matchGameLevel(sel, merged)
	} else {
		candidates = matchPlayerProp(sel, merged)
	}
	if len(candidates) == 0 {
		return nil
	}

	outcome := selectByLine(sel, candidates)
	if outcome == nil {
		return nil
	}

	return &models.BookmakerQuote{
		Price:      outcome.Price,
		Point:      outcome.Point,
		Link:       outcome.Link,
		SID:        outcome.SID,
		LastUpdate: bm.LastUpdate,
	}
}

// matchGameLevel filters outcomes for moneyline, spread, and total markets.
func matchGameLevel(sel models.BetSelection, outcomes []models.Outcome) []models.Outcome {
	var matched []models.Outcome
	switch sel.Market {
	case extract.MarketMoneyline:
		for _, o := range outcomes {
			if teamNameMatches(sel.Player, o.Name) {
				matched = append(matched, o)
			}
		}
	case extract.MarketTotal:
		want := "Over"
		if sel.BetType == models.BetTypeUnder {
			want = "Under"
		}
		for _, o := range outcomes {
			if strings.EqualFold(o.Name, want) && pointsEqual(o.Point, sel.Line) {
				matched = append(matched, o)
			}
		}
	case extract.MarketSpread:
		for _, o := range outcomes {
			if teamNameMatches(sel.Player, o.Name) && pointMagnitudesEqual(o.Point, sel.Line) {
				matched = append(matched, o)
			}
		}
	}
	return matched
}

// teamNameMatches tries exact canonical equality, then fuzzy similarity.
func teamNameMatches(want, have string) bool {
	if entity.NormalizeTeamName(want) == entity.NormalizeTeamName(have) {
		return true
	}
	return entity.TeamSimilarity(want, have) >= minTeamMatchScore
}

// matchPlayerProp resolves prop outcomes by description against the
// selection's player name and its variations. Ties within the window are
// all kept: a sub-0.9 tie is genuine ambiguity to preserve, and a 0.9+ tie
// is the same player at distinct lines.
func matchPlayerProp(sel models.BetSelection, outcomes []models.Outcome) []models.Outcome {
	variations := entity.NameVariations(sel.Player)

	type scored struct {
		outcome models.Outcome
		score   float64
	}
	var candidates []scored
	best := 0.0
	for _, o := range outcomes {
		if o.Description == "" {
			continue
		}
		score := entity.NameSimilarity(sel.Player, o.Description)
		for _, v := range variations {
			if s := entity.NameSimilarity(v, o.Description); s > score {
				score = s
			}
		}
		if score < minPropMatchScore {
			continue
		}
		candidates = append(candidates, scored{outcome: o, score: score})
		if score > best {
			best = score
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	var matched []models.Outcome
	if best >= strongPropMatchScore {
		for _, c := range candidates {
			if c.score == best {
				matched = append(matched, c.outcome)
			}
		}
	} else {
		for _, c := range candidates {
			if best-c.score <= propTieWindow {
				matched = append(matched, c.outcome)
			}
		}
	}
	return matched
}

// selectByLine picks the candidate at the requested (direction, line). The
// only permitted line shift is the strikeout X+ versus Over X.5 convention
// offset; everything else is exact or nothing.
func selectByLine(sel models.BetSelection, candidates []models.Outcome) *models.Outcome {
	if sel.Market == extract.MarketMoneyline {
		return &candidates[0]
	}
	if extract.IsGameLevelMarket(sel.Market) {
		// Totals and spreads were already point-filtered.
		return &candidates[0]
	}

	lines := []*decimal.Decimal{sel.Line}
	if sel.Market == extract.MarketStrikeouts && sel.Line != nil {
		var shifted decimal.Decimal
		if sel.Line.IsInteger() {
			shifted = sel.Line.Sub(halfPoint)
		} else {
			shifted = sel.Line.Add(halfPoint)
		}
		lines = append(lines, &shifted)
	}

	want := "Over"
	if sel.BetType == models.BetTypeUnder {
		want = "Under"
	}

	for _, line := range lines {
		for i := range candidates {
			o := &candidates[i]
			if strings.EqualFold(o.Name, want) && pointsEqual(o.Point, line) {
				return o
			}
		}
	}
	return nil
}

func pointsEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func pointMagnitudesEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Abs().Equal(b.Abs())
}

func splitMarkets(marketKey string) []string {
	var markets []string
	for _, m := range strings.Split(marketKey, ",") {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			markets = append(markets, trimmed)
		}
	}
	return markets
}

func lineText(line *decimal.Decimal) string {
	if line == nil {
		return "none"
	}
	return line.String()
}
