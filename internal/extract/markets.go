package extract

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Canonical market tags. Every sportsbook-brand synonym normalizes to one
// of these before any downstream matching happens.
const (
	MarketStrikeouts   = "Strikeouts"
	MarketHomeRuns     = "Home_Runs"
	MarketDoubles      = "Doubles"
	MarketTriples      = "Triples"
	MarketSingles      = "Singles"
	MarketStolenBases  = "Stolen_Bases"
	MarketHits         = "Hits"
	MarketTotalBases   = "Total_Bases"
	MarketRBIs         = "RBIs"
	MarketHitsRunsRBIs = "Hits_Runs_RBIs"
	MarketRuns         = "Runs"
	MarketOutsRecorded = "Outs_Recorded"
	MarketEarnedRuns   = "Earned_Runs"
	MarketPoints       = "Points"
	MarketRebounds     = "Rebounds"
	MarketAssists      = "Assists"
	MarketGoals        = "Goals"
	MarketShots        = "Shots"
	MarketMoneyline    = "Moneyline"
	MarketSpread       = "Spread"
	MarketTotal        = "Total"
)

// marketSynonyms maps normalized sportsbook market labels to canonical tags.
var marketSynonyms = map[string]string{
	"home run": MarketHomeRuns, "home runs": MarketHomeRuns,
	"to hit a home run": MarketHomeRuns, "homer": MarketHomeRuns,
	"homers": MarketHomeRuns, "hr": MarketHomeRuns,

	"double": MarketDoubles, "doubles": MarketDoubles, "to hit a double": MarketDoubles,
	"triple": MarketTriples, "triples": MarketTriples, "to hit a triple": MarketTriples,
	"single": MarketSingles, "singles": MarketSingles, "to record a single": MarketSingles,

	"stolen base": MarketStolenBases, "stolen bases": MarketStolenBases,
	"to steal a base": MarketStolenBases, "sb": MarketStolenBases,

	"hit": MarketHits, "hits": MarketHits, "to record a hit": MarketHits,

	"strikeout": MarketStrikeouts, "strikeouts": MarketStrikeouts,
	"strike outs": MarketStrikeouts, "pitcher strikeouts": MarketStrikeouts,
	"ks": MarketStrikeouts, "k": MarketStrikeouts,

	"total bases": MarketTotalBases, "bases": MarketTotalBases,

	"rbi": MarketRBIs, "rbis": MarketRBIs, "runs batted in": MarketRBIs,

	"hits runs rbis": MarketHitsRunsRBIs, "hits runs and rbis": MarketHitsRunsRBIs,
	"h r rbi": MarketHitsRunsRBIs,

	"run": MarketRuns, "runs": MarketRuns, "runs scored": MarketRuns,
	"to score a run": MarketRuns,

	"outs": MarketOutsRecorded, "outs recorded": MarketOutsRecorded,

	"earned runs": MarketEarnedRuns, "er": MarketEarnedRuns,

	"points": MarketPoints, "pts": MarketPoints,
	"rebounds": MarketRebounds, "rebs": MarketRebounds,
	"assists": MarketAssists, "asts": MarketAssists,
	"goals": MarketGoals, "to score a goal": MarketGoals,
	"shots": MarketShots, "shots on goal": MarketShots, "sog": MarketShots,

	"moneyline": MarketMoneyline, "money line": MarketMoneyline,
	"ml": MarketMoneyline, "to win": MarketMoneyline, "h2h": MarketMoneyline,

	"spread": MarketSpread, "point spread": MarketSpread,
	"run line": MarketSpread, "runline": MarketSpread,
	"puck line": MarketSpread, "handicap": MarketSpread,

	"total": MarketTotal, "totals": MarketTotal, "over under": MarketTotal,
	"game total": MarketTotal, "total runs": MarketTotal, "total points": MarketTotal,
}

// sportKeys maps sport display names to feed sport identifiers.
var sportKeys = map[string]string{
	"baseball":   "baseball_mlb",
	"mlb":        "baseball_mlb",
	"basketball": "basketball_nba",
	"nba":        "basketball_nba",
	"football":   "americanfootball_nfl",
	"nfl":        "americanfootball_nfl",
	"hockey":     "icehockey_nhl",
	"nhl":        "icehockey_nhl",
}

// DefaultSportKey is assumed when the slip names no recognizable sport.
const DefaultSportKey = "baseball_mlb"

// sportNames maps feed keys back to display names.
var sportNames = map[string]string{
	"baseball_mlb":         "Baseball",
	"basketball_nba":       "Basketball",
	"americanfootball_nfl": "Football",
	"icehockey_nhl":        "Hockey",
}

// marketAPIKeys maps (sport key, canonical market) to the feed's market
// identifier. Markets with an alternate-lines feed carry both keys joined
// by a comma, primary first.
var marketAPIKeys = map[string]map[string]string{
	"baseball_mlb": {
		MarketStrikeouts:   "pitcher_strikeouts,pitcher_strikeouts_alternate",
		MarketHomeRuns:     "batter_home_runs,batter_home_runs_alternate",
		MarketHits:         "batter_hits,batter_hits_alternate",
		MarketTotalBases:   "batter_total_bases,batter_total_bases_alternate",
		MarketRBIs:         "batter_rbis,batter_rbis_alternate",
		MarketDoubles:      "batter_doubles",
		MarketTriples:      "batter_triples",
		MarketSingles:      "batter_singles",
		MarketStolenBases:  "batter_stolen_bases",
		MarketHitsRunsRBIs: "batter_hits_runs_rbis",
		MarketRuns:         "batter_runs_scored",
		MarketOutsRecorded: "pitcher_outs",
		MarketEarnedRuns:   "pitcher_earned_runs",
		MarketMoneyline:    "h2h",
		MarketSpread:       "spreads",
		MarketTotal:        "totals",
	},
	"basketball_nba": {
		MarketPoints:    "player_points,player_points_alternate",
		MarketRebounds:  "player_rebounds,player_rebounds_alternate",
		MarketAssists:   "player_assists,player_assists_alternate",
		MarketMoneyline: "h2h",
		MarketSpread:    "spreads",
		MarketTotal:     "totals",
	},
	"icehockey_nhl": {
		MarketGoals:     "player_goals",
		MarketShots:     "player_shots_on_goal",
		MarketMoneyline: "h2h",
		MarketSpread:    "spreads",
		MarketTotal:     "totals",
	},
	"americanfootball_nfl": {
		MarketMoneyline: "h2h",
		MarketSpread:    "spreads",
		MarketTotal:     "totals",
	},
}

var halfPoint = decimal.NewFromFloat(0.5)

// defaultLines holds per-market line defaults applied when the model gives
// none. Binary "to do X" props settle at the half-point.
var defaultLines = map[string]decimal.Decimal{
	MarketHomeRuns:    halfPoint,
	MarketDoubles:     halfPoint,
	MarketTriples:     halfPoint,
	MarketSingles:     halfPoint,
	MarketStolenBases: halfPoint,
	MarketHits:        halfPoint,
	MarketGoals:       halfPoint,
}

// gameLevelMarkets are matched by team name rather than player description.
var gameLevelMarkets = map[string]struct{}{
	MarketMoneyline: {},
	MarketSpread:    {},
	MarketTotal:     {},
}

// IsGameLevelMarket reports whether the market resolves against team-level
// outcomes.
func IsGameLevelMarket(market string) bool {
	_, ok := gameLevelMarkets[market]
	return ok
}

// normalizeLabel lowercases, strips punctuation, and collapses whitespace.
func normalizeLabel(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '+', r == '/', r == '-':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// CanonicalMarket maps any brand's market label to its canonical tag. The
// cleaned label passes through unchanged when no synonym matches.
func CanonicalMarket(raw string) string {
	key := normalizeLabel(raw)
	if canonical, ok := marketSynonyms[key]; ok {
		return canonical
	}
	if raw == "" {
		return ""
	}
	// Already-canonical tags survive round trips.
	for _, canonical := range marketSynonyms {
		if canonical == raw {
			return raw
		}
	}
	return titleTag(key)
}

// titleTag turns "outs recorded" into "Outs_Recorded".
func titleTag(label string) string {
	fields := strings.Fields(label)
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, "_")
}

// SportKeyFor resolves a sport display name to the feed key, defaulting to
// MLB when unrecognized.
func SportKeyFor(sport string) string {
	if key, ok := sportKeys[normalizeLabel(sport)]; ok {
		return key
	}
	return DefaultSportKey
}

// SportNameFor resolves a feed key back to a display name.
func SportNameFor(sportKey string) string {
	if name, ok := sportNames[sportKey]; ok {
		return name
	}
	return sportKey
}

// MarketAPIKeyFor resolves the feed market identifier for a canonical
// market within a sport.
func MarketAPIKeyFor(sportKey, market string) string {
	if byMarket, ok := marketAPIKeys[sportKey]; ok {
		return byMarket[market]
	}
	return ""
}

// DefaultLineFor returns the per-market default line, if the market has one.
func DefaultLineFor(market string) (decimal.Decimal, bool) {
	d, ok := defaultLines[market]
	return d, ok
}
