package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetType is the direction of a selection.
type BetType string

const (
	BetTypeOver      BetType = "over"
	BetTypeUnder     BetType = "under"
	BetTypeMoneyline BetType = "moneyline"
	BetTypeSpread    BetType = "spread"
)

// ValidBetType reports whether s is one of the four recognized bet types.
func ValidBetType(s string) bool {
	switch BetType(s) {
	case BetTypeOver, BetTypeUnder, BetTypeMoneyline, BetTypeSpread:
		return true
	}
	return false
}

// BetSelection is one leg of a parsed betslip.
type BetSelection struct {
	ID           string            `json:"id"`
	Player       string            `json:"player,omitempty"`
	Market       string            `json:"market"`
	Line         *decimal.Decimal  `json:"line,omitempty"`
	BetType      BetType           `json:"betType"`
	Sport        string            `json:"sport"`
	SportAPIKey  string            `json:"sportApiKey"`
	MarketAPIKey string            `json:"marketApiKey"`
	GameID       string            `json:"gameId,omitempty"`
	Confidence   float64           `json:"confidence"`
	RawText      string            `json:"rawText"`
	Metadata     SelectionMetadata `json:"metadata"`
}

// SelectionMetadata carries auxiliary fields parsed alongside a selection.
type SelectionMetadata struct {
	Odds     string `json:"odds,omitempty"`
	AwayTeam string `json:"awayTeam,omitempty"`
	HomeTeam string `json:"homeTeam,omitempty"`
	GameTime string `json:"gameTime,omitempty"`
	GameDate string `json:"gameDate,omitempty"`
}

// BetslipExtraction is the full parse of one betslip image.
type BetslipExtraction struct {
	Selections []BetSelection     `json:"selections"`
	Confidence float64            `json:"confidence"`
	RawText    string             `json:"rawText"`
	Metadata   ExtractionMetadata `json:"metadata"`
}

// ExtractionMetadata holds slip-level context detected during extraction.
type ExtractionMetadata struct {
	Sportsbook string `json:"sportsbook"`
}

// TeamInfo identifies one side of a sporting event.
type TeamInfo struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// GameData is one sporting event from the feed.
type GameData struct {
	SportKey     string    `json:"sport_key"`
	EventID      string    `json:"event_id"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     TeamInfo  `json:"home_team"`
	AwayTeam     TeamInfo  `json:"away_team"`
	Status       string    `json:"status"`
}

// Outcome is one priced line from one bookmaker for one market.
type Outcome struct {
	Name        string           `json:"name"`
	Price       int              `json:"price"`
	Point       *decimal.Decimal `json:"point,omitempty"`
	Description string           `json:"description,omitempty"`
	SID         string           `json:"sid,omitempty"`
	Link        string           `json:"link,omitempty"`
}

// BookmakerQuote is the matched price at one sportsbook for one selection.
type BookmakerQuote struct {
	Price      int              `json:"price"`
	Point      *decimal.Decimal `json:"point,omitempty"`
	Link       string           `json:"link,omitempty"`
	SID        string           `json:"sid,omitempty"`
	LastUpdate time.Time        `json:"last_update"`
}

// OddsSnapshot is the per-selection odds comparison across sportsbooks.
type OddsSnapshot struct {
	Bookmakers map[string]BookmakerQuote `json:"bookmakers"`
	Metadata   SnapshotMetadata          `json:"metadata"`
}

// SnapshotMetadata records how the snapshot search went.
type SnapshotMetadata struct {
	MatchesFound    int       `json:"matches_found"`
	TotalBookmakers int       `json:"total_bookmakers"`
	BestOdds        *int      `json:"best_odds,omitempty"`
	BestBook        string    `json:"best_book,omitempty"`
	PlayerSearched  string    `json:"player_searched"`
	LineSearched    string    `json:"line_searched"`
	BetTypeSearched string    `json:"bet_type_searched"`
	MarketSearched  string    `json:"market_searched"`
	LastUpdated     time.Time `json:"last_updated"`
	Error           string    `json:"error,omitempty"`
}

// ResolvedSelection is a selection plus its odds comparison and side data.
type ResolvedSelection struct {
	BetSelection
	CurrentOdds *OddsSnapshot   `json:"currentOdds,omitempty"`
	HitRates    *HitRateProfile `json:"hitRates,omitempty"`
}

// HitRateProfile summarizes how often a prop line has cleared recently.
type HitRateProfile struct {
	Player        string          `json:"player"`
	Market        string          `json:"market"`
	Line          decimal.Decimal `json:"line"`
	ImpliedProb   float64         `json:"implied_prob"`
	ConsensusOdds int             `json:"consensus_odds"`
	BookCount     int             `json:"book_count"`
}

// OddsSummary aggregates fetch outcomes across a scan.
type OddsSummary struct {
	SuccessfulOddsFetches int `json:"successfulOddsFetches"`
	FailedOddsFetches     int `json:"failedOddsFetches"`
	TotalBookmakers       int `json:"totalBookmakers"`
}

// ScanResponse is the final payload for one scanned betslip.
type ScanResponse struct {
	ScanID          string              `json:"scanId"`
	Sportsbook      string              `json:"sportsbook"`
	TotalSelections int                 `json:"totalSelections"`
	Confidence      float64             `json:"confidence"`
	Selections      []ResolvedSelection `json:"selections"`
	OddsData        OddsSummary         `json:"oddsData"`
}

// ScanRecord is the persistence hand-off shape for one finished scan.
// HitRatesData aggregates the per-selection profiles by selection ID so
// storage consumers can read them without walking the selections.
type ScanRecord struct {
	RecordID        string                     `json:"record_id"`
	Sportsbook      string                     `json:"sportsbook"`
	Title           string                     `json:"title"`
	Selections      []ResolvedSelection        `json:"selections"`
	RawOCRText      string                     `json:"raw_ocr_text"`
	LLMResponse     string                     `json:"llm_response"`
	ScanConfidence  float64                    `json:"scan_confidence"`
	OddsWereFetched bool                       `json:"odds_were_fetched"`
	HitRatesData    map[string]*HitRateProfile `json:"hit_rates_data,omitempty"`
	CreatedAt       time.Time                  `json:"created_at"`
}

// PlayerRecord is one roster entry used for player-to-team inference.
type PlayerRecord struct {
	Name             string `json:"name"`
	TeamName         string `json:"team_name"`
	TeamAbbreviation string `json:"team_abbreviation"`
}
