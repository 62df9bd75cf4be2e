package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tmash55/oddsmash-sub001/internal/models"
	"github.com/tmash55/oddsmash-sub001/pkg/americanodds"
)

const (
	// Extraction trusts the model over per-field heuristics.
	extractionConfidence = 0.9
	// Spread legs whose sign cannot be verified against odds keep the
	// model's sign but get flagged down.
	unverifiedSpreadConfidence = 0.6

	defaultTemperature = 0.1
	defaultMaxTokens   = 2000
)

// sportsbookBrands are the betslip brands the slip-level detector knows.
var sportsbookBrands = []struct {
	needle string
	name   string
}{
	{"draftkings", "DraftKings"},
	{"fanduel", "FanDuel"},
	{"betmgm", "BetMGM"},
	{"caesars", "Caesars"},
	{"espn bet", "ESPN BET"},
	{"hard rock", "Hard Rock Bet"},
	{"bet365", "bet365"},
	{"fanatics", "Fanatics"},
	{"pinnacle", "Pinnacle"},
	{"bovada", "Bovada"},
}

// rawSelection is the untyped shape the model returns. Line and Odds stay
// loose because models mix numbers and strings regardless of instructions;
// normalizeSelection is the single trust boundary converting them.
type rawSelection struct {
	Player   string `json:"player"`
	Market   string `json:"market"`
	Line     any    `json:"line"`
	Odds     any    `json:"odds"`
	BetType  string `json:"betType"`
	Sport    string `json:"sport"`
	AwayTeam string `json:"awayTeam"`
	HomeTeam string `json:"homeTeam"`
	GameTime string `json:"gameTime"`
	GameDate string `json:"gameDate"`
}

// Extractor turns fused OCR text into typed bet selections.
type Extractor struct {
	completer   Completer
	logger      zerolog.Logger
	temperature float64
	maxTokens   int
}

// ExtractorConfig tunes the completion request issued per slip. Zero
// values fall back to the package defaults.
type ExtractorConfig struct {
	Temperature float64
	MaxTokens   int
}

// NewExtractor creates an extractor over the given completion backend.
func NewExtractor(completer Completer, config ExtractorConfig, logger zerolog.Logger) *Extractor {
	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}
	return &Extractor{
		completer:   completer,
		logger:      logger.With().Str("component", "bet_extractor").Logger(),
		temperature: config.Temperature,
		maxTokens:   config.MaxTokens,
	}
}

// Extract parses OCR text into a BetslipExtraction. It never fails: every
// internal error degrades to an empty selection list so callers can still
// return a partial response. The raw model response is returned alongside
// for audit.
func (e *Extractor) Extract(ctx context.Context, ocrText string) (models.BetslipExtraction, string) {
	extraction := models.BetslipExtraction{
		Selections: []models.BetSelection{},
		RawText:    ocrText,
		Metadata:   models.ExtractionMetadata{Sportsbook: DetectSportsbook(ocrText)},
	}

	if e.completer == nil {
		e.logger.Warn().Msg("no completion backend configured")
		return extraction, ""
	}

	response, err := e.completer.Complete(ctx, BuildExtractionPrompt(ocrText), CompletionOptions{
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
	})
	if err != nil {
		e.logger.Error().Err(err).Msg("completion request failed")
		return extraction, ""
	}

	raws, err := parseSelectionArray(response)
	if err != nil {
		e.logger.Warn().Err(err).Int("response_length", len(response)).Msg("failed to parse model response")
		return extraction, response
	}

	var total float64
	for i, raw := range raws {
		sel := e.normalizeSelection(i, raw, ocrText)
		extraction.Selections = append(extraction.Selections, sel)
		total += sel.Confidence
	}
	if len(extraction.Selections) > 0 {
		extraction.Confidence = total / float64(len(extraction.Selections))
	}

	e.logger.Info().
		Int("selections", len(extraction.Selections)).
		Str("sportsbook", extraction.Metadata.Sportsbook).
		Msg("extracted betslip")
	return extraction, response
}

// parseSelectionArray strips code fences and decodes the model's JSON array.
func parseSelectionArray(response string) ([]rawSelection, error) {
	cleaned := stripCodeFences(response)
	var raws []rawSelection
	if err := json.Unmarshal([]byte(cleaned), &raws); err != nil {
		return nil, fmt.Errorf("response is not a selection array: %w", err)
	}
	return raws, nil
}

// stripCodeFences removes a surrounding markdown fence, with or without a
// language marker.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// normalizeSelection converts one untyped model object into a typed
// BetSelection, applying the market-specific line conventions.
func (e *Extractor) normalizeSelection(index int, raw rawSelection, ocrText string) models.BetSelection {
	market := CanonicalMarket(raw.Market)
	sportKey := SportKeyFor(raw.Sport)
	oddsText := asOddsString(raw.Odds)
	confidence := extractionConfidence

	line := asLine(raw.Line)
	if line == nil {
		if d, ok := DefaultLineFor(market); ok {
			line = &d
		}
	}

	// "X+" means X - 0.5 everywhere except strikeouts, where the whole
	// number is the line. Only rewrite when the slip text shows the plus
	// pattern, so already-converted model output is left alone.
	if line != nil && market != MarketStrikeouts && !IsGameLevelMarket(market) {
		if line.IsInteger() && line.Sign() > 0 && strings.Contains(ocrText, line.String()+"+") {
			adjusted := line.Sub(halfPoint)
			line = &adjusted
		}
	}

	betType := deriveBetType(raw.BetType, market, raw.Player, ocrText)

	if market == MarketSpread && line != nil {
		if price, ok := americanodds.Parse(oddsText); ok {
			// Favorite lines are negative, underdog lines positive; the
			// odds sign is authoritative over whatever the slip printed.
			magnitude := line.Abs()
			if price < 0 {
				magnitude = magnitude.Neg()
			}
			line = &magnitude
		} else {
			confidence = unverifiedSpreadConfidence
		}
	}

	return models.BetSelection{
		ID:           fmt.Sprintf("sel_%d", index+1),
		Player:       strings.TrimSpace(raw.Player),
		Market:       market,
		Line:         line,
		BetType:      betType,
		Sport:        SportNameFor(sportKey),
		SportAPIKey:  sportKey,
		MarketAPIKey: MarketAPIKeyFor(sportKey, market),
		Confidence:   confidence,
		RawText:      reconstructRawText(raw.Player, market, betType, line, oddsText),
		Metadata: models.SelectionMetadata{
			Odds:     oddsText,
			AwayTeam: strings.TrimSpace(raw.AwayTeam),
			HomeTeam: strings.TrimSpace(raw.HomeTeam),
			GameTime: strings.TrimSpace(raw.GameTime),
			GameDate: strings.TrimSpace(raw.GameDate),
		},
	}
}

// deriveBetType resolves the bet direction: the model's explicit value if
// valid, then the market, then a scan of the OCR text around the player
// name for a lone "under".
func deriveBetType(rawType, market, player, ocrText string) models.BetType {
	lowered := strings.ToLower(strings.TrimSpace(rawType))
	if models.ValidBetType(lowered) {
		return models.BetType(lowered)
	}

	switch market {
	case MarketMoneyline:
		return models.BetTypeMoneyline
	case MarketSpread:
		return models.BetTypeSpread
	}

	if player != "" {
		text := strings.ToLower(ocrText)
		if idx := strings.Index(text, strings.ToLower(player)); idx >= 0 {
			start := idx - 40
			if start < 0 {
				start = 0
			}
			end := idx + len(player) + 80
			if end > len(text) {
				end = len(text)
			}
			window := text[start:end]
			if strings.Contains(window, "under") && !strings.Contains(window, "over") {
				return models.BetTypeUnder
			}
		}
	}
	return models.BetTypeOver
}

// reconstructRawText renders a short human-readable audit string.
func reconstructRawText(player, market string, betType models.BetType, line *decimal.Decimal, odds string) string {
	var b strings.Builder
	if player != "" {
		b.WriteString(player)
		b.WriteByte(' ')
	}
	switch betType {
	case models.BetTypeMoneyline:
		b.WriteString("Moneyline")
	case models.BetTypeSpread:
		if line != nil {
			b.WriteString(line.String())
			b.WriteByte(' ')
		}
		b.WriteString("Spread")
	default:
		b.WriteString(string(betType))
		if line != nil {
			b.WriteByte(' ')
			b.WriteString(line.String())
		}
		b.WriteByte(' ')
		b.WriteString(market)
	}
	if odds != "" {
		fmt.Fprintf(&b, " (%s)", odds)
	}
	return b.String()
}

// DetectSportsbook identifies the slip's brand from OCR text, or "Unknown".
func DetectSportsbook(ocrText string) string {
	lowered := strings.ToLower(ocrText)
	for _, brand := range sportsbookBrands {
		if strings.Contains(lowered, brand.needle) {
			return brand.name
		}
	}
	return "Unknown"
}

// asLine converts the model's loose line value to a decimal.
func asLine(v any) *decimal.Decimal {
	switch t := v.(type) {
	case float64:
		d := decimal.NewFromFloat(t)
		return &d
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" || strings.EqualFold(trimmed, "null") {
			return nil
		}
		d, err := decimal.NewFromString(trimmed)
		if err != nil {
			return nil
		}
		return &d
	default:
		return nil
	}
}

// asOddsString renders the model's loose odds value as display text.
func asOddsString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return americanodds.Format(int(t))
	default:
		return ""
	}
}
