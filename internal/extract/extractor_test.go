package extract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tmash55/oddsmash-sub001/internal/extract"
	"github.com/tmash55/oddsmash-sub001/internal/mocks"
	"github.com/tmash55/oddsmash-sub001/internal/models"
)

// testExtractorSetup is a helper struct to hold test dependencies
type testExtractorSetup struct {
	mockCompleter *mocks.MockCompleter
	extractor     *extract.Extractor
	ctx           context.Context
}

// setupTestExtractor creates an extractor with a mocked completion backend
func setupTestExtractor(t *testing.T) *testExtractorSetup {
	ctrl := gomock.NewController(t)
	mockCompleter := mocks.NewMockCompleter(ctrl)

	return &testExtractorSetup{
		mockCompleter: mockCompleter,
		extractor:     extract.NewExtractor(mockCompleter, extract.ExtractorConfig{}, zerolog.Nop()),
		ctx:           context.Background(),
	}
}

func (s *testExtractorSetup) respond(json string) {
	s.mockCompleter.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(json, nil)
}

func requireLine(t *testing.T, sel models.BetSelection, want string) {
	t.Helper()
	require.NotNil(t, sel.Line)
	assert.True(t, sel.Line.Equal(decimal.RequireFromString(want)),
		"line = %s, want %s", sel.Line.String(), want)
}

// TestExtract_ParlayOddsAssignment reproduces the aggregate-vs-leg odds rule:
// the leg with printed odds keeps them, the other gets N/A, and nobody gets
// the parlay price.
func TestExtract_ParlayOddsAssignment(t *testing.T) {
	setup := setupTestExtractor(t)

	ocrText := `2 leg parlay Yainer Diaz To Hit A Home Run, Gavin Sheets To Hit A Home Run +3200
Gavin Sheets TO HIT A HOME RUN +450`
	setup.respond(`[
		{"player": "Yainer Diaz", "market": "Home_Runs", "line": 0.5, "betType": "over", "odds": "N/A", "sport": "Baseball"},
		{"player": "Gavin Sheets", "market": "Home_Runs", "line": 0.5, "betType": "over", "odds": "+450", "sport": "Baseball"}
	]`)

	extraction, _ := setup.extractor.Extract(setup.ctx, ocrText)

	require.Len(t, extraction.Selections, 2)
	diaz, sheets := extraction.Selections[0], extraction.Selections[1]
	assert.Equal(t, "N/A", diaz.Metadata.Odds)
	assert.Equal(t, "+450", sheets.Metadata.Odds)
	assert.NotEqual(t, "+3200", diaz.Metadata.Odds)
	assert.NotEqual(t, "+3200", sheets.Metadata.Odds)
}

// TestExtract_StrikeoutLineConventions tests that strikeout lines are kept
// verbatim in both the X+ and Over X.5 forms.
func TestExtract_StrikeoutLineConventions(t *testing.T) {
	tests := []struct {
		name     string
		ocrText  string
		response string
		wantLine string
	}{
		{
			name:     "Plus form keeps whole number",
			ocrText:  "Paul Skenes 7+ Strikeouts +120",
			response: `[{"player": "Paul Skenes", "market": "Strikeouts", "line": 7, "betType": "over", "odds": "+120", "sport": "Baseball"}]`,
			wantLine: "7",
		},
		{
			name:     "Over form keeps decimal",
			ocrText:  "Paul Skenes Over 6.5 Strikeouts -110",
			response: `[{"player": "Paul Skenes", "market": "Strikeouts", "line": 6.5, "betType": "over", "odds": "-110", "sport": "Baseball"}]`,
			wantLine: "6.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup := setupTestExtractor(t)
			setup.respond(tt.response)

			extraction, _ := setup.extractor.Extract(setup.ctx, tt.ocrText)

			require.Len(t, extraction.Selections, 1)
			sel := extraction.Selections[0]
			requireLine(t, sel, tt.wantLine)
			assert.Equal(t, models.BetTypeOver, sel.BetType)
		})
	}
}

// TestExtract_PlusConversionForOtherProps tests X+ becoming X-0.5 outside
// strikeouts, even when the model forgot to convert.
func TestExtract_PlusConversionForOtherProps(t *testing.T) {
	setup := setupTestExtractor(t)

	ocrText := "Aaron Judge 2+ Total Bases -120"
	setup.respond(`[{"player": "Aaron Judge", "market": "Total_Bases", "line": 2, "betType": "over", "odds": "-120", "sport": "Baseball"}]`)

	extraction, _ := setup.extractor.Extract(setup.ctx, ocrText)

	require.Len(t, extraction.Selections, 1)
	requireLine(t, extraction.Selections[0], "1.5")
}

// TestExtract_SpreadSignCorrection tests the run-line scenario: negative
// odds force the line negative regardless of the printed sign.
func TestExtract_SpreadSignCorrection(t *testing.T) {
	setup := setupTestExtractor(t)

	ocrText := "Milwaukee Brewers +1.5 -166 RUN LINE"
	setup.respond(`[{"player": "Milwaukee Brewers", "market": "RUN LINE", "line": 1.5, "betType": "spread", "odds": "-166", "sport": "Baseball"}]`)

	extraction, _ := setup.extractor.Extract(setup.ctx, ocrText)

	require.Len(t, extraction.Selections, 1)
	sel := extraction.Selections[0]
	assert.Equal(t, extract.MarketSpread, sel.Market)
	requireLine(t, sel, "-1.5")
	assert.Equal(t, "-166", sel.Metadata.Odds)
	assert.Equal(t, models.BetTypeSpread, sel.BetType)
}

// TestExtract_SpreadWithoutOddsFlagsLowConfidence tests the sign-correction
// escape hatch when odds are missing.
func TestExtract_SpreadWithoutOddsFlagsLowConfidence(t *testing.T) {
	setup := setupTestExtractor(t)

	setup.respond(`[{"player": "Milwaukee Brewers", "market": "Spread", "line": 1.5, "betType": "spread", "odds": "N/A", "sport": "Baseball"}]`)

	extraction, _ := setup.extractor.Extract(setup.ctx, "Milwaukee Brewers +1.5 RUN LINE")

	require.Len(t, extraction.Selections, 1)
	sel := extraction.Selections[0]
	requireLine(t, sel, "1.5")
	assert.Less(t, sel.Confidence, 0.9)
}

// TestExtract_MarketNormalization tests brand synonyms collapsing to
// canonical tags and feed keys being attached.
func TestExtract_MarketNormalization(t *testing.T) {
	setup := setupTestExtractor(t)

	setup.respond(`[
		{"player": "Gavin Sheets", "market": "To Hit A Home Run", "betType": "over", "odds": "+450", "sport": "Baseball"},
		{"player": "Houston Astros", "market": "money line", "odds": "-150", "sport": "Baseball"}
	]`)

	extraction, _ := setup.extractor.Extract(setup.ctx, "slip text")

	require.Len(t, extraction.Selections, 2)

	prop := extraction.Selections[0]
	assert.Equal(t, extract.MarketHomeRuns, prop.Market)
	assert.Equal(t, "baseball_mlb", prop.SportAPIKey)
	assert.Equal(t, "batter_home_runs,batter_home_runs_alternate", prop.MarketAPIKey)
	requireLine(t, prop, "0.5") // binary prop default

	ml := extraction.Selections[1]
	assert.Equal(t, extract.MarketMoneyline, ml.Market)
	assert.Equal(t, "h2h", ml.MarketAPIKey)
	assert.Nil(t, ml.Line)
	assert.Equal(t, models.BetTypeMoneyline, ml.BetType)
}

// TestExtract_UnderNeighborhoodScan tests betType derivation from OCR text
func TestExtract_UnderNeighborhoodScan(t *testing.T) {
	setup := setupTestExtractor(t)

	ocrText := "Gerrit Cole Under 6.5 strikeouts -105"
	setup.respond(`[{"player": "Gerrit Cole", "market": "Strikeouts", "line": 6.5, "odds": "-105", "sport": "Baseball"}]`)

	extraction, _ := setup.extractor.Extract(setup.ctx, ocrText)

	require.Len(t, extraction.Selections, 1)
	assert.Equal(t, models.BetTypeUnder, extraction.Selections[0].BetType)
}

// TestExtract_CodeFencedResponse tests fence stripping
func TestExtract_CodeFencedResponse(t *testing.T) {
	setup := setupTestExtractor(t)

	setup.respond("```json\n[{\"player\": \"Gavin Sheets\", \"market\": \"Hits\", \"line\": 1.5, \"betType\": \"over\", \"odds\": \"-130\", \"sport\": \"Baseball\"}]\n```")

	extraction, _ := setup.extractor.Extract(setup.ctx, "slip text")

	require.Len(t, extraction.Selections, 1)
	assert.Equal(t, extract.MarketHits, extraction.Selections[0].Market)
}

// TestExtract_ParseFailureReturnsEmpty tests graceful degradation on bad JSON
func TestExtract_ParseFailureReturnsEmpty(t *testing.T) {
	setup := setupTestExtractor(t)
	setup.respond("I could not find any bets on this slip, sorry!")

	extraction, raw := setup.extractor.Extract(setup.ctx, "slip text")

	assert.Empty(t, extraction.Selections)
	assert.Zero(t, extraction.Confidence)
	assert.NotEmpty(t, raw)
}

// TestExtract_CompleterFailureReturnsEmpty tests backend error degradation
func TestExtract_CompleterFailureReturnsEmpty(t *testing.T) {
	setup := setupTestExtractor(t)
	setup.mockCompleter.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("rate limited"))

	extraction, raw := setup.extractor.Extract(setup.ctx, "slip text")

	assert.Empty(t, extraction.Selections)
	assert.Empty(t, raw)
}

// TestExtract_SportsbookDetection tests slip-level brand detection
func TestExtract_SportsbookDetection(t *testing.T) {
	assert.Equal(t, "DraftKings", extract.DetectSportsbook("DRAFTKINGS Sportsbook\n2 leg parlay"))
	assert.Equal(t, "FanDuel", extract.DetectSportsbook("FanDuel receipt"))
	assert.Equal(t, "Unknown", extract.DetectSportsbook("some corner store receipt"))
}

// TestExtract_ConfidenceIsMean tests slip confidence aggregation
func TestExtract_ConfidenceIsMean(t *testing.T) {
	setup := setupTestExtractor(t)

	// One verified selection at 0.9 and one unverifiable spread at 0.6.
	setup.respond(`[
		{"player": "Gavin Sheets", "market": "Hits", "line": 1.5, "betType": "over", "odds": "-130", "sport": "Baseball"},
		{"player": "Milwaukee Brewers", "market": "Spread", "line": 1.5, "betType": "spread", "odds": "N/A", "sport": "Baseball"}
	]`)

	extraction, _ := setup.extractor.Extract(setup.ctx, "slip text")

	require.Len(t, extraction.Selections, 2)
	assert.InDelta(t, 0.75, extraction.Confidence, 0.0001)
}

// TestExtract_CompletionTuning tests that configured sampling options reach
// the completion backend, and that a zero config falls back to defaults.
func TestExtract_CompletionTuning(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCompleter := mocks.NewMockCompleter(ctrl)
	extractor := extract.NewExtractor(mockCompleter, extract.ExtractorConfig{
		Temperature: 0.3,
		MaxTokens:   1500,
	}, zerolog.Nop())

	var got extract.CompletionOptions
	mockCompleter.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, opts extract.CompletionOptions) (string, error) {
			got = opts
			return "[]", nil
		})

	extractor.Extract(context.Background(), "slip text")

	assert.Equal(t, 0.3, got.Temperature)
	assert.Equal(t, 1500, got.MaxTokens)
}

// TestExtract_CompletionTuningDefaults tests the zero-config fallback values
func TestExtract_CompletionTuningDefaults(t *testing.T) {
	setup := setupTestExtractor(t)

	var got extract.CompletionOptions
	setup.mockCompleter.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, opts extract.CompletionOptions) (string, error) {
			got = opts
			return "[]", nil
		})

	setup.extractor.Extract(setup.ctx, "slip text")

	assert.Equal(t, 0.1, got.Temperature)
	assert.Equal(t, 2000, got.MaxTokens)
}
