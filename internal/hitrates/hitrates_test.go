package hitrates

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmash55/oddsmash-sub001/internal/extract"
	"github.com/tmash55/oddsmash-sub001/internal/models"
)

func lineOf(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func TestProfile_Consensus(t *testing.T) {
	provider := NewConsensusProvider(zerolog.Nop())
	sel := models.BetSelection{
		Player:  "Hunter Brown",
		Market:  extract.MarketStrikeouts,
		Line:    lineOf(6.5),
		BetType: models.BetTypeOver,
	}
	snapshot := &models.OddsSnapshot{
		Bookmakers: map[string]models.BookmakerQuote{
			"draftkings": {Price: -110},
			"fanduel":    {Price: 100},
		},
	}

	profile := provider.Profile(context.Background(), sel, snapshot)

	require.NotNil(t, profile)
	assert.Equal(t, "Hunter Brown", profile.Player)
	assert.True(t, profile.Line.Equal(decimal.NewFromFloat(6.5)))
	// Mean of 11/21 and 1/2.
	assert.InDelta(t, 0.5119, profile.ImpliedProb, 0.001)
	assert.Equal(t, -110, profile.ConsensusOdds)
	assert.Equal(t, 2, profile.BookCount)
}

func TestProfile_UnpricedQuoteSkipped(t *testing.T) {
	provider := NewConsensusProvider(zerolog.Nop())
	sel := models.BetSelection{
		Player:  "Hunter Brown",
		Market:  extract.MarketStrikeouts,
		Line:    lineOf(6.5),
		BetType: models.BetTypeOver,
	}
	snapshot := &models.OddsSnapshot{
		Bookmakers: map[string]models.BookmakerQuote{
			"draftkings": {Price: -110},
			"fanduel":    {Price: 100},
			"caesars":    {Price: 0},
		},
	}

	profile := provider.Profile(context.Background(), sel, snapshot)

	require.NotNil(t, profile)
	// The zero-priced quote contributes nothing to the mean or the count.
	assert.InDelta(t, 0.5119, profile.ImpliedProb, 0.001)
	assert.Equal(t, -110, profile.ConsensusOdds)
	assert.Equal(t, 2, profile.BookCount)
}

func TestProfile_AllQuotesUnpriced(t *testing.T) {
	provider := NewConsensusProvider(zerolog.Nop())
	sel := models.BetSelection{Player: "Hunter Brown", Market: extract.MarketStrikeouts, Line: lineOf(6.5)}
	snapshot := &models.OddsSnapshot{
		Bookmakers: map[string]models.BookmakerQuote{"draftkings": {Price: 0}},
	}

	assert.Nil(t, provider.Profile(context.Background(), sel, snapshot))
}

func TestProfile_NoQuotes(t *testing.T) {
	provider := NewConsensusProvider(zerolog.Nop())
	sel := models.BetSelection{Player: "Hunter Brown", Market: extract.MarketStrikeouts, Line: lineOf(6.5)}

	assert.Nil(t, provider.Profile(context.Background(), sel, nil))
	assert.Nil(t, provider.Profile(context.Background(), sel, &models.OddsSnapshot{}))
}

func TestProfile_GameLevelSkipped(t *testing.T) {
	provider := NewConsensusProvider(zerolog.Nop())
	sel := models.BetSelection{Player: "Astros", Market: extract.MarketMoneyline, Line: lineOf(0.5)}
	snapshot := &models.OddsSnapshot{
		Bookmakers: map[string]models.BookmakerQuote{"betmgm": {Price: -150}},
	}

	assert.Nil(t, provider.Profile(context.Background(), sel, snapshot))
}
