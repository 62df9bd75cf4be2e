package hitrates

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tmash55/oddsmash-sub001/internal/extract"
	"github.com/tmash55/oddsmash-sub001/internal/models"
	"github.com/tmash55/oddsmash-sub001/pkg/americanodds"
)

// Provider produces a hit-rate profile for one resolved selection, or nil
// when no profile can be derived.
type Provider interface {
	Profile(ctx context.Context, sel models.BetSelection, snapshot *models.OddsSnapshot) *models.HitRateProfile
}

// ConsensusProvider derives hit rates from the market itself: the mean
// implied probability across the books quoting the selection's exact line.
type ConsensusProvider struct {
	logger zerolog.Logger
}

// NewConsensusProvider creates a consensus-based hit-rate provider.
func NewConsensusProvider(logger zerolog.Logger) *ConsensusProvider {
	return &ConsensusProvider{
		logger: logger.With().Str("component", "hit_rates").Logger(),
	}
}

// Profile returns the consensus profile for a player prop. Game-level
// markets and selections without quotes have no profile.
func (p *ConsensusProvider) Profile(_ context.Context, sel models.BetSelection, snapshot *models.OddsSnapshot) *models.HitRateProfile {
	if sel.Player == "" || sel.Line == nil || extract.IsGameLevelMarket(sel.Market) {
		return nil
	}
	if snapshot == nil || len(snapshot.Bookmakers) == 0 {
		return nil
	}

	var probSum float64
	var count int
	consensus := 0
	for _, quote := range snapshot.Bookmakers {
		prob, err := americanodds.ImpliedProbability(quote.Price)
		if err != nil {
			continue
		}
		probSum += prob
		count++
		if consensus == 0 || americanodds.Better(consensus, quote.Price) {
			// Consensus leans on the least generous quote so the
			// profile does not overstate the hit chance.
			consensus = quote.Price
		}
	}
	if count == 0 {
		return nil
	}

	profile := &models.HitRateProfile{
		Player:        sel.Player,
		Market:        sel.Market,
		Line:          *sel.Line,
		ImpliedProb:   probSum / float64(count),
		ConsensusOdds: consensus,
		BookCount:     count,
	}
	p.logger.Debug().
		Str("player", sel.Player).
		Str("market", sel.Market).
		Float64("implied_prob", profile.ImpliedProb).
		Int("books", count).
		Msg("derived hit-rate profile")
	return profile
}
