package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tmash55/oddsmash-sub001/internal/models"
	"github.com/tmash55/oddsmash-sub001/internal/resolver"
)

// ErrNoSelections means the extractor produced nothing usable from the
// slip text. Surfaced to the caller as a request-level failure.
var ErrNoSelections = errors.New("no selections extracted from betslip")

// defaultStaggerStep spaces the per-selection odds fetches to stay under
// upstream rate limits.
const defaultStaggerStep = 200 * time.Millisecond

// TextReader produces the best OCR transcription of a slip image.
type TextReader interface {
	BestTranscription(ctx context.Context, image []byte) (string, error)
}

// BetExtractor turns OCR text into typed selections plus the raw model
// response for diagnostics.
type BetExtractor interface {
	Extract(ctx context.Context, ocrText string) (models.BetslipExtraction, string)
}

// EventMatcher resolves a selection's game from team text or slip players.
type EventMatcher interface {
	Resolve(ctx context.Context, awayTeam, homeTeam string, games []models.GameData, slip []models.BetSelection) resolver.Resolution
}

// OddsFetcher builds the per-selection odds comparison.
type OddsFetcher interface {
	Snapshot(ctx context.Context, sel models.BetSelection, bookmakers []string) models.OddsSnapshot
}

// HitRateProvider derives side statistics for a resolved selection.
type HitRateProvider interface {
	Profile(ctx context.Context, sel models.BetSelection, snapshot *models.OddsSnapshot) *models.HitRateProfile
}

// RecordPublisher hands finished scans off for durable storage.
type RecordPublisher interface {
	Publish(ctx context.Context, record models.ScanRecord) error
}

// Config tunes the orchestrator.
type Config struct {
	Bookmakers  []string
	StaggerStep time.Duration
}

// Orchestrator runs the full scan pipeline for one uploaded slip image.
type Orchestrator struct {
	reader      TextReader
	extractor   BetExtractor
	events      resolver.EventSource
	matcher     EventMatcher
	odds        OddsFetcher
	hitRates    HitRateProvider
	publisher   RecordPublisher
	bookmakers  []string
	staggerStep time.Duration
	logger      zerolog.Logger
}

// NewOrchestrator wires the pipeline stages. The hit-rate provider and
// publisher may be nil, which disables those side effects.
func NewOrchestrator(
	config Config,
	reader TextReader,
	extractor BetExtractor,
	events resolver.EventSource,
	matcher EventMatcher,
	odds OddsFetcher,
	hitRates HitRateProvider,
	publisher RecordPublisher,
	logger zerolog.Logger,
) *Orchestrator {
	step := config.StaggerStep
	if step <= 0 {
		step = defaultStaggerStep
	}
	return &Orchestrator{
		reader:      reader,
		extractor:   extractor,
		events:      events,
		matcher:     matcher,
		odds:        odds,
		hitRates:    hitRates,
		publisher:   publisher,
		bookmakers:  config.Bookmakers,
		staggerStep: step,
		logger:      logger.With().Str("component", "pipeline").Logger(),
	}
}

// Scan runs OCR, extraction, event resolution, and odds resolution for one
// slip image. Only OCR failure and an empty extraction fail the request;
// every later failure degrades to per-selection annotations.
func (o *Orchestrator) Scan(ctx context.Context, image []byte) (*models.ScanResponse, error) {
	scansTotal.Inc()

	ocrText, err := o.reader.BestTranscription(ctx, image)
	if err != nil {
		scanFailuresTotal.Inc()
		return nil, err
	}

	extraction, rawResponse := o.extractor.Extract(ctx, ocrText)
	if len(extraction.Selections) == 0 {
		scanFailuresTotal.Inc()
		return nil, ErrNoSelections
	}

	slip := extraction.Selections
	o.resolveEvents(ctx, slip)
	resolved, summary := o.resolveOdds(ctx, slip)

	response := &models.ScanResponse{
		ScanID:          uuid.New().String(),
		Sportsbook:      extraction.Metadata.Sportsbook,
		TotalSelections: len(resolved),
		Confidence:      extraction.Confidence,
		Selections:      resolved,
		OddsData:        summary,
	}

	o.publishRecord(ctx, response, ocrText, rawResponse)

	o.logger.Info().
		Str("scan_id", response.ScanID).
		Str("sportsbook", response.Sportsbook).
		Int("selections", response.TotalSelections).
		Int("odds_hits", summary.SuccessfulOddsFetches).
		Msg("scan complete")
	return response, nil
}

// resolveEvents attaches event IDs to the slip's selections concurrently.
// The slip itself is read-only while the group runs; game IDs are applied
// after the join.
func (o *Orchestrator) resolveEvents(ctx context.Context, slip []models.BetSelection) {
	cache := resolver.NewGameCache(o.events)
	gameIDs := make([]string, len(slip))

	g, gctx := errgroup.WithContext(ctx)
	for i := range slip {
		g.Go(func() error {
			sel := slip[i]
			games, err := cache.GamesFor(gctx, sel.SportAPIKey, selectionDate(sel))
			if err != nil {
				o.logger.Warn().
					Err(err).
					Str("selection_id", sel.ID).
					Str("sport", sel.SportAPIKey).
					Msg("event listing unavailable")
				return nil
			}

			res := o.matcher.Resolve(gctx, sel.Metadata.AwayTeam, sel.Metadata.HomeTeam, games, slip)
			if res.Game != nil {
				gameIDs[i] = res.Game.EventID
				o.logger.Debug().
					Str("selection_id", sel.ID).
					Str("event_id", res.Game.EventID).
					Float64("confidence", res.Confidence).
					Msg("resolved event")
			}
			return nil
		})
	}
	_ = g.Wait()

	for i := range slip {
		slip[i].GameID = gameIDs[i]
	}
}

// resolveOdds fetches odds for all selections concurrently with staggered
// start times, derives hit-rate side data per selection, and aggregates
// the fetch summary.
func (o *Orchestrator) resolveOdds(ctx context.Context, slip []models.BetSelection) ([]models.ResolvedSelection, models.OddsSummary) {
	resolved := make([]models.ResolvedSelection, len(slip))

	g, gctx := errgroup.WithContext(ctx)
	for i := range slip {
		g.Go(func() error {
			if i > 0 {
				select {
				case <-time.After(time.Duration(i) * o.staggerStep):
				case <-gctx.Done():
				}
			}

			sel := slip[i]
			snapshot := o.odds.Snapshot(gctx, sel, o.bookmakers)

			var profile *models.HitRateProfile
			if o.hitRates != nil {
				profile = o.hitRates.Profile(gctx, sel, &snapshot)
			}

			if snapshot.Metadata.Error == "" {
				oddsFetchesTotal.WithLabelValues("success").Inc()
			} else {
				oddsFetchesTotal.WithLabelValues("failure").Inc()
			}

			resolved[i] = models.ResolvedSelection{
				BetSelection: sel,
				CurrentOdds:  &snapshot,
				HitRates:     profile,
			}
			return nil
		})
	}
	_ = g.Wait()

	var summary models.OddsSummary
	for i := range resolved {
		meta := resolved[i].CurrentOdds.Metadata
		if meta.Error == "" {
			summary.SuccessfulOddsFetches++
		} else {
			summary.FailedOddsFetches++
		}
		if meta.TotalBookmakers > summary.TotalBookmakers {
			summary.TotalBookmakers = meta.TotalBookmakers
		}
	}
	return resolved, summary
}

// publishRecord hands the finished scan off for storage. Failures are
// logged and swallowed; the response already belongs to the caller.
func (o *Orchestrator) publishRecord(ctx context.Context, response *models.ScanResponse, ocrText, rawResponse string) {
	if o.publisher == nil {
		return
	}

	record := models.ScanRecord{
		RecordID:        response.ScanID,
		Sportsbook:      response.Sportsbook,
		Title:           scanTitle(response.Selections),
		Selections:      response.Selections,
		RawOCRText:      ocrText,
		LLMResponse:     rawResponse,
		ScanConfidence:  response.Confidence,
		OddsWereFetched: response.OddsData.SuccessfulOddsFetches > 0,
		HitRatesData:    collectHitRates(response.Selections),
		CreatedAt:       time.Now().UTC(),
	}
	if err := o.publisher.Publish(ctx, record); err != nil {
		recordPublishFailures.Inc()
		o.logger.Error().
			Err(err).
			Str("record_id", record.RecordID).
			Msg("scan record hand-off failed")
	}
}

// collectHitRates gathers the per-selection profiles into the record's
// aggregate map, keyed by selection ID. Nil when no selection has one.
func collectHitRates(selections []models.ResolvedSelection) map[string]*models.HitRateProfile {
	var rates map[string]*models.HitRateProfile
	for i := range selections {
		if selections[i].HitRates == nil {
			continue
		}
		if rates == nil {
			rates = make(map[string]*models.HitRateProfile)
		}
		rates[selections[i].ID] = selections[i].HitRates
	}
	return rates
}

// selectionDate parses the game date the extractor found, falling back to
// today when absent or unparseable.
func selectionDate(sel models.BetSelection) time.Time {
	raw := sel.Metadata.GameDate
	if raw != "" {
		for _, layout := range []string{"2006-01-02", "01/02/2006", "Jan 2, 2006", "January 2, 2006"} {
			if parsed, err := time.Parse(layout, raw); err == nil {
				return parsed
			}
		}
	}
	return time.Now().UTC()
}

// scanTitle names the scan after its contents.
func scanTitle(selections []models.ResolvedSelection) string {
	if len(selections) == 0 {
		return "Empty scan"
	}
	if len(selections) == 1 {
		sel := selections[0]
		if sel.Player != "" {
			return fmt.Sprintf("%s %s", sel.Player, sel.Market)
		}
		return sel.Market
	}
	return fmt.Sprintf("%d leg parlay", len(selections))
}
