package ocr_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tmash55/oddsmash-sub001/internal/mocks"
	"github.com/tmash55/oddsmash-sub001/internal/ocr"
)

// testFuserSetup is a helper struct to hold test dependencies
type testFuserSetup struct {
	mockTranscriber *mocks.MockTranscriber
	fuser           *ocr.Fuser
	ctrl            *gomock.Controller
	ctx             context.Context
}

// setupTestFuser creates a fuser with a mocked OCR backend
func setupTestFuser(t *testing.T) *testFuserSetup {
	ctrl := gomock.NewController(t)
	mockTranscriber := mocks.NewMockTranscriber(ctrl)

	return &testFuserSetup{
		mockTranscriber: mockTranscriber,
		fuser:           ocr.NewFuser(mockTranscriber, zerolog.Nop()),
		ctrl:            ctrl,
		ctx:             context.Background(),
	}
}

func token(text string, x, y float64) ocr.Token {
	return ocr.Token{
		Text:       text,
		Confidence: 0.95,
		Box:        ocr.BoundingBox{MinX: x, MinY: y, MaxX: x + 20, MaxY: y + 10},
	}
}

// TestBestTranscription_NilBackend tests the development fallback path
func TestBestTranscription_NilBackend(t *testing.T) {
	fuser := ocr.NewFuser(nil, zerolog.Nop())

	text, err := fuser.BestTranscription(context.Background(), []byte("img"))

	require.NoError(t, err)
	assert.Contains(t, text, "parlay")
}

// TestBestTranscription_BackendUnreachable tests fallback when every strategy errors
func TestBestTranscription_BackendUnreachable(t *testing.T) {
	setup := setupTestFuser(t)

	backendErr := errors.New("credentials not configured")
	setup.mockTranscriber.EXPECT().
		Transcribe(gomock.Any(), gomock.Any(), ocr.ModeDocument).
		Return(nil, backendErr)
	setup.mockTranscriber.EXPECT().
		Transcribe(gomock.Any(), gomock.Any(), ocr.ModeToken).
		Return(nil, backendErr).
		Times(2)

	text, err := setup.fuser.BestTranscription(setup.ctx, []byte("img"))

	require.NoError(t, err)
	assert.NotEmpty(t, text)
}

// TestBestTranscription_NoTextDetected tests the empty-text failure
func TestBestTranscription_NoTextDetected(t *testing.T) {
	setup := setupTestFuser(t)

	setup.mockTranscriber.EXPECT().
		Transcribe(gomock.Any(), gomock.Any(), ocr.ModeDocument).
		Return(&ocr.Transcription{FullText: "   "}, nil)
	setup.mockTranscriber.EXPECT().
		Transcribe(gomock.Any(), gomock.Any(), ocr.ModeToken).
		Return(&ocr.Transcription{}, nil).
		Times(2)

	_, err := setup.fuser.BestTranscription(setup.ctx, []byte("img"))

	assert.ErrorIs(t, err, ocr.ErrNoTextDetected)
}

// TestBestTranscription_KeywordRanking tests that betslip keywords outrank length
func TestBestTranscription_KeywordRanking(t *testing.T) {
	setup := setupTestFuser(t)

	// The document strategy returns a long transcription without any
	// betslip keyword; the token strategies reconstruct a shorter one
	// containing "parlay", which must win.
	setup.mockTranscriber.EXPECT().
		Transcribe(gomock.Any(), gomock.Any(), ocr.ModeDocument).
		Return(&ocr.Transcription{FullText: strings.Repeat("receipt terms and conditions ", 10)}, nil)
	setup.mockTranscriber.EXPECT().
		Transcribe(gomock.Any(), gomock.Any(), ocr.ModeToken).
		Return(&ocr.Transcription{Tokens: []ocr.Token{
			token("2", 0, 0), token("leg", 25, 0), token("parlay", 50, 2),
		}}, nil).
		Times(2)

	text, err := setup.fuser.BestTranscription(setup.ctx, []byte("img"))

	require.NoError(t, err)
	assert.Equal(t, "2 leg parlay", text)
}

// TestBestTranscription_SpatialLineSort tests token reassembly into lines
func TestBestTranscription_SpatialLineSort(t *testing.T) {
	setup := setupTestFuser(t)

	// Tokens arrive unordered; same-row tokens must be joined left to
	// right and rows separated top to bottom.
	tokens := []ocr.Token{
		token("Strikeouts", 60, 42),
		token("Gavin", 0, 0),
		token("7+", 0, 40),
		token("Sheets", 48, 1),
	}
	setup.mockTranscriber.EXPECT().
		Transcribe(gomock.Any(), gomock.Any(), ocr.ModeDocument).
		Return(&ocr.Transcription{}, nil)
	setup.mockTranscriber.EXPECT().
		Transcribe(gomock.Any(), gomock.Any(), ocr.ModeToken).
		Return(&ocr.Transcription{Tokens: tokens}, nil).
		Times(2)

	text, err := setup.fuser.BestTranscription(setup.ctx, []byte("img"))

	require.NoError(t, err)
	assert.Equal(t, "Gavin Sheets\n7+ Strikeouts", text)
}

// TestBestTranscription_PartialStrategyFailure tests that one failing
// strategy does not sink the others
func TestBestTranscription_PartialStrategyFailure(t *testing.T) {
	setup := setupTestFuser(t)

	setup.mockTranscriber.EXPECT().
		Transcribe(gomock.Any(), gomock.Any(), ocr.ModeDocument).
		Return(&ocr.Transcription{FullText: "Gavin Sheets pick em special"}, nil)
	setup.mockTranscriber.EXPECT().
		Transcribe(gomock.Any(), gomock.Any(), ocr.ModeToken).
		Return(nil, errors.New("token mode unavailable")).
		Times(2)

	text, err := setup.fuser.BestTranscription(setup.ctx, []byte("img"))

	require.NoError(t, err)
	assert.Equal(t, "Gavin Sheets pick em special", text)
}
