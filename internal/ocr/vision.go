package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// VisionConfig holds Vision API client configuration.
type VisionConfig struct {
	BaseURL string // e.g., "https://vision.googleapis.com"
	APIKey  string
	Timeout time.Duration
}

// VisionClient implements Transcriber over the Vision REST API. Document
// mode maps to DOCUMENT_TEXT_DETECTION, token mode to TEXT_DETECTION.
type VisionClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     zerolog.Logger
}

// NewVisionClient creates a Vision-backed transcriber.
func NewVisionClient(config VisionConfig, logger zerolog.Logger) *VisionClient {
	return &VisionClient{
		httpClient: &http.Client{Timeout: config.Timeout},
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		apiKey:     config.APIKey,
		logger:     logger.With().Str("component", "vision_ocr").Logger(),
	}
}

type visionRequest struct {
	Requests []visionAnnotateRequest `json:"requests"`
}

type visionAnnotateRequest struct {
	Image    visionImage     `json:"image"`
	Features []visionFeature `json:"features"`
}

type visionImage struct {
	Content string `json:"content"`
}

type visionFeature struct {
	Type string `json:"type"`
}

type visionResponse struct {
	Responses []struct {
		FullTextAnnotation *struct {
			Text  string `json:"text"`
			Pages []struct {
				Blocks []struct {
					Paragraphs []struct {
						Words []struct {
							Symbols []struct {
								Text string `json:"text"`
							} `json:"symbols"`
						} `json:"words"`
					} `json:"paragraphs"`
				} `json:"blocks"`
			} `json:"pages"`
		} `json:"fullTextAnnotation"`
		TextAnnotations []struct {
			Description  string  `json:"description"`
			Confidence   float64 `json:"confidence"`
			BoundingPoly struct {
				Vertices []struct {
					X float64 `json:"x"`
					Y float64 `json:"y"`
				} `json:"vertices"`
			} `json:"boundingPoly"`
		} `json:"textAnnotations"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// Transcribe sends the image for annotation in the requested mode.
func (c *VisionClient) Transcribe(ctx context.Context, image []byte, mode Mode) (*Transcription, error) {
	feature := "DOCUMENT_TEXT_DETECTION"
	if mode == ModeToken {
		feature = "TEXT_DETECTION"
	}

	payload, err := json.Marshal(visionRequest{
		Requests: []visionAnnotateRequest{{
			Image:    visionImage{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []visionFeature{{Type: feature}},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal annotate request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/images:annotate?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("annotate request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded visionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode annotate response: %w", err)
	}
	if len(decoded.Responses) == 0 {
		return &Transcription{}, nil
	}

	annotation := decoded.Responses[0]
	if annotation.Error != nil {
		return nil, fmt.Errorf("vision api error: %s", annotation.Error.Message)
	}

	transcription := &Transcription{}
	if annotation.FullTextAnnotation != nil {
		transcription.FullText = annotation.FullTextAnnotation.Text
	}

	// The first annotation is the whole-image text; the rest are tokens.
	for i, token := range annotation.TextAnnotations {
		if i == 0 {
			if transcription.FullText == "" {
				transcription.FullText = token.Description
			}
			continue
		}
		box := BoundingBox{}
		for j, v := range token.BoundingPoly.Vertices {
			if j == 0 || v.X < box.MinX {
				box.MinX = v.X
			}
			if j == 0 || v.Y < box.MinY {
				box.MinY = v.Y
			}
			if v.X > box.MaxX {
				box.MaxX = v.X
			}
			if v.Y > box.MaxY {
				box.MaxY = v.Y
			}
		}
		confidence := token.Confidence
		if confidence == 0 {
			confidence = 1.0
		}
		transcription.Tokens = append(transcription.Tokens, Token{
			Text:       token.Description,
			Confidence: confidence,
			Box:        box,
		})
	}

	c.logger.Debug().
		Str("mode", string(mode)).
		Int("tokens", len(transcription.Tokens)).
		Int("text_len", len(transcription.FullText)).
		Msg("transcribed image")
	return transcription, nil
}
