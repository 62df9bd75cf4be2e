package ocr

import "context"

// Mode selects the transcription strategy the backend should run.
type Mode string

const (
	// ModeDocument asks for hierarchical block/paragraph structure plus a
	// flat full-text rendering.
	ModeDocument Mode = "document"
	// ModeToken asks for individual detected tokens with bounding boxes.
	ModeToken Mode = "token"
)

// BoundingBox is an axis-aligned token boundary in image coordinates.
type BoundingBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Token is one detected word with its position and detection confidence.
type Token struct {
	Text       string
	Confidence float64
	Box        BoundingBox
}

// Transcription is one backend response.
type Transcription struct {
	FullText string
	Blocks   []string
	Tokens   []Token
}

// Transcriber abstracts the OCR backend.
type Transcriber interface {
	Transcribe(ctx context.Context, image []byte, mode Mode) (*Transcription, error)
}
