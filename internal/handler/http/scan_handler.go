package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tmash55/oddsmash-sub001/internal/models"
	"github.com/tmash55/oddsmash-sub001/internal/ocr"
	"github.com/tmash55/oddsmash-sub001/internal/pipeline"
)

// maxUploadBytes caps slip image uploads at 10MB.
const maxUploadBytes = 10 << 20

// Scanner runs the scan pipeline for one slip image.
type Scanner interface {
	Scan(ctx context.Context, image []byte) (*models.ScanResponse, error)
}

// ScanHandler handles HTTP requests for betslip scans
type ScanHandler struct {
	scanner Scanner
	logger  zerolog.Logger
}

// NewScanHandler creates a new scan HTTP handler
func NewScanHandler(scanner Scanner, logger zerolog.Logger) *ScanHandler {
	return &ScanHandler{
		scanner: scanner,
		logger:  logger.With().Str("component", "scan_handler").Logger(),
	}
}

// RegisterRoutes registers HTTP routes with the provided mux
func (h *ScanHandler) RegisterRoutes(mux *http.ServeMux) {
	// POST /api/v1/betslips/scan - Scan an uploaded betslip image
	mux.HandleFunc("/api/v1/betslips/scan", h.handleScan)
}

// scanRequest is the JSON upload shape, an alternative to multipart form.
type scanRequest struct {
	ImageBase64 string `json:"image_base64"`
}

// handleScan handles POST /api/v1/betslips/scan
func (h *ScanHandler) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	image, err := h.readImage(w, r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(image) == 0 {
		h.errorResponse(w, http.StatusBadRequest, "image is required")
		return
	}

	response, err := h.scanner.Scan(r.Context(), image)
	if err != nil {
		switch {
		case errors.Is(err, ocr.ErrNoTextDetected):
			h.errorResponse(w, http.StatusUnprocessableEntity, "no text found in image")
		case errors.Is(err, pipeline.ErrNoSelections):
			h.errorResponse(w, http.StatusUnprocessableEntity, "failed to parse betslip")
		default:
			h.logger.Error().Err(err).Msg("scan failed")
			h.errorResponse(w, http.StatusInternalServerError, "scan failed")
		}
		return
	}

	h.jsonResponse(w, http.StatusOK, response)
}

// readImage accepts either a multipart "image" part or a JSON body with a
// base64 image field.
func (h *ScanHandler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, errors.New("invalid multipart form")
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, errors.New("image file part is required")
		}
		defer file.Close()

		image, err := io.ReadAll(file)
		if err != nil {
			return nil, errors.New("failed to read image")
		}
		return image, nil
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.New("invalid request body")
	}
	if req.ImageBase64 == "" {
		return nil, errors.New("image_base64 is required")
	}
	image, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return nil, errors.New("image_base64 is not valid base64")
	}
	return image, nil
}

// jsonResponse writes a JSON response
func (h *ScanHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *ScanHandler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}
