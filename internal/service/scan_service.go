package service

import (
	"context"
	"fmt"

	"github.com/clarityledger/clarity-backend/internal/ai"
	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/clarityledger/clarity-backend/internal/ocr"
	"github.com/clarityledger/clarity-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ScanResult is the combined outcome of one receipt scan
type ScanResult struct {
	SessionID string               `json:"sessionId"`
	OCR       *ocr.Result          `json:"ocr"`
	AI        *ai.ExtractionResult `json:"ai,omitempty"`
}

// ScanService runs the receipt scan pipeline: image preprocessing, OCR,
// heuristic parsing, and optional AI enhancement. Progress is published to
// the scan session's websocket topic.
type ScanService struct {
	images       *ImageService
	engine       *ocr.Engine
	extractor    *ai.Extractor
	settingsRepo domain.SettingsRepository
	publisher    websocket.EventPublisher
}

// NewScanService creates a new ScanService
func NewScanService(
	images *ImageService,
	engine *ocr.Engine,
	extractor *ai.Extractor,
	settingsRepo domain.SettingsRepository,
	publisher websocket.EventPublisher,
) *ScanService {
	return &ScanService{
		images:       images,
		engine:       engine,
		extractor:    extractor,
		settingsRepo: settingsRepo,
		publisher:    publisher,
	}
}

// NewSessionID allocates a scan session identifier. Clients subscribe to
// the session's websocket topic before uploading.
func (s *ScanService) NewSessionID() string {
	return "scan_" + uuid.New().String()
}

// Scan runs the pipeline over an uploaded image. OCR always runs; AI
// enhancement runs when enhance is set and reports its own failures inside
// the result rather than failing the scan.
func (s *ScanService) Scan(ctx context.Context, sessionID string, data []byte, filename string, enhance bool) (*ScanResult, error) {
	prepared, err := s.images.PrepareForOCR(data, filename)
	if err != nil {
		s.publisher.Publish(sessionID, websocket.ScanFailed(map[string]string{
			"sessionId": sessionID,
			"error":     err.Error(),
		}))
		return nil, err
	}

	ocrResult, err := s.engine.Recognize(ctx, prepared, func(percent int, status string) {
		s.publisher.Publish(sessionID, websocket.ScanProgressEvent(websocket.ScanProgress{
			SessionID: sessionID,
			Percent:   percent,
			Status:    status,
		}))
	})
	if err != nil {
		s.publisher.Publish(sessionID, websocket.ScanFailed(map[string]string{
			"sessionId": sessionID,
			"error":     "text recognition failed",
		}))
		return nil, fmt.Errorf("scan %s: %w", sessionID, err)
	}

	result := &ScanResult{SessionID: sessionID, OCR: ocrResult}

	if enhance {
		settings, err := s.settingsRepo.Get()
		if err != nil {
			return nil, err
		}
		mime := ""
		if ai.IsMultimodal(ai.ModelFor(settings)) {
			mime = "image/jpeg" // preprocessed variant is always JPEG
		}
		result.AI = s.extractor.Extract(ctx, settings, ai.ExtractionInput{
			Text:      ocrResult.Text,
			Image:     prepared,
			ImageMIME: mime,
			Language:  settings.Language,
		})
		if result.AI.Error != "" {
			log.Warn().Str("session_id", sessionID).Str("error", result.AI.Error).
				Msg("AI enhancement failed, heuristic result stands")
		}
	}

	s.publisher.Publish(sessionID, websocket.ScanCompleted(result))
	return result, nil
}
