package handler

import (
	"io"
	"net/http"

	"github.com/clarityledger/clarity-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ScanHandler handles receipt scan HTTP requests
type ScanHandler struct {
	scanService *service.ScanService
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(scanService *service.ScanService) *ScanHandler {
	return &ScanHandler{scanService: scanService}
}

// StartScanResponse carries the session ID the client should subscribe to
// before uploading the image
type StartScanResponse struct {
	SessionID string `json:"sessionId"`
}

// StartScan handles POST /scan/sessions. The returned session ID is the
// websocket topic that scan progress and results are published to.
func (h *ScanHandler) StartScan(c echo.Context) error {
	return c.JSON(http.StatusCreated, StartScanResponse{SessionID: h.scanService.NewSessionID()})
}

// Scan handles POST /scan. The multipart form carries the receipt image;
// the optional sessionId field ties the run to a websocket topic and the
// enhance field requests AI extraction on top of the heuristics.
func (h *ScanHandler) Scan(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	sessionID := c.FormValue("sessionId")
	if sessionID == "" {
		sessionID = h.scanService.NewSessionID()
	}
	enhance := c.FormValue("enhance") == "true"

	result, err := h.scanService.Scan(c.Request().Context(), sessionID, data, file.Filename, enhance)
	if err != nil {
		if validationErrs := mapImageValidation(err); validationErrs != nil {
			return NewValidationError(c, "Validation failed", validationErrs)
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("Scan failed")
		return NewInternalError(c, "Scan failed")
	}

	return c.JSON(http.StatusOK, result)
}
