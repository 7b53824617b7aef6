package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/clarityledger/clarity-backend/internal/service"
	"github.com/clarityledger/clarity-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// MaxBackupSize limits the accepted backup document to 10MB
const MaxBackupSize = 10 << 20

// BackupHandler handles full-state export and import
type BackupHandler struct {
	backupService *service.BackupService
	publisher     websocket.EventPublisher
}

// NewBackupHandler creates a new BackupHandler
func NewBackupHandler(backupService *service.BackupService, publisher websocket.EventPublisher) *BackupHandler {
	return &BackupHandler{
		backupService: backupService,
		publisher:     publisher,
	}
}

// ExportBackup handles GET /backup/export, returning the full state as a
// downloadable JSON document
func (h *BackupHandler) ExportBackup(c echo.Context) error {
	doc, err := h.backupService.Export()
	if err != nil {
		log.Error().Err(err).Msg("Failed to export backup")
		return NewInternalError(c, "Failed to export backup")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="clarityledger-backup.json"`)
	return c.JSON(http.StatusOK, doc)
}

// ImportBackup handles POST /backup/import. The import is all-or-nothing:
// any schema violation rejects the whole document and the response lists
// every violation found.
func (h *BackupHandler) ImportBackup(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, MaxBackupSize+1))
	if err != nil {
		return NewValidationError(c, "Failed to read request body", nil)
	}
	if len(body) > MaxBackupSize {
		return NewPayloadTooLargeError(c, "Backup document exceeds 10MB")
	}

	if err := h.backupService.Import(body); err != nil {
		var importErr *service.ImportError
		if errors.As(err, &importErr) {
			validationErrs := make([]ValidationError, 0, len(importErr.Violations))
			for _, v := range importErr.Violations {
				validationErrs = append(validationErrs, ValidationError{Field: v.Path, Message: v.Message})
			}
			return NewValidationError(c, "Backup document rejected", validationErrs)
		}
		log.Error().Err(err).Msg("Failed to import backup")
		return NewInternalError(c, "Failed to import backup")
	}

	h.publisher.Publish(websocket.TopicData, websocket.BackupImported(map[string]string{"status": "restored"}))
	return c.JSON(http.StatusOK, map[string]string{"status": "restored"})
}
