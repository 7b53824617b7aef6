package handler

import (
	"io"
	"net/http"

	"github.com/clarityledger/clarity-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ImageHandler handles receipt image HTTP requests
type ImageHandler struct {
	imageService *service.ImageService
}

// NewImageHandler creates a new ImageHandler
func NewImageHandler(imageService *service.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

// UploadImage handles POST /images
func (h *ImageHandler) UploadImage(c echo.Context) error {
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

	receipt, err := h.imageService.ProcessAndStore(c.Request().Context(), data, file.Filename)
	if err != nil {
		if validationErrs := mapImageValidation(err); validationErrs != nil {
			return NewValidationError(c, "Validation failed", validationErrs)
		}
		log.Error().Err(err).Msg("Failed to store image")
		return NewInternalError(c, "Failed to store image")
	}

	log.Info().Str("image_id", receipt.ID).Msg("Receipt image stored")
	return c.JSON(http.StatusCreated, receipt)
}

// DeleteImage handles DELETE /images/:id, removing every stored variant
func (h *ImageHandler) DeleteImage(c echo.Context) error {
	id := c.Param("id")
	if err := h.imageService.DeleteAllVariants(c.Request().Context(), id); err != nil {
		log.Error().Err(err).Str("image_id", id).Msg("Failed to delete image")
		return NewInternalError(c, "Failed to delete image")
	}

	log.Info().Str("image_id", id).Msg("Receipt image deleted")
	return c.NoContent(http.StatusNoContent)
}

func mapImageValidation(err error) []ValidationError {
	switch err {
	case service.ErrImageTooLarge:
		return []ValidationError{{Field: "file", Message: "File too large. Maximum size is 5MB"}}
	case service.ErrInvalidFormat:
		return []ValidationError{{Field: "file", Message: "Invalid format. Supported: JPEG, PNG, WebP"}}
	case service.ErrImageTooSmall:
		return []ValidationError{{Field: "file", Message: "Image too small. Minimum 50x50 pixels"}}
	case service.ErrInvalidImageData:
		return []ValidationError{{Field: "file", Message: "Invalid image data"}}
	default:
		return nil
	}
}
