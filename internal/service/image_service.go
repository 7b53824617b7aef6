package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"

	"github.com/clarityledger/clarity-backend/internal/repository/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	// Register decoders for the accepted upload formats
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	MaxImageSize   = 5 * 1024 * 1024 // 5MB
	MinImageWidth  = 50
	MinImageHeight = 50
	ThumbnailWidth = 200
	DisplayWidth   = 800
	// OCRWidth caps the preprocessed image; Tesseract gains nothing above
	// this and slows down considerably
	OCRWidth    = 1600
	JPEGQuality = 85
)

var (
	ErrImageTooLarge    = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidFormat    = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrImageTooSmall    = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidImageData = errors.New("invalid image data")
)

// AllowedExtensions maps extensions to content types
var AllowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ReceiptImage contains URLs for the stored variants of an uploaded receipt
type ReceiptImage struct {
	ID           string `json:"id"`
	ThumbnailURL string `json:"thumbnailUrl"`
	DisplayURL   string `json:"displayUrl"`
	OriginalURL  string `json:"originalUrl"`
}

// ImageService validates, preprocesses, and stores receipt images
type ImageService struct {
	storage storage.ImageRepository
}

// NewImageService creates a new ImageService
func NewImageService(storage storage.ImageRepository) *ImageService {
	return &ImageService{storage: storage}
}

// ValidateImage validates image format and size
func (s *ImageService) ValidateImage(data []byte, filename string) error {
	_, err := s.validateAndDecode(data, filename)
	return err
}

// validateAndDecode validates the image and returns the decoded image
func (s *ImageService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return nil, ErrInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImageData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinImageWidth || bounds.Dy() < MinImageHeight {
		return nil, ErrImageTooSmall
	}

	return img, nil
}

// PrepareForOCR validates a receipt image and returns a grayscale JPEG
// capped at OCRWidth, which is what the recognizer consumes.
func (s *ImageService) PrepareForOCR(data []byte, filename string) ([]byte, error) {
	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	processed := imaging.Grayscale(img)
	if processed.Bounds().Dx() > OCRWidth {
		processed = imaging.Resize(processed, OCRWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// ProcessAndStore resizes an uploaded receipt into its variants and stores
// them all, returning the stored URLs
func (s *ImageService) ProcessAndStore(ctx context.Context, data []byte, filename string) (*ReceiptImage, error) {
	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	imageID := uuid.New().String()

	variants := []struct {
		name     string
		maxWidth int
	}{
		{"thumb", ThumbnailWidth},
		{"display", DisplayWidth},
		{"original", 0}, // 0 means keep original size
	}

	urls := make(map[string]string)

	for _, variant := range variants {
		var processed image.Image
		if variant.maxWidth > 0 && img.Bounds().Dx() > variant.maxWidth {
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		} else {
			processed = img
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}

		objectPath := fmt.Sprintf("receipts/%s_%s.jpg", imageID, variant.name)

		url, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
		if err != nil {
			s.cleanupVariants(ctx, imageID, urls)
			return nil, fmt.Errorf("failed to store %s variant: %w", variant.name, err)
		}
		urls[variant.name] = url
	}

	return &ReceiptImage{
		ID:           imageID,
		ThumbnailURL: urls["thumb"],
		DisplayURL:   urls["display"],
		OriginalURL:  urls["original"],
	}, nil
}

// cleanupVariants removes variants already stored during a failed upload
func (s *ImageService) cleanupVariants(ctx context.Context, imageID string, urls map[string]string) {
	for name := range urls {
		_ = s.storage.Delete(ctx, fmt.Sprintf("receipts/%s_%s.jpg", imageID, name))
	}
}

// DeleteAllVariants deletes every stored variant of a receipt image
func (s *ImageService) DeleteAllVariants(ctx context.Context, imageID string) error {
	if imageID == "" {
		return nil
	}
	for _, variant := range []string{"thumb", "display", "original"} {
		if err := s.storage.Delete(ctx, fmt.Sprintf("receipts/%s_%s.jpg", imageID, variant)); err != nil {
			return err
		}
	}
	return nil
}
