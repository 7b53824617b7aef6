package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clarityledger/clarity-backend/internal/ai"
	"github.com/clarityledger/clarity-backend/internal/ocr"
	"github.com/clarityledger/clarity-backend/internal/repository/storage"
	"github.com/clarityledger/clarity-backend/internal/service"
	"github.com/clarityledger/clarity-backend/internal/testutil"
	"github.com/clarityledger/clarity-backend/internal/websocket"
	"github.com/labstack/echo/v4"
)

// stubRecognizer returns fixed text without running tesseract
type stubRecognizer struct {
	text string
}

func (r *stubRecognizer) Init(ctx context.Context) error { return nil }

func (r *stubRecognizer) Recognize(ctx context.Context, imageData []byte, progress ocr.ProgressFunc) (string, error) {
	if progress != nil {
		progress(100, "recognizing text")
	}
	return r.text, nil
}

func (r *stubRecognizer) Close() error { return nil }

// createTestJPEG renders a gray image of the given size
func createTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// createMultipartForm builds a multipart body with one file plus fields
func createMultipartForm(t *testing.T, fieldName, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write form field: %v", err)
		}
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func newScanHandler(t *testing.T, recognizedText string) *ScanHandler {
	t.Helper()
	repo, err := storage.NewFilesystemImageRepository(t.TempDir(), "/images")
	if err != nil {
		t.Fatalf("Failed to create image repository: %v", err)
	}
	scanService := service.NewScanService(
		service.NewImageService(repo),
		ocr.NewEngine(&stubRecognizer{text: recognizedText}),
		ai.NewExtractor("http://127.0.0.1:0"),
		testutil.NewMockSettingsRepository(),
		&websocket.NoOpPublisher{},
	)
	return NewScanHandler(scanService)
}

func TestStartScan_ReturnsSessionID(t *testing.T) {
	e := echo.New()
	handler := newScanHandler(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan/sessions", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.StartScan(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var resp StartScanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(resp.SessionID) < 6 || resp.SessionID[:5] != "scan_" {
		t.Errorf("Expected scan_ prefixed session ID, got %s", resp.SessionID)
	}
}

func TestScan_Success(t *testing.T) {
	e := echo.New()
	handler := newScanHandler(t, "Starbucks Coffee\nTotal: $48.60\nDate: 2024-03-15")

	imageData := createTestJPEG(t, 400, 600)
	body, contentType := createMultipartForm(t, "file", "receipt.jpg", imageData, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Scan(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result service.ScanResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if result.OCR == nil {
		t.Fatal("Expected OCR result")
	}
	if result.OCR.Amount == nil || result.OCR.Amount.String() != "48.6" {
		t.Errorf("Expected amount 48.6, got %v", result.OCR.Amount)
	}
	if result.AI != nil {
		t.Error("Expected no AI result without enhance")
	}
}

func TestScan_NoFile(t *testing.T) {
	e := echo.New()
	handler := newScanHandler(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Scan(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}

func TestScan_InvalidImage(t *testing.T) {
	e := echo.New()
	handler := newScanHandler(t, "")

	body, contentType := createMultipartForm(t, "file", "receipt.jpg", []byte("not an image"), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Scan(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}
