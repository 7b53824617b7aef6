package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/clarityledger/clarity-backend/internal/repository/storage"
	"github.com/clarityledger/clarity-backend/internal/service"
	"github.com/labstack/echo/v4"
)

func newImageHandler(t *testing.T) (*ImageHandler, string) {
	t.Helper()
	baseDir := t.TempDir()
	repo, err := storage.NewFilesystemImageRepository(baseDir, "/images")
	if err != nil {
		t.Fatalf("Failed to create image repository: %v", err)
	}
	return NewImageHandler(service.NewImageService(repo)), baseDir
}

func TestUploadImage_Success(t *testing.T) {
	e := echo.New()
	handler, baseDir := newImageHandler(t)

	imageData := createTestJPEG(t, 400, 600)
	body, contentType := createMultipartForm(t, "file", "receipt.jpg", imageData, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.UploadImage(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var receipt service.ReceiptImage
	if err := json.Unmarshal(rec.Body.Bytes(), &receipt); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if receipt.ID == "" || receipt.ThumbnailURL == "" || receipt.DisplayURL == "" || receipt.OriginalURL == "" {
		t.Errorf("Expected all variant URLs, got %+v", receipt)
	}

	entries, err := os.ReadDir(filepath.Join(baseDir, "receipts"))
	if err != nil {
		t.Fatalf("Failed to read receipts dir: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected 3 stored variants, got %d", len(entries))
	}
}

func TestUploadImage_NoFile(t *testing.T) {
	e := echo.New()
	handler, _ := newImageHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.UploadImage(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}

func TestUploadImage_TooSmall(t *testing.T) {
	e := echo.New()
	handler, _ := newImageHandler(t)

	imageData := createTestJPEG(t, 20, 20)
	body, contentType := createMultipartForm(t, "file", "receipt.jpg", imageData, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.UploadImage(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if len(problem.Errors) != 1 || problem.Errors[0].Field != "file" {
		t.Errorf("Expected violation on file, got %+v", problem.Errors)
	}
}

func TestDeleteImage_RemovesVariants(t *testing.T) {
	e := echo.New()
	handler, baseDir := newImageHandler(t)

	imageData := createTestJPEG(t, 400, 600)
	body, contentType := createMultipartForm(t, "file", "receipt.jpg", imageData, nil)
	uploadReq := httptest.NewRequest(http.MethodPost, "/api/v1/images", body)
	uploadReq.Header.Set(echo.HeaderContentType, contentType)
	uploadRec := httptest.NewRecorder()
	if err := handler.UploadImage(e.NewContext(uploadReq, uploadRec)); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	var receipt service.ReceiptImage
	if err := json.Unmarshal(uploadRec.Body.Bytes(), &receipt); err != nil {
		t.Fatalf("Failed to unmarshal upload response: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/images/"+receipt.ID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(receipt.ID)

	if err := handler.DeleteImage(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rec.Code)
	}

	entries, err := os.ReadDir(filepath.Join(baseDir, "receipts"))
	if err != nil {
		t.Fatalf("Failed to read receipts dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected variants removed, got %d left", len(entries))
	}
}
