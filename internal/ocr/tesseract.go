package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// DefaultLanguages covers English and Traditional Chinese receipts in one
// pass so no per-scan language selection is needed
const DefaultLanguages = "eng+chi_tra"

// TesseractRecognizer runs the tesseract CLI over receipt images
type TesseractRecognizer struct {
	command   string
	languages string
}

// NewTesseractRecognizer creates a recognizer invoking the given command
// ("tesseract" when empty) with the given language set
func NewTesseractRecognizer(command, languages string) *TesseractRecognizer {
	if command == "" {
		command = "tesseract"
	}
	if languages == "" {
		languages = DefaultLanguages
	}
	return &TesseractRecognizer{command: command, languages: languages}
}

// Init verifies the tesseract binary is available
func (r *TesseractRecognizer) Init(ctx context.Context) error {
	path, err := exec.LookPath(r.command)
	if err != nil {
		return fmt.Errorf("tesseract not found: %w", err)
	}
	log.Debug().Str("path", path).Str("languages", r.languages).Msg("Tesseract located")
	return nil
}

// Recognize extracts text from an image. The CLI offers no streaming
// progress, so the callback sees start and completion only.
func (r *TesseractRecognizer) Recognize(ctx context.Context, image []byte, onProgress ProgressFunc) (string, error) {
	if onProgress != nil {
		onProgress(0, "recognizing text")
	}

	dir, err := os.MkdirTemp("", "clarity-ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "receipt.jpg")
	if err := os.WriteFile(input, image, 0o600); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.command, input, "stdout", "-l", r.languages)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w: %s", err, stderr.String())
	}

	if onProgress != nil {
		onProgress(100, "recognizing text")
	}
	return stdout.String(), nil
}

// Close is a no-op; each recognition runs a fresh process
func (r *TesseractRecognizer) Close() error {
	return nil
}
