package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Storage
	DataDir  string
	ImageDir string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// OCR
	OCR OCRConfig

	// AI extraction
	AI AIConfig
}

// OCRConfig holds tesseract settings
type OCRConfig struct {
	Command   string
	Languages string
}

// AIConfig holds the OpenRouter endpoint override. API key and model names
// live in user settings, not the environment.
type AIConfig struct {
	Endpoint string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")

	cfg := &Config{
		DataDir:     dataDir,
		ImageDir:    getEnv("IMAGE_DIR", filepath.Join(dataDir, "images")),
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:         getEnv("ENV", "development"),
		OCR: OCRConfig{
			Command:   getEnv("TESSERACT_CMD", "tesseract"),
			Languages: getEnv("TESSERACT_LANGUAGES", "eng+chi_tra"),
		},
		AI: AIConfig{
			Endpoint: getEnv("OPENROUTER_ENDPOINT", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
