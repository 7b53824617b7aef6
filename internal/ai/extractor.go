package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// DefaultEndpoint is the OpenRouter chat completions URL
const DefaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"

const (
	maxTokens   = 500
	temperature = 0.2
)

// multimodalModelFragments mark models that accept image input; matched as
// substrings of the model name
var multimodalModelFragments = []string{
	"claude-3", "gpt-4o", "gpt-4-turbo", "gpt-4-vision", "llava", "gemini", "qwen",
}

// ExtractionResult is the model's reading of a receipt. Failures are
// reported in Error rather than as a Go error: a failed extraction is an
// outcome the caller renders, not an exceptional condition.
type ExtractionResult struct {
	Amount      *float64 `json:"amount,omitempty"`
	Date        *string  `json:"date,omitempty"`
	Vendor      *string  `json:"vendor,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
	RawResponse string   `json:"rawResponse,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// ExtractionInput carries the material the model works from
type ExtractionInput struct {
	Text      string
	Image     []byte
	ImageMIME string
	Language  string
}

// Extractor talks to an OpenRouter-compatible chat completions endpoint
type Extractor struct {
	endpoint string
	client   *http.Client
}

// NewExtractor creates an Extractor against the given endpoint
// (DefaultEndpoint when empty)
func NewExtractor(endpoint string) *Extractor {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Extractor{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// IsMultimodal reports whether a model name suggests image input support
func IsMultimodal(model string) bool {
	lower := strings.ToLower(model)
	for _, fragment := range multimodalModelFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// ModelFor picks the model for a scan: the dedicated OCR model when set,
// the general model otherwise, falling back to the built-in default.
func ModelFor(settings *domain.Settings) string {
	if strings.TrimSpace(settings.OCRModelName) != "" {
		return settings.OCRModelName
	}
	if strings.TrimSpace(settings.ModelName) != "" {
		return settings.ModelName
	}
	return domain.DefaultOCRModel
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

const jsonStructureInstruction = `Respond ONLY with a valid JSON object containing these fields: "amount" (numeric or null), "date" ("YYYY-MM-DD" or null), "vendor" (string or null), "category" (string from list: Groceries, Utilities, Food, Transport, Shopping, Health, Entertainment, Travel, Tax, Credit Card, Other, or null), "currency" (string like "USD", "TWD", or null).
Example: {"amount": 123.45, "date": "2023-10-26", "vendor": "SuperMart", "category": "Groceries", "currency": "USD"}`

func systemPrompt(language string) string {
	languageInstruction := "Analyze and respond in English. If currency is USD, clearly mark it as USD or $."
	if language == domain.LanguageTraditionalChinese {
		languageInstruction = "請以繁體中文進行分析與回答。金額若為新臺幣，請明確標示 TWD 或 NT$。"
	}
	return "You are an expert OCR data extraction and categorization AI.\n" +
		"Analyze the provided data (image and/or text) from a bill or receipt.\n" +
		"Extract the total amount, date, vendor/store name, a suitable category, and the currency.\n" +
		languageInstruction + "\n" + jsonStructureInstruction
}

// Fenced JSON occasionally comes back even with response_format set
var fencePattern = regexp.MustCompile("(?s)^```(\\w*)?\\s*\n?(.*?)\n?\\s*```$")

func stripFences(s string) string {
	if match := fencePattern.FindStringSubmatch(strings.TrimSpace(s)); match != nil && match[2] != "" {
		return strings.TrimSpace(match[2])
	}
	return strings.TrimSpace(s)
}

// Extract asks the model to read a receipt. The API key and model come from
// settings. All failures, network ones included, land in the result's Error
// field.
func (e *Extractor) Extract(ctx context.Context, settings *domain.Settings, input ExtractionInput) *ExtractionResult {
	if strings.TrimSpace(settings.APIKey) == "" {
		return &ExtractionResult{Error: "OpenRouter API key is not set"}
	}

	model := ModelFor(settings)
	multimodal := IsMultimodal(model)

	var userContent []any
	if multimodal && len(input.Image) > 0 && input.ImageMIME != "" {
		userContent = append(userContent, map[string]any{
			"type": "image_url",
			"image_url": map[string]string{
				"url": fmt.Sprintf("data:%s;base64,%s", input.ImageMIME, base64.StdEncoding.EncodeToString(input.Image)),
			},
		})
	}

	text := "Analyze the provided data.\n"
	switch {
	case strings.TrimSpace(input.Text) != "":
		text += "Prioritize information from the image if available, but use the OCR text as a strong reference:\nOCR Text:\n" + input.Text
	case len(userContent) > 0:
		text = "Analyze the provided image from a bill or receipt."
	default:
		return &ExtractionResult{Error: "no image or text provided for AI analysis"}
	}
	userContent = append(userContent, map[string]any{"type": "text", "text": text})

	req := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(input.Language)},
			{Role: "user", Content: userContent},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	req.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(req)
	if err != nil {
		return &ExtractionResult{Error: fmt.Sprintf("failed to encode request: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return &ExtractionResult{Error: fmt.Sprintf("failed to build request: %v", err)}
	}
	httpReq.Header.Set("Authorization", "Bearer "+settings.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return &ExtractionResult{Error: fmt.Sprintf("network error during AI extraction: %v", err)}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ExtractionResult{Error: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr chatResponse
		message := resp.Status
		if json.Unmarshal(responseBody, &apiErr) == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
			message = fmt.Sprintf("%d %s", resp.StatusCode, apiErr.Error.Message)
		}
		log.Warn().Int("status", resp.StatusCode).Str("model", model).Msg("AI extraction request failed")
		return &ExtractionResult{
			Error:       "AI extraction failed: " + message,
			RawResponse: string(responseBody),
		}
	}

	var data chatResponse
	if err := json.Unmarshal(responseBody, &data); err != nil {
		return &ExtractionResult{Error: "failed to decode AI response", RawResponse: string(responseBody)}
	}
	if len(data.Choices) == 0 || data.Choices[0].Message.Content == "" {
		return &ExtractionResult{Error: "AI returned no content", RawResponse: string(responseBody)}
	}

	content := data.Choices[0].Message.Content
	var result ExtractionResult
	if err := json.Unmarshal([]byte(stripFences(content)), &result); err != nil {
		log.Warn().Str("model", model).Msg("AI response was not valid JSON")
		return &ExtractionResult{Error: "failed to parse AI JSON response", RawResponse: content}
	}
	result.RawResponse = content
	return &result
}
