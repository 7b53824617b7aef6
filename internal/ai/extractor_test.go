package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() *domain.Settings {
	s := domain.DefaultSettings()
	s.APIKey = "sk-test"
	return s
}

func chatCompletion(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		},
	}
}

func TestExtract_Success(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(chatCompletion(`{"amount": 48.60, "date": "2024-03-15", "vendor": "SuperMart", "category": "Groceries", "currency": "USD"}`))
	}))
	defer server.Close()

	extractor := NewExtractor(server.URL)
	result := extractor.Extract(context.Background(), testSettings(), ExtractionInput{Text: "Total: $48.60"})

	assert.Empty(t, result.Error)
	require.NotNil(t, result.Amount)
	assert.Equal(t, 48.60, *result.Amount)
	require.NotNil(t, result.Date)
	assert.Equal(t, "2024-03-15", *result.Date)
	require.NotNil(t, result.Vendor)
	assert.Equal(t, "SuperMart", *result.Vendor)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, float64(500), gotBody["max_tokens"])
	assert.Equal(t, 0.2, gotBody["temperature"])
	assert.Equal(t, map[string]any{"type": "json_object"}, gotBody["response_format"])
}

func TestExtract_FencedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatCompletion("```json\n{\"amount\": 12.5}\n```"))
	}))
	defer server.Close()

	extractor := NewExtractor(server.URL)
	result := extractor.Extract(context.Background(), testSettings(), ExtractionInput{Text: "receipt"})

	assert.Empty(t, result.Error)
	require.NotNil(t, result.Amount)
	assert.Equal(t, 12.5, *result.Amount)
}

func TestExtract_MissingAPIKey(t *testing.T) {
	extractor := NewExtractor("http://unused.invalid")
	settings := domain.DefaultSettings()

	result := extractor.Extract(context.Background(), settings, ExtractionInput{Text: "receipt"})
	assert.Contains(t, result.Error, "API key")
}

func TestExtract_NoInput(t *testing.T) {
	extractor := NewExtractor("http://unused.invalid")

	result := extractor.Extract(context.Background(), testSettings(), ExtractionInput{})
	assert.Contains(t, result.Error, "no image or text")
}

func TestExtract_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "insufficient credits"}})
	}))
	defer server.Close()

	extractor := NewExtractor(server.URL)
	result := extractor.Extract(context.Background(), testSettings(), ExtractionInput{Text: "receipt"})

	assert.Contains(t, result.Error, "AI extraction failed")
	assert.Contains(t, result.Error, "insufficient credits")
	assert.NotEmpty(t, result.RawResponse)
}

func TestExtract_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	extractor := NewExtractor(server.URL)
	result := extractor.Extract(context.Background(), testSettings(), ExtractionInput{Text: "receipt"})

	assert.Contains(t, result.Error, "no content")
}

func TestExtract_MalformedModelJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatCompletion("The total appears to be $48.60"))
	}))
	defer server.Close()

	extractor := NewExtractor(server.URL)
	result := extractor.Extract(context.Background(), testSettings(), ExtractionInput{Text: "receipt"})

	assert.Contains(t, result.Error, "parse")
	assert.Equal(t, "The total appears to be $48.60", result.RawResponse)
}

func TestExtract_MultimodalImagePayload(t *testing.T) {
	var gotBody struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string            `json:"role"`
			Content json.RawMessage   `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(chatCompletion(`{"amount": 10}`))
	}))
	defer server.Close()

	settings := testSettings()
	settings.OCRModelName = "qwen/qwen2.5-vl-72b-instruct:free"

	extractor := NewExtractor(server.URL)
	result := extractor.Extract(context.Background(), settings, ExtractionInput{
		Image:     []byte{0xFF, 0xD8, 0xFF},
		ImageMIME: "image/jpeg",
	})

	assert.Empty(t, result.Error)
	require.Len(t, gotBody.Messages, 2)

	var parts []map[string]any
	require.NoError(t, json.Unmarshal(gotBody.Messages[1].Content, &parts))
	require.Len(t, parts, 2)
	assert.Equal(t, "image_url", parts[0]["type"])
	assert.Equal(t, "text", parts[1]["type"])
}

func TestIsMultimodal(t *testing.T) {
	assert.True(t, IsMultimodal("anthropic/claude-3-haiku"))
	assert.True(t, IsMultimodal("openai/gpt-4o-mini"))
	assert.True(t, IsMultimodal("qwen/qwen2.5-vl-72b-instruct:free"))
	assert.True(t, IsMultimodal("google/GEMINI-flash"))
	assert.False(t, IsMultimodal("deepseek/deepseek-chat:free"))
	assert.False(t, IsMultimodal("mistralai/mistral-7b"))
}

func TestModelFor(t *testing.T) {
	settings := domain.DefaultSettings()
	assert.Equal(t, settings.OCRModelName, ModelFor(settings))

	settings.OCRModelName = ""
	settings.ModelName = "anthropic/claude-3-haiku"
	assert.Equal(t, "anthropic/claude-3-haiku", ModelFor(settings))

	settings.ModelName = " "
	assert.Equal(t, domain.DefaultOCRModel, ModelFor(settings))
}
