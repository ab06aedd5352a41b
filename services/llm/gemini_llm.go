package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/awnumar/memguard"
)

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel   = "gemini-2.5-flash"
)

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     *float32 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *geminiError `json:"error,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// GeminiClient talks to the Google Generative Language API. This is the
// default backend for the wellbeing surface.
type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     *memguard.Enclave
}

// NewGeminiClient builds a client from the environment. GEMINI_API_KEY (or
// the gemini_api_key container secret) is required; GEMINI_MODEL and
// GEMINI_BASE_URL are optional overrides.
func NewGeminiClient() (*GeminiClient, error) {
	key, err := resolveAPIKey("GEMINI_API_KEY", "/run/secrets/gemini_api_key")
	if err != nil {
		return nil, err
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = geminiDefaultModel
		slog.Warn("GEMINI_MODEL not set, defaulting", "model", model)
	}
	baseURL := strings.TrimRight(os.Getenv("GEMINI_BASE_URL"), "/")
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}

	slog.Info("Initializing Gemini client", "model", model)
	return &GeminiClient{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		model:      model,
		apiKey:     key,
	}, nil
}

// Generate implements the Client interface.
func (g *GeminiClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	slog.Debug("Generating text via Gemini", "model", g.model)

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	if params.Temperature != nil || params.MaxTokens != nil {
		reqBody.GenerationConfig = &geminiGenerationConfig{
			Temperature:     params.Temperature,
			MaxOutputTokens: params.MaxTokens,
		}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", backendErr(ErrKindUnknown, "failed to marshal the Gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", backendErr(ErrKindUnknown, "failed to build the Gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	apiKey, err := openKey(g.apiKey)
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", backendErr(ErrKindUnknown, "Gemini API call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", backendErr(ErrKindUnknown, "failed to read the Gemini response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", backendErr(ErrKindUnknown, "failed to decode the Gemini response (HTTP %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || parsed.Error != nil {
		return "", classifyGeminiError(resp.StatusCode, parsed.Error)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		slog.Warn("Gemini returned no candidates")
		return "", backendErr(ErrKindModelError, "Gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// classifyGeminiError maps a Gemini failure to an ErrKind. The API reports
// bad keys as 400 INVALID_ARGUMENT with an "API key" message rather than a
// clean 401, so the message text participates in the mapping.
func classifyGeminiError(status int, apiErr *geminiError) error {
	msg := ""
	if apiErr != nil {
		msg = apiErr.Message
		if apiErr.Code != 0 {
			status = apiErr.Code
		}
	}
	kind := kindFromStatus(status)
	if kind == ErrKindUnknown {
		lower := strings.ToLower(msg)
		switch {
		case strings.Contains(lower, "api key") || strings.Contains(msg, "API_KEY_INVALID"):
			kind = ErrKindInvalidCredentials
		case strings.Contains(lower, "quota"):
			kind = ErrKindQuotaExceeded
		case strings.Contains(lower, "model"):
			kind = ErrKindModelError
		}
	}
	return backendErr(kind, "Gemini API error (HTTP %d): %s", status, msg)
}
