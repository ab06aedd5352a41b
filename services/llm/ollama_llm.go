package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// OllamaClient talks to a local Ollama daemon. Useful for development and
// air-gapped deployments; no API key is involved.
type OllamaClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewOllamaClient builds a client from OLLAMA_HOST and OLLAMA_MODEL.
func NewOllamaClient() (*OllamaClient, error) {
	baseURL := strings.TrimRight(os.Getenv("OLLAMA_HOST"), "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "llama3.1"
		slog.Warn("OLLAMA_MODEL not set, defaulting to llama3.1")
	}
	slog.Info("Initializing Ollama client", "base_url", baseURL, "model", model)
	return &OllamaClient{
		httpClient: &http.Client{Timeout: 300 * time.Second},
		baseURL:    baseURL,
		model:      model,
	}, nil
}

// Generate implements the Client interface.
func (o *OllamaClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	slog.Debug("Generating text via Ollama", "model", o.model)

	reqBody := ollamaGenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
	}
	if params.Temperature != nil || params.MaxTokens != nil {
		reqBody.Options = map[string]any{}
		if params.Temperature != nil {
			reqBody.Options["temperature"] = *params.Temperature
		}
		if params.MaxTokens != nil {
			reqBody.Options["num_predict"] = *params.MaxTokens
		}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", backendErr(ErrKindUnknown, "failed to marshal the Ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", backendErr(ErrKindUnknown, "failed to build the Ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", backendErr(ErrKindUnknown, "Ollama API call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", backendErr(ErrKindUnknown, "failed to read the Ollama response: %w", err)
	}

	var parsed ollamaGenerateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", backendErr(ErrKindUnknown, "failed to decode the Ollama response (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || parsed.Error != "" {
		kind := kindFromStatus(resp.StatusCode)
		if kind == ErrKindUnknown && strings.Contains(parsed.Error, "model") {
			kind = ErrKindModelError
		}
		return "", backendErr(kind, "Ollama API error (HTTP %d): %s", resp.StatusCode, parsed.Error)
	}
	if parsed.Response == "" {
		return "", backendErr(ErrKindModelError, "Ollama returned an empty response")
	}
	return parsed.Response, nil
}
