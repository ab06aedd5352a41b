package llm

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient is an alternative backend for deployments without Gemini
// access.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a client from OPENAI_API_KEY (or the
// openai_api_key container secret) and OPENAI_MODEL.
func NewOpenAIClient() (*OpenAIClient, error) {
	enclave, err := resolveAPIKey("OPENAI_API_KEY", "/run/secrets/openai_api_key")
	if err != nil {
		return nil, err
	}
	// The SDK keeps the key for the lifetime of the client, so the enclave
	// is opened exactly once here.
	apiKey, err := openKey(enclave)
	if err != nil {
		return nil, err
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
		slog.Warn("OPENAI_MODEL not set, defaulting to gpt-4o-mini")
	}
	slog.Info("Initializing OpenAI client", "model", model)
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Generate implements the Client interface.
func (o *OpenAIClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	slog.Debug("Generating text via OpenAI", "model", o.model)
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}
	if params.MaxTokens != nil {
		req.MaxCompletionTokens = *params.MaxTokens
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("OpenAI API call failed", "error", err)
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		slog.Warn("OpenAI returned no choices or empty content")
		return "", backendErr(ErrKindModelError, "OpenAI returned no choices")
	}
	slog.Debug("Received response from OpenAI", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		kind := kindFromStatus(apiErr.HTTPStatusCode)
		if code, ok := apiErr.Code.(string); ok && code == "model_not_found" {
			kind = ErrKindModelError
		}
		return &BackendError{Kind: kind, Err: err}
	}
	return &BackendError{Kind: ErrKindUnknown, Err: err}
}
