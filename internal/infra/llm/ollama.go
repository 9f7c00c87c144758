// Ollama adapter — local models via Ollama's OpenAI-compatible endpoint.
// Reuses the go-openai client with a custom base URL; vision can live on a
// separate Ollama instance (e.g. a Docker container with a vision model).
// Health check hits the native GET /api/tags endpoint directly.
package llm

import (
	"context"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OllamaAdapter implements Adapter against a running Ollama instance.
type OllamaAdapter struct {
	client       *openai.Client
	visionClient *openai.Client
	baseURL      string
	httpClient   *http.Client
}

// NewOllamaAdapter creates an OllamaAdapter. visionBaseURL may be empty, in
// which case vision calls go to the same instance as chat.
func NewOllamaAdapter(baseURL, visionBaseURL string) *OllamaAdapter {
	if visionBaseURL == "" {
		visionBaseURL = baseURL
	}
	return &OllamaAdapter{
		client:       ollamaClient(baseURL),
		visionClient: ollamaClient(visionBaseURL),
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: 5 * time.Second},
	}
}

// ollamaClient builds a go-openai client pointed at an Ollama /v1 endpoint.
func ollamaClient(baseURL string) *openai.Client {
	cfg := openai.DefaultConfig("ollama") // Ollama ignores the key but the client requires one
	cfg.BaseURL = baseURL + "/v1"
	return openai.NewClientWithConfig(cfg)
}

// Name returns "ollama".
func (a *OllamaAdapter) Name() string { return "ollama" }

// Complete performs a non-streaming chat completion.
func (a *OllamaAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	return openaiComplete(ctx, a.client, a.Name(), req, req.Messages)
}

// CompleteVision merges the request image and completes on the vision client.
func (a *OllamaAdapter) CompleteVision(ctx context.Context, req Request) (*Response, error) {
	if req.ImageBase64 == "" || req.ImageMediaType == "" {
		return nil, InvalidArgument("vision completion requires image data and media type")
	}
	merged := mergeImage(req.Messages, req.ImageMediaType, req.ImageBase64)
	return openaiComplete(ctx, a.visionClient, a.Name(), req, merged)
}

// Stream yields text deltas from the chat completion stream.
func (a *OllamaAdapter) Stream(ctx context.Context, req Request) (<-chan StreamDelta, error) {
	return openaiStream(ctx, a.client, req)
}

// HealthCheck calls GET /api/tags — cheap, no model inference involved.
func (a *OllamaAdapter) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close() //nolint:errcheck
	return resp.StatusCode == http.StatusOK
}
