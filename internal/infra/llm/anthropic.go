// Anthropic Messages API adapter over stdlib net/http.
// The system prompt travels in the dedicated "system" field; multimodal
// content uses base64 source blocks. Streaming parses the SSE event feed.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	anthropicBaseURL    = "https://api.anthropic.com/v1"
	anthropicAPIVersion = "2023-06-01"

	// Minimal model used for health probes only.
	anthropicHealthModel = "claude-3-5-haiku-20241022"
)

// AnthropicAdapter implements Adapter against the Anthropic Messages API.
type AnthropicAdapter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewAnthropicAdapter creates an AnthropicAdapter with a 120s client timeout.
// Completions can legitimately run long; callers impose tighter deadlines
// through ctx when needed.
func NewAnthropicAdapter(apiKey string) *AnthropicAdapter {
	return &AnthropicAdapter{
		apiKey:  apiKey,
		baseURL: anthropicBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Name returns "anthropic".
func (a *AnthropicAdapter) Name() string { return "anthropic" }

// ─── wire types ──────────────────────────────────────────────────────────────

type anthropicMessage struct {
	Role string `json:"role"`
	// string for plain text, []anthropicBlock for multimodal content.
	Content any `json:"content"`
}

type anthropicBlock struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
	Stream      bool               `json:"stream,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

// ─── Adapter implementation ─────────────────────────────────────────────────

// Complete performs a non-streaming completion via POST /messages.
func (a *AnthropicAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	body, err := a.doMessages(ctx, a.buildRequest(req, req.Messages, false))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var resp anthropicResponse
	if decodeErr := json.NewDecoder(body).Decode(&resp); decodeErr != nil {
		return nil, fmt.Errorf("anthropic: decode response: %w", decodeErr)
	}

	content := ""
	if len(resp.Content) > 0 {
		content = resp.Content[0].Text
	}
	return &Response{
		Content:   content,
		Provider:  a.Name(),
		Model:     req.Model,
		TokensIn:  resp.Usage.InputTokens,
		TokensOut: resp.Usage.OutputTokens,
	}, nil
}

// CompleteVision merges the request image into the message list and completes.
func (a *AnthropicAdapter) CompleteVision(ctx context.Context, req Request) (*Response, error) {
	if req.ImageBase64 == "" || req.ImageMediaType == "" {
		return nil, InvalidArgument("vision completion requires image data and media type")
	}
	merged := mergeImage(req.Messages, req.ImageMediaType, req.ImageBase64)
	return a.Complete(ctx, Request{
		Messages:     merged,
		Model:        req.Model,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
		SystemPrompt: req.SystemPrompt,
	})
}

// Stream yields text deltas from the SSE event feed in emission order.
func (a *AnthropicAdapter) Stream(ctx context.Context, req Request) (<-chan StreamDelta, error) {
	body, err := a.doMessages(ctx, a.buildRequest(req, req.Messages, true))
	if err != nil {
		return nil, err
	}

	out := make(chan StreamDelta)
	go func() {
		defer close(out)
		defer body.Close()

		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			data, ok := cutSSEData(line)
			if !ok {
				continue
			}

			var event anthropicStreamEvent
			if json.Unmarshal([]byte(data), &event) != nil {
				continue // skip malformed events
			}

			switch event.Type {
			case "content_block_delta":
				if event.Delta.Text != "" {
					select {
					case out <- StreamDelta{Text: event.Delta.Text}:
					case <-ctx.Done():
						return
					}
				}
			case "message_stop":
				return
			case "error":
				select {
				case out <- StreamDelta{Err: fmt.Errorf("anthropic: stream error: %s", data)}:
				case <-ctx.Done():
				}
				return
			}
		}
		if scanErr := scanner.Err(); scanErr != nil && ctx.Err() == nil {
			select {
			case out <- StreamDelta{Err: fmt.Errorf("anthropic: stream read: %w", scanErr)}:
			case <-ctx.Done():
			}
		}
	}()

	return out, nil
}

// HealthCheck sends a one-token message and reports reachability.
func (a *AnthropicAdapter) HealthCheck(ctx context.Context) bool {
	body, err := a.doMessages(ctx, anthropicRequest{
		Model:     anthropicHealthModel,
		MaxTokens: 10,
		Messages:  []anthropicMessage{{Role: RoleUser, Content: "ping"}},
	})
	if err != nil {
		return false
	}
	defer body.Close()

	var resp anthropicResponse
	if json.NewDecoder(body).Decode(&resp) != nil {
		return false
	}
	return len(resp.Content) > 0
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// buildRequest translates the uniform Request into the Messages API shape.
func (a *AnthropicAdapter) buildRequest(req Request, messages []Message, stream bool) anthropicRequest {
	wire := make([]anthropicMessage, 0, len(messages))
	for _, m := range messages {
		wire = append(wire, anthropicMessage{Role: m.Role, Content: encodeAnthropicContent(m)})
	}
	return anthropicRequest{
		Model:       req.Model,
		Messages:    wire,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.SystemPrompt,
		Stream:      stream,
	}
}

// encodeAnthropicContent maps Message content to a string or block list.
func encodeAnthropicContent(m Message) any {
	if m.Blocks == nil {
		return m.Content
	}
	blocks := make([]anthropicBlock, 0, len(m.Blocks))
	for _, b := range m.Blocks {
		switch b.Type {
		case BlockText:
			blocks = append(blocks, anthropicBlock{Type: "text", Text: b.Text})
		case BlockImage:
			blocks = append(blocks, anthropicBlock{
				Type: "image",
				Source: &anthropicImageSource{
					Type:      "base64",
					MediaType: b.MediaType,
					Data:      b.Data,
				},
			})
		}
	}
	return blocks
}

// doMessages sends POST /messages and returns the response body.
// Caller is responsible for closing the returned ReadCloser.
func (a *AnthropicAdapter) doMessages(ctx context.Context, wire anthropicRequest) (io.ReadCloser, error) {
	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("anthropic: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("anthropic: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close() //nolint:errcheck
		return nil, fmt.Errorf("anthropic: status %d: %s", resp.StatusCode, detail)
	}
	return resp.Body, nil
}

// cutSSEData extracts the payload from an SSE "data: ..." line.
func cutSSEData(line string) (string, bool) {
	const prefix = "data: "
	if len(line) <= len(prefix) || line[:len(prefix)] != prefix {
		return "", false
	}
	return line[len(prefix):], true
}
