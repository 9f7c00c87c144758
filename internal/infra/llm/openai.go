// OpenAI Chat Completions adapter built on sashabaranov/go-openai.
// OpenAI-style APIs have no dedicated system field: the system prompt is
// prepended as a synthetic leading message with role "system", and images
// travel as data-URL image_url parts.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// Minimal model used for health probes only.
const openaiHealthModel = "gpt-4o-mini"

// OpenAIAdapter implements Adapter against the OpenAI Chat Completions API.
type OpenAIAdapter struct {
	client *openai.Client
}

// NewOpenAIAdapter creates an OpenAIAdapter for the hosted OpenAI API.
func NewOpenAIAdapter(apiKey string) *OpenAIAdapter {
	return &OpenAIAdapter{client: openai.NewClient(apiKey)}
}

// Name returns "openai".
func (a *OpenAIAdapter) Name() string { return "openai" }

// Complete performs a non-streaming chat completion.
func (a *OpenAIAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	return openaiComplete(ctx, a.client, a.Name(), req, req.Messages)
}

// CompleteVision merges the request image into the message list and completes.
func (a *OpenAIAdapter) CompleteVision(ctx context.Context, req Request) (*Response, error) {
	if req.ImageBase64 == "" || req.ImageMediaType == "" {
		return nil, InvalidArgument("vision completion requires image data and media type")
	}
	merged := mergeImage(req.Messages, req.ImageMediaType, req.ImageBase64)
	return openaiComplete(ctx, a.client, a.Name(), req, merged)
}

// Stream yields text deltas from the chat completion stream.
func (a *OpenAIAdapter) Stream(ctx context.Context, req Request) (<-chan StreamDelta, error) {
	return openaiStream(ctx, a.client, req)
}

// HealthCheck sends a tiny completion and reports reachability.
func (a *OpenAIAdapter) HealthCheck(ctx context.Context) bool {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     openaiHealthModel,
		MaxTokens: 10,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "ping"},
		},
	})
	return err == nil && len(resp.Choices) > 0
}

// ─── shared OpenAI-compatible plumbing (also used by the Ollama adapter) ─────

// openaiComplete runs a non-streaming completion against any
// OpenAI-compatible client and normalizes the response.
func openaiComplete(ctx context.Context, client *openai.Client, provider string, req Request, messages []Message) (*Response, error) {
	resp, err := client.CreateChatCompletion(ctx, openaiRequest(req, messages, false))
	if err != nil {
		return nil, fmt.Errorf("%s: chat completion: %w", provider, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: chat completion returned no choices", provider)
	}
	return &Response{
		Content:   resp.Choices[0].Message.Content,
		Provider:  provider,
		Model:     req.Model,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
	}, nil
}

// openaiStream opens a completion stream and forwards content deltas.
func openaiStream(ctx context.Context, client *openai.Client, req Request) (<-chan StreamDelta, error) {
	stream, err := client.CreateChatCompletionStream(ctx, openaiRequest(req, req.Messages, true))
	if err != nil {
		return nil, fmt.Errorf("stream open: %w", err)
	}

	out := make(chan StreamDelta)
	go func() {
		defer close(out)
		defer stream.Close() //nolint:errcheck

		for {
			chunk, recvErr := stream.Recv()
			if errors.Is(recvErr, io.EOF) {
				return
			}
			if recvErr != nil {
				if ctx.Err() == nil {
					select {
					case out <- StreamDelta{Err: fmt.Errorf("stream recv: %w", recvErr)}:
					case <-ctx.Done():
					}
				}
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if text := chunk.Choices[0].Delta.Content; text != "" {
				select {
				case out <- StreamDelta{Text: text}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// openaiRequest translates the uniform Request into go-openai's shape,
// prepending the system prompt as a leading "system" message.
func openaiRequest(req Request, messages []Message, stream bool) openai.ChatCompletionRequest {
	wire := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if req.SystemPrompt != "" {
		wire = append(wire, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, m := range messages {
		wire = append(wire, encodeOpenAIMessage(m))
	}
	return openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    wire,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	}
}

// encodeOpenAIMessage maps Message content to plain or multi-part form.
// Image blocks become data URLs, the wire encoding OpenAI-style APIs expect.
func encodeOpenAIMessage(m Message) openai.ChatCompletionMessage {
	if m.Blocks == nil {
		return openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	parts := make([]openai.ChatMessagePart, 0, len(m.Blocks))
	for _, b := range m.Blocks {
		switch b.Type {
		case BlockText:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: b.Text,
			})
		case BlockImage:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    fmt.Sprintf("data:%s;base64,%s", b.MediaType, b.Data),
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
	}
	return openai.ChatCompletionMessage{Role: m.Role, MultiContent: parts}
}
