// Unit tests for the Anthropic adapter.
// Uses httptest.NewServer to mock the Messages API — no real credentials needed.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestAnthropic points an adapter at the given mock server.
func newTestAnthropic(srvURL string) *AnthropicAdapter {
	a := NewAnthropicAdapter("test-key")
	a.baseURL = srvURL
	return a
}

func anthropicOK(text string, tokensIn, tokensOut int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"content":[{"type":"text","text":%q}],"usage":{"input_tokens":%d,"output_tokens":%d}}`,
			text, tokensIn, tokensOut)
	}
}

func TestAnthropic_Complete(t *testing.T) {
	t.Parallel()

	var gotWire anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" || r.Method != http.MethodPost {
			http.Error(w, "unexpected path", http.StatusNotFound)
			return
		}
		if r.Header.Get("x-api-key") != "test-key" || r.Header.Get("anthropic-version") == "" {
			http.Error(w, "missing headers", http.StatusUnauthorized)
			return
		}
		json.NewDecoder(r.Body).Decode(&gotWire) //nolint:errcheck
		anthropicOK("Ola! Passo 1: abra o aplicativo.", 42, 17)(w, r)
	}))
	defer srv.Close()

	a := newTestAnthropic(srv.URL)
	resp, err := a.Complete(context.Background(), Request{
		Messages:     []Message{TextMessage(RoleUser, "como envio uma foto?")},
		Model:        "claude-sonnet-4-20250514",
		Temperature:  0.7,
		MaxTokens:    2048,
		SystemPrompt: "Voce e um assistente.",
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if resp.Content != "Ola! Passo 1: abra o aplicativo." {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Provider != "anthropic" || resp.Model != "claude-sonnet-4-20250514" {
		t.Errorf("provenance = %s/%s", resp.Provider, resp.Model)
	}
	if resp.TokensIn != 42 || resp.TokensOut != 17 {
		t.Errorf("usage = %d/%d; want 42/17", resp.TokensIn, resp.TokensOut)
	}

	// System prompt travels in the dedicated field, not as a message
	if gotWire.System != "Voce e um assistente." {
		t.Errorf("wire system = %q", gotWire.System)
	}
	if len(gotWire.Messages) != 1 || gotWire.Messages[0].Role != RoleUser {
		t.Errorf("wire messages = %+v", gotWire.Messages)
	}
}

func TestAnthropic_Complete_UpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"overloaded_error"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := newTestAnthropic(srv.URL)
	_, err := a.Complete(context.Background(), Request{
		Messages: []Message{TextMessage(RoleUser, "oi")},
		Model:    "claude-sonnet-4-20250514",
	})
	if err == nil {
		t.Fatal("Complete() error = nil; want upstream status error")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error = %v; want the upstream status", err)
	}
}

func TestAnthropic_CompleteVision_SendsImageBlock(t *testing.T) {
	t.Parallel()

	var rawWire map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&rawWire) //nolint:errcheck
		anthropicOK("uma tela de celular", 0, 0)(w, r)
	}))
	defer srv.Close()

	a := newTestAnthropic(srv.URL)
	resp, err := a.CompleteVision(context.Background(), Request{
		Messages:       []Message{TextMessage(RoleUser, "o que e isso?")},
		Model:          "claude-sonnet-4-20250514",
		MaxTokens:      2048,
		ImageBase64:    "aGVsbG8=",
		ImageMediaType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("CompleteVision() error = %v", err)
	}
	if resp.Content != "uma tela de celular" {
		t.Errorf("Content = %q", resp.Content)
	}

	msgs := rawWire["messages"].([]any)
	content := msgs[len(msgs)-1].(map[string]any)["content"].([]any)
	if len(content) != 2 {
		t.Fatalf("wire content blocks = %d; want text + image", len(content))
	}
	img := content[1].(map[string]any)
	if img["type"] != "image" {
		t.Fatalf("second block type = %v; want image", img["type"])
	}
	source := img["source"].(map[string]any)
	if source["type"] != "base64" || source["media_type"] != "image/jpeg" || source["data"] != "aGVsbG8=" {
		t.Errorf("image source = %v", source)
	}
}

func TestCompleteVision_RequiresImage(t *testing.T) {
	t.Parallel()

	// No server: the argument check fires before any request is sent.
	adapters := []Adapter{
		NewAnthropicAdapter("test-key"),
		NewOpenAIAdapter("test-key"),
		NewOllamaAdapter("http://127.0.0.1:1", ""),
	}
	for _, a := range adapters {
		for _, req := range []Request{
			{Messages: []Message{TextMessage(RoleUser, "oi")}, ImageMediaType: "image/png"},
			{Messages: []Message{TextMessage(RoleUser, "oi")}, ImageBase64: "aGVsbG8="},
		} {
			if _, err := a.CompleteVision(context.Background(), req); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("%s: CompleteVision() error = %v; want ErrInvalidArgument", a.Name(), err)
			}
		}
	}
}

func TestAnthropic_Stream(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: content_block_delta\n")
		fmt.Fprint(w, `data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"Ola"}}`+"\n\n")
		fmt.Fprint(w, `data: {"type":"content_block_delta","delta":{"type":"text_delta","text":", tudo bem?"}}`+"\n\n")
		fmt.Fprint(w, `data: {"type":"message_stop"}`+"\n\n")
	}))
	defer srv.Close()

	a := newTestAnthropic(srv.URL)
	deltas, err := a.Stream(context.Background(), Request{
		Messages: []Message{TextMessage(RoleUser, "oi")},
		Model:    "claude-sonnet-4-20250514",
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	var got strings.Builder
	for d := range deltas {
		if d.Err != nil {
			t.Fatalf("delta error = %v", d.Err)
		}
		got.WriteString(d.Text)
	}
	if got.String() != "Ola, tudo bem?" {
		t.Errorf("streamed text = %q; want the deltas in order", got.String())
	}
}

// TestAnthropic_Stream_CancelledConsumerCloses pins the shutdown path for a
// consumer that cancels and walks away: the stream goroutine must close the
// channel instead of blocking forever on the terminal-error send.
func TestAnthropic_Stream_CancelledConsumerCloses(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, `data: {"type":"error","error":{"type":"overloaded_error"}}`+"\n\n")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	deltas, err := newTestAnthropic(srv.URL).Stream(ctx, Request{
		Messages: []Message{TextMessage(RoleUser, "oi")},
		Model:    "claude-sonnet-4-20250514",
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	cancel()
	time.Sleep(100 * time.Millisecond)

	select {
	case d, ok := <-deltas:
		if ok {
			t.Fatalf("received %+v after cancellation; channel should close without sending", d)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream channel not closed after context cancellation")
	}
}

func TestAnthropic_HealthCheck(t *testing.T) {
	t.Parallel()

	healthy := httptest.NewServer(anthropicOK("pong", 1, 1))
	defer healthy.Close()
	if !newTestAnthropic(healthy.URL).HealthCheck(context.Background()) {
		t.Error("HealthCheck() = false against a healthy upstream")
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer down.Close()
	if newTestAnthropic(down.URL).HealthCheck(context.Background()) {
		t.Error("HealthCheck() = true against a failing upstream")
	}
}
