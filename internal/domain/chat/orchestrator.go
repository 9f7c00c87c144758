// Package chat composes retrieval, the conversation store, and the LLM
// adapter registry into a single "answer this message" operation per turn.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/naviai/naviai/internal/domain/conversation"
	"github.com/naviai/naviai/internal/domain/knowledge"
	"github.com/naviai/naviai/internal/domain/video"
	"github.com/naviai/naviai/internal/i18n"
	"github.com/naviai/naviai/internal/infra/config"
	"github.com/naviai/naviai/internal/infra/llm"
)

// Retrieval and generation parameters for a turn.
const (
	maxHistoryMessages = 20
	knowledgeTopK      = 3
	videoTopK          = 2
	chatTemperature    = 0.7
	chatMaxTokens      = 2048
)

// Source is one provenance entry attached to a grounded answer.
type Source struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}

// Response is the structured result of one chat turn.
type Response struct {
	Message        string              `json:"message"`
	ConversationID string              `json:"conversation_id"`
	HasSteps       bool                `json:"has_steps"`
	SuggestedVideo *video.TrustedVideo `json:"suggested_video,omitempty"`
	Sources        []Source            `json:"sources,omitempty"`
}

// Orchestrator runs the per-turn state machine: resolve conversation,
// retrieve context, invoke the provider, persist the turn, shape the reply.
type Orchestrator struct {
	convs    *conversation.Service
	searcher *knowledge.Searcher
	videos   *video.Service
	registry *llm.Registry
	cfg      config.Config
}

// NewOrchestrator wires the orchestrator's collaborators. All are constructed
// once at startup and shared across turns; the registry is read-only after
// construction so concurrent turns need no locking.
func NewOrchestrator(
	convs *conversation.Service,
	searcher *knowledge.Searcher,
	videos *video.Service,
	registry *llm.Registry,
	cfg config.Config,
) *Orchestrator {
	return &Orchestrator{
		convs:    convs,
		searcher: searcher,
		videos:   videos,
		registry: registry,
		cfg:      cfg,
	}
}

// Process answers one user message.
//
// Provider failures never propagate: the turn commits the user message with
// a locale-specific fallback reply and returns it flagged with no steps and
// no suggestions. Persistence failures do propagate and abort the turn.
func (o *Orchestrator) Process(ctx context.Context, userID, message, conversationID, locale string) (*Response, error) {
	conv, err := o.convs.GetOrCreate(ctx, userID, conversationID, message, locale)
	if err != nil {
		return nil, err
	}

	// Retrieval runs on the user's message verbatim; both searches degrade
	// to empty on failure.
	ragChunks := o.searcher.Search(ctx, message, knowledgeTopK)
	videoSuggestions := o.videos.Search(ctx, message, videoTopK)

	systemPrompt := buildSystemPrompt(locale, ragChunks)

	messages, err := o.buildMessages(ctx, conv.ID, message)
	if err != nil {
		return nil, err
	}

	adapter, err := o.registry.Default()
	if err != nil {
		// No provider configured is a configuration error, not a turn
		// failure; retrying cannot help.
		return nil, err
	}

	req := llm.Request{
		Messages:     messages,
		Model:        o.cfg.Model(adapter.Name()),
		SystemPrompt: systemPrompt,
		Temperature:  chatTemperature,
		MaxTokens:    chatMaxTokens,
	}

	resp, err := adapter.Complete(ctx, req)
	if err != nil {
		log.Printf("chat: completion via %s failed: %v", adapter.Name(), err)
		fallback := i18n.T(i18n.KeyChatFallback, locale)
		if commitErr := o.convs.CommitTurn(ctx, conv.ID, message, fallback, "", ""); commitErr != nil {
			return nil, fmt.Errorf("chat: persist fallback turn: %w", commitErr)
		}
		return &Response{
			Message:        fallback,
			ConversationID: conv.ID,
			HasSteps:       false,
		}, nil
	}

	if err := o.convs.CommitTurn(ctx, conv.ID, message, resp.Content, resp.Provider, resp.Model); err != nil {
		return nil, fmt.Errorf("chat: persist turn: %w", err)
	}

	out := &Response{
		Message:        resp.Content,
		ConversationID: conv.ID,
		HasSteps:       i18n.StepPattern(locale).MatchString(resp.Content),
	}
	if len(videoSuggestions) > 0 {
		out.SuggestedVideo = &videoSuggestions[0]
	}
	for _, c := range ragChunks {
		out.Sources = append(out.Sources, Source{Title: c.Title, Source: c.Source})
	}
	return out, nil
}

// buildMessages maps stored history plus the current message onto the
// provider-agnostic message list, capped to the most recent
// maxHistoryMessages entries including the current one.
func (o *Orchestrator) buildMessages(ctx context.Context, conversationID, message string) ([]llm.Message, error) {
	history, err := o.convs.History(ctx, conversationID, maxHistoryMessages-1)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, llm.TextMessage(m.Role, m.Content))
	}
	messages = append(messages, llm.TextMessage(llm.RoleUser, message))
	return messages, nil
}

// buildSystemPrompt assembles the locale base instructions, optionally
// suffixed with the retrieved-context header and each chunk rendered as
// "[title]\n{content}", joined by blank lines.
func buildSystemPrompt(locale string, chunks []knowledge.SearchResult) string {
	prompt := i18n.T(i18n.KeyChatSystemPrompt, locale)
	if len(chunks) == 0 {
		return prompt
	}

	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, fmt.Sprintf("[%s]\n%s", c.Title, c.Content))
	}
	return prompt + i18n.T(i18n.KeyRAGContextHeader, locale) + strings.Join(parts, "\n\n")
}
