// Package llm defines the provider-agnostic LLM abstraction.
// All types here are shared between the Adapter interface and the
// provider-specific implementations (Anthropic, OpenAI, Ollama).
package llm

// Role values for Message. The set is closed; adapters may reject others.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Block types for multimodal message content.
const (
	BlockText  = "text"
	BlockImage = "image"
)

// ContentBlock is one element of a multimodal message body.
// Type is BlockText (Text set) or BlockImage (MediaType + Data set,
// Data being base64-encoded image bytes).
type ContentBlock struct {
	Type      string
	Text      string
	MediaType string
	Data      string
}

// Message represents a single turn in a conversation.
// Content carries plain text. When Blocks is non-nil the message is
// multimodal and Content is ignored; adapters encode Blocks into their
// provider's wire shape.
type Message struct {
	Role    string
	Content string
	Blocks  []ContentBlock
}

// TextMessage builds a plain-text message.
func TextMessage(role, content string) Message {
	return Message{Role: role, Content: content}
}

// Request is the uniform input for a completion call.
// An image payload is present iff the caller intends a vision call;
// CompleteVision rejects requests missing either image field.
type Request struct {
	Messages     []Message
	Model        string
	Temperature  float32
	MaxTokens    int
	SystemPrompt string

	ImageBase64    string
	ImageMediaType string
}

// Response is the normalized output from any adapter.
// TokensIn/TokensOut are zero when the upstream does not report usage.
type Response struct {
	Content   string
	Provider  string
	Model     string
	TokensIn  int
	TokensOut int
}

// StreamDelta is one incremental fragment of a streaming completion.
// Err is non-nil only on the terminal delta of a failed stream.
type StreamDelta struct {
	Text string
	Err  error
}

// mergeImage applies the vision message-merge rule shared by every adapter:
// if the last message has role "user", the image block is appended to that
// message's content (plain text is promoted to blocks first); otherwise a
// new trailing user message carrying only the image block is appended.
// The input slice is not mutated.
func mergeImage(messages []Message, mediaType, data string) []Message {
	img := ContentBlock{Type: BlockImage, MediaType: mediaType, Data: data}

	merged := make([]Message, len(messages))
	copy(merged, messages)

	if n := len(merged); n > 0 && merged[n-1].Role == RoleUser {
		last := merged[n-1]
		var blocks []ContentBlock
		if last.Blocks == nil {
			blocks = []ContentBlock{{Type: BlockText, Text: last.Content}}
		} else {
			blocks = append([]ContentBlock(nil), last.Blocks...)
		}
		last.Blocks = append(blocks, img)
		last.Content = ""
		merged[n-1] = last
		return merged
	}

	return append(merged, Message{Role: RoleUser, Blocks: []ContentBlock{img}})
}
