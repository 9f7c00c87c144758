package llm

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks a caller bug (e.g. vision call without image data).
// Never retried; surfaced as 4xx at the API boundary.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNoProviderConfigured is returned by Registry.Default when no adapter is
// registered at all. Retrying cannot succeed without a configuration change.
var ErrNoProviderConfigured = errors.New(
	"no LLM providers configured: set ANTHROPIC_API_KEY or OPENAI_API_KEY, or point OLLAMA_BASE_URL at a running Ollama")

// InvalidArgument wraps ErrInvalidArgument with a detail message.
func InvalidArgument(msg string) error {
	if msg == "" {
		return ErrInvalidArgument
	}
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}
