package llm

import "context"

// Adapter is the uniform contract every provider implementation satisfies.
// Implementations own their upstream client handles for the process lifetime
// and are safe for concurrent use.
type Adapter interface {
	// Name returns the provider key, e.g. "anthropic".
	Name() string

	// Complete performs a single non-streaming completion.
	// A hard upstream failure is always reported as an error; an empty
	// Content is valid only when the upstream itself returned no text.
	Complete(ctx context.Context, req Request) (*Response, error)

	// CompleteVision performs a completion that includes the request's image.
	// Fails with ErrInvalidArgument unless both ImageBase64 and
	// ImageMediaType are set. The image is merged into the message list per
	// the trailing-user-message rule (see mergeImage).
	CompleteVision(ctx context.Context, req Request) (*Response, error)

	// Stream yields text deltas in upstream emission order. The returned
	// channel is closed when the stream ends; a terminal delta carries Err
	// on failure. Cancelling ctx closes the upstream connection; an
	// abandoned stream is never reused.
	Stream(ctx context.Context, req Request) (<-chan StreamDelta, error)

	// HealthCheck issues a minimal request and reports reachability.
	// Any failure — network, auth, malformed response — yields false.
	HealthCheck(ctx context.Context) bool
}
