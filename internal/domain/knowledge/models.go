// Package knowledge implements the retrieval side of the assistant: chunking
// markdown documents, indexing them into SQLite FTS5, and resolving free-text
// queries to ranked chunks that feed the chat system prompt.
package knowledge

// SearchResult is a single ranked hit from full-text search.
// Source is the human-readable provenance shown to the user (the document
// title, not the filename).
type SearchResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source"`
}
