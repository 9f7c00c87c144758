package knowledge

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"unicode"
)

// DefaultTopK is the number of chunks fed into the chat system prompt.
const DefaultTopK = 3

// Searcher resolves free-text queries against the FTS5 index.
type Searcher struct {
	db *sql.DB
}

// NewSearcher creates a Searcher backed by the given DB.
func NewSearcher(db *sql.DB) *Searcher {
	return &Searcher{db: db}
}

// Search runs an FTS5 MATCH for query and returns up to limit results ordered
// by relevance rank.
//
// Precision is deliberately traded for recall: surviving tokens are OR-joined
// so partial keyword overlap still matches. Any failure degrades to an empty
// result set — a search error must reduce answer quality, never fail the turn.
func (s *Searcher) Search(ctx context.Context, query string, limit int) []SearchResult {
	ftsQuery := sanitizeQuery(query)
	if ftsQuery == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultTopK
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT title, content
		FROM knowledge_chunks_fts
		WHERE knowledge_chunks_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, ftsQuery, limit)
	if err != nil {
		// Invalid MATCH syntax or a broken index both land here
		log.Printf("knowledge: search failed for query %q: %v", query, err)
		return nil
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Title, &r.Content); err != nil {
			log.Printf("knowledge: search scan failed: %v", err)
			return nil
		}
		// Title doubles as the human-readable source
		r.Source = r.Title
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		log.Printf("knowledge: search rows failed: %v", err)
		return nil
	}
	return results
}

// sanitizeQuery tokenizes on whitespace, strips non-alphanumeric characters
// from each token, drops empties, and OR-joins the survivors into an FTS5
// MATCH expression. Returns "" when nothing usable remains.
func sanitizeQuery(query string) string {
	var clean []string
	for _, word := range strings.Fields(query) {
		var b strings.Builder
		for _, ch := range word {
			// Letters and digits only; accented letters stay (pt-BR corpus)
			if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
				b.WriteRune(ch)
			}
		}
		if b.Len() > 0 {
			clean = append(clean, b.String())
		}
	}
	return strings.Join(clean, " OR ")
}
