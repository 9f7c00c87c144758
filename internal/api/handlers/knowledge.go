// HTTP handler for knowledge base search.
package handlers

import (
	"net/http"

	"github.com/naviai/naviai/internal/domain/knowledge"
)

const maxKnowledgeResults = 10

// KnowledgeHandler handles GET /api/v1/knowledge/search.
type KnowledgeHandler struct {
	searcher *knowledge.Searcher
}

// NewKnowledgeHandler creates a KnowledgeHandler.
func NewKnowledgeHandler(searcher *knowledge.Searcher) *KnowledgeHandler {
	return &KnowledgeHandler{searcher: searcher}
}

// KnowledgeSearchResponse is the response body for the search endpoint.
// Results is always present, empty when nothing matched.
type KnowledgeSearchResponse struct {
	Query   string                   `json:"query"`
	Results []knowledge.SearchResult `json:"results"`
}

// Search handles GET /api/v1/knowledge/search?q=...&limit=...
//
// Response codes:
//   - 200 OK: results returned (possibly empty)
//   - 400 Bad Request: missing q parameter
func (h *KnowledgeHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	limit := queryLimit(r, knowledge.DefaultTopK, maxKnowledgeResults)

	results := h.searcher.Search(r.Context(), query, limit)
	if results == nil {
		results = []knowledge.SearchResult{}
	}

	writeJSON(w, http.StatusOK, KnowledgeSearchResponse{Query: query, Results: results})
}
