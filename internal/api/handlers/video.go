// HTTP handler for trusted video lookup.
package handlers

import (
	"net/http"

	"github.com/naviai/naviai/internal/domain/video"
)

const maxVideoResults = 10

// VideoHandler handles GET /api/v1/videos/trusted.
type VideoHandler struct {
	videoService *video.Service
}

// NewVideoHandler creates a VideoHandler.
func NewVideoHandler(videoService *video.Service) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// VideoSearchResponse is the response body for the trusted videos endpoint.
type VideoSearchResponse struct {
	Query  string               `json:"query"`
	Videos []video.TrustedVideo `json:"videos"`
}

// Search handles GET /api/v1/videos/trusted?q=...&limit=...
//
// Response codes:
//   - 200 OK: matching verified videos (possibly empty)
//   - 400 Bad Request: missing q parameter
func (h *VideoHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	limit := queryLimit(r, video.DefaultLimit, maxVideoResults)

	videos := h.videoService.Search(r.Context(), query, limit)
	if videos == nil {
		videos = []video.TrustedVideo{}
	}

	writeJSON(w, http.StatusOK, VideoSearchResponse{Query: query, Videos: videos})
}
