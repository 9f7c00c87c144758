// HTTP handler for image analysis.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	domainauth "github.com/naviai/naviai/internal/domain/auth"
	"github.com/naviai/naviai/internal/domain/vision"
	"github.com/naviai/naviai/internal/infra/llm"
)

// VisionHandler handles POST /api/v1/vision/analyze.
type VisionHandler struct {
	visionService *vision.Service
	authService   domainauth.Service
}

// NewVisionHandler creates a VisionHandler.
func NewVisionHandler(visionService *vision.Service, authService domainauth.Service) *VisionHandler {
	return &VisionHandler{visionService: visionService, authService: authService}
}

// VisionRequest is the request body for POST /api/v1/vision/analyze.
// Question is optional; empty means the locale's default "describe this"
// question. MediaType defaults to image/jpeg.
type VisionRequest struct {
	ImageBase64 string `json:"image_base64"`
	MediaType   string `json:"media_type"`
	Question    string `json:"question"`
}

// Analyze handles POST /api/v1/vision/analyze.
//
// Response codes:
//   - 200 OK: analysis completed (including the provider-failure fallback)
//   - 400 Bad Request: invalid JSON or missing image data
//   - 503 Service Unavailable: no LLM provider configured
func (h *VisionHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req VisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ImageBase64 == "" {
		writeError(w, http.StatusBadRequest, "image_base64 is required")
		return
	}
	if req.MediaType == "" {
		req.MediaType = "image/jpeg"
	}

	locale := h.authService.Locale(r.Context(), userID)

	resp, err := h.visionService.Analyze(r.Context(), req.ImageBase64, req.MediaType, req.Question, locale)
	if err != nil {
		if errors.Is(err, llm.ErrNoProviderConfigured) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		if errors.Is(err, llm.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, "invalid image payload")
			return
		}
		writeError(w, http.StatusInternalServerError, "image analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
