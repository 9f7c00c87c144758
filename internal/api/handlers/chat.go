// HTTP handler for the chat endpoint.
// One POST is one full turn: retrieve, complete, persist, shape the reply.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	domainauth "github.com/naviai/naviai/internal/domain/auth"
	"github.com/naviai/naviai/internal/domain/chat"
	"github.com/naviai/naviai/internal/infra/llm"
)

// ChatHandler handles POST /api/v1/chat.
type ChatHandler struct {
	orchestrator *chat.Orchestrator
	authService  domainauth.Service
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(orchestrator *chat.Orchestrator, authService domainauth.Service) *ChatHandler {
	return &ChatHandler{orchestrator: orchestrator, authService: authService}
}

// ChatRequest is the request body for POST /api/v1/chat.
// ConversationID is optional; empty starts a new conversation.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

// Chat handles POST /api/v1/chat.
//
// Response codes:
//   - 200 OK: turn completed (including the provider-failure fallback reply)
//   - 400 Bad Request: invalid JSON or empty message
//   - 503 Service Unavailable: no LLM provider configured
//   - 500 Internal Server Error: persistence failure
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	locale := h.authService.Locale(r.Context(), userID)

	resp, err := h.orchestrator.Process(r.Context(), userID, req.Message, req.ConversationID, locale)
	if err != nil {
		if errors.Is(err, llm.ErrNoProviderConfigured) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "chat turn failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
