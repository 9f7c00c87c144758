// HTTP handlers for conversation listing, message history, and deletion.
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/naviai/naviai/internal/domain/conversation"
)

// ConversationHandler handles the /api/v1/conversations routes.
type ConversationHandler struct {
	conversations *conversation.Service
}

// NewConversationHandler creates a ConversationHandler.
func NewConversationHandler(conversations *conversation.Service) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// List handles GET /api/v1/conversations.
// Returns the user's conversations, most recently updated first.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	convs, err := h.conversations.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	if convs == nil {
		convs = []conversation.Conversation{}
	}

	writeJSON(w, http.StatusOK, convs)
}

// Messages handles GET /api/v1/conversations/{id}/messages.
//
// Response codes:
//   - 200 OK: messages in creation order
//   - 404 Not Found: conversation missing or owned by another user
func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conversationID := chi.URLParam(r, "id")
	msgs, err := h.conversations.Messages(r.Context(), userID, conversationID)
	if err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	if msgs == nil {
		msgs = []conversation.Message{}
	}

	writeJSON(w, http.StatusOK, msgs)
}

// Delete handles DELETE /api/v1/conversations/{id}.
//
// Response codes:
//   - 204 No Content: conversation and its messages removed
//   - 404 Not Found: conversation missing or owned by another user
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conversationID := chi.URLParam(r, "id")
	if err := h.conversations.Delete(r.Context(), userID, conversationID); err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete conversation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
