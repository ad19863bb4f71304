package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dropdawn/dropdawn/internal/conversation"
	"github.com/dropdawn/dropdawn/internal/log"
)

// conversationHandler serves the conversation CRUD endpoints. Every route
// requires an authenticated user; temporary sessions have nothing stored.
type conversationHandler struct {
	store  *conversation.Store
	logger log.Logger
}

func (h *conversationHandler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := userIDFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "authentication_required", "authentication required", h.logger)
		return "", false
	}
	return uid, true
}

func (h *conversationHandler) id(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "conversation id must be a UUID", h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// list handles GET /api/v1/conversations.
func (h *conversationHandler) list(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.owner(w, r)
	if !ok {
		return
	}

	conversations, err := h.store.List(r.Context(), uid, 0)
	if err != nil {
		h.logger.Error("listing conversations", "error", err)
		WriteError(w, http.StatusInternalServerError, "list_failed", "failed to list conversations", h.logger)
		return
	}
	if conversations == nil {
		conversations = []conversation.Conversation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": conversations}, h.logger)
}

// get handles GET /api/v1/conversations/{id}.
func (h *conversationHandler) get(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	conv, err := h.store.Get(r.Context(), uid, id)
	if errors.Is(err, conversation.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "not_found", "conversation not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("getting conversation", "id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, "get_failed", "failed to get conversation", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, conv, h.logger)
}

// messages handles GET /api/v1/conversations/{id}/messages.
func (h *conversationHandler) messages(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	msgs, err := h.store.Messages(r.Context(), uid, id)
	if errors.Is(err, conversation.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "not_found", "conversation not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("listing messages", "id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, "messages_failed", "failed to list messages", h.logger)
		return
	}
	if msgs == nil {
		msgs = []conversation.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs}, h.logger)
}

// rename handles PATCH /api/v1/conversations/{id}.
func (h *conversationHandler) rename(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Title == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "title is required", h.logger)
		return
	}

	err := h.store.SetTitle(r.Context(), uid, id, body.Title)
	if errors.Is(err, conversation.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "not_found", "conversation not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("renaming conversation", "id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, "rename_failed", "failed to rename conversation", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// remove handles DELETE /api/v1/conversations/{id}.
func (h *conversationHandler) remove(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	err := h.store.Delete(r.Context(), uid, id)
	if errors.Is(err, conversation.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "not_found", "conversation not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("deleting conversation", "id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, "delete_failed", "failed to delete conversation", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
