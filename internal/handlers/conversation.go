package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aireas/internal/contextutil"
	"aireas/internal/convstore"
	"aireas/internal/storage"
)

// ConversationHandler handles conversation lifecycle requests.
type ConversationHandler struct {
	conversations convstore.Store
	documents     storage.DocumentRepo
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(conversations convstore.Store, documents storage.DocumentRepo) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		documents:     documents,
	}
}

// CreateConversationRequest represents the conversation creation payload.
//
// swagger:model CreateConversationRequest
type CreateConversationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ConversationListResponse represents a user's conversations.
//
// swagger:model ConversationListResponse
type ConversationListResponse struct {
	Conversations []convstore.Conversation `json:"conversations"`
}

// ConversationDocumentsResponse lists the documents of a conversation.
//
// swagger:model ConversationDocumentsResponse
type ConversationDocumentsResponse struct {
	Documents []storage.Document `json:"documents"`
}

// Create handles POST /api/conversations.
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	conv, err := h.conversations.Create(ctx, userIDFromRequest(r), req.Name, req.Description)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to create conversation")
		return
	}

	writeJSON(ctx, w, http.StatusCreated, conv)
}

// List handles GET /api/conversations.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conversations, err := h.conversations.List(ctx, userIDFromRequest(r))
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to list conversations")
		return
	}

	writeJSON(ctx, w, http.StatusOK, ConversationListResponse{Conversations: conversations})
}

// Get handles GET /api/conversations/{conversationID}.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conversationID := chi.URLParam(r, "conversationID")
	conv, err := h.conversations.Get(ctx, userIDFromRequest(r), conversationID)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to load conversation")
		return
	}

	writeJSON(ctx, w, http.StatusOK, conv)
}

// Delete handles DELETE /api/conversations/{conversationID}.
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conversationID := chi.URLParam(r, "conversationID")
	if err := h.conversations.Delete(ctx, userIDFromRequest(r), conversationID); err != nil {
		writeServiceError(ctx, w, err, "Failed to delete conversation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Documents handles GET /api/conversations/{conversationID}/documents.
func (h *ConversationHandler) Documents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conversationID := chi.URLParam(r, "conversationID")

	// Ownership check before exposing the registry.
	if _, err := h.conversations.Get(ctx, userIDFromRequest(r), conversationID); err != nil {
		writeServiceError(ctx, w, err, "Failed to load conversation")
		return
	}

	docs, err := h.documents.ListByConversation(ctx, conversationID)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to list documents")
		return
	}
	if docs == nil {
		docs = []storage.Document{}
	}

	writeJSON(ctx, w, http.StatusOK, ConversationDocumentsResponse{Documents: docs})
}
