package handlers_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"aireas/internal/convstore"
	convmocks "aireas/internal/convstore/mocks"
	"aireas/internal/handlers"
	"aireas/internal/service"
	"aireas/internal/storage"
	storagemocks "aireas/internal/storage/mocks"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func conversationRouter(h *handlers.ConversationHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/conversations", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Route("/{conversationID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Get("/documents", h.Documents)
		})
	})
	return r
}

func TestConversationHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := convmocks.NewMockStore(ctrl)
	docs := storagemocks.NewMockDocumentRepo(ctrl)
	router := conversationRouter(handlers.NewConversationHandler(store, docs))

	store.EXPECT().Create(gomock.Any(), "user-1", "my papers", "reading list").
		Return(convstore.Conversation{ID: "conv-1", Name: "my papers", Description: "reading list"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/conversations",
		strings.NewReader(`{"name": "my papers", "description": "reading list"}`))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var conv convstore.Conversation
	if err := json.NewDecoder(rec.Body).Decode(&conv); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if conv.ID != "conv-1" {
		t.Errorf("conversation id = %q, want conv-1", conv.ID)
	}
}

func TestConversationHandler_Create_MissingName(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := conversationRouter(handlers.NewConversationHandler(
		convmocks.NewMockStore(ctrl),
		storagemocks.NewMockDocumentRepo(ctrl),
	))

	req := httptest.NewRequest(http.MethodPost, "/api/conversations", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestConversationHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := convmocks.NewMockStore(ctrl)
	router := conversationRouter(handlers.NewConversationHandler(store, storagemocks.NewMockDocumentRepo(ctrl)))

	store.EXPECT().List(gomock.Any(), "user-1").Return([]convstore.Conversation{
		{ID: "conv-2", Name: "newer"},
		{ID: "conv-1", Name: "older"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp handlers.ConversationListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Conversations) != 2 {
		t.Errorf("listed %d conversations, want 2", len(resp.Conversations))
	}
}

func TestConversationHandler_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := convmocks.NewMockStore(ctrl)
	router := conversationRouter(handlers.NewConversationHandler(store, storagemocks.NewMockDocumentRepo(ctrl)))

	store.EXPECT().Get(gomock.Any(), "default", "missing").
		Return(convstore.Conversation{}, service.WrapError(service.ErrNotFound, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/missing", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestConversationHandler_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := convmocks.NewMockStore(ctrl)
	router := conversationRouter(handlers.NewConversationHandler(store, storagemocks.NewMockDocumentRepo(ctrl)))

	store.EXPECT().Delete(gomock.Any(), "user-1", "conv-1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/conversations/conv-1", nil)
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestConversationHandler_Documents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := convmocks.NewMockStore(ctrl)
	docs := storagemocks.NewMockDocumentRepo(ctrl)
	router := conversationRouter(handlers.NewConversationHandler(store, docs))

	store.EXPECT().Get(gomock.Any(), "user-1", "conv-1").Return(convstore.Conversation{ID: "conv-1"}, nil)
	docs.EXPECT().ListByConversation(gomock.Any(), "conv-1").Return([]storage.Document{
		{ID: 1, FileName: "paper.pdf", ConversationID: "conv-1", ChunkCount: 12},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/conv-1/documents", nil)
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp handlers.ConversationDocumentsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Documents) != 1 || resp.Documents[0].FileName != "paper.pdf" {
		t.Errorf("documents = %+v, want paper.pdf", resp.Documents)
	}
}
