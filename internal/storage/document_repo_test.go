package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"aireas/internal/service"
	"aireas/internal/storage"
)

func newTestRepo(t *testing.T) *storage.SQLiteDocumentRepo {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return storage.NewSQLiteDocumentRepo(db)
}

func TestDocumentRepo_RecordAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.RecordDocument(ctx, "paper.pdf", "user-1", "conv-1", 12); err != nil {
		t.Fatalf("RecordDocument() error = %v", err)
	}

	doc, err := repo.GetByFileName(ctx, "user-1", "paper.pdf")
	if err != nil {
		t.Fatalf("GetByFileName() error = %v", err)
	}
	if doc.ConversationID != "conv-1" {
		t.Errorf("ConversationID = %q, want conv-1", doc.ConversationID)
	}
	if doc.ChunkCount != 12 {
		t.Errorf("ChunkCount = %d, want 12", doc.ChunkCount)
	}
}

func TestDocumentRepo_RecordUpdatesChunkCount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.RecordDocument(ctx, "paper.pdf", "user-1", "conv-1", 12); err != nil {
		t.Fatalf("RecordDocument() error = %v", err)
	}
	if err := repo.RecordDocument(ctx, "paper.pdf", "user-1", "conv-1", 15); err != nil {
		t.Fatalf("RecordDocument() second call error = %v", err)
	}

	doc, err := repo.GetByFileName(ctx, "user-1", "paper.pdf")
	if err != nil {
		t.Fatalf("GetByFileName() error = %v", err)
	}
	if doc.ChunkCount != 15 {
		t.Errorf("ChunkCount = %d, want 15 after re-record", doc.ChunkCount)
	}

	docs, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("ListByUser() returned %d documents, want 1 (no duplicate rows)", len(docs))
	}
}

func TestDocumentRepo_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByFileName(context.Background(), "user-1", "absent.pdf")
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("GetByFileName() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_ListByConversation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.RecordDocument(ctx, "a.pdf", "user-1", "conv-1", 1); err != nil {
		t.Fatalf("RecordDocument() error = %v", err)
	}
	if err := repo.RecordDocument(ctx, "b.pdf", "user-1", "conv-1", 2); err != nil {
		t.Fatalf("RecordDocument() error = %v", err)
	}
	if err := repo.RecordDocument(ctx, "c.pdf", "user-1", "conv-2", 3); err != nil {
		t.Fatalf("RecordDocument() error = %v", err)
	}

	docs, err := repo.ListByConversation(ctx, "conv-1")
	if err != nil {
		t.Fatalf("ListByConversation() error = %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("ListByConversation() returned %d documents, want 2", len(docs))
	}
}

func TestDocumentRepo_RecordValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.RecordDocument(ctx, "", "user-1", "conv-1", 1); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("RecordDocument(empty file) error = %v, want ErrInvalidInput", err)
	}
	if err := repo.RecordDocument(ctx, "a.pdf", "", "conv-1", 1); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("RecordDocument(empty user) error = %v, want ErrInvalidInput", err)
	}
}
