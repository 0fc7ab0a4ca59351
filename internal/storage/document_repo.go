package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_repo.go -package=mocks aireas/internal/storage DocumentRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aireas/internal/service"
)

// DocumentRepo records and queries ingested documents.
type DocumentRepo interface {
	// RecordDocument registers an ingested file. Re-recording the same file
	// for the same user updates the chunk count instead of erroring.
	RecordDocument(ctx context.Context, fileName, userID, conversationID string, chunkCount int) error
	// GetByFileName returns a user's document by its normalized file name.
	GetByFileName(ctx context.Context, userID, fileName string) (Document, error)
	// ListByUser returns all of a user's documents, newest first.
	ListByUser(ctx context.Context, userID string) ([]Document, error)
	// ListByConversation returns the documents attached to a conversation,
	// newest first.
	ListByConversation(ctx context.Context, conversationID string) ([]Document, error)
}

// SQLiteDocumentRepo implements DocumentRepo on SQLite.
type SQLiteDocumentRepo struct {
	db *sql.DB
}

// NewSQLiteDocumentRepo creates a document repository.
func NewSQLiteDocumentRepo(db *sql.DB) *SQLiteDocumentRepo {
	return &SQLiteDocumentRepo{db: db}
}

// RecordDocument implements DocumentRepo.
func (r *SQLiteDocumentRepo) RecordDocument(ctx context.Context, fileName, userID, conversationID string, chunkCount int) error {
	if fileName == "" {
		return service.WrapError(service.ErrInvalidInput, fmt.Errorf("file name is empty"))
	}
	if userID == "" {
		return service.WrapError(service.ErrInvalidInput, fmt.Errorf("user id is empty"))
	}

	const query = `
	INSERT INTO documents (file_name, user_id, conversation_id, chunk_count)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (file_name, user_id)
	DO UPDATE SET chunk_count = excluded.chunk_count`

	if _, err := r.db.ExecContext(ctx, query, fileName, userID, conversationID, chunkCount); err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}
	return nil
}

// GetByFileName implements DocumentRepo.
func (r *SQLiteDocumentRepo) GetByFileName(ctx context.Context, userID, fileName string) (Document, error) {
	const query = `
	SELECT id, file_name, user_id, conversation_id, chunk_count, created_at
	FROM documents WHERE user_id = ? AND file_name = ?`

	var doc Document
	err := r.db.QueryRowContext(ctx, query, userID, fileName).Scan(
		&doc.ID, &doc.FileName, &doc.UserID, &doc.ConversationID, &doc.ChunkCount, &doc.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, service.WrapError(service.ErrNotFound, fmt.Errorf("document %s", fileName))
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// ListByUser implements DocumentRepo.
func (r *SQLiteDocumentRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	const query = `
	SELECT id, file_name, user_id, conversation_id, chunk_count, created_at
	FROM documents WHERE user_id = ? ORDER BY created_at DESC`

	return r.queryDocuments(ctx, query, userID)
}

// ListByConversation implements DocumentRepo.
func (r *SQLiteDocumentRepo) ListByConversation(ctx context.Context, conversationID string) ([]Document, error) {
	const query = `
	SELECT id, file_name, user_id, conversation_id, chunk_count, created_at
	FROM documents WHERE conversation_id = ? ORDER BY created_at DESC`

	return r.queryDocuments(ctx, query, conversationID)
}

func (r *SQLiteDocumentRepo) queryDocuments(ctx context.Context, query string, arg any) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.FileName, &doc.UserID, &doc.ConversationID, &doc.ChunkCount, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}
