package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"aireas/internal/contextutil"
	"aireas/internal/service"
	"aireas/internal/vectorstore"
)

// Pipeline ingests uploaded documents: store the file, extract its text,
// chunk it, embed the chunks and index them in the vector store. Files are
// processed independently so one bad document never sinks the batch.
type Pipeline struct {
	chunker    *Chunker
	extractor  Extractor
	embedder   Embedder
	store      vectorstore.VectorStore
	registry   Registry
	collection string
	uploadDir  string
}

// NewPipeline creates an ingestion pipeline writing into the given collection.
// registry may be nil when no document registry is configured.
func NewPipeline(chunker *Chunker, extractor Extractor, embedder Embedder, store vectorstore.VectorStore, registry Registry, collection, uploadDir string) (*Pipeline, error) {
	if chunker == nil {
		return nil, fmt.Errorf("chunker is required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store is required")
	}
	if collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if uploadDir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	return &Pipeline{
		chunker:    chunker,
		extractor:  extractor,
		embedder:   embedder,
		store:      store,
		registry:   registry,
		collection: collection,
		uploadDir:  uploadDir,
	}, nil
}

// Ingest processes a batch of uploaded files for a user and conversation.
// Each file yields one report; a failure in one file is recorded and the
// batch continues with the next.
func (p *Pipeline) Ingest(ctx context.Context, files []File, userID, conversationID string) []FileReport {
	reports := make([]FileReport, 0, len(files))
	for _, file := range files {
		reports = append(reports, p.ingestOne(ctx, file, userID, conversationID))
	}
	return reports
}

func (p *Pipeline) ingestOne(ctx context.Context, file File, userID, conversationID string) FileReport {
	logger := contextutil.LoggerFromContext(ctx)

	name := NormalizeFileName(file.Name)
	if name == "" {
		return FileReport{FileName: file.Name, Status: StatusFailed, Error: "empty file name"}
	}
	if len(file.Content) == 0 {
		return FileReport{FileName: name, Status: StatusFailed, Error: "empty file"}
	}

	path := filepath.Join(p.uploadDir, name)

	// A file already on disk under the same normalized name has been ingested
	// before; re-uploading is a no-op.
	if _, err := os.Stat(path); err == nil {
		logger.InfoContext(ctx, "file already ingested, skipping", "file", name)
		return FileReport{FileName: name, Status: StatusSkipped}
	} else if !errors.Is(err, os.ErrNotExist) {
		return FileReport{FileName: name, Status: StatusFailed, Error: fmt.Sprintf("failed to check file: %v", err)}
	}

	if err := os.WriteFile(path, file.Content, 0o644); err != nil {
		return FileReport{FileName: name, Status: StatusFailed, Error: fmt.Sprintf("failed to store file: %v", err)}
	}

	chunks, err := p.index(ctx, path, name, userID, conversationID)
	if err != nil {
		// Remove the stored file so the failed upload can be retried; leaving
		// it behind would make the retry a skip.
		if rmErr := os.Remove(path); rmErr != nil {
			logger.ErrorContext(ctx, "failed to clean up file after ingestion failure", "file", name, "error", rmErr)
		}
		logger.ErrorContext(ctx, "ingestion failed", "file", name, "error", err)
		return FileReport{FileName: name, Status: StatusFailed, Error: err.Error()}
	}

	if p.registry != nil {
		if err := p.registry.RecordDocument(ctx, name, userID, conversationID, chunks); err != nil {
			// The vectors are indexed and usable; a registry miss is logged,
			// not surfaced as an ingestion failure.
			logger.ErrorContext(ctx, "failed to record document", "file", name, "error", err)
		}
	}

	logger.InfoContext(ctx, "file ingested", "file", name, "chunks", chunks)
	return FileReport{FileName: name, Status: StatusIngested, Chunks: chunks}
}

// index extracts, chunks, embeds and upserts one stored file. Returns the
// number of chunks indexed.
func (p *Pipeline) index(ctx context.Context, path, name, userID, conversationID string) (int, error) {
	text, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return 0, err
	}

	chunks := p.chunker.Split(text)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: no chunks produced", service.ErrEmptyExtraction)
	}

	vectors, err := p.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return 0, service.WrapError(service.ErrExternalService, err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	points := make([]vectorstore.Point, 0, len(chunks))
	for i, chunk := range chunks {
		points = append(points, vectorstore.Point{
			ID:  uuid.NewString(),
			Vec: vectors[i],
			Payload: map[string]any{
				"metadata": map[string]any{
					"pdf_id":                     name,
					"associated_user":            userID,
					"associated_conversation_id": conversationID,
				},
				"text": chunk,
			},
		})
	}

	if err := p.store.Upsert(ctx, p.collection, points); err != nil {
		return 0, err
	}
	return len(points), nil
}

// NormalizeFileName lower-cases a file name and strips any path components,
// so "Paper.PDF" and "paper.pdf" address the same document.
func NormalizeFileName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.ToLower(base)
}
