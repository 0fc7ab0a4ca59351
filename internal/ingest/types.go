package ingest

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_deps.go -package=mocks aireas/internal/ingest Extractor,Embedder,Registry

import "context"

// Extractor pulls plain text out of a stored document.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Embedder produces one vector per input text, preserving order.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Registry records successfully ingested documents.
type Registry interface {
	RecordDocument(ctx context.Context, fileName, userID, conversationID string, chunkCount int) error
}

// FileStatus describes the outcome of ingesting a single file.
type FileStatus string

const (
	// StatusIngested means the file was stored, chunked, embedded and indexed.
	StatusIngested FileStatus = "ingested"
	// StatusSkipped means a file with the same name was already ingested.
	StatusSkipped FileStatus = "skipped"
	// StatusFailed means ingestion failed; Error carries the reason.
	StatusFailed FileStatus = "failed"
)

// FileReport is the per-file outcome returned for an upload batch.
type FileReport struct {
	FileName string     `json:"file_name"`
	Status   FileStatus `json:"status"`
	Chunks   int        `json:"chunks,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// File is a named document submitted for ingestion.
type File struct {
	Name    string
	Content []byte
}
