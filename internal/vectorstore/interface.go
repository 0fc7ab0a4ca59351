package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks aireas/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with its payload.
type Point struct {
	ID      string
	Vec     []float32
	Payload map[string]any
}

// SearchResult represents a single scored point returned by a search.
type SearchResult struct {
	PointID string
	Score   float32
	Payload map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// EnsureCollection creates the collection with the given vector size and
	// cosine distance if it does not exist. Safe to call repeatedly and
	// concurrently; a racing second caller observes "already exists".
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// EnsurePayloadIndex creates a keyword index over the named payload field
	// so filtered searches do not degrade to full scans. Idempotent.
	EnsurePayloadIndex(ctx context.Context, collection, field string) error

	// Upsert inserts or replaces points by id as one batch. An acknowledgment
	// without completion is reported as an error.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns up to limit points ordered by descending similarity,
	// restricted to points whose payload matches every filter entry exactly.
	// An empty filter searches the whole collection.
	Search(ctx context.Context, collection string, query []float32, limit int, filter map[string]string) ([]SearchResult, error)

	// CollectionExists reports whether the collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
