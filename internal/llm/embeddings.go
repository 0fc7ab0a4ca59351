package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"

	"aireas/internal/contextutil"
)

// EmbeddingsClient produces dense vectors for documents and queries using a
// Gemini embedding model. Vector sizes are validated against the configured
// collection dimension so a model change cannot silently corrupt the store.
type EmbeddingsClient struct {
	client       *genai.Client
	model        string
	expectedSize int
}

// NewEmbeddingsClient creates an embeddings client for the given model.
// expectedSize is the dimension every returned vector must have.
func NewEmbeddingsClient(client *genai.Client, model string, expectedSize int) (*EmbeddingsClient, error) {
	if model == "" {
		return nil, fmt.Errorf("embedding model name is required")
	}
	if expectedSize <= 0 {
		return nil, fmt.Errorf("expected vector size must be greater than 0, got %d", expectedSize)
	}
	return &EmbeddingsClient{
		client:       client,
		model:        model,
		expectedSize: expectedSize,
	}, nil
}

// ExpectedSize returns the vector dimension this client validates against.
func (e *EmbeddingsClient) ExpectedSize() int {
	return e.expectedSize
}

// EmbedDocuments embeds a batch of document texts in a single request.
// The result preserves input order, one vector per text.
func (e *EmbeddingsClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(texts) == 0 {
		return nil, nil
	}

	em := e.client.EmbeddingModel(e.model)
	batch := em.NewBatch()
	for _, t := range texts {
		batch = batch.AddContent(genai.Text(t))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		logger.ErrorContext(ctx, "batch embedding failed", "model", e.model, "count", len(texts), "error", err)
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(res.Embeddings))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, emb := range res.Embeddings {
		if err := e.checkSize(emb.Values); err != nil {
			return nil, err
		}
		vectors[i] = emb.Values
	}

	logger.InfoContext(ctx, "embedded documents", "model", e.model, "count", len(vectors))
	return vectors, nil
}

// EmbedQuery embeds a single query string.
func (e *EmbeddingsClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if text == "" {
		return nil, fmt.Errorf("query text is empty")
	}

	em := e.client.EmbeddingModel(e.model)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		logger.ErrorContext(ctx, "query embedding failed", "model", e.model, "error", err)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if res.Embedding == nil {
		return nil, fmt.Errorf("embedding response contained no vector")
	}
	if err := e.checkSize(res.Embedding.Values); err != nil {
		return nil, err
	}
	return res.Embedding.Values, nil
}

func (e *EmbeddingsClient) checkSize(vec []float32) error {
	if len(vec) != e.expectedSize {
		return fmt.Errorf("unexpected embedding size: got %d, want %d", len(vec), e.expectedSize)
	}
	return nil
}
