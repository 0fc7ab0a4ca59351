package retriever

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_deps.go -package=mocks aireas/internal/retriever StructuredGenerator,QueryEmbedder

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"aireas/internal/contextutil"
	"aireas/internal/service"
	"aireas/internal/vectorstore"
)

// StructuredGenerator runs a schema-constrained completion and decodes the
// result into out.
type StructuredGenerator interface {
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out any) error
}

// QueryEmbedder embeds a single query string.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Chunk is one retrieved passage with its source document.
type Chunk struct {
	PDFID string  `json:"pdf_id"`
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

// SelfQueryRetriever lets the model translate a natural-language question
// into a search query plus metadata filters before hitting the vector store.
// Mentions like "in paper.pdf" become an exact pdf_id filter; "give me two
// passages" becomes a result limit.
type SelfQueryRetriever struct {
	llm          StructuredGenerator
	embedder     QueryEmbedder
	store        vectorstore.VectorStore
	collection   string
	defaultLimit int
	maxLimit     int
}

// NewSelfQueryRetriever creates a retriever over the given collection.
func NewSelfQueryRetriever(llm StructuredGenerator, embedder QueryEmbedder, store vectorstore.VectorStore, collection string, defaultLimit int) (*SelfQueryRetriever, error) {
	if llm == nil {
		return nil, fmt.Errorf("structured generator is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("query embedder is required")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store is required")
	}
	if collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if defaultLimit <= 0 {
		return nil, fmt.Errorf("default limit must be greater than 0, got %d", defaultLimit)
	}
	return &SelfQueryRetriever{
		llm:          llm,
		embedder:     embedder,
		store:        store,
		collection:   collection,
		defaultLimit: defaultLimit,
		maxLimit:     25,
	}, nil
}

var querySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"query": {
			Type:        genai.TypeString,
			Description: "The semantic search query with filter phrases removed.",
		},
		"pdf_id": {
			Type:        genai.TypeString,
			Description: "Lower-cased file name of the document the question names, or empty when it names none.",
		},
		"limit": {
			Type:        genai.TypeInteger,
			Description: "Number of passages the question explicitly asks for, or 0 when it does not say.",
		},
	},
	Required: []string{"query"},
}

type inferredQuery struct {
	Query string `json:"query"`
	PDFID string `json:"pdf_id"`
	Limit int    `json:"limit"`
}

// Retrieve answers a question against the collection. topK, when positive,
// bounds the result count and takes precedence over any limit the model
// infers from the question. baseFilter restricts every search (ownership
// scoping); any document filter the model infers from the question is
// layered on top. When filter inference fails the search degrades to the raw
// question with only the base filter, never an error. Duplicate passages
// across sub-question searches are preserved.
func (r *SelfQueryRetriever) Retrieve(ctx context.Context, question string, topK int, baseFilter map[string]string) ([]Chunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, service.WrapError(service.ErrInvalidInput, fmt.Errorf("question is empty"))
	}

	inferred := r.infer(ctx, question)

	filter := make(map[string]string, len(baseFilter)+1)
	for k, v := range baseFilter {
		filter[k] = v
	}
	if inferred.PDFID != "" {
		filter["metadata.pdf_id"] = inferred.PDFID
	}

	limit := r.defaultLimit
	if inferred.Limit > 0 {
		limit = inferred.Limit
	}
	if topK > 0 {
		limit = topK
	}
	limit = min(limit, r.maxLimit)

	vec, err := r.embedder.EmbedQuery(ctx, inferred.Query)
	if err != nil {
		return nil, service.WrapError(service.ErrExternalService, err)
	}

	results, err := r.store.Search(ctx, r.collection, vec, limit, filter)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(results))
	for _, res := range results {
		chunks = append(chunks, Chunk{
			PDFID: payloadPDFID(res.Payload),
			Text:  payloadText(res.Payload),
			Score: res.Score,
		})
	}

	logger.InfoContext(ctx, "retrieval completed", "query", inferred.Query, "pdf_id", inferred.PDFID, "limit", limit, "chunks", len(chunks))
	return chunks, nil
}

// infer asks the model to split the question into query, document filter and
// limit. Any failure falls back to the raw question unfiltered.
func (r *SelfQueryRetriever) infer(ctx context.Context, question string) inferredQuery {
	logger := contextutil.LoggerFromContext(ctx)

	prompt := fmt.Sprintf(
		"Extract the search query from the question below. If the question names a specific document file, set pdf_id to its lower-cased file name. If it asks for a specific number of passages, set limit.\n\nQuestion: %s",
		question,
	)

	var out inferredQuery
	if err := r.llm.GenerateStructured(ctx, prompt, querySchema, &out); err != nil {
		logger.WarnContext(ctx, "query inference failed, searching unfiltered", "error", err)
		return inferredQuery{Query: question}
	}
	out.Query = strings.TrimSpace(out.Query)
	if out.Query == "" {
		out.Query = question
	}
	out.PDFID = strings.ToLower(strings.TrimSpace(out.PDFID))
	return out
}

func payloadText(payload map[string]any) string {
	if text, ok := payload["text"].(string); ok {
		return text
	}
	return ""
}

func payloadPDFID(payload map[string]any) string {
	meta, ok := payload["metadata"].(map[string]any)
	if !ok {
		return ""
	}
	if id, ok := meta["pdf_id"].(string); ok {
		return id
	}
	return ""
}
