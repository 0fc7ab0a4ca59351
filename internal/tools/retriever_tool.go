package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"aireas/internal/retriever"
)

// Retriever answers a question against the indexed documents. A positive
// topK bounds the result count.
type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int, baseFilter map[string]string) ([]retriever.Chunk, error)
}

// RetrieverTool exposes document retrieval to the agent model, scoped to the
// user that owns the session.
type RetrieverTool struct {
	retriever  Retriever
	baseFilter map[string]string
}

// NewRetrieverTool creates a retrieval tool restricted by baseFilter. Every
// search a session issues carries the filter, so a model cannot be talked
// into reading another user's documents.
func NewRetrieverTool(r Retriever, baseFilter map[string]string) (*RetrieverTool, error) {
	if r == nil {
		return nil, fmt.Errorf("retriever is required")
	}
	return &RetrieverTool{retriever: r, baseFilter: baseFilter}, nil
}

// Name implements Tool.
func (t *RetrieverTool) Name() string { return "retrieve_documents" }

// Description implements Tool.
func (t *RetrieverTool) Description() string {
	return "Search the user's uploaded documents for relevant passages. Always use this first for questions about uploaded papers or files."
}

// Parameters implements Tool.
func (t *RetrieverTool) Parameters() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"question": {
				Type:        genai.TypeString,
				Description: "The question to answer from the uploaded documents. May name a specific file.",
			},
		},
		Required: []string{"question"},
	}
}

// Call implements Tool.
func (t *RetrieverTool) Call(ctx context.Context, args map[string]any) (string, error) {
	question := stringArg(args, "question")
	if question == "" {
		return "", fmt.Errorf("question argument is required")
	}

	// No explicit bound: the retriever honors any count the model phrased
	// into the question itself.
	chunks, err := t.retriever.Retrieve(ctx, question, 0, t.baseFilter)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "No relevant passages found in the uploaded documents.", nil
	}

	var b strings.Builder
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "[%d] (source: %s)\n%s\n\n", i+1, chunk.PDFID, chunk.Text)
	}
	return b.String(), nil
}
