package handlers

import (
	"encoding/json"
	"net/http"

	"aireas/internal/contextutil"
	"aireas/internal/query"
	"aireas/internal/retriever"
)

// RetrieveHandler handles direct retrieval requests: the question is
// rewritten for retrieval and answered with raw passages, no agent involved.
type RetrieveHandler struct {
	processor *query.Processor
	retriever *retriever.SelfQueryRetriever
}

// NewRetrieveHandler creates a new RetrieveHandler.
func NewRetrieveHandler(processor *query.Processor, r *retriever.SelfQueryRetriever) *RetrieveHandler {
	return &RetrieveHandler{
		processor: processor,
		retriever: r,
	}
}

// RetrieveRequest represents the retrieval request payload.
//
// swagger:model RetrieveRequest
type RetrieveRequest struct {
	Question string `json:"question"`

	// TopK bounds the passage count per derived query. Zero means the
	// server default, or whatever count the question itself asks for.
	TopK int `json:"top_k"`
}

// RetrieveResponse represents the retrieval response payload.
//
// swagger:model RetrieveResponse
type RetrieveResponse struct {
	// Queries are the retrieval queries derived from the question: one for a
	// simple question, up to three for a compound one.
	Queries []string `json:"queries"`

	// Chunks are the retrieved passages, in search order per query.
	// Passages retrieved by more than one query appear more than once.
	Chunks []retriever.Chunk `json:"chunks"`
}

// ServeHTTP handles retrieval requests.
//
// swagger:route POST /api/retrieve retrievePassages
//
// # Retrieve passages from uploaded documents
//
// Classifies the question, splits compound questions into sub-questions,
// and runs a filtered similarity search per query.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Derived queries and retrieved passages
//	  schema:
//	    "$ref": "#/definitions/RetrieveResponse"
//	'400':
//	  description: Bad request
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: External service error
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *RetrieveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req RetrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}
	if req.TopK < 0 {
		writeError(w, http.StatusBadRequest, "top_k must not be negative")
		return
	}

	userID := userIDFromRequest(r)
	baseFilter := map[string]string{"metadata.associated_user": userID}

	processed, err := h.processor.Process(ctx, req.Question)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to process question")
		return
	}

	chunks := make([]retriever.Chunk, 0)
	for _, q := range processed.SubQuestions {
		found, err := h.retriever.Retrieve(ctx, q, req.TopK, baseFilter)
		if err != nil {
			writeServiceError(ctx, w, err, "Failed to retrieve passages")
			return
		}
		chunks = append(chunks, found...)
	}

	writeJSON(ctx, w, http.StatusOK, RetrieveResponse{
		Queries: processed.SubQuestions,
		Chunks:  chunks,
	})
}
