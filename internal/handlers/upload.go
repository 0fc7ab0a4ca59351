package handlers

import (
	"io"
	"net/http"
	"strings"

	"aireas/internal/contextutil"
	"aireas/internal/convstore"
	"aireas/internal/ingest"
)

// maxUploadBytes bounds an upload batch at 64 MiB.
const maxUploadBytes = 64 << 20

// UploadHandler handles PDF upload and ingestion requests.
type UploadHandler struct {
	pipeline      *ingest.Pipeline
	conversations convstore.Store
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(pipeline *ingest.Pipeline, conversations convstore.Store) *UploadHandler {
	return &UploadHandler{
		pipeline:      pipeline,
		conversations: conversations,
	}
}

// UploadResponse represents the per-file outcomes of an upload batch.
//
// swagger:model UploadResponse
type UploadResponse struct {
	Reports []ingest.FileReport `json:"reports"`
}

// ServeHTTP handles multipart PDF uploads.
//
// swagger:route POST /api/upload uploadDocuments
//
// # Upload PDF documents
//
// Accepts a multipart form with one or more "files" parts and a
// "conversation_id" field. Each file is stored, chunked, embedded and
// indexed; the response reports the outcome per file. A file whose name was
// ingested before is skipped.
//
// ---
// consumes:
// - multipart/form-data
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Per-file ingestion reports
//	  schema:
//	    "$ref": "#/definitions/UploadResponse"
//	'400':
//	  description: Bad request (missing files or conversation)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	conversationID := strings.TrimSpace(r.FormValue("conversation_id"))
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	userID := userIDFromRequest(r)

	// The conversation must exist before documents are attached to it.
	if _, err := h.conversations.Get(ctx, userID, conversationID); err != nil {
		writeServiceError(ctx, w, err, "Failed to load conversation")
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		writeError(w, http.StatusBadRequest, "At least one file is required")
		return
	}

	files := make([]ingest.File, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		f, err := header.Open()
		if err != nil {
			logger.WarnContext(ctx, "failed to open uploaded file", "file", header.Filename, "error", err)
			writeError(w, http.StatusBadRequest, "Failed to read uploaded file: "+header.Filename)
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to read uploaded file: "+header.Filename)
			return
		}
		files = append(files, ingest.File{Name: header.Filename, Content: content})
	}

	reports := h.pipeline.Ingest(ctx, files, userID, conversationID)

	for _, report := range reports {
		if report.Status != ingest.StatusIngested {
			continue
		}
		if err := h.conversations.AttachFile(ctx, userID, conversationID, report.FileName); err != nil {
			logger.ErrorContext(ctx, "failed to attach file to conversation", "file", report.FileName, "error", err)
		}
	}

	writeJSON(ctx, w, http.StatusOK, UploadResponse{Reports: reports})
}
