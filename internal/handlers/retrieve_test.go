package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/mock/gomock"

	"aireas/internal/handlers"
	"aireas/internal/query"
	querymocks "aireas/internal/query/mocks"
	"aireas/internal/retriever"
	retrievermocks "aireas/internal/retriever/mocks"
	vsmocks "aireas/internal/vectorstore/mocks"
)

// structuredReply decodes a canned JSON payload into the structured call's
// output, standing in for the model.
func structuredReply(payload string) func(context.Context, string, *genai.Schema, any) error {
	return func(_ context.Context, _ string, _ *genai.Schema, out any) error {
		return json.Unmarshal([]byte(payload), out)
	}
}

type retrieveFixture struct {
	handler  *handlers.RetrieveHandler
	qllm     *querymocks.MockStructuredGenerator
	rllm     *retrievermocks.MockStructuredGenerator
	embedder *retrievermocks.MockQueryEmbedder
	vs       *vsmocks.MockVectorStore
}

func newRetrieveFixture(t *testing.T, ctrl *gomock.Controller) *retrieveFixture {
	t.Helper()

	qllm := querymocks.NewMockStructuredGenerator(ctrl)
	rllm := retrievermocks.NewMockStructuredGenerator(ctrl)
	embedder := retrievermocks.NewMockQueryEmbedder(ctrl)
	vs := vsmocks.NewMockVectorStore(ctrl)

	processor, err := query.NewProcessor(qllm)
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}
	selfQuery, err := retriever.NewSelfQueryRetriever(rllm, embedder, vs, "test-collection", 4)
	if err != nil {
		t.Fatalf("NewSelfQueryRetriever() error = %v", err)
	}

	return &retrieveFixture{
		handler:  handlers.NewRetrieveHandler(processor, selfQuery),
		qllm:     qllm,
		rllm:     rllm,
		embedder: embedder,
		vs:       vs,
	}
}

func retrieveRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/retrieve", strings.NewReader(body))
	req.Header.Set("X-User-ID", "user-1")
	return req
}

func TestRetrieveHandler_TopKBoundsSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newRetrieveFixture(t, ctrl)

	gomock.InOrder(
		f.qllm.EXPECT().GenerateStructured(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(structuredReply(`{"kind": "simple"}`)),
		f.qllm.EXPECT().GenerateStructured(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(structuredReply(`{"question": "what is x"}`)),
	)
	f.rllm.EXPECT().GenerateStructured(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(structuredReply(`{"query": "what is x"}`))
	f.embedder.EXPECT().EmbedQuery(gomock.Any(), "what is x").Return([]float32{0.1}, nil)
	// The caller's top_k reaches the vector store as the search limit.
	f.vs.EXPECT().Search(gomock.Any(), "test-collection", []float32{0.1}, 2, map[string]string{
		"metadata.associated_user": "user-1",
	}).Return(nil, nil)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, retrieveRequest(`{"question": "What is X?", "top_k": 2}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestRetrieveHandler_RejectsNegativeTopK(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newRetrieveFixture(t, ctrl)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, retrieveRequest(`{"question": "What is X?", "top_k": -1}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
