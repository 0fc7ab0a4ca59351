package query_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/mock/gomock"

	"aireas/internal/query"
	"aireas/internal/query/mocks"
	"aireas/internal/service"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// respondWith makes the mock decode a fixed JSON payload into the out value,
// the way the real client decodes the model's structured response.
func respondWith(payload string) func(context.Context, string, *genai.Schema, any) error {
	return func(_ context.Context, _ string, _ *genai.Schema, out any) error {
		return json.Unmarshal([]byte(payload), out)
	}
}

func TestProcessor_Process_SimpleQuestion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	llm := mocks.NewMockStructuredGenerator(ctrl)
	processor, err := query.NewProcessor(llm)
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}

	gomock.InOrder(
		llm.EXPECT().GenerateStructured(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(respondWith(`{"kind": "simple"}`)),
		llm.EXPECT().GenerateStructured(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(respondWith(`{"question": "What Is The Main Finding?"}`)),
	)

	processed, err := processor.Process(context.Background(), "what's the main finding?")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if processed.Kind != query.KindSimple {
		t.Errorf("kind = %s, want %s", processed.Kind, query.KindSimple)
	}
	if processed.Query != "what is the main finding?" {
		t.Errorf("query = %q, want lower-cased rephrasing", processed.Query)
	}
	if len(processed.SubQuestions) != 1 {
		t.Errorf("sub-questions = %d, want 1", len(processed.SubQuestions))
	}
}

func TestProcessor_Process_CompoundQuestion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	llm := mocks.NewMockStructuredGenerator(ctrl)
	processor, err := query.NewProcessor(llm)
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}

	gomock.InOrder(
		llm.EXPECT().GenerateStructured(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(respondWith(`{"kind": "compound"}`)),
		llm.EXPECT().GenerateStructured(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(respondWith(`{"sub_questions": ["What Is X?", "  ", "what is y?"]}`)),
	)

	processed, err := processor.Process(context.Background(), "what are x and y?")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if processed.Kind != query.KindCompound {
		t.Errorf("kind = %s, want %s", processed.Kind, query.KindCompound)
	}
	// Blank sub-questions are dropped, the rest lower-cased and joined.
	if processed.Query != "what is x?, what is y?" {
		t.Errorf("query = %q, want joined sub-questions", processed.Query)
	}
	if len(processed.SubQuestions) != 2 {
		t.Errorf("sub-questions = %d, want 2", len(processed.SubQuestions))
	}
}

func TestProcessor_Decompose_ClampsToThree(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	llm := mocks.NewMockStructuredGenerator(ctrl)
	processor, err := query.NewProcessor(llm)
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}

	llm.EXPECT().GenerateStructured(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(respondWith(`{"sub_questions": ["a?", "b?", "c?", "d?", "e?"]}`))

	subs, err := processor.Decompose(context.Background(), "many questions")
	if err != nil {
		t.Fatalf("Decompose() error = %v", err)
	}
	if len(subs) != 3 {
		t.Errorf("Decompose() returned %d sub-questions, want 3", len(subs))
	}
}

func TestProcessor_Decompose_AllBlank(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	llm := mocks.NewMockStructuredGenerator(ctrl)
	processor, err := query.NewProcessor(llm)
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}

	llm.EXPECT().GenerateStructured(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(respondWith(`{"sub_questions": ["", "   "]}`))

	_, err = processor.Decompose(context.Background(), "question")
	if !errors.Is(err, service.ErrSchemaViolation) {
		t.Errorf("Decompose() error = %v, want ErrSchemaViolation", err)
	}
}

func TestProcessor_Classify_UnknownKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	llm := mocks.NewMockStructuredGenerator(ctrl)
	processor, err := query.NewProcessor(llm)
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}

	llm.EXPECT().GenerateStructured(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(respondWith(`{"kind": "mysterious"}`))

	_, err = processor.Classify(context.Background(), "question")
	if !errors.Is(err, service.ErrSchemaViolation) {
		t.Errorf("Classify() error = %v, want ErrSchemaViolation", err)
	}
}

func TestProcessor_Process_EmptyQuestion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	processor, err := query.NewProcessor(mocks.NewMockStructuredGenerator(ctrl))
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}

	_, err = processor.Process(context.Background(), "   ")
	if !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("Process() error = %v, want ErrInvalidInput", err)
	}
}

func TestProcessor_Process_LLMFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	llm := mocks.NewMockStructuredGenerator(ctrl)
	processor, err := query.NewProcessor(llm)
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}

	llm.EXPECT().GenerateStructured(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("service unavailable"))

	_, err = processor.Process(context.Background(), "question")
	if !errors.Is(err, service.ErrExternalService) {
		t.Errorf("Process() error = %v, want ErrExternalService", err)
	}
}
