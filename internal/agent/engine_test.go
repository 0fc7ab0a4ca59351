package agent_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/mock/gomock"

	"aireas/internal/agent"
	"aireas/internal/agent/mocks"
	"aireas/internal/llm"
	"aireas/internal/service"
	"aireas/internal/tools"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// stubTool is a minimal tool for engine tests; it counts its invocations.
type stubTool struct {
	name   string
	result string
	err    error
	calls  int
}

func (s *stubTool) Name() string { return s.name }

func (s *stubTool) Description() string { return "stub" }

func (s *stubTool) Parameters() *genai.Schema { return &genai.Schema{Type: genai.TypeObject} }

func (s *stubTool) Call(context.Context, map[string]any) (string, error) {
	s.calls++
	return s.result, s.err
}

func newTestEngine(t *testing.T, chat agent.ChatModel) (*agent.Engine, *agent.CheckpointStore) {
	t.Helper()
	checkpoints := agent.NewCheckpointStore()
	engine, err := agent.NewEngine(chat, checkpoints, 4000)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine, checkpoints
}

func TestEngine_Run_DirectAnswer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chat := mocks.NewMockChatModel(ctrl)
	engine, checkpoints := newTestEngine(t, chat)

	chat.EXPECT().StreamTurn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, history []llm.Message, _ []tools.Tool, onText func(string)) (string, []llm.ToolCall, error) {
			if history[0].Role != llm.RoleSystem {
				t.Error("history does not start with the system prompt")
			}
			if history[len(history)-1].Content != "hello" {
				t.Errorf("last message = %q, want the question", history[len(history)-1].Content)
			}
			onText("hi ")
			onText("there")
			return "hi there", nil, nil
		})

	var events []agent.Event
	answer, err := engine.Run(context.Background(), "user-1", "conv-1", "hello", nil, func(e agent.Event) {
		events = append(events, e)
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if answer != "hi there" {
		t.Errorf("answer = %q, want %q", answer, "hi there")
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 answer chunks", len(events))
	}
	for _, e := range events {
		if e.Type != agent.EventAnswerChunk {
			t.Errorf("event type = %s, want %s", e.Type, agent.EventAnswerChunk)
		}
	}

	// The exchange is checkpointed for the next turn.
	history := checkpoints.Load("user-1", "conv-1")
	if len(history) != 3 {
		t.Fatalf("checkpointed history has %d messages, want 3", len(history))
	}
	if history[2].Role != llm.RoleModel || history[2].Content != "hi there" {
		t.Errorf("checkpointed answer = %+v", history[2])
	}
}

func TestEngine_Run_ToolRound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chat := mocks.NewMockChatModel(ctrl)
	engine, _ := newTestEngine(t, chat)

	search := &stubTool{name: "search", result: "the observation"}

	gomock.InOrder(
		chat.EXPECT().StreamTurn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(
			"", []llm.ToolCall{{Name: "search", Args: map[string]any{"q": "x"}}}, nil),
		chat.EXPECT().StreamTurn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, history []llm.Message, _ []tools.Tool, _ func(string)) (string, []llm.ToolCall, error) {
				last := history[len(history)-1]
				if last.Role != llm.RoleTool || last.ToolResult != "the observation" {
					t.Errorf("last message = %+v, want the tool observation", last)
				}
				return "final answer", nil, nil
			}),
	)

	var toolEvents []agent.Event
	answer, err := engine.Run(context.Background(), "user-1", "conv-1", "question", []tools.Tool{search}, func(e agent.Event) {
		if e.Type == agent.EventToolInvoked {
			toolEvents = append(toolEvents, e)
		}
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if answer != "final answer" {
		t.Errorf("answer = %q, want %q", answer, "final answer")
	}
	if len(toolEvents) != 1 {
		t.Fatalf("got %d tool events, want 1", len(toolEvents))
	}
	if toolEvents[0].Tool != "search" {
		t.Errorf("tool event names %q, want search", toolEvents[0].Tool)
	}
	if search.calls != 1 {
		t.Errorf("tool invoked %d times, want 1", search.calls)
	}
}

func TestEngine_Run_DeduplicatesRepeatedCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chat := mocks.NewMockChatModel(ctrl)
	engine, _ := newTestEngine(t, chat)

	search := &stubTool{name: "search", result: "same answer"}
	sameCall := llm.ToolCall{Name: "search", Args: map[string]any{"q": "x"}}

	gomock.InOrder(
		chat.EXPECT().StreamTurn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(
			"", []llm.ToolCall{sameCall}, nil),
		// The model loops and asks for the identical call again.
		chat.EXPECT().StreamTurn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(
			"", []llm.ToolCall{sameCall}, nil),
		chat.EXPECT().StreamTurn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(
			"done", nil, nil),
	)

	toolEvents := 0
	_, err := engine.Run(context.Background(), "user-1", "conv-1", "question", []tools.Tool{search}, func(e agent.Event) {
		if e.Type == agent.EventToolInvoked {
			toolEvents++
		}
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if toolEvents != 1 {
		t.Errorf("got %d tool events for the repeated call, want 1", toolEvents)
	}
	if search.calls != 1 {
		t.Errorf("tool executed %d times for the repeated call, want 1", search.calls)
	}
}

func TestEngine_Run_ToolFailureBecomesObservation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chat := mocks.NewMockChatModel(ctrl)
	engine, _ := newTestEngine(t, chat)

	broken := &stubTool{name: "search", err: errors.New("backend down")}

	gomock.InOrder(
		chat.EXPECT().StreamTurn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(
			"", []llm.ToolCall{{Name: "search", Args: map[string]any{}}}, nil),
		chat.EXPECT().StreamTurn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, history []llm.Message, _ []tools.Tool, _ func(string)) (string, []llm.ToolCall, error) {
				last := history[len(history)-1]
				if last.Role != llm.RoleTool {
					t.Fatalf("last message role = %s, want tool", last.Role)
				}
				if last.ToolResult == "" {
					t.Error("tool failure produced an empty observation")
				}
				return "recovered", nil, nil
			}),
	)

	answer, err := engine.Run(context.Background(), "user-1", "conv-1", "question", []tools.Tool{broken}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if answer != "recovered" {
		t.Errorf("answer = %q, want recovered", answer)
	}
}

func TestEngine_Run_StopsToolLoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chat := mocks.NewMockChatModel(ctrl)
	engine, _ := newTestEngine(t, chat)

	counter := 0
	tool := &stubTool{name: "search", result: "obs"}
	chat.EXPECT().StreamTurn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ []llm.Message, toolset []tools.Tool, _ func(string)) (string, []llm.ToolCall, error) {
			counter++
			if len(toolset) == 0 {
				// Tools withheld: the model has to answer.
				return "forced answer", nil, nil
			}
			// Keep asking for new calls every round.
			return "", []llm.ToolCall{{Name: "search", Args: map[string]any{"round": fmt.Sprintf("%d", counter)}}}, nil
		}).AnyTimes()

	answer, err := engine.Run(context.Background(), "user-1", "conv-1", "question", []tools.Tool{tool}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if answer != "forced answer" {
		t.Errorf("answer = %q, want the forced answer", answer)
	}
}

func TestEngine_Run_ErrorsWhenToolCallsNeverStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chat := mocks.NewMockChatModel(ctrl)
	engine, checkpoints := newTestEngine(t, chat)

	tool := &stubTool{name: "search", result: "obs"}

	// The model requests a tool call every round, even after the tools are
	// withheld.
	chat.EXPECT().StreamTurn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(
		"", []llm.ToolCall{{Name: "search", Args: map[string]any{"q": "x"}}}, nil).AnyTimes()

	_, err := engine.Run(context.Background(), "user-1", "conv-1", "question", []tools.Tool{tool}, nil)
	if !errors.Is(err, service.ErrExternalService) {
		t.Fatalf("Run() error = %v, want ErrExternalService", err)
	}
	if history := checkpoints.Load("user-1", "conv-1"); history != nil {
		t.Errorf("failed turn was checkpointed: %v", history)
	}
}

func TestEngine_Run_ModelFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chat := mocks.NewMockChatModel(ctrl)
	engine, checkpoints := newTestEngine(t, chat)

	chat.EXPECT().StreamTurn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(
		"", nil, errors.New("stream broke"))

	_, err := engine.Run(context.Background(), "user-1", "conv-1", "question", nil, nil)
	if !errors.Is(err, service.ErrExternalService) {
		t.Errorf("Run() error = %v, want ErrExternalService", err)
	}

	// A failed turn is not checkpointed.
	if history := checkpoints.Load("user-1", "conv-1"); history != nil {
		t.Errorf("failed turn was checkpointed: %v", history)
	}
}

func TestEngine_Run_EmptyQuestion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine, _ := newTestEngine(t, mocks.NewMockChatModel(ctrl))

	_, err := engine.Run(context.Background(), "user-1", "conv-1", "", nil, nil)
	if !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("Run() error = %v, want ErrInvalidInput", err)
	}
}
