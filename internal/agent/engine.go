package agent

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_model.go -package=mocks aireas/internal/agent ChatModel

import (
	"context"
	"encoding/json"
	"fmt"

	"aireas/internal/contextutil"
	"aireas/internal/llm"
	"aireas/internal/service"
	"aireas/internal/tools"
)

// ChatModel runs one model turn over a history, streaming text through
// onText and returning any tool calls the model requested.
type ChatModel interface {
	StreamTurn(ctx context.Context, history []llm.Message, toolset []tools.Tool, onText func(string)) (string, []llm.ToolCall, error)
}

// maxToolRounds bounds how many tool rounds a single question may take
// before the engine gives up and asks the model to answer with what it has.
const maxToolRounds = 5

const systemPrompt = "You are a research assistant. Answer using the provided tools when the question " +
	"concerns uploaded documents, papers, or current information; answer directly when you already know. " +
	"Cite the source document when a retrieved passage informs your answer."

// Engine drives tool-using chat turns against a model, persisting the
// conversation history between turns. The toolset is supplied per turn
// because retrieval tools are scoped to the session's user.
type Engine struct {
	chat        ChatModel
	checkpoints *CheckpointStore
	maxTokens   int
}

// NewEngine creates an agent engine.
func NewEngine(chat ChatModel, checkpoints *CheckpointStore, maxHistoryTokens int) (*Engine, error) {
	if chat == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	if checkpoints == nil {
		return nil, fmt.Errorf("checkpoint store is required")
	}
	if maxHistoryTokens <= 0 {
		return nil, fmt.Errorf("max history tokens must be greater than 0, got %d", maxHistoryTokens)
	}
	return &Engine{
		chat:        chat,
		checkpoints: checkpoints,
		maxTokens:   maxHistoryTokens,
	}, nil
}

// Run answers one user question within a conversation. Events are delivered
// through emit as the turn progresses: one tool_invoked per distinct tool
// call, answer_chunk for each streamed fragment, and the full answer is
// returned. The updated history is checkpointed before returning.
func (e *Engine) Run(ctx context.Context, userID, conversationID, question string, toolset []tools.Tool, emit func(Event)) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if question == "" {
		return "", service.WrapError(service.ErrInvalidInput, fmt.Errorf("question is empty"))
	}
	if emit == nil {
		emit = func(Event) {}
	}

	history := e.checkpoints.Load(userID, conversationID)
	if len(history) == 0 {
		history = []llm.Message{{Role: llm.RoleSystem, Content: systemPrompt}}
	}
	history = append(history, llm.Message{Role: llm.RoleUser, Content: question})
	history = trimHistory(history, e.maxTokens)

	// The same (tool, args) pair announced once per turn, and its result
	// reused, so a looping model does not spam the client or the tool.
	invoked := make(map[string]string)

	var answer string
	for round := 0; ; round++ {
		roundTools := toolset
		if round >= maxToolRounds {
			// Force a final answer by withholding the tools.
			roundTools = nil
		}

		text, calls, err := e.chat.StreamTurn(ctx, history, roundTools, func(chunk string) {
			emit(Event{Type: EventAnswerChunk, Text: chunk})
		})
		if err != nil {
			return "", service.WrapError(service.ErrExternalService, err)
		}
		answer += text

		if len(calls) == 0 {
			history = append(history, llm.Message{Role: llm.RoleModel, Content: answer})
			break
		}
		if round >= maxToolRounds {
			// Even with the tools withheld the model kept requesting calls;
			// nothing it returns now can become an answer.
			return "", service.WrapError(service.ErrExternalService,
				fmt.Errorf("model requested tools after %d rounds with tools withheld", maxToolRounds))
		}

		for _, call := range calls {
			key := callKey(call)
			result, seen := invoked[key]
			if !seen {
				emit(Event{Type: EventToolInvoked, Tool: call.Name, Args: call.Args})
				result = invoke(ctx, toolset, call)
				invoked[key] = result
			}

			history = append(history, llm.Message{
				Role:     llm.RoleModel,
				ToolName: call.Name,
				ToolArgs: call.Args,
			})
			history = append(history, llm.Message{
				Role:       llm.RoleTool,
				ToolName:   call.Name,
				ToolResult: result,
			})
		}
		history = trimHistory(history, e.maxTokens)
	}

	e.checkpoints.Save(userID, conversationID, history)
	logger.InfoContext(ctx, "turn completed", "user_id", userID, "conversation_id", conversationID, "tools_used", len(invoked))
	return answer, nil
}

// invoke executes a tool call, converting failures into an observation the
// model can recover from instead of aborting the turn.
func invoke(ctx context.Context, toolset []tools.Tool, call llm.ToolCall) string {
	logger := contextutil.LoggerFromContext(ctx)

	for _, tool := range toolset {
		if tool.Name() != call.Name {
			continue
		}
		result, err := tool.Call(ctx, call.Args)
		if err != nil {
			logger.ErrorContext(ctx, "tool call failed", "tool", call.Name, "error", err)
			return fmt.Sprintf("tool %s failed: %v", call.Name, err)
		}
		return result
	}

	logger.WarnContext(ctx, "model requested unknown tool", "tool", call.Name)
	return fmt.Sprintf("unknown tool: %s", call.Name)
}

// callKey canonicalizes a tool call for deduplication. Go serializes map
// keys in sorted order, so equal argument maps produce equal keys.
func callKey(call llm.ToolCall) string {
	args, err := json.Marshal(call.Args)
	if err != nil {
		args = []byte(fmt.Sprintf("%v", call.Args))
	}
	return call.Name + ":" + string(args)
}
