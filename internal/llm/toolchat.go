package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"

	"aireas/internal/contextutil"
	"aireas/internal/tools"
)

// ToolChat runs single model turns with function calling and streaming text.
// It converts between the neutral Message history and the Gemini chat wire
// format on every turn, so callers own the history and can trim or persist it
// however they like.
type ToolChat struct {
	client *Client
}

// NewToolChat wraps a Client for tool-calling chat turns.
func NewToolChat(client *Client) *ToolChat {
	return &ToolChat{client: client}
}

// StreamTurn sends the conversation to the model and streams the response.
// Text chunks are delivered through onText as they arrive; any tool calls the
// model requests during the turn are collected and returned. The full
// concatenated text is returned alongside the calls.
//
// The history must end with either a user message or one or more tool
// observations; everything before that is replayed as chat history.
func (t *ToolChat) StreamTurn(ctx context.Context, history []Message, toolset []tools.Tool, onText func(string)) (string, []ToolCall, error) {
	logger := contextutil.LoggerFromContext(ctx)

	model := t.client.Raw().GenerativeModel(t.client.ModelName())
	if len(toolset) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: declarations(toolset)}}
	}

	// Gemini takes the system prompt as a model parameter, not a history entry.
	if len(history) > 0 && history[0].Role == RoleSystem {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(history[0].Content)}}
		history = history[1:]
	}

	prior, sendParts, err := splitHistory(history)
	if err != nil {
		return "", nil, err
	}

	session := model.StartChat()
	session.History = prior

	if err := t.client.limiter.Wait(ctx); err != nil {
		return "", nil, err
	}

	var (
		text  string
		calls []ToolCall
	)
	it := session.SendMessageStream(ctx, sendParts...)
	for {
		resp, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			logger.ErrorContext(ctx, "streaming turn failed", "model", t.client.ModelName(), "error", err)
			return text, calls, fmt.Errorf("streaming turn failed: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		for _, part := range resp.Candidates[0].Content.Parts {
			switch p := part.(type) {
			case genai.Text:
				chunk := string(p)
				text += chunk
				if onText != nil && chunk != "" {
					onText(chunk)
				}
			case genai.FunctionCall:
				calls = append(calls, ToolCall{Name: p.Name, Args: p.Args})
			}
		}
	}

	return text, calls, nil
}

// splitHistory separates the trailing message(s) to send from the replayed
// history. Trailing tool observations are grouped into one function-response
// message so a multi-tool turn round-trips as a single send.
func splitHistory(history []Message) ([]*genai.Content, []genai.Part, error) {
	if len(history) == 0 {
		return nil, nil, fmt.Errorf("history is empty")
	}

	// Count trailing tool observations.
	tail := len(history)
	for tail > 0 && history[tail-1].Role == RoleTool {
		tail--
	}

	if tail == len(history) {
		last := history[len(history)-1]
		if last.Role != RoleUser {
			return nil, nil, fmt.Errorf("history must end with a user message or tool observations, got role %q", last.Role)
		}
		prior, err := toContents(history[:len(history)-1])
		if err != nil {
			return nil, nil, err
		}
		return prior, []genai.Part{genai.Text(last.Content)}, nil
	}

	prior, err := toContents(history[:tail])
	if err != nil {
		return nil, nil, err
	}
	parts := make([]genai.Part, 0, len(history)-tail)
	for _, msg := range history[tail:] {
		parts = append(parts, genai.FunctionResponse{
			Name:     msg.ToolName,
			Response: map[string]any{"result": msg.ToolResult},
		})
	}
	return prior, parts, nil
}

// toContents converts neutral messages into the Gemini history format.
func toContents(messages []Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(msg.Content)},
			})
		case RoleModel:
			if msg.ToolName != "" {
				contents = append(contents, &genai.Content{
					Role:  "model",
					Parts: []genai.Part{genai.FunctionCall{Name: msg.ToolName, Args: msg.ToolArgs}},
				})
				continue
			}
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text(msg.Content)},
			})
		case RoleTool:
			contents = append(contents, &genai.Content{
				Role: "function",
				Parts: []genai.Part{genai.FunctionResponse{
					Name:     msg.ToolName,
					Response: map[string]any{"result": msg.ToolResult},
				}},
			})
		default:
			return nil, fmt.Errorf("unknown message role %q", msg.Role)
		}
	}
	return contents, nil
}

// declarations builds the function declarations exposed to the model.
func declarations(toolset []tools.Tool) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(toolset))
	for _, tool := range toolset {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return decls
}
