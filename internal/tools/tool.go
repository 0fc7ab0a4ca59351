package tools

import (
	"context"

	"github.com/google/generative-ai-go/genai"
)

// Tool is a callable capability exposed to the agent model. Implementations
// must be safe for concurrent use across sessions.
type Tool interface {
	// Name is the function name declared to the model.
	Name() string
	// Description tells the model when to pick this tool.
	Description() string
	// Parameters declares the argument schema for the model.
	Parameters() *genai.Schema
	// Call executes the tool with the model-provided arguments and returns
	// the observation text fed back to the model.
	Call(ctx context.Context, args map[string]any) (string, error)
}

// stringArg extracts a string argument by key, tolerating missing values.
func stringArg(args map[string]any, key string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// intArg extracts an integer argument by key, returning fallback when absent.
// The model serializes numbers as float64.
func intArg(args map[string]any, key string, fallback int) int {
	if v, ok := args[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return fallback
}
