package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestSplitHistory_EndsWithUserMessage(t *testing.T) {
	history := []Message{
		{Role: RoleUser, Content: "first"},
		{Role: RoleModel, Content: "reply"},
		{Role: RoleUser, Content: "second"},
	}

	prior, parts, err := splitHistory(history)
	if err != nil {
		t.Fatalf("splitHistory() error = %v", err)
	}
	if len(prior) != 2 {
		t.Fatalf("prior has %d contents, want 2", len(prior))
	}
	if len(parts) != 1 {
		t.Fatalf("send parts = %d, want 1", len(parts))
	}
	text, ok := parts[0].(genai.Text)
	if !ok || string(text) != "second" {
		t.Errorf("send part = %v, want the last user message", parts[0])
	}
}

func TestSplitHistory_GroupsTrailingToolObservations(t *testing.T) {
	history := []Message{
		{Role: RoleUser, Content: "question"},
		{Role: RoleModel, ToolName: "search", ToolArgs: map[string]any{"q": "x"}},
		{Role: RoleTool, ToolName: "search", ToolResult: "obs one"},
		{Role: RoleTool, ToolName: "arxiv_search", ToolResult: "obs two"},
	}

	prior, parts, err := splitHistory(history)
	if err != nil {
		t.Fatalf("splitHistory() error = %v", err)
	}
	if len(prior) != 2 {
		t.Fatalf("prior has %d contents, want 2", len(prior))
	}
	if len(parts) != 2 {
		t.Fatalf("send parts = %d, want both observations grouped", len(parts))
	}

	first, ok := parts[0].(genai.FunctionResponse)
	if !ok {
		t.Fatalf("part 0 = %T, want FunctionResponse", parts[0])
	}
	if first.Name != "search" || first.Response["result"] != "obs one" {
		t.Errorf("part 0 = %+v", first)
	}
	second, ok := parts[1].(genai.FunctionResponse)
	if !ok {
		t.Fatalf("part 1 = %T, want FunctionResponse", parts[1])
	}
	if second.Name != "arxiv_search" {
		t.Errorf("part 1 names %q, want arxiv_search", second.Name)
	}
}

func TestSplitHistory_RejectsBadEndings(t *testing.T) {
	tests := []struct {
		name    string
		history []Message
	}{
		{name: "empty", history: nil},
		{name: "ends with model text", history: []Message{
			{Role: RoleUser, Content: "q"},
			{Role: RoleModel, Content: "a"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := splitHistory(tt.history); err == nil {
				t.Error("splitHistory() error = nil, want error")
			}
		})
	}
}

func TestToContents_RoleMapping(t *testing.T) {
	contents, err := toContents([]Message{
		{Role: RoleUser, Content: "question"},
		{Role: RoleModel, ToolName: "search", ToolArgs: map[string]any{"q": "x"}},
		{Role: RoleTool, ToolName: "search", ToolResult: "obs"},
		{Role: RoleModel, Content: "answer"},
	})
	if err != nil {
		t.Fatalf("toContents() error = %v", err)
	}
	if len(contents) != 4 {
		t.Fatalf("toContents() returned %d contents, want 4", len(contents))
	}

	wantRoles := []string{"user", "model", "function", "model"}
	for i, want := range wantRoles {
		if contents[i].Role != want {
			t.Errorf("content %d role = %q, want %q", i, contents[i].Role, want)
		}
	}

	call, ok := contents[1].Parts[0].(genai.FunctionCall)
	if !ok {
		t.Fatalf("content 1 part = %T, want FunctionCall", contents[1].Parts[0])
	}
	if call.Name != "search" {
		t.Errorf("recorded call names %q, want search", call.Name)
	}
}

func TestToContents_UnknownRole(t *testing.T) {
	if _, err := toContents([]Message{{Role: "narrator", Content: "x"}}); err == nil {
		t.Error("toContents() error = nil, want error for unknown role")
	}
}
