package llm

// Role identifies the author of a chat message.
type Role string

const (
	// RoleSystem marks the leading system instruction of a session.
	RoleSystem Role = "system"
	// RoleUser marks messages typed by the user.
	RoleUser Role = "user"
	// RoleModel marks text produced by the model, including recorded tool calls.
	RoleModel Role = "model"
	// RoleTool marks tool observations fed back to the model.
	RoleTool Role = "tool"
)

// Message represents a single message in a chat conversation.
// Exactly one of Content or the ToolName/ToolArgs/ToolResult group is
// meaningful depending on the role.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`

	// ToolName and ToolArgs record a tool call on a model message; ToolName
	// and ToolResult carry the observation on a tool message.
	ToolName   string         `json:"tool_name,omitempty"`
	ToolArgs   map[string]any `json:"tool_args,omitempty"`
	ToolResult string         `json:"tool_result,omitempty"`
}

// ToolCall is a tool invocation requested by the model within a turn.
type ToolCall struct {
	Name string
	Args map[string]any
}
