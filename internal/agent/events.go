package agent

// EventType identifies the kind of event emitted during a chat turn.
type EventType string

const (
	// EventToolInvoked is emitted once per distinct tool call in a turn.
	EventToolInvoked EventType = "tool_invoked"
	// EventAnswerChunk carries a streamed fragment of the answer text.
	EventAnswerChunk EventType = "answer_chunk"
	// EventDone closes a turn and carries the full answer.
	EventDone EventType = "done"
	// EventError reports a failed turn.
	EventError EventType = "error"
)

// Event is a single occurrence streamed to the client during a turn.
type Event struct {
	Type EventType      `json:"type"`
	Tool string         `json:"tool,omitempty"`
	Args map[string]any `json:"args,omitempty"`
	Text string         `json:"text,omitempty"`
}
