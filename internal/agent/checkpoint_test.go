package agent_test

import (
	"testing"

	"aireas/internal/agent"
	"aireas/internal/llm"
)

func TestCheckpointStore_RoundTrip(t *testing.T) {
	store := agent.NewCheckpointStore()

	if got := store.Load("user-1", "conv-1"); got != nil {
		t.Errorf("Load() on empty store = %v, want nil", got)
	}

	history := []llm.Message{
		{Role: llm.RoleUser, Content: "hello"},
		{Role: llm.RoleModel, Content: "hi"},
	}
	store.Save("user-1", "conv-1", history)

	loaded := store.Load("user-1", "conv-1")
	if len(loaded) != 2 {
		t.Fatalf("Load() returned %d messages, want 2", len(loaded))
	}

	// The stored history is isolated from later mutation of the loaded copy.
	loaded[0].Content = "mutated"
	if again := store.Load("user-1", "conv-1"); again[0].Content != "hello" {
		t.Error("mutating a loaded history changed the stored copy")
	}
}

func TestCheckpointStore_KeysByUserAndConversation(t *testing.T) {
	store := agent.NewCheckpointStore()
	store.Save("user-1", "conv-1", []llm.Message{{Role: llm.RoleUser, Content: "a"}})

	if got := store.Load("user-2", "conv-1"); got != nil {
		t.Error("another user's conversation leaked")
	}
	if got := store.Load("user-1", "conv-2"); got != nil {
		t.Error("another conversation leaked")
	}
}

func TestCheckpointStore_Delete(t *testing.T) {
	store := agent.NewCheckpointStore()
	store.Save("user-1", "conv-1", []llm.Message{{Role: llm.RoleUser, Content: "a"}})
	store.Delete("user-1", "conv-1")

	if got := store.Load("user-1", "conv-1"); got != nil {
		t.Errorf("Load() after Delete() = %v, want nil", got)
	}
}
