package agent

import (
	"fmt"
	"sync"

	"aireas/internal/llm"
)

// CheckpointStore keeps per-conversation chat histories in memory so a turn
// can resume where the previous one left off. Histories are keyed by user and
// conversation; the durable record lives in the conversation store, this is
// the working copy the model sees.
type CheckpointStore struct {
	mu       sync.RWMutex
	sessions map[string][]llm.Message
}

// NewCheckpointStore creates an empty checkpoint store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{sessions: make(map[string][]llm.Message)}
}

func checkpointKey(userID, conversationID string) string {
	return fmt.Sprintf("%s:%s", userID, conversationID)
}

// Load returns a copy of the stored history for the conversation, or nil
// when none exists.
func (s *CheckpointStore) Load(userID, conversationID string) []llm.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.sessions[checkpointKey(userID, conversationID)]
	if !ok {
		return nil
	}
	out := make([]llm.Message, len(history))
	copy(out, history)
	return out
}

// Save replaces the stored history for the conversation.
func (s *CheckpointStore) Save(userID, conversationID string, history []llm.Message) {
	stored := make([]llm.Message, len(history))
	copy(stored, history)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[checkpointKey(userID, conversationID)] = stored
}

// Delete removes the stored history for the conversation.
func (s *CheckpointStore) Delete(userID, conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, checkpointKey(userID, conversationID))
}
