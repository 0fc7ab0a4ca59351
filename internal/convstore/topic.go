package convstore

import (
	"context"
	"fmt"
	"strings"

	"aireas/internal/contextutil"
)

// Generator runs a plain completion with a system instruction.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

const topicSystemPrompt = "You label chat conversations. Reply with a topic of at most five words. No punctuation, no quotes."

// AssignTopic derives a short topic from the first exchange of a conversation
// and stores it. A topic failure is logged but never fails the caller; the
// conversation simply stays unlabeled until the next turn.
func AssignTopic(ctx context.Context, store Store, llm Generator, userID, conversationID, question, answer string) {
	logger := contextutil.LoggerFromContext(ctx)

	prompt := fmt.Sprintf("Question: %s\n\nAnswer: %s\n\nTopic:", question, answer)
	topic, err := llm.Generate(ctx, topicSystemPrompt, prompt)
	if err != nil {
		logger.ErrorContext(ctx, "topic generation failed", "conversation_id", conversationID, "error", err)
		return
	}

	topic = clampTopic(topic)
	if topic == "" {
		return
	}
	if err := store.SetTopic(ctx, userID, conversationID, topic); err != nil {
		logger.ErrorContext(ctx, "failed to store topic", "conversation_id", conversationID, "error", err)
	}
}

// clampTopic trims the model output to at most five words.
func clampTopic(topic string) string {
	words := strings.Fields(strings.TrimSpace(topic))
	if len(words) > 5 {
		words = words[:5]
	}
	return strings.Join(words, " ")
}
