package agent

import "aireas/internal/llm"

// estimateTokens approximates the token count of a message. Gemini averages
// roughly four characters per token for English text; the estimate only has
// to keep trimmed histories safely under the model context window.
func estimateTokens(msg llm.Message) int {
	chars := len(msg.Content) + len(msg.ToolName) + len(msg.ToolResult)
	for k, v := range msg.ToolArgs {
		chars += len(k)
		if s, ok := v.(string); ok {
			chars += len(s)
		} else {
			chars += 8
		}
	}
	tokens := chars / 4
	if tokens == 0 {
		tokens = 1
	}
	return tokens
}

// trimHistory drops the oldest messages until the history fits the token
// budget. A leading system message is always kept, messages are only dropped
// whole, and the most recent message survives even when it alone exceeds the
// budget.
func trimHistory(history []llm.Message, maxTokens int) []llm.Message {
	if len(history) == 0 || maxTokens <= 0 {
		return history
	}

	var system []llm.Message
	rest := history
	if history[0].Role == llm.RoleSystem {
		system = history[:1]
		rest = history[1:]
	}

	budget := maxTokens
	for _, msg := range system {
		budget -= estimateTokens(msg)
	}

	total := 0
	for _, msg := range rest {
		total += estimateTokens(msg)
	}

	start := 0
	for start < len(rest)-1 && total > budget {
		total -= estimateTokens(rest[start])
		start++
	}

	// Dropping messages can leave the head mid-exchange: an answer whose
	// question is gone, or an observation without its call. The model API
	// requires the first non-system turn to be a user turn, so advance to
	// the next user message.
	for start < len(rest)-1 && rest[start].Role != llm.RoleUser {
		total -= estimateTokens(rest[start])
		start++
	}

	trimmed := make([]llm.Message, 0, len(system)+len(rest)-start)
	trimmed = append(trimmed, system...)
	trimmed = append(trimmed, rest[start:]...)
	return trimmed
}
