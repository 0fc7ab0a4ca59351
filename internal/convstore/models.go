package convstore

import "time"

// Conversation is the durable record of one chat thread.
type Conversation struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Topic       string    `json:"topic,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	// Files maps normalized file names to the time they were attached.
	Files map[string]time.Time `json:"files,omitempty"`
}
