package storage

import "time"

// Document is one ingested file as recorded in the registry.
type Document struct {
	ID             int64     `json:"id"`
	FileName       string    `json:"file_name"`
	UserID         string    `json:"user_id"`
	ConversationID string    `json:"conversation_id"`
	ChunkCount     int       `json:"chunk_count"`
	CreatedAt      time.Time `json:"created_at"`
}
