package convstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks aireas/internal/convstore Store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"aireas/internal/contextutil"
	"aireas/internal/service"
)

// Store manages a user's conversations.
type Store interface {
	// Create starts a new conversation and returns it with its assigned id.
	Create(ctx context.Context, userID, name, description string) (Conversation, error)
	// Get returns a conversation by id. Returns ErrNotFound when absent.
	Get(ctx context.Context, userID, conversationID string) (Conversation, error)
	// List returns all of a user's conversations, newest first.
	List(ctx context.Context, userID string) ([]Conversation, error)
	// AttachFile records a file on a conversation.
	AttachFile(ctx context.Context, userID, conversationID, fileName string) error
	// SetTopic updates a conversation's topic.
	SetTopic(ctx context.Context, userID, conversationID, topic string) error
	// Delete removes a conversation. Returns ErrNotFound when absent.
	Delete(ctx context.Context, userID, conversationID string) error
}

// RedisStore implements Store on a Redis hash per user. The hash key is
// "user:{id}:conversations"; each field is a conversation id holding a JSON
// blob, so listing a user is one HGetAll.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a conversation store backed by the given client.
func NewRedisStore(client *redis.Client) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisStore{client: client}, nil
}

func userKey(userID string) string {
	return fmt.Sprintf("user:%s:conversations", userID)
}

// Create implements Store.
func (s *RedisStore) Create(ctx context.Context, userID, name, description string) (Conversation, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if userID == "" {
		return Conversation{}, service.WrapError(service.ErrInvalidInput, fmt.Errorf("user id is empty"))
	}
	if name == "" {
		return Conversation{}, service.WrapError(service.ErrInvalidInput, fmt.Errorf("conversation name is empty"))
	}

	conv := Conversation{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Timestamp:   time.Now().UTC(),
		Files:       make(map[string]time.Time),
	}

	if err := s.write(ctx, userID, conv); err != nil {
		return Conversation{}, err
	}

	logger.InfoContext(ctx, "conversation created", "user_id", userID, "conversation_id", conv.ID)
	return conv, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, userID, conversationID string) (Conversation, error) {
	raw, err := s.client.HGet(ctx, userKey(userID), conversationID).Result()
	if errors.Is(err, redis.Nil) {
		return Conversation{}, service.WrapError(service.ErrNotFound, fmt.Errorf("conversation %s", conversationID))
	}
	if err != nil {
		return Conversation{}, fmt.Errorf("failed to read conversation: %w", err)
	}

	var conv Conversation
	if err := json.Unmarshal([]byte(raw), &conv); err != nil {
		return Conversation{}, fmt.Errorf("failed to decode conversation %s: %w", conversationID, err)
	}
	return conv, nil
}

// List implements Store.
func (s *RedisStore) List(ctx context.Context, userID string) ([]Conversation, error) {
	logger := contextutil.LoggerFromContext(ctx)

	raw, err := s.client.HGetAll(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	conversations := make([]Conversation, 0, len(raw))
	for id, blob := range raw {
		var conv Conversation
		if err := json.Unmarshal([]byte(blob), &conv); err != nil {
			// A corrupt entry is skipped, not fatal for the listing.
			logger.ErrorContext(ctx, "skipping undecodable conversation", "user_id", userID, "conversation_id", id, "error", err)
			continue
		}
		conversations = append(conversations, conv)
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].Timestamp.After(conversations[j].Timestamp)
	})
	return conversations, nil
}

// AttachFile implements Store.
func (s *RedisStore) AttachFile(ctx context.Context, userID, conversationID, fileName string) error {
	if fileName == "" {
		return service.WrapError(service.ErrInvalidInput, fmt.Errorf("file name is empty"))
	}

	conv, err := s.Get(ctx, userID, conversationID)
	if err != nil {
		return err
	}
	if conv.Files == nil {
		conv.Files = make(map[string]time.Time)
	}
	conv.Files[fileName] = time.Now().UTC()
	return s.write(ctx, userID, conv)
}

// SetTopic implements Store.
func (s *RedisStore) SetTopic(ctx context.Context, userID, conversationID, topic string) error {
	conv, err := s.Get(ctx, userID, conversationID)
	if err != nil {
		return err
	}
	conv.Topic = topic
	return s.write(ctx, userID, conv)
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, userID, conversationID string) error {
	removed, err := s.client.HDel(ctx, userKey(userID), conversationID).Result()
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if removed == 0 {
		return service.WrapError(service.ErrNotFound, fmt.Errorf("conversation %s", conversationID))
	}
	return nil
}

func (s *RedisStore) write(ctx context.Context, userID string, conv Conversation) error {
	blob, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}
	if err := s.client.HSet(ctx, userKey(userID), conv.ID, blob).Err(); err != nil {
		return fmt.Errorf("failed to write conversation: %w", err)
	}
	return nil
}
