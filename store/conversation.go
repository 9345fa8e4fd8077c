package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// AwaitingAction is the two-step confirmation flag of a conversation:
// the bot has shown the playlist overview and is waiting for a number.
type AwaitingAction string

const (
	AwaitingNothing AwaitingAction = ""
	AwaitingDelete  AwaitingAction = "delete"
	AwaitingRestart AwaitingAction = "restart"
)

// CachedUser is the identity record cached per conversation so every
// message doesn't re-run the upsert. It expires; the database is the
// source of truth.
type CachedUser struct {
	UserID            int64  `json:"user_id"`
	DefaultPlaylistID int64  `json:"default_playlist_id"`
	DisplayName       string `json:"display_name"`
}

type ConversationStore interface {
	SetAwaiting(ctx context.Context, chatID int64, action AwaitingAction) error
	Awaiting(ctx context.Context, chatID int64) (AwaitingAction, error)
	ClearAwaiting(ctx context.Context, chatID int64) (AwaitingAction, error)
	SaveUser(ctx context.Context, chatID int64, user CachedUser) error
	User(ctx context.Context, chatID int64) (*CachedUser, error)
}

type conversationStore struct {
	client *redis.Client
	prefix string

	// awaitingTTL bounds how long a confirmation prompt stays armed;
	// userTTL bounds identity-cache staleness.
	awaitingTTL time.Duration
	userTTL     time.Duration
}

func NewConversationStore(client *redis.Client, prefix string) ConversationStore {
	return &conversationStore{
		client:      client,
		prefix:      prefix,
		awaitingTTL: 10 * time.Minute,
		userTTL:     time.Hour,
	}
}

func (cs *conversationStore) awaitingKey(chatID int64) string {
	return fmt.Sprintf("%s:awaiting:%d", cs.prefix, chatID)
}

func (cs *conversationStore) userKey(chatID int64) string {
	return fmt.Sprintf("%s:user:%d", cs.prefix, chatID)
}

func (cs *conversationStore) SetAwaiting(ctx context.Context, chatID int64, action AwaitingAction) error {
	if err := cs.client.Set(ctx, cs.awaitingKey(chatID), string(action), cs.awaitingTTL).Err(); err != nil {
		return fmt.Errorf("failed to set awaiting flag: %w", err)
	}
	return nil
}

func (cs *conversationStore) Awaiting(ctx context.Context, chatID int64) (AwaitingAction, error) {
	result, err := cs.client.Get(ctx, cs.awaitingKey(chatID)).Result()
	if err == redis.Nil {
		return AwaitingNothing, nil
	} else if err != nil {
		return AwaitingNothing, fmt.Errorf("failed to get awaiting flag: %w", err)
	}
	return AwaitingAction(result), nil
}

// ClearAwaiting drops the flag and reports what was armed, so callers
// can word the cancellation message.
func (cs *conversationStore) ClearAwaiting(ctx context.Context, chatID int64) (AwaitingAction, error) {
	action, err := cs.Awaiting(ctx, chatID)
	if err != nil {
		return AwaitingNothing, err
	}
	if action == AwaitingNothing {
		return AwaitingNothing, nil
	}
	if err := cs.client.Del(ctx, cs.awaitingKey(chatID)).Err(); err != nil && err != redis.Nil {
		return AwaitingNothing, fmt.Errorf("failed to clear awaiting flag: %w", err)
	}
	return action, nil
}

func (cs *conversationStore) SaveUser(ctx context.Context, chatID int64, user CachedUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal cached user: %w", err)
	}

	if err := cs.client.Set(ctx, cs.userKey(chatID), data, cs.userTTL).Err(); err != nil {
		return fmt.Errorf("failed to save cached user: %w", err)
	}
	return nil
}

func (cs *conversationStore) User(ctx context.Context, chatID int64) (*CachedUser, error) {
	result, err := cs.client.Get(ctx, cs.userKey(chatID)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get cached user: %w", err)
	}

	var user CachedUser
	if err := json.Unmarshal([]byte(result), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached user: %w", err)
	}
	return &user, nil
}
