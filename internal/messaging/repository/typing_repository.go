package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"school_messaging_service/internal/messaging/domain"
	"school_messaging_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// TypingStore holds the ephemeral "who is typing where" state. It is
// injectable and owned by the messaging subsystem (created with it,
// cleared on logout) instead of living in a process-wide global.
type TypingStore interface {
	// Set rewrites the (conversation, user) entry on every keystroke;
	// typing=false removes it explicitly.
	Set(ctx context.Context, conversationID string, user domain.User, typing bool) error
	// Active returns the non-expired entries of a conversation, excluding
	// excludeUserID (the poller never sees itself).
	Active(ctx context.Context, conversationID, excludeUserID string) ([]domain.TypingEntry, error)
	// Clear drops every entry, used on logout.
	Clear(ctx context.Context) error
}

type memoryTypingStore struct {
	mu      sync.Mutex
	entries map[string]domain.TypingEntry
	window  time.Duration
}

// NewMemoryTypingStore single-instance typing store with the given
// inactivity window.
func NewMemoryTypingStore(window time.Duration) TypingStore {
	if window <= 0 {
		window = domain.DefaultTypingWindow
	}
	return &memoryTypingStore{
		entries: make(map[string]domain.TypingEntry),
		window:  window,
	}
}

func typingKey(conversationID, userID string) string {
	return conversationID + ":" + userID
}

func (s *memoryTypingStore) Set(ctx context.Context, conversationID string, user domain.User, typing bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := typingKey(conversationID, user.ID)
	if !typing {
		delete(s.entries, key)
		return nil
	}
	s.entries[key] = domain.TypingEntry{
		ConversationID: conversationID,
		UserID:         user.ID,
		Name:           user.Name,
		LastUpdated:    time.Now(),
	}
	return nil
}

func (s *memoryTypingStore) Active(ctx context.Context, conversationID, excludeUserID string) ([]domain.TypingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var active []domain.TypingEntry
	for key, e := range s.entries {
		if e.Expired(now, s.window) {
			delete(s.entries, key)
			continue
		}
		if e.ConversationID != conversationID || e.UserID == excludeUserID {
			continue
		}
		active = append(active, e)
	}
	return active, nil
}

func (s *memoryTypingStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]domain.TypingEntry)
	return nil
}

// redisTypingStore multi-instance variant: one key per (conversation,
// user) with the window as TTL, so expiry needs no sweeper.
type redisTypingStore struct {
	client *redis.Client
	window time.Duration
}

// NewRedisTypingStore typing store backed by redis TTL keys
func NewRedisTypingStore(client *redis.Client, window time.Duration) TypingStore {
	if window <= 0 {
		window = domain.DefaultTypingWindow
	}
	return &redisTypingStore{client: client, window: window}
}

func (s *redisTypingStore) redisKey(conversationID, userID string) string {
	return fmt.Sprintf("typing:%s:%s", conversationID, userID)
}

func (s *redisTypingStore) Set(ctx context.Context, conversationID string, user domain.User, typing bool) error {
	key := s.redisKey(conversationID, user.ID)
	if !typing {
		return s.client.Del(ctx, key).Err()
	}
	entry := domain.TypingEntry{
		ConversationID: conversationID,
		UserID:         user.ID,
		Name:           user.Name,
		LastUpdated:    time.Now(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, s.window).Err()
}

func (s *redisTypingStore) Active(ctx context.Context, conversationID, excludeUserID string) ([]domain.TypingEntry, error) {
	keys, err := s.client.Keys(ctx, fmt.Sprintf("typing:%s:*", conversationID)).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	var active []domain.TypingEntry
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // expired between KEYS and MGET
		}
		var entry domain.TypingEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			logger.Log.Error("typing entry unmarshal failed", zap.Error(err))
			continue
		}
		if entry.UserID == excludeUserID {
			continue
		}
		active = append(active, entry)
	}
	return active, nil
}

func (s *redisTypingStore) Clear(ctx context.Context) error {
	keys, err := s.client.Keys(ctx, "typing:*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
