package repository

import (
	"context"
	"sort"
	"sync"

	"school_messaging_service/internal/messaging/domain"
)

// MemoryStore is the in-process mirror the gateway falls back to when the
// remote store is unreachable or disabled. It is mutated on every gateway
// call, so a read later in the session stays consistent with a prior
// fallback-mode write even if no remote ever becomes reachable.
//
// 一個 mutex per store: message log 是 append-only, id 單調遞增,
// 不需要更細的鎖.
type MemoryStore struct {
	mu            sync.Mutex
	conversations map[string]*domain.Conversation
	messages      []domain.Message
	users         []domain.User
	nextMessageID int64
}

// NewMemoryStore create an empty mirror
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*domain.Conversation),
		nextMessageID: 1,
	}
}

func (m *MemoryStore) ListConversationsForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var convs []domain.Conversation
	for _, c := range m.conversations {
		if c.HasParticipant(userID) {
			convs = append(convs, *c)
		}
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].LastMessageTimestamp.After(convs[j].LastMessageTimestamp)
	})
	return convs, nil
}

func (m *MemoryStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *MemoryStore) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *conv
	m.conversations[conv.ID] = &copied
	return nil
}

func (m *MemoryStore) UpdateConversation(ctx context.Context, conv *domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conversations[conv.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *conv
	m.conversations[conv.ID] = &copied
	return nil
}

func (m *MemoryStore) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var msgs []domain.Message
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

func (m *MemoryStore) GetMessage(ctx context.Context, messageID int64) (*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, msg := range m.messages {
		if msg.ID == messageID {
			copied := msg
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemoryStore) CreateMessage(ctx context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if msg.ID == 0 {
		msg.ID = m.nextMessageID
	}
	if msg.ID >= m.nextMessageID {
		m.nextMessageID = msg.ID + 1
	}
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *MemoryStore) UpdateMessage(ctx context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.messages {
		if m.messages[i].ID == msg.ID {
			// read state is monotone: once true it stays true
			m.messages[i].Read = m.messages[i].Read || msg.Read
			m.messages[i].Reactions = msg.Reactions
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MemoryStore) MarkRead(ctx context.Context, conversationID, readerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	marked := 0
	for i := range m.messages {
		msg := &m.messages[i]
		if msg.ConversationID == conversationID && msg.ReceiverID == readerID && !msg.Read {
			msg.Read = true
			marked++
		}
	}
	if c, ok := m.conversations[conversationID]; ok {
		c.UnreadCount = 0
	}
	return marked, nil
}

func (m *MemoryStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]domain.User(nil), m.users...), nil
}

// SyncConversations replace mirrored copies with authoritative remote reads
func (m *MemoryStore) SyncConversations(convs []domain.Conversation) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range convs {
		copied := c
		m.conversations[c.ID] = &copied
	}
}

// SyncMessage upsert one authoritative remote read into the mirrored log,
// so a later fallback-mode UpdateMessage replay can find it
func (m *MemoryStore) SyncMessage(msg *domain.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if msg.ID >= m.nextMessageID {
		m.nextMessageID = msg.ID + 1
	}
	for i := range m.messages {
		if m.messages[i].ID == msg.ID {
			m.messages[i] = *msg
			return
		}
	}
	m.messages = append(m.messages, *msg)
	sort.Slice(m.messages, func(i, j int) bool { return m.messages[i].ID < m.messages[j].ID })
}

// SyncMessages replace one conversation's mirrored log with the remote one
func (m *MemoryStore) SyncMessages(conversationID string, msgs []domain.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.messages[:0]
	for _, msg := range m.messages {
		if msg.ConversationID != conversationID {
			kept = append(kept, msg)
		}
	}
	m.messages = append(kept, msgs...)
	sort.Slice(m.messages, func(i, j int) bool { return m.messages[i].ID < m.messages[j].ID })
	for _, msg := range msgs {
		if msg.ID >= m.nextMessageID {
			m.nextMessageID = msg.ID + 1
		}
	}
}

// SyncUsers cache the remote user directory for fallback reads
func (m *MemoryStore) SyncUsers(users []domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = append([]domain.User(nil), users...)
}
