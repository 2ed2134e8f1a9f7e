package repository

import (
	"context"

	"school_messaging_service/internal/messaging/domain"
)

// Store is the single capability interface both persistence backends
// implement: the remote store (mongo + postgres) and the in-process mirror.
// The gateway decorator selects between them at runtime.
type Store interface {
	ListConversationsForUser(ctx context.Context, userID string) ([]domain.Conversation, error)
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)
	CreateConversation(ctx context.Context, conv *domain.Conversation) error
	UpdateConversation(ctx context.Context, conv *domain.Conversation) error

	ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error)
	GetMessage(ctx context.Context, messageID int64) (*domain.Message, error)
	// CreateMessage assigns msg.ID when it is zero; a preset id is kept
	// as-is so the mirror can replay a remote write under the same id.
	CreateMessage(ctx context.Context, msg *domain.Message) error
	// UpdateMessage may only change the Read flag and the reaction set.
	UpdateMessage(ctx context.Context, msg *domain.Message) error
	// MarkRead batch-flips Read on every unread message addressed to
	// readerID in the conversation and resets its unread counter.
	MarkRead(ctx context.Context, conversationID, readerID string) (int, error)

	ListUsers(ctx context.Context) ([]domain.User, error)
}

// GatewayStore is the surface the usecases depend on: the primitive store
// operations plus the gateway-orchestrated send.
type GatewayStore interface {
	Store
	SendMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error)
}
