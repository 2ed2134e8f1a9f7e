package app

import (
	"context"
	"time"

	"school_messaging_service/internal/messaging/domain"
	"school_messaging_service/internal/messaging/repository"
	"school_messaging_service/pkg/logger"

	"go.uber.org/zap"
)

// DirectoryUseCase lists a user's conversations and owns the
// find-or-create dedup: there is never a second conversation between the
// same pair of users.
type DirectoryUseCase interface {
	ListForUser(ctx context.Context, user *domain.User) ([]domain.Conversation, error)
	FindOrCreate(ctx context.Context, user *domain.User, otherID, otherName, otherRole string) (*domain.Conversation, error)
}

type directoryUseCase struct {
	store repository.GatewayStore
}

// NewDirectoryUseCase init the conversation directory
func NewDirectoryUseCase(store repository.GatewayStore) DirectoryUseCase {
	return &directoryUseCase{store: store}
}

// ListForUser most recent first (the gateway backends sort by the
// denormalized last-message timestamp).
func (uc *directoryUseCase) ListForUser(ctx context.Context, user *domain.User) ([]domain.Conversation, error) {
	if !user.IsBound() {
		return nil, nil
	}
	return uc.store.ListConversationsForUser(ctx, user.ID)
}

// FindOrCreate scans the user's conversations for one already containing
// otherID and returns it unchanged; the gateway assigns ids
// unconditionally, so dedup lives here and only here.
func (uc *directoryUseCase) FindOrCreate(ctx context.Context, user *domain.User, otherID, otherName, otherRole string) (*domain.Conversation, error) {
	if !user.IsBound() {
		return nil, nil
	}
	if otherID == "" || otherID == user.ID {
		return nil, domain.ErrValidation
	}

	existing, err := uc.store.ListConversationsForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].HasParticipant(otherID) {
			return &existing[i], nil
		}
	}

	conv := &domain.Conversation{
		Participants: []domain.Participant{
			{UserID: user.ID, Name: user.Name, Role: user.Role},
			{UserID: otherID, Name: otherName, Role: otherRole},
		},
		LastMessage:          "",
		LastMessageTimestamp: time.Now(),
		UnreadCount:          0,
	}
	if err := uc.store.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	logger.Log.Info("conversation created",
		zap.String("conversation_id", conv.ID),
		zap.String("user_id", user.ID),
		zap.String("other_user_id", otherID),
	)
	return conv, nil
}
