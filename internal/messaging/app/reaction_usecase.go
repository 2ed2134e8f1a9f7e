package app

import (
	"context"

	"school_messaging_service/internal/messaging/domain"
	"school_messaging_service/internal/messaging/repository"
)

// ReactionUseCase toggles a user's emoji reaction on a message and returns
// the whole updated message, so callers replace their cached copy
// wholesale instead of patching a delta.
type ReactionUseCase interface {
	Toggle(ctx context.Context, user *domain.User, messageID int64, emoji string) (*domain.Message, error)
}

type reactionUseCase struct {
	store repository.GatewayStore
}

// NewReactionUseCase init the reaction aggregator
func NewReactionUseCase(store repository.GatewayStore) ReactionUseCase {
	return &reactionUseCase{store: store}
}

func (uc *reactionUseCase) Toggle(ctx context.Context, user *domain.User, messageID int64, emoji string) (*domain.Message, error) {
	if !user.IsBound() {
		return nil, nil
	}
	if emoji == "" {
		return nil, domain.ErrValidation
	}

	msg, err := uc.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	msg.Reactions = domain.ToggleReaction(msg.Reactions, domain.Reaction{
		Emoji:    emoji,
		UserID:   user.ID,
		UserName: user.Name,
	})
	if err := uc.store.UpdateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
