package app

import (
	"context"
	"testing"

	"school_messaging_service/internal/messaging/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// 第一次 toggle 加上 reaction
func TestReactionUseCase_Toggle_Add(t *testing.T) {
	ctx := context.Background()
	store := new(MockGatewayStore)

	msg := &domain.Message{ID: 5, Message: "hi"}
	store.On("GetMessage", ctx, int64(5)).Return(msg, nil)
	store.On("UpdateMessage", ctx, mock.Anything).Return(nil)

	uc := NewReactionUseCase(store)
	got, err := uc.Toggle(ctx, &domain.User{ID: "user-1", Name: "Amy"}, 5, "👍")

	assert.NoError(t, err)
	assert.Len(t, got.Reactions, 1)
	assert.Equal(t, "👍", got.Reactions[0].Emoji)
	store.AssertExpectations(t)
}

// 同一人同 emoji 再 toggle 一次會移除（幂等）
func TestReactionUseCase_Toggle_Remove(t *testing.T) {
	ctx := context.Background()
	store := new(MockGatewayStore)

	msg := &domain.Message{ID: 5, Reactions: []domain.Reaction{
		{Emoji: "👍", UserID: "user-1", UserName: "Amy"},
		{Emoji: "👍", UserID: "user-2", UserName: "Bob"},
	}}
	store.On("GetMessage", ctx, int64(5)).Return(msg, nil)
	store.On("UpdateMessage", ctx, mock.Anything).Return(nil)

	uc := NewReactionUseCase(store)
	got, err := uc.Toggle(ctx, &domain.User{ID: "user-1", Name: "Amy"}, 5, "👍")

	assert.NoError(t, err)
	// 只移除自己的那筆，別人的保留
	assert.Len(t, got.Reactions, 1)
	assert.Equal(t, "user-2", got.Reactions[0].UserID)
}

// 訊息不存在
func TestReactionUseCase_Toggle_NotFound(t *testing.T) {
	ctx := context.Background()
	store := new(MockGatewayStore)

	store.On("GetMessage", ctx, int64(99)).Return(nil, domain.ErrNotFound)

	uc := NewReactionUseCase(store)
	_, err := uc.Toggle(ctx, &domain.User{ID: "user-1"}, 99, "🎉")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	store.AssertNotCalled(t, "UpdateMessage", mock.Anything, mock.Anything)
}

// 空 emoji 與未綁定 session
func TestReactionUseCase_Toggle_Validation(t *testing.T) {
	ctx := context.Background()
	store := new(MockGatewayStore)
	uc := NewReactionUseCase(store)

	_, err := uc.Toggle(ctx, &domain.User{ID: "user-1"}, 5, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := uc.Toggle(ctx, nil, 5, "👍")
	assert.NoError(t, err)
	assert.Nil(t, got)
}
