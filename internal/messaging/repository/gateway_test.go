package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"school_messaging_service/internal/messaging/domain"
	"school_messaging_service/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	os.Exit(m.Run())
}

var errRemoteDown = errors.New("connection refused")

// failingStore 模擬完全斷線的 remote
type failingStore struct{}

func (failingStore) ListConversationsForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	return nil, errRemoteDown
}
func (failingStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	return nil, errRemoteDown
}
func (failingStore) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	return errRemoteDown
}
func (failingStore) UpdateConversation(ctx context.Context, conv *domain.Conversation) error {
	return errRemoteDown
}
func (failingStore) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	return nil, errRemoteDown
}
func (failingStore) GetMessage(ctx context.Context, messageID int64) (*domain.Message, error) {
	return nil, errRemoteDown
}
func (failingStore) CreateMessage(ctx context.Context, msg *domain.Message) error {
	return errRemoteDown
}
func (failingStore) UpdateMessage(ctx context.Context, msg *domain.Message) error {
	return errRemoteDown
}
func (failingStore) MarkRead(ctx context.Context, conversationID, readerID string) (int, error) {
	return 0, errRemoteDown
}
func (failingStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	return nil, errRemoteDown
}

func newPairConversation() *domain.Conversation {
	return &domain.Conversation{
		Participants: []domain.Participant{
			{UserID: "user-1", Name: "Amy", Role: domain.RoleTeacher},
			{UserID: "user-2", Name: "Bob", Role: domain.RoleStudent},
		},
	}
}

// remote 全斷時整條流程仍然可用，訊息照送出順序讀回來
func TestGateway_FallbackContinuity(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(failingStore{}, NewMemoryStore(), true, 0)

	conv := newPairConversation()
	assert.NoError(t, g.CreateConversation(ctx, conv))
	assert.NotEmpty(t, conv.ID)

	for _, text := range []string{"first", "second", "third"} {
		_, err := g.SendMessage(ctx, &domain.Message{
			ConversationID: conv.ID,
			SenderID:       "user-1",
			ReceiverID:     "user-2",
			Message:        text,
		})
		assert.NoError(t, err)
	}

	msgs, err := g.ListMessages(ctx, conv.ID)
	assert.NoError(t, err)
	assert.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Message)
	assert.Equal(t, "third", msgs[2].Message)
	// id 單調遞增
	assert.Less(t, msgs[0].ID, msgs[1].ID)
	assert.Less(t, msgs[1].ID, msgs[2].ID)

	got, err := g.GetConversation(ctx, conv.ID)
	assert.NoError(t, err)
	assert.Equal(t, "third", got.LastMessage)
	assert.Equal(t, 3, got.UnreadCount)
}

// remote 關閉時也一樣（離線模式）
func TestGateway_RemoteDisabled(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(failingStore{}, NewMemoryStore(), false, 0)

	conv := newPairConversation()
	assert.NoError(t, g.CreateConversation(ctx, conv))

	sent, err := g.SendMessage(ctx, &domain.Message{
		ConversationID: conv.ID,
		SenderID:       "user-1",
		ReceiverID:     "user-2",
		Message:        "offline hello",
	})
	assert.NoError(t, err)
	assert.NotZero(t, sent.ID)
	assert.False(t, sent.Timestamp.IsZero())
}

// 空訊息在 gateway 也擋一次
func TestGateway_SendMessage_Validation(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(failingStore{}, NewMemoryStore(), false, 0)

	_, err := g.SendMessage(ctx, &domain.Message{ConversationID: "x", Message: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// 兩邊都找不到才回 ErrNotFound
func TestGateway_NotFoundSurfaces(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(failingStore{}, NewMemoryStore(), true, 0)

	_, err := g.GetConversation(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = g.GetMessage(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// flakyStore 模擬中途斷線的 remote：down 之後所有操作都失敗
type flakyStore struct {
	*MemoryStore
	down bool
}

func (s *flakyStore) GetMessage(ctx context.Context, messageID int64) (*domain.Message, error) {
	if s.down {
		return nil, errRemoteDown
	}
	return s.MemoryStore.GetMessage(ctx, messageID)
}

func (s *flakyStore) UpdateMessage(ctx context.Context, msg *domain.Message) error {
	if s.down {
		return errRemoteDown
	}
	return s.MemoryStore.UpdateMessage(ctx, msg)
}

// remote 在讀與寫之間斷線：remote 讀到的訊息要先同步進 mirror，
// 之後 fallback 的 UpdateMessage 才找得到，reaction 不會丟
func TestGateway_UpdateSurvivesRemoteOutageBetweenReadAndWrite(t *testing.T) {
	ctx := context.Background()
	remote := &flakyStore{MemoryStore: NewMemoryStore()}

	seed := domain.Message{ID: 7, ConversationID: "conv-1", SenderID: "user-1", ReceiverID: "user-2", Message: "hello"}
	assert.NoError(t, remote.MemoryStore.CreateMessage(ctx, &seed))

	// mirror 是全新的，訊息只存在 remote
	g := NewGateway(remote, NewMemoryStore(), true, 0)

	msg, err := g.GetMessage(ctx, 7)
	assert.NoError(t, err)

	remote.down = true

	msg.Reactions = append(msg.Reactions, domain.Reaction{UserID: "user-2", Emoji: "👍"})
	assert.NoError(t, g.UpdateMessage(ctx, msg))

	got, err := g.GetMessage(ctx, 7)
	assert.NoError(t, err)
	assert.Len(t, got.Reactions, 1)
	assert.Equal(t, "👍", got.Reactions[0].Emoji)
}

// 附件訊息沒文字時，摘要用附件格式
func TestGateway_SendMessage_AttachmentSummary(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(failingStore{}, NewMemoryStore(), true, 0)

	conv := newPairConversation()
	assert.NoError(t, g.CreateConversation(ctx, conv))

	_, err := g.SendMessage(ctx, &domain.Message{
		ConversationID: conv.ID,
		SenderID:       "user-1",
		ReceiverID:     "user-2",
		Attachments: []domain.Attachment{
			{ID: "a", FileName: "photo.png", FileType: "image/png"},
			{ID: "b", FileName: "notes.pdf", FileType: "application/pdf"},
		},
	})
	assert.NoError(t, err)

	got, err := g.GetConversation(ctx, conv.ID)
	assert.NoError(t, err)
	assert.Equal(t, "📎 photo.png (+1)", got.LastMessage)
}

// 連結偵測在送出時預先算好
func TestGateway_SendMessage_DetectsLinks(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(failingStore{}, NewMemoryStore(), true, 0)

	conv := newPairConversation()
	assert.NoError(t, g.CreateConversation(ctx, conv))

	sent, err := g.SendMessage(ctx, &domain.Message{
		ConversationID: conv.ID,
		SenderID:       "user-1",
		ReceiverID:     "user-2",
		Message:        "see https://example.com/page for details",
	})
	assert.NoError(t, err)
	assert.True(t, sent.HasLinks)
}

// MarkRead 之後未讀數歸零，已讀旗標不可逆
func TestGateway_MarkReadResetsUnread(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(failingStore{}, NewMemoryStore(), true, 0)

	conv := newPairConversation()
	assert.NoError(t, g.CreateConversation(ctx, conv))

	for i := 0; i < 2; i++ {
		_, err := g.SendMessage(ctx, &domain.Message{
			ConversationID: conv.ID,
			SenderID:       "user-1",
			ReceiverID:     "user-2",
			Message:        "ping",
		})
		assert.NoError(t, err)
	}

	marked, err := g.MarkRead(ctx, conv.ID, "user-2")
	assert.NoError(t, err)
	assert.Equal(t, 2, marked)

	got, err := g.GetConversation(ctx, conv.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, got.UnreadCount)

	msgs, err := g.ListMessages(ctx, conv.ID)
	assert.NoError(t, err)
	for _, msg := range msgs {
		assert.True(t, msg.Read)
	}

	// 再標一次不會有新的
	marked, err = g.MarkRead(ctx, conv.ID, "user-2")
	assert.NoError(t, err)
	assert.Equal(t, 0, marked)
}
