package app

import (
	"context"
	"io"
	"time"

	"school_messaging_service/internal/messaging/domain"

	"github.com/stretchr/testify/mock"
)

// MockGatewayStore Mock repository.GatewayStore
type MockGatewayStore struct {
	mock.Mock
}

// ListConversationsForUser moke list conversations
func (m *MockGatewayStore) ListConversationsForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// GetConversation moke get conversation by id
func (m *MockGatewayStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// CreateConversation moke create conversation
func (m *MockGatewayStore) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	args := m.Called(ctx, conv)
	return args.Error(0)
}

// UpdateConversation moke update conversation
func (m *MockGatewayStore) UpdateConversation(ctx context.Context, conv *domain.Conversation) error {
	args := m.Called(ctx, conv)
	return args.Error(0)
}

// ListMessages moke list conversation messages
func (m *MockGatewayStore) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// GetMessage moke get message by id
func (m *MockGatewayStore) GetMessage(ctx context.Context, messageID int64) (*domain.Message, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// CreateMessage moke create message
func (m *MockGatewayStore) CreateMessage(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// UpdateMessage moke update message
func (m *MockGatewayStore) UpdateMessage(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MarkRead moke mark conversation read
func (m *MockGatewayStore) MarkRead(ctx context.Context, conversationID, readerID string) (int, error) {
	args := m.Called(ctx, conversationID, readerID)
	return args.Int(0), args.Error(1)
}

// ListUsers moke list directory users
func (m *MockGatewayStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// SendMessage moke gateway send
func (m *MockGatewayStore) SendMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTypingStore Mock repository.TypingStore
type MockTypingStore struct {
	mock.Mock
}

// Set moke typing set
func (m *MockTypingStore) Set(ctx context.Context, conversationID string, user domain.User, typing bool) error {
	args := m.Called(ctx, conversationID, user, typing)
	return args.Error(0)
}

// Active moke typing active read
func (m *MockTypingStore) Active(ctx context.Context, conversationID, excludeUserID string) ([]domain.TypingEntry, error) {
	args := m.Called(ctx, conversationID, excludeUserID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.TypingEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

// Clear moke typing clear
func (m *MockTypingStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockBlobStorage Mock BlobStorage
type MockBlobStorage struct {
	mock.Mock
}

// UploadStream moke blob upload
func (m *MockBlobStorage) UploadStream(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, objectName, reader, size, contentType)
	return args.Error(0)
}

// PresignGetURL moke presigned url
func (m *MockBlobStorage) PresignGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}

// MockThumbnailQueue Mock repository.ThumbnailQueue
type MockThumbnailQueue struct {
	mock.Mock
}

// Publish moke thumbnail job publish
func (m *MockThumbnailQueue) Publish(ctx context.Context, job domain.ThumbnailJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockAttachmentRepository Mock repository.AttachmentRepository
type MockAttachmentRepository struct {
	mock.Mock
}

// AutoMigrate moke migrate
func (m *MockAttachmentRepository) AutoMigrate() error {
	args := m.Called()
	return args.Error(0)
}

// Create moke create attachment metadata
func (m *MockAttachmentRepository) Create(att *domain.Attachment) error {
	args := m.Called(att)
	return args.Error(0)
}

// GetByID moke get attachment metadata
func (m *MockAttachmentRepository) GetByID(id string) (*domain.Attachment, error) {
	args := m.Called(id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Attachment), args.Error(1)
	}
	return nil, args.Error(1)
}
