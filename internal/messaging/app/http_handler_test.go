package app

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"school_messaging_service/internal/messaging/domain"
	"school_messaging_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// 測試用 fiber app：跳過 JWT，直接塞 locals
func newTestApp(store *MockGatewayStore, typing *MockTypingStore, user *domain.User) *fiber.App {
	threads := NewThreadManager(store, typing, 0, 0)
	h := NewMessagingHandler(
		store,
		NewDirectoryUseCase(store),
		NewReactionUseCase(store),
		NewAttachmentUseCase(new(MockBlobStorage), new(MockThumbnailQueue), new(MockAttachmentRepository), time.Hour),
		threads,
	)

	r := fiber.New()
	r.Use(func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals(middlewares.TokenUserID, user.ID)
			c.Locals(middlewares.TokenUserName, user.Name)
			c.Locals(middlewares.TokenRole, user.Role)
		}
		return c.Next()
	})

	r.Get("/conversations", h.ListConversations)
	r.Post("/conversations", h.CreateConversation)
	r.Get("/conversations/:id/messages", h.GetThread)
	r.Post("/messages/:id/reactions", h.ToggleReaction)
	r.Get("/users", h.ListUsers)
	return r
}

func doJSON(t *testing.T, r *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		assert.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := r.Test(req, -1)
	assert.NoError(t, err)

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func TestHandler_ListConversations(t *testing.T) {
	store := new(MockGatewayStore)
	typing := new(MockTypingStore)
	user := &domain.User{ID: "user-1", Name: "Amy", Role: domain.RoleTeacher}

	store.On("ListConversationsForUser", mock.Anything, "user-1").Return([]domain.Conversation{
		{
			ID: "conv-1",
			Participants: []domain.Participant{
				{UserID: "user-1", Name: "Amy"},
				{UserID: "user-2", Name: "Bob"},
			},
			LastMessage:          "hello",
			LastMessageTimestamp: time.Now(),
		},
	}, nil)

	r := newTestApp(store, typing, user)
	resp, body := doJSON(t, r, http.MethodGet, "/conversations", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	convs := body["conversations"].([]any)
	assert.Len(t, convs, 1)
	first := convs[0].(map[string]any)
	assert.Equal(t, "Bob", first["other_participant"].(map[string]any)["name"])
	assert.NotEmpty(t, first["recency"])
}

func TestHandler_Unauthorized(t *testing.T) {
	r := newTestApp(new(MockGatewayStore), new(MockTypingStore), nil)
	resp, _ := doJSON(t, r, http.MethodGet, "/conversations", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_CreateConversation_BadRole(t *testing.T) {
	r := newTestApp(new(MockGatewayStore), new(MockTypingStore), &domain.User{ID: "user-1"})
	resp, _ := doJSON(t, r, http.MethodPost, "/conversations", map[string]string{
		"other_user_id": "user-2",
		"other_name":    "Bob",
		"other_role":    "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_GetThread_NotFound(t *testing.T) {
	store := new(MockGatewayStore)
	store.On("GetConversation", mock.Anything, "missing").Return(nil, domain.ErrNotFound)
	store.On("ListMessages", mock.Anything, "missing").Return([]domain.Message{}, nil)

	r := newTestApp(store, new(MockTypingStore), &domain.User{ID: "user-1", Name: "Amy"})
	resp, _ := doJSON(t, r, http.MethodGet, "/conversations/missing/messages", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_ToggleReaction(t *testing.T) {
	store := new(MockGatewayStore)
	msg := &domain.Message{ID: 5, Message: "hi"}
	store.On("GetMessage", mock.Anything, int64(5)).Return(msg, nil)
	store.On("UpdateMessage", mock.Anything, mock.Anything).Return(nil)

	r := newTestApp(store, new(MockTypingStore), &domain.User{ID: "user-1", Name: "Amy"})
	resp, body := doJSON(t, r, http.MethodPost, "/messages/5/reactions", map[string]string{"emoji": "👍"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	groups := body["groups"].([]any)
	assert.Len(t, groups, 1)
	group := groups[0].(map[string]any)
	assert.Equal(t, "👍", group["emoji"])
	assert.Equal(t, true, group["mine"])
}

func TestHandler_ToggleReaction_BadID(t *testing.T) {
	r := newTestApp(new(MockGatewayStore), new(MockTypingStore), &domain.User{ID: "user-1"})
	resp, _ := doJSON(t, r, http.MethodPost, "/messages/abc/reactions", map[string]string{"emoji": "👍"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_ListUsers(t *testing.T) {
	store := new(MockGatewayStore)
	store.On("ListUsers", mock.Anything).Return([]domain.User{
		{ID: "user-2", Name: "Bob", Role: domain.RoleStudent},
	}, nil)

	r := newTestApp(store, new(MockTypingStore), &domain.User{ID: "user-1"})
	resp, body := doJSON(t, r, http.MethodGet, "/users", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["users"].([]any), 1)
}
