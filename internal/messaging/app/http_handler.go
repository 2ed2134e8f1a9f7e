package app

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"school_messaging_service/internal/messaging/domain"
	"school_messaging_service/internal/messaging/repository"
	"school_messaging_service/pkg"
	"school_messaging_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// MessagingHandler REST surface of the messaging core. Freshness is
// client-initiated polling; there is no socket path.
type MessagingHandler struct {
	store       repository.GatewayStore
	directory   DirectoryUseCase
	reactions   ReactionUseCase
	attachments AttachmentUseCase
	threads     *ThreadManager
}

// NewMessagingHandler create MessagingHandler
func NewMessagingHandler(
	store repository.GatewayStore,
	directory DirectoryUseCase,
	reactions ReactionUseCase,
	attachments AttachmentUseCase,
	threads *ThreadManager,
) *MessagingHandler {
	return &MessagingHandler{
		store:       store,
		directory:   directory,
		reactions:   reactions,
		attachments: attachments,
		threads:     threads,
	}
}

func (h *MessagingHandler) currentUser(c *fiber.Ctx) *domain.User {
	id, _ := c.Locals(middlewares.TokenUserID).(string)
	name, _ := c.Locals(middlewares.TokenUserName).(string)
	role, _ := c.Locals(middlewares.TokenRole).(string)
	if id == "" {
		return nil
	}
	return &domain.User{ID: id, Name: name, Role: role}
}

// conversationView directory listing entry with display fields resolved
type conversationView struct {
	domain.Conversation
	Other   domain.Participant `json:"other_participant"`
	Recency string             `json:"recency"`
}

// ListConversations GET /conversations
func (h *MessagingHandler) ListConversations(c *fiber.Ctx) error {
	user := h.currentUser(c)
	if user == nil {
		return c.SendStatus(http.StatusUnauthorized)
	}
	convs, err := h.directory.ListForUser(c.Context(), user)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "could not list conversations"})
	}
	now := time.Now()
	views := make([]conversationView, 0, len(convs))
	for _, conv := range convs {
		views = append(views, conversationView{
			Conversation: conv,
			Other:        conv.OtherParticipant(user.ID),
			Recency:      domain.FormatRecency(conv.LastMessageTimestamp, now),
		})
	}
	return c.JSON(fiber.Map{"conversations": views})
}

type createConversationReq struct {
	OtherUserID string `json:"other_user_id"`
	OtherName   string `json:"other_name"`
	OtherRole   string `json:"other_role"`
}

// CreateConversation POST /conversations (find-or-create, never a duplicate pair)
func (h *MessagingHandler) CreateConversation(c *fiber.Ctx) error {
	user := h.currentUser(c)
	if user == nil {
		return c.SendStatus(http.StatusUnauthorized)
	}
	var req createConversationReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if req.OtherRole != "" && !pkg.Contains([]string{domain.RoleStudent, domain.RoleTeacher, domain.RoleAdmin}, req.OtherRole) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "unknown role"})
	}
	conv, err := h.directory.FindOrCreate(c.Context(), user, req.OtherUserID, req.OtherName, req.OtherRole)
	if errors.Is(err, domain.ErrValidation) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid participant"})
	}
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "could not create conversation"})
	}
	return c.JSON(conv)
}

// GetThread GET /conversations/:id/messages — selects the conversation,
// marks messages addressed to the caller as read and returns the thread.
func (h *MessagingHandler) GetThread(c *fiber.Ctx) error {
	user := h.currentUser(c)
	if user == nil {
		return c.SendStatus(http.StatusUnauthorized)
	}
	ctrl := h.threads.Get(user)
	msgs, err := ctrl.Select(c.Context(), c.Params("id"))
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "conversation not found"})
	}
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "could not load messages"})
	}
	return c.JSON(fiber.Map{
		"conversation": ctrl.Conversation(),
		"messages":     msgs,
		"day_groups":   domain.GroupByDay(msgs),
	})
}

type sendMessageReq struct {
	Message string `json:"message"`
}

// SendMessage POST /conversations/:id/messages
func (h *MessagingHandler) SendMessage(c *fiber.Ctx) error {
	user := h.currentUser(c)
	if user == nil {
		return c.SendStatus(http.StatusUnauthorized)
	}
	var req sendMessageReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	ctrl := h.threads.Get(user)
	if conv := ctrl.Conversation(); conv == nil || conv.ID != c.Params("id") {
		if _, err := ctrl.Select(c.Context(), c.Params("id")); errors.Is(err, domain.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "conversation not found"})
		}
	}
	msg, err := ctrl.Send(c.Context(), req.Message)
	if errors.Is(err, domain.ErrValidation) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty message"})
	}
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "send failed"})
	}
	if msg == nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "no conversation selected"})
	}
	resp := fiber.Map{"message": msg}
	if msg.HasLinks {
		resp["tokens"] = domain.LinkTokens(msg.Message)
	}
	return c.JSON(resp)
}

// Deselect DELETE /conversations/current
func (h *MessagingHandler) Deselect(c *fiber.Ctx) error {
	user := h.currentUser(c)
	if user == nil {
		return c.SendStatus(http.StatusUnauthorized)
	}
	h.threads.Get(user).Deselect(c.Context())
	return c.JSON(fiber.Map{"msg": "deselected"})
}

type toggleReactionReq struct {
	Emoji string `json:"emoji"`
}

// ToggleReaction POST /messages/:id/reactions
func (h *MessagingHandler) ToggleReaction(c *fiber.Ctx) error {
	user := h.currentUser(c)
	if user == nil {
		return c.SendStatus(http.StatusUnauthorized)
	}
	messageID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid message id"})
	}
	var req toggleReactionReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	msg, err := h.reactions.Toggle(c.Context(), user, messageID, req.Emoji)
	if errors.Is(err, domain.ErrValidation) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "missing emoji"})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "message not found"})
	}
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "toggle failed"})
	}
	h.threads.Get(user).ReplaceMessage(msg)
	return c.JSON(fiber.Map{
		"message": msg,
		"groups":  domain.AggregateReactions(msg.Reactions, user.ID),
	})
}

// UploadAttachments POST /attachments — multiple files upload
// independently and queue onto the composer in submission order.
func (h *MessagingHandler) UploadAttachments(c *fiber.Ctx) error {
	user := h.currentUser(c)
	if user == nil {
		return c.SendStatus(http.StatusUnauthorized)
	}
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "no files"})
	}
	ctrl := h.threads.Get(user)
	uploaded := make([]domain.Attachment, 0, len(form.File["files"]))
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "unreadable file: " + fh.Filename})
		}
		att, err := h.attachments.Upload(c.Context(), user, fh.Filename, fh.Header.Get("Content-Type"), f, fh.Size)
		f.Close()
		if errors.Is(err, domain.ErrValidation) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid file: " + fh.Filename})
		}
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "upload failed: " + fh.Filename})
		}
		ctrl.AddPendingAttachment(*att)
		uploaded = append(uploaded, *att)
	}
	return c.JSON(fiber.Map{
		"attachments": uploaded,
		"pending":     ctrl.PendingAttachments(),
	})
}

// GetAttachment GET /attachments/:id — stored metadata for one attachment
func (h *MessagingHandler) GetAttachment(c *fiber.Ctx) error {
	user := h.currentUser(c)
	if user == nil {
		return c.SendStatus(http.StatusUnauthorized)
	}
	att, err := h.attachments.Get(c.Context(), user, c.Params("id"))
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "attachment not found"})
	}
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "could not load attachment"})
	}
	return c.JSON(att)
}

// RemoveAttachment DELETE /attachments/:id — drop a queued attachment
func (h *MessagingHandler) RemoveAttachment(c *fiber.Ctx) error {
	user := h.currentUser(c)
	if user == nil {
		return c.SendStatus(http.StatusUnauthorized)
	}
	ctrl := h.threads.Get(user)
	if !ctrl.RemovePendingAttachment(c.Params("id")) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "attachment not pending"})
	}
	return c.JSON(fiber.Map{"pending": ctrl.PendingAttachments()})
}

type setTypingReq struct {
	Typing bool `json:"typing"`
}

// SetTyping PUT /typing — keystroke/debounce contract
func (h *MessagingHandler) SetTyping(c *fiber.Ctx) error {
	user := h.currentUser(c)
	if user == nil {
		return c.SendStatus(http.StatusUnauthorized)
	}
	var req setTypingReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.threads.Get(user).SetTyping(c.Context(), req.Typing); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "typing update failed"})
	}
	return c.JSON(fiber.Map{"msg": "ok"})
}

// GetTyping GET /conversations/:id/typing — the 1s poll read
func (h *MessagingHandler) GetTyping(c *fiber.Ctx) error {
	user := h.currentUser(c)
	if user == nil {
		return c.SendStatus(http.StatusUnauthorized)
	}
	entries, err := h.threads.Get(user).PollTypingOnce(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "typing read failed"})
	}
	return c.JSON(fiber.Map{
		"typing":    entries,
		"indicator": domain.TypingIndicator(entries),
	})
}

// ListUsers GET /users — directory of possible conversation partners
func (h *MessagingHandler) ListUsers(c *fiber.Ctx) error {
	user := h.currentUser(c)
	if user == nil {
		return c.SendStatus(http.StatusUnauthorized)
	}
	users, err := h.store.ListUsers(c.Context())
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "could not list users"})
	}
	return c.JSON(fiber.Map{"users": users})
}

// Logout POST /logout — drops the thread controller and ephemeral state
func (h *MessagingHandler) Logout(c *fiber.Ctx) error {
	user := h.currentUser(c)
	if user == nil {
		return c.SendStatus(http.StatusUnauthorized)
	}
	h.threads.Logout(c.Context(), user.ID)
	return c.JSON(fiber.Map{"msg": "logout success"})
}
