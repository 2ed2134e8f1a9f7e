package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"school_messaging_service/internal/messaging/domain"
	"school_messaging_service/internal/messaging/repository"
	"school_messaging_service/pkg/logger"

	"go.uber.org/zap"
)

// ThreadController drives one user's open conversation: loading its
// messages, composing sends, the pending-attachment list and the typing
// exchange. States: idle (nothing selected) -> loading (Select in flight)
// -> ready (messages installed, typing poll running) and back.
//
// Loads are keyed by a generation counter so a late-arriving response for
// a previously selected conversation can never overwrite the current one.
type ThreadController struct {
	store  repository.GatewayStore
	typing repository.TypingStore
	user   domain.User

	typingWindow time.Duration
	pollInterval time.Duration

	mu             sync.Mutex
	loadSeq        uint64
	conversationID string
	conversation   *domain.Conversation
	messages       []domain.Message
	pending        []domain.Attachment
	typingEntries  []domain.TypingEntry
	typingTimer    *time.Timer
	pollCancel     context.CancelFunc
}

// NewThreadController bind a controller to one session user
func NewThreadController(
	store repository.GatewayStore,
	typing repository.TypingStore,
	user domain.User,
	typingWindow, pollInterval time.Duration,
) *ThreadController {
	if typingWindow <= 0 {
		typingWindow = domain.DefaultTypingWindow
	}
	if pollInterval <= 0 {
		pollInterval = domain.DefaultTypingPollInterval
	}
	return &ThreadController{
		store:        store,
		typing:       typing,
		user:         user,
		typingWindow: typingWindow,
		pollInterval: pollInterval,
	}
}

// Select open a conversation: fetch its messages, then mark the ones
// addressed to the current user as read. Concurrent selects race freely;
// only the newest generation may install its result.
func (c *ThreadController) Select(ctx context.Context, conversationID string) ([]domain.Message, error) {
	if !c.user.IsBound() || conversationID == "" {
		return nil, nil
	}

	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	if c.conversationID != conversationID {
		// queued attachments belong to the conversation they were staged in
		c.pending = nil
	}
	c.conversationID = conversationID
	c.conversation = nil
	c.messages = nil
	c.typingEntries = nil
	c.mu.Unlock()

	conv, convErr := c.store.GetConversation(ctx, conversationID)
	msgs, err := c.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if convErr != nil {
		// deleted conversation: keep the empty selectable state
		return nil, convErr
	}

	c.mu.Lock()
	if c.loadSeq != seq {
		c.mu.Unlock()
		return nil, nil // stale load, discard
	}
	c.conversation = conv
	c.messages = msgs
	c.mu.Unlock()

	if _, err := c.store.MarkRead(ctx, conversationID, c.user.ID); err != nil {
		logger.Log.Warn("mark read failed", zap.String("conversation_id", conversationID), zap.Error(err))
	}

	c.mu.Lock()
	if c.loadSeq == seq {
		for i := range c.messages {
			if c.messages[i].ReceiverID == c.user.ID {
				c.messages[i].Read = true
			}
		}
		msgs = append([]domain.Message(nil), c.messages...)
	}
	c.mu.Unlock()
	return msgs, nil
}

// Deselect back to idle: drop thread state, stop the poll and clear this
// user's typing entry.
func (c *ThreadController) Deselect(ctx context.Context) {
	c.mu.Lock()
	c.loadSeq++
	conversationID := c.conversationID
	c.conversationID = ""
	c.conversation = nil
	c.messages = nil
	c.pending = nil
	c.typingEntries = nil
	if c.typingTimer != nil {
		c.typingTimer.Stop()
		c.typingTimer = nil
	}
	if c.pollCancel != nil {
		c.pollCancel()
		c.pollCancel = nil
	}
	c.mu.Unlock()

	if conversationID != "" {
		if err := c.typing.Set(ctx, conversationID, c.user, false); err != nil {
			logger.Log.Warn("typing clear failed", zap.Error(err))
		}
	}
}

// Send composes a message from the given text plus the queued pending
// attachments. Rejected as a no-op when the trimmed text is empty and
// nothing is attached, or when no conversation or session is bound.
// Concurrent sends are independent requests; completions append in
// completion order.
func (c *ThreadController) Send(ctx context.Context, text string) (*domain.Message, error) {
	if !c.user.IsBound() {
		return nil, nil
	}

	c.mu.Lock()
	conversationID := c.conversationID
	conv := c.conversation
	attachments := append([]domain.Attachment(nil), c.pending...)
	c.mu.Unlock()

	if conversationID == "" || conv == nil {
		return nil, nil
	}
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		return nil, domain.ErrValidation
	}

	other := conv.OtherParticipant(c.user.ID)
	msg := &domain.Message{
		ConversationID: conversationID,
		SenderID:       c.user.ID,
		SenderName:     c.user.Name,
		SenderRole:     c.user.Role,
		ReceiverID:     other.UserID,
		ReceiverName:   other.Name,
		ReceiverRole:   other.Role,
		Message:        text,
		Attachments:    attachments,
	}
	sent, err := c.store.SendMessage(ctx, msg)
	if err != nil {
		return nil, err
	}

	c.stopTyping(ctx, conversationID)

	c.mu.Lock()
	c.pending = nil
	if c.conversationID == conversationID {
		c.messages = append(c.messages, *sent)
	}
	c.mu.Unlock()
	return sent, nil
}

// SetTyping keystroke contract: the first keystroke publishes the typing
// state, every keystroke resets the debounce timer, and the timer (or an
// emptied composer) clears it.
func (c *ThreadController) SetTyping(ctx context.Context, typing bool) error {
	if !c.user.IsBound() {
		return nil
	}
	c.mu.Lock()
	conversationID := c.conversationID
	c.mu.Unlock()
	if conversationID == "" {
		return nil
	}

	if !typing {
		c.stopTyping(ctx, conversationID)
		return nil
	}

	if err := c.typing.Set(ctx, conversationID, c.user, true); err != nil {
		return err
	}
	c.mu.Lock()
	if c.typingTimer != nil {
		c.typingTimer.Stop()
	}
	c.typingTimer = time.AfterFunc(c.typingWindow, func() {
		c.stopTyping(context.Background(), conversationID)
	})
	c.mu.Unlock()
	return nil
}

func (c *ThreadController) stopTyping(ctx context.Context, conversationID string) {
	c.mu.Lock()
	if c.typingTimer != nil {
		c.typingTimer.Stop()
		c.typingTimer = nil
	}
	c.mu.Unlock()
	if err := c.typing.Set(ctx, conversationID, c.user, false); err != nil {
		logger.Log.Warn("typing clear failed", zap.Error(err))
	}
}

// StartTypingPoll periodic read of who else is typing in the open
// conversation. Stops when the conversation closes or changes, or when
// ctx is cancelled.
func (c *ThreadController) StartTypingPoll(ctx context.Context) {
	c.mu.Lock()
	if c.pollCancel != nil {
		c.pollCancel()
		c.pollCancel = nil
	}
	conversationID := c.conversationID
	if conversationID == "" {
		c.mu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	c.pollCancel = cancel
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				entries, err := c.typing.Active(pollCtx, conversationID, c.user.ID)
				if err != nil {
					logger.Log.Warn("typing poll failed", zap.Error(err))
					continue
				}
				c.mu.Lock()
				if c.conversationID == conversationID {
					c.typingEntries = entries
				}
				c.mu.Unlock()
			case <-pollCtx.Done():
				return
			}
		}
	}()
}

// PollTypingOnce synchronous poll read, used by the HTTP polling endpoint
func (c *ThreadController) PollTypingOnce(ctx context.Context, conversationID string) ([]domain.TypingEntry, error) {
	if !c.user.IsBound() || conversationID == "" {
		return nil, nil
	}
	entries, err := c.typing.Active(ctx, conversationID, c.user.ID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.conversationID == conversationID {
		c.typingEntries = entries
	}
	c.mu.Unlock()
	return entries, nil
}

// AddPendingAttachment append one uploaded attachment in submission order
func (c *ThreadController) AddPendingAttachment(att domain.Attachment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, att)
}

// RemovePendingAttachment drop a queued attachment before it is sent
func (c *ThreadController) RemovePendingAttachment(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, att := range c.pending {
		if att.ID == id {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return true
		}
	}
	return false
}

// PendingAttachments snapshot of the composer queue
func (c *ThreadController) PendingAttachments() []domain.Attachment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Attachment(nil), c.pending...)
}

// Messages snapshot of the open thread
func (c *ThreadController) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Message(nil), c.messages...)
}

// Conversation the currently open conversation, nil when idle
func (c *ThreadController) Conversation() *domain.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conversation == nil {
		return nil
	}
	copied := *c.conversation
	return &copied
}

// DayGroups the open thread split at calendar-day boundaries
func (c *ThreadController) DayGroups() []domain.DayGroup {
	c.mu.Lock()
	msgs := append([]domain.Message(nil), c.messages...)
	c.mu.Unlock()
	return domain.GroupByDay(msgs)
}

// TypingIndicator label from the latest poll result
func (c *ThreadController) TypingIndicator() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.TypingIndicator(c.typingEntries)
}

// ReplaceMessage swap the cached copy after a reaction toggle
func (c *ThreadController) ReplaceMessage(msg *domain.Message) {
	if msg == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.messages {
		if c.messages[i].ID == msg.ID {
			c.messages[i] = *msg
			return
		}
	}
}

// ThreadManager one controller per session user
type ThreadManager struct {
	store  repository.GatewayStore
	typing repository.TypingStore

	typingWindow time.Duration
	pollInterval time.Duration

	mu          sync.Mutex
	controllers map[string]*ThreadController
}

// NewThreadManager init the per-user controller registry
func NewThreadManager(
	store repository.GatewayStore,
	typing repository.TypingStore,
	typingWindow, pollInterval time.Duration,
) *ThreadManager {
	return &ThreadManager{
		store:        store,
		typing:       typing,
		typingWindow: typingWindow,
		pollInterval: pollInterval,
		controllers:  make(map[string]*ThreadController),
	}
}

// Get the controller bound to user, created on first use. Nil when no
// session is bound.
func (m *ThreadManager) Get(user *domain.User) *ThreadController {
	if !user.IsBound() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.controllers[user.ID]; ok {
		return c
	}
	c := NewThreadController(m.store, m.typing, *user, m.typingWindow, m.pollInterval)
	m.controllers[user.ID] = c
	return c
}

// Logout drop the user's controller and its ephemeral state
func (m *ThreadManager) Logout(ctx context.Context, userID string) {
	m.mu.Lock()
	c, ok := m.controllers[userID]
	delete(m.controllers, userID)
	m.mu.Unlock()
	if ok {
		c.Deselect(ctx)
	}
}

// Close clear every controller and the shared typing state
func (m *ThreadManager) Close(ctx context.Context) {
	m.mu.Lock()
	controllers := make([]*ThreadController, 0, len(m.controllers))
	for _, c := range m.controllers {
		controllers = append(controllers, c)
	}
	m.controllers = make(map[string]*ThreadController)
	m.mu.Unlock()
	for _, c := range controllers {
		c.Deselect(ctx)
	}
	if err := m.typing.Clear(ctx); err != nil {
		logger.Log.Warn("typing store clear failed", zap.Error(err))
	}
}
