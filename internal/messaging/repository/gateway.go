package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"school_messaging_service/internal/messaging/domain"
	"school_messaging_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gateway is the dual-path persistence decorator. Every operation is tried
// against the remote store first and transparently falls back to the
// in-process mirror when the remote call fails, times out or is disabled.
// No operation raises a remote failure to its caller; only ErrNotFound
// (entity absent even in the mirror) surfaces.
type Gateway struct {
	remote        Store
	mirror        *MemoryStore
	remoteEnabled bool
	timeout       time.Duration
	now           func() time.Time
}

// NewGateway wrap the remote backend with the mirror fallback. timeout
// bounds every remote call; expiry is treated as remote-unavailable.
func NewGateway(remote Store, mirror *MemoryStore, remoteEnabled bool, timeout time.Duration) *Gateway {
	return &Gateway{
		remote:        remote,
		mirror:        mirror,
		remoteEnabled: remoteEnabled,
		timeout:       timeout,
		now:           time.Now,
	}
}

func (g *Gateway) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *Gateway) fallback(op string, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		err = domain.ErrRemoteUnavailable
	}
	logger.Log.Warn("remote store unavailable, using mirror",
		zap.String("op", op),
		zap.Error(err),
	)
}

func (g *Gateway) ListConversationsForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	if g.remoteEnabled {
		rctx, cancel := g.callCtx(ctx)
		convs, err := g.remote.ListConversationsForUser(rctx, userID)
		cancel()
		if err == nil {
			g.mirror.SyncConversations(convs)
			return convs, nil
		}
		g.fallback("list_conversations", err)
	}
	return g.mirror.ListConversationsForUser(ctx, userID)
}

func (g *Gateway) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	if g.remoteEnabled {
		rctx, cancel := g.callCtx(ctx)
		conv, err := g.remote.GetConversation(rctx, id)
		cancel()
		if err == nil {
			g.mirror.SyncConversations([]domain.Conversation{*conv})
			return conv, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			g.fallback("get_conversation", err)
		}
	}
	return g.mirror.GetConversation(ctx, id)
}

// CreateConversation assigns a fresh id unconditionally; participant-set
// dedup is the conversation directory's responsibility, not the gateway's.
func (g *Gateway) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	conv.ID = uuid.New().String()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = g.now()
	}
	if g.remoteEnabled {
		rctx, cancel := g.callCtx(ctx)
		err := g.remote.CreateConversation(rctx, conv)
		cancel()
		if err != nil {
			g.fallback("create_conversation", err)
		}
	}
	return g.mirror.CreateConversation(ctx, conv)
}

func (g *Gateway) UpdateConversation(ctx context.Context, conv *domain.Conversation) error {
	if g.remoteEnabled {
		rctx, cancel := g.callCtx(ctx)
		err := g.remote.UpdateConversation(rctx, conv)
		cancel()
		if err != nil {
			g.fallback("update_conversation", err)
		}
	}
	if err := g.mirror.UpdateConversation(ctx, conv); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (g *Gateway) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	if g.remoteEnabled {
		rctx, cancel := g.callCtx(ctx)
		msgs, err := g.remote.ListMessages(rctx, conversationID)
		cancel()
		if err == nil {
			g.mirror.SyncMessages(conversationID, msgs)
			return msgs, nil
		}
		g.fallback("list_messages", err)
	}
	return g.mirror.ListMessages(ctx, conversationID)
}

func (g *Gateway) GetMessage(ctx context.Context, messageID int64) (*domain.Message, error) {
	if g.remoteEnabled {
		rctx, cancel := g.callCtx(ctx)
		msg, err := g.remote.GetMessage(rctx, messageID)
		cancel()
		if err == nil {
			g.mirror.SyncMessage(msg)
			return msg, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			g.fallback("get_message", err)
		}
	}
	return g.mirror.GetMessage(ctx, messageID)
}

func (g *Gateway) CreateMessage(ctx context.Context, msg *domain.Message) error {
	if g.remoteEnabled {
		rctx, cancel := g.callCtx(ctx)
		err := g.remote.CreateMessage(rctx, msg)
		cancel()
		if err != nil {
			g.fallback("create_message", err)
		}
	}
	// replayed into the mirror either way; a remote-assigned id is kept
	return g.mirror.CreateMessage(ctx, msg)
}

func (g *Gateway) UpdateMessage(ctx context.Context, msg *domain.Message) error {
	if g.remoteEnabled {
		rctx, cancel := g.callCtx(ctx)
		err := g.remote.UpdateMessage(rctx, msg)
		cancel()
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			g.fallback("update_message", err)
		}
	}
	if err := g.mirror.UpdateMessage(ctx, msg); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (g *Gateway) MarkRead(ctx context.Context, conversationID, readerID string) (int, error) {
	marked := 0
	if g.remoteEnabled {
		rctx, cancel := g.callCtx(ctx)
		n, err := g.remote.MarkRead(rctx, conversationID, readerID)
		cancel()
		if err != nil {
			g.fallback("mark_read", err)
		} else {
			marked = n
		}
	}
	n, err := g.mirror.MarkRead(ctx, conversationID, readerID)
	if err != nil {
		return marked, err
	}
	if n > marked {
		marked = n
	}
	return marked, nil
}

func (g *Gateway) ListUsers(ctx context.Context) ([]domain.User, error) {
	if g.remoteEnabled {
		rctx, cancel := g.callCtx(ctx)
		users, err := g.remote.ListUsers(rctx)
		cancel()
		if err == nil {
			g.mirror.SyncUsers(users)
			return users, nil
		}
		g.fallback("list_users", err)
	}
	return g.mirror.ListUsers(ctx)
}

// SendMessage orchestrates the two dependent writes of a send: append the
// message, then refresh the owning conversation's denormalized summary.
// The timestamp is stamped here (the client value is advisory only) and
// HasLinks is precomputed from the body. Both writes are attempted even if
// the first only landed in the mirror; a failed summary update is logged
// and swallowed, the message itself is already delivered.
func (g *Gateway) SendMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if strings.TrimSpace(msg.Message) == "" && len(msg.Attachments) == 0 {
		return nil, domain.ErrValidation
	}
	msg.Timestamp = g.now()
	msg.Read = false
	msg.HasLinks = domain.DetectLinks(msg.Message)

	if err := g.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	conv, err := g.GetConversation(ctx, msg.ConversationID)
	if err != nil {
		logger.Log.Warn("message stored but conversation summary not updated",
			zap.String("conversation_id", msg.ConversationID),
			zap.Int64("message_id", msg.ID),
			zap.Error(err),
		)
		return msg, nil
	}
	summary := strings.TrimSpace(msg.Message)
	if summary == "" {
		summary = domain.AttachmentSummary(msg.Attachments)
	}
	conv.LastMessage = summary
	conv.LastMessageTimestamp = msg.Timestamp
	conv.UnreadCount++
	if err := g.UpdateConversation(ctx, conv); err != nil {
		logger.Log.Warn("conversation summary update failed",
			zap.String("conversation_id", conv.ID),
			zap.Error(err),
		)
	}
	return msg, nil
}
