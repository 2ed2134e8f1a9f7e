package domain

import (
	"fmt"
	"time"
)

// Typing defaults from the reference behavior: entries expire after 2s of
// no keystroke, open threads poll once per second.
const (
	DefaultTypingWindow       = 2 * time.Second
	DefaultTypingPollInterval = time.Second
)

// TypingEntry ephemeral, never persisted. Keyed by (conversation, user),
// rewritten on every keystroke.
type TypingEntry struct {
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	LastUpdated    time.Time `json:"last_updated"`
}

// Expired entries past the inactivity window are excluded from reads
func (e TypingEntry) Expired(now time.Time, window time.Duration) bool {
	return now.Sub(e.LastUpdated) > window
}

// TypingIndicator render the "who is typing" label for a poll result
func TypingIndicator(entries []TypingEntry) string {
	switch len(entries) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("%s is typing…", entries[0].Name)
	default:
		return fmt.Sprintf("%d people are typing…", len(entries))
	}
}
