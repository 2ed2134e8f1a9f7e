package domain

import (
	"regexp"
	"strings"
	"time"
)

// Message 一則訊息. Immutable once stored except Read and Reactions.
// IDs are assigned by the persistence gateway, monotonically increasing
// within the store. Sender/receiver names and roles are cached for display
// without a join.
type Message struct {
	ID             int64        `bson:"_id" json:"id"`
	ConversationID string       `bson:"conversation_id" json:"conversation_id"`
	SenderID       string       `bson:"sender_id" json:"sender_id"`
	ReceiverID     string       `bson:"receiver_id" json:"receiver_id"`
	SenderName     string       `bson:"sender_name" json:"sender_name"`
	ReceiverName   string       `bson:"receiver_name" json:"receiver_name"`
	SenderRole     string       `bson:"sender_role" json:"sender_role"`
	ReceiverRole   string       `bson:"receiver_role" json:"receiver_role"`
	Message        string       `bson:"message" json:"message"`
	Timestamp      time.Time    `bson:"timestamp" json:"timestamp"`
	Read           bool         `bson:"read" json:"read"`
	Attachments    []Attachment `bson:"attachments,omitempty" json:"attachments,omitempty"`
	Reactions      []Reaction   `bson:"reactions,omitempty" json:"reactions,omitempty"`
	HasLinks       bool         `bson:"has_links" json:"has_links"`
}

// tokens are classified as links only when the whole token is a URL
var urlPattern = regexp.MustCompile(`(?i)^https?://\S+$`)

// DetectLinks precompute the HasLinks flag at send time
func DetectLinks(body string) bool {
	for _, tok := range strings.Fields(body) {
		if urlPattern.MatchString(tok) {
			return true
		}
	}
	return false
}

// MessageToken one whitespace token of a rendered message body
type MessageToken struct {
	Text string `json:"text"`
	Link bool   `json:"link"`
}

// LinkTokens tokenize the body on whitespace; URL tokens render as
// hyperlinks, everything else as plain text joined by single spaces.
func LinkTokens(body string) []MessageToken {
	fields := strings.Fields(body)
	tokens := make([]MessageToken, 0, len(fields))
	for _, tok := range fields {
		tokens = append(tokens, MessageToken{
			Text: tok,
			Link: urlPattern.MatchString(tok),
		})
	}
	return tokens
}

// DayGroup messages of one calendar day, rendered under one divider
type DayGroup struct {
	Day      time.Time `json:"day"`
	Messages []Message `json:"messages"`
}

// GroupByDay split an ordered message list into day groups. A divider
// renders before the first message and before any message whose calendar
// day differs from the previous one.
func GroupByDay(messages []Message) []DayGroup {
	var groups []DayGroup
	for _, msg := range messages {
		if len(groups) == 0 || !SameCalendarDay(groups[len(groups)-1].Day, msg.Timestamp) {
			groups = append(groups, DayGroup{Day: msg.Timestamp})
		}
		last := &groups[len(groups)-1]
		last.Messages = append(last.Messages, msg)
	}
	return groups
}
