package domain

import "time"

// Participant one side of a conversation
type Participant struct {
	UserID string `bson:"user_id" json:"user_id"`
	Name   string `bson:"name" json:"name"`
	Role   string `bson:"role" json:"role"`
}

// Conversation definition a 1-on-1 thread. Participants are exactly two
// and immutable after creation; LastMessage/LastMessageTimestamp are the
// denormalized summary the directory listing reads.
type Conversation struct {
	ID                   string        `bson:"_id,omitempty" json:"id"`
	Participants         []Participant `bson:"participants" json:"participants"`
	LastMessage          string        `bson:"last_message" json:"last_message"`
	LastMessageTimestamp time.Time     `bson:"last_message_timestamp" json:"last_message_timestamp"`
	UnreadCount          int           `bson:"unread_count" json:"unread_count"`
	CreatedAt            time.Time     `bson:"created_at,omitempty" json:"created_at"`
}

// HasParticipant check userID is one of the two participants
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// OtherParticipant resolve the participant that is not userID
func (c *Conversation) OtherParticipant(userID string) Participant {
	for _, p := range c.Participants {
		if p.UserID != userID {
			return p
		}
	}
	return Participant{}
}

// FormatRecency render the directory recency label:
// same calendar day HH:mm, one day prior "Yesterday", within 7 days the
// weekday abbreviation, older DD/MM/YYYY.
func FormatRecency(ts, now time.Time) string {
	days := calendarDaysBetween(ts, now)
	switch {
	case days <= 0:
		return ts.Format("15:04")
	case days == 1:
		return "Yesterday"
	case days < 7:
		return ts.Format("Mon")
	default:
		return ts.Format("02/01/2006")
	}
}

// SameCalendarDay compare calendar dates, not 24h windows
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func calendarDaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
