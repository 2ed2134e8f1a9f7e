package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// recency 標籤看日曆日，不是 24 小時窗
func TestFormatRecency(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.Local)

	// 同一天：時刻
	assert.Equal(t, "08:15", FormatRecency(time.Date(2025, 3, 12, 8, 15, 0, 0, time.Local), now))

	// 昨天 23:59 離現在不到 10 小時，但已跨日
	assert.Equal(t, "Yesterday", FormatRecency(time.Date(2025, 3, 11, 23, 59, 0, 0, time.Local), now))

	// 一週內：星期縮寫
	assert.Equal(t, "Sun", FormatRecency(time.Date(2025, 3, 9, 12, 0, 0, 0, time.Local), now))
	assert.Equal(t, "Thu", FormatRecency(time.Date(2025, 3, 6, 12, 0, 0, 0, time.Local), now))

	// 剛好 7 天：完整日期
	assert.Equal(t, "05/03/2025", FormatRecency(time.Date(2025, 3, 5, 12, 0, 0, 0, time.Local), now))
	assert.Equal(t, "20/11/2024", FormatRecency(time.Date(2024, 11, 20, 12, 0, 0, 0, time.Local), now))
}

func TestSameCalendarDay(t *testing.T) {
	a := time.Date(2025, 3, 11, 23, 59, 59, 0, time.Local)
	b := time.Date(2025, 3, 12, 0, 0, 1, 0, time.Local)
	assert.False(t, SameCalendarDay(a, b))
	assert.True(t, SameCalendarDay(b, b.Add(5*time.Hour)))
}

func TestConversation_Participants(t *testing.T) {
	conv := Conversation{Participants: []Participant{
		{UserID: "user-1", Name: "Amy"},
		{UserID: "user-2", Name: "Bob"},
	}}

	assert.True(t, conv.HasParticipant("user-1"))
	assert.False(t, conv.HasParticipant("user-3"))
	assert.Equal(t, "Bob", conv.OtherParticipant("user-1").Name)
	assert.Equal(t, "Amy", conv.OtherParticipant("user-2").Name)
}
