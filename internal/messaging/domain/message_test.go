package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 只有整個 token 是 URL 才算連結
func TestDetectLinks(t *testing.T) {
	assert.True(t, DetectLinks("see https://example.com"))
	assert.True(t, DetectLinks("HTTP://EXAMPLE.COM shouting"))
	assert.False(t, DetectLinks("plain text only"))
	assert.False(t, DetectLinks("not(https://example.com)embedded"))
	assert.False(t, DetectLinks("ftp://example.com wrong scheme"))
	assert.False(t, DetectLinks(""))
}

func TestLinkTokens(t *testing.T) {
	tokens := LinkTokens("check https://example.com/page now")

	assert.Len(t, tokens, 3)
	assert.False(t, tokens[0].Link)
	assert.True(t, tokens[1].Link)
	assert.Equal(t, "https://example.com/page", tokens[1].Text)
	assert.False(t, tokens[2].Link)
}

// 跨午夜的訊息分到兩個 day group
func TestGroupByDay(t *testing.T) {
	day1 := time.Date(2025, 3, 11, 23, 50, 0, 0, time.Local)
	day2 := time.Date(2025, 3, 12, 0, 5, 0, 0, time.Local)

	msgs := []Message{
		{ID: 1, Timestamp: day1},
		{ID: 2, Timestamp: day1.Add(5 * time.Minute)},
		{ID: 3, Timestamp: day2},
	}

	groups := GroupByDay(msgs)
	assert.Len(t, groups, 2)
	assert.Len(t, groups[0].Messages, 2)
	assert.Len(t, groups[1].Messages, 1)
	assert.Equal(t, int64(3), groups[1].Messages[0].ID)
}

func TestGroupByDay_Empty(t *testing.T) {
	assert.Empty(t, GroupByDay(nil))
}
