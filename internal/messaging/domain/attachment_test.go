package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachment_IsImage(t *testing.T) {
	assert.True(t, Attachment{FileType: "image/png"}.IsImage())
	assert.True(t, Attachment{FileType: "image/jpeg"}.IsImage())
	assert.False(t, Attachment{FileType: "application/pdf"}.IsImage())
	assert.False(t, Attachment{}.IsImage())
}

func TestIconForType(t *testing.T) {
	assert.Equal(t, "pdf", IconForType("application/pdf"))
	assert.Equal(t, "word", IconForType("application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
	assert.Equal(t, "sheet", IconForType("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	assert.Equal(t, "file", IconForType("text/plain"))
	assert.Equal(t, "file", IconForType(""))
}

func TestAttachmentSummary(t *testing.T) {
	assert.Equal(t, "", AttachmentSummary(nil))
	assert.Equal(t, "📎 photo.png", AttachmentSummary([]Attachment{{FileName: "photo.png"}}))
	assert.Equal(t, "📎 photo.png (+2)", AttachmentSummary([]Attachment{
		{FileName: "photo.png"},
		{FileName: "notes.pdf"},
		{FileName: "data.xlsx"},
	}))
}

func TestTypingIndicator(t *testing.T) {
	assert.Equal(t, "", TypingIndicator(nil))
	assert.Equal(t, "Bob is typing…", TypingIndicator([]TypingEntry{{Name: "Bob"}}))
	assert.Equal(t, "2 people are typing…", TypingIndicator([]TypingEntry{{Name: "Bob"}, {Name: "Eve"}}))
}
