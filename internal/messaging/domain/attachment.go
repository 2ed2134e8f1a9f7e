package domain

import (
	"fmt"
	"strings"
)

// Attachment created by the attachment pipeline before the owning message
// exists; referenced, never mutated, once attached. ThumbnailURL is present
// only for image/* types.
type Attachment struct {
	ID           string `bson:"id" json:"id" gorm:"primaryKey"`
	FileName     string `bson:"file_name" json:"file_name"`
	FileType     string `bson:"file_type" json:"file_type"`
	FileSize     int64  `bson:"file_size" json:"file_size"`
	FileURL      string `bson:"file_url" json:"file_url"`
	ThumbnailURL string `bson:"thumbnail_url,omitempty" json:"thumbnail_url,omitempty"`
}

// IsImage image types additionally get a thumbnail reference
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.FileType, "image/")
}

// IconForType rendering fallback for non-image attachments, keyed by MIME
// substring.
func IconForType(fileType string) string {
	switch {
	case strings.Contains(fileType, "pdf"):
		return "pdf"
	case strings.Contains(fileType, "word"), strings.Contains(fileType, "document"):
		return "word"
	case strings.Contains(fileType, "sheet"), strings.Contains(fileType, "excel"):
		return "sheet"
	default:
		return "file"
	}
}

// AttachmentSummary denormalized lastMessage text for attachment-only sends
func AttachmentSummary(attachments []Attachment) string {
	if len(attachments) == 0 {
		return ""
	}
	if len(attachments) == 1 {
		return fmt.Sprintf("📎 %s", attachments[0].FileName)
	}
	return fmt.Sprintf("📎 %s (+%d)", attachments[0].FileName, len(attachments)-1)
}

// ThumbnailJob queued work for the thumbnail worker
type ThumbnailJob struct {
	AttachmentID string `json:"attachment_id"`
	ObjectName   string `json:"object_name"`
	ThumbnailKey string `json:"thumbnail_key"`
	FileType     string `json:"file_type"`
}
