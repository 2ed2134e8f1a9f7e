package repository

import (
	"context"
	"encoding/json"

	"school_messaging_service/internal/messaging/domain"

	"github.com/segmentio/kafka-go"
)

// ThumbnailQueue hands image attachments off to the worker that renders
// their thumbnail objects.
type ThumbnailQueue interface {
	Publish(ctx context.Context, job domain.ThumbnailJob) error
}

type kafkaThumbnailQueue struct {
	writer *kafka.Writer
}

// NewKafkaThumbnailQueue queue backed by the configured kafka topic
func NewKafkaThumbnailQueue(writer *kafka.Writer) ThumbnailQueue {
	return &kafkaThumbnailQueue{writer: writer}
}

func (q *kafkaThumbnailQueue) Publish(ctx context.Context, job domain.ThumbnailJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(job.AttachmentID),
		Value: data,
	})
}
