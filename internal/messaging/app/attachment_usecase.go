package app

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"time"

	"school_messaging_service/internal/messaging/domain"
	"school_messaging_service/internal/messaging/repository"
	errprocess "school_messaging_service/pkg/err"
	"school_messaging_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BlobStorage is the slice of the object store the attachment pipeline
// needs (implemented by the MinIO client).
type BlobStorage interface {
	UploadStream(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	PresignGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// AttachmentUseCase accepts raw file blobs, assigns stable ids, classifies
// MIME types and, for images, reserves a thumbnail object rendered
// asynchronously by the worker.
type AttachmentUseCase interface {
	Upload(ctx context.Context, user *domain.User, fileName, contentType string, reader io.Reader, size int64) (*domain.Attachment, error)
	Get(ctx context.Context, user *domain.User, id string) (*domain.Attachment, error)
}

type attachmentUseCase struct {
	storage       BlobStorage
	queue         repository.ThumbnailQueue
	meta          repository.AttachmentRepository
	presignExpiry time.Duration
}

// NewAttachmentUseCase init the attachment pipeline
func NewAttachmentUseCase(
	storage BlobStorage,
	queue repository.ThumbnailQueue,
	meta repository.AttachmentRepository,
	presignExpiry time.Duration,
) AttachmentUseCase {
	if presignExpiry <= 0 {
		presignExpiry = 24 * time.Hour
	}
	return &attachmentUseCase{
		storage:       storage,
		queue:         queue,
		meta:          meta,
		presignExpiry: presignExpiry,
	}
}

// Upload streams one blob into storage and returns the finished
// Attachment. Ids are never derived from the filename (filenames are not
// unique). Classification is synchronous; the thumbnail transfer is not.
func (uc *attachmentUseCase) Upload(ctx context.Context, user *domain.User, fileName, contentType string, reader io.Reader, size int64) (*domain.Attachment, error) {
	if !user.IsBound() {
		return nil, nil
	}
	if fileName == "" || reader == nil {
		return nil, domain.ErrValidation
	}

	fileType := classifyMIME(fileName, contentType)
	id := uuid.New().String()
	objectName := fmt.Sprintf("attachments/%s/%s", id, fileName)

	if err := uc.storage.UploadStream(ctx, objectName, reader, size, fileType); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("attachment upload failed: %v", err))
	}

	fileURL, err := uc.storage.PresignGetURL(ctx, objectName, uc.presignExpiry)
	if err != nil {
		return nil, errprocess.Set(fmt.Sprintf("attachment url failed: %v", err))
	}

	att := &domain.Attachment{
		ID:       id,
		FileName: fileName,
		FileType: fileType,
		FileSize: size,
		FileURL:  fileURL,
	}

	if att.IsImage() {
		thumbKey := fmt.Sprintf("thumbnails/%s.jpg", id)
		thumbURL, err := uc.storage.PresignGetURL(ctx, thumbKey, uc.presignExpiry)
		if err != nil {
			logger.Log.Warn("thumbnail url failed", zap.String("attachment_id", id), zap.Error(err))
		} else {
			att.ThumbnailURL = thumbURL
		}
		job := domain.ThumbnailJob{
			AttachmentID: id,
			ObjectName:   objectName,
			ThumbnailKey: thumbKey,
			FileType:     fileType,
		}
		if err := uc.queue.Publish(ctx, job); err != nil {
			// 縮圖排程失敗不影響上傳結果
			logger.Log.Warn("thumbnail job publish failed", zap.String("attachment_id", id), zap.Error(err))
		}
	}

	if err := uc.meta.Create(att); err != nil {
		logger.Log.Warn("attachment metadata persist failed", zap.String("attachment_id", id), zap.Error(err))
	}
	return att, nil
}

// Get stored metadata for one uploaded attachment
func (uc *attachmentUseCase) Get(ctx context.Context, user *domain.User, id string) (*domain.Attachment, error) {
	if !user.IsBound() {
		return nil, nil
	}
	if id == "" {
		return nil, domain.ErrValidation
	}
	return uc.meta.GetByID(id)
}

func classifyMIME(fileName, contentType string) string {
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	if byExt := mime.TypeByExtension(filepath.Ext(fileName)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}
