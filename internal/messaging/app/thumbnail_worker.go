package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"school_messaging_service/internal/messaging/domain"
	"school_messaging_service/pkg/database"
	"school_messaging_service/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ThumbnailConsumer drains the thumbnail topic and renders a scaled
// preview object for every image attachment.
type ThumbnailConsumer struct {
	reader      *kafka.Reader
	minioClient *database.MinIOClient
	tmpDir      string
}

// NewThumbnailConsumer 建構 consumer 實例
func NewThumbnailConsumer(reader *kafka.Reader, minioClient *database.MinIOClient, tmpDir string) *ThumbnailConsumer {
	if tmpDir == "" {
		tmpDir = "./tmp"
	}
	return &ThumbnailConsumer{
		reader:      reader,
		minioClient: minioClient,
		tmpDir:      tmpDir,
	}
}

// StartConsumer consume until ctx is cancelled. Failed jobs are logged and
// skipped; the attachment keeps working without its thumbnail and the
// renderer falls back to the type icon.
func (c *ThumbnailConsumer) StartConsumer(ctx context.Context) {
	logger.Log.Info("thumbnail consumer started")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Log.Info("thumbnail consumer stopped")
				return
			}
			logger.Log.Errorf("thumbnail read error:", err)
			continue
		}

		var job domain.ThumbnailJob
		if err := json.Unmarshal(m.Value, &job); err != nil {
			logger.Log.Errorf("thumbnail job unmarshal failed:", err)
			continue
		}
		if !strings.HasPrefix(job.FileType, "image/") {
			continue
		}

		logger.Log.Info("thumbnail job received",
			zap.String("attachment_id", job.AttachmentID),
			zap.String("object", job.ObjectName),
		)
		if err := c.processThumbnailJob(ctx, job); err != nil {
			logger.Log.Errorf("thumbnail job failed:", err)
		}
	}
}

// processThumbnailJob:
// 1. 從 MinIO 下載原圖
// 2. ffmpeg 縮成 320px 寬的 JPEG
// 3. 上傳到 thumbnails/{attachmentID}.jpg
// 4. 清理本地暫存檔案
func (c *ThumbnailConsumer) processThumbnailJob(ctx context.Context, job domain.ThumbnailJob) error {
	if err := os.MkdirAll(c.tmpDir, 0755); err != nil {
		return fmt.Errorf("tmp dir: %w", err)
	}
	localInput := filepath.Join(c.tmpDir, job.AttachmentID+"_original")
	localOutput := filepath.Join(c.tmpDir, job.AttachmentID+"_thumb.jpg")
	defer func() {
		os.Remove(localInput)
		os.Remove(localOutput)
	}()

	if err := c.minioClient.DownloadFile(ctx, job.ObjectName, localInput); err != nil {
		return fmt.Errorf("download original: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", localInput,
		"-vf", "scale=320:-1",
		"-frames:v", "1",
		localOutput,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg scale failed: %v: %s", err, string(out))
	}

	if err := c.minioClient.UploadFile(ctx, job.ThumbnailKey, localOutput, "image/jpeg"); err != nil {
		return fmt.Errorf("upload thumbnail: %w", err)
	}

	logger.Log.Info("thumbnail rendered", zap.String("attachment_id", job.AttachmentID))
	return nil
}
