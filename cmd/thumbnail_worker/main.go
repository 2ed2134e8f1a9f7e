package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"school_messaging_service/internal/messaging/app"
	"school_messaging_service/pkg/config"
	"school_messaging_service/pkg/database"
	"school_messaging_service/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ThumbnailWorker, config.EnvConfig.ThumbnailWorkerLogPath)
	cfg := config.LoadConfig[config.ThumbnailWorker](config.EnvConfig.ThumbnailWorker, config.EnvConfig.ThumbnailWorkerYAMLPath)

	// 1. 初始化 MinIO 客戶端
	minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:   cfg.MinIO.Endpoint,
		User:       cfg.MinIO.AccessKey,
		Password:   cfg.MinIO.SecretKey,
		BucketName: cfg.MinIO.Bucket,
		UseSSL:     cfg.MinIO.UseSSL,

		RetryCount:    3,
		RetryInterval: 3,
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to minIO after retries", zap.Error(err))
	}

	// 2. 建立 Kafka Reader (縮圖工作佇列)
	reader := database.NewKafkaReader(database.KafkaConnection{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// SIGINT/SIGTERM 優雅關閉
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Log.Info("shutdown signal received")
		cancel()
	}()

	consumer := app.NewThumbnailConsumer(reader, minioClient, cfg.TmpDir)
	consumer.StartConsumer(ctx)
}
