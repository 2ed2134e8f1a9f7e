package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"school_messaging_service/internal/messaging/app"
	"school_messaging_service/internal/messaging/repository"
	"school_messaging_service/internal/messaging/router"
	"school_messaging_service/pkg/config"
	"school_messaging_service/pkg/database"
	"school_messaging_service/pkg/logger"
	testtool "school_messaging_service/pkg/test_tool"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.MessagingService, config.EnvConfig.MessagingServiceLogPath)
	if config.IsLocal() {
		logger.Log.SetDebugMode(true)
	}
	cfg := config.LoadConfig[config.Messaging](config.EnvConfig.MessagingService, config.EnvConfig.MessagingServiceYAMLPath)
	testtool.StartPprof()

	ctx := context.Background()

	// 1. 建立 Mongo 連線 (對話 / 訊息)
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.Mongo.RetryCount,
			RetryInterval: time.Duration(cfg.Mongo.RetryInterval),
		},
		cfg.Mongo.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// 2. 建立 PostgreSQL 連線 (使用者目錄 + 附件 metadata)
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.PostgreSQL.Host, cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Database, cfg.PostgreSQL.Port)
	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    dsn,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s]", dsn)),
			zap.Error(err),
		)
	}
	defer pool.Close()

	gormDB, err := database.NewPGConnection(database.Connection{
		ConnectStr:    dsn,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to postgreSQL database(gorm) after retries", zap.Error(err))
	}

	attachmentRepo := repository.NewAttachmentRepo(gormDB)
	if err := attachmentRepo.AutoMigrate(); err != nil {
		logger.Log.Fatal("attachment table migrate failed", zap.Error(err))
	}

	// 3. 建立 MinIO 連線 (附件 blob)
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

	// 4. 建立 Kafka Writer (縮圖工作佇列)
	kafkaWriter, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic,
		RetryCount:    5,
		RetryInterval: 3,
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to kafka after retries", zap.Error(err))
	}
	defer kafkaWriter.Close()

	// 5. 初始化 Repository
	remote := repository.NewRemoteStore(mongo.Database, pool)
	mirror := repository.NewMemoryStore()
	gateway := repository.NewGateway(remote, mirror, cfg.RemoteEnabled, cfg.GatewayTimeout)

	// typing 狀態預設走 Redis，沒有 Redis 時退回記憶體
	var typingStore repository.TypingStore
	if cfg.Redis.Enabled {
		masterName, sentinel := config.GetRedisSetting()
		redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
		if err != nil {
			logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
		}
		typingStore = repository.NewRedisTypingStore(redisClient, cfg.TypingWindow)
	} else {
		typingStore = repository.NewMemoryTypingStore(cfg.TypingWindow)
	}

	thumbnailQueue := repository.NewKafkaThumbnailQueue(kafkaWriter)

	// 6. 初始化 UseCases
	directoryUC := app.NewDirectoryUseCase(gateway)
	reactionUC := app.NewReactionUseCase(gateway)
	attachmentUC := app.NewAttachmentUseCase(minioClient, thumbnailQueue, attachmentRepo, cfg.PresignExpiry)
	threads := app.NewThreadManager(gateway, typingStore, cfg.TypingWindow, cfg.TypingPollInterval)
	defer threads.Close(ctx)

	// 7. 啟動 Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.MessagingServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	// 注册路由
	router.RegisterRoutes(r, app.NewMessagingHandler(gateway, directoryUC, reactionUC, attachmentUC, threads))

	// Listen
	port := ":" + cfg.Port
	log.Printf("Messaging Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
