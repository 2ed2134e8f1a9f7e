package config

import "time"

// Messaging definition messaging_service YAML structure
type Messaging struct {
	Port string `mapstructure:"port"`

	Mongo      DatabaseConfig `mapstructure:"mongo"`
	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	Redis      RedisConfig    `mapstructure:"redis"`
	MinIO      MinIOConfig    `mapstructure:"minio"`
	Kafka      KafkaConfig    `mapstructure:"kafka"`

	// RemoteEnabled false 時只用本地鏡像（離線模式）
	RemoteEnabled  bool          `mapstructure:"remote_enabled"`
	GatewayTimeout time.Duration `mapstructure:"gateway_timeout"`

	TypingWindow       time.Duration `mapstructure:"typing_window"`
	TypingPollInterval time.Duration `mapstructure:"typing_poll_interval"`
	PresignExpiry      time.Duration `mapstructure:"presign_expiry"`
}

// ThumbnailWorker definition thumbnail_worker YAML structure
type ThumbnailWorker struct {
	MinIO  MinIOConfig `mapstructure:"minio"`
	Kafka  KafkaConfig `mapstructure:"kafka"`
	TmpDir string      `mapstructure:"tmp_dir"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int  `mapstructure:"redis_db"`
	Enabled bool `mapstructure:"enabled"`
}

// MinIOConfig definition minio setting
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// KafkaConfig definition kafka setting
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}
