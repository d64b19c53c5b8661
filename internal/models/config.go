package models

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v2"
)

// Config carries every identifier the pipeline needs. Values come from
// config.yaml first; environment variables override the file, so the same
// binary can be pointed at another queue or table without editing config.
type Config struct {
	KafkaBroker    string `yaml:"kafka_broker" env:"KAFKA_BROKER" env-default:"localhost:9092"`
	TaskQueue      string `yaml:"task_queue" env:"TASK_QUEUE" env-default:"photos3-new-images"`
	ThumbnailTopic string `yaml:"thumbnail_topic" env:"THUMBNAIL_TOPIC" env-default:"photos3-thumbnails"`
	ConsumerGroup  string `yaml:"consumer_group" env:"CONSUMER_GROUP" env-default:"photos3"`

	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
	MetaTable   string `yaml:"meta_table" env:"META_TABLE" env-default:"image_metadata"`

	StoragePath     string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"./data"`
	UploadPrefix    string `yaml:"upload_prefix" env:"S3_PREFIX_UPLOAD" env-default:"uploads"`
	OriginalPrefix  string `yaml:"original_prefix" env:"S3_PREFIX_ORIGINAL" env-default:"originals"`
	ThumbnailPrefix string `yaml:"thumbnail_prefix" env:"S3_PREFIX_THUMBNAIL" env-default:"thumbnail"`

	// MaxUploadBytes skips events whose declared size exceeds it. 0 disables
	// the guard.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"0"`

	// PollWait is how long a single receive waits before the drain loop
	// decides the queue is empty, in seconds.
	PollWait     int `yaml:"poll_wait" env:"POLL_WAIT" env-default:"5"`
	PollInterval int `yaml:"poll_interval" env:"POLL_INTERVAL" env-default:"60"`

	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`

	ThumbnailSizes []ThumbnailSize `yaml:"thumbnail_sizes"`
}

func LoadConfig(path string) (*Config, error) {
	const op = "models.LoadConfig"

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Environment beats the file, matching the original deployment where
	// identifiers arrived as TASK_QUEUE, S3_PREFIX_* and friends.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(cfg.ThumbnailSizes) == 0 {
		cfg.ThumbnailSizes = DefaultThumbnailSizes
	}
	return &cfg, nil
}
