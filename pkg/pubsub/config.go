package pubsub

import (
	"fmt"
	"time"
)

// KafkaConfig holds Kafka-specific configuration.
type KafkaConfig struct {
	Brokers    string `mapstructure:"brokers"`
	Partitions int    `mapstructure:"partitions"`
}

// Config holds the configuration for the event bus.
type Config struct {
	Driver string      `mapstructure:"driver"` // "redis", "kafka", "none"
	Redis  RedisConfig `mapstructure:"redis"`
	Kafka  KafkaConfig `mapstructure:"kafka"`
}

// RedisConfig holds Redis-specific configuration.
type RedisConfig struct {
	Address      string        `mapstructure:"address"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// NewPublisher creates a Publisher for the configured driver. Driver "none"
// returns (nil, nil): callers treat a nil Publisher as "events disabled".
func NewPublisher(cfg Config) (Publisher, error) {
	switch cfg.Driver {
	case "kafka":
		p, err := NewKafkaPublisher(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "redis", "":
		p, err := NewRedisPublisher(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported pubsub driver: %s", cfg.Driver)
	}
}
