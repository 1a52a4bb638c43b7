package config

import (
	pkgconfig "github.com/tradepost/marketplace-automation/pkg/config"
	"github.com/tradepost/marketplace-automation/pkg/database"
	"github.com/tradepost/marketplace-automation/pkg/pubsub"
)

type Config struct {
	Server   ServerConfig
	Razorpay RazorpayConfig
	Payment  PaymentConfig
	Database database.Config
	Events   EventsConfig
	PubSub   pubsub.Config `mapstructure:"pubsub"`
	Log      LogConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Environment string
}

type RazorpayConfig struct {
	KeyID         string `mapstructure:"key_id"`
	KeySecret     string `mapstructure:"key_secret"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type PaymentConfig struct {
	AmountUnit      string `mapstructure:"amount_unit"`
	DefaultCurrency string `mapstructure:"default_currency"`
	CallbackURL     string `mapstructure:"callback_url"`
}

// EventsConfig controls the webhook dedupe log.
type EventsConfig struct {
	Dedupe bool
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.environment", "development")
	v.SetDefault("payment.amount_unit", "minor")
	v.SetDefault("payment.default_currency", "INR")
	v.SetDefault("payment.callback_url", "")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.file_path", "payments.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("events.dedupe", true)
	v.SetDefault("pubsub.driver", "none")
	v.SetDefault("pubsub.redis.address", "localhost:6379")
	v.SetDefault("pubsub.redis.pool_size", 10)
	v.SetDefault("pubsub.redis.read_timeout", "3s")
	v.SetDefault("pubsub.redis.write_timeout", "3s")
	v.SetDefault("pubsub.kafka.brokers", "localhost:9092")
	v.SetDefault("pubsub.kafka.partitions", 4)
	v.SetDefault("log.level", "info")

	// Override from environment
	if err := pkgconfig.BindEnvs(v, map[string]string{
		"server.port":              "PORT",
		"server.environment":       "APP_ENV",
		"razorpay.key_id":          "RAZORPAY_KEY_ID",
		"razorpay.key_secret":      "RAZORPAY_KEY_SECRET",
		"razorpay.webhook_secret":  "RAZORPAY_WEBHOOK_SECRET",
		"payment.amount_unit":      "PAYMENT_AMOUNT_UNIT",
		"payment.default_currency": "PAYMENT_DEFAULT_CURRENCY",
		"payment.callback_url":     "PAYMENT_LINK_CALLBACK_URL",
		"database.driver":          "DB_DRIVER",
		"database.host":            "DB_HOST",
		"database.port":            "DB_PORT",
		"database.user":            "DB_USER",
		"database.password":        "DB_PASSWORD",
		"database.dbname":          "DB_NAME",
		"database.file_path":       "DB_FILE_PATH",
		"events.dedupe":            "WEBHOOK_DEDUPE",
		"pubsub.driver":            "PUBSUB_DRIVER",
		"pubsub.redis.address":     "REDIS_ADDRESS",
		"pubsub.redis.password":    "REDIS_PASSWORD",
		"pubsub.kafka.brokers":     "KAFKA_BROKERS",
		"log.level":                "LOG_LEVEL",
	}); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
