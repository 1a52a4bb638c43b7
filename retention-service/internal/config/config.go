package config

import (
	"time"

	pkgconfig "github.com/tradepost/marketplace-automation/pkg/config"
	"github.com/tradepost/marketplace-automation/pkg/database"
)

type Config struct {
	Server    ServerConfig
	Cassandra CassandraConfig
	Database  database.Config
	Redis     RedisConfig
	Sweeps    SweepsConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type CassandraConfig struct {
	Hosts          []string
	Keyspace       string
	Consistency    string
	Username       string
	Password       string
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	Timeout        time.Duration
	PageSize       int `mapstructure:"page_size"`
}

// RedisConfig configures the cross-replica run lock. An empty address
// disables the lock.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

type SweepsConfig struct {
	Messages SweepConfig
	Listings SweepConfig
}

// SweepConfig configures one sweep kind.
type SweepConfig struct {
	Enabled   bool
	Schedule  string
	Retention time.Duration
	BatchSize int `mapstructure:"batch_size"`
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
	v.SetDefault("server.port", 8102)
	v.SetDefault("cassandra.hosts", []string{"localhost"})
	v.SetDefault("cassandra.keyspace", "chat")
	v.SetDefault("cassandra.consistency", "LOCAL_QUORUM")
	v.SetDefault("cassandra.connect_timeout", "10s")
	v.SetDefault("cassandra.timeout", "5s")
	v.SetDefault("cassandra.page_size", 1000)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "marketplace")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.lock_ttl", "30m")
	v.SetDefault("sweeps.messages.enabled", true)
	v.SetDefault("sweeps.messages.schedule", "15 0 * * *")
	v.SetDefault("sweeps.messages.retention", "168h")
	v.SetDefault("sweeps.messages.batch_size", 100)
	v.SetDefault("sweeps.listings.enabled", true)
	v.SetDefault("sweeps.listings.schedule", "15 * * * *")
	v.SetDefault("sweeps.listings.retention", "24h")
	v.SetDefault("sweeps.listings.batch_size", 500)
	v.SetDefault("log.level", "info")

	// Override from environment
	if err := pkgconfig.BindEnvs(v, map[string]string{
		"server.port":                "PORT",
		"cassandra.hosts":            "CASSANDRA_HOSTS",
		"cassandra.keyspace":         "CASSANDRA_KEYSPACE",
		"cassandra.username":         "CASSANDRA_USERNAME",
		"cassandra.password":         "CASSANDRA_PASSWORD",
		"database.driver":            "DB_DRIVER",
		"database.host":              "DB_HOST",
		"database.port":              "DB_PORT",
		"database.user":              "DB_USER",
		"database.password":          "DB_PASSWORD",
		"database.dbname":            "DB_NAME",
		"database.file_path":         "DB_FILE_PATH",
		"redis.address":              "REDIS_ADDRESS",
		"redis.password":             "REDIS_PASSWORD",
		"sweeps.messages.enabled":    "MESSAGE_SWEEP_ENABLED",
		"sweeps.messages.schedule":   "MESSAGE_SWEEP_SCHEDULE",
		"sweeps.messages.retention":  "MESSAGE_RETENTION",
		"sweeps.messages.batch_size": "MESSAGE_SWEEP_BATCH_SIZE",
		"sweeps.listings.enabled":    "LISTING_SWEEP_ENABLED",
		"sweeps.listings.schedule":   "LISTING_SWEEP_SCHEDULE",
		"sweeps.listings.retention":  "LISTING_GRACE_PERIOD",
		"sweeps.listings.batch_size": "LISTING_SWEEP_BATCH_SIZE",
		"log.level":                  "LOG_LEVEL",
	}); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Env-provided host lists arrive as one comma-separated string.
	if len(cfg.Cassandra.Hosts) == 1 {
		cfg.Cassandra.Hosts = pkgconfig.SplitList(cfg.Cassandra.Hosts[0])
	}

	// Parse durations
	cfg.Cassandra.ConnectTimeout = pkgconfig.Duration(v, "cassandra.connect_timeout", 10*time.Second)
	cfg.Cassandra.Timeout = pkgconfig.Duration(v, "cassandra.timeout", 5*time.Second)
	cfg.Redis.LockTTL = pkgconfig.Duration(v, "redis.lock_ttl", 30*time.Minute)
	cfg.Sweeps.Messages.Retention = pkgconfig.Duration(v, "sweeps.messages.retention", 7*24*time.Hour)
	cfg.Sweeps.Listings.Retention = pkgconfig.Duration(v, "sweeps.listings.retention", 24*time.Hour)

	return &cfg, nil
}
