package config

import (
	"time"

	pkgconfig "github.com/tradepost/marketplace-automation/pkg/config"
	"github.com/tradepost/marketplace-automation/pkg/database"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Profile  ProfileConfig
	Redis    RedisConfig
	Database database.Config
	Push     PushConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Environment string
}

// Development reports whether error details may be returned to callers.
func (s ServerConfig) Development() bool {
	return s.Environment == "development"
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
}

type ProfileConfig struct {
	Driver string // redis or database
}

type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string `mapstructure:"key_prefix"`
}

type PushConfig struct {
	ProjectID        string `mapstructure:"project_id"`
	CredentialsFile  string `mapstructure:"credentials_file"`
	DryRun           bool   `mapstructure:"dry_run"`
	AndroidChannelID string `mapstructure:"android_channel_id"`
	AndroidPriority  string `mapstructure:"android_priority"`
	Sound            string
	Badge            int
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
	v.SetDefault("server.port", 8101)
	v.SetDefault("server.environment", "production")
	v.SetDefault("auth.jwt_issuer", "")
	v.SetDefault("auth.token_expiry", "1h")
	v.SetDefault("profile.driver", "redis")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "user:profile:")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "marketplace")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("push.dry_run", false)
	v.SetDefault("push.android_channel_id", "chat_notifications")
	v.SetDefault("push.android_priority", "high")
	v.SetDefault("push.sound", "default")
	v.SetDefault("push.badge", 1)
	v.SetDefault("log.level", "info")

	// Override from environment
	if err := pkgconfig.BindEnvs(v, map[string]string{
		"server.port":           "PORT",
		"server.environment":    "APP_ENV",
		"auth.jwt_secret":       "JWT_SECRET",
		"auth.jwt_issuer":       "JWT_ISSUER",
		"profile.driver":        "PROFILE_DRIVER",
		"redis.address":         "REDIS_ADDRESS",
		"redis.password":        "REDIS_PASSWORD",
		"database.driver":       "DB_DRIVER",
		"database.host":         "DB_HOST",
		"database.port":         "DB_PORT",
		"database.user":         "DB_USER",
		"database.password":     "DB_PASSWORD",
		"database.dbname":       "DB_NAME",
		"database.file_path":    "DB_FILE_PATH",
		"push.project_id":       "FIREBASE_PROJECT_ID",
		"push.credentials_file": "GOOGLE_APPLICATION_CREDENTIALS",
		"push.dry_run":          "FCM_DRY_RUN",
		"log.level":             "LOG_LEVEL",
	}); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Auth.TokenExpiry = pkgconfig.Duration(v, "auth.token_expiry", time.Hour)

	return &cfg, nil
}
