package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from environment variables or config files.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	DatabaseDriver string `mapstructure:"DATABASE_DRIVER" validate:"required,oneof=postgres sqlite"`
	DatabaseURL    string `mapstructure:"DATABASE_URL" validate:"required"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL" validate:"required"`

	CORSOrigin     string   `mapstructure:"CORS_ORIGIN" validate:"required"`
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// ResetTokenResponse echoes password reset tokens in API responses. Never enable in production.
	ResetTokenResponse bool `mapstructure:"RESET_PASSWORD_TOKEN_RESPONSE"`

	AuthRateLimit  int           `mapstructure:"AUTH_RATE_LIMIT" validate:"gte=1"`
	AuthRateWindow time.Duration `mapstructure:"AUTH_RATE_WINDOW" validate:"required"`

	RedisAddr        string `mapstructure:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	AsynqConcurrency int    `mapstructure:"ASYNQ_CONCURRENCY" validate:"gte=1,lte=1000"`

	StorageDriver    string `mapstructure:"STORAGE_DRIVER" validate:"required,oneof=minio s3"`
	StorageEndpoint  string `mapstructure:"STORAGE_ENDPOINT"`
	StorageRegion    string `mapstructure:"STORAGE_REGION"`
	StorageAccessKey string `mapstructure:"STORAGE_ACCESS_KEY"`
	StorageSecretKey string `mapstructure:"STORAGE_SECRET_KEY"`
	StorageBucket    string `mapstructure:"STORAGE_BUCKET" validate:"required"`
	StorageUseSSL    bool   `mapstructure:"STORAGE_USE_SSL"`
	StoragePublicURL string `mapstructure:"STORAGE_PUBLIC_URL" validate:"omitempty,url"`
	StorageFolder    string `mapstructure:"STORAGE_FOLDER" validate:"required"`

	UploadMaxBytes int64  `mapstructure:"UPLOAD_MAX_BYTES" validate:"gte=1"`
	UploadMaxFiles int    `mapstructure:"UPLOAD_MAX_FILES" validate:"gte=1,lte=100"`
	UploadDir      string `mapstructure:"UPLOAD_DIR"`

	GoMaxProcs int `mapstructure:"GOMAXPROCS" validate:"gte=0,lte=4096"`
}

// IsDevelopment reports whether insecure defaults are acceptable.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "test"
}

// QueueEnabled reports whether a redis instance is configured for shared limits and purge tasks.
func (c *Config) QueueEnabled() bool {
	return c.RedisAddr != ""
}

const devJWTSecret = "dev-secret-change-me"

var validate = validator.New(validator.WithRequiredStructEnabled())

var keys = []string{
	"APP_ENV",
	"HTTP_ADDR",
	"SHUTDOWN_TIMEOUT",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"DATABASE_DRIVER",
	"DATABASE_URL",
	"JWT_SECRET",
	"TOKEN_TTL",
	"CORS_ORIGIN",
	"TRUSTED_PROXIES",
	"RESET_PASSWORD_TOKEN_RESPONSE",
	"AUTH_RATE_LIMIT",
	"AUTH_RATE_WINDOW",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"ASYNQ_CONCURRENCY",
	"STORAGE_DRIVER",
	"STORAGE_ENDPOINT",
	"STORAGE_REGION",
	"STORAGE_ACCESS_KEY",
	"STORAGE_SECRET_KEY",
	"STORAGE_BUCKET",
	"STORAGE_USE_SSL",
	"STORAGE_PUBLIC_URL",
	"STORAGE_FOLDER",
	"UPLOAD_MAX_BYTES",
	"UPLOAD_MAX_FILES",
	"UPLOAD_DIR",
	"GOMAXPROCS",
}

// Load initializes configuration using Viper. It loads from .env if present,
// applies defaults, binds env vars, and validates the result.
func Load() (*Config, error) {
	// Load .env if present (non-fatal)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", "0.0.0.0:8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("TOKEN_TTL", "12h")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("RESET_PASSWORD_TOKEN_RESPONSE", false)
	v.SetDefault("AUTH_RATE_LIMIT", 10)
	v.SetDefault("AUTH_RATE_WINDOW", "15m")
	v.SetDefault("ASYNQ_CONCURRENCY", 10)
	v.SetDefault("STORAGE_DRIVER", "minio")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_BUCKET", "site-tracker")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("STORAGE_FOLDER", "site-tracker")
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("UPLOAD_MAX_FILES", 10)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("GOMAXPROCS", 0)

	// Optional config file
	_ = v.ReadInConfig()

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	// Parse duration types that may come as string
	for key, dst := range map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT": &c.ShutdownTimeout,
		"TOKEN_TTL":        &c.TokenTTL,
		"AUTH_RATE_WINDOW": &c.AuthRateWindow,
	} {
		if s := v.GetString(key); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}
	c.TrustedProxies = splitList(v.GetString("TRUSTED_PROXIES"))

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return nil, fmt.Errorf("invalid configuration: JWT_SECRET is required in %s", c.AppEnv)
		}
		c.JWTSecret = devJWTSecret
	}

	if c.GoMaxProcs > 0 {
		runtime.GOMAXPROCS(c.GoMaxProcs)
	}

	return &c, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
