package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageS3       = "s3"
	StorageSupabase = "supabase"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	// Server
	Port          string
	Environment   string
	BaseURL       string
	RateLimit     int
	MaxUploadSize int64

	// Database
	DatabaseDriver string
	DSN            string

	// Sessions and OAuth
	SessionSecret    string
	SessionMaxAge    int
	GoogleKey        string
	GoogleSecret     string
	OAuthCallbackURL string

	// Object storage
	StorageBackend  string
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	BucketName      string
	PublicURL       string
	SupabaseURL     string
	SupabaseKey     string
	SupabaseBucket  string

	// LLM
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	// Events, optional
	RabbitMQURL string
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(viper.GetViper())
}

// FromViper builds a Config from v after registering defaults.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:          v.GetString("PORT"),
		Environment:   v.GetString("ENVIRONMENT"),
		BaseURL:       strings.TrimSuffix(v.GetString("BASE_URL"), "/"),
		RateLimit:     v.GetInt("RATE_LIMIT_PER_MINUTE"),
		MaxUploadSize: v.GetInt64("MAX_UPLOAD_BYTES"),

		DatabaseDriver: v.GetString("DATABASE_DRIVER"),
		DSN:            v.GetString("DSN"),

		SessionSecret:    v.GetString("SESSION_SECRET"),
		SessionMaxAge:    v.GetInt("SESSION_MAX_AGE"),
		GoogleKey:        v.GetString("GOOGLE_KEY"),
		GoogleSecret:     v.GetString("GOOGLE_SECRET"),
		OAuthCallbackURL: v.GetString("OAUTH_CALLBACK_URL"),

		StorageBackend:  v.GetString("STORAGE_BACKEND"),
		AccountID:       v.GetString("ACCOUNT_ID"),
		AccessKeyID:     v.GetString("ACCESS_KEY_ID"),
		AccessKeySecret: v.GetString("ACCESS_KEY_SECRET"),
		BucketName:      v.GetString("BUCKET_NAME"),
		PublicURL:       v.GetString("PUBLIC_URL"),
		SupabaseURL:     v.GetString("SUPABASE_URL"),
		SupabaseKey:     v.GetString("SUPABASE_KEY"),
		SupabaseBucket:  v.GetString("SUPABASE_BUCKET"),

		LLMBaseURL: v.GetString("LLM_API_URL"),
		LLMAPIKey:  v.GetString("LLM_API_KEY"),
		LLMModel:   v.GetString("LLM_MODEL"),
		LLMTimeout: v.GetDuration("LLM_TIMEOUT"),

		RabbitMQURL: v.GetString("RABBITMQ_URL"),
	}
	if cfg.OAuthCallbackURL == "" {
		cfg.OAuthCallbackURL = cfg.BaseURL + "/auth/google/callback"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("BASE_URL", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("DATABASE_DRIVER", DriverPostgres)
	v.SetDefault("SESSION_MAX_AGE", 86400*30)
	v.SetDefault("STORAGE_BACKEND", StorageS3)
	v.SetDefault("SUPABASE_BUCKET", "thumbnails")
	v.SetDefault("LLM_API_URL", "https://api.openai.com/v1/")
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_TIMEOUT", 60*time.Second)
}

// Production reports whether cookies should be marked secure.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

func (c *Config) Validate() error {
	if c.DSN == "" {
		return errors.New("DSN is required")
	}
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.LLMAPIKey == "" {
		return errors.New("LLM_API_KEY is required")
	}
	switch c.StorageBackend {
	case StorageS3:
		if c.AccountID == "" || c.AccessKeyID == "" || c.AccessKeySecret == "" || c.BucketName == "" {
			return errors.New("ACCOUNT_ID, ACCESS_KEY_ID, ACCESS_KEY_SECRET and BUCKET_NAME are required for s3 storage")
		}
		if c.PublicURL == "" {
			return errors.New("PUBLIC_URL is required for s3 storage")
		}
	case StorageSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return errors.New("SUPABASE_URL and SUPABASE_KEY are required for supabase storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	return nil
}
