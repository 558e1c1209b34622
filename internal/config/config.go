package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Import   ImportConfig   `yaml:"import"`
	Storage  StorageConfig  `yaml:"storage"`
	Audit    AuditConfig    `yaml:"audit"`
	Assist   AssistConfig   `yaml:"assist"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	BaseURL        string   `yaml:"base_url"` // public URL used for the OAuth redirect
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	URL                    string `yaml:"url"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// ConnMaxLifetime returns the pool connection lifetime as a duration.
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

// RedisConfig holds the Redis connection used by the async import queue.
// An empty URL disables async imports.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig holds Google OAuth authentication configuration
type AuthConfig struct {
	Enabled            bool     `yaml:"enabled"`
	GoogleClientID     string   `yaml:"google_client_id"`
	GoogleClientSecret string   `yaml:"google_client_secret"`
	AllowedDomain      string   `yaml:"allowed_domain"`
	AdminEmails        []string `yaml:"admin_emails"`
	SessionSecret      string   `yaml:"session_secret"`
	CookieName         string   `yaml:"cookie_name"`
	CookieMaxAge       int      `yaml:"cookie_max_age"`
	DevMode            bool     `yaml:"dev_mode"` // skip login; every request acts as dev@local
}

// ImportConfig holds bulk catalog import settings.
type ImportConfig struct {
	RejectDuplicateNames bool  `yaml:"reject_duplicate_names"`
	MaxRows              int   `yaml:"max_rows"`
	MaxBodyBytes         int64 `yaml:"max_body_bytes"`
	InlineWorker         bool  `yaml:"inline_worker"`
	JobTTLHours          int   `yaml:"job_ttl_hours"`

	// Per-admin row budgets; 0 disables the window. Needs Redis.
	RowsPerMinute int64 `yaml:"rows_per_minute"`
	RowsPerDay    int64 `yaml:"rows_per_day"`
}

// JobTTL returns how long async job documents are kept in Redis.
func (c ImportConfig) JobTTL() time.Duration {
	return time.Duration(c.JobTTLHours) * time.Hour
}

// StorageConfig holds the upload archive configuration
type StorageConfig struct {
	Type       string `yaml:"type"` // "local" or "s3"
	LocalPath  string `yaml:"local_path"`
	S3Bucket   string `yaml:"s3_bucket"`
	AWSRegion  string `yaml:"aws_region"`
	AWSProfile string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)

	// Static keys for environments without a role or profile.
	AWSAccessKeyID     string `yaml:"aws_access_key_id"`
	AWSSecretAccessKey string `yaml:"aws_secret_access_key"`
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c StorageConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// AuditConfig selects where audit records are written.
type AuditConfig struct {
	Backend       string `yaml:"backend"` // "postgres" or "dynamodb"
	DynamoDBTable string `yaml:"dynamodb_table"`
}

// AssistConfig holds the Bedrock settings for description drafting.
type AssistConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	ModelID   string `yaml:"model_id"`
	MaxTokens int    `yaml:"max_tokens"`

	// UserPrompt is a Liquid template with name, url and language bound.
	UserPrompt string `yaml:"user_prompt"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"` // "production" or "development"
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes == 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 5
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "catalog_session"
	}
	if cfg.Auth.CookieMaxAge == 0 {
		cfg.Auth.CookieMaxAge = 86400
	}
	if cfg.Import.MaxRows == 0 {
		cfg.Import.MaxRows = 5000
	}
	if cfg.Import.MaxBodyBytes == 0 {
		cfg.Import.MaxBodyBytes = 10 << 20
	}
	if cfg.Import.JobTTLHours == 0 {
		cfg.Import.JobTTLHours = 24
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "./data/uploads"
	}
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = "eu-central-1"
	}
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = "postgres"
	}
	if cfg.Audit.DynamoDBTable == "" {
		cfg.Audit.DynamoDBTable = "catalog-audit"
	}
	if cfg.Assist.Region == "" {
		cfg.Assist.Region = "us-east-1"
	}
	if cfg.Assist.ModelID == "" {
		cfg.Assist.ModelID = "anthropic.claude-3-haiku-20240307-v1:0"
	}
	if cfg.Assist.MaxTokens == 0 {
		cfg.Assist.MaxTokens = 1024
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Env == "" {
		cfg.Log.Env = "production"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	// Auth overrides
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.Auth.GoogleClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Auth.GoogleClientSecret = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.Auth.SessionSecret = v
	}
	if v := os.Getenv("AUTH_ALLOWED_DOMAIN"); v != "" {
		cfg.Auth.AllowedDomain = v
	}
	if v := os.Getenv("AUTH_ADMIN_EMAILS"); v != "" {
		cfg.Auth.AdminEmails = splitList(v)
	}
	if v := os.Getenv("DEV_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Auth.DevMode = b
		}
	}

	if v := os.Getenv("IMPORT_REJECT_DUPLICATE_NAMES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Import.RejectDuplicateNames = b
		}
	}
	if v := os.Getenv("IMPORT_ROWS_PER_MINUTE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			cfg.Import.RowsPerMinute = n
		}
	}
	if v := os.Getenv("IMPORT_ROWS_PER_DAY"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			cfg.Import.RowsPerDay = n
		}
	}
	if v := os.Getenv("IMPORT_MAX_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Import.MaxRows = n
		}
	}

	if v := os.Getenv("STORAGE_S3_BUCKET"); v != "" {
		cfg.Storage.S3Bucket = v
	}
	if v := os.Getenv("CATALOG_AWS_ACCESS_KEY_ID"); v != "" {
		cfg.Storage.AWSAccessKeyID = v
	}
	if v := os.Getenv("CATALOG_AWS_SECRET_ACCESS_KEY"); v != "" {
		cfg.Storage.AWSSecretAccessKey = v
	}
	if v := os.Getenv("AUDIT_BACKEND"); v != "" {
		cfg.Audit.Backend = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
