package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	// EVENTS_TIMEZONE must resolve in images without a zoneinfo database.
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Database    DatabaseConfig  `yaml:"database"`
	Auth        AuthConfig      `yaml:"auth"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Logging     LoggingConfig   `yaml:"logging"`
	Tracing     TracingConfig   `yaml:"tracing"`
	Blob        BlobConfig      `yaml:"blob"`
	Events      EventsConfig    `yaml:"events"`
	Environment string          `yaml:"environment"`
}

type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MaxConnections int    `yaml:"max_connections"`
	MigrationsPath string `yaml:"migrations_path"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	JWTExpiry time.Duration `yaml:"jwt_expiry"`
	JWTIssuer string        `yaml:"jwt_issuer"`
}

type RateLimitConfig struct {
	PublicPerMinute   int      `yaml:"public_per_minute"`
	TrustedProxyCIDRs []string `yaml:"trusted_proxy_cidrs"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// BlobConfig selects where image payloads live. Backend is one of
// "file", "s3" or "memory".
type BlobConfig struct {
	Backend    string `yaml:"backend"`
	Directory  string `yaml:"directory"`
	S3Bucket   string `yaml:"s3_bucket"`
	S3Region   string `yaml:"s3_region"`
	S3Endpoint string `yaml:"s3_endpoint"`
	S3User     string `yaml:"s3_user"`
	S3Password string `yaml:"s3_password"`
}

type EventsConfig struct {
	Timezone string `yaml:"timezone"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			MaxUploadBytes: 10 << 20,
		},
		Database: DatabaseConfig{
			MaxConnections: 25,
		},
		Auth: AuthConfig{
			JWTExpiry: 24 * time.Hour,
			JWTIssuer: "eventdesk",
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Exporter:    "stdout",
			ServiceName: "eventdesk",
			SampleRate:  1.0,
		},
		Blob: BlobConfig{
			Backend:   "file",
			Directory: "data/blobs",
			S3Region:  "us-east-1",
		},
		Events: EventsConfig{
			Timezone: "UTC",
		},
		Environment: "development",
	}
}

// Load reads configuration from the file named by CONFIG_FILE (if any) and
// then from environment variables, which take precedence.
func Load() (Config, error) {
	return LoadFrom(os.Getenv("CONFIG_FILE"))
}

// LoadFrom is Load with an explicit YAML file path. An empty path skips the file.
func LoadFrom(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.MaxUploadBytes = int64(getEnvInt("SERVER_MAX_UPLOAD_BYTES", int(cfg.Server.MaxUploadBytes)))

	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.MaxConnections = getEnvInt("DATABASE_MAX_CONNECTIONS", cfg.Database.MaxConnections)
	cfg.Database.MigrationsPath = getEnv("DATABASE_MIGRATIONS_PATH", cfg.Database.MigrationsPath)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	if hours := getEnvInt("JWT_EXPIRY_HOURS", 0); hours > 0 {
		cfg.Auth.JWTExpiry = time.Duration(hours) * time.Hour
	}
	cfg.Auth.JWTIssuer = getEnv("JWT_ISSUER", cfg.Auth.JWTIssuer)

	cfg.RateLimit.PublicPerMinute = getEnvInt("RATE_LIMIT_PUBLIC", cfg.RateLimit.PublicPerMinute)
	if cidrs := getEnv("TRUSTED_PROXY_CIDRS", ""); cidrs != "" {
		cfg.RateLimit.TrustedProxyCIDRs = splitList(cidrs)
	}

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = getEnv("TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.ServiceName = getEnv("TRACING_SERVICE_NAME", cfg.Tracing.ServiceName)
	cfg.Tracing.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.OTLPEndpoint)
	cfg.Tracing.SampleRate = getEnvFloat("TRACING_SAMPLE_RATE", cfg.Tracing.SampleRate)

	cfg.Blob.Backend = strings.ToLower(getEnv("BLOB_BACKEND", cfg.Blob.Backend))
	cfg.Blob.Directory = getEnv("BLOB_DIRECTORY", cfg.Blob.Directory)
	cfg.Blob.S3Bucket = getEnv("S3_BUCKET", cfg.Blob.S3Bucket)
	cfg.Blob.S3Region = getEnv("S3_REGION", cfg.Blob.S3Region)
	cfg.Blob.S3Endpoint = getEnv("S3_ENDPOINT", cfg.Blob.S3Endpoint)
	cfg.Blob.S3User = getEnv("S3_ACCESS_KEY", cfg.Blob.S3User)
	cfg.Blob.S3Password = getEnv("S3_SECRET_KEY", cfg.Blob.S3Password)

	cfg.Events.Timezone = getEnv("EVENTS_TIMEZONE", cfg.Events.Timezone)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Environment == "production" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	switch c.Blob.Backend {
	case "file":
		if c.Blob.Directory == "" {
			return fmt.Errorf("BLOB_DIRECTORY is required for the file backend")
		}
	case "s3":
		if c.Blob.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 backend")
		}
	case "memory":
		if c.Environment == "production" {
			return fmt.Errorf("BLOB_BACKEND=memory is not allowed in production")
		}
	default:
		return fmt.Errorf("unsupported BLOB_BACKEND %q (must be file, s3 or memory)", c.Blob.Backend)
	}
	if _, err := time.LoadLocation(c.Events.Timezone); err != nil {
		return fmt.Errorf("invalid EVENTS_TIMEZONE %q: %w", c.Events.Timezone, err)
	}
	return nil
}

// Location returns the time zone used to decide which calendar day "now" is.
func (c EventsConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
