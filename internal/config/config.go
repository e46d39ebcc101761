package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Store      StoreConfig
	Auth       AuthConfig
	Summarizer SummarizerConfig
	Cloudinary CloudinaryConfig
	Cache      CacheConfig
	Logging    LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Environment     string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	MaxHeaderBytes  int
	ServerName      string
}

// DatabaseConfig holds Postgres connection configuration
type DatabaseConfig struct {
	URL                 string
	MaxOpenConns        int
	MaxIdleConns        int
	ConnMaxLifetime     time.Duration
	ConnMaxIdleTime     time.Duration
	ConnectTimeout      time.Duration
	SlowQueryThreshold  time.Duration
	EnableQueryLogging  bool
	HealthCheckInterval time.Duration
	MigrationsPath      string
	SSLMode             string
	MaxRetryAttempts    int
	RetryBackoff        time.Duration
}

// StoreConfig namespaces persisted records by deployment/tenant.
// Record paths are artifacts/{tenant}/suggestions and artifacts/{tenant}/users.
type StoreConfig struct {
	TenantID string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret         string
	JWTExpiry         time.Duration
	BCryptCost        int
	MinPasswordLength int
}

// SummarizerConfig holds the generative-AI summarizer configuration.
// Summaries fall back to truncation when the API is unreachable or the
// key is unset, so none of these are required.
type SummarizerConfig struct {
	APIKey          string
	Endpoint        string
	Model           string
	RequestTimeout  time.Duration
	MaxRetries      int
	SummaryMaxChars int
	MinInputChars   int
}

// CloudinaryConfig holds attachment upload configuration
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadFolder string
	MaxFileSize  int64
}

// CacheConfig holds cache backend configuration. An empty RedisURL selects
// the in-process memory cache.
type CacheConfig struct {
	RedisURL   string
	DefaultTTL time.Duration
	MaxEntries int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment, with .env support outside
// production.
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load() // fallback to .env
		}
	}

	config := &Config{
		Server:     loadServerConfig(env),
		Database:   loadDatabaseConfig(env),
		Store:      loadStoreConfig(),
		Auth:       loadAuthConfig(),
		Summarizer: loadSummarizerConfig(),
		Cloudinary: loadCloudinaryConfig(),
		Cache:      loadCacheConfig(),
		Logging:    loadLoggingConfig(env),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadServerConfig(env string) ServerConfig {
	config := ServerConfig{
		Port:            getEnv("PORT", "9000"),
		Environment:     env,
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		GracefulTimeout: getDurationEnv("GRACEFUL_TIMEOUT", 30*time.Second),
		MaxHeaderBytes:  getIntEnv("MAX_HEADER_BYTES", 1<<20),
		ServerName:      getEnv("SERVER_NAME", "CampusVoice"),
	}

	if env == "development" {
		config.GracefulTimeout = 10 * time.Second
	}

	return config
}

func loadDatabaseConfig(env string) DatabaseConfig {
	sslMode := "require"
	if env == "development" {
		sslMode = "disable"
	}

	return DatabaseConfig{
		URL:                 getEnv("DATABASE_URL", ""),
		MaxOpenConns:        getIntEnv("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:        getIntEnv("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:     getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnMaxIdleTime:     getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		ConnectTimeout:      getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),
		SlowQueryThreshold:  getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 500*time.Millisecond),
		EnableQueryLogging:  getBoolEnv("DB_ENABLE_QUERY_LOGGING", env == "development"),
		HealthCheckInterval: getDurationEnv("DB_HEALTH_CHECK_INTERVAL", 30*time.Second),
		MigrationsPath:      getEnv("DB_MIGRATIONS_PATH", "migrations"),
		SSLMode:             getEnv("DB_SSL_MODE", sslMode),
		MaxRetryAttempts:    getIntEnv("DB_MAX_RETRY_ATTEMPTS", 3),
		RetryBackoff:        getDurationEnv("DB_RETRY_BACKOFF", time.Second),
	}
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{
		TenantID: getEnv("TENANT_ID", "default"),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTExpiry:         getDurationEnv("JWT_EXPIRY", 24*time.Hour),
		BCryptCost:        getIntEnv("BCRYPT_COST", 12),
		MinPasswordLength: getIntEnv("MIN_PASSWORD_LENGTH", 8),
	}
}

func loadSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{
		APIKey:          getEnv("SUMMARIZER_API_KEY", ""),
		Endpoint:        getEnv("SUMMARIZER_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta/models"),
		Model:           getEnv("SUMMARIZER_MODEL", "gemini-2.0-flash"),
		RequestTimeout:  getDurationEnv("SUMMARIZER_TIMEOUT", 15*time.Second),
		MaxRetries:      getIntEnv("SUMMARIZER_MAX_RETRIES", 2),
		SummaryMaxChars: getIntEnv("SUMMARY_MAX_CHARS", 100),
		MinInputChars:   getIntEnv("SUMMARY_MIN_INPUT_CHARS", 200),
	}
}

func loadCloudinaryConfig() CloudinaryConfig {
	return CloudinaryConfig{
		CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
		APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
		UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "campusvoice/attachments"),
		MaxFileSize:  getInt64Env("CLOUDINARY_MAX_FILE_SIZE", 10*1024*1024),
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		RedisURL:   getEnv("REDIS_URL", ""),
		DefaultTTL: getDurationEnv("CACHE_DEFAULT_TTL", 5*time.Minute),
		MaxEntries: getIntEnv("CACHE_MAX_ENTRIES", 10000),
	}
}

func loadLoggingConfig(env string) LoggingConfig {
	format := "json"
	level := "info"
	if env == "development" {
		format = "console"
		level = "debug"
	}
	return LoggingConfig{
		Level:  getEnv("LOG_LEVEL", level),
		Format: getEnv("LOG_FORMAT", format),
	}
}

// Validate checks required settings and value ranges.
func (c *Config) Validate() error {
	var problems []string

	if c.Database.URL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	} else if len(c.Auth.JWTSecret) < 32 && c.Server.Environment == "production" {
		problems = append(problems, "JWT_SECRET must be at least 32 characters in production")
	}
	if c.Auth.BCryptCost < 10 || c.Auth.BCryptCost > 16 {
		problems = append(problems, "BCRYPT_COST must be between 10 and 16")
	}
	if c.Store.TenantID == "" {
		problems = append(problems, "TENANT_ID must not be empty")
	}
	if c.Summarizer.SummaryMaxChars <= 0 {
		problems = append(problems, "SUMMARY_MAX_CHARS must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// ===============================
// ENV HELPERS
// ===============================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
