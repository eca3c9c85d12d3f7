package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Media backends.
const (
	MediaLocal = "local"
	MediaS3    = "s3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Mongo    MongoConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Media    MediaConfig
	S3       S3Config
	Logger   LoggerConfig
	Auth     AuthConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
	// PublicBaseURL prefixes every stored media path in API responses.
	PublicBaseURL string
}

// StoreConfig selects the product repository backend.
type StoreConfig struct {
	Driver string // "mongo" or "postgres"
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout int // seconds
}

// DatabaseConfig holds PostgreSQL-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// RedisConfig holds the product cache settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      int // seconds
}

// MediaConfig holds media storage configuration.
type MediaConfig struct {
	Backend   string // "local" or "s3"
	Root      string
	UploadDir string
	CodesDir  string
}

// S3Config holds AWS S3 configuration for the s3 media backend.
type S3Config struct {
	Bucket string
	Region string
	Prefix string // Key prefix within bucket (e.g., "shop/")
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
	File   string // optional rotating log file
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Username     string
	Password     string
	PasswordHash string // bcrypt hash, takes precedence over Password
	TokenSecret  string
	TokenTTL     int // seconds
	Required     bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	LoadEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:          getEnv("SERVER_HOST", "0.0.0.0"),
			Port:          getEnvAsInt("SERVER_PORT", 8080),
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://127.0.0.1:8080"),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", DriverMongo),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGO_DATABASE", "shopdb"),
			Collection:     getEnv("MONGO_COLLECTION", "products"),
			ConnectTimeout: getEnvAsInt("MONGO_CONNECT_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "shopdb"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsInt("REDIS_TTL", 300),
		},
		Media: MediaConfig{
			Backend:   getEnv("MEDIA_BACKEND", MediaLocal),
			Root:      getEnv("MEDIA_ROOT", "."),
			UploadDir: getEnv("UPLOAD_DIR", "uploads"),
			CodesDir:  getEnv("CODES_DIR", "codes"),
		},
		S3: S3Config{
			Bucket: getEnv("S3_BUCKET", ""),
			Region: getEnv("S3_REGION", "us-east-1"),
			Prefix: getEnv("S3_PREFIX", ""),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			File:   getEnv("LOG_FILE", ""),
		},
		Auth: AuthConfig{
			Username:     getEnv("AUTH_USERNAME", "admin"),
			Password:     getEnv("AUTH_PASSWORD", "admin123"),
			PasswordHash: getEnv("AUTH_PASSWORD_HASH", ""),
			TokenSecret:  getEnv("AUTH_TOKEN_SECRET", ""),
			TokenTTL:     getEnvAsInt("AUTH_TOKEN_TTL", 3600),
			Required:     getEnvAsBool("AUTH_REQUIRED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	base, err := url.Parse(c.Server.PublicBaseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return fmt.Errorf("invalid public base URL: %q (must be an absolute http or https URL)", c.Server.PublicBaseURL)
	}

	switch c.Store.Driver {
	case DriverMongo:
		if err := c.Mongo.validate(); err != nil {
			return err
		}
	case DriverPostgres:
		if err := c.Database.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be mongo or postgres)", c.Store.Driver)
	}

	if c.Redis.Addr != "" {
		if c.Redis.DB < 0 {
			return fmt.Errorf("invalid redis db: %d", c.Redis.DB)
		}
		if c.Redis.TTL < 1 {
			return fmt.Errorf("redis TTL must be at least 1 second")
		}
	}

	if err := c.Media.validate(); err != nil {
		return err
	}

	if c.Media.Backend == MediaS3 {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when the s3 media backend is selected")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when the s3 media backend is selected")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Auth.Username == "" {
		return fmt.Errorf("auth username is required")
	}

	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		return fmt.Errorf("auth password or password hash is required")
	}

	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("auth token secret is required")
	}

	if c.Auth.TokenTTL < 1 {
		return fmt.Errorf("auth token TTL must be at least 1 second")
	}

	return nil
}

func (c *MongoConfig) validate() error {
	if c.URI == "" {
		return fmt.Errorf("mongo URI is required")
	}
	if c.Database == "" {
		return fmt.Errorf("mongo database is required")
	}
	if c.Collection == "" {
		return fmt.Errorf("mongo collection is required")
	}
	if c.ConnectTimeout < 1 {
		return fmt.Errorf("mongo connect timeout must be at least 1 second")
	}
	return nil
}

func (c *DatabaseConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Port)
	}

	if c.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	return nil
}

// reservedRoutes are first path segments served by the API itself.
var reservedRoutes = map[string]bool{"health": true, "auth": true, "products": true, "scan": true}

func (c *MediaConfig) validate() error {
	if c.Backend != MediaLocal && c.Backend != MediaS3 {
		return fmt.Errorf("invalid media backend: %s (must be local or s3)", c.Backend)
	}
	if c.Backend == MediaLocal && c.Root == "" {
		return fmt.Errorf("media root is required for the local media backend")
	}
	for name, dir := range map[string]string{"upload": c.UploadDir, "codes": c.CodesDir} {
		if dir == "" || dir == "." || dir == ".." || strings.ContainsAny(dir, `/\`) {
			return fmt.Errorf("invalid %s directory: %q (must be a single path segment)", name, dir)
		}
		if reservedRoutes[dir] {
			return fmt.Errorf("invalid %s directory: %q clashes with an API route", name, dir)
		}
	}
	if c.UploadDir == c.CodesDir {
		return fmt.Errorf("upload and codes directories must differ")
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Timeout returns the connect timeout as a duration.
func (c *MongoConfig) Timeout() time.Duration {
	return time.Duration(c.ConnectTimeout) * time.Second
}

// Enabled reports whether the Redis cache is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// Expiration returns the cache TTL as a duration.
func (c *RedisConfig) Expiration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// TokenLifetime returns the token TTL as a duration.
func (c *AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
