// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Log         LogConfig
	CORS        CORSConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	AWS         AWSConfig
	Catalog     CatalogConfig
	Order       OrderConfig
	Cart        CartConfig
	I18n        I18nConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Storage drivers for the durable cart slot
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageDatabase = "database"
	StorageRedis    = "redis"
	StorageS3       = "s3"
)

type StorageConfig struct {
	Driver     string
	Path       string // directory for the file driver
	CartKey    string
	OverlayKey string
	Timeout    int // in seconds
}

type DatabaseConfig struct {
	Driver       string // "postgres" or "sqlite"
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       int // in hours, 0 keeps keys forever
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	S3Bucket        string
	S3Prefix        string
}

type CatalogConfig struct {
	GraphQLURL string
	File       string
	Timeout    int // in seconds
}

type OrderConfig struct {
	GraphQLURL string
	Timeout    int // in seconds
}

type CartConfig struct {
	RequireAttributes bool
}

type I18nConfig struct {
	DefaultLocale string
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond int
	Burst             int
	CheckoutPerMinute int
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(getEnv("STORAGE_DRIVER", StorageFile)),
			Path:       getEnv("STORAGE_PATH", "./data"),
			CartKey:    getEnv("STORAGE_CART_KEY", "cartItems"),
			OverlayKey: getEnv("STORAGE_OVERLAY_KEY", "cartOverlay"),
			Timeout:    getEnvAsInt("STORAGE_TIMEOUT", 5),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "storefront"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			SQLitePath:   getEnv("DB_SQLITE_PATH", "./data/storefront.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "storefront:"),
			TTL:       getEnvAsInt("REDIS_TTL_HOURS", 0),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", ""),
			S3Prefix:        getEnv("AWS_S3_PREFIX", "carts/"),
		},
		Catalog: CatalogConfig{
			GraphQLURL: getEnv("CATALOG_GRAPHQL_URL", ""),
			File:       getEnv("CATALOG_FILE", ""),
			Timeout:    getEnvAsInt("CATALOG_TIMEOUT", 10),
		},
		Order: OrderConfig{
			GraphQLURL: getEnv("ORDER_GRAPHQL_URL", ""),
			Timeout:    getEnvAsInt("ORDER_TIMEOUT", 15),
		},
		Cart: CartConfig{
			RequireAttributes: getEnvAsBool("CART_REQUIRE_ATTRIBUTES", true),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getEnvAsInt("RATE_LIMIT_RPS", 10),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
			CheckoutPerMinute: getEnvAsInt("RATE_LIMIT_CHECKOUT_PER_MINUTE", 5),
		},
	}

	// The order endpoint usually lives next to the catalog
	if config.Order.GraphQLURL == "" {
		config.Order.GraphQLURL = config.Catalog.GraphQLURL
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageFile:
	case StorageDatabase:
		if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
			return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
		}
		if c.Database.Driver == "postgres" && c.Database.Password == "" && c.Environment == "production" {
			return fmt.Errorf("database password is required in production")
		}
	case StorageRedis:
		if c.Redis.Host == "" {
			return fmt.Errorf("redis host is required for the redis storage driver")
		}
	case StorageS3:
		if c.AWS.S3Bucket == "" {
			return fmt.Errorf("s3 bucket is required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}

	if c.Storage.CartKey == "" || c.Storage.OverlayKey == "" {
		return fmt.Errorf("storage keys must not be empty")
	}
	if c.Storage.CartKey == c.Storage.OverlayKey {
		return fmt.Errorf("cart and overlay storage keys must differ")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
