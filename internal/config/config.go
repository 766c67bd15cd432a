// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultJWTSecret     = "your-secret-key-change-in-production"
	defaultAdminPassword = "admin123"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Session     SessionConfig
	Pricing     PricingConfig
	Inventory   InventoryConfig
	Report      ReportConfig
	AWS         AWSConfig
	Admin       AdminConfig
	I18n        I18nConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
	UploadDir    string
}

type DatabaseConfig struct {
	// URL selects PostgreSQL. When empty the store falls back to a local SQLite file.
	URL          string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

type SessionConfig struct {
	CookieName       string
	RememberDuration int // in days
	Secure           bool
}

type PricingConfig struct {
	ExchangeRate float64
	Margin       float64
	RoundingUnit float64
}

type InventoryConfig struct {
	LowStockThreshold int
	PriceSearchWindow float64
}

type ReportConfig struct {
	LowStockThreshold int
	DefaultWindowDays int
	TopN              int
	Timezone          string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
}

type AdminConfig struct {
	Username string
	Password string
}

type I18nConfig struct {
	DefaultLocale string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	GeneralPerSecond int
	AuthPerMinute    int
	UploadPerMinute  int
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
			UploadDir:    getEnv("UPLOAD_DIR", "./uploads"),
		},
		Database: DatabaseConfig{
			URL:          getEnv("DATABASE_URL", ""),
			SQLitePath:   getEnv("DB_SQLITE_PATH", "zuzi_store.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24),
		},
		Session: SessionConfig{
			CookieName:       getEnv("SESSION_COOKIE_NAME", "session"),
			RememberDuration: getEnvAsInt("SESSION_REMEMBER_DAYS", 30),
			Secure:           getEnvAsBool("SESSION_COOKIE_SECURE", false),
		},
		Pricing: PricingConfig{
			ExchangeRate: getEnvAsFloat("PRICING_EXCHANGE_RATE", 1400),
			Margin:       getEnvAsFloat("PRICING_MARGIN", 7000),
			RoundingUnit: getEnvAsFloat("PRICING_ROUNDING_UNIT", 1000),
		},
		Inventory: InventoryConfig{
			LowStockThreshold: getEnvAsInt("INVENTORY_LOW_STOCK_THRESHOLD", 1),
			PriceSearchWindow: getEnvAsFloat("INVENTORY_PRICE_SEARCH_WINDOW", 5000),
		},
		Report: ReportConfig{
			LowStockThreshold: getEnvAsInt("REPORT_LOW_STOCK_THRESHOLD", 2),
			DefaultWindowDays: getEnvAsInt("REPORT_DEFAULT_WINDOW_DAYS", 30),
			TopN:              getEnvAsInt("REPORT_TOP_N", 5),
			Timezone:          getEnv("APP_TIMEZONE", "Local"),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "zuzi-store-images"),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: getEnv("ADMIN_PASSWORD", defaultAdminPassword),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		RateLimit: RateLimitConfig{
			GeneralPerSecond: getEnvAsInt("RATE_LIMIT_GENERAL_PER_SECOND", 10),
			AuthPerMinute:    getEnvAsInt("RATE_LIMIT_AUTH_PER_MINUTE", 5),
			UploadPerMinute:  getEnvAsInt("RATE_LIMIT_UPLOAD_PER_MINUTE", 10),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.JWT.SecretKey == defaultJWTSecret {
			return errors.New("JWT secret key must be changed in production")
		}
		if c.Admin.Password == defaultAdminPassword {
			return errors.New("default admin password must be changed in production")
		}
	}

	if c.Pricing.ExchangeRate <= 0 {
		return fmt.Errorf("pricing exchange rate must be positive, got %v", c.Pricing.ExchangeRate)
	}
	if c.Pricing.RoundingUnit <= 0 {
		return fmt.Errorf("pricing rounding unit must be positive, got %v", c.Pricing.RoundingUnit)
	}
	if c.Pricing.Margin < 0 {
		return fmt.Errorf("pricing margin must not be negative, got %v", c.Pricing.Margin)
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Report.Timezone, err)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Location resolves the timezone used for report windows and daily buckets.
func (c *Config) Location() (*time.Location, error) {
	if c.Report.Timezone == "" || c.Report.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Report.Timezone)
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
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

func getEnvAsSlice(key string, defaultValue []string) []string {
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
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
