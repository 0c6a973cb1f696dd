package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	GSI1IndexName string // maps entry ids back to items
	EventBusName  string

	// Lambda configuration
	IsLambda bool

	// Cache configuration
	CacheListTTL   time.Duration
	CacheSearchTTL time.Duration

	// Search configuration
	SearchWindow   int
	SearchLimit    int
	DebounceQuiet  time.Duration
	ThrottleWindow time.Duration

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Rate limiting
	RateLimitPerMinute int

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableCORS    bool

	// Runtime overrides file, watched when set
	OverridesPath string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", "daybook"),
		GSI1IndexName: getEnv("GSI1_INDEX_NAME", "EntryIdIndex"),
		EventBusName:  getEnv("EVENT_BUS_NAME", "daybook-events"),

		IsLambda: getEnvBool("IS_LAMBDA", false),

		CacheListTTL:   getEnvDuration("CACHE_LIST_TTL", 2*time.Minute),
		CacheSearchTTL: getEnvDuration("CACHE_SEARCH_TTL", 5*time.Minute),

		SearchWindow:   getEnvInt("SEARCH_WINDOW", 500),
		SearchLimit:    getEnvInt("SEARCH_LIMIT", 50),
		DebounceQuiet:  getEnvDuration("DEBOUNCE_QUIET", 300*time.Millisecond),
		ThrottleWindow: getEnvDuration("THROTTLE_WINDOW", 500*time.Millisecond),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "daybook"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),

		OverridesPath: getEnv("CONFIG_OVERRIDES_PATH", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
	}
	if c.CacheListTTL <= 0 || c.CacheSearchTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.SearchWindow <= 0 {
		return fmt.Errorf("SEARCH_WINDOW must be positive")
	}
	if c.SearchLimit <= 0 {
		return fmt.Errorf("SEARCH_LIMIT must be positive")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
