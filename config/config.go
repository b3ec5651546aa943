package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/skinlens/backend/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Safety    SafetyConfig
	Matching  MatchingConfig
	Logging   LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
	// AdminToken guards catalog reload and upload; required in production
	AdminToken     string   `mapstructure:"admin_token"`
}

// CatalogConfig holds product inventory configuration. Path and URL are
// alternatives; when both are set the URL wins.
type CatalogConfig struct {
	Path         string        `mapstructure:"path"`
	URL          string        `mapstructure:"url"`
	Watch        bool          `mapstructure:"watch"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`

	// Consecutive failed fetches before the inventory circuit opens
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP     int `mapstructure:"per_ip"`    // requests per minute per client IP
	Inventory int `mapstructure:"inventory"` // remote inventory fetches per hour
}

// SafetyConfig holds product safety configuration
type SafetyConfig struct {
	SensitivityPolicy string `mapstructure:"sensitivity_policy"` // "strict" or "permissive"
}

// MatchingConfig holds routine matching configuration. The tables override
// the built-in defaults entry by entry.
type MatchingConfig struct {
	Seed                 int64               `mapstructure:"seed"`
	IncludeNotes         bool                `mapstructure:"include_notes"`
	MaxSensitiveConcerns int                 `mapstructure:"max_sensitive_concerns"`
	EnableDebugLogging   bool                `mapstructure:"enable_debug_logging"`
	StepLabels           map[string][]string `mapstructure:"step_labels"`
	StepKeywords         map[string][]string `mapstructure:"step_keywords"`
	ConcernKeywords      map[string][]string `mapstructure:"concern_keywords"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Mode string `mapstructure:"mode"` // "development" or "production"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/skinlens/")

	// Environment variable settings: SKINLENS_SERVER_PORT -> server.port
	v.SetEnvPrefix("SKINLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile exports variables from a .env file in the working directory.
// Variables already present in the environment are left alone.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return err
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.admin_token", "")

	// Catalog defaults
	v.SetDefault("catalog.path", "data/skincare_products.csv")
	v.SetDefault("catalog.url", "")
	v.SetDefault("catalog.watch", false)
	v.SetDefault("catalog.fetch_timeout", "30s")
	v.SetDefault("catalog.breaker_failures", 3)
	v.SetDefault("catalog.breaker_timeout", "1m")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "1h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 120)
	v.SetDefault("ratelimit.inventory", 60)

	// Safety defaults
	v.SetDefault("safety.sensitivity_policy", "strict")

	// Matching defaults
	v.SetDefault("matching.seed", 0)
	v.SetDefault("matching.include_notes", false)
	v.SetDefault("matching.max_sensitive_concerns", 2)
	v.SetDefault("matching.enable_debug_logging", false)

	// Logging defaults
	v.SetDefault("logging.mode", "development")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Environment == "production" && config.Server.AdminToken == "" {
		return fmt.Errorf("an admin token is required in production (set SKINLENS_SERVER_ADMIN_TOKEN)")
	}

	if config.Catalog.Path == "" && config.Catalog.URL == "" {
		return fmt.Errorf("a catalog source is required (set SKINLENS_CATALOG_PATH or SKINLENS_CATALOG_URL)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	switch strings.ToLower(config.Safety.SensitivityPolicy) {
	case "strict", "permissive":
	default:
		return fmt.Errorf("sensitivity policy must be 'strict' or 'permissive', got: %s", config.Safety.SensitivityPolicy)
	}

	for _, table := range []map[string][]string{config.Matching.StepLabels, config.Matching.StepKeywords} {
		for name := range table {
			if _, ok := domain.ParseStep(name); !ok {
				return fmt.Errorf("unknown routine step in matching config: %s", name)
			}
		}
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("rate limit per IP must not be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
