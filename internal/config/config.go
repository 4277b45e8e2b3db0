// Package config provides functionality for loading and accessing application configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ProviderConfig describes one storage/CDN provider links may point at.
type ProviderConfig struct {
	// ID is the provider identifier used in status maps and record hints
	ID string `mapstructure:"id"`
	// ProbeURL is the endpoint checked to decide whether the provider is up
	ProbeURL string `mapstructure:"probe_url"`
	// Timeout bounds a single probe
	Timeout time.Duration `mapstructure:"timeout"`
	// Match lists the host suffixes or URL substrings attributed to this provider
	Match []string `mapstructure:"match"`
}

// Config represents the application configuration
type Config struct {
	// Environment is the current running environment (development, staging, production)
	Environment string `mapstructure:"environment"`

	// Server configuration
	Server struct {
		// Port is the HTTP server port
		Port int `mapstructure:"port"`
		// Host is the HTTP server host
		Host string `mapstructure:"host"`
		// ReadTimeout is the maximum duration for reading the entire request
		ReadTimeout time.Duration `mapstructure:"read_timeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request
		IdleTimeout time.Duration `mapstructure:"idle_timeout"`
		// UseHTTPS indicates whether to enable HTTPS
		UseHTTPS bool `mapstructure:"use_https"`
		// CertFile is the path to the TLS certificate file
		CertFile string `mapstructure:"cert_file"`
		// KeyFile is the path to the TLS key file
		KeyFile string `mapstructure:"key_file"`
	} `mapstructure:"server"`

	// Database configuration
	Database struct {
		// MongoDB configuration
		MongoDB struct {
			// URI is the MongoDB connection URI
			URI string `mapstructure:"uri"`
			// Database is the MongoDB database name
			Database string `mapstructure:"database"`
			// Timeout is the MongoDB operation timeout
			Timeout time.Duration `mapstructure:"timeout"`
			// MaxPoolSize is the maximum number of connections in the connection pool
			MaxPoolSize uint64 `mapstructure:"max_pool_size"`
			// MinPoolSize is the minimum number of connections in the connection pool
			MinPoolSize uint64 `mapstructure:"min_pool_size"`
			// MaxIdleTime is the maximum amount of time a connection can remain idle
			MaxIdleTime time.Duration `mapstructure:"max_idle_time"`
		} `mapstructure:"mongodb"`

		// Redis configuration. Only used for shared rate limiting.
		Redis struct {
			// Enabled switches rate limit counters from memory to Redis
			Enabled bool `mapstructure:"enabled"`
			// Addresses is a list of Redis server addresses
			Addresses []string `mapstructure:"addresses"`
			// Username is the Redis username
			Username string `mapstructure:"username"`
			// Password is the Redis password
			Password string `mapstructure:"password"`
			// Database is the Redis database number
			Database int `mapstructure:"database"`
			// MaxRetries is the maximum number of retries before giving up
			MaxRetries int `mapstructure:"max_retries"`
			// PoolSize is the maximum number of socket connections
			PoolSize int `mapstructure:"pool_size"`
			// MinIdleConns is the minimum number of idle connections
			MinIdleConns int `mapstructure:"min_idle_conns"`
			// DialTimeout is the timeout for establishing new connections
			DialTimeout time.Duration `mapstructure:"dial_timeout"`
			// ReadTimeout is the timeout for socket reads
			ReadTimeout time.Duration `mapstructure:"read_timeout"`
			// WriteTimeout is the timeout for socket writes
			WriteTimeout time.Duration `mapstructure:"write_timeout"`
			// IdleTimeout is the amount of time after which client closes idle connections
			IdleTimeout time.Duration `mapstructure:"idle_timeout"`
		} `mapstructure:"redis"`
	} `mapstructure:"database"`

	// Authentication configuration
	Auth struct {
		// APIKey is the shared key every client sends in the x-api-key header
		APIKey string `mapstructure:"api_key"`
		// JWTSecret signs admin bearer tokens. Empty disables the admin gate on write routes.
		JWTSecret string `mapstructure:"jwt_secret"`
		// TokenExpiry is the lifetime of issued admin tokens
		TokenExpiry time.Duration `mapstructure:"token_expiry"`
		// Issuer is the JWT issuer claim
		Issuer string `mapstructure:"issuer"`
		// AllowedOrigins is a list of allowed CORS origins
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"auth"`

	// RateLimit configuration
	RateLimit struct {
		// Enabled turns per-IP rate limiting on
		Enabled bool `mapstructure:"enabled"`
		// Requests is the number of requests allowed per window
		Requests int `mapstructure:"requests"`
		// Window is the sliding window length
		Window time.Duration `mapstructure:"window"`
	} `mapstructure:"rate_limit"`

	// Delivery configuration
	Delivery struct {
		// CacheTTL is how long a provider health snapshot stays valid
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
		// Policy is either permissive or strict
		Policy string `mapstructure:"policy"`
		// SingleFlight makes concurrent expired reads share one refresh
		SingleFlight bool `mapstructure:"single_flight"`
		// WarmSchedule is a cron spec for background refreshes, empty to disable
		WarmSchedule string `mapstructure:"warm_schedule"`
		// DefaultProvider is reported for records without a provider hint
		DefaultProvider string `mapstructure:"default_provider"`
		// Providers lists the known providers in classification order
		Providers []ProviderConfig `mapstructure:"providers"`
	} `mapstructure:"delivery"`

	// Proxy configuration for the bearer-token reverse proxies
	Proxy struct {
		// Token is the shared bearer secret. Empty leaves the proxies unmounted.
		Token string `mapstructure:"token"`
		// APITarget is the upstream behind /proxy/api
		APITarget string `mapstructure:"api_target"`
		// VideoTarget is the upstream behind /proxy/video
		VideoTarget string `mapstructure:"video_target"`
	} `mapstructure:"proxy"`

	// Encryption configuration for stored link URLs
	Encryption struct {
		// Secret is the passphrase the key is derived from
		Secret string `mapstructure:"secret"`
		// Salt is the key derivation salt
		Salt string `mapstructure:"salt"`
		// IV is the fixed 16-byte initialization vector
		IV string `mapstructure:"iv"`
		// Algorithm is the cipher identifier
		Algorithm string `mapstructure:"algorithm"`
	} `mapstructure:"encryption"`

	// Logging configuration
	Logging struct {
		// Level is the minimum log level
		Level string `mapstructure:"level"`
		// Format is the log format (json or console)
		Format string `mapstructure:"format"`
		// OutputPaths is a list of output paths
		OutputPaths []string `mapstructure:"output_paths"`
		// ErrorOutputPaths is a list of error output paths
		ErrorOutputPaths []string `mapstructure:"error_output_paths"`
		// File enables a rotated JSON log file next to the regular outputs
		File struct {
			Filename   string `mapstructure:"filename"`
			MaxSizeMB  int    `mapstructure:"max_size_mb"`
			MaxBackups int    `mapstructure:"max_backups"`
			MaxAgeDays int    `mapstructure:"max_age_days"`
			Compress   bool   `mapstructure:"compress"`
		} `mapstructure:"file"`
	} `mapstructure:"logging"`
}

// legacyEnv maps configuration keys to the plain environment variable names
// used by existing deployments, in addition to the APP_ prefixed form.
var legacyEnv = map[string]string{
	"auth.api_key":           "SECRET_API_KEY",
	"encryption.secret":      "ENCRYPTION_SECRET",
	"database.mongodb.uri":   "MONGO_URI",
	"server.port":            "PORT",
	"database.redis.enabled": "REDIS_ENABLED",
	"proxy.token":            "SECRET_TOKEN",
}

// LoadConfig loads the configuration from file and environment variables.
// A .env file in the working directory is loaded first when present.
// It looks for a configuration file in the following locations:
// 1. Path specified in the CONFIG_FILE environment variable
// 2. ./configs directory
// 3. ../configs directory
// 4. /etc/catalog-api directory
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Set default values
	setDefaults(v)

	// Configuration file name and type
	v.SetConfigName("app")
	v.SetConfigType("yaml")

	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("/etc/catalog-api")
	}

	if err := v.ReadInConfig(); err != nil {
		// If the configuration file is not found, use environment variables and defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// An explicit CONFIG_FILE is used as is.
	if configFile == "" {
		v.SetConfigName(fmt.Sprintf("app.%s", env))
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to merge environment config file: %w", err)
			}
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, name := range legacyEnv {
		envKey := "APP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, name); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", name, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Environment = env
	applyProviderDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets the default values for the configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.use_https", false)

	// Database defaults
	v.SetDefault("database.mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongodb.database", "catalog")
	v.SetDefault("database.mongodb.timeout", "10s")
	v.SetDefault("database.mongodb.max_pool_size", 100)
	v.SetDefault("database.mongodb.min_pool_size", 5)
	v.SetDefault("database.mongodb.max_idle_time", "60s")

	v.SetDefault("database.redis.enabled", false)
	v.SetDefault("database.redis.addresses", []string{"localhost:6379"})
	v.SetDefault("database.redis.database", 0)
	v.SetDefault("database.redis.max_retries", 3)
	v.SetDefault("database.redis.pool_size", 20)
	v.SetDefault("database.redis.min_idle_conns", 2)
	v.SetDefault("database.redis.dial_timeout", "5s")
	v.SetDefault("database.redis.read_timeout", "3s")
	v.SetDefault("database.redis.write_timeout", "3s")
	v.SetDefault("database.redis.idle_timeout", "300s")

	// Authentication defaults
	v.SetDefault("auth.token_expiry", "12h")
	v.SetDefault("auth.issuer", "catalog-api")
	v.SetDefault("auth.allowed_origins", []string{"*"})

	// Rate limit defaults: 100 requests per 10 minutes per client IP
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "10m")

	// Delivery defaults
	v.SetDefault("delivery.cache_ttl", "10s")
	v.SetDefault("delivery.policy", "permissive")
	v.SetDefault("delivery.single_flight", true)
	v.SetDefault("delivery.warm_schedule", "")
	v.SetDefault("delivery.default_provider", "")

	// Proxy defaults
	v.SetDefault("proxy.token", "")
	v.SetDefault("proxy.api_target", "")
	v.SetDefault("proxy.video_target", "")

	// Encryption defaults
	v.SetDefault("encryption.salt", "salt")
	v.SetDefault("encryption.iv", "1234567890abcdef")
	v.SetDefault("encryption.algorithm", "aes-256-cbc")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_paths", []string{"stdout"})
	v.SetDefault("logging.error_output_paths", []string{"stderr"})
	v.SetDefault("logging.file.max_size_mb", 50)
	v.SetDefault("logging.file.max_backups", 5)
	v.SetDefault("logging.file.max_age_days", 14)
	v.SetDefault("logging.file.compress", true)
}

// applyProviderDefaults fills per-provider defaults viper cannot express for list entries.
func applyProviderDefaults(config *Config) {
	for i := range config.Delivery.Providers {
		p := &config.Delivery.Providers[i]
		if p.Timeout <= 0 {
			p.Timeout = 5 * time.Second
		}
	}
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return errors.New("server port must be between 1 and 65535")
	}

	if config.Server.UseHTTPS {
		if config.Server.CertFile == "" || config.Server.KeyFile == "" {
			return errors.New("TLS certificate and key files must be provided when HTTPS is enabled")
		}
		if _, err := os.Stat(config.Server.CertFile); os.IsNotExist(err) {
			return fmt.Errorf("TLS certificate file not found: %s", config.Server.CertFile)
		}
		if _, err := os.Stat(config.Server.KeyFile); os.IsNotExist(err) {
			return fmt.Errorf("TLS key file not found: %s", config.Server.KeyFile)
		}
	}

	if config.Database.MongoDB.URI == "" {
		return errors.New("MongoDB URI must be set")
	}

	if config.Database.Redis.Enabled && len(config.Database.Redis.Addresses) == 0 {
		return errors.New("at least one Redis address must be provided when Redis is enabled")
	}

	if config.Auth.APIKey == "" {
		return errors.New("API key must be set")
	}

	if config.Encryption.Secret == "" {
		return errors.New("encryption secret must be set")
	}
	if len(config.Encryption.IV) != 16 {
		return fmt.Errorf("encryption IV must be exactly 16 bytes, got %d", len(config.Encryption.IV))
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return errors.New("rate limit requests and window must be positive")
	}

	switch config.Delivery.Policy {
	case "permissive", "strict":
	default:
		return fmt.Errorf("delivery policy must be permissive or strict, got %q", config.Delivery.Policy)
	}

	if config.Delivery.CacheTTL <= 0 {
		return errors.New("delivery cache TTL must be positive")
	}

	seen := make(map[string]bool, len(config.Delivery.Providers))
	for i, p := range config.Delivery.Providers {
		if p.ID == "" {
			return fmt.Errorf("delivery provider %d has no id", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("delivery provider %q is configured twice", p.ID)
		}
		seen[p.ID] = true

		if p.ProbeURL == "" {
			return fmt.Errorf("delivery provider %q has no probe_url", p.ID)
		}
		if len(p.Match) == 0 {
			return fmt.Errorf("delivery provider %q has no match patterns", p.ID)
		}
	}

	for name, target := range map[string]string{"api": config.Proxy.APITarget, "video": config.Proxy.VideoTarget} {
		if target == "" {
			continue
		}
		if config.Proxy.Token == "" {
			return fmt.Errorf("%s proxy target is set but proxy token is empty", name)
		}
		u, err := url.Parse(target)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s proxy target must be an absolute http(s) URL, got %q", name, target)
		}
	}

	return nil
}

// GetConfigString returns a formatted string with the current configuration
func GetConfigString(config *Config) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Environment: %s\n", config.Environment))
	sb.WriteString(fmt.Sprintf("Server: %s:%d\n", config.Server.Host, config.Server.Port))
	sb.WriteString(fmt.Sprintf("MongoDB Database: %s\n", config.Database.MongoDB.Database))
	sb.WriteString(fmt.Sprintf("Redis Rate Limiting: %t\n", config.Database.Redis.Enabled))
	sb.WriteString(fmt.Sprintf("Rate Limit: %d per %s\n", config.RateLimit.Requests, config.RateLimit.Window))
	sb.WriteString(fmt.Sprintf("Delivery Policy: %s (cache TTL %s)\n", config.Delivery.Policy, config.Delivery.CacheTTL))
	sb.WriteString(fmt.Sprintf("Proxies: api=%q video=%q\n", config.Proxy.APITarget, config.Proxy.VideoTarget))
	sb.WriteString("Providers:\n")
	for _, p := range config.Delivery.Providers {
		sb.WriteString(fmt.Sprintf("  %s: %s (timeout %s, match %s)\n", p.ID, p.ProbeURL, p.Timeout, strings.Join(p.Match, ", ")))
	}

	return sb.String()
}

// WriteDefaultConfig writes the default configuration file if it does not exist yet.
func WriteDefaultConfig(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, "app.yaml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("failed to write default config file: %w", err)
	}
	return nil
}

const defaultConfigYAML = `# Catalog API configuration

server:
  port: 5000
  host: "0.0.0.0"
  read_timeout: "15s"
  write_timeout: "30s"
  idle_timeout: "60s"

database:
  mongodb:
    uri: "mongodb://localhost:27017"
    database: "catalog"
    timeout: "10s"
  redis:
    enabled: false
    addresses: ["localhost:6379"]

auth:
  api_key: "" # Must be set in environment (SECRET_API_KEY)
  jwt_secret: "" # Optional, enables admin tokens on write routes
  allowed_origins: ["*"]

rate_limit:
  enabled: true
  requests: 100
  window: "10m"

delivery:
  cache_ttl: "10s"
  policy: "permissive" # or "strict"
  single_flight: true
  warm_schedule: "" # e.g. "@every 30s"
  default_provider: ""
  providers: []
  # - id: "cdnA"
  #   probe_url: "https://cdn-a.example.com/health"
  #   timeout: "5s"
  #   match: ["cdn-a.example.com"]

proxy:
  token: "" # Bearer secret for /proxy/* and /api/proxy-analytics (SECRET_TOKEN)
  api_target: "" # e.g. "https://api.example.com"
  video_target: "" # e.g. "https://videos.example.com"

encryption:
  secret: "" # Must be set in environment (ENCRYPTION_SECRET)
  salt: "salt"
  iv: "1234567890abcdef"
  algorithm: "aes-256-cbc"

logging:
  level: "info"
  format: "json"
  output_paths: ["stdout"]
  error_output_paths: ["stderr"]
`
