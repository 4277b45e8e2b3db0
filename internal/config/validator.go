// Package config provides functionality for loading and accessing application configuration.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/jasim8799/api/internal/delivery"
	"github.com/jasim8799/api/internal/utils"
)

// ValidateAndFixConfig checks settings that are legal but suspicious, fixing what it can.
// The returned warnings are meant to be logged at startup.
func ValidateAndFixConfig(config *Config) []string {
	var warnings []string

	if config.Auth.JWTSecret == "" {
		warnings = append(warnings, "JWT secret is not set, write routes are protected by the API key only")
	} else if len(config.Auth.JWTSecret) < 16 {
		warnings = append(warnings, "JWT secret is too short, should be at least 16 characters")
	}

	if len(config.Auth.APIKey) < 16 {
		warnings = append(warnings, "API key is shorter than 16 characters")
	}

	if config.Encryption.IV == delivery.DefaultIV {
		warnings = append(warnings, "Encryption IV is the built-in default; keep it only for compatibility with existing data")
	}

	// Check server timeouts
	minTimeout := 1 * time.Second
	maxTimeout := 5 * time.Minute

	if config.Server.ReadTimeout < minTimeout {
		warnings = append(warnings, fmt.Sprintf("Server read timeout is too short (%v), setting to %v", config.Server.ReadTimeout, minTimeout))
		config.Server.ReadTimeout = minTimeout
	} else if config.Server.ReadTimeout > maxTimeout {
		warnings = append(warnings, fmt.Sprintf("Server read timeout is too long (%v), setting to %v", config.Server.ReadTimeout, maxTimeout))
		config.Server.ReadTimeout = maxTimeout
	}

	if config.Server.WriteTimeout < minTimeout {
		warnings = append(warnings, fmt.Sprintf("Server write timeout is too short (%v), setting to %v", config.Server.WriteTimeout, minTimeout))
		config.Server.WriteTimeout = minTimeout
	} else if config.Server.WriteTimeout > maxTimeout {
		warnings = append(warnings, fmt.Sprintf("Server write timeout is too long (%v), setting to %v", config.Server.WriteTimeout, maxTimeout))
		config.Server.WriteTimeout = maxTimeout
	}

	if config.Server.IdleTimeout < minTimeout {
		warnings = append(warnings, fmt.Sprintf("Server idle timeout is too short (%v), setting to %v", config.Server.IdleTimeout, minTimeout))
		config.Server.IdleTimeout = minTimeout
	}

	if !strings.HasPrefix(config.Database.MongoDB.URI, "mongodb://") && !strings.HasPrefix(config.Database.MongoDB.URI, "mongodb+srv://") {
		warnings = append(warnings, "MongoDB URI is invalid, must start with mongodb:// or mongodb+srv://")
	}

	if config.Database.Redis.Enabled {
		for _, addr := range config.Database.Redis.Addresses {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("Invalid Redis address: %s", addr))
				continue
			}
			if host == "" || port == "" {
				warnings = append(warnings, fmt.Sprintf("Redis address is incomplete: %s", addr))
			}
		}
	}

	// Check delivery configuration
	if len(config.Delivery.Providers) == 0 {
		warnings = append(warnings, "No delivery providers configured, every link will be treated as unknown and always served")
	}

	for _, p := range config.Delivery.Providers {
		u, err := url.Parse(p.ProbeURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			warnings = append(warnings, fmt.Sprintf("Provider %s probe URL is not an http(s) URL: %s", p.ID, p.ProbeURL))
		}
		if p.Timeout > config.Delivery.CacheTTL {
			warnings = append(warnings, fmt.Sprintf("Provider %s probe timeout (%v) exceeds the cache TTL (%v)", p.ID, p.Timeout, config.Delivery.CacheTTL))
		}
	}

	if config.Delivery.DefaultProvider != "" && !hasProvider(config, config.Delivery.DefaultProvider) {
		warnings = append(warnings, fmt.Sprintf("Default provider %q is not a configured provider", config.Delivery.DefaultProvider))
	}

	// Check logging configuration
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	if !validLevels[strings.ToLower(config.Logging.Level)] {
		warnings = append(warnings, fmt.Sprintf("Invalid logging level: %s, setting to 'info'", config.Logging.Level))
		config.Logging.Level = "info"
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[strings.ToLower(config.Logging.Format)] {
		warnings = append(warnings, fmt.Sprintf("Invalid logging format: %s, setting to 'json'", config.Logging.Format))
		config.Logging.Format = "json"
	}

	if name := config.Logging.File.Filename; name != "" {
		dir := filepath.Dir(name)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			warnings = append(warnings, fmt.Sprintf("Log file directory does not exist: %s", dir))
		}
	}

	return warnings
}

func hasProvider(config *Config, id string) bool {
	for _, p := range config.Delivery.Providers {
		if p.ID == id {
			return true
		}
	}
	return false
}

// GetLogLevel converts a string log level to a zap log level
func GetLogLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// LoggerOptions builds the logger configuration.
func (c *Config) LoggerOptions() utils.LoggerOptions {
	opts := utils.LoggerOptions{
		Development:      c.Environment == "development" || strings.EqualFold(c.Logging.Format, "console"),
		Level:            GetLogLevel(c.Logging.Level),
		OutputPaths:      c.Logging.OutputPaths,
		ErrorOutputPaths: c.Logging.ErrorOutputPaths,
	}

	if c.Logging.File.Filename != "" {
		opts.File = &utils.FileSinkOptions{
			Filename:   c.Logging.File.Filename,
			MaxSizeMB:  c.Logging.File.MaxSizeMB,
			MaxBackups: c.Logging.File.MaxBackups,
			MaxAgeDays: c.Logging.File.MaxAgeDays,
			Compress:   c.Logging.File.Compress,
		}
	}

	return opts
}

// CipherConfig returns the link cipher settings.
func (c *Config) CipherConfig() delivery.CipherConfig {
	return delivery.CipherConfig{
		Secret:    c.Encryption.Secret,
		Salt:      c.Encryption.Salt,
		IV:        c.Encryption.IV,
		Algorithm: c.Encryption.Algorithm,
	}
}

// ProbeTargets returns one probe target per configured provider.
func (c *Config) ProbeTargets() []delivery.Target {
	targets := make([]delivery.Target, 0, len(c.Delivery.Providers))
	for _, p := range c.Delivery.Providers {
		targets = append(targets, delivery.Target{
			ID:      delivery.ProviderID(p.ID),
			URL:     p.ProbeURL,
			Timeout: p.Timeout,
		})
	}
	return targets
}

// ClassifierRules flattens the providers' match patterns into an ordered rule table.
func (c *Config) ClassifierRules() []delivery.Rule {
	var rules []delivery.Rule
	for _, p := range c.Delivery.Providers {
		for _, m := range p.Match {
			rules = append(rules, delivery.Rule{Provider: delivery.ProviderID(p.ID), Match: m})
		}
	}
	return rules
}

// ResolverConfig returns the read-path policy settings.
func (c *Config) ResolverConfig() delivery.ResolverConfig {
	return delivery.ResolverConfig{
		Policy:          delivery.Policy(c.Delivery.Policy),
		DefaultProvider: delivery.ProviderID(c.Delivery.DefaultProvider),
	}
}
