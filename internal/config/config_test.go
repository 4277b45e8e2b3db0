package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasim8799/api/internal/delivery"
)

const testConfigYAML = `
auth:
  api_key: "file-api-key-0123456789"
encryption:
  secret: "file-secret"
delivery:
  policy: "strict"
  cache_ttl: "15s"
  default_provider: "cdnA"
  providers:
    - id: "cdnA"
      probe_url: "https://cdn-a.example.com/health"
      match: ["cdn-a.example.com", "cdn-a-backup.example.com"]
    - id: "cdnB"
      probe_url: "https://cdn-b.example.com/health"
      timeout: "2s"
      match: ["cdn-b.example.com"]
`

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("CONFIG_FILE", path)
	for _, name := range []string{"PORT", "SECRET_API_KEY", "ENCRYPTION_SECRET", "MONGO_URI", "REDIS_ENABLED", "APP_ENV"} {
		t.Setenv(name, "")
	}
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	writeConfig(t, testConfigYAML)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "file-api-key-0123456789", cfg.Auth.APIKey)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.Window)

	assert.Equal(t, "strict", cfg.Delivery.Policy)
	assert.Equal(t, 15*time.Second, cfg.Delivery.CacheTTL)
	assert.True(t, cfg.Delivery.SingleFlight)
	require.Len(t, cfg.Delivery.Providers, 2)
	assert.Equal(t, 5*time.Second, cfg.Delivery.Providers[0].Timeout)
	assert.Equal(t, 2*time.Second, cfg.Delivery.Providers[1].Timeout)

	assert.Equal(t, "salt", cfg.Encryption.Salt)
	assert.Equal(t, "1234567890abcdef", cfg.Encryption.IV)
	assert.Equal(t, "aes-256-cbc", cfg.Encryption.Algorithm)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	writeConfig(t, testConfigYAML)
	t.Setenv("SECRET_API_KEY", "legacy-key")
	t.Setenv("ENCRYPTION_SECRET", "legacy-secret")
	t.Setenv("PORT", "7070")
	t.Setenv("APP_DELIVERY_POLICY", "permissive")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "legacy-key", cfg.Auth.APIKey)
	assert.Equal(t, "legacy-secret", cfg.Encryption.Secret)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "permissive", cfg.Delivery.Policy)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"missing api key": `
encryption:
  secret: "s"
`,
		"missing encryption secret": `
auth:
  api_key: "k"
`,
		"bad policy": `
auth:
  api_key: "k"
encryption:
  secret: "s"
delivery:
  policy: "lenient"
`,
		"short iv": `
auth:
  api_key: "k"
encryption:
  secret: "s"
  iv: "short"
`,
		"duplicate provider": `
auth:
  api_key: "k"
encryption:
  secret: "s"
delivery:
  providers:
    - id: "cdnA"
      probe_url: "https://a.example.com"
      match: ["a.example.com"]
    - id: "cdnA"
      probe_url: "https://b.example.com"
      match: ["b.example.com"]
`,
		"proxy target without token": `
auth:
  api_key: "k"
encryption:
  secret: "s"
proxy:
  api_target: "https://api.example.com"
`,
		"relative proxy target": `
auth:
  api_key: "k"
encryption:
  secret: "s"
proxy:
  token: "t"
  video_target: "videos.example.com"
`,
		"provider without patterns": `
auth:
  api_key: "k"
encryption:
  secret: "s"
delivery:
  providers:
    - id: "cdnA"
      probe_url: "https://a.example.com"
`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			writeConfig(t, content)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_Proxy(t *testing.T) {
	writeConfig(t, `
auth:
  api_key: "k"
encryption:
  secret: "s"
proxy:
  video_target: "https://videos.example.com"
`)
	t.Setenv("SECRET_TOKEN", "proxy-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "proxy-secret", cfg.Proxy.Token)
	assert.Equal(t, "https://videos.example.com", cfg.Proxy.VideoTarget)
	assert.Empty(t, cfg.Proxy.APITarget)
}

func TestConfig_DeliveryViews(t *testing.T) {
	writeConfig(t, testConfigYAML)
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []delivery.Target{
		{ID: "cdnA", URL: "https://cdn-a.example.com/health", Timeout: 5 * time.Second},
		{ID: "cdnB", URL: "https://cdn-b.example.com/health", Timeout: 2 * time.Second},
	}, cfg.ProbeTargets())

	assert.Equal(t, []delivery.Rule{
		{Provider: "cdnA", Match: "cdn-a.example.com"},
		{Provider: "cdnA", Match: "cdn-a-backup.example.com"},
		{Provider: "cdnB", Match: "cdn-b.example.com"},
	}, cfg.ClassifierRules())

	assert.Equal(t, delivery.ResolverConfig{Policy: delivery.PolicyStrict, DefaultProvider: "cdnA"}, cfg.ResolverConfig())
	assert.Equal(t, "file-secret", cfg.CipherConfig().Secret)
}

func TestValidateAndFixConfig(t *testing.T) {
	writeConfig(t, testConfigYAML)
	cfg, err := LoadConfig()
	require.NoError(t, err)

	cfg.Server.ReadTimeout = time.Millisecond
	cfg.Logging.Level = "verbose"
	cfg.Delivery.DefaultProvider = "nowhere"

	warnings := ValidateAndFixConfig(cfg)

	assert.Equal(t, time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Contains(t, warnings, `Default provider "nowhere" is not a configured provider`)
}

func TestWriteDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "configs")
	require.NoError(t, WriteDefaultConfig(dir))

	data, err := os.ReadFile(filepath.Join(dir, "app.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "policy: \"permissive\"")

	// Existing files are left alone.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte("custom: true\n"), 0644))
	require.NoError(t, WriteDefaultConfig(dir))
	data, err = os.ReadFile(filepath.Join(dir, "app.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "custom: true\n", string(data))
}
