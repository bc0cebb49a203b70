package dashAuth

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantValid: true},
		{
			name:      "https base url",
			mutate:    func(c *Config) { c.API.BaseURL = "https://api.example.com/api" },
			wantValid: true,
		},
		{
			name:      "empty base url",
			mutate:    func(c *Config) { c.API.BaseURL = "  " },
			wantValid: false,
		},
		{
			name:      "relative base url",
			mutate:    func(c *Config) { c.API.BaseURL = "/api" },
			wantValid: false,
		},
		{
			name:      "ftp base url",
			mutate:    func(c *Config) { c.API.BaseURL = "ftp://example.com" },
			wantValid: false,
		},
		{
			name:      "negative timeout",
			mutate:    func(c *Config) { c.API.RequestTimeout = -time.Second },
			wantValid: false,
		},
		{
			name:      "zero ttl means no expiry",
			mutate:    func(c *Config) { c.Persistence.TTLDays = 0 },
			wantValid: true,
		},
		{
			name:      "negative ttl",
			mutate:    func(c *Config) { c.Persistence.TTLDays = -1 },
			wantValid: false,
		},
		{
			name:      "same keys",
			mutate:    func(c *Config) { c.Persistence.UserKey = c.Persistence.TokenKey },
			wantValid: false,
		},
		{
			name:      "negative leeway",
			mutate:    func(c *Config) { c.Revalidation.Leeway = -time.Second },
			wantValid: false,
		},
		{
			name:      "negative cooldown",
			mutate:    func(c *Config) { c.Resend.Cooldown = -time.Second },
			wantValid: false,
		},
		{
			name: "audit without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "latency without metrics",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.EnableLatencyHistograms = true
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.API.BaseURL != DefaultAPIBaseURL {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.Persistence.TTLDays != 7 {
		t.Fatalf("expected 7 day TTL, got %d", cfg.Persistence.TTLDays)
	}
	if cfg.API.RequestTimeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %s", cfg.API.RequestTimeout)
	}
	if !cfg.Revalidation.RevalidateExpired {
		t.Fatal("expected expired tokens to be revalidated by default")
	}
	if cfg.Resend.Cooldown != time.Minute {
		t.Fatalf("expected 60s cooldown, got %s", cfg.Resend.Cooldown)
	}
}

func TestCookieOptionsProductionForcesSecure(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.CookieOptions().Secure {
		t.Fatal("development cookies should not be Secure by default")
	}
	cfg.Environment = "Production"
	opts := cfg.CookieOptions()
	if !opts.Secure || opts.Path != "/" {
		t.Fatalf("unexpected production cookie options %+v", opts)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DASHAUTH_API_BASE_URL", "https://api.example.com")
	t.Setenv("DASHAUTH_GOOGLE_CLIENT_ID", "cid")
	t.Setenv("DASHAUTH_TTL_DAYS", "0")
	t.Setenv("DASHAUTH_REQUEST_TIMEOUT", "3s")
	t.Setenv("DASHAUTH_REVALIDATE_EXPIRED", "false")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg := LoadConfigFromEnv()
	if cfg.API.BaseURL != "https://api.example.com" || cfg.Google.ClientID != "cid" {
		t.Fatalf("env not applied: %+v", cfg.API)
	}
	if cfg.Persistence.TTLDays != 0 || cfg.API.RequestTimeout != 3*time.Second {
		t.Fatalf("numeric env not applied: ttl=%d timeout=%s", cfg.Persistence.TTLDays, cfg.API.RequestTimeout)
	}
	if cfg.Revalidation.RevalidateExpired {
		t.Fatal("expected revalidation disabled")
	}
	if cfg.Persistence.RedisAddr != "localhost:6379" {
		t.Fatalf("unexpected redis addr %q", cfg.Persistence.RedisAddr)
	}
}

func TestLoadConfigFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("DASHAUTH_TTL_DAYS", "seven")
	t.Setenv("DASHAUTH_REQUEST_TIMEOUT", "soon")

	cfg := LoadConfigFromEnv()
	if cfg.Persistence.TTLDays != DefaultTTLDays || cfg.API.RequestTimeout != 15*time.Second {
		t.Fatalf("malformed env should keep defaults, got ttl=%d timeout=%s",
			cfg.Persistence.TTLDays, cfg.API.RequestTimeout)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashauth.yaml")
	body := []byte(`
environment: production
api:
  base_url: https://file.example.com/api
  request_timeout: 5s
persistence:
  ttl_days: 30
google:
  client_id: from-file
audit:
  enabled: true
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DASHAUTH_GOOGLE_CLIENT_ID", "from-env")

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if !cfg.Production() || cfg.API.BaseURL != "https://file.example.com/api" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.API.RequestTimeout != 5*time.Second || cfg.Persistence.TTLDays != 30 {
		t.Fatalf("unexpected timeout/ttl %s/%d", cfg.API.RequestTimeout, cfg.Persistence.TTLDays)
	}
	if cfg.Google.ClientID != "from-env" {
		t.Fatalf("env should override file, got %q", cfg.Google.ClientID)
	}
	if cfg.Audit.BufferSize != 256 || cfg.Persistence.TokenKey != defaultTokenKey {
		t.Fatal("missing keys should keep defaults")
	}
}

func TestLoadConfigFileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("api:\n  base_url: nope\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Fatal("expected invalid base url to fail")
	}
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing file to fail")
	}
}
