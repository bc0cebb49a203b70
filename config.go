package dashAuth

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/dashAuth/session"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIBaseURL is used when no base URL is configured.
	DefaultAPIBaseURL = "http://192.168.18.89:4000/api"
	// DefaultTTLDays is the lifetime of both persisted records.
	DefaultTTLDays = 7
	// ResendCooldown is the default wait between verification code resends.
	ResendCooldown = 60 * time.Second

	EnvProduction = "production"
)

// Config defines every tunable of an Engine.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Environment  string             `yaml:"environment"`
	API          APIConfig          `yaml:"api"`
	Persistence  PersistenceConfig  `yaml:"persistence"`
	Google       GoogleConfig       `yaml:"google"`
	Revalidation RevalidationConfig `yaml:"revalidation"`
	Resend       ResendConfig       `yaml:"resend"`
	Cookie       CookieConfig       `yaml:"cookie"`
	Audit        AuditConfig        `yaml:"audit"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig points the transport at the backend.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	UserAgent      string        `yaml:"user_agent"`
	Tracing        bool          `yaml:"tracing"`
}

/*
====================================
PERSISTENCE CONFIG
====================================
*/

// PersistenceConfig controls how the credential record is stored. RedisAddr
// and DatabaseURL are only read by hosts that open those backends; the
// Engine itself takes a ready session.Store.
type PersistenceConfig struct {
	TTLDays     int    `yaml:"ttl_days"`
	TokenKey    string `yaml:"token_key"`
	UserKey     string `yaml:"user_key"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
	Namespace   string `yaml:"namespace"`
	DatabaseURL string `yaml:"database_url"`
	Table       string `yaml:"table"`
}

/*
====================================
GOOGLE / REVALIDATION / RESEND
====================================
*/

// GoogleConfig enables Google sign-in when ClientID is set. The flag is
// resolved once at Build.
type GoogleConfig struct {
	ClientID string `yaml:"client_id"`
}

// RevalidationConfig controls whether hydration distrusts a cached user whose
// JWT access token has already expired.
type RevalidationConfig struct {
	RevalidateExpired bool          `yaml:"revalidate_expired"`
	Leeway            time.Duration `yaml:"leeway"`
}

type ResendConfig struct {
	Cooldown time.Duration `yaml:"cooldown"`
}

// CookieConfig applies to session.CookieStore instances built by the
// middleware package.
type CookieConfig struct {
	Path   string `yaml:"path"`
	Domain string `yaml:"domain"`
	Secure bool   `yaml:"secure"`
}

/*
====================================
AUDIT / METRICS
====================================
*/

type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Environment: "development",
		API: APIConfig{
			BaseURL:        DefaultAPIBaseURL,
			RequestTimeout: 15 * time.Second,
			UserAgent:      "dashauth",
		},
		Persistence: PersistenceConfig{
			TTLDays:     DefaultTTLDays,
			TokenKey:    defaultTokenKey,
			UserKey:     defaultUserKey,
			RedisPrefix: "dashauth",
			Namespace:   "default",
			Table:       "dashauth_kv",
		},
		Revalidation: RevalidationConfig{
			RevalidateExpired: true,
			Leeway:            30 * time.Second,
		},
		Resend: ResendConfig{
			Cooldown: ResendCooldown,
		},
		Cookie: CookieConfig{
			Path: "/",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

// Production reports whether the environment is production.
func (c Config) Production() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// CookieOptions derives session cookie attributes. Production forces Secure.
func (c Config) CookieOptions() session.CookieConfig {
	out := session.DefaultCookieConfig()
	if c.Cookie.Path != "" {
		out.Path = c.Cookie.Path
	}
	out.Domain = c.Cookie.Domain
	out.Secure = c.Cookie.Secure || c.Production()
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("API BaseURL must be set")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("API BaseURL must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("API BaseURL scheme must be http or https")
	}
	if c.API.RequestTimeout < 0 {
		return errors.New("API RequestTimeout must be >= 0")
	}

	if c.Persistence.TTLDays < 0 {
		return errors.New("Persistence TTLDays must be >= 0")
	}
	if c.Persistence.TokenKey != "" && c.Persistence.TokenKey == c.Persistence.UserKey {
		return errors.New("Persistence TokenKey and UserKey must differ")
	}

	if c.Revalidation.Leeway < 0 {
		return errors.New("Revalidation Leeway must be >= 0")
	}
	if c.Resend.Cooldown < 0 {
		return errors.New("Resend Cooldown must be >= 0")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

// LoadConfigFromEnv starts from the defaults and applies environment
// overrides.
func LoadConfigFromEnv() Config {
	cfg := defaultConfig()
	applyEnv(&cfg)
	return cfg
}

// LoadConfigFile reads a YAML file over the defaults, then applies
// environment overrides. Missing keys keep their defaults.
func LoadConfigFile(path string) (Config, error) {
	cfg := defaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.API.BaseURL = getEnv("DASHAUTH_API_BASE_URL", cfg.API.BaseURL)
	cfg.API.RequestTimeout = getDurationEnv("DASHAUTH_REQUEST_TIMEOUT", cfg.API.RequestTimeout)
	cfg.Google.ClientID = getEnv("DASHAUTH_GOOGLE_CLIENT_ID", cfg.Google.ClientID)
	cfg.Environment = getEnv("DASHAUTH_ENV", cfg.Environment)
	cfg.Persistence.TTLDays = getIntEnv("DASHAUTH_TTL_DAYS", cfg.Persistence.TTLDays)
	cfg.Persistence.RedisAddr = getEnv("REDIS_ADDR", cfg.Persistence.RedisAddr)
	cfg.Persistence.DatabaseURL = getEnv("DATABASE_URL", cfg.Persistence.DatabaseURL)
	cfg.Revalidation.RevalidateExpired = getBoolEnv("DASHAUTH_REVALIDATE_EXPIRED", cfg.Revalidation.RevalidateExpired)
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}
