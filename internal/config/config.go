package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	BackendURL       string
	Port             string
	RequestTimeout   time.Duration // zero means no client-side timeout
	ChartDelay       time.Duration
	RotationInterval time.Duration
	SessionTTL       time.Duration
	TrustedOrigins   []string

	// TrustedProxies lists the proxy addresses whose X-Forwarded-For is honoured.
	TrustedProxies []string
}

// Overrides carries flag values; empty fields are ignored.
type Overrides struct {
	BackendURL string
	Port       string
}

// Load loads configuration from multiple sources with priority:
// 1. Command flags (see LoadWithOverrides)
// 2. Config file (./vidpulse.toml or $XDG_CONFIG_HOME/vidpulse/vidpulse.toml)
// 3. Environment variables
func Load() (*Config, error) {
	return LoadWithOverrides(Overrides{})
}

// LoadWithOverrides loads config and applies flag overrides
func LoadWithOverrides(o Overrides) (*Config, error) {
	v := newBaseViper()
	_ = v.ReadInConfig()
	return buildConfig(v, o), nil
}

func newBaseViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("vidpulse")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	// XDG lookup is done by hand so tests can point XDG_CONFIG_HOME at a temp dir.
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		v.AddConfigPath(filepath.Join(configHome, "vidpulse"))
	}

	return v
}

func buildConfig(v *viper.Viper, o Overrides) *Config {
	cfg := &Config{
		BackendURL:       "http://localhost:5000",
		Port:             "3000",
		ChartDelay:       100 * time.Millisecond,
		RotationInterval: 2 * time.Second,
		SessionTTL:       30 * time.Minute,
		TrustedOrigins:   []string{"localhost"},
	}

	// Config file values
	if v.IsSet("backend_url") {
		cfg.BackendURL = v.GetString("backend_url")
	}
	if v.IsSet("port") {
		cfg.Port = v.GetString("port")
	}
	if v.IsSet("request_timeout") {
		cfg.RequestTimeout = v.GetDuration("request_timeout")
	}
	if v.IsSet("chart_delay") {
		cfg.ChartDelay = v.GetDuration("chart_delay")
	}
	if v.IsSet("rotation_interval") {
		cfg.RotationInterval = v.GetDuration("rotation_interval")
	}
	if v.IsSet("session_ttl") {
		cfg.SessionTTL = v.GetDuration("session_ttl")
	}
	if v.IsSet("trusted_origins") {
		cfg.TrustedOrigins = parseTrustedOrigins(v.GetString("trusted_origins"))
	}
	if v.IsSet("trusted_proxies") {
		cfg.TrustedProxies = parseList(v.GetString("trusted_proxies"))
	}

	// Environment fallback (only if not configured)
	if !v.IsSet("backend_url") {
		if env := os.Getenv("BACKEND_URL"); env != "" {
			cfg.BackendURL = env
		}
	}
	if !v.IsSet("port") {
		if env := os.Getenv("PORT"); env != "" {
			cfg.Port = env
		}
	}
	if !v.IsSet("request_timeout") {
		cfg.RequestTimeout = envDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	}
	if !v.IsSet("chart_delay") {
		cfg.ChartDelay = envDuration("CHART_DELAY", cfg.ChartDelay)
	}
	if !v.IsSet("rotation_interval") {
		cfg.RotationInterval = envDuration("ROTATION_INTERVAL", cfg.RotationInterval)
	}
	if !v.IsSet("session_ttl") {
		cfg.SessionTTL = envDuration("SESSION_TTL", cfg.SessionTTL)
	}
	if !v.IsSet("trusted_origins") {
		if env := os.Getenv("TRUSTED_ORIGINS"); env != "" {
			cfg.TrustedOrigins = parseTrustedOrigins(env)
		}
	}
	if !v.IsSet("trusted_proxies") {
		cfg.TrustedProxies = parseList(os.Getenv("TRUSTED_PROXIES"))
	}

	// Flags last
	if o.BackendURL != "" {
		cfg.BackendURL = o.BackendURL
	}
	if o.Port != "" {
		cfg.Port = o.Port
	}

	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	if cfg.RotationInterval <= 0 {
		cfg.RotationInterval = 2 * time.Second
	}

	return cfg
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

// parseTrustedOrigins parses a comma-separated string into a slice of trimmed, lowercased origins
func parseTrustedOrigins(originsStr string) []string {
	if originsStr == "" {
		return []string{}
	}

	parts := strings.Split(originsStr, ",")
	origins := make([]string, 0, len(parts))

	for _, part := range parts {
		origin, err := SanitizeTrustedDomain(part)
		if err != nil {
			continue
		}
		origins = append(origins, origin)
	}

	return origins
}

// parseList splits a comma-separated string, dropping empty entries.
func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
