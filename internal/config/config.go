// Package config loads server configuration from defaults, an optional YAML file and
// PROFILE_FRAMES_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables; the first underscore after it
// separates the section from the key (PROFILE_FRAMES_HTTP_READ_TIMEOUT -> http.read_timeout).
const EnvPrefix = "PROFILE_FRAMES_"

type Config struct {
	HTTP      HTTPConfig      `koanf:"http"`
	Log       LogConfig       `koanf:"log"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Frames    FramesConfig    `koanf:"frames"`
	Signer    SignerConfig    `koanf:"signer"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Site      SiteConfig      `koanf:"site"`
	Secret    string          `koanf:"secret"`
}

type HTTPConfig struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	// ProxyBaseURL is how the server reaches its own /frames routes.
	// Derived from Addr when empty.
	ProxyBaseURL  string `koanf:"proxy_base_url"`
	SecureCookies bool   `koanf:"secure_cookies"`
	// DevSessions enables POST /session, which lets anyone claim a viewer address
	DevSessions bool `koanf:"dev_sessions"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type DatabaseConfig struct {
	URL string `koanf:"url"` // empty uses the in-memory store
}

type CacheConfig struct {
	RedisURL   string        `koanf:"redis_url"` // empty uses the in-process cache
	Prefix     string        `koanf:"prefix"`
	RecordsTTL time.Duration `koanf:"records_ttl"`
	MountTTL   time.Duration `koanf:"mount_ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

type FramesConfig struct {
	FetchTimeout      time.Duration `koanf:"fetch_timeout"`
	MaxBodyBytes      int64         `koanf:"max_body_bytes"`
	AllowPrivateHosts bool          `koanf:"allow_private_hosts"`
	UserAgent         string        `koanf:"user_agent"`
}

type SignerConfig struct {
	ImpersonateFID int64  `koanf:"impersonate_fid"`
	Scheme         string `koanf:"scheme"` // ed25519, schnorr
}

type TelemetryConfig struct {
	Exporter    string `koanf:"exporter"` // none, stdout, otlp
	Endpoint    string `koanf:"endpoint"`
	Insecure    bool   `koanf:"insecure"`
	ServiceName string `koanf:"service_name"`
}

type SiteConfig struct {
	Name        string `koanf:"name"`
	TitleFormat string `koanf:"title_format"` // {title} and {siteName} are substituted
	Description string `koanf:"description"`
	Stylesheet  string `koanf:"stylesheet"`
	ThemeColor  string `koanf:"theme_color"`
	// Scripts are deferred script URLs. The default is the bundled HelmJS client
	// (static/helm.js) that turns the section's forms into fragment swaps; it must be
	// served from this origin to satisfy the script-src policy.
	Scripts []string `koanf:"scripts"`
}

var defaults = map[string]any{
	"http.addr":              ":8080",
	"http.read_timeout":      "10s",
	"http.write_timeout":     "30s",
	"http.idle_timeout":      "60s",
	"http.dev_sessions":      true,
	"log.level":              "info",
	"log.format":             "json",
	"cache.prefix":           "pf:",
	"cache.records_ttl":      "5m",
	"cache.mount_ttl":        "30m",
	"cache.max_entries":      10000,
	"frames.fetch_timeout":   "5s",
	"frames.max_body_bytes":  512 * 1024,
	"frames.user_agent":      "profile-frames/1.0",
	"signer.impersonate_fid": 1,
	"signer.scheme":          "ed25519",
	"telemetry.exporter":     "none",
	"telemetry.service_name": "profile-frames",
	"site.name":              "Profiles",
	"site.title_format":      "{title} - {siteName}",
	"site.description":       "Username profiles with embedded frames",
	"site.stylesheet":        "/static/style.css",
	"site.theme_color":       "#ffffff",
	"site.scripts":           []string{"/static/helm.js"},
}

// Load reads configuration. path may be empty.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	for key, v := range defaults {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.HTTP.ProxyBaseURL == "" {
		cfg.HTTP.ProxyBaseURL = baseURLFromAddr(cfg.HTTP.Addr)
	}
	cfg.HTTP.ProxyBaseURL = strings.TrimRight(cfg.HTTP.ProxyBaseURL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if s == "config" {
		// consumed by the binaries to find the file
		return ""
	}
	return strings.Replace(s, "_", ".", 1)
}

// Validate rejects combinations the server cannot run with
func (c *Config) Validate() error {
	var errs []error
	switch c.Telemetry.Exporter {
	case "none", "stdout", "otlp":
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter: unknown exporter %q", c.Telemetry.Exporter))
	}
	switch c.Signer.Scheme {
	case "ed25519", "schnorr":
	default:
		errs = append(errs, fmt.Errorf("signer.scheme: unknown scheme %q", c.Signer.Scheme))
	}
	if c.Frames.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("frames.max_body_bytes must be positive"))
	}
	if c.Cache.MountTTL <= 0 {
		errs = append(errs, errors.New("cache.mount_ttl must be positive"))
	}
	return errors.Join(errs...)
}

// baseURLFromAddr turns a listen address into a loopback URL
func baseURLFromAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://127.0.0.1:8080"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// FormatTitle applies the site title format
func (s SiteConfig) FormatTitle(title string) string {
	if title == "" {
		return s.Name
	}
	out := strings.ReplaceAll(s.TitleFormat, "{title}", title)
	return strings.ReplaceAll(out, "{siteName}", s.Name)
}
