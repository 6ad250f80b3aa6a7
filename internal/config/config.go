package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
// This centralizes default values and descriptions in one place.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// The provided Viper instance is mutated with defaults, file contents, and env.
func Load(ctx context.Context, v *viper.Viper) error {
	// Configure Viper search paths. If SetConfigFile was provided upstream,
	// it takes precedence; these paths are harmless fallbacks.
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "foliage"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "foliage"))
		}
		v.AddConfigPath(".")
	}

	// Apply centralized defaults (lowest precedence)
	applyDefaults(v)

	// Read config file if present (overrides defaults)
	_ = v.ReadInConfig()

	// Environment variables: FOLIAGE_* (highest among these sources)
	v.SetEnvPrefix("foliage")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Normalize a few dependent values post-merge
	if v.GetString("data_dir") == "" {
		v.Set("data_dir", defaultDataDir())
	}
	if strings.TrimSpace(v.GetString("cache.path")) == "" {
		v.Set("cache.path", ResolveCachePath(v))
	}

	// Allow comma-separated env override for promo.domains
	if len(v.GetStringSlice("promo.domains")) == 0 {
		if s := strings.TrimSpace(v.GetString("promo.domains")); s != "" {
			parts := strings.Split(s, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				d := strings.TrimSpace(p)
				if d != "" {
					out = append(out, d)
				}
			}
			if len(out) > 0 {
				v.Set("promo.domains", out)
			}
		}
	}
	return nil
}

// defaultDataDir resolves default data dir: $XDG_DATA_HOME/foliage or ~/.local/share/foliage
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "foliage")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "foliage")
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "foliage", "config.toml")
}

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the default configuration options and their meanings.
// This is the single source of truth for default values and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		// Core paths and conventions
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; article cache is data_dir/foliage.db"},
		{Key: "http_addr", Default: ":8080", Comment: "HTTP listen address for the site"},

		{Key: "cms.base_url", Default: "", Comment: "Base URL of the headless CMS service, e.g. https://example.microcms.io"},
		{Key: "cms.api_key", Default: "", Comment: "API key sent with every CMS request"},
		{Key: "cms.api_key_header", Default: "X-API-KEY", Comment: "Header name the CMS expects the API key in"},
		{Key: "cms.endpoint", Default: "articles", Comment: "Collection endpoint under /api/v1/"},
		{Key: "cms.timeout", Default: "20s", Comment: "HTTP timeout for CMS requests"},
		{Key: "cms.page_size", Default: 100, Comment: "Batch size when paging through the CMS article list"},

		{Key: "site.title", Default: "Foliage", Comment: "Site title shown in the header and <title>"},
		{Key: "site.description", Default: "", Comment: "Site description for the index meta tags"},
		{Key: "site.per_page", Default: 12, Comment: "Articles per page on the index"},
		{Key: "site.default_view", Default: "card", Comment: "Index layout when no cookie/param is set: card|list"},

		{Key: "promo.domains", Default: []string{}, Comment: "Hosts whose links get campaign parameters and promo styling"},
		{Key: "promo.utm_source", Default: "blog", Comment: "utm_source appended to promo links"},
		{Key: "promo.utm_campaign", Default: "promo", Comment: "utm_campaign appended to promo links"},

		{Key: "refresh.interval", Default: "5m", Comment: "How often the article snapshot is refreshed from the CMS"},
		{Key: "refresh.max_backoff", Default: "30m", Comment: "Backoff ceiling when CMS refresh keeps failing"},
		{Key: "refresh.stale_after", Default: "1h", Comment: "Age after which the served snapshot is flagged as stale"},

		{Key: "cache.path", Default: "", Comment: "Override for the sqlite article cache path (default data_dir/foliage.db)"},

		{Key: "tls.addr", Default: ":443", Comment: "HTTPS listen address when TLS is enabled"},
		{Key: "tls.domain", Default: "", Comment: "Domain for automatic certificates; empty disables auto-TLS"},
		{Key: "tls.email", Default: "", Comment: "ACME account email"},
		{Key: "tls.ca", Default: "", Comment: "ACME CA directory URL; empty uses Let's Encrypt production"},
		{Key: "tls.http01", Default: true, Comment: "Answer HTTP-01 challenges on :80 (also redirects plain HTTP)"},
		{Key: "tls.cert_file", Default: "", Comment: "PEM certificate for BYO TLS (with tls.key_file)"},
		{Key: "tls.key_file", Default: "", Comment: "PEM key for BYO TLS (with tls.cert_file)"},
	}
}

// ResolveCachePath uses data_dir and defaults to return the sqlite cache file path.
func ResolveCachePath(v *viper.Viper) string {
	if p := strings.TrimSpace(v.GetString("cache.path")); p != "" {
		return p
	}
	dir := v.GetString("data_dir")
	if dir == "" {
		dir = defaultDataDir()
	}
	// Expand ~ for convenience
	if len(dir) > 0 && dir[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[1:])
		}
	}
	return filepath.Join(dir, "foliage.db")
}
