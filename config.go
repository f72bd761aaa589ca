package pubsite

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/labstack/echo/v4"

	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/metrics"
	"github.com/eringen/pubsite/views"
)

// DefaultConfigFile is read by LoadConfig when no path is given.
const DefaultConfigFile = "pubsite.toml"

// envPrefix prefixes every environment override, e.g. PUBSITE_URL.
const envPrefix = "PUBSITE_"

// SiteConfig holds all configuration for a pubsite site.
type SiteConfig struct {
	Name        string `toml:"name"`        // Site name (default "Blog")
	URL         string `toml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `toml:"description"` // Site description for RSS and meta tags
	Author      string `toml:"author"`      // Author name for JSON-LD

	GitHubOrg string `toml:"github_org"` // Owner of demo repositories
	DemoHost  string `toml:"demo_host"`  // Demo deployment host (default "netlify.app")

	Schema     string `toml:"schema"`      // Content schema version, "v1" or "v2" (default "v2")
	ContentDir string `toml:"content_dir"` // Content root with blog/ and tags/ (default "content")
	OutputDir  string `toml:"output_dir"`  // Static build output (default "dist")

	Addr         string `toml:"addr"`          // Preview listen address (default ":3000")
	DatabasePath string `toml:"database_path"` // SQLite index path (default "data/content.db")

	CacheTTL time.Duration `toml:"cache_ttl"` // Index cache TTL (default 5min)
	Metrics  bool          `toml:"metrics"`   // Expose /metrics in the preview server
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.DemoHost == "" {
		c.DemoHost = "netlify.app"
	}
	if c.Schema == "" {
		c.Schema = string(content.SchemaV2)
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.OutputDir == "" {
		c.OutputDir = "dist"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/content.db"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
}

// SchemaVersion parses the configured content schema.
func (c SiteConfig) SchemaVersion() (content.SchemaVersion, error) {
	return content.ParseSchemaVersion(c.Schema)
}

func (c SiteConfig) views(liveReload bool) views.SiteConfig {
	return views.SiteConfig{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
		GitHubOrg:   c.GitHubOrg,
		DemoHost:    c.DemoHost,
		LiveReload:  liveReload,
	}
}

// LoadConfig reads path (DefaultConfigFile when empty) if it exists, then
// applies PUBSITE_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path == "" {
		path = DefaultConfigFile
	}
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case err != nil && !os.IsNotExist(err):
		return cfg, err
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.setDefaults()
	if _, err := cfg.SchemaVersion(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *SiteConfig) applyEnv() error {
	strs := map[string]*string{
		"NAME":          &c.Name,
		"URL":           &c.URL,
		"DESCRIPTION":   &c.Description,
		"AUTHOR":        &c.Author,
		"GITHUB_ORG":    &c.GitHubOrg,
		"DEMO_HOST":     &c.DemoHost,
		"SCHEMA":        &c.Schema,
		"CONTENT_DIR":   &c.ContentDir,
		"OUTPUT_DIR":    &c.OutputDir,
		"ADDR":          &c.Addr,
		"DATABASE_PATH": &c.DatabasePath,
	}
	for key, dst := range strs {
		if v := strings.TrimSpace(os.Getenv(envPrefix + key)); v != "" {
			*dst = v
		}
	}
	if v := strings.TrimSpace(os.Getenv(envPrefix + "CACHE_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sCACHE_TTL: %w", envPrefix, err)
		}
		c.CacheTTL = d
	}
	if v := strings.TrimSpace(os.Getenv(envPrefix + "METRICS")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sMETRICS: %w", envPrefix, err)
		}
		c.Metrics = b
	}
	return nil
}

// Option configures additional Site behavior.
type Option func(*Site)

// WithLogger sets the logger used for builds and the preview server.
func WithLogger(l *slog.Logger) Option {
	return func(s *Site) {
		s.logger = l
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes, before the server starts.
func WithCustomRoutes(fn func(*Site)) Option {
	return func(s *Site) {
		s.customRoutes = append(s.customRoutes, fn)
	}
}

// WithStaticDir sets a directory of files copied verbatim into builds and
// served under /public/ in preview (default "public").
func WithStaticDir(dir string) Option {
	return func(s *Site) {
		s.staticDir = dir
	}
}

// WithRecorder sets the build metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Site) {
		s.recorder = r
	}
}

// WithEcho replaces the Echo instance used by Serve.
func WithEcho(e *echo.Echo) Option {
	return func(s *Site) {
		s.Echo = e
	}
}
