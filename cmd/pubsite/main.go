package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/metrics"
)

// version is set at build time via ldflags.
var version = "dev"

// CLI definition & global flags.
type CLI struct {
	Config     string           `short:"c" help:"Configuration file path" default:"pubsite.toml"`
	EnvFile    string           `name:"env-file" help:"Dotenv file loaded before configuration" default:".env"`
	ContentDir string           `name:"content-dir" help:"Content root (overrides config)"`
	Schema     string           `help:"Content schema version, v1 or v2 (overrides config)"`
	Verbose    bool             `short:"v" help:"Enable verbose logging"`
	Version    kong.VersionFlag `name:"version" help:"Show version and exit"`

	Validate ValidateCmd `cmd:"" help:"Load and validate content without writing anything"`
	Build    BuildCmd    `cmd:"" help:"Write the static site"`
	Serve    ServeCmd    `cmd:"" help:"Serve a live preview that rebuilds on change"`
	Init     InitCmd     `cmd:"" help:"Create a new site"`
	New      NewCmd      `cmd:"" help:"Create a new content record"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if c.EnvFile != "" {
		if err := godotenv.Load(c.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", c.EnvFile, err)
		}
	}
	return nil
}

// siteConfig loads the configuration file and applies global flag overrides.
func (c *CLI) siteConfig() (pubsite.SiteConfig, error) {
	cfg, err := pubsite.LoadConfig(c.Config)
	if err != nil {
		return cfg, err
	}
	if c.ContentDir != "" {
		cfg.ContentDir = c.ContentDir
	}
	if c.Schema != "" {
		cfg.Schema = c.Schema
	}
	return cfg, nil
}

// ValidateCmd loads content and reports every error.
type ValidateCmd struct{}

func (v *ValidateCmd) Run(cli *CLI) error {
	cfg, err := cli.siteConfig()
	if err != nil {
		return err
	}
	schema, err := cfg.SchemaVersion()
	if err != nil {
		return err
	}
	c, err := content.Load(context.Background(), os.DirFS(cfg.ContentDir), content.LoadOptions{
		Schema: schema,
		Logger: slog.Default(),
	})
	if err != nil {
		return err
	}
	fmt.Printf("%d posts, %d tags, %d redirects: ok\n", len(c.Posts), len(c.Tags), len(c.Redirects()))
	return nil
}

// BuildCmd writes the static site.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory (overrides config)"`
}

func (b *BuildCmd) Run(cli *CLI) error {
	cfg, err := cli.siteConfig()
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	site, err := pubsite.New(cfg, pubsite.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer site.Close()
	report, err := site.Build(ctx, b.Output)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %d pages, %d assets, %d redirects to %s\n", report.Pages, report.Assets, report.Redirects, report.OutputDir)
	return nil
}

// ServeCmd runs the preview server.
type ServeCmd struct {
	Addr    string `help:"Listen address (overrides config)"`
	Metrics bool   `help:"Expose Prometheus metrics on /metrics"`
}

func (s *ServeCmd) Run(cli *CLI) error {
	cfg, err := cli.siteConfig()
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Addr = s.Addr
	}
	if s.Metrics {
		cfg.Metrics = true
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := []pubsite.Option{pubsite.WithLogger(slog.Default())}
	if cfg.Metrics {
		opts = append(opts, pubsite.WithRecorder(metrics.NewPrometheus(prometheus.NewRegistry())))
	}
	site, err := pubsite.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer site.Close()
	return site.Serve(ctx)
}

// InitCmd creates a new site skeleton.
type InitCmd struct {
	Dir  string `arg:"" optional:"" help:"Directory to create" default:"."`
	Name string `help:"Site name" default:"My Blog"`
}

// NewCmd groups content record generators.
type NewCmd struct {
	Post NewPostCmd `cmd:"" help:"Create a blog entry with a fresh id"`
	Tag  NewTagCmd  `cmd:"" help:"Create a tag"`
}

// printErrors writes every joined error on its own line.
func printErrors(w io.Writer, err error) {
	errs := content.Unwrap(err)
	for _, e := range errs {
		fmt.Fprintf(w, "error: %v\n", e)
	}
	if len(errs) > 1 {
		fmt.Fprintf(w, "%d errors\n", len(errs))
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pubsite"),
		kong.Description("A static blog engine built with Go, Echo, and templ"),
		kong.UsageOnError(),
		kong.Vars{"version": "pubsite " + version},
	)
	if err := ctx.Run(&cli); err != nil {
		printErrors(os.Stderr, err)
		os.Exit(1)
	}
}
