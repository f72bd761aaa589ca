// Package pubsite is a static blog engine built with Go, Echo, and templ.
// It loads blog and tag collections from Markdown files, validates and
// resolves them, indexes the result in SQLite, and either writes a static
// site or serves a live preview.
package pubsite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/metrics"
)

// Site is the central pubsite application. It wires together the content
// root, store, cache, metrics, and views.
type Site struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *ContentCache

	schema       content.SchemaVersion
	fsys         fs.FS
	logger       *slog.Logger
	recorder     metrics.Recorder
	staticDir    string
	customRoutes []func(*Site)
	reload       *liveReloadHub
	preview      bool
	setupOnce    sync.Once

	rebuildMu sync.Mutex
	mu        sync.RWMutex
	current   *content.Collections
}

// New creates a Site for cfg and opens its content index.
func New(cfg SiteConfig, opts ...Option) (*Site, error) {
	cfg.setDefaults()
	schema, err := cfg.SchemaVersion()
	if err != nil {
		return nil, fmt.Errorf("pubsite: %w", err)
	}

	s := &Site{
		Config:    cfg,
		schema:    schema,
		staticDir: "public",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.recorder == nil {
		s.recorder = metrics.Noop{}
	}
	if s.fsys == nil {
		s.fsys = os.DirFS(cfg.ContentDir)
	}
	if s.Echo == nil {
		s.Echo = echo.New()
	}

	store, err := NewStore(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("pubsite: init store: %w", err)
	}
	s.Store = store
	s.Cache = NewContentCache(store, cfg.CacheTTL)
	return s, nil
}

// WithContentFS reads content from fsys instead of Config.ContentDir.
// The preview server only watches Config.ContentDir.
func WithContentFS(fsys fs.FS) Option {
	return func(s *Site) {
		s.fsys = fsys
	}
}

// Rebuild loads the content root and, when it is valid, replaces the index.
// On any error the previous index stays in place.
func (s *Site) Rebuild(ctx context.Context) (*content.Collections, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	start := time.Now()
	defer func() { s.recorder.ObserveBuildDuration(time.Since(start)) }()

	c, err := content.Load(ctx, s.fsys, content.LoadOptions{
		Schema: s.schema,
		Logger: s.logger,
	})
	if err != nil {
		s.recordFailure(ctx, err)
		return nil, err
	}
	stats, err := s.Store.Replace(ctx, c)
	if err != nil {
		s.recordFailure(ctx, err)
		return nil, fmt.Errorf("pubsite: update index: %w", err)
	}
	s.Cache.Invalidate()

	s.mu.Lock()
	s.current = c
	s.mu.Unlock()

	s.recorder.SetLoaded(content.CollectionBlog, len(c.Posts))
	s.recorder.SetLoaded(content.CollectionTags, len(c.Tags))
	s.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
	s.logger.Info("Content index updated",
		"posts", len(c.Posts),
		"tags", len(c.Tags),
		"added", stats.Added,
		"changed", stats.Changed,
		"removed", stats.Removed,
		"duration", time.Since(start))
	return c, nil
}

func (s *Site) recordFailure(ctx context.Context, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		s.recorder.IncBuildOutcome(metrics.OutcomeCanceled)
		return
	}
	s.recorder.IncBuildOutcome(metrics.OutcomeFailed)
	counts := make(map[string]int)
	for _, e := range content.Unwrap(err) {
		counts[content.Kind(e)]++
	}
	for kind, n := range counts {
		s.recorder.IncLoadErrors(kind, n)
	}
}

// Collections returns the last successfully loaded content set, or nil.
func (s *Site) Collections() *content.Collections {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Handler prepares middleware and routes without starting a listener.
func (s *Site) Handler() http.Handler {
	s.setupOnce.Do(func() {
		if s.reload == nil {
			s.reload = newLiveReloadHub(s.logger)
		}
		s.setupMiddleware()
		s.setupRoutes()
		for _, fn := range s.customRoutes {
			fn(s)
		}
	})
	return s.Echo
}

// Serve runs the preview server until ctx is canceled. Content changes under
// Config.ContentDir trigger a rebuild and a browser reload. A failed rebuild
// is logged and the last good index keeps being served.
func (s *Site) Serve(ctx context.Context) error {
	s.preview = true
	if _, err := s.Rebuild(ctx); err != nil {
		logBuildError(s.logger, err)
	}
	s.Handler()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := newWatcher(s.Config.ContentDir, s.logger)
	if err != nil {
		return fmt.Errorf("pubsite: watch content: %w", err)
	}
	defer w.Close()
	go w.run(ctx, func(ctx context.Context) {
		if _, err := s.Rebuild(ctx); err != nil {
			logBuildError(s.logger, err)
			return
		}
		s.reload.Broadcast(ctx)
	})

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Preview server listening", "addr", s.Config.Addr)
		if err := s.Echo.Start(s.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.reload.Shutdown()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	return s.Echo.Shutdown(shutdownCtx)
}

// Close cleans up resources. Call this when the site is shutting down.
func (s *Site) Close() error {
	if s.reload != nil {
		s.reload.Shutdown()
	}
	if s.Store != nil {
		return s.Store.Close()
	}
	return nil
}

// logBuildError logs every joined load error on its own record.
func logBuildError(logger *slog.Logger, err error) {
	errs := content.Unwrap(err)
	for _, e := range errs {
		logger.Error("Content error", "kind", content.Kind(e), "error", e)
	}
	logger.Warn("Rebuild failed; keeping last good index", "errors", len(errs))
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
