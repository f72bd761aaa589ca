package pubsite

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubsite/views"
)

const (
	assetRoute      = "/_assets/"
	liveReloadRoute = "/__livereload"
)

func (s *Site) setupRoutes() {
	e := s.Echo

	e.Static("/public", s.staticDir)
	e.GET("/robots.txt", s.handleRobots)
	e.GET("/sitemap.xml", s.handleSitemap)
	e.GET("/feed.xml", s.handleFeed)
	e.GET(assetRoute+"*", s.handleAsset)

	e.GET("/", s.handleHome)
	e.GET("/blog/", handleBlogRedirect)
	e.GET("/blog/:id/", s.handleLegacyPost)
	e.GET("/blog/:id/:slug/", s.handlePost)
	e.GET("/tags/:tag/", s.handleTag)

	e.GET(liveReloadRoute, echo.WrapHandler(s.reload))
	if h, ok := s.recorder.(interface{ Handler() http.Handler }); ok && s.Config.Metrics {
		e.GET("/metrics", echo.WrapHandler(h.Handler()))
	}
}

func (s *Site) viewConfig() views.SiteConfig {
	return s.Config.views(s.preview)
}

func (s *Site) handleHome(c echo.Context) error {
	snap, err := s.Cache.Snapshot(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, views.Home(s.viewConfig(), snap.Posts, snap.Tags))
}

// handlePost serves /blog/:id/:slug/. A known id under a stale slug and a
// retired legacy path both redirect to the canonical path.
func (s *Site) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	id, slug := c.Param("id"), c.Param("slug")
	post, err := s.Cache.GetPost(ctx, id)
	if errors.Is(err, ErrNotFound) {
		if to, rerr := s.Cache.LookupRedirect(ctx, "/blog/"+id+"/"+slug+"/"); rerr == nil {
			return c.Redirect(http.StatusMovedPermanently, to)
		}
		if to, rerr := s.Cache.LookupRedirect(ctx, "/blog/"+id+"/"); rerr == nil {
			return c.Redirect(http.StatusMovedPermanently, to)
		}
		return RenderStatus(c, http.StatusNotFound, views.NotFound(s.viewConfig()))
	}
	if err != nil {
		return err
	}
	if post.Entry.Slug != slug {
		return c.Redirect(http.StatusMovedPermanently, post.Path())
	}
	posts, err := s.Cache.ListPosts(ctx, "")
	if err != nil {
		return err
	}
	return Render(c, views.PostPage(s.viewConfig(), post, relatedPosts(post, posts, maxRelated)))
}

// handleLegacyPost serves /blog/:id/, which only ever redirects.
func (s *Site) handleLegacyPost(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	if to, err := s.Cache.LookupRedirect(ctx, "/blog/"+id+"/"); err == nil {
		return c.Redirect(http.StatusMovedPermanently, to)
	}
	post, err := s.Cache.GetPost(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, views.NotFound(s.viewConfig()))
	}
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusMovedPermanently, post.Path())
}

func (s *Site) handleTag(c echo.Context) error {
	ctx := c.Request().Context()
	tag, err := s.Cache.GetTag(ctx, c.Param("tag"))
	if errors.Is(err, ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, views.NotFound(s.viewConfig()))
	}
	if err != nil {
		return err
	}
	posts, err := s.Cache.ListPosts(ctx, tag.Slug)
	if err != nil {
		return err
	}
	return Render(c, views.TagPage(s.viewConfig(), tag, posts))
}

// handleAsset serves a thumbnail from the content root. Only paths
// referenced by indexed content are exposed.
func (s *Site) handleAsset(c echo.Context) error {
	p := path.Clean(strings.TrimPrefix(c.Param("*"), "/"))
	ok, err := s.Cache.HasAsset(c.Request().Context(), p)
	if err != nil {
		return err
	}
	if !ok {
		return echo.ErrNotFound
	}
	return echo.StaticFileHandler(p, s.fsys)(c)
}

func (s *Site) handleSitemap(c echo.Context) error {
	snap, err := s.Cache.Snapshot(c.Request().Context())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeSitemap(c.Response(), s.Config, snap)
}

func (s *Site) handleFeed(c echo.Context) error {
	snap, err := s.Cache.Snapshot(c.Request().Context())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeFeed(c.Response(), s.Config, snap)
}

func (s *Site) handleRobots(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return writeRobots(c.Response(), s.Config)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (s *Site) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(s.viewConfig()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		s.logger.Error("server error", "uri", c.Request().RequestURI, "error", err)
		_ = RenderStatus(c, code, views.ServerError(s.viewConfig()))
		return
	}
	s.Echo.DefaultHTTPErrorHandler(err, c)
}
