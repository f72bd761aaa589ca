package views

// SiteConfig holds the site-wide settings templates need. Every page
// receives it so nothing is hardcoded.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
	// GitHubOrg owns the demo repositories linked from posts.
	GitHubOrg string
	// DemoHost is the suffix of per-branch demo deployments, e.g.
	// "netlify.app" in https://{branch}--{repo}-{org}.netlify.app/.
	DemoHost string
	// LiveReload adds the preview reload script to every page.
	LiveReload bool
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
	JSONLD      string
}
