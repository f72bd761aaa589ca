package views

import (
	"fmt"
	"strconv"

	"github.com/a-h/templ"
)

// DemoProps describes a live demo deployed from a repository branch.
type DemoProps struct {
	Repository string
	Branch     string
	Height     int
}

func (d DemoProps) branch() string {
	if d.Branch == "" {
		return "master"
	}
	return d.Branch
}

// DemoURL is the per-branch deployment of the demo repository.
func DemoURL(cfg SiteConfig, d DemoProps) string {
	host := orDefault(cfg.DemoHost, "netlify.app")
	if cfg.GitHubOrg == "" {
		return fmt.Sprintf("https://%s--%s.%s/", d.branch(), d.Repository, host)
	}
	return fmt.Sprintf("https://%s--%s-%s.%s/", d.branch(), d.Repository, cfg.GitHubOrg, host)
}

// GitHubURL links to the demo's source tree.
func GitHubURL(cfg SiteConfig, d DemoProps) string {
	return fmt.Sprintf("https://github.com/%s/%s/tree/%s", cfg.GitHubOrg, d.Repository, d.branch())
}

// StackBlitzURL opens the demo repository in StackBlitz.
func StackBlitzURL(cfg SiteConfig, d DemoProps) string {
	return fmt.Sprintf("https://stackblitz.com/~/github/%s/%s/tree/%s", cfg.GitHubOrg, d.Repository, d.branch())
}

// Demo embeds a deployed demo with links to its source.
func Demo(cfg SiteConfig, d DemoProps) templ.Component {
	height := d.Height
	if height <= 0 {
		height = 400
	}
	demo := DemoURL(cfg, d)
	return component(func(p *page) {
		p.raw(`<figure class="not-prose flex flex-col my-8"><iframe`)
		p.attr("src", demo)
		p.attr("sandbox", "allow-scripts allow-same-origin allow-modals allow-forms")
		p.attr("height", strconv.Itoa(height))
		p.attr("title", d.Repository)
		p.raw(` loading="lazy" class="w-full min-h-[100px] border"></iframe><figcaption><ul class="flex justify-end gap-4 list-none text-sm p-1 my-0">`)
		link := func(href, label string) {
			p.raw(`<li><a`)
			p.attr("href", href)
			p.raw(` target="_blank" rel="noopener">`)
			p.text(label)
			p.raw(`</a></li>`)
		}
		if cfg.GitHubOrg != "" {
			link(GitHubURL(cfg, d), "GitHub")
		}
		link(demo, "New window")
		if cfg.GitHubOrg != "" {
			link(StackBlitzURL(cfg, d), "StackBlitz")
		}
		p.raw(`</ul></figcaption></figure>`)
	})
}
