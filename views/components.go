package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite/content"
)

// liveReloadScript reconnects to the preview server and reloads the page
// after every rebuild.
const liveReloadScript = `<script>(function(){var u=(location.protocol==="https:"?"wss://":"ws://")+location.host+"/__livereload";function c(){var s=new WebSocket(u);s.onmessage=function(){location.reload()};s.onclose=function(){setTimeout(c,1000)}}c()})();</script>`

// Layout wraps body in the site chrome.
func Layout(cfg SiteConfig, meta PageMeta, body templ.Component) templ.Component {
	return component(func(p *page) {
		title := cfg.Name
		if meta.Title != "" && meta.Title != cfg.Name {
			title = meta.Title + " | " + cfg.Name
		}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`)
		p.text(title)
		p.raw(`</title>`)
		if meta.Description != "" {
			p.raw(`<meta name="description"`)
			p.attr("content", meta.Description)
			p.raw(`>`)
		}
		if meta.URL != "" {
			p.raw(`<link rel="canonical"`)
			p.attr("href", meta.URL)
			p.raw(`><meta property="og:url"`)
			p.attr("content", meta.URL)
			p.raw(`>`)
		}
		p.raw(`<meta property="og:title"`)
		p.attr("content", title)
		p.raw(`><meta property="og:type"`)
		p.attr("content", orDefault(meta.OGType, "website"))
		p.raw(`>`)
		if meta.Image != "" {
			p.raw(`<meta property="og:image"`)
			p.attr("content", meta.Image)
			p.raw(`>`)
		}
		p.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml">`)
		jsonld := meta.JSONLD
		if jsonld == "" {
			jsonld = WebsiteJsonLD(cfg)
		}
		p.raw(`<script type="application/ld+json">` + jsonld + `</script>`)
		if cfg.LiveReload {
			p.raw(liveReloadScript)
		}
		p.raw(`</head><body class="prose dark:prose-invert mx-auto px-4"><nav class="not-prose flex gap-6 py-6"><a href="/" class="font-bold">`)
		p.text(cfg.Name)
		p.raw(`</a></nav><main>`)
		p.render(body)
		p.raw(`</main></body></html>`)
	})
}

// Home lists every post and every tag.
func Home(cfg SiteConfig, posts []content.Post, tags []content.TagEntry) templ.Component {
	body := component(func(p *page) {
		p.raw(`<h1>`)
		p.text(cfg.Name)
		p.raw(`</h1>`)
		if cfg.Description != "" {
			p.raw(`<p>`)
			p.text(cfg.Description)
			p.raw(`</p>`)
		}
		p.raw(`<ul class="not-prose flex gap-4 flex-wrap list-none p-0">`)
		for _, t := range tags {
			p.raw(`<li><a`)
			p.attr("href", content.TagPath(t.Slug))
			p.attr("class", TagClass(false))
			p.raw(`>`)
			p.text(t.Title)
			p.raw(`</a></li>`)
		}
		p.raw(`</ul>`)
		p.render(PostList(posts))
	})
	return Layout(cfg, PageMeta{
		Title:       cfg.Name,
		Description: cfg.Description,
		URL:         BuildURL(cfg.URL),
		OGType:      "website",
	}, body)
}

// PostList renders posts in the given order.
func PostList(posts []content.Post) templ.Component {
	return component(func(p *page) {
		p.raw(`<div class="flex flex-col gap-12">`)
		for _, post := range posts {
			p.render(PostListItem(post))
		}
		p.raw(`</div>`)
	})
}

// PostListItem is one entry of a post listing.
func PostListItem(post content.Post) templ.Component {
	return component(func(p *page) {
		link := post.Path()
		p.raw(`<article class="grid gap-4 grid-cols-1 lg:grid-cols-[320px_auto]"><a`)
		p.attr("href", link)
		p.raw(`><img`)
		p.attr("src", ImageURL(post.Entry.Thumbnail))
		p.raw(` alt="" class="w-full rounded-xl"></a><div class="flex flex-col content-between"><div><h4 class="text-2xl m-0 mb-3"><a`)
		p.attr("href", link)
		p.raw(`>`)
		p.text(post.Entry.Title)
		p.raw(`</a></h4>`)
		p.render(TagList(post.Tags))
		p.raw(`<div class="text-justify mt-2">`)
		p.text(post.Entry.Description)
		p.raw(`</div></div><p class="mt-2 text-orange-400"><a`)
		p.attr("href", link)
		p.raw(`>Read more</a></p></div></article>`)
	})
}

// TagList renders resolved tags in authored order.
func TagList(tags []content.TagReference) templ.Component {
	return component(func(p *page) {
		p.raw(`<div class="flex gap-4">`)
		for _, t := range tags {
			p.render(PostTag(t, false))
		}
		p.raw(`</div>`)
	})
}

// PostTag links a single tag to its index page.
func PostTag(tag content.TagReference, active bool) templ.Component {
	return component(func(p *page) {
		p.raw(`<a`)
		p.attr("href", tag.Path)
		p.attr("class", TagClass(active))
		p.raw(`><span>#</span><span>`)
		p.text(tag.Title)
		p.raw(`</span></a>`)
	})
}

// PostIntro is the header of a post page.
func PostIntro(post content.Post) templ.Component {
	return component(func(p *page) {
		e := post.Entry
		p.raw(`<header class="flex my-20 flex-col gap-12"><div class="grid gap-4 grid-cols-1 lg:grid-cols-[3fr_2fr]"><div class="order-2 lg:order-none"><h1 class="text-4xl m-0 font-bold">`)
		p.text(e.Title)
		p.raw(`</h1><p class="text-justify my-4">`)
		p.text(e.Description)
		p.raw(`</p><p class="text-sm"><time`)
		p.attr("datetime", e.Date.Format("2006-01-02"))
		p.raw(`>`)
		p.text(FormatDate(e.Date))
		p.raw(`</time>`)
		if !e.Modified.Equal(e.Date) {
			p.raw(` &middot; updated <time`)
			p.attr("datetime", e.Modified.Format("2006-01-02"))
			p.raw(`>`)
			p.text(FormatDate(e.Modified))
			p.raw(`</time>`)
		}
		p.raw(`</p>`)
		p.render(TagList(post.Tags))
		p.raw(`</div><img`)
		p.attr("src", ImageURL(e.Thumbnail))
		if e.Thumbnail.Width > 0 {
			p.attr("width", strconv.Itoa(e.Thumbnail.Width))
			p.attr("height", strconv.Itoa(e.Thumbnail.Height))
		}
		p.raw(` class="w-full rounded-xl order-1 lg:order-none" alt=""></div></header>`)
	})
}

// PostPage renders a full post with its related posts.
func PostPage(cfg SiteConfig, post content.Post, related []content.Post) templ.Component {
	body := component(func(p *page) {
		p.raw(`<article>`)
		p.render(PostIntro(post))
		p.render(PostBody(cfg, post.Entry.Body))
		if repo := post.Entry.Repository; repo != nil && *repo != "" {
			p.render(Demo(cfg, DemoProps{Repository: *repo}))
		}
		p.raw(`</article>`)
		if len(related) > 0 {
			p.raw(`<section><h2>Related posts</h2>`)
			p.render(PostList(related))
			p.raw(`</section>`)
		}
	})
	return Layout(cfg, PageMeta{
		Title:       post.Entry.Title,
		Description: post.Entry.Description,
		URL:         AbsURL(cfg.URL, post.Path()),
		OGType:      "article",
		Image:       AbsURL(cfg.URL, ImageURL(post.Entry.Thumbnail)),
		JSONLD:      BlogPostingJsonLD(cfg, post),
	}, body)
}

// TagPage lists the posts carrying one tag.
func TagPage(cfg SiteConfig, tag content.TagEntry, posts []content.Post) templ.Component {
	body := component(func(p *page) {
		p.raw(`<header class="flex items-center gap-4 my-10"><img`)
		p.attr("src", ImageURL(tag.Thumbnail))
		p.raw(` alt="" class="w-16 h-16 rounded"><h1 class="m-0">`)
		p.text(tag.Title)
		p.raw(`</h1></header>`)
		p.render(PostList(posts))
	})
	return Layout(cfg, PageMeta{
		Title:  tag.Title,
		URL:    AbsURL(cfg.URL, content.TagPath(tag.Slug)),
		OGType: "website",
	}, body)
}

// NotFound is the 404 page.
func NotFound(cfg SiteConfig) templ.Component {
	return Layout(cfg, PageMeta{Title: "Not found"}, component(func(p *page) {
		p.raw(`<h1>Page not found</h1><p><a href="/">Back to all posts</a></p>`)
	}))
}

// ServerError is the 500 page.
func ServerError(cfg SiteConfig) templ.Component {
	return Layout(cfg, PageMeta{Title: "Error"}, component(func(p *page) {
		p.raw(`<h1>Something went wrong</h1><p>Please try again later.</p>`)
	}))
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
