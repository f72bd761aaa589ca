package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/eringen/pubsite/scaffold"
)

func (i *InitCmd) Run() error {
	created, err := scaffold.InitSite(i.Dir, i.Name, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Creating new pubsite project in %s\n\n", i.Dir)
	for _, p := range created {
		fmt.Printf("  created %s\n", p)
	}
	fmt.Println()
	fmt.Println("Done! Next steps:")
	fmt.Println()
	if i.Dir != "." {
		fmt.Printf("  cd %s\n", i.Dir)
	}
	fmt.Println("  pubsite serve")
	fmt.Println()
	return nil
}

// NewPostCmd writes a blog entry skeleton.
type NewPostCmd struct {
	Title       string   `arg:"" help:"Post title"`
	Slug        string   `help:"Slug (derived from the title when empty)"`
	Description string   `short:"d" help:"Post description"`
	Tags        []string `short:"t" name:"tag" help:"Tag slug, repeatable"`
	Repository  string   `help:"Demo repository name"`
}

func (n *NewPostCmd) Run(cli *CLI) error {
	cfg, err := cli.siteConfig()
	if err != nil {
		return err
	}
	path, err := scaffold.NewPost(cfg.ContentDir, n.Slug, scaffold.PostData{
		Title:       n.Title,
		Description: n.Description,
		Tags:        n.Tags,
		Repository:  n.Repository,
	}, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("created %s\n", filepath.ToSlash(path))
	return nil
}

// NewTagCmd writes a tag skeleton.
type NewTagCmd struct {
	Slug  string `arg:"" help:"Tag slug"`
	Title string `help:"Display title (defaults to the slug)"`
}

func (n *NewTagCmd) Run(cli *CLI) error {
	cfg, err := cli.siteConfig()
	if err != nil {
		return err
	}
	path, err := scaffold.NewTag(cfg.ContentDir, n.Slug, scaffold.TagData{Title: n.Title})
	if err != nil {
		return err
	}
	fmt.Printf("created %s\n", filepath.ToSlash(path))
	return nil
}
