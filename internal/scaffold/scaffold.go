// Package scaffold creates new sites, posts and books on disk.
package scaffold

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mozillazg/go-unidecode"
)

const defaultFolioYaml = `# Site configuration
title: "My Folio Site"
description: "A multilingual portfolio"
baseURL: "http://localhost:8080"

contentDir: "content"
outputDir: "public"
themeDir: "theme"
cacheDir: ".folio-cache"

locales: [en, ja, ko, zh, es, fr]
postsPerPage: 10
minify: true
`

const firstPost = `---
title: "Hello World"
date: "%s"
excerpt: "Your first post."
tags:
  - "Welcome"
---

## Welcome

Start writing here. Add translations under content/blog/<locale>/.
`

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify transliterates a title to ASCII and folds it into a URL-safe
// slug, so CJK and accented titles still produce usable filenames.
func Slugify(title string) string {
	s := unidecode.Unidecode(title)
	s = strings.ToLower(s)
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 100 {
		s = strings.Trim(s[:100], "-")
	}
	return s
}

// Init creates the directory skeleton, folio.yaml and a first post in the
// current directory. Existing files are left alone.
func Init() error {
	fmt.Println("Initializing new folio site...")

	for _, dir := range []string{
		filepath.Join("content", "blog", "en"),
		filepath.Join("content", "books", "en"),
		filepath.Join("theme", "static"),
		"public",
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		fmt.Printf("  created %s/\n", dir)
	}

	if err := writeIfAbsent("folio.yaml", []byte(defaultFolioYaml)); err != nil {
		return err
	}
	post := fmt.Sprintf(firstPost, time.Now().Format("2006-01-02"))
	if err := writeIfAbsent(filepath.Join("content", "blog", "en", "hello-world.md"), []byte(post)); err != nil {
		return err
	}

	fmt.Println("Done. Run `folio serve` to preview.")
	return nil
}

// NewPost scaffolds a blog post markdown file for a locale.
func NewPost(title, locale string) error {
	slug := Slugify(title)
	if slug == "" {
		return fmt.Errorf("title %q produces an empty slug", title)
	}

	file := filepath.Join("content", "blog", locale, slug+".md")
	content := fmt.Sprintf(`---
title: %q
date: %q
excerpt: ""
tags: []
---

Start writing here.
`, title, time.Now().Format("2006-01-02"))

	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return err
	}
	if err := writeIfAbsent(file, []byte(content)); err != nil {
		return err
	}
	fmt.Printf("Created %s\n", file)
	return nil
}

// NewBook scaffolds a book directory with meta.json and a first chapter.
func NewBook(title, author, locale string) error {
	slug := Slugify(title)
	if slug == "" {
		return fmt.Errorf("title %q produces an empty slug", title)
	}

	dir := filepath.Join("content", "books", locale, slug)
	if err := os.MkdirAll(filepath.Join(dir, "chapters"), 0755); err != nil {
		return err
	}

	meta := map[string]any{
		"id":            slug,
		"title":         title,
		"author":        author,
		"publishedDate": time.Now().Format("2006-01-02"),
		"description":   "",
		"tags":          []string{},
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := writeIfAbsent(filepath.Join(dir, "meta.json"), append(data, '\n')); err != nil {
		return err
	}

	chapter := `---
id: "chapter-1"
title: "Chapter 1"
order: 1
---

Start writing here.
`
	if err := writeIfAbsent(filepath.Join(dir, "chapters", "chapter-1.md"), []byte(chapter)); err != nil {
		return err
	}
	fmt.Printf("Created %s\n", dir)
	return nil
}

func writeIfAbsent(path string, content []byte) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("  %s already exists, skipping\n", path)
		return nil
	}
	return os.WriteFile(path, content, 0644)
}
