// Package testutil builds in-memory content trees for service tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// NewContentFs returns an empty in-memory content filesystem.
func NewContentFs() afero.Fs {
	return afero.NewMemMapFs()
}

// PostSpec describes one blog post fixture.
type PostSpec struct {
	Slug        string
	Title       string
	Date        string
	UpdatedDate string
	Excerpt     string
	Tags        []string
	Author      string
	Body        string
}

// WritePost writes a blog post markdown file with front matter.
func WritePost(t *testing.T, fs afero.Fs, locale string, spec PostSpec) {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "title: %q\n", spec.Title)
	fmt.Fprintf(&sb, "date: %q\n", spec.Date)
	if spec.UpdatedDate != "" {
		fmt.Fprintf(&sb, "updatedDate: %q\n", spec.UpdatedDate)
	}
	fmt.Fprintf(&sb, "excerpt: %q\n", spec.Excerpt)
	if spec.Tags != nil {
		sb.WriteString("tags:\n")
		for _, tag := range spec.Tags {
			fmt.Fprintf(&sb, "  - %q\n", tag)
		}
	}
	if spec.Author != "" {
		fmt.Fprintf(&sb, "author: %q\n", spec.Author)
	}
	sb.WriteString("---\n")
	body := spec.Body
	if body == "" {
		body = "Hello from " + spec.Slug + "."
	}
	sb.WriteString(body)

	writeFile(t, fs, path.Join("content", "blog", locale, spec.Slug+".md"), sb.String())
}

// BookSpec describes one book fixture. WithoutMeta skips meta.json so the
// directory stays invisible to listings.
type BookSpec struct {
	Slug          string
	ID            string
	Title         string
	Subtitle      string
	Author        string
	PublishedDate string
	UpdatedDate   string
	Description   string
	CoverImage    string
	Tags          []string
	WithoutMeta   bool
}

// WriteBook writes a book directory with its meta.json (unless WithoutMeta).
func WriteBook(t *testing.T, fs afero.Fs, locale string, spec BookSpec) {
	t.Helper()

	dir := path.Join("content", "books", locale, spec.Slug)
	if spec.WithoutMeta {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
		return
	}

	meta := map[string]any{
		"title":         spec.Title,
		"author":        spec.Author,
		"publishedDate": spec.PublishedDate,
		"description":   spec.Description,
	}
	if spec.ID != "" {
		meta["id"] = spec.ID
	}
	if spec.Subtitle != "" {
		meta["subtitle"] = spec.Subtitle
	}
	if spec.UpdatedDate != "" {
		meta["updatedDate"] = spec.UpdatedDate
	}
	if spec.CoverImage != "" {
		meta["coverImage"] = spec.CoverImage
	}
	if spec.Tags != nil {
		meta["tags"] = spec.Tags
	}

	data, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("marshal meta for %s: %v", spec.Slug, err)
	}
	writeFile(t, fs, path.Join(dir, "meta.json"), string(data))
}

// ChapterSpec describes one chapter fixture. Order 0 omits the field.
type ChapterSpec struct {
	Slug  string
	ID    string
	Title string
	Order int
	Body  string
}

// WriteChapter writes a chapter markdown file under a book.
func WriteChapter(t *testing.T, fs afero.Fs, locale, bookSlug string, spec ChapterSpec) {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("---\n")
	if spec.ID != "" {
		fmt.Fprintf(&sb, "id: %q\n", spec.ID)
	}
	fmt.Fprintf(&sb, "title: %q\n", spec.Title)
	if spec.Order != 0 {
		fmt.Fprintf(&sb, "order: %d\n", spec.Order)
	}
	sb.WriteString("---\n")
	body := spec.Body
	if body == "" {
		body = "Chapter body."
	}
	sb.WriteString(body)

	writeFile(t, fs, path.Join("content", "books", locale, bookSlug, "chapters", spec.Slug+".md"), sb.String())
}

func writeFile(t *testing.T, fs afero.Fs, p, content string) {
	t.Helper()
	if err := fs.MkdirAll(path.Dir(p), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", path.Dir(p), err)
	}
	if err := afero.WriteFile(fs, p, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
}
