// Package blog resolves the content/blog/<locale> tree into typed records.
//
// Every operation re-reads the backing store; nothing is cached between
// calls. Missing locales, slugs and files resolve to empty collections or
// nil, never errors. Malformed front matter is an authoring error and
// propagates.
package blog

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"folio/builder/config"
	"folio/builder/models"
	"folio/builder/parser"
)

// Service answers read-only queries over the blog content tree.
type Service struct {
	fs      afero.Fs
	dir     string
	locales []string
	md      *parser.Pipeline
}

func NewService(fs afero.Fs, cfg *config.Config, md *parser.Pipeline) *Service {
	return &Service{
		fs:      fs,
		dir:     path.Join(cfg.ContentDir, "blog"),
		locales: cfg.Locales,
		md:      md,
	}
}

func (s *Service) localeDir(locale string) string {
	return path.Join(s.dir, locale)
}

// ListPosts returns every post under a locale, front matter only, sorted by
// date descending. A locale with no directory yields an empty list.
func (s *Service) ListPosts(locale string) ([]models.PostMeta, error) {
	dir := s.localeDir(locale)
	exists, err := afero.DirExists(s.fs, dir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []models.PostMeta{}, nil
	}

	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, err
	}

	posts := make([]models.PostMeta, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ".md")

		src, err := afero.ReadFile(s.fs, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		var fm parser.PostFrontMatter
		if _, err := parser.SplitFrontMatter(src, &fm); err != nil {
			return nil, err
		}
		posts = append(posts, newPostMeta(slug, locale, fm))
	}

	// ISO date strings compare lexicographically in chronological order.
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date > posts[j].Date
	})
	return posts, nil
}

// GetPost fetches a single post including its rendered body, or nil when
// the file does not exist.
func (s *Service) GetPost(slug, locale string) (*models.Post, error) {
	file := path.Join(s.localeDir(locale), slug+".md")
	exists, err := afero.Exists(s.fs, file)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	src, err := afero.ReadFile(s.fs, file)
	if err != nil {
		return nil, err
	}
	var fm parser.PostFrontMatter
	body, err := parser.SplitFrontMatter(src, &fm)
	if err != nil {
		return nil, err
	}
	content, err := s.md.Render(body)
	if err != nil {
		return nil, err
	}

	return &models.Post{
		PostMeta: newPostMeta(slug, locale, fm),
		Content:  content,
	}, nil
}

// ListAllSlugs enumerates every post across all supported locales for
// static path generation. Locales without a directory contribute nothing.
func (s *Service) ListAllSlugs() ([]models.SlugRef, error) {
	var refs []models.SlugRef
	for _, locale := range s.locales {
		dir := s.localeDir(locale)
		exists, err := afero.DirExists(s.fs, dir)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		entries, err := afero.ReadDir(s.fs, dir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}
			refs = append(refs, models.SlugRef{
				Slug:   strings.TrimSuffix(entry.Name(), ".md"),
				Locale: locale,
			})
		}
	}
	return refs, nil
}

// ListTags returns the deduplicated, alphabetically sorted tag set of a
// locale's posts.
func (s *Service) ListTags(locale string) ([]string, error) {
	posts, err := s.ListPosts(locale)
	if err != nil {
		return nil, err
	}
	return collectTags(posts), nil
}

// ListPostsByTag filters a locale's posts to those tagged with tag.
// Matching is exact and case-sensitive; no normalization.
func (s *Service) ListPostsByTag(tag, locale string) ([]models.PostMeta, error) {
	posts, err := s.ListPosts(locale)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.PostMeta, 0, len(posts))
	for _, p := range posts {
		for _, t := range p.Tags {
			if t == tag {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// TagCountsAcrossLocales aggregates tag occurrence counts over every
// supported locale combined. A post carrying the same tag in two locales
// counts twice; deduplication only happens within a single listing.
func (s *Service) TagCountsAcrossLocales() (map[string]int, error) {
	counts := make(map[string]int)
	for _, locale := range s.locales {
		posts, err := s.ListPosts(locale)
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			for _, t := range p.Tags {
				counts[t]++
			}
		}
	}
	return counts, nil
}

// ListAllTagSlugs enumerates percent-encoded tag page targets across all
// supported locales.
func (s *Service) ListAllTagSlugs() ([]models.TagRef, error) {
	var refs []models.TagRef
	for _, locale := range s.locales {
		tags, err := s.ListTags(locale)
		if err != nil {
			return nil, err
		}
		for _, t := range tags {
			refs = append(refs, models.TagRef{
				Tag:    url.PathEscape(t),
				Locale: locale,
			})
		}
	}
	return refs, nil
}

// ListPaginated slices the full sorted listing into a page window. Pages
// are 1-based; out-of-range pages return an empty slice. Clamping and 404
// decisions belong to the caller.
func (s *Service) ListPaginated(locale string, page, pageSize int) (*models.PostPage, error) {
	posts, err := s.ListPosts(locale)
	if err != nil {
		return nil, err
	}
	if pageSize < 1 {
		pageSize = 1
	}
	totalPages := (len(posts) + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if page < 1 || start >= len(posts) {
		return &models.PostPage{Posts: []models.PostMeta{}, TotalPages: totalPages}, nil
	}
	end := start + pageSize
	if end > len(posts) {
		end = len(posts)
	}
	return &models.PostPage{Posts: posts[start:end], TotalPages: totalPages}, nil
}

// newPostMeta applies front-matter defaulting once, at the parse boundary.
func newPostMeta(slug, locale string, fm parser.PostFrontMatter) models.PostMeta {
	tags := fm.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.PostMeta{
		Slug:        slug,
		Title:       fm.Title,
		Excerpt:     fm.Excerpt,
		Date:        fm.Date,
		UpdatedDate: fm.UpdatedDate,
		Tags:        tags,
		Author:      fm.Author,
		Locale:      locale,
	}
}

// collectTags deduplicates and sorts the tags of a listing.
func collectTags(posts []models.PostMeta) []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, p := range posts {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags
}
