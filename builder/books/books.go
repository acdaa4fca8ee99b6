// Package books resolves the content/books/<locale> tree: one directory per
// book holding a meta.json record and a chapters/ subdirectory of markdown
// files.
//
// Same contract as the blog service: fresh reads on every call, not-found
// resolves to nil or empty, malformed meta.json or front matter propagates
// as an error.
package books

import (
	"encoding/json"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"folio/builder/config"
	"folio/builder/models"
	"folio/builder/parser"
)

const metaFile = "meta.json"

// bookMetaFile is the meta.json schema. ID, Subtitle, UpdatedDate,
// CoverImage and Tags are optional.
type bookMetaFile struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	Author        string   `json:"author"`
	PublishedDate string   `json:"publishedDate"`
	UpdatedDate   string   `json:"updatedDate"`
	Description   string   `json:"description"`
	CoverImage    string   `json:"coverImage"`
	Tags          []string `json:"tags"`
}

// Service answers read-only queries over the books content tree.
type Service struct {
	fs      afero.Fs
	dir     string
	locales []string
	md      *parser.Pipeline
}

func NewService(fs afero.Fs, cfg *config.Config, md *parser.Pipeline) *Service {
	return &Service{
		fs:      fs,
		dir:     path.Join(cfg.ContentDir, "books"),
		locales: cfg.Locales,
		md:      md,
	}
}

func (s *Service) localeDir(locale string) string {
	return path.Join(s.dir, locale)
}

func (s *Service) bookDir(slug, locale string) string {
	return path.Join(s.dir, locale, slug)
}

func (s *Service) chaptersDir(slug, locale string) string {
	return path.Join(s.bookDir(slug, locale), "chapters")
}

// filterValidBookDirs keeps only subdirectories that contain a meta.json.
// A directory without one is not a book at all: authors park drafts there
// and they stay invisible until the metadata file lands.
func filterValidBookDirs(bfs afero.Fs, localeDir string, entries []fs.FileInfo) ([]string, error) {
	var slugs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		ok, err := afero.Exists(bfs, path.Join(localeDir, entry.Name(), metaFile))
		if err != nil {
			return nil, err
		}
		if ok {
			slugs = append(slugs, entry.Name())
		}
	}
	return slugs, nil
}

// ListBooks returns every valid book under a locale, sorted by published
// date descending. A locale with no directory yields an empty list.
func (s *Service) ListBooks(locale string) ([]models.BookMeta, error) {
	dir := s.localeDir(locale)
	exists, err := afero.DirExists(s.fs, dir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []models.BookMeta{}, nil
	}

	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, err
	}
	slugs, err := filterValidBookDirs(s.fs, dir, entries)
	if err != nil {
		return nil, err
	}

	books := make([]models.BookMeta, 0, len(slugs))
	for _, slug := range slugs {
		meta, err := s.readMeta(slug, locale)
		if err != nil {
			return nil, err
		}
		count, err := s.countChapters(slug, locale)
		if err != nil {
			return nil, err
		}
		bm := newBookMeta(slug, locale, meta)
		bm.ChapterCount = count
		books = append(books, bm)
	}

	// Published dates are parsed, not string-compared.
	sort.SliceStable(books, func(i, j int) bool {
		return parseDate(books[i].PublishedDate).After(parseDate(books[j].PublishedDate))
	})
	return books, nil
}

// GetBook fetches a book with its chapter stubs (front matter only, no
// chapter content), or nil when the metadata file is absent. Chapters sort
// by ascending order; a chapter without an order field gets its 1-based
// position among the files as read.
func (s *Service) GetBook(slug, locale string) (*models.Book, error) {
	exists, err := afero.Exists(s.fs, path.Join(s.bookDir(slug, locale), metaFile))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	meta, err := s.readMeta(slug, locale)
	if err != nil {
		return nil, err
	}

	chapters, err := s.listChapterStubs(slug, locale)
	if err != nil {
		return nil, err
	}

	return &models.Book{
		BookMeta: newBookMeta(slug, locale, meta),
		Chapters: chapters,
	}, nil
}

// GetChapter fetches a single chapter including its rendered body, or nil
// when the file does not exist. Without book context there is no positional
// default: a missing order field stays 0 here, unlike the full-book
// listing. Both behaviors are pinned by tests.
func (s *Service) GetChapter(bookSlug, chapterSlug, locale string) (*models.Chapter, error) {
	file := path.Join(s.chaptersDir(bookSlug, locale), chapterSlug+".md")
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
	var fm parser.ChapterFrontMatter
	body, err := parser.SplitFrontMatter(src, &fm)
	if err != nil {
		return nil, err
	}
	content, err := s.md.Render(body)
	if err != nil {
		return nil, err
	}

	id := fm.ID
	if id == "" {
		id = chapterSlug
	}
	return &models.Chapter{
		ID:      id,
		Slug:    chapterSlug,
		Title:   fm.Title,
		Order:   fm.Order,
		Content: content,
	}, nil
}

// ListAllSlugs enumerates every valid book across all supported locales.
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
		slugs, err := filterValidBookDirs(s.fs, dir, entries)
		if err != nil {
			return nil, err
		}
		for _, slug := range slugs {
			refs = append(refs, models.SlugRef{Slug: slug, Locale: locale})
		}
	}
	return refs, nil
}

// ListAllChapterSlugs enumerates every chapter of every valid book across
// all supported locales.
func (s *Service) ListAllChapterSlugs() ([]models.ChapterRef, error) {
	books, err := s.ListAllSlugs()
	if err != nil {
		return nil, err
	}
	var refs []models.ChapterRef
	for _, b := range books {
		files, err := s.chapterFiles(b.Slug, b.Locale)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			refs = append(refs, models.ChapterRef{
				BookSlug:    b.Slug,
				ChapterSlug: strings.TrimSuffix(f, ".md"),
				Locale:      b.Locale,
			})
		}
	}
	return refs, nil
}

// ListBooksByTag filters a locale's books to those tagged with tag.
// Matching is exact and case-sensitive.
func (s *Service) ListBooksByTag(tag, locale string) ([]models.BookMeta, error) {
	books, err := s.ListBooks(locale)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.BookMeta, 0, len(books))
	for _, b := range books {
		for _, t := range b.Tags {
			if t == tag {
				filtered = append(filtered, b)
				break
			}
		}
	}
	return filtered, nil
}

// ListTags returns the deduplicated, alphabetically sorted tag set of a
// locale's books.
func (s *Service) ListTags(locale string) ([]string, error) {
	books, err := s.ListBooks(locale)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	tags := []string{}
	for _, b := range books {
		for _, t := range b.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

func (s *Service) readMeta(slug, locale string) (bookMetaFile, error) {
	var meta bookMetaFile
	data, err := afero.ReadFile(s.fs, path.Join(s.bookDir(slug, locale), metaFile))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, err
	}
	return meta, nil
}

// chapterFiles lists the markdown filenames of a book's chapters directory,
// empty when the directory is absent.
func (s *Service) chapterFiles(slug, locale string) ([]string, error) {
	dir := s.chaptersDir(slug, locale)
	exists, err := afero.DirExists(s.fs, dir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		files = append(files, entry.Name())
	}
	return files, nil
}

func (s *Service) countChapters(slug, locale string) (int, error) {
	files, err := s.chapterFiles(slug, locale)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

func (s *Service) listChapterStubs(slug, locale string) ([]models.Chapter, error) {
	files, err := s.chapterFiles(slug, locale)
	if err != nil {
		return nil, err
	}

	chapters := make([]models.Chapter, 0, len(files))
	for _, file := range files {
		src, err := afero.ReadFile(s.fs, path.Join(s.chaptersDir(slug, locale), file))
		if err != nil {
			return nil, err
		}
		var fm parser.ChapterFrontMatter
		if _, err := parser.SplitFrontMatter(src, &fm); err != nil {
			return nil, err
		}

		chapterSlug := strings.TrimSuffix(file, ".md")
		id := fm.ID
		if id == "" {
			id = chapterSlug
		}
		order := fm.Order
		if order == 0 {
			order = len(chapters) + 1
		}
		chapters = append(chapters, models.Chapter{
			ID:    id,
			Slug:  chapterSlug,
			Title: fm.Title,
			Order: order,
		})
	}

	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Order < chapters[j].Order
	})
	return chapters, nil
}

// newBookMeta applies meta.json defaulting once, at the parse boundary.
func newBookMeta(slug, locale string, meta bookMetaFile) models.BookMeta {
	id := meta.ID
	if id == "" {
		id = slug
	}
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.BookMeta{
		ID:            id,
		Slug:          slug,
		Title:         meta.Title,
		Subtitle:      meta.Subtitle,
		Author:        meta.Author,
		PublishedDate: meta.PublishedDate,
		UpdatedDate:   meta.UpdatedDate,
		Description:   meta.Description,
		CoverImage:    meta.CoverImage,
		Tags:          tags,
		Locale:        locale,
	}
}

var dateFormats = []string{"2006-01-02", time.RFC3339}

func parseDate(s string) time.Time {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
