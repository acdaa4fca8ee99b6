package generators

import (
	"encoding/xml"
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"folio/builder/models"
)

// SitemapEntries collects the per-locale listings the sitemap covers.
type SitemapEntries struct {
	Posts    map[string][]models.PostMeta // locale -> posts
	Books    map[string][]models.BookMeta // locale -> books
	Chapters []models.ChapterRef
	TagRefs  []models.TagRef
}

// WriteSitemap emits a single sitemap covering every locale's blog, tag,
// book and chapter pages. Revised posts report updatedDate as lastmod.
func WriteSitemap(destFs afero.Fs, destPath, baseURL string, locales []string, entries SitemapEntries) error {
	var urls []models.Url
	urls = append(urls, models.Url{Loc: baseURL + "/"})

	for _, locale := range locales {
		for _, p := range entries.Posts[locale] {
			lastMod := p.Date
			if p.UpdatedDate != "" {
				lastMod = p.UpdatedDate
			}
			urls = append(urls, models.Url{
				Loc:     baseURL + path.Join("/", locale, "blog", p.Slug+".html"),
				LastMod: lastMod,
			})
		}
		for _, b := range entries.Books[locale] {
			lastMod := b.PublishedDate
			if b.UpdatedDate != "" {
				lastMod = b.UpdatedDate
			}
			urls = append(urls, models.Url{
				Loc:     baseURL + path.Join("/", locale, "books", b.Slug+".html"),
				LastMod: lastMod,
			})
		}
	}
	for _, c := range entries.Chapters {
		urls = append(urls, models.Url{
			Loc: baseURL + path.Join("/", c.Locale, "books", c.BookSlug, c.ChapterSlug+".html"),
		})
	}
	for _, t := range entries.TagRefs {
		urls = append(urls, models.Url{
			Loc: baseURL + path.Join("/", t.Locale, "blog", "tag") + "/" + t.Tag + ".html",
		})
	}

	output, err := xml.MarshalIndent(models.UrlSet{Urls: urls}, "", "  ")
	if err != nil {
		return err
	}
	if err := destFs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	return afero.WriteFile(destFs, destPath, []byte(xml.Header+string(output)), 0644)
}
