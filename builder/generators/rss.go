// Feed and sitemap generation over the query services' listings.
package generators

import (
	"encoding/xml"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"folio/builder/models"
)

// WriteRSS emits one RSS 2.0 feed for a locale's blog listing.
func WriteRSS(destFs afero.Fs, destPath, baseURL, siteTitle, siteDesc, locale string, posts []models.PostMeta) error {
	items := make([]models.Item, 0, len(posts))
	for _, p := range posts {
		link := baseURL + path.Join("/", locale, "blog", p.Slug+".html")
		items = append(items, models.Item{
			Title:       p.Title,
			Link:        link,
			Description: p.Excerpt,
			PubDate:     rssDate(p.Date),
			Guid:        link,
		})
	}
	rss := models.Rss{
		Version: "2.0",
		Channel: models.Channel{
			Title:       siteTitle,
			Link:        baseURL,
			Description: siteDesc,
			Language:    locale,
			Items:       items,
		},
	}

	output, err := xml.MarshalIndent(rss, "", "  ")
	if err != nil {
		return err
	}
	if err := destFs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	return afero.WriteFile(destFs, destPath, []byte(xml.Header+string(output)), 0644)
}

// rssDate formats an ISO date as RFC1123; unparseable dates pass through
// unchanged rather than failing the feed.
func rssDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format(time.RFC1123)
}
