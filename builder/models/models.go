// defines the data structures shared by the query services, generators and templates
package models

import "encoding/xml"

// PostMeta is the front-matter and derived data of one blog post,
// scoped to the locale it was found under.
type PostMeta struct {
	Slug        string
	Title       string
	Excerpt     string
	Date        string // ISO yyyy-mm-dd, primary sort key
	UpdatedDate string // empty unless the post was revised
	Tags        []string
	Author      string // empty means no author
	Locale      string
}

// Post is PostMeta plus the rendered body.
type Post struct {
	PostMeta
	Content string // rendered HTML
}

// BookMeta is one entry of a book listing.
type BookMeta struct {
	ID            string // meta.json id, else the directory slug
	Slug          string
	Title         string
	Subtitle      string
	Author        string
	PublishedDate string
	UpdatedDate   string
	Description   string
	CoverImage    string // empty triggers the gradient cover fallback
	Tags          []string
	Locale        string
	ChapterCount  int
}

// Book is BookMeta plus its chapter stubs (no chapter content).
type Book struct {
	BookMeta
	Chapters []Chapter
}

// Chapter is one markdown file under a book's chapters/ directory.
// Content is only populated by the single-chapter fetch.
type Chapter struct {
	ID      string
	Slug    string
	Title   string
	Order   int
	Content string
}

// PostPage is one window of a paginated blog listing.
type PostPage struct {
	Posts      []PostMeta
	TotalPages int
}

// SlugRef identifies one post or book for static path generation.
type SlugRef struct {
	Slug   string
	Locale string
}

// ChapterRef identifies one book chapter for static path generation.
type ChapterRef struct {
	BookSlug    string
	ChapterSlug string
	Locale      string
}

// TagRef identifies one tag page for static path generation.
// Tag is percent-encoded since tags may contain spaces and symbols.
type TagRef struct {
	Tag    string
	Locale string
}

// --- Sitemap Structures ---

type UrlSet struct {
	XMLName xml.Name `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	Urls    []Url    `xml:"url"`
}

type Url struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// --- RSS Structures ---

type Rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel Channel  `xml:"channel"`
}

type Channel struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Language    string `xml:"language,omitempty"`
	Items       []Item `xml:"item"`
}

type Item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Guid        string `xml:"guid"`
}
