// Package build drives a full static build: it walks the query services,
// renders every locale's pages through the template renderer, generates
// placeholder covers, feeds and the sitemap, and processes theme assets.
//
// Caching lives here and only here. Pages whose source bytes are unchanged
// are replayed from the render cache; the query services themselves stay
// stateless.
package build

import (
	"context"
	"flag"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"path"
	"runtime"
	"sync"

	"github.com/spf13/afero"

	"folio/builder/assets"
	"folio/builder/blog"
	"folio/builder/books"
	"folio/builder/cache"
	"folio/builder/config"
	"folio/builder/generators"
	"folio/builder/gradient"
	"folio/builder/metrics"
	"folio/builder/models"
	"folio/builder/parser"
	"folio/builder/render"
	"folio/builder/utils"
)

// Builder wires the services and sinks for one build run.
type Builder struct {
	cfg    *config.Config
	srcFs  afero.Fs
	destFs afero.Fs

	blog     *blog.Service
	books    *books.Service
	renderer *render.Renderer
	cache    *cache.Manager
	metrics  *metrics.BuildMetrics
	log      *slog.Logger

	mu   sync.Mutex
	errs []error
}

// Run is the CLI entry point for `folio build`.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", "folio.yaml", "site configuration file")
	noCache := fs.Bool("no-cache", false, "render every page, ignoring the cache")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	osFs := afero.NewOsFs()
	b, err := New(cfg, osFs, afero.NewBasePathFs(osFs, cfg.OutputDir))
	if err != nil {
		return err
	}
	if !*noCache {
		cm, err := cache.Open(cfg.CacheDir)
		if err != nil {
			b.log.Warn("render cache unavailable, building cold", "error", err)
		} else {
			b.cache = cm
			defer func() { _ = cm.Close() }()
		}
	}

	if err := b.Build(ctx); err != nil {
		return err
	}
	fmt.Println(b.metrics.Summary())
	return nil
}

// New assembles a builder over the given source and destination
// filesystems. The destination is the root the site is written into.
func New(cfg *config.Config, srcFs, destFs afero.Fs) (*Builder, error) {
	// Pages are minified as strings before writing so the cache always
	// stores final bytes; the renderer's writer-level minifier stays off.
	rnd, err := render.New(destFs, nil)
	if err != nil {
		return nil, err
	}

	md := parser.NewPipeline()
	return &Builder{
		cfg:      cfg,
		srcFs:    srcFs,
		destFs:   destFs,
		blog:     blog.NewService(srcFs, cfg, md),
		books:    books.NewService(srcFs, cfg, md),
		renderer: rnd,
		metrics:  metrics.New(),
		log:      slog.Default(),
	}, nil
}

// Metrics exposes the current run's counters.
func (b *Builder) Metrics() *metrics.BuildMetrics { return b.metrics }

// UseCache attaches an opened render cache. Nil (the default) builds cold.
func (b *Builder) UseCache(cm *cache.Manager) { b.cache = cm }

// Build renders the whole site.
func (b *Builder) Build(ctx context.Context) error {
	workers := b.cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	b.log.Info("building site", "locales", b.cfg.Locales, "workers", workers)

	pool := utils.NewWorkerPool(ctx, workers, func(task func()) { task() })
	pool.Start()

	entries := generators.SitemapEntries{
		Posts: make(map[string][]models.PostMeta),
		Books: make(map[string][]models.BookMeta),
	}

	for _, locale := range b.cfg.Locales {
		posts, err := b.blog.ListPosts(locale)
		if err != nil {
			pool.Stop()
			return fmt.Errorf("list posts %s: %w", locale, err)
		}
		bookList, err := b.books.ListBooks(locale)
		if err != nil {
			pool.Stop()
			return fmt.Errorf("list books %s: %w", locale, err)
		}
		entries.Posts[locale] = posts
		entries.Books[locale] = bookList

		b.buildBlogIndexes(locale, posts)
		b.buildTagPages(pool, locale, posts)
		b.buildPostPages(pool, locale, posts)
		b.buildBookIndex(locale, bookList)
		b.buildBookPages(pool, locale, bookList)

		if err := generators.WriteRSS(b.destFs, path.Join(locale, "rss.xml"),
			b.cfg.BaseURL, b.cfg.Title, b.cfg.Description, locale, posts); err != nil {
			b.record(fmt.Errorf("rss %s: %w", locale, err))
		}
	}

	pool.Stop()

	chapters, err := b.books.ListAllChapterSlugs()
	if err != nil {
		return err
	}
	tagRefs, err := b.blog.ListAllTagSlugs()
	if err != nil {
		return err
	}
	entries.Chapters = chapters
	entries.TagRefs = tagRefs
	if err := generators.WriteSitemap(b.destFs, "sitemap.xml", b.cfg.BaseURL, b.cfg.Locales, entries); err != nil {
		b.record(fmt.Errorf("sitemap: %w", err))
	}

	n, err := assets.Build(b.srcFs, b.destFs, path.Join(b.cfg.ThemeDir, "static"), "static", b.cfg.Minify)
	if err != nil {
		b.record(fmt.Errorf("assets: %w", err))
	} else if n > 0 {
		b.log.Info("processed theme assets", "count", n)
	}

	b.metrics.RecordEnd()

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.errs) > 0 {
		for _, e := range b.errs {
			b.log.Error("build error", "error", e)
		}
		return fmt.Errorf("build finished with %d errors, first: %w", len(b.errs), b.errs[0])
	}
	return nil
}

func (b *Builder) record(err error) {
	b.mu.Lock()
	b.errs = append(b.errs, err)
	b.mu.Unlock()
}

func (b *Builder) site() render.Site {
	return render.Site{
		Title:       b.cfg.Title,
		Description: b.cfg.Description,
		BaseURL:     b.cfg.BaseURL,
		Locales:     b.cfg.Locales,
	}
}

// replayCached writes the cached copy of destPath when the stored source
// hash still matches, reporting whether it did.
func (b *Builder) replayCached(destPath, sourceHash string) bool {
	if b.cache == nil || sourceHash == "" {
		return false
	}
	html, ok := b.cache.Get(destPath, sourceHash)
	if !ok {
		b.metrics.IncrementCacheMiss()
		return false
	}
	if err := b.renderer.WriteRaw(destPath, []byte(html)); err != nil {
		b.record(fmt.Errorf("%s: %w", destPath, err))
		return true
	}
	b.metrics.IncrementCacheHit()
	b.metrics.IncrementPages()
	return true
}

// writePage renders, minifies and writes one page, storing it in the cache
// when sourceHash is non-empty. Callers wanting cache replay check
// replayCached first, before paying for the service read.
func (b *Builder) writePage(destPath, tmplName string, data render.PageData, sourceHash string) {
	html, err := b.renderer.RenderToString(tmplName, data)
	if err != nil {
		b.record(fmt.Errorf("%s: %w", destPath, err))
		return
	}
	if b.cfg.Minify {
		if min, err := utils.Minifier().String("text/html", html); err == nil {
			html = min
		}
	}
	if err := b.renderer.WriteRaw(destPath, []byte(html)); err != nil {
		b.record(fmt.Errorf("%s: %w", destPath, err))
		return
	}
	if b.cache != nil && sourceHash != "" {
		if err := b.cache.Put(destPath, sourceHash, html); err != nil {
			b.log.Warn("cache put failed", "path", destPath, "error", err)
		}
	}
	b.metrics.IncrementPages()
}

func (b *Builder) buildBlogIndexes(locale string, posts []models.PostMeta) {
	pageSize := b.cfg.PostsPerPage
	totalPages := (len(posts) + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	for page := 1; page <= totalPages; page++ {
		start := (page - 1) * pageSize
		end := start + pageSize
		if end > len(posts) {
			end = len(posts)
		}
		data := render.PageData{
			Site:   b.site(),
			Locale: locale,
			Title:  "Blog",
			Posts:  posts[start:end],
			Paginator: render.Paginator{
				CurrentPage: page,
				TotalPages:  totalPages,
				HasPrev:     page > 1,
				HasNext:     page < totalPages,
				PrevURL:     blogPageURL(locale, page-1),
				NextURL:     blogPageURL(locale, page+1),
			},
		}
		b.writePage(blogPagePath(locale, page), "blog_index.html", data, "")
	}
}

func blogPagePath(locale string, page int) string {
	if page <= 1 {
		return path.Join(locale, "blog", "index.html")
	}
	return path.Join(locale, "blog", "page", fmt.Sprintf("%d.html", page))
}

func blogPageURL(locale string, page int) string {
	if page < 1 {
		return ""
	}
	return "/" + blogPagePath(locale, page)
}

func (b *Builder) buildTagPages(pool *utils.WorkerPool[func()], locale string, posts []models.PostMeta) {
	tags := map[string][]models.PostMeta{}
	for _, p := range posts {
		for _, t := range p.Tags {
			tags[t] = append(tags[t], p)
		}
	}
	for tag, tagged := range tags {
		tag, tagged := tag, tagged
		pool.Submit(func() {
			data := render.PageData{
				Site:   b.site(),
				Locale: locale,
				Title:  tag,
				Tag:    tag,
				Posts:  tagged,
			}
			b.writePage(path.Join(locale, "blog", "tag", url.PathEscape(tag)+".html"), "tag.html", data, "")
		})
	}
}

func (b *Builder) buildPostPages(pool *utils.WorkerPool[func()], locale string, posts []models.PostMeta) {
	for _, meta := range posts {
		meta := meta
		pool.Submit(func() {
			file := path.Join(b.cfg.ContentDir, "blog", locale, meta.Slug+".md")
			src, err := afero.ReadFile(b.srcFs, file)
			if err != nil {
				b.record(fmt.Errorf("read %s: %w", file, err))
				return
			}
			hash := cache.HashSource(src)
			dest := path.Join(locale, "blog", meta.Slug+".html")

			if b.replayCached(dest, hash) {
				b.metrics.IncrementPosts()
				return
			}

			post, err := b.blog.GetPost(meta.Slug, locale)
			if err != nil {
				b.record(fmt.Errorf("post %s/%s: %w", locale, meta.Slug, err))
				return
			}
			if post == nil {
				b.record(fmt.Errorf("post %s/%s: vanished after listing", locale, meta.Slug))
				return
			}
			data := render.PageData{
				Site:   b.site(),
				Locale: locale,
				Title:  post.Title,
				Post:   post,
			}
			b.writePage(dest, "post.html", data, hash)
			b.metrics.IncrementPosts()
		})
	}
}

func (b *Builder) buildBookIndex(locale string, bookList []models.BookMeta) {
	covers := make(map[string]template.URL, len(bookList))
	for _, bm := range bookList {
		if bm.CoverImage != "" {
			continue
		}
		seed := gradient.DeriveSeed(bm.Title, bm.Author)
		covers[bm.Slug] = template.URL(gradient.DataURL(gradient.Options{Seed: seed}))
	}
	data := render.PageData{
		Site:   b.site(),
		Locale: locale,
		Title:  "Books",
		Books:  bookList,
		Covers: covers,
	}
	b.writePage(path.Join(locale, "books", "index.html"), "books_index.html", data, "")
}

func (b *Builder) buildBookPages(pool *utils.WorkerPool[func()], locale string, bookList []models.BookMeta) {
	for _, bm := range bookList {
		bm := bm
		pool.Submit(func() {
			book, err := b.books.GetBook(bm.Slug, locale)
			if err != nil {
				b.record(fmt.Errorf("book %s/%s: %w", locale, bm.Slug, err))
				return
			}
			if book == nil {
				b.record(fmt.Errorf("book %s/%s: vanished after listing", locale, bm.Slug))
				return
			}
			var cover template.URL
			if book.CoverImage == "" {
				seed := gradient.DeriveSeed(book.Title, book.Author)
				cover = template.URL(gradient.DataURL(gradient.Options{Seed: seed}))
				b.writeCover(locale, book.Slug, seed)
			}
			data := render.PageData{
				Site:   b.site(),
				Locale: locale,
				Title:  book.Title,
				Book:   book,
				Cover:  cover,
			}
			b.writePage(path.Join(locale, "books", bm.Slug+".html"), "book.html", data, "")
			b.metrics.IncrementBooks()

			for _, stub := range book.Chapters {
				b.buildChapterPage(locale, book, stub.Slug)
			}
		})
	}
}

func (b *Builder) buildChapterPage(locale string, book *models.Book, chapterSlug string) {
	file := path.Join(b.cfg.ContentDir, "books", locale, book.Slug, "chapters", chapterSlug+".md")
	src, err := afero.ReadFile(b.srcFs, file)
	if err != nil {
		b.record(fmt.Errorf("read %s: %w", file, err))
		return
	}
	// Chapter pages show book metadata in the breadcrumb, so the meta.json
	// bytes are part of the cache key.
	metaSrc, err := afero.ReadFile(b.srcFs, path.Join(b.cfg.ContentDir, "books", locale, book.Slug, "meta.json"))
	if err != nil {
		b.record(fmt.Errorf("read meta for %s/%s: %w", locale, book.Slug, err))
		return
	}
	hash := cache.HashSource(append(src, metaSrc...))
	dest := path.Join(locale, "books", book.Slug, chapterSlug+".html")

	if b.replayCached(dest, hash) {
		b.metrics.IncrementChapters()
		return
	}

	chapter, err := b.books.GetChapter(book.Slug, chapterSlug, locale)
	if err != nil {
		b.record(fmt.Errorf("chapter %s/%s/%s: %w", locale, book.Slug, chapterSlug, err))
		return
	}
	if chapter == nil {
		b.record(fmt.Errorf("chapter %s/%s/%s: vanished after listing", locale, book.Slug, chapterSlug))
		return
	}
	data := render.PageData{
		Site:    b.site(),
		Locale:  locale,
		Title:   chapter.Title,
		Book:    book,
		Chapter: chapter,
	}
	b.writePage(dest, "chapter.html", data, hash)
	b.metrics.IncrementChapters()
}

// writeCover rasterizes the deterministic gradient cover to a webp file so
// feeds and social previews have a real image to point at.
func (b *Builder) writeCover(locale, slug, seed string) {
	dest := path.Join(locale, "books", "covers", slug+".webp")
	if err := b.destFs.MkdirAll(path.Dir(dest), 0755); err != nil {
		b.record(err)
		return
	}
	f, err := b.destFs.Create(dest)
	if err != nil {
		b.record(err)
		return
	}
	defer func() { _ = f.Close() }()
	if err := gradient.EncodeWebP(f, gradient.Options{Seed: seed}); err != nil {
		b.record(fmt.Errorf("cover %s: %w", dest, err))
		return
	}
	b.metrics.IncrementCovers()
}
