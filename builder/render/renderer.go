// Handles page template loading and HTML file creation.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/tdewolff/minify/v2"

	"folio/builder/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Paginator holds the pagination state a listing page renders.
type Paginator struct {
	CurrentPage int
	TotalPages  int
	PrevURL     string
	NextURL     string
	HasPrev     bool
	HasNext     bool
}

// Site is the chrome shared by every page.
type Site struct {
	Title       string
	Description string
	BaseURL     string
	Locales     []string
}

// PageData is the context passed to page templates. Only the fields the
// target template reads need to be set.
type PageData struct {
	Site   Site
	Locale string
	Title  string

	Post      *models.Post
	Posts     []models.PostMeta
	Book      *models.Book
	Books     []models.BookMeta
	Chapter   *models.Chapter
	Tag       string
	Tags      []string
	Cover     template.URL // gradient data URL for books without a cover image
	Covers    map[string]template.URL
	Paginator Paginator
}

// Renderer executes the embedded templates and writes pages through the
// destination filesystem, minifying when enabled.
type Renderer struct {
	tmpl     *template.Template
	destFs   afero.Fs
	minifier *minify.M
}

// New builds a renderer over destFs. A nil minifier writes pages verbatim.
func New(destFs afero.Fs, minifier *minify.M) (*Renderer, error) {
	funcMap := template.FuncMap{
		"lower":     strings.ToLower,
		"hasPrefix": strings.HasPrefix,
		// query services return rendered HTML strings; the render pipeline
		// already decides what passes through unescaped
		"safe": func(s string) template.HTML { return template.HTML(s) },
	}
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, destFs: destFs, minifier: minifier}, nil
}

// WritePage renders the named template to destPath.
func (r *Renderer) WritePage(destPath, name string, data PageData) error {
	if err := r.destFs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("render %s: %w", destPath, err)
	}
	f, err := r.destFs.Create(destPath)
	if err != nil {
		return fmt.Errorf("render %s: %w", destPath, err)
	}
	defer func() { _ = f.Close() }()

	var w io.Writer = f
	if r.minifier != nil {
		mw := r.minifier.Writer("text/html", f)
		defer func() { _ = mw.Close() }()
		w = mw
	}

	if err := r.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", destPath, err)
	}
	return nil
}

// WriteRaw writes pre-rendered bytes (cache hits) without re-executing
// templates or re-minifying.
func (r *Renderer) WriteRaw(destPath string, html []byte) error {
	if err := r.destFs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	return afero.WriteFile(r.destFs, destPath, html, 0644)
}

// RenderToString executes a template into memory, for the build driver's
// cache path.
func (r *Renderer) RenderToString(name string, data PageData) (string, error) {
	var sb strings.Builder
	if err := r.tmpl.ExecuteTemplate(&sb, name, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
