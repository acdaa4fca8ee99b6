// Configures the markdown render pipeline shared by blog posts and book chapters.
package parser

import (
	chroma_html "github.com/alecthomas/chroma/v2/formatters/html"
	admonitions "github.com/stefanfritsch/goldmark-admonitions"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"folio/builder/utils"
)

func codeBlockWrapper(w util.BufWriter, c highlighting.CodeBlockContext, entering bool) {
	if entering {
		langBytes, _ := c.Language()
		lang := string(langBytes)
		if lang == "" {
			lang = "text"
		}
		_, _ = w.WriteString(`<div class="code-wrapper" data-lang="` + lang + `">`)
	} else {
		_, _ = w.WriteString(`</div>`)
	}
}

// Pipeline converts markdown bodies (front matter already stripped) into HTML.
// Raw HTML in the source passes through unescaped: content is authored and
// committed alongside the site, never user-submitted.
type Pipeline struct {
	md goldmark.Markdown
}

// NewPipeline builds the goldmark instance used for all content kinds.
func NewPipeline() *Pipeline {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("nord"),
				highlighting.WithFormatOptions(
					chroma_html.WithClasses(true),
				),
				highlighting.WithWrapperRenderer(codeBlockWrapper),
			),
			&admonitions.Extender{},
		),
		goldmark.WithParserOptions(
			gparser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Pipeline{md: md}
}

// Render converts a markdown body to an HTML string. Malformed markdown is
// rendered best-effort; goldmark has no fatal path for bad syntax.
func (p *Pipeline) Render(body []byte) (string, error) {
	buf := utils.SharedBufferPool.Get()
	defer utils.SharedBufferPool.Put(buf)

	if err := p.md.Convert(body, buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
