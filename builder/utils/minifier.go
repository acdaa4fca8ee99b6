package utils

import (
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

var (
	minifier     *minify.M
	minifierOnce sync.Once
)

// Minifier returns the process-wide minifier, configured for the content
// types the build pipeline emits.
func Minifier() *minify.M {
	minifierOnce.Do(func() {
		minifier = minify.New()
		minifier.AddFunc("text/html", html.Minify)
		minifier.AddFunc("text/css", css.Minify)
		minifier.AddFunc("text/javascript", js.Minify)
	})
	return minifier
}
