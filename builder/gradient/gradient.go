// Package gradient produces deterministic placeholder cover images for
// books without a cover. The same seed always yields byte-identical SVG,
// data-URL and CSS output: listings and detail pages render the cover
// independently and the two must match.
package gradient

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Options parameterizes one gradient. Zero-valued fields are filled from
// the seed; explicitly set fields win over seed-derived values.
type Options struct {
	Width     int
	Height    int
	Colors    []string
	Direction string
	Seed      string
}

const (
	defaultWidth  = 300
	defaultHeight = 400
	defaultSeed   = "default"
)

var palettes = [][]string{
	// Blue series
	{"#667eea", "#764ba2"},
	{"#4facfe", "#00f2fe"},
	{"#43e97b", "#38f9d7"},

	// Purple series
	{"#fa709a", "#fee140"},
	{"#a8edea", "#fed6e3"},
	{"#d299c2", "#fef9d7"},

	// Orange series
	{"#fd746c", "#ff9068"},
	{"#ffa726", "#fb8c00"},
	{"#ffb347", "#ffcc02"},

	// Green series
	{"#56ab2f", "#a8e6cf"},
	{"#11998e", "#38ef7d"},
	{"#00b4db", "#0083b0"},

	// Red series
	{"#ff6b6b", "#feca57"},
	{"#ff7675", "#fd79a8"},
	{"#e17055", "#f39c12"},

	// Deep tones
	{"#2c3e50", "#4ca1af"},
	{"#232526", "#414345"},
	{"#1e3c72", "#2a5298"},
}

var directions = []string{"to-r", "to-br", "to-b", "to-bl", "to-l", "to-tl", "to-t", "to-tr"}

type coords struct {
	x1, y1, x2, y2 string
}

var svgCoords = map[string]coords{
	"to-r":  {"0%", "0%", "100%", "0%"},
	"to-l":  {"100%", "0%", "0%", "0%"},
	"to-b":  {"0%", "0%", "0%", "100%"},
	"to-t":  {"0%", "100%", "0%", "0%"},
	"to-br": {"0%", "0%", "100%", "100%"},
	"to-bl": {"100%", "0%", "0%", "100%"},
	"to-tr": {"0%", "100%", "100%", "0%"},
	"to-tl": {"100%", "100%", "0%", "0%"},
}

var cssDirections = map[string]string{
	"to-r":  "to right",
	"to-l":  "to left",
	"to-b":  "to bottom",
	"to-t":  "to top",
	"to-br": "to bottom right",
	"to-bl": "to bottom left",
	"to-tr": "to top right",
	"to-tl": "to top left",
}

// hashSeed folds a seed string into a non-negative integer. Plain
// polynomial hash; reproducibility matters here, not distribution.
func hashSeed(s string) int {
	var h int32
	for _, r := range s {
		h = (h << 5) - h + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v)
}

// Resolve fills every unset field of overrides from the seed hash and the
// fixed defaults. Explicitly supplied fields always win.
func Resolve(seed string, overrides Options) Options {
	h := hashSeed(seed)

	resolved := Options{
		Width:     overrides.Width,
		Height:    overrides.Height,
		Colors:    overrides.Colors,
		Direction: overrides.Direction,
		Seed:      overrides.Seed,
	}
	if resolved.Width == 0 {
		resolved.Width = defaultWidth
	}
	if resolved.Height == 0 {
		resolved.Height = defaultHeight
	}
	if resolved.Colors == nil {
		resolved.Colors = palettes[h%len(palettes)]
	}
	if resolved.Direction == "" {
		resolved.Direction = directions[h%len(directions)]
	}
	if resolved.Seed == "" {
		resolved.Seed = seed
	}
	return resolved
}

func resolve(opts Options) Options {
	seed := opts.Seed
	if seed == "" {
		seed = defaultSeed
	}
	return Resolve(seed, opts)
}

// SVG renders a linear-gradient SVG, color stops evenly distributed across
// [0%, 100%].
func SVG(opts Options) string {
	o := resolve(opts)
	c := svgCoords[o.Direction]

	var stops strings.Builder
	for i, color := range o.Colors {
		offset := 0.0
		if len(o.Colors) > 1 {
			offset = float64(i) / float64(len(o.Colors)-1) * 100
		}
		fmt.Fprintf(&stops, `<stop offset="%s%%" style="stop-color:%s;stop-opacity:1" />`,
			strconv.FormatFloat(offset, 'f', -1, 64), color)
	}

	return fmt.Sprintf(
		`<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`+
			`<defs><linearGradient id="grad" x1="%s" y1="%s" x2="%s" y2="%s">%s</linearGradient></defs>`+
			`<rect width="100%%" height="100%%" fill="url(#grad)"/></svg>`,
		o.Width, o.Height, o.Width, o.Height,
		c.x1, c.y1, c.x2, c.y2, stops.String())
}

// DataURL percent-encodes the SVG into a data:image/svg+xml URI.
func DataURL(opts Options) string {
	return "data:image/svg+xml," + url.PathEscape(SVG(opts))
}

// CSS produces a linear-gradient() string for background styling.
func CSS(opts Options) string {
	o := resolve(opts)
	return fmt.Sprintf("linear-gradient(%s, %s)", cssDirections[o.Direction], strings.Join(o.Colors, ", "))
}

// DeriveSeed builds the canonical cover seed for a book. Plain
// concatenation; hashing happens later in Resolve.
func DeriveSeed(title, author string) string {
	if author == "" {
		author = "unknown"
	}
	return title + "-" + author
}
