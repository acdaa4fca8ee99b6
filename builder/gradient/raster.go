package gradient

import (
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// Image rasterizes a gradient for contexts that need a bitmap cover
// (social cards, webp fallbacks for clients without SVG support).
func Image(opts Options) image.Image {
	o := resolve(opts)
	w, h := o.Width, o.Height

	dc := gg.NewContext(w, h)
	x0, y0, x1, y1 := rasterLine(o.Direction, float64(w), float64(h))

	grad := gg.NewLinearGradient(x0, y0, x1, y1)
	for i, hex := range o.Colors {
		pos := 0.0
		if len(o.Colors) > 1 {
			pos = float64(i) / float64(len(o.Colors)-1)
		}
		grad.AddColorStop(pos, hexToRGBA(hex))
	}

	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()
	return dc.Image()
}

// EncodeWebP writes the rasterized gradient as lossy WebP.
func EncodeWebP(w io.Writer, opts Options) error {
	return webp.Encode(w, Image(opts), &webp.Options{Lossless: false, Quality: 80})
}

// Thumbnail returns a proportionally downscaled copy of the raster cover.
func Thumbnail(opts Options, width int) image.Image {
	return imaging.Resize(Image(opts), width, 0, imaging.Lanczos)
}

// rasterLine maps a compass direction onto the gradient line in pixel
// space, mirroring the SVG coordinate table.
func rasterLine(direction string, w, h float64) (x0, y0, x1, y1 float64) {
	c := svgCoords[direction]
	return pct(c.x1, w), pct(c.y1, h), pct(c.x2, w), pct(c.y2, h)
}

func pct(s string, max float64) float64 {
	n, _ := strconv.Atoi(strings.TrimSuffix(s, "%"))
	return float64(n) / 100 * max
}

type rgba struct {
	r, g, b, a float64
}

func (c rgba) RGBA() (uint32, uint32, uint32, uint32) {
	return uint32(c.r * 0xffff), uint32(c.g * 0xffff), uint32(c.b * 0xffff), uint32(c.a * 0xffff)
}

// hexToRGBA parses a #rrggbb string; malformed input falls back to black.
func hexToRGBA(hex string) rgba {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return rgba{0, 0, 0, 1}
	}
	r, _ := strconv.ParseUint(hex[0:2], 16, 8)
	g, _ := strconv.ParseUint(hex[2:4], 16, 8)
	b, _ := strconv.ParseUint(hex[4:6], 16, 8)
	return rgba{float64(r) / 255, float64(g) / 255, float64(b) / 255, 1}
}
