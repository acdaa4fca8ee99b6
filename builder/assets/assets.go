// Theme asset pipeline: js/css through esbuild, raster images resized and
// re-encoded as webp, everything else copied as-is.
package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"
)

// maxImageWidth caps processed image width; larger sources are downscaled.
const maxImageWidth = 1200

// Build processes everything under srcDir into destDir. Returns the number
// of files written. A missing srcDir is fine: themes without static assets
// are valid.
func Build(srcFs, destFs afero.Fs, srcDir, destDir string, minify bool) (int, error) {
	exists, err := afero.DirExists(srcFs, srcDir)
	if err != nil || !exists {
		return 0, err
	}

	written := 0
	err = afero.Walk(srcFs, srcDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		destPath := filepath.Join(destDir, rel)

		src, err := afero.ReadFile(srcFs, path)
		if err != nil {
			return err
		}

		var out []byte
		switch strings.ToLower(filepath.Ext(path)) {
		case ".js":
			out, err = transform(src, api.LoaderJS, minify)
		case ".css":
			out, err = transform(src, api.LoaderCSS, minify)
		case ".jpg", ".jpeg", ".png":
			out, err = toWebP(src)
			destPath = strings.TrimSuffix(destPath, filepath.Ext(destPath)) + ".webp"
		default:
			out = src
		}
		if err != nil {
			return fmt.Errorf("asset %s: %w", path, err)
		}

		if err := destFs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return err
		}
		if err := afero.WriteFile(destFs, destPath, out, 0644); err != nil {
			return err
		}
		written++
		return nil
	})
	return written, err
}

func transform(src []byte, loader api.Loader, minify bool) ([]byte, error) {
	result := api.Transform(string(src), api.TransformOptions{
		Loader:            loader,
		MinifyWhitespace:  minify,
		MinifyIdentifiers: minify,
		MinifySyntax:      minify,
	})
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("esbuild: %s", result.Errors[0].Text)
	}
	return result.Code, nil
}

func toWebP(src []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: 80}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
