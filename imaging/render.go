// Package imaging decodes and resizes attachment and signature images for
// placement in the workbook. Output is always opaque JPEG: transparency is
// flattened onto white because the target format has no alpha, and encoding
// is deterministic so identical input yields identical bytes.
package imaging

import (
	"bytes"
	"image"
	"image/draw"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	otdoc "github.com/sasamuel24/otdoc"
)

const jpegQuality = 90

// Ext is the file extension of every rendered image.
const Ext = ".jpg"

// Rendered is a resized, flattened, encoded image.
type Rendered struct {
	Data   []byte
	Width  int
	Height int
}

// Dimensions reads just enough of an image to report its pixel size. Used
// by the layout planner, which only needs aspect ratios.
func Dimensions(filename string, data []byte) (w, h int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, &otdoc.DecodeError{Filename: filename, Err: err}
	}
	return cfg.Width, cfg.Height, nil
}

// Render decodes an image and scales it to fit fully inside targetW×targetH
// while preserving its aspect ratio. Images smaller than the target box are
// never upsized. Unreadable input yields a *otdoc.DecodeError.
func Render(filename string, data []byte, targetW, targetH int) (*Rendered, error) {
	if targetW < 1 || targetH < 1 {
		return nil, otdoc.ErrInvalidParam
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &otdoc.DecodeError{Filename: filename, Err: err}
	}

	b := src.Bounds()
	outW, outH := fitInside(b.Dx(), b.Dy(), targetW, targetH)

	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, &otdoc.DecodeError{Filename: filename, Err: err}
	}
	return &Rendered{Data: buf.Bytes(), Width: outW, Height: outH}, nil
}

// fitInside scales (w, h) to fit in (maxW, maxH) preserving aspect ratio,
// without ever growing past the source size.
func fitInside(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	outW := int(float64(w) * scale)
	outH := int(float64(h) * scale)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	return outW, outH
}
