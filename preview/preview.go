/*
Package preview writes reduced color previews of flags.

A preview is a paletted PNG made with a median cut quantizer. It is meant
for display only: the qbit colors collapse into their neighbours so the
payload does not survive.
*/
package preview

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

const (
	// DefaultColors is the palette size used when none is given.
	DefaultColors = 16
	maxColors     = 256
)

var errColors = errors.New("preview: invalid number of colors")

// Encode writes m to w as a PNG with a palette of at most colors entries.
func Encode(w io.Writer, m image.Image, colors int) error {
	if colors == 0 {
		colors = DefaultColors
	}
	if colors < 2 || colors > maxColors {
		return errColors
	}

	b := m.Bounds()

	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, colors), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)

	// Adjust image so that top-left corner is at (0, 0)
	if pm.Rect.Min != (image.Point{}) {
		dup := *pm
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		pm = &dup
	}

	enc := png.Encoder{CompressionLevel: png.BestCompression}

	return enc.Encode(w, pm)
}

// EncodeFlag decodes the flag in r and writes a preview of it to w.
func EncodeFlag(w io.Writer, r io.Reader, colors int) error {
	m, err := png.Decode(r)
	if err != nil {
		return err
	}
	return Encode(w, m, colors)
}
