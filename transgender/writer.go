package transgender

import (
	"image"
	"image/png"
	"io"

	"github.com/bodgit/flagsteg/qbit"
)

func lowerNibble(b byte) byte {
	return b & 0x0f
}

func upperNibble(b byte) byte {
	return b & 0xf0
}

// nibbles yields the payload low nibble first
type nibbles struct {
	b []byte
	i int
}

func (n *nibbles) len() int {
	// Every byte has exactly two whole nibbles
	return len(n.b) << 1
}

func (n *nibbles) next() (byte, bool) {
	if n.i >= n.len() {
		return 0, false
	}
	b := n.b[n.i>>1]
	if n.i&1 == 1 {
		b = upperNibble(b) >> 4
	}
	n.i++
	return lowerNibble(b), true
}

type encoder struct {
	w io.Writer

	width, height int

	image *image.RGBA
}

func (e *encoder) encode(n *nibbles) error {
	e.image = image.NewRGBA(image.Rect(0, 0, e.width, e.height))

	for y := 0; y < e.height; y++ {
		band := Band(y, e.height)
		c, _ := BandColor(band)
		for x := 0; x < e.width; x++ {
			if band == dataBand && n != nil {
				if v, ok := n.next(); ok {
					e.image.SetRGBA(x, y, qbit.Color(v))
					continue
				}
			}
			e.image.SetRGBA(x, y, c)
		}
	}

	enc := png.Encoder{CompressionLevel: png.BestCompression}

	return enc.Encode(e.w, e.image)
}

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return errDimensions
	}
	return nil
}

// Generate writes a width by height flag with no data to w.
func Generate(w io.Writer, width, height int) error {
	if err := checkDimensions(width, height); err != nil {
		return err
	}

	e := encoder{w: w, width: width, height: height}

	return e.encode(nil)
}

// Encode writes a width by height flag carrying payload to w. If payload
// does not fit a *CapacityError is returned and nothing is written.
func Encode(w io.Writer, payload []byte, width, height int) error {
	if err := checkDimensions(width, height); err != nil {
		return err
	}

	n := &nibbles{b: payload}
	if c := Capacity(width, height); n.len() > c {
		return &CapacityError{Required: n.len(), Capacity: c}
	}

	e := encoder{w: w, width: width, height: height}

	return e.encode(n)
}
