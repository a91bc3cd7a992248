package transgender

import (
	"image/color"
	"image/png"
	"io"

	"github.com/bodgit/flagsteg/qbit"
)

// packer packs nibbles into bytes low nibble first
type packer struct {
	b    []byte
	half bool
}

func (p *packer) add(v byte) {
	if p.half {
		p.b[len(p.b)-1] |= lowerNibble(v) << 4
	} else {
		p.b = append(p.b, lowerNibble(v))
	}
	p.half = !p.half
}

// bytes returns the whole bytes packed so far
func (p *packer) bytes() []byte {
	if p.half {
		return p.b[:len(p.b)-1]
	}
	return p.b
}

type decoder struct {
	data packer

	// Length of the leading run of qbit pixels in the data band and
	// whether any qbit pixel was found after it
	run int
	gap bool

	// Set if any pixel outside the data band isn't its band's color
	stray bool
}

func sameColor(c1, c2 color.Color) bool {
	r1, g1, b1, a1 := c1.RGBA()
	r2, g2, b2, a2 := c2.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

func (d *decoder) decode(r io.Reader) error {
	m, err := png.Decode(r)
	if err != nil {
		return &ImageFormatError{Err: err}
	}

	b := m.Bounds()
	height := b.Dy()
	d.data.b = make([]byte, 0, (b.Dx()*DataRows(height)+1)>>1)

	padding := false
	for y := b.Min.Y; y < b.Max.Y; y++ {
		band := Band(y-b.Min.Y, height)
		if c, ok := BandColor(band); ok {
			for x := b.Min.X; x < b.Max.X && !d.stray; x++ {
				d.stray = !sameColor(m.At(x, y), c)
			}
			continue
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			v, ok := qbit.Value(m.At(x, y))
			if !ok {
				// Padding or tampering, carries nothing
				padding = true
				continue
			}
			if padding {
				d.gap = true
			} else {
				d.run++
			}
			d.data.add(v)
		}
	}

	return nil
}

// Decode reads a flag from r and returns the payload it carries.
func Decode(r io.Reader) ([]byte, error) {
	var d decoder
	if err := d.decode(r); err != nil {
		return nil, err
	}
	return d.data.bytes(), nil
}
