/*
Package qbit implements the table mapping 4-bit values to the sixteen
reserved near-white colors used to carry data inside a flag.

Value v is stored as the grey RGB(254-v, 254-v, 254-v), so the table spans
239 to 254 on each channel. Pure white is never part of the table.
*/
package qbit

import "image/color"

const (
	// Values is the number of distinct qbit values.
	Values = 16

	top = 0xfe
)

// Palette holds the qbit colors indexed by value. It must not be modified.
var Palette = func() color.Palette {
	p := make(color.Palette, Values)
	for v := range p {
		p[v] = Color(byte(v))
	}
	return p
}()

// Indexed by grey level, -1 for any level that isn't a qbit
var reverse = func() (t [256]int8) {
	for i := range t {
		t[i] = -1
	}
	for v := 0; v < Values; v++ {
		t[top-v] = int8(v)
	}
	return
}()

// Color returns the color for the low nibble of v.
func Color(v byte) color.RGBA {
	g := top - v&0x0f
	return color.RGBA{g, g, g, 0xff}
}

// Value returns the qbit value carried by c. It reports false for any color
// that is not exactly one of the sixteen qbit colors, compared at full 16-bit
// precision.
func Value(c color.Color) (byte, bool) {
	r, g, b, a := c.RGBA()
	if a != 0xffff || r != g || g != b || r>>8 != r&0xff {
		return 0, false
	}
	if v := reverse[r>>8]; v >= 0 {
		return byte(v), true
	}
	return 0, false
}

// Is reports whether c is a qbit color.
func Is(c color.Color) bool {
	_, ok := Value(c)
	return ok
}
