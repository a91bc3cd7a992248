/*
Package transgender implements the transgender flag style: a PNG of five
horizontal bands coloured blue, pink, white, pink and blue.

Rows are assigned to bands by row*5/height so bands differ by at most one
row when the height is not a multiple of five. Every pixel of the white band
carries one 4-bit value as one of the sixteen qbit colors; pixels left over
once the payload runs out stay pure white. There is no header or length in
the image, the decoder scans the whole white band and keeps whatever pixels
match a qbit color.

Payload bytes are split low nibble first. Any partial nibble or partial byte
left at the end of a stream is dropped. The output must not be passed
through lossy recompression as the qbit colors differ by a single level.
*/
package transgender

import (
	"bytes"
	"errors"
	"fmt"
)

const (
	name = "Transgender"

	numBands = 5
	dataBand = 2

	// DefaultWidth and DefaultHeight give a 128 by 64 flag which holds
	// 832 bytes.
	DefaultWidth  = 128
	DefaultHeight = 64
)

var (
	errDimensions = errors.New("transgender: invalid dimensions")
	// ErrStray is returned by Validate when a pixel outside the data band
	// isn't its band's color.
	ErrStray = errors.New("transgender: not a flag")
	// ErrGap is returned by Validate when qbit pixels follow padding.
	ErrGap = errors.New("transgender: data after padding")
	// ErrOddNibbles is returned by Validate when the data band holds a
	// partial byte.
	ErrOddNibbles = errors.New("transgender: partial byte in data band")
)

// CapacityError is returned when a payload does not fit in the data band.
type CapacityError struct {
	Required int // pixels needed by the payload
	Capacity int // pixels available in the data band
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("transgender: payload needs %d data pixels, flag holds %d", e.Required, e.Capacity)
}

// ImageFormatError is returned when the input cannot be parsed as a PNG.
type ImageFormatError struct {
	Err error
}

func (e *ImageFormatError) Error() string {
	return "transgender: bad image: " + e.Err.Error()
}

func (e *ImageFormatError) Unwrap() error {
	return e.Err
}

// Flag is a transgender flag of a fixed size.
type Flag struct {
	width, height int
}

// New returns a flag of the given size in pixels.
func New(width, height int) *Flag {
	return &Flag{
		width:  width,
		height: height,
	}
}

// Default returns a flag of DefaultWidth by DefaultHeight.
func Default() *Flag {
	return New(DefaultWidth, DefaultHeight)
}

// Name returns the name of the style.
func (f *Flag) Name() string {
	return name
}

// Width returns the width in pixels.
func (f *Flag) Width() int {
	return f.width
}

// Height returns the height in pixels.
func (f *Flag) Height() int {
	return f.height
}

// Capacity returns the number of nibbles the flag can hold.
func (f *Flag) Capacity() int {
	return Capacity(f.width, f.height)
}

// Generate returns a flag with no data.
func (f *Flag) Generate() ([]byte, error) {
	b := new(bytes.Buffer)
	if err := Generate(b, f.width, f.height); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Encode returns a flag carrying payload.
func (f *Flag) Encode(payload []byte) ([]byte, error) {
	b := new(bytes.Buffer)
	if err := Encode(b, payload, f.width, f.height); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Decode returns the payload carried by the flag in b. The size of the
// image in b is used rather than the size of f.
func (f *Flag) Decode(b []byte) ([]byte, error) {
	return Decode(bytes.NewReader(b))
}

// IsValid reports whether b looks like a flag written by Encode.
func (f *Flag) IsValid(b []byte) bool {
	return Validate(bytes.NewReader(b)) == nil
}
