package transgender

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"

	"github.com/bodgit/flagsteg/qbit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePNG(t *testing.T, b []byte) image.Image {
	t.Helper()
	m, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	return m
}

func rgba(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	tables := []struct {
		name          string
		width, height int
		length        int
	}{
		{"empty", 10, 10, 0},
		{"one byte", 10, 10, 1},
		{"full", 10, 10, 10},
		{"default", DefaultWidth, DefaultHeight, 832},
		{"uneven bands", 7, 13, 7},
		{"hello", DefaultWidth, DefaultHeight, 11},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			payload := make([]byte, table.length)
			r.Read(payload)

			f := New(table.width, table.height)
			b, err := f.Encode(payload)
			require.NoError(t, err)

			got, err := f.Decode(b)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
			assert.True(t, f.IsValid(b))
		})
	}
}

func TestHelloWorld(t *testing.T) {
	f := Default()
	b, err := f.Encode([]byte("Hello World"))
	require.NoError(t, err)

	got, err := f.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", string(got))
}

func TestCapacityError(t *testing.T) {
	buf := new(bytes.Buffer)
	err := Encode(buf, make([]byte, 100), 10, 10)

	var ce *CapacityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 200, ce.Required)
	assert.Equal(t, 20, ce.Capacity)
	assert.Equal(t, 0, buf.Len())

	// One byte too many
	_, err = New(10, 10).Encode(make([]byte, 11))
	assert.True(t, errors.As(err, &ce))

	// No data band at all
	_, err = New(5, 3).Encode([]byte{0})
	assert.True(t, errors.As(err, &ce))
	_, err = New(5, 3).Encode(nil)
	assert.NoError(t, err)
}

func TestDimensions(t *testing.T) {
	_, err := New(0, 10).Generate()
	assert.Equal(t, errDimensions, err)
	_, err = New(10, -1).Encode(nil)
	assert.Equal(t, errDimensions, err)
}

func TestDecorativeBands(t *testing.T) {
	payload := bytes.Repeat([]byte{0xa5}, 10)

	for _, f := range []*Flag{New(10, 10), New(17, 23), Default()} {
		generated, err := f.Generate()
		require.NoError(t, err)
		encoded, err := f.Encode(payload)
		require.NoError(t, err)

		for _, b := range [][]byte{generated, encoded} {
			m := decodePNG(t, b)
			bounds := m.Bounds()
			assert.Equal(t, f.Width(), bounds.Dx())
			assert.Equal(t, f.Height(), bounds.Dy())

			for y := 0; y < f.Height(); y++ {
				band := Band(y, f.Height())
				c, ok := BandColor(band)
				for x := 0; x < f.Width(); x++ {
					got := rgba(m.At(x, y))
					if ok {
						assert.Equal(t, c, got, "pixel %d,%d", x, y)
					} else {
						assert.True(t, got == white || qbit.Is(got), "pixel %d,%d", x, y)
					}
				}
			}
		}
	}
}

func TestGenerate(t *testing.T) {
	f := Default()
	b1, err := f.Generate()
	require.NoError(t, err)
	b2, err := f.Generate()
	require.NoError(t, err)
	assert.Equal(t, b1, b2)

	// Nothing to encode looks the same as nothing at all
	b3, err := f.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, b1, b3)

	m := decodePNG(t, b1)
	_, ok := m.(*image.RGBA)
	assert.True(t, ok, "expected 8-bit RGB, got %T", m)

	got, err := f.Decode(b1)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.True(t, f.IsValid(b1))
}

func TestScenario(t *testing.T) {
	f := Default()
	b, err := f.Encode([]byte{0x00, 0xff})
	require.NoError(t, err)

	m := decodePNG(t, b)
	y := firstRow(dataBand, f.Height())
	expected := []color.RGBA{
		{254, 254, 254, 0xff},
		{254, 254, 254, 0xff},
		{239, 239, 239, 0xff},
		{239, 239, 239, 0xff},
		white,
	}
	for x, c := range expected {
		assert.Equal(t, c, rgba(m.At(x, y)), "pixel %d", x)
	}
}

func TestNibbleOrder(t *testing.T) {
	b, err := New(4, 5).Encode([]byte{0x1e})
	require.NoError(t, err)

	m := decodePNG(t, b)
	assert.Equal(t, qbit.Color(0xe), rgba(m.At(0, 2)))
	assert.Equal(t, qbit.Color(0x1), rgba(m.At(1, 2)))
}

func encodeImage(t *testing.T, m image.Image) []byte {
	t.Helper()
	b := new(bytes.Buffer)
	require.NoError(t, png.Encode(b, m))
	return b.Bytes()
}

func TestDecodeSkipsTampered(t *testing.T) {
	f := New(8, 5)
	b, err := f.Encode([]byte{0x21, 0x43, 0x65, 0x87})
	require.NoError(t, err)

	m := decodePNG(t, b).(*image.RGBA)
	// Replace the second nibble with something that isn't a qbit
	m.SetRGBA(1, 2, color.RGBA{1, 2, 3, 0xff})
	b = encodeImage(t, m)

	got, err := f.Decode(b)
	require.NoError(t, err)
	// Nibbles shift down by one and the trailing half byte is dropped
	assert.Equal(t, []byte{0x31, 0x54, 0x76}, got)
	assert.Equal(t, ErrGap, Validate(bytes.NewReader(b)))
}

func TestValidateOddNibbles(t *testing.T) {
	f := New(8, 5)
	b, err := f.Encode([]byte{0x21, 0x43, 0x65, 0x87})
	require.NoError(t, err)

	m := decodePNG(t, b).(*image.RGBA)
	m.SetRGBA(7, 2, white)
	b = encodeImage(t, m)

	got, err := f.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x21, 0x43, 0x65}, got)
	assert.Equal(t, ErrOddNibbles, Validate(bytes.NewReader(b)))
}

func TestValidateGap(t *testing.T) {
	f := New(8, 5)
	b, err := f.Encode([]byte{0x21})
	require.NoError(t, err)

	m := decodePNG(t, b).(*image.RGBA)
	m.SetRGBA(7, 2, qbit.Color(3))
	m.SetRGBA(6, 2, qbit.Color(4))
	b = encodeImage(t, m)

	got, err := f.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x21, 0x34}, got)
	assert.Equal(t, ErrGap, Validate(bytes.NewReader(b)))
	assert.False(t, f.IsValid(b))
}

func TestDecodeBadImage(t *testing.T) {
	_, err := Default().Decode([]byte("not a png"))

	var ife *ImageFormatError
	require.True(t, errors.As(err, &ife))
	assert.Error(t, ife.Unwrap())
	assert.False(t, Default().IsValid([]byte("not a png")))
}

func TestDecodeOtherSize(t *testing.T) {
	// The decoder works from the image, not the flag it's called on
	b, err := New(31, 17).Encode([]byte("other size"))
	require.NoError(t, err)

	got, err := Default().Decode(b)
	require.NoError(t, err)
	assert.Equal(t, "other size", string(got))
}

func TestDecodeForeignImage(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 4, 5))
	for i := range m.Pix {
		m.Pix[i] = 0xff
	}
	m.SetNRGBA(0, 2, color.NRGBA{253, 253, 253, 0xff})
	m.SetNRGBA(1, 2, color.NRGBA{252, 252, 252, 0xff})
	// Outside the data band, ignored
	m.SetNRGBA(0, 0, color.NRGBA{250, 250, 250, 0xff})

	got, err := Decode(bytes.NewReader(encodeImage(t, m)))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x21}, got)
}

func TestCapacityErrorMessage(t *testing.T) {
	err := &CapacityError{Required: 200, Capacity: 20}
	assert.Equal(t, "transgender: payload needs 200 data pixels, flag holds 20", err.Error())
}

func TestDecode16Bit(t *testing.T) {
	m := image.NewRGBA64(image.Rect(0, 0, 4, 5))
	for y := 0; y < 5; y++ {
		c, _ := BandColor(Band(y, 5))
		for x := 0; x < 4; x++ {
			m.Set(x, y, c)
		}
	}
	// High bytes match qbit 0 but the pixel isn't exactly that color
	m.SetRGBA64(0, 2, color.RGBA64{0xfe12, 0xfe80, 0xfeff, 0xffff})
	m.SetRGBA64(1, 2, color.RGBA64{0xfdfd, 0xfdfd, 0xfdfd, 0xffff})
	m.SetRGBA64(2, 2, color.RGBA64{0xfcfc, 0xfcfc, 0xfcfc, 0xffff})

	got, err := Decode(bytes.NewReader(encodeImage(t, m)))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x21}, got)
}

func TestValidateStray(t *testing.T) {
	grey := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for i := range grey.Pix {
		grey.Pix[i] = 0x80
		if i%4 == 3 {
			grey.Pix[i] = 0xff
		}
	}
	b := encodeImage(t, grey)
	assert.Equal(t, ErrStray, Validate(bytes.NewReader(b)))
	assert.False(t, Default().IsValid(b))

	// A single wrong pixel in a decorative band is enough
	f := New(8, 5)
	b, err := f.Encode([]byte{0x21})
	require.NoError(t, err)
	m := decodePNG(t, b).(*image.RGBA)
	m.SetRGBA(3, 4, pink)
	assert.Equal(t, ErrStray, Validate(bytes.NewReader(encodeImage(t, m))))
}
