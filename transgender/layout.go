package transgender

import "image/color"

var (
	blue  = color.RGBA{91, 206, 250, 0xff}
	pink  = color.RGBA{245, 169, 184, 0xff}
	white = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

var bands = [numBands]color.RGBA{blue, pink, white, pink, blue}

// Band returns the band, 0 to 4, that row belongs to.
func Band(row, height int) int {
	return row * numBands / height
}

// BandColor returns the decorative color of band. The data band has no
// fixed color so white is returned along with false.
func BandColor(band int) (color.RGBA, bool) {
	if band < 0 || band >= numBands {
		return color.RGBA{}, false
	}
	return bands[band], band != dataBand
}

// First row r with r*5/height >= band
func firstRow(band, height int) int {
	return (band*height + numBands - 1) / numBands
}

// DataRows returns the number of rows in the data band.
func DataRows(height int) int {
	if height <= 0 {
		return 0
	}
	return firstRow(dataBand+1, height) - firstRow(dataBand, height)
}

// Capacity returns the number of nibbles a width by height flag can hold.
func Capacity(width, height int) int {
	if width <= 0 {
		return 0
	}
	return DataRows(height) * width
}
