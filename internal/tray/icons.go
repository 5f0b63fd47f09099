package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

var (
	greenIcon = dotIcon(color.RGBA{R: 46, G: 204, B: 113, A: 255})
	redIcon   = dotIcon(color.RGBA{R: 231, G: 76, B: 60, A: 255})
	grayIcon  = dotIcon(color.RGBA{R: 149, G: 165, B: 166, A: 255})
)

// dotIcon renders a solid status dot as a PNG for the tray.
func dotIcon(c color.RGBA) []byte {
	const size = 16
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	cx, cy, r := size/2, size/2, size/2-2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, c)
			}
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
