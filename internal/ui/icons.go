package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// Icon dimensions for system tray.
const iconSize = 22

var (
	uploadColor   = color.RGBA{255, 0, 255, 255} // Magenta, matches the chart's UL line
	downloadColor = color.RGBA{0, 229, 255, 255} // Cyan, matches the chart's DL line
	offlineColor  = color.RGBA{128, 128, 128, 255}
)

// Pre-generated PNG icons for the tray.
var (
	iconActivePNG  []byte
	iconOfflinePNG []byte
)

func init() {
	iconActivePNG = generateArrowsIcon(uploadColor, downloadColor)
	iconOfflinePNG = generateArrowsIcon(offlineColor, offlineColor)
}

// generateArrowsIcon draws an up arrow on the left and a down arrow on the right.
func generateArrowsIcon(up, down color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))

	const (
		top       = 3
		bottom    = 18
		headDepth = 5
		shaftHalf = 1
	)

	drawArrow := func(centerX int, c color.RGBA, pointsUp bool) {
		// Shaft
		for y := top; y <= bottom; y++ {
			for x := centerX - shaftHalf; x <= centerX+shaftHalf; x++ {
				img.Set(x, y, c)
			}
		}
		// Head: a triangle widening away from the tip
		for i := 0; i < headDepth; i++ {
			y := top + i
			if !pointsUp {
				y = bottom - i
			}
			for x := centerX - i - 1; x <= centerX+i+1; x++ {
				img.Set(x, y, c)
			}
		}
	}

	drawArrow(6, up, true)
	drawArrow(15, down, false)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
