package main

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/HellmannM/deskvox/internal/raycast"
)

// writeDepthPNG renders the quantized depth buffer as a 16-bit grayscale
// PNG, rescaling 8-bit and 32-bit precisions up or down to fit.
func writeDepthPNG(path string, depth []uint32, width, height int, prec raycast.DepthPrecision) error {
	img := image.NewGray16(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := depth[y*width+x]
			var v16 uint16
			switch prec {
			case raycast.DepthU8:
				v16 = uint16(v) << 8
			case raycast.DepthU16:
				v16 = uint16(v)
			case raycast.DepthU32:
				v16 = uint16(v >> 16)
			}
			img.SetGray16(x, y, color.Gray16{Y: v16})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
