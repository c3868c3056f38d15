// vram_png.go - VRAM-to-PNG snapshot helper for the monitor harness
package main

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/intuitionamiga/psxcore/raster"
)

// thumbnailWidth halves VRAM's native width so snapshots stay small
// enough to eyeball quickly in a terminal image viewer.
const thumbnailWidth = raster.VRAMWidth / 2

// writeVRAMPNG renders a run of shuffled RGBA8888 pixels (as produced by
// raster.ShufflePixels) to a downscaled PNG at path.
func writeVRAMPNG(path string, pixels []uint32, width, height int) error {
	src := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, p := range pixels {
		x, y := i%width, i/width
		src.Set(x, y, color.RGBA{
			R: byte(p),
			G: byte(p >> 8),
			B: byte(p >> 16),
			A: byte(p >> 24),
		})
	}

	thumbHeight := height * thumbnailWidth / width
	dst := image.NewRGBA(image.Rect(0, 0, thumbnailWidth, thumbHeight))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, dst)
}
