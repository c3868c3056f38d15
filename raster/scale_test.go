package raster

import "testing"

func TestScaleCoordsOrigin(t *testing.T) {
	x, y := ScaleCoords(0, 0, VRAMWidth, VRAMHeight)
	if x != 0 || y != 511 {
		t.Fatalf("got (%d,%d), want (0,511)", x, y)
	}
}

func TestScaleCoordsFarCorner(t *testing.T) {
	// 1024 and 512 are both one past the VRAM edge, and y=512 overflows
	// the 9-bit y register; the edge case is deliberate - it exercises the
	// wraparound the y complement performs for out-of-range input.
	x, y := ScaleCoords(1024, 512, VRAMWidth, VRAMHeight)
	if x != 1024 || y != 511 {
		t.Fatalf("got (%d,%d), want (1024,511)", x, y)
	}
}

func TestScaleCoordsDownscale(t *testing.T) {
	x, y := ScaleCoords(512, 255, 640, 480)
	if x != 320 {
		t.Fatalf("x = %d, want 320", x)
	}
	if y != 240 {
		t.Fatalf("y = %d, want 240", y)
	}
}

func TestScaleScissorConvertsBothCorners(t *testing.T) {
	left, top := ScaleCoords(0, 0, 640, 480)
	right, bottom := ScaleCoords(100, 100, 640, 480)
	want := Rect{Left: int16(left), Top: int16(bottom), Right: int16(right), Bottom: int16(top)}

	got := scaleScissor(Rect{0, 0, 100, 100}, 640, 480)
	if got != want {
		t.Fatalf("scaleScissor = %+v, want %+v", got, want)
	}
}

func TestScaleScissorCollapsesDegenerateRectToZeroArea(t *testing.T) {
	// left > right: the PSX writes the drawing area's two corners via
	// independent register updates, so the rectangle is briefly inverted
	// between them.
	got := scaleScissor(Rect{Left: 100, Top: 0, Right: 0, Bottom: 100}, 640, 480)
	if width := got.Right - got.Left + 1; width != 0 {
		t.Fatalf("degenerate width = %d, want 0", width)
	}
	if height := got.Bottom - got.Top + 1; height != 0 {
		t.Fatalf("degenerate height = %d, want 0", height)
	}
}
