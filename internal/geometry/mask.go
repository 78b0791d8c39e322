package geometry

import (
	"image"
)

// Mask is a binary per-instance segmentation grid. Each row holds 0/1 values;
// the grid is rectangular and indexed mask[y][x]. A nil Mask means the
// detection carried no mask at all, which is distinct from an all-zero grid.
//
// Masks serialize as nested JSON arrays of 0/1 integers, matching the wire
// contract the frontend renders from.
type Mask [][]int

// NewMask allocates a zero-filled mask of the given dimensions.
func NewMask(width, height int) Mask {
	m := make(Mask, height)
	for y := range m {
		m[y] = make([]int, width)
	}
	return m
}

// MaskFromImage converts a decoded mask image into a binary grid. Pixels with
// luminance above 127 become 1. The producer's grid resolution is preserved.
func MaskFromImage(img image.Image) Mask {
	bounds := img.Bounds()
	m := NewMask(bounds.Dx(), bounds.Dy())
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			if lum > 127 {
				m[y][x] = 1
			}
		}
	}
	return m
}

// Width returns the horizontal extent of the grid, 0 for a nil mask.
func (m Mask) Width() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Height returns the vertical extent of the grid.
func (m Mask) Height() int { return len(m) }

// PlaceInOriginal copies a crop-resolution mask into a zero grid sized to the
// original image, positioned at the crop offset. Placement is pixel-exact:
// the grid is never resized or interpolated, because mask cells are binary
// classifications rather than continuous imagery. Source pixels that would
// land outside the original extent are dropped.
func (m Mask) PlaceInOriginal(origWidth, origHeight int, crop Rect) Mask {
	out := NewMask(origWidth, origHeight)
	for y := range m {
		oy := crop.Y1 + y
		if oy < 0 || oy >= origHeight {
			continue
		}
		for x, v := range m[y] {
			ox := crop.X1 + x
			if ox < 0 || ox >= origWidth {
				continue
			}
			out[oy][ox] = v
		}
	}
	return out
}

// Bounds returns the tight bounding rectangle of set pixels and whether any
// pixel is set at all.
func (m Mask) Bounds() (Rect, bool) {
	found := false
	r := Rect{}
	for y := range m {
		for x, v := range m[y] {
			if v == 0 {
				continue
			}
			if !found {
				r = Rect{X1: x, Y1: y, X2: x + 1, Y2: y + 1}
				found = true
				continue
			}
			if x < r.X1 {
				r.X1 = x
			}
			if x+1 > r.X2 {
				r.X2 = x + 1
			}
			if y < r.Y1 {
				r.Y1 = y
			}
			if y+1 > r.Y2 {
				r.Y2 = y + 1
			}
		}
	}
	return r, found
}
