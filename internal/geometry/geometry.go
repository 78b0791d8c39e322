package geometry

import (
	"encoding/json"
	"fmt"
)

// Frame identifies the coordinate frame detection geometry is expressed in.
type Frame string

const (
	// FrameOriginal is the pixel grid of the submitted photo.
	FrameOriginal Frame = "original"

	// FrameCropped is the detection engine's native frame: the crop region
	// when circle detection succeeded, the full photo otherwise.
	FrameCropped Frame = "cropped"
)

// ParseFrame validates a wire-format frame name.
func ParseFrame(s string) (Frame, error) {
	switch Frame(s) {
	case FrameOriginal, FrameCropped:
		return Frame(s), nil
	}
	return "", fmt.Errorf("unknown coordinate frame %q", s)
}

// Point is a 2D pixel coordinate. It serializes as a [x, y] JSON array, the
// wire convention inherited from the deployed frontend contract.
type Point struct {
	X float64
	Y float64
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes a [x, y] array.
func (p *Point) UnmarshalJSON(data []byte) error {
	var arr [2]float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	p.X, p.Y = arr[0], arr[1]
	return nil
}

// Rect is an axis-aligned integer rectangle used for crop regions.
// (X1, Y1) is the inclusive top-left corner, (X2, Y2) the exclusive
// bottom-right corner. It serializes as a [x1, y1, x2, y2] JSON array.
type Rect struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

// MarshalJSON encodes the rectangle as [x1, y1, x2, y2].
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{r.X1, r.Y1, r.X2, r.Y2})
}

// UnmarshalJSON decodes a [x1, y1, x2, y2] array.
func (r *Rect) UnmarshalJSON(data []byte) error {
	var arr [4]int
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	r.X1, r.Y1, r.X2, r.Y2 = arr[0], arr[1], arr[2], arr[3]
	return nil
}

// Width returns the horizontal extent in pixels.
func (r Rect) Width() int { return r.X2 - r.X1 }

// Height returns the vertical extent in pixels.
func (r Rect) Height() int { return r.Y2 - r.Y1 }

// Clip constrains the rectangle to lie within a width x height image.
func (r Rect) Clip(width, height int) Rect {
	return Rect{
		X1: max(0, r.X1),
		Y1: max(0, r.Y1),
		X2: min(width, r.X2),
		Y2: min(height, r.Y2),
	}
}

// Covers reports whether the rectangle spans the full width x height extent.
// A covering rectangle makes every frame transform the identity.
func (r Rect) Covers(width, height int) bool {
	return r.X1 == 0 && r.Y1 == 0 && r.X2 == width && r.Y2 == height
}

// Box is a detection bounding box in sub-pixel coordinates. Like Rect it
// serializes as a [x1, y1, x2, y2] JSON array.
type Box struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

// MarshalJSON encodes the box as [x1, y1, x2, y2].
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X1, b.Y1, b.X2, b.Y2})
}

// UnmarshalJSON decodes a [x1, y1, x2, y2] array.
func (b *Box) UnmarshalJSON(data []byte) error {
	var arr [4]float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	b.X1, b.Y1, b.X2, b.Y2 = arr[0], arr[1], arr[2], arr[3]
	return nil
}

// ToOriginal translates a crop-space box into original-space by adding the
// crop offset. It is the identity when crop has a zero origin.
func (b Box) ToOriginal(crop Rect) Box {
	return Box{
		X1: b.X1 + float64(crop.X1),
		Y1: b.Y1 + float64(crop.Y1),
		X2: b.X2 + float64(crop.X1),
		Y2: b.Y2 + float64(crop.Y1),
	}
}

// ToCropped translates an original-space box into crop-space by subtracting
// the crop offset. Coordinates falling outside the crop region are clamped
// into [0, width] and [0, height] so boxes near the crop boundary never
// produce negative or out-of-range values.
func (b Box) ToCropped(crop Rect) Box {
	w := float64(crop.Width())
	h := float64(crop.Height())
	return Box{
		X1: clampF(b.X1-float64(crop.X1), 0, w),
		Y1: clampF(b.Y1-float64(crop.Y1), 0, h),
		X2: clampF(b.X2-float64(crop.X1), 0, w),
		Y2: clampF(b.Y2-float64(crop.Y1), 0, h),
	}
}

// ToOriginal translates a crop-space point into original-space.
func (p Point) ToOriginal(crop Rect) Point {
	return Point{X: p.X + float64(crop.X1), Y: p.Y + float64(crop.Y1)}
}

// ToCropped translates an original-space point into crop-space, clamping
// out-of-range input onto the crop boundary.
func (p Point) ToCropped(crop Rect) Point {
	return Point{
		X: clampF(p.X-float64(crop.X1), 0, float64(crop.Width())),
		Y: clampF(p.Y-float64(crop.Y1), 0, float64(crop.Height())),
	}
}

// IoU returns the intersection-over-union of two boxes. Non-overlapping or
// degenerate boxes score 0.
func IoU(a, b Box) float64 {
	ix := min(a.X2, b.X2) - max(a.X1, b.X1)
	iy := min(a.Y2, b.Y2) - max(a.Y1, b.Y1)
	if ix <= 0 || iy <= 0 {
		return 0
	}
	inter := ix * iy
	areaA := (a.X2 - a.X1) * (a.Y2 - a.Y1)
	areaB := (b.X2 - b.X1) * (b.Y2 - b.Y1)
	union := areaA + areaB - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
