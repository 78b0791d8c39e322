// Package cropper locates the endoscope's circular field of view in an
// arbitrarily framed photo and derives a tight crop around it.
//
// Endoscopic captures show a bright circular viewing area against a dark
// surround. The detector binarizes the photo at an automatically selected
// (Otsu) threshold, takes the largest connected bright component, and fits
// the minimal enclosing circle to the component's boundary. The crop is the
// circle's axis-aligned bounding square clipped to the image bounds.
//
// Detection failure is a normal outcome, not an error: downstream stages run
// on the full photo and every coordinate transform degenerates to the
// identity.
package cropper

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/otosight/otosight/internal/geometry"
	osimaging "github.com/otosight/otosight/internal/imaging"
)

// DefaultMinRadiusRatio is the minimum accepted circle radius as a fraction
// of the image's shorter dimension. Fits below it are degenerate or noise:
// the deployed capture rigs produce a field of view spanning at least a third
// of the frame.
const DefaultMinRadiusRatio = 0.15

// Result describes the outcome of circle detection and cropping.
//
// When Success is false, CropBox equals the full original extent and
// CroppedShape equals OriginalShape, so remapping against it is the identity.
// Shapes are (height, width), the convention of the consuming frontend.
type Result struct {
	Success       bool            `json:"success"`
	Center        *geometry.Point `json:"center"`
	Radius        *int            `json:"radius"`
	CropBox       geometry.Rect   `json:"crop_box"`
	OriginalShape [2]int          `json:"original_shape"`
	CroppedShape  [2]int          `json:"cropped_shape"`
}

// Detector finds the circular field of view in endoscope photos.
type Detector struct {
	// MinRadiusRatio rejects circle fits smaller than this fraction of the
	// image's shorter dimension.
	MinRadiusRatio float64
}

// NewDetector returns a Detector with the default acceptance threshold.
func NewDetector() *Detector {
	return &Detector{MinRadiusRatio: DefaultMinRadiusRatio}
}

// Crop locates the circular field of view and returns the cropped region
// together with the detection metadata.
//
// On detection failure the original image is returned unchanged with
// Result.Success false; the caller proceeds on the full photo. The only hard
// error is a zero-dimension input image.
func (d *Detector) Crop(img image.Image) (image.Image, Result, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, Result{}, fmt.Errorf("cannot crop empty image (%dx%d)", w, h)
	}

	fallback := Result{
		Success:       false,
		CropBox:       geometry.Rect{X1: 0, Y1: 0, X2: w, Y2: h},
		OriginalShape: [2]int{h, w},
		CroppedShape:  [2]int{h, w},
	}

	binary, _ := osimaging.BinarizeOtsu(img)
	boundary, ok := largestComponentBoundary(binary)
	if !ok {
		return img, fallback, nil
	}

	circle := geometry.SmallestEnclosingCircle(boundary)
	minDim := math.Min(float64(w), float64(h))
	if circle.Radius < d.MinRadiusRatio*minDim {
		return img, fallback, nil
	}

	cx := int(math.Round(circle.Center.X))
	cy := int(math.Round(circle.Center.Y))
	r := int(math.Round(circle.Radius))

	cropBox := geometry.Rect{
		X1: cx - r,
		Y1: cy - r,
		X2: cx + r,
		Y2: cy + r,
	}.Clip(w, h)

	cropped := imaging.Crop(img, image.Rect(
		bounds.Min.X+cropBox.X1,
		bounds.Min.Y+cropBox.Y1,
		bounds.Min.X+cropBox.X2,
		bounds.Min.Y+cropBox.Y2,
	))

	center := geometry.Point{X: float64(cx), Y: float64(cy)}
	return cropped, Result{
		Success:       true,
		Center:        &center,
		Radius:        &r,
		CropBox:       cropBox,
		OriginalShape: [2]int{h, w},
		CroppedShape:  [2]int{cropBox.Height(), cropBox.Width()},
	}, nil
}

// largestComponentBoundary finds the largest 8-connected bright component in
// a binary image and returns its boundary pixels: bright pixels adjacent to a
// dark 4-neighbor or sitting on the image border. The boundary alone
// determines the enclosing circle, which keeps the fit cheap on large
// components.
func largestComponentBoundary(binary *image.Gray) ([]geometry.Point, bool) {
	w := binary.Bounds().Dx()
	h := binary.Bounds().Dy()

	bright := func(x, y int) bool {
		return binary.GrayAt(binary.Bounds().Min.X+x, binary.Bounds().Min.Y+y).Y > 0
	}

	visited := make([]bool, w*h)
	var bestBoundary []geometry.Point
	bestSize := 0

	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			if visited[sy*w+sx] || !bright(sx, sy) {
				continue
			}

			// Iterative flood fill; recursion would overflow on
			// components spanning most of the frame.
			size := 0
			var boundary []geometry.Point
			stack := [][2]int{{sx, sy}}
			visited[sy*w+sx] = true

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				x, y := p[0], p[1]
				size++

				onEdge := x == 0 || y == 0 || x == w-1 || y == h-1
				if onEdge ||
					!bright(x-1, y) || !bright(x+1, y) ||
					!bright(x, y-1) || !bright(x, y+1) {
					boundary = append(boundary, geometry.Point{X: float64(x), Y: float64(y)})
				}

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := x+dx, y+dy
						if nx < 0 || nx >= w || ny < 0 || ny >= h {
							continue
						}
						if visited[ny*w+nx] || !bright(nx, ny) {
							continue
						}
						visited[ny*w+nx] = true
						stack = append(stack, [2]int{nx, ny})
					}
				}
			}

			if size > bestSize {
				bestSize = size
				bestBoundary = boundary
			}
		}
	}

	return bestBoundary, bestSize > 0
}
