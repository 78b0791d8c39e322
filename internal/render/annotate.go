// Package render draws analysis results onto a copy of the analyzed frame:
// bounding box outlines, a translucent mask tint, and class labels. The
// frontend uses the rendered overlay for clinician review next to the raw
// detection payload.
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/otosight/otosight/internal/engine"
)

const (
	boxThickness = 2
	maskAlpha    = 0.4
)

// Palette returns n visually distinct, fully saturated colors. Hues are
// spaced evenly so a class keeps its color across frames and sessions.
func Palette(n int) []color.NRGBA {
	if n <= 0 {
		return nil
	}
	colors := make([]color.NRGBA, n)
	for i := range colors {
		hue := float64(i) * 360.0 / float64(n)
		r, g, b := colorful.Hsv(hue, 0.75, 0.95).RGB255()
		colors[i] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// Annotate draws the detections onto a copy of img. Detection geometry must
// be expressed in img's own frame; the input image is never modified.
func Annotate(img image.Image, detections []engine.Detection) *image.NRGBA {
	out := imaging.Clone(img)
	palette := Palette(len(engine.ClassNames))

	for _, det := range detections {
		c := palette[det.ClassID%len(palette)]

		if det.Mask != nil {
			tintMask(out, det.Mask, c)
		}

		x1, y1 := int(det.Box.X1), int(det.Box.Y1)
		x2, y2 := int(det.Box.X2), int(det.Box.Y2)
		drawRect(out, x1, y1, x2, y2, c)

		label := fmt.Sprintf("%s %.2f", det.ClassName, det.Confidence)
		drawLabel(out, x1, y1-4, label, c)
	}

	return out
}

// drawRect draws an axis-aligned rectangle outline, clipped to the image.
func drawRect(img *image.NRGBA, x1, y1, x2, y2 int, c color.NRGBA) {
	for t := 0; t < boxThickness; t++ {
		for x := x1; x <= x2; x++ {
			setIfInside(img, x, y1+t, c)
			setIfInside(img, x, y2-t, c)
		}
		for y := y1; y <= y2; y++ {
			setIfInside(img, x1+t, y, c)
			setIfInside(img, x2-t, y, c)
		}
	}
}

// tintMask alpha-blends the class color over every set mask pixel.
func tintMask(img *image.NRGBA, mask [][]int, c color.NRGBA) {
	bounds := img.Bounds()
	for y := range mask {
		if y >= bounds.Dy() {
			break
		}
		for x, v := range mask[y] {
			if v == 0 || x >= bounds.Dx() {
				continue
			}
			base := img.NRGBAAt(x, y)
			img.SetNRGBA(x, y, color.NRGBA{
				R: blend(base.R, c.R),
				G: blend(base.G, c.G),
				B: blend(base.B, c.B),
				A: 255,
			})
		}
	}
}

func blend(base, tint uint8) uint8 {
	return uint8(float64(base)*(1-maskAlpha) + float64(tint)*maskAlpha)
}

// drawLabel renders text at the given baseline position using the built-in
// 7x13 bitmap face, nudged inside the frame when the box sits at the edge.
func drawLabel(img *image.NRGBA, x, y int, text string, c color.NRGBA) {
	if y < basicfont.Face7x13.Ascent {
		y = basicfont.Face7x13.Ascent
	}
	if x < 0 {
		x = 0
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func setIfInside(img *image.NRGBA, x, y int, c color.NRGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetNRGBA(x, y, c)
	}
}
