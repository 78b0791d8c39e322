package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/otosight/otosight/internal/engine"
	"github.com/otosight/otosight/internal/geometry"
)

func grayFrame(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
		}
	}
	return img
}

func TestPalette(t *testing.T) {
	colors := Palette(len(engine.ClassNames))
	if len(colors) != 18 {
		t.Fatalf("palette size: got %d, want 18", len(colors))
	}
	seen := make(map[color.NRGBA]bool)
	for _, c := range colors {
		if seen[c] {
			t.Errorf("duplicate palette color %+v", c)
		}
		seen[c] = true
	}
	if Palette(0) != nil {
		t.Error("empty palette should be nil")
	}
}

func TestAnnotateDrawsBox(t *testing.T) {
	src := grayFrame(100, 100)
	dets := []engine.Detection{{
		Box:        geometry.Box{X1: 20, Y1: 20, X2: 60, Y2: 60},
		Confidence: 0.9,
		ClassID:    0,
		ClassName:  "eardrum_perforation",
	}}

	out := Annotate(src, dets)

	// The box edge must differ from the background; the interior must not.
	if out.NRGBAAt(40, 20) == src.NRGBAAt(40, 20) {
		t.Error("top edge of box was not drawn")
	}
	if out.NRGBAAt(40, 40) != src.NRGBAAt(40, 40) {
		t.Error("box interior should be untouched without a mask")
	}

	// Source image must stay unmodified.
	if src.NRGBAAt(40, 20) != (color.NRGBA{R: 100, G: 100, B: 100, A: 255}) {
		t.Error("Annotate modified its input image")
	}
}

func TestAnnotateTintsMask(t *testing.T) {
	src := grayFrame(50, 50)
	mask := geometry.NewMask(50, 50)
	for y := 30; y < 40; y++ {
		for x := 30; x < 40; x++ {
			mask[y][x] = 1
		}
	}
	dets := []engine.Detection{{
		Box:        geometry.Box{X1: 30, Y1: 30, X2: 40, Y2: 40},
		Confidence: 0.8,
		ClassID:    3,
		ClassName:  "blood_clot",
		Mask:       mask,
	}}

	out := Annotate(src, dets)

	if out.NRGBAAt(35, 35) == src.NRGBAAt(35, 35) {
		t.Error("mask pixel should be tinted")
	}
	if out.NRGBAAt(10, 10) != src.NRGBAAt(10, 10) {
		t.Error("pixels outside box and mask should be untouched")
	}
}

func TestAnnotateBoxAtImageEdge(t *testing.T) {
	src := grayFrame(40, 40)
	dets := []engine.Detection{{
		Box:        geometry.Box{X1: 0, Y1: 0, X2: 39, Y2: 39},
		Confidence: 0.5,
		ClassID:    1,
		ClassName:  "atresia",
	}}

	// Must not panic on labels or outlines at the frame boundary.
	out := Annotate(src, dets)
	if out == nil {
		t.Fatal("Annotate returned nil")
	}
}
