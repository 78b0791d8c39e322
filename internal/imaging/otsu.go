package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/segment"
	"gonum.org/v1/gonum/floats"
)

// Histogram computes the 256-bin luminance histogram of an image using the
// ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B).
func Histogram(img image.Image) [256]int {
	var hist [256]int
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			hist[uint8(lum)]++
		}
	}
	return hist
}

// OtsuLevel selects the binarization threshold that maximizes between-class
// variance over the luminance histogram. Illumination varies widely between
// endoscope captures, so a fixed constant would misclassify either the bright
// field of view or the dark surround on a large share of inputs.
//
// Pixels strictly above the returned level belong to the bright class.
func OtsuLevel(hist [256]int) uint8 {
	counts := make([]float64, 256)
	moments := make([]float64, 256)
	for i, c := range hist {
		counts[i] = float64(c)
		moments[i] = float64(c) * float64(i)
	}
	floats.CumSum(counts, counts)
	floats.CumSum(moments, moments)

	total := counts[255]
	totalMoment := moments[255]
	if total == 0 {
		return 0
	}

	bestLevel := uint8(0)
	bestVariance := -1.0

	for t := 0; t < 256; t++ {
		w0 := counts[t]
		w1 := total - w0
		if w0 == 0 || w1 == 0 {
			continue
		}
		mu0 := moments[t] / w0
		mu1 := (totalMoment - moments[t]) / w1
		diff := mu0 - mu1
		variance := w0 * w1 * diff * diff
		if variance > bestVariance {
			bestVariance = variance
			bestLevel = uint8(t)
		}
	}

	return bestLevel
}

// BinarizeOtsu thresholds an image at its Otsu level and returns the binary
// grayscale result, where bright pixels are white (255). Only pixels strictly
// above the level count as bright, so a uniformly dark frame binarizes to
// all-black rather than all-white.
func BinarizeOtsu(img image.Image) (*image.Gray, uint8) {
	level := OtsuLevel(Histogram(img))
	cutoff := level
	if cutoff < 255 {
		cutoff++
	}
	return segment.Threshold(img, cutoff), level
}
