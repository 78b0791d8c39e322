// Package engine wraps the trained segmentation/detection model behind a
// uniform adapter interface and normalizes its raw output.
//
// The model itself is opaque: any runtime that can turn an image into raw
// candidates (a native library, a remote weights server, a test stub) plugs
// in behind the Engine interface. The adapter owns everything downstream of
// the raw output — confidence filtering, per-class non-maximum suppression,
// and mask decoding — so results are reproducible regardless of which
// runtime produced the candidates.
//
// All geometry leaving this package is in crop-space: the frame of the image
// handed to Infer.
package engine

import (
	"context"
	"image"

	"github.com/otosight/otosight/internal/geometry"
)

// Detection is one normalized model finding in crop-space.
type Detection struct {
	// Box is the bounding box in the frame of the inferred image.
	Box geometry.Box `json:"bbox"`

	// Confidence is the model's score in [0, 1].
	Confidence float64 `json:"confidence"`

	// ClassID is the index into the training class vocabulary.
	ClassID int `json:"class_id"`

	// ClassName is the label for ClassID.
	ClassName string `json:"class_name"`

	// Mask is the per-instance segmentation grid at crop resolution.
	// Omitted entirely when the model emitted no mask for this instance.
	Mask geometry.Mask `json:"mask,omitempty"`
}

// RawCandidate is one unfiltered model output as produced by a runtime,
// before confidence filtering and suppression.
type RawCandidate struct {
	Box     geometry.Box `json:"bbox"`
	Score   float64      `json:"score"`
	ClassID int          `json:"class_id"`

	// MaskPNG is the instance mask as a base64 PNG, empty when the model
	// emitted none.
	MaskPNG string `json:"mask,omitempty"`
}

// RuntimeInfo describes the loaded model runtime for the info endpoint.
type RuntimeInfo struct {
	Device  string `json:"device"`
	ImgSize int    `json:"img_size"`
}

// Engine is the adapter interface over an opaque trained model.
//
// Infer runs detection on a single image and returns normalized detections
// in the image's own frame: confidence-filtered, per-class suppressed, in
// the model's original output order. For fixed weights, image bytes, and
// thresholds the result must be identical across calls.
type Engine interface {
	Infer(ctx context.Context, img image.Image, confThres, iouThres float64) ([]Detection, error)
	Info() RuntimeInfo
	Close() error
}
