// Package analyze orchestrates the full pipeline for one photo: circle
// detection and cropping, engine inference on the selected region, coordinate
// remapping into the requested frame, and response assembly.
//
// Every request is an independent, stateless unit of work; the only shared
// resource is the engine itself, which guards its own admission.
package analyze

import (
	"context"
	"fmt"
	"image"

	"github.com/otosight/otosight/internal/cropper"
	"github.com/otosight/otosight/internal/engine"
	"github.com/otosight/otosight/internal/geometry"
	"github.com/otosight/otosight/internal/imaging"
	"github.com/otosight/otosight/internal/render"
)

// Default thresholds, matching the model's training-time evaluation settings.
const (
	DefaultConfThres = 0.25
	DefaultIoUThres  = 0.45
)

// Params are the effective, post-defaulting settings for one analysis.
type Params struct {
	ConfThres             float64
	IoUThres              float64
	IncludeCropCoords     bool
	CoordinateType        geometry.Frame
	IncludeAnnotatedImage bool
}

// DefaultParams returns the documented request defaults.
func DefaultParams() Params {
	return Params{
		ConfThres:         DefaultConfThres,
		IoUThres:          DefaultIoUThres,
		IncludeCropCoords: true,
		CoordinateType:    geometry.FrameOriginal,
	}
}

// EchoedParams is the parameter block echoed in every response so callers
// can distinguish defaults from explicit values.
type EchoedParams struct {
	ConfThres         float64        `json:"conf_thres"`
	IoUThres          float64        `json:"iou_thres"`
	IncludeCropCoords bool           `json:"include_crop_coords"`
	CoordinateType    geometry.Frame `json:"coordinate_type"`
}

// Result is the assembled analysis outcome.
//
// Detections keep the engine's output order. All geometry is expressed in
// CoordinateType's frame; when the cropper failed, the two frames coincide
// and "cropped" degenerates to the full-image identity.
type Result struct {
	Detections     []engine.Detection `json:"detections"`
	CoordinateType geometry.Frame     `json:"coordinate_type"`
	Parameters     EchoedParams       `json:"parameters"`
	CropInfo       *cropper.Result    `json:"crop_info,omitempty"`
	AnnotatedImage string             `json:"annotated_image,omitempty"`
}

// Analyzer runs the crop, infer, and remap stages against a fixed engine.
type Analyzer struct {
	detector *cropper.Detector
	engine   engine.Engine
}

// New returns an Analyzer over the given engine with a default-configured
// cropper.
func New(eng engine.Engine) *Analyzer {
	return NewWithDetector(eng, cropper.NewDetector())
}

// NewWithDetector returns an Analyzer using a custom-configured cropper.
func NewWithDetector(eng engine.Engine, det *cropper.Detector) *Analyzer {
	return &Analyzer{
		detector: det,
		engine:   eng,
	}
}

// Analyze runs the full pipeline on one decoded photo.
//
// The cropper's failure is not an error: inference falls back to the full
// frame and crop_info reports success=false. Errors from this method are
// internal failures (engine call, mask decoding, render encoding).
func (a *Analyzer) Analyze(ctx context.Context, img image.Image, p Params) (*Result, error) {
	region, cropInfo, err := a.detector.Crop(img)
	if err != nil {
		return nil, fmt.Errorf("crop stage: %w", err)
	}

	detections, err := a.engine.Infer(ctx, region, p.ConfThres, p.IoUThres)
	if err != nil {
		return nil, fmt.Errorf("inference stage: %w", err)
	}
	if detections == nil {
		detections = []engine.Detection{}
	}

	origH, origW := cropInfo.OriginalShape[0], cropInfo.OriginalShape[1]
	remap := p.CoordinateType == geometry.FrameOriginal &&
		cropInfo.Success && !cropInfo.CropBox.Covers(origW, origH)
	if remap {
		detections = toOriginalFrame(detections, cropInfo.CropBox, origW, origH)
	}

	result := &Result{
		Detections:     detections,
		CoordinateType: p.CoordinateType,
		Parameters: EchoedParams{
			ConfThres:         p.ConfThres,
			IoUThres:          p.IoUThres,
			IncludeCropCoords: p.IncludeCropCoords,
			CoordinateType:    p.CoordinateType,
		},
	}
	if p.IncludeCropCoords {
		result.CropInfo = &cropInfo
	}

	if p.IncludeAnnotatedImage {
		// Draw on whichever frame the returned coordinates live in.
		frame := region
		if remap || !cropInfo.Success {
			frame = img
		}
		encoded, err := imaging.EncodePNGBase64(render.Annotate(frame, detections))
		if err != nil {
			return nil, fmt.Errorf("render stage: %w", err)
		}
		result.AnnotatedImage = encoded
	}

	return result, nil
}

// toOriginalFrame translates detections from crop-space into original-space:
// boxes shift by the crop offset and masks are placed pixel-exact into a
// zero grid of the original shape.
func toOriginalFrame(detections []engine.Detection, crop geometry.Rect, origW, origH int) []engine.Detection {
	out := make([]engine.Detection, len(detections))
	for i, det := range detections {
		det.Box = det.Box.ToOriginal(crop)
		if det.Mask != nil {
			det.Mask = det.Mask.PlaceInOriginal(origW, origH, crop)
		}
		out[i] = det
	}
	return out
}
