package engine

import (
	"fmt"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/otosight/otosight/internal/geometry"
	osimaging "github.com/otosight/otosight/internal/imaging"
)

// Postprocess turns raw model candidates into normalized detections:
//
//  1. Confidence filter: candidates scoring below confThres are dropped
//     before suppression (cheap early rejection, masks never decoded).
//  2. Greedy per-class NMS: candidates are visited in descending confidence
//     order (ties broken by raw output order); each kept box suppresses
//     remaining same-class boxes whose IoU with it exceeds iouThres.
//     Cross-class overlap is never suppressed.
//  3. Survivors are returned in the raw output order, not confidence order,
//     and their masks are decoded at the target (crop) resolution.
//
// Every step is deterministic for identical input.
func Postprocess(raw []RawCandidate, confThres, iouThres float64, targetW, targetH int) ([]Detection, error) {
	// Indices of candidates passing the confidence filter, in raw order.
	kept := make([]int, 0, len(raw))
	for i, c := range raw {
		if c.Score >= confThres {
			kept = append(kept, i)
		}
	}

	// Visit order for suppression: descending score, ties by raw order.
	order := make([]int, len(kept))
	copy(order, kept)
	sort.SliceStable(order, func(a, b int) bool {
		return raw[order[a]].Score > raw[order[b]].Score
	})

	suppressed := make(map[int]bool, len(kept))
	for i, n := range order {
		if suppressed[n] {
			continue
		}
		for _, m := range order[i+1:] {
			if suppressed[m] || raw[m].ClassID != raw[n].ClassID {
				continue
			}
			if geometry.IoU(raw[n].Box, raw[m].Box) > iouThres {
				suppressed[m] = true
			}
		}
	}

	detections := make([]Detection, 0, len(kept))
	for _, n := range kept {
		if suppressed[n] {
			continue
		}
		c := raw[n]
		det := Detection{
			Box:        c.Box,
			Confidence: c.Score,
			ClassID:    c.ClassID,
			ClassName:  ClassName(c.ClassID),
		}
		if c.MaskPNG != "" {
			mask, err := decodeMask(c.MaskPNG, targetW, targetH)
			if err != nil {
				return nil, fmt.Errorf("decode mask for candidate %d: %w", n, err)
			}
			det.Mask = mask
		}
		detections = append(detections, det)
	}

	return detections, nil
}

// decodeMask converts a base64 PNG instance mask into a binary grid at the
// target resolution. Producers sometimes emit masks at the model's letterbox
// scale rather than the crop's; those are resized nearest-neighbour before
// binarization, since mask cells are class labels and must not be blended.
func decodeMask(payload string, targetW, targetH int) (geometry.Mask, error) {
	img, err := osimaging.DecodeBase64(payload)
	if err != nil {
		return nil, err
	}
	if img.Bounds().Dx() != targetW || img.Bounds().Dy() != targetH {
		img = imaging.Resize(img, targetW, targetH, imaging.NearestNeighbor)
	}
	return geometry.MaskFromImage(img), nil
}
