// Package geometry provides coordinate transforms between the two frames the
// analysis pipeline exposes: crop-space (the detection engine's native frame)
// and original-space (the frame of the submitted photo).
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Rectangles and boxes are (x1, y1, x2, y2) with x1 < x2 and y1 < y2
//
// # Frames
//
// Exactly two frames exist. Crop-space is whatever frame the engine ran in;
// original-space is the submitted photo's pixel grid. When cropping was not
// performed the two frames coincide and every transform is the identity.
// A third frame must be added as a new named Frame value, never inferred.
//
// # Invariants
//
//   - ToOriginal(ToCropped(p)) == p for any point p inside or on the crop box
//   - ToCropped clamps out-of-range input into [0, crop width/height]
//   - Mask placement is pixel-exact; masks are never interpolated
package geometry
