// Package imaging provides the raster plumbing the analysis pipeline sits on:
// decoding base64 photo payloads, grayscale conversion, automatic (Otsu)
// threshold selection, and base64 PNG encoding of rendered output.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner,
// X increasing rightward and Y increasing downward.
//
// # Input Handling
//
// Photos arrive as base64 strings, optionally carrying a "data:image/...;base64,"
// prefix added by browser canvas exports. DecodeBase64 strips the prefix,
// decodes the payload, and recognizes PNG, JPEG, and GIF containers.
//
// # Thread Safety
//
// Every function is stateless and safe for concurrent use on distinct images.
// Images are never mutated in place; each operation returns fresh data.
package imaging
