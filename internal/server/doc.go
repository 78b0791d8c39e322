// Package server exposes the analysis pipeline over HTTP.
//
// Three endpoints are served under /api:
//   - GET  /api/health  — liveness plus whether the detection engine is loaded
//   - GET  /api/info    — service metadata: version, features, class vocabulary
//   - POST /api/analyze — run the full pipeline on one base64-encoded photo
//
// The transport is deliberately thin: it parses and validates the request,
// maps pipeline outcomes onto status codes, and never makes detection
// decisions of its own. Input problems return 400 with the offending field
// named; an unloaded engine returns 500 until resolved; unexpected pipeline
// failures return 500 with a generic body and a logged cause. A clean run
// with zero findings is a 200 like any other.
package server
