package engine

import (
	"context"
	"image"

	"golang.org/x/sync/semaphore"
)

// Gated serializes inference through a fixed number of admission slots.
//
// Inference runtimes are not necessarily reentrant; with a single slot
// (the default) at most one inference is in flight at a time while the pure
// crop and remap stages of concurrent requests run unimpeded. Requests block
// only here, never against each other elsewhere.
type Gated struct {
	inner Engine
	sem   *semaphore.Weighted
}

// NewGated wraps an engine with an admission gate of the given width.
// Widths below 1 are treated as 1.
func NewGated(inner Engine, slots int64) *Gated {
	if slots < 1 {
		slots = 1
	}
	return &Gated{
		inner: inner,
		sem:   semaphore.NewWeighted(slots),
	}
}

// Infer acquires a slot, runs the wrapped engine, and releases the slot.
// Acquisition respects context cancellation, but an inference that has
// started is never cancelled mid-flight; an abandoning caller simply stops
// waiting for the result.
func (g *Gated) Infer(ctx context.Context, img image.Image, confThres, iouThres float64) ([]Detection, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer g.sem.Release(1)
	return g.inner.Infer(ctx, img, confThres, iouThres)
}

// Info delegates to the wrapped engine.
func (g *Gated) Info() RuntimeInfo { return g.inner.Info() }

// Close delegates to the wrapped engine.
func (g *Gated) Close() error { return g.inner.Close() }
