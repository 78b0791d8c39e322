package geometry

import (
	"math"
)

// Circle is a center plus radius in pixel coordinates.
type Circle struct {
	Center Point
	Radius float64
}

// Contains reports whether p lies inside or on the circle, with a small
// epsilon to absorb floating point drift.
func (c Circle) Contains(p Point) bool {
	dx := p.X - c.Center.X
	dy := p.Y - c.Center.Y
	return math.Sqrt(dx*dx+dy*dy) <= c.Radius*(1+1e-12)+1e-9
}

// SmallestEnclosingCircle computes the exact minimal circle containing every
// point, using the incremental construction: grow the circle one point at a
// time, rebuilding with one then two boundary points fixed whenever a point
// falls outside the current circle. Points are processed in input order, so
// the result is reproducible for identical input.
//
// Returns a zero circle when the input is empty.
func SmallestEnclosingCircle(points []Point) Circle {
	var c Circle
	if len(points) == 0 {
		return c
	}

	c = Circle{Center: points[0], Radius: 0}
	for i := 1; i < len(points); i++ {
		if !c.Contains(points[i]) {
			c = circleWithOnePoint(points[:i+1], points[i])
		}
	}
	return c
}

// circleWithOnePoint finds the smallest circle over points with p known to be
// on the boundary.
func circleWithOnePoint(points []Point, p Point) Circle {
	c := Circle{Center: p, Radius: 0}
	for i, q := range points {
		if !c.Contains(q) {
			if c.Radius == 0 {
				c = circleFromTwo(p, q)
			} else {
				c = circleWithTwoPoints(points[:i+1], p, q)
			}
		}
	}
	return c
}

// circleWithTwoPoints finds the smallest circle over points with p and q both
// known to be on the boundary.
func circleWithTwoPoints(points []Point, p, q Point) Circle {
	circ := circleFromTwo(p, q)
	var left, right Circle
	leftOK, rightOK := false, false

	// The third boundary point, if needed, lies on one side of chord pq.
	px, py := q.X-p.X, q.Y-p.Y
	for _, r := range points {
		if circ.Contains(r) {
			continue
		}
		cross := px*(r.Y-p.Y) - py*(r.X-p.X)
		c, ok := circumcircle(p, q, r)
		if !ok {
			continue
		}
		ccross := px*(c.Center.Y-p.Y) - py*(c.Center.X-p.X)
		switch {
		case cross > 0 && (!leftOK || ccross > px*(left.Center.Y-p.Y)-py*(left.Center.X-p.X)):
			left = c
			leftOK = true
		case cross < 0 && (!rightOK || ccross < px*(right.Center.Y-p.Y)-py*(right.Center.X-p.X)):
			right = c
			rightOK = true
		}
	}

	switch {
	case !leftOK && !rightOK:
		return circ
	case !leftOK:
		return right
	case !rightOK:
		return left
	case left.Radius <= right.Radius:
		return left
	default:
		return right
	}
}

// circleFromTwo returns the circle with pq as diameter.
func circleFromTwo(p, q Point) Circle {
	cx := (p.X + q.X) / 2
	cy := (p.Y + q.Y) / 2
	dx := p.X - cx
	dy := p.Y - cy
	return Circle{Center: Point{X: cx, Y: cy}, Radius: math.Sqrt(dx*dx + dy*dy)}
}

// circumcircle returns the circle through three points, failing on
// degenerate (collinear) input.
func circumcircle(a, b, c Point) (Circle, bool) {
	// Translate towards the centroid for numerical stability.
	ox := (min(a.X, min(b.X, c.X)) + max(a.X, max(b.X, c.X))) / 2
	oy := (min(a.Y, min(b.Y, c.Y)) + max(a.Y, max(b.Y, c.Y))) / 2
	ax, ay := a.X-ox, a.Y-oy
	bx, by := b.X-ox, b.Y-oy
	cx, cy := c.X-ox, c.Y-oy

	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	if d == 0 {
		return Circle{}, false
	}
	x := ((ax*ax+ay*ay)*(by-cy) + (bx*bx+by*by)*(cy-ay) + (cx*cx+cy*cy)*(ay-by)) / d
	y := ((ax*ax+ay*ay)*(cx-bx) + (bx*bx+by*by)*(ax-cx) + (cx*cx+cy*cy)*(bx-ax)) / d

	center := Point{X: ox + x, Y: oy + y}
	dx := center.X - a.X
	dy := center.Y - a.Y
	return Circle{Center: center, Radius: math.Sqrt(dx*dx + dy*dy)}, true
}
