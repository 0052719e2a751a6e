package nova

import "math"

// Axis-aligned bounding box. L/B/R/T are the left, bottom, right and top edges.
type BB struct {
	L, B, R, T float64
}

func NewBB(l, b, r, t float64) BB {
	return BB{L: l, B: b, R: r, T: t}
}

func NewBBForExtents(c Vector, hw, hh float64) BB {
	return BB{
		L: c[0] - hw,
		B: c[1] - hh,
		R: c[0] + hw,
		T: c[1] + hh,
	}
}

func NewBBForCircle(p Vector, r float64) BB {
	return NewBBForExtents(p, r, r)
}

// NewBBForPoints returns the smallest box containing every point.
func NewBBForPoints(points []Vector) BB {
	if len(points) == 0 {
		return BB{}
	}
	bb := BB{points[0][0], points[0][1], points[0][0], points[0][1]}
	for _, p := range points[1:] {
		bb = bb.Expand(p)
	}
	return bb
}

func (a BB) Intersects(b BB) bool {
	return a.L <= b.R && b.L <= a.R && a.B <= b.T && b.B <= a.T
}

func (bb BB) Contains(other BB) bool {
	return bb.L <= other.L && bb.R >= other.R && bb.B <= other.B && bb.T >= other.T
}

func (bb BB) ContainsVect(v Vector) bool {
	return bb.L <= v[0] && bb.R >= v[0] && bb.B <= v[1] && bb.T >= v[1]
}

func (a BB) Merge(b BB) BB {
	return BB{
		math.Min(a.L, b.L),
		math.Min(a.B, b.B),
		math.Max(a.R, b.R),
		math.Max(a.T, b.T),
	}
}

func (bb BB) Expand(v Vector) BB {
	return BB{
		math.Min(bb.L, v[0]),
		math.Min(bb.B, v[1]),
		math.Max(bb.R, v[0]),
		math.Max(bb.T, v[1]),
	}
}

func (bb BB) Center() Vector {
	return Vector{(bb.L + bb.R) / 2, (bb.B + bb.T) / 2}
}

func (bb BB) Width() float64 {
	return bb.R - bb.L
}

func (bb BB) Height() float64 {
	return bb.T - bb.B
}

func (bb BB) Area() float64 {
	return (bb.R - bb.L) * (bb.T - bb.B)
}
