package nova

import "math"

// Polygons with less area than this are considered degenerate.
const minPolyArea = 1e-9

// Shorter edges are collapsed into a single vertex.
const minEdgeLength = 1e-6

type PolyShape struct {
	*Shape

	// local vertices, counter-clockwise around the centroid
	verts   []Vector
	normals []Vector

	// world space copies, refreshed by CacheData
	tverts   []Vector
	tnormals []Vector

	area       float64
	degenerate bool
}

// Create a convex polygon. The vertices are re-wound counter-clockwise and
// shifted so the centroid sits on the body origin. Repeated neighbouring
// vertices are dropped. Fewer than three distinct vertices or zero area
// produce a degenerate polygon which never collides.
func NewPolyShape(verts []Vector) *Shape {
	poly := &PolyShape{}
	poly.SetVerts(verts)
	poly.Shape = NewShape(poly)
	return poly.Shape
}

// Create an axis aligned box centered on the body origin.
func NewBoxShape(width, height float64) *Shape {
	hw := width / 2
	hh := height / 2
	return NewPolyShape([]Vector{
		{-hw, -hh},
		{hw, -hh},
		{hw, hh},
		{-hw, hh},
	})
}

func (poly *PolyShape) SetVerts(verts []Vector) {
	poly.verts = dedupVerts(verts)
	count := len(poly.verts)

	area := AreaForPoly(poly.verts)
	if area < 0 {
		for i, j := 0, count-1; i < j; i, j = i+1, j-1 {
			poly.verts[i], poly.verts[j] = poly.verts[j], poly.verts[i]
		}
		area = -area
	}
	poly.area = area
	poly.degenerate = count < 3 || area < minPolyArea

	if !poly.degenerate {
		centroid := CentroidForPoly(poly.verts)
		for i := range poly.verts {
			poly.verts[i] = poly.verts[i].Sub(centroid)
		}
	}

	poly.normals = make([]Vector, count)
	for i := 0; i < count; i++ {
		a := poly.verts[i]
		b := poly.verts[(i+1)%count]
		poly.normals[i] = normalize(rperp(b.Sub(a)))
	}

	poly.tverts = make([]Vector, count)
	poly.tnormals = make([]Vector, count)
}

// dedupVerts copies verts without repeated neighbours, wrapping from the last
// vertex to the first, so no edge has a zero length normal.
func dedupVerts(verts []Vector) []Vector {
	out := make([]Vector, 0, len(verts))
	for _, v := range verts {
		if len(out) > 0 && distSq(out[len(out)-1], v) < minEdgeLength*minEdgeLength {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && distSq(out[len(out)-1], out[0]) < minEdgeLength*minEdgeLength {
		out = out[:len(out)-1]
	}
	return out
}

func (poly *PolyShape) CacheData(p Vector, rot Mat2) BB {
	for i, v := range poly.verts {
		poly.tverts[i] = p.Add(rotate(rot, v))
		poly.tnormals[i] = rotate(rot, poly.normals[i])
	}
	if len(poly.tverts) == 0 {
		return NewBBForExtents(p, 0, 0)
	}
	return NewBBForPoints(poly.tverts)
}

func (poly *PolyShape) Count() int {
	return len(poly.verts)
}

// Vert returns the i'th vertex in body local coordinates.
func (poly *PolyShape) Vert(i int) Vector {
	return poly.verts[i]
}

// TransformedVerts returns the world space vertices as of the last update.
func (poly *PolyShape) TransformedVerts() []Vector {
	return poly.tverts
}

func (poly *PolyShape) Area() float64 {
	return poly.area
}

func (poly *PolyShape) Moment(mass float64) float64 {
	if poly.degenerate {
		return 0
	}
	return MomentForPoly(mass, poly.verts)
}

func (poly *PolyShape) Type() ShapeType {
	return SHAPE_POLYGON
}

func (poly *PolyShape) Degenerate() bool {
	return poly.degenerate
}

// Signed area of a polygon, positive when wound counter-clockwise.
func AreaForPoly(verts []Vector) float64 {
	count := len(verts)
	if count < 3 {
		return 0
	}
	var area float64
	for i := 0; i < count; i++ {
		area += cross(verts[i], verts[(i+1)%count])
	}
	return area / 2
}

func CentroidForPoly(verts []Vector) Vector {
	var sum float64
	var vsum Vector
	count := len(verts)

	for i := 0; i < count; i++ {
		v1 := verts[i]
		v2 := verts[(i+1)%count]
		c := cross(v1, v2)

		sum += c
		vsum = vsum.Add(v1.Add(v2).Mul(c))
	}

	if sum == 0 {
		return Vector{}
	}
	return vsum.Mul(1 / (3 * sum))
}

// Moment of inertia of a solid polygon about the origin.
func MomentForPoly(m float64, verts []Vector) float64 {
	var sum1, sum2 float64
	count := len(verts)
	for i := 0; i < count; i++ {
		v1 := verts[i]
		v2 := verts[(i+1)%count]

		a := cross(v2, v1)
		b := v1.Dot(v1) + v1.Dot(v2) + v2.Dot(v2)

		sum1 += a * b
		sum2 += a
	}
	if sum2 == 0 {
		return 0
	}
	return math.Abs(m * sum1 / (6.0 * sum2))
}
