package nova

import "math"

// Collide runs the narrowphase on a pair of bodies and returns their contact
// manifold, or nil when they do not touch. The bodies are ordered by id
// first, so Collide(a, b) and Collide(b, a) produce the same manifold.
func Collide(a, b *Body) *Resolution {
	if a.id > b.id {
		a, b = b, a
	}
	if a.shape.Degenerate() || b.shape.Degenerate() {
		return nil
	}

	res := &Resolution{a: a, b: b, key: NewPairKey(a, b)}

	switch sa := a.shape.Class.(type) {
	case *Circle:
		switch sb := b.shape.Class.(type) {
		case *Circle:
			circle2circle(res, sa, sb)
		case *PolyShape:
			circle2poly(res, sa, sb)
		}
	case *PolyShape:
		switch sb := b.shape.Class.(type) {
		case *Circle:
			circle2poly(res, sb, sa)
			res.n = neg(res.n)
		case *PolyShape:
			poly2poly(res, sa, sb)
		}
	default:
		panic("Unknown shape type")
	}

	if res.count == 0 || !isFinite(res.n) {
		return nil
	}
	return res
}

func circle2circle(res *Resolution, c1, c2 *Circle) {
	delta := c2.tc.Sub(c1.tc)
	mindist := c1.r + c2.r
	distsq := lengthSq(delta)

	if distsq >= mindist*mindist {
		return
	}
	dist := math.Sqrt(distsq)
	if dist == 0 {
		// coincident centers have no meaningful normal
		return
	}

	res.n = delta.Mul(1 / dist)
	depth := mindist - dist
	res.addContact(c1.tc.Add(res.n.Mul(c1.r-depth/2)), depth)
}

// circle2poly fills res with the normal pointing from the circle to the
// polygon.
func circle2poly(res *Resolution, circle *Circle, poly *PolyShape) {
	center := circle.tc
	radius := circle.r
	count := poly.Count()

	// Find edge with minimum penetration
	separation := -INFINITY
	face := 0
	for i := 0; i < count; i++ {
		s := poly.tnormals[i].Dot(center.Sub(poly.tverts[i]))
		if s > radius {
			return
		}
		if s > separation {
			separation = s
			face = i
		}
	}

	v1 := poly.tverts[face]
	v2 := poly.tverts[(face+1)%count]

	// center inside the polygon
	if separation < NEARLY_EQUAL_THRESHOLD {
		n := poly.tnormals[face]
		res.n = neg(n)
		res.addContact(center.Sub(n.Mul(radius)), radius-separation)
		return
	}

	dot1 := center.Sub(v1).Dot(v2.Sub(v1))
	dot2 := center.Sub(v2).Dot(v1.Sub(v2))

	switch {
	case dot1 <= 0:
		d2 := distSq(center, v1)
		if d2 > radius*radius {
			return
		}
		res.n = normalize(v1.Sub(center))
		res.addContact(v1, radius-math.Sqrt(d2))
	case dot2 <= 0:
		d2 := distSq(center, v2)
		if d2 > radius*radius {
			return
		}
		res.n = normalize(v2.Sub(center))
		res.addContact(v2, radius-math.Sqrt(d2))
	default:
		n := poly.tnormals[face]
		res.n = neg(n)
		res.addContact(center.Sub(n.Mul(radius)), radius-separation)
	}
}

func poly2poly(res *Resolution, a, b *PolyShape) {
	faceA, separationA := findAxisLeastPenetration(a, b)
	if separationA >= 0 {
		return
	}
	faceB, separationB := findAxisLeastPenetration(b, a)
	if separationB >= 0 {
		return
	}

	ref, inc := a, b
	index := faceA
	flip := false
	if !biasGreaterThan(separationA, separationB) {
		ref, inc = b, a
		index = faceB
		flip = true
	}

	incident := findIncidentFace(ref, inc, index)

	v1 := ref.tverts[index]
	v2 := ref.tverts[(index+1)%ref.Count()]

	side := normalize(v2.Sub(v1))
	refNormal := rperp(side)
	refC := refNormal.Dot(v1)
	negSide := -side.Dot(v1)
	posSide := side.Dot(v2)

	// Clip incident face to reference face side planes
	if clip(neg(side), negSide, &incident) < 2 {
		return
	}
	if clip(side, posSide, &incident) < 2 {
		return
	}

	if flip {
		res.n = neg(refNormal)
	} else {
		res.n = refNormal
	}

	// Keep points behind reference face
	for _, p := range incident {
		separation := refNormal.Dot(p) - refC
		if separation <= 0 {
			res.addContact(p, -separation)
		}
	}
}

// findAxisLeastPenetration returns the face of a whose normal gives the
// largest separation from b. A negative separation is a penetration.
func findAxisLeastPenetration(a, b *PolyShape) (int, float64) {
	bestIndex := 0
	bestDistance := -INFINITY

	for i, n := range a.tnormals {
		support := getSupport(b, neg(n))
		distance := n.Dot(support.Sub(a.tverts[i]))
		if distance > bestDistance {
			bestDistance = distance
			bestIndex = i
		}
	}
	return bestIndex, bestDistance
}

// getSupport returns the vertex of poly furthest along dir.
func getSupport(poly *PolyShape, dir Vector) Vector {
	bestProjection := -INFINITY
	var best Vector
	for _, v := range poly.tverts {
		projection := v.Dot(dir)
		if projection > bestProjection {
			best = v
			bestProjection = projection
		}
	}
	return best
}

// findIncidentFace returns the face of inc most anti-parallel to the
// reference face normal.
func findIncidentFace(ref, inc *PolyShape, index int) [2]Vector {
	refNormal := ref.tnormals[index]

	face := 0
	minDot := INFINITY
	for i, n := range inc.tnormals {
		dot := refNormal.Dot(n)
		if dot < minDot {
			minDot = dot
			face = i
		}
	}
	return [2]Vector{inc.tverts[face], inc.tverts[(face+1)%inc.Count()]}
}

// clip clips the segment face against the plane n.x = c, keeping the part
// behind it, and returns the number of points left.
func clip(n Vector, c float64, face *[2]Vector) int {
	sp := 0
	out := *face

	d1 := n.Dot(face[0]) - c
	d2 := n.Dot(face[1]) - c

	if d1 <= 0 {
		out[sp] = face[0]
		sp++
	}
	if d2 <= 0 {
		out[sp] = face[1]
		sp++
	}

	// the points are on different sides of the plane
	if d1*d2 < 0 {
		alpha := d1 / (d1 - d2)
		out[sp] = face[0].Add(face[1].Sub(face[0]).Mul(alpha))
		sp++
	}

	*face = out
	return sp
}

// biasGreaterThan favors a over b unless b is clearly better, which keeps the
// reference face stable from step to step.
func biasGreaterThan(a, b float64) bool {
	const relative = 0.95
	const absolute = 0.01
	return a >= b*relative+a*absolute
}

// matchContacts carries the accumulated impulses of old over to res. Each new
// contact inherits from the closest unused old contact within threshold.
func (res *Resolution) matchContacts(old *Resolution, threshold float64) {
	var used [MAX_CONTACTS_PER_RESOLUTION]bool
	limit := threshold * threshold

	for i := 0; i < res.count; i++ {
		con := &res.contacts[i]
		best := -1
		bestDist := limit
		for j := 0; j < old.count; j++ {
			if used[j] {
				continue
			}
			d := distSq(con.Point, old.contacts[j].Point)
			if d <= bestDist {
				best = j
				bestDist = d
			}
		}
		if best >= 0 {
			used[best] = true
			con.jnAcc = old.contacts[best].jnAcc
			con.jtAcc = old.contacts[best].jtAcc
		}
	}
}
