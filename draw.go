package nova

//Draw flags
const (
	DRAW_SHAPES           = 1 << 0
	DRAW_CONSTRAINTS      = 1 << 1
	DRAW_COLLISION_POINTS = 1 << 2
)

type FColor struct {
	R, G, B, A float32
}

// Drawer renders debug geometry in world coordinates.
type Drawer interface {
	DrawCircle(pos Vector, angle, radius float64, outline, fill FColor)
	DrawSegment(a, b Vector, fill FColor)
	DrawPolygon(verts []Vector, outline, fill FColor)
	DrawDot(size float64, pos Vector, fill FColor)

	Flags() uint
	OutlineColor() FColor
	ShapeColor(body *Body) FColor
	ConstraintColor() FColor
	CollisionPointColor() FColor
}

func DrawShape(shape *Shape, options Drawer) {
	body := shape.body
	outline := options.OutlineColor()
	fill := options.ShapeColor(body)

	switch class := shape.Class.(type) {
	case *Circle:
		options.DrawCircle(class.tc, body.a, class.r, outline, fill)
	case *PolyShape:
		options.DrawPolygon(class.tverts, outline, fill)
	default:
		panic("Unknown shape type")
	}
}

func DrawConstraint(constraint *Constraint, options Drawer) {
	a := constraint.a
	b := constraint.b
	color := options.ConstraintColor()

	switch joint := constraint.Class.(type) {
	case *DistanceJoint:
		p1 := a.LocalToWorld(joint.AnchorA)
		p2 := b.LocalToWorld(joint.AnchorB)
		options.DrawDot(5, p1, color)
		options.DrawDot(5, p2, color)
		options.DrawSegment(p1, p2, color)
	case *Spring:
		p1 := a.LocalToWorld(joint.AnchorA)
		p2 := b.LocalToWorld(joint.AnchorB)
		options.DrawDot(5, p1, color)
		options.DrawDot(5, p2, color)
		drawSpring(p1, p2, options, color)
	case *PivotJoint:
		p1 := a.LocalToWorld(joint.AnchorA)
		p2 := b.LocalToWorld(joint.AnchorB)
		options.DrawDot(5, p1, color)
		options.DrawDot(5, p2, color)
	}
}

// zig-zag between the spring anchors
func drawSpring(a, b Vector, options Drawer, color FColor) {
	const coils = 6
	delta := b.Sub(a)
	side := normalize(perp(delta)).Mul(0.1 * delta.Len())

	prev := a
	for i := 1; i <= 2*coils; i++ {
		p := a.Add(delta.Mul(float64(i) / float64(2*coils+1)))
		if i%2 == 0 {
			p = p.Add(side)
		} else {
			p = p.Sub(side)
		}
		options.DrawSegment(prev, p, color)
		prev = p
	}
	options.DrawSegment(prev, b, color)
}

func DrawSpace(space *Space, options Drawer) {
	flags := options.Flags()

	if flags&DRAW_SHAPES != 0 {
		for _, body := range space.bodies {
			DrawShape(body.shape, options)
		}
	}

	if flags&DRAW_CONSTRAINTS != 0 {
		for _, constraint := range space.constraints {
			DrawConstraint(constraint, options)
		}
	}

	if flags&DRAW_COLLISION_POINTS != 0 {
		color := options.CollisionPointColor()
		for _, res := range space.resolutions {
			n := res.n
			for _, con := range res.Contacts() {
				options.DrawSegment(con.Point, con.Point.Add(n.Mul(con.Depth)), color)
				options.DrawDot(3, con.Point, color)
			}
		}
	}
}
