package nova

import "math"

type Circle struct {
	*Shape
	tc Vector
	r  float64
}

func NewCircleShape(radius float64) *Shape {
	assert(radius >= 0, "Circle radius must be non-negative")
	circle := &Circle{r: radius}
	circle.Shape = NewShape(circle)
	return circle.Shape
}

func (circle *Circle) CacheData(p Vector, _ Mat2) BB {
	circle.tc = p
	return NewBBForCircle(circle.tc, circle.r)
}

func (circle *Circle) Radius() float64 {
	return circle.r
}

func (circle *Circle) TransformC() Vector {
	return circle.tc
}

func (circle *Circle) Area() float64 {
	return AreaForCircle(circle.r)
}

func (circle *Circle) Moment(mass float64) float64 {
	return MomentForCircle(mass, circle.r)
}

func (circle *Circle) Type() ShapeType {
	return SHAPE_CIRCLE
}

func (circle *Circle) Degenerate() bool {
	return circle.r == 0
}

func AreaForCircle(r float64) float64 {
	return math.Pi * r * r
}

// Moment of inertia of a solid disc about its center.
func MomentForCircle(m, r float64) float64 {
	return 0.5 * m * r * r
}
