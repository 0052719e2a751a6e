package nova

type ShapeType int

const (
	SHAPE_CIRCLE ShapeType = iota
	SHAPE_POLYGON
)

func (t ShapeType) String() string {
	switch t {
	case SHAPE_CIRCLE:
		return "circle"
	case SHAPE_POLYGON:
		return "polygon"
	}
	return "unknown"
}

// ShapeClass is implemented by the concrete shapes, *Circle and *PolyShape.
type ShapeClass interface {
	// CacheData transforms the shape into world space for the given body
	// transform and returns the new bounding box.
	CacheData(p Vector, rot Mat2) BB
	Area() float64
	// Moment of inertia about the centroid for the given mass.
	Moment(mass float64) float64
	Type() ShapeType
	Degenerate() bool
}

type Shape struct {
	Class ShapeClass
	body  *Body
	bb    BB
}

func NewShape(class ShapeClass) *Shape {
	return &Shape{Class: class}
}

func (s *Shape) Body() *Body {
	return s.body
}

func (s *Shape) BB() BB {
	return s.bb
}

func (s *Shape) Type() ShapeType {
	return s.Class.Type()
}

func (s *Shape) Area() float64 {
	return s.Class.Area()
}

func (s *Shape) Degenerate() bool {
	return s.Class.Degenerate()
}

// Update recomputes the cached world space data from the owning body.
func (s *Shape) Update() BB {
	s.bb = s.Class.CacheData(s.body.p, s.body.rot)
	return s.bb
}
