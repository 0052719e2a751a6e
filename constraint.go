package nova

import (
	"fmt"
	"strings"
)

// Constrainer is the solver side of a joint, implemented by each joint kind.
type Constrainer interface {
	// PreStep computes world anchors, effective mass and bias for a substep of dt.
	PreStep(dt float64)
	// ApplyCachedImpulse re-applies the impulse accumulated last substep.
	ApplyCachedImpulse()
	// ResetImpulse discards the accumulated impulse.
	ResetImpulse()
	ApplyImpulse(dt float64)
	GetImpulse() float64
}

type ConstraintType int

const (
	CONSTRAINT_PIVOT ConstraintType = iota
	CONSTRAINT_DISTANCE
	CONSTRAINT_SPRING
)

func (t ConstraintType) String() string {
	switch t {
	case CONSTRAINT_PIVOT:
		return "pivot"
	case CONSTRAINT_DISTANCE:
		return "distance"
	case CONSTRAINT_SPRING:
		return "spring"
	}
	return fmt.Sprintf("ConstraintType(%d)", int(t))
}

func ParseConstraintType(name string) (ConstraintType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pivot":
		return CONSTRAINT_PIVOT, nil
	case "distance":
		return CONSTRAINT_DISTANCE, nil
	case "spring":
		return CONSTRAINT_SPRING, nil
	}
	return 0, fmt.Errorf("unknown constraint type %q", name)
}

func (t ConstraintType) MarshalText() ([]byte, error) {
	if t < CONSTRAINT_PIVOT || t > CONSTRAINT_SPRING {
		return nil, fmt.Errorf("unknown constraint type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *ConstraintType) UnmarshalText(text []byte) error {
	kind, err := ParseConstraintType(string(text))
	if err != nil {
		return err
	}
	*t = kind
	return nil
}

type ConstraintPreSolveFunc func(*Constraint, *Space)
type ConstraintPostSolveFunc func(*Constraint, *Space)

type Constraint struct {
	Class Constrainer
	kind  ConstraintType
	space *Space

	a, b *Body

	collideBodies bool
	PreSolve      ConstraintPreSolveFunc
	PostSolve     ConstraintPostSolveFunc

	UserData interface{}
}

func NewConstraint(class Constrainer, kind ConstraintType, a, b *Body) *Constraint {
	assert(a != nil && b != nil, "Constraint needs two bodies")
	assert(a != b, "Constraint bodies must differ")
	return &Constraint{
		Class:         class,
		kind:          kind,
		a:             a,
		b:             b,
		collideBodies: true,
	}
}

func (c *Constraint) Type() ConstraintType {
	return c.kind
}

func (c *Constraint) Bodies() (*Body, *Body) {
	return c.a, c.b
}

func (c *Constraint) A() *Body {
	return c.a
}

func (c *Constraint) B() *Body {
	return c.b
}

func (c *Constraint) Space() *Space {
	return c.space
}

func (c *Constraint) ActivateBodies() {
	c.a.Awake()
	c.b.Awake()
}

func (c *Constraint) CollideBodies() bool {
	return c.collideBodies
}

// SetCollideBodies toggles collision between the two jointed bodies.
func (c *Constraint) SetCollideBodies(collideBodies bool) {
	if c.collideBodies == collideBodies {
		return
	}
	c.ActivateBodies()
	c.collideBodies = collideBodies
	if c.space != nil {
		c.space.updateFilter(c, !collideBodies)
	}
}

// Impulse is the magnitude of the impulse applied in the last substep.
func (c *Constraint) Impulse() float64 {
	return c.Class.GetImpulse()
}

// baumgarte returns the bias factor of the owning space.
func (c *Constraint) baumgarte() float64 {
	if c.space == nil {
		return DefaultConfig().Baumgarte
	}
	return c.space.config.Baumgarte
}

func (c *Constraint) Other(body *Body) *Body {
	if c.a == body {
		return c.b
	}
	return c.a
}
