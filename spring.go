package nova

import "math"

type SpringForceFunc func(spring *Spring, dist float64) float64

// Spring is a damped Hookean spring between two anchors. The spring force is
// applied once per substep; only the damping is solved iteratively.
type Spring struct {
	*Constraint

	AnchorA, AnchorB           Vector
	Length, Stiffness, Damping float64
	ForceFunc                  SpringForceFunc

	targetVrn, vCoef float64

	r1, r2 Vector
	nMass  float64
	n      Vector

	jAcc float64
}

func NewSpring(a, b *Body, anchorA, anchorB Vector, length, stiffness, damping float64) *Constraint {
	spring := &Spring{
		AnchorA:   anchorA,
		AnchorB:   anchorB,
		Length:    length,
		Stiffness: stiffness,
		Damping:   damping,
		ForceFunc: DefaultSpringForce,
	}
	spring.Constraint = NewConstraint(spring, CONSTRAINT_SPRING, a, b)
	return spring.Constraint
}

func (spring *Spring) PreStep(dt float64) {
	a := spring.a
	b := spring.b

	spring.r1 = rotate(a.rot, spring.AnchorA)
	spring.r2 = rotate(b.rot, spring.AnchorB)

	delta := b.p.Add(spring.r2).Sub(a.p.Add(spring.r1))
	dist := delta.Len()
	if dist != 0 {
		spring.n = delta.Mul(1.0 / dist)
	} else {
		spring.n = Vector{}
	}

	k := k_scalar(a, b, spring.r1, spring.r2, spring.n)
	spring.nMass = safeInverse(k)

	spring.targetVrn = 0
	spring.vCoef = 1.0 - math.Exp(-spring.Damping*dt*k)

	fSpring := spring.ForceFunc(spring, dist)
	spring.jAcc = fSpring * dt
	apply_impulses(a, b, spring.r1, spring.r2, spring.n.Mul(spring.jAcc))
}

func (spring *Spring) ApplyCachedImpulse() {
	// nothing to do here
}

func (spring *Spring) ResetImpulse() {}

func (spring *Spring) ApplyImpulse(dt float64) {
	a := spring.a
	b := spring.b

	vrn := normal_relative_velocity(a, b, spring.r1, spring.r2, spring.n)

	vDamp := (spring.targetVrn - vrn) * spring.vCoef
	spring.targetVrn = vrn + vDamp

	jDamp := vDamp * spring.nMass
	spring.jAcc += jDamp
	apply_impulses(a, b, spring.r1, spring.r2, spring.n.Mul(jDamp))
}

func (spring *Spring) GetImpulse() float64 {
	return spring.jAcc
}

// DefaultSpringForce is Hooke's law, -k(d - L).
func DefaultSpringForce(spring *Spring, dist float64) float64 {
	return (spring.Length - dist) * spring.Stiffness
}
