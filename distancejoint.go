package nova

import "math"

// DistanceJoint keeps two anchor points a fixed distance apart. It is
// bilateral: it pushes as well as pulls.
type DistanceJoint struct {
	*Constraint
	AnchorA, AnchorB Vector
	Length           float64

	r1, r2, n          Vector
	nMass, jnAcc, bias float64
}

// NewDistanceJoint joins a and b at the body local anchors. A negative length
// takes the current distance between the anchors.
func NewDistanceJoint(a, b *Body, anchorA, anchorB Vector, length float64) *Constraint {
	joint := &DistanceJoint{
		AnchorA: anchorA,
		AnchorB: anchorB,
		Length:  length,
	}
	joint.Constraint = NewConstraint(joint, CONSTRAINT_DISTANCE, a, b)

	if length < 0 {
		p1 := a.LocalToWorld(anchorA)
		p2 := b.LocalToWorld(anchorB)
		joint.Length = p2.Sub(p1).Len()
	}
	return joint.Constraint
}

func (joint *DistanceJoint) PreStep(dt float64) {
	a := joint.a
	b := joint.b

	joint.r1 = rotate(a.rot, joint.AnchorA)
	joint.r2 = rotate(b.rot, joint.AnchorB)

	delta := b.p.Add(joint.r2).Sub(a.p.Add(joint.r1))
	dist := delta.Len()
	if dist != 0 {
		joint.n = delta.Mul(1 / dist)
	} else {
		joint.n = Vector{}
	}

	joint.nMass = safeInverse(k_scalar(a, b, joint.r1, joint.r2, joint.n))
	joint.bias = joint.baumgarte() / dt * (dist - joint.Length)
}

func (joint *DistanceJoint) ApplyCachedImpulse() {
	apply_impulses(joint.a, joint.b, joint.r1, joint.r2, joint.n.Mul(joint.jnAcc))
}

func (joint *DistanceJoint) ResetImpulse() {
	joint.jnAcc = 0
}

func (joint *DistanceJoint) ApplyImpulse(dt float64) {
	a := joint.a
	b := joint.b
	n := joint.n

	vrn := normal_relative_velocity(a, b, joint.r1, joint.r2, n)

	jn := -(vrn + joint.bias) * joint.nMass
	joint.jnAcc += jn

	apply_impulses(a, b, joint.r1, joint.r2, n.Mul(jn))
}

func (joint *DistanceJoint) GetImpulse() float64 {
	return math.Abs(joint.jnAcc)
}

// Distance is the current distance between the two anchors.
func (joint *DistanceJoint) Distance() float64 {
	p1 := joint.a.LocalToWorld(joint.AnchorA)
	p2 := joint.b.LocalToWorld(joint.AnchorB)
	return p2.Sub(p1).Len()
}
