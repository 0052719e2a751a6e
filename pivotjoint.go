package nova

import "math"

// PivotJoint is the generic constraint: it pins an anchor on each body to
// the same point and can optionally lock the relative angle.
type PivotJoint struct {
	*Constraint
	AnchorA, AnchorB Vector

	// When set, the relative angle is held at RefAngle.
	LockAngle bool
	RefAngle  float64

	r1, r2 Vector
	k      Mat2

	jAcc, bias Vector

	aMass, aBias, jAngAcc float64
}

// NewPivotJoint pins a and b together at a world space point.
func NewPivotJoint(a, b *Body, pivot Vector) *Constraint {
	return NewPivotJoint2(a, b, a.WorldToLocal(pivot), b.WorldToLocal(pivot))
}

// NewPivotJoint2 pins a and b together at body local anchors.
func NewPivotJoint2(a, b *Body, anchorA, anchorB Vector) *Constraint {
	joint := &PivotJoint{
		AnchorA:  anchorA,
		AnchorB:  anchorB,
		RefAngle: b.a - a.a,
	}
	joint.Constraint = NewConstraint(joint, CONSTRAINT_PIVOT, a, b)
	return joint.Constraint
}

// NewWeldJoint is a pivot joint with the relative angle locked.
func NewWeldJoint(a, b *Body, pivot Vector) *Constraint {
	c := NewPivotJoint(a, b, pivot)
	c.Class.(*PivotJoint).LockAngle = true
	return c
}

func k_tensor(a, b *Body, r1, r2 Vector) Mat2 {
	m_sum := a.invMass() + b.invMass()

	// start with Identity*m_sum
	k11, k12, k21, k22 := m_sum, 0.0, 0.0, m_sum

	// add the influence from r1
	a_i := a.invInertia()
	r1xsq := r1[0] * r1[0] * a_i
	r1ysq := r1[1] * r1[1] * a_i
	r1nxy := -r1[0] * r1[1] * a_i
	k11 += r1ysq
	k12 += r1nxy
	k21 += r1nxy
	k22 += r1xsq

	// add the influence from r2
	b_i := b.invInertia()
	r2xsq := r2[0] * r2[0] * b_i
	r2ysq := r2[1] * r2[1] * b_i
	r2nxy := -r2[0] * r2[1] * b_i
	k11 += r2ysq
	k12 += r2nxy
	k21 += r2nxy
	k22 += r2xsq

	// column major; Inv returns the zero matrix when K is singular
	return Mat2{k11, k21, k12, k22}.Inv()
}

func (joint *PivotJoint) PreStep(dt float64) {
	a := joint.a
	b := joint.b

	joint.r1 = rotate(a.rot, joint.AnchorA)
	joint.r2 = rotate(b.rot, joint.AnchorB)

	// Calculate mass tensor
	joint.k = k_tensor(a, b, joint.r1, joint.r2)

	// calculate bias velocity
	delta := b.p.Add(joint.r2).Sub(a.p.Add(joint.r1))
	joint.bias = delta.Mul(-joint.baumgarte() / dt)

	if joint.LockAngle {
		joint.aMass = safeInverse(a.invInertia() + b.invInertia())
		joint.aBias = -joint.baumgarte() / dt * (b.a - a.a - joint.RefAngle)
	}
}

func (joint *PivotJoint) ApplyCachedImpulse() {
	apply_impulses(joint.a, joint.b, joint.r1, joint.r2, joint.jAcc)
	if joint.LockAngle {
		apply_angular_impulses(joint.a, joint.b, joint.jAngAcc)
	}
}

func (joint *PivotJoint) ResetImpulse() {
	joint.jAcc = Vector{}
	joint.jAngAcc = 0
}

func (joint *PivotJoint) ApplyImpulse(dt float64) {
	a := joint.a
	b := joint.b

	if joint.LockAngle {
		wr := b.w - a.w
		j := (joint.aBias - wr) * joint.aMass
		joint.jAngAcc += j
		apply_angular_impulses(a, b, j)
	}

	// compute relative velocity
	vr := relative_velocity(a, b, joint.r1, joint.r2)

	// compute normal impulse
	j := joint.k.Mul2x1(joint.bias.Sub(vr))
	joint.jAcc = joint.jAcc.Add(j)

	apply_impulses(a, b, joint.r1, joint.r2, j)
}

func (joint *PivotJoint) GetImpulse() float64 {
	return math.Hypot(joint.jAcc.Len(), joint.jAngAcc)
}

func apply_angular_impulses(a, b *Body, j float64) {
	a.applyAngularImpulse(-j)
	b.applyAngularImpulse(j)
}
