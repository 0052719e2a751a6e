package nova

import "math"

// Resolution states
const (
	// The pair was not touching during the previous step.
	RESOLUTION_FIRST_CONTACT = iota
	// The pair was already touching and carries impulses from the previous step.
	RESOLUTION_NORMAL
)

type Contact struct {
	// world space contact point and penetration depth at narrowphase time
	Point Vector
	Depth float64

	// anchors relative to each body's center
	r1, r2 Vector

	nMass, tMass float64

	// target separating velocity from restitution
	bounce float64
	// position correction target for the split impulse pass
	bias float64

	jnAcc, jtAcc, jBias float64
}

// NormalImpulse is the accumulated normal impulse of this contact.
func (con *Contact) NormalImpulse() float64 {
	return con.jnAcc
}

// TangentImpulse is the accumulated friction impulse of this contact.
func (con *Contact) TangentImpulse() float64 {
	return con.jtAcc
}

// Resolution is the contact manifold of one colliding pair, along with the
// solver state for each of its contact points. The normal points from A to B.
type Resolution struct {
	a, b *Body
	key  PairKey

	n        Vector
	count    int
	contacts [MAX_CONTACTS_PER_RESOLUTION]Contact

	// mixed restitution and friction
	e, u float64

	state int
}

func (res *Resolution) Bodies() (*Body, *Body) {
	return res.a, res.b
}

func (res *Resolution) A() *Body {
	return res.a
}

func (res *Resolution) B() *Body {
	return res.b
}

func (res *Resolution) Key() PairKey {
	return res.key
}

func (res *Resolution) Normal() Vector {
	return res.n
}

func (res *Resolution) Count() int {
	return res.count
}

// Contacts returns the live contact points. The slice aliases the resolution.
func (res *Resolution) Contacts() []Contact {
	return res.contacts[:res.count]
}

func (res *Resolution) Restitution() float64 {
	return res.e
}

func (res *Resolution) Friction() float64 {
	return res.u
}

func (res *Resolution) IsFirstContact() bool {
	return res.state == RESOLUTION_FIRST_CONTACT
}

// Depth is the deepest penetration among the contact points.
func (res *Resolution) Depth() float64 {
	var depth float64
	for i := 0; i < res.count; i++ {
		depth = math.Max(depth, res.contacts[i].Depth)
	}
	return depth
}

// Sum of the normal and friction impulses applied to B in the last step.
func (res *Resolution) TotalImpulse() Vector {
	var sum Vector
	t := perp(res.n)
	for i := 0; i < res.count; i++ {
		con := &res.contacts[i]
		sum = sum.Add(res.n.Mul(con.jnAcc)).Add(t.Mul(con.jtAcc))
	}
	return sum
}

func (res *Resolution) addContact(point Vector, depth float64) {
	if res.count >= MAX_CONTACTS_PER_RESOLUTION {
		return
	}
	res.contacts[res.count] = Contact{Point: point, Depth: depth}
	res.count++
}

// PresolveCollision prepares a resolution for the velocity and position
// passes: effective masses, mixed coefficients, restitution and position bias.
// Without warm starting the accumulated impulses are cleared.
func PresolveCollision(space *Space, res *Resolution, inv_dt float64) {
	a := res.a
	b := res.b
	n := res.n
	t := perp(n)
	config := &space.config

	res.e = MixCoefficients(a.material.Restitution, b.material.Restitution, config.MixRestitution)
	res.u = MixCoefficients(a.material.Friction, b.material.Friction, config.MixFriction)

	for i := 0; i < res.count; i++ {
		con := &res.contacts[i]

		con.r1 = con.Point.Sub(a.p)
		con.r2 = con.Point.Sub(b.p)

		// Calculate the mass normal and mass tangent.
		con.nMass = safeInverse(k_scalar(a, b, con.r1, con.r2, n))
		con.tMass = safeInverse(k_scalar(a, b, con.r1, con.r2, t))

		// Calculate the target bounce velocity.
		vrn := normal_relative_velocity(a, b, con.r1, con.r2, n)
		if vrn < -config.RestitutionThreshold {
			con.bounce = -res.e * vrn
		} else {
			con.bounce = 0
		}

		// Calculate the target bias velocity.
		con.bias = config.Baumgarte * inv_dt * math.Max(0, con.Depth-CORRECTION_SLOP)
		con.jBias = 0
	}

	if !config.Warmstarting {
		for i := 0; i < res.count; i++ {
			res.contacts[i].jnAcc = 0
			res.contacts[i].jtAcc = 0
		}
	}
}

// WarmStart re-applies the impulses carried over from the previous substep.
// It runs once every resolution has been presolved.
func WarmStart(res *Resolution) {
	t := perp(res.n)
	for i := 0; i < res.count; i++ {
		con := &res.contacts[i]
		j := res.n.Mul(con.jnAcc).Add(t.Mul(con.jtAcc))
		apply_impulses(res.a, res.b, con.r1, con.r2, j)
	}
}

// One sequential impulse pass over the contact points: clamped normal
// impulse followed by Coulomb friction bounded by the accumulated normal
// impulse.
func SolveVelocity(res *Resolution) {
	a := res.a
	b := res.b
	n := res.n
	t := perp(n)
	friction := res.u

	for i := 0; i < res.count; i++ {
		con := &res.contacts[i]
		r1 := con.r1
		r2 := con.r2

		vrn := normal_relative_velocity(a, b, r1, r2, n)
		jn := (con.bounce - vrn) * con.nMass
		jnOld := con.jnAcc
		con.jnAcc = math.Max(jnOld+jn, 0)
		apply_impulses(a, b, r1, r2, n.Mul(con.jnAcc-jnOld))

		vrt := relative_velocity(a, b, r1, r2).Dot(t)
		jtMax := friction * con.jnAcc
		jt := -vrt * con.tMass
		jtOld := con.jtAcc
		con.jtAcc = clamp(jtOld+jt, -jtMax, jtMax)
		apply_impulses(a, b, r1, r2, t.Mul(con.jtAcc-jtOld))
	}
}

// One split impulse pass. Only the pseudo-velocities are changed so
// penetration is removed without adding energy to the real velocities.
func SolvePosition(res *Resolution) {
	a := res.a
	b := res.b
	n := res.n

	for i := 0; i < res.count; i++ {
		con := &res.contacts[i]

		vb1 := a.biasVelocityAt(con.r1)
		vb2 := b.biasVelocityAt(con.r2)
		vbn := vb2.Sub(vb1).Dot(n)

		jbn := (con.bias - vbn) * con.nMass
		jbnOld := con.jBias
		con.jBias = math.Max(jbnOld+jbn, 0)

		apply_bias_impulses(a, b, con.r1, con.r2, n.Mul(con.jBias-jbnOld))
	}
}

func apply_impulses(a, b *Body, r1, r2, j Vector) {
	a.applyImpulse(neg(j), r1)
	b.applyImpulse(j, r2)
}

func apply_bias_impulses(a, b *Body, r1, r2, j Vector) {
	a.applyBiasImpulse(neg(j), r1)
	b.applyBiasImpulse(j, r2)
}

func relative_velocity(a, b *Body, r1, r2 Vector) Vector {
	return b.velocityAt(r2).Sub(a.velocityAt(r1))
}

func normal_relative_velocity(a, b *Body, r1, r2, n Vector) float64 {
	return relative_velocity(a, b, r1, r2).Dot(n)
}

// k_scalar is the effective inverse mass of the pair along n.
func k_scalar(a, b *Body, r1, r2, n Vector) float64 {
	rcn := cross(r1, n)
	rdn := cross(r2, n)
	return a.invMass() + b.invMass() + a.invInertia()*rcn*rcn + b.invInertia()*rdn*rdn
}

func safeInverse(k float64) float64 {
	if k == 0 {
		return 0
	}
	return 1 / k
}
