package nova

import (
	"fmt"
	"math"
	"strings"
)

type BodyType int

// body types
const (
	BODY_STATIC BodyType = iota
	BODY_DYNAMIC
)

func (t BodyType) String() string {
	switch t {
	case BODY_STATIC:
		return "static"
	case BODY_DYNAMIC:
		return "dynamic"
	}
	return fmt.Sprintf("BodyType(%d)", int(t))
}

func ParseBodyType(name string) (BodyType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "static":
		return BODY_STATIC, nil
	case "dynamic":
		return BODY_DYNAMIC, nil
	}
	return 0, fmt.Errorf("unknown body type %q", name)
}

func (t BodyType) MarshalText() ([]byte, error) {
	if t != BODY_STATIC && t != BODY_DYNAMIC {
		return nil, fmt.Errorf("unknown body type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *BodyType) UnmarshalText(text []byte) error {
	kind, err := ParseBodyType(string(text))
	if err != nil {
		return err
	}
	*t = kind
	return nil
}

type Body struct {
	// assigned by the space, 0 until the body is added
	id uint32

	// owning space, nil when detached
	space *Space

	kind     BodyType
	shape    *Shape
	material Material

	// position and angle (radians), rot caches the rotation matrix for a
	p   Vector
	a   float64
	rot Mat2

	// velocity, angular velocity
	v Vector
	w float64

	// "pseudo-velocities" used for eliminating overlap.
	// Consumed and reset by every position integration.
	v_bias Vector
	w_bias float64

	LinearDamping  float64
	AngularDamping float64

	// force and torque, cleared after every integration
	f Vector
	t float64

	// mass and it's inverse
	m     float64
	m_inv float64

	// moment of inertia and it's inverse
	i     float64
	i_inv float64

	// mass of the shape for attraction, kept even for static bodies
	gravMass float64

	sleeping   bool
	sleepTimer int

	attractor bool

	UserData interface{}
}

func (body *Body) String() string {
	return fmt.Sprint("Body ", body.id)
}

// Create a body owning shape. Mass and inertia are derived from the shape
// and the material's density.
func NewBody(kind BodyType, shape *Shape, position Vector, angle float64, material Material) *Body {
	assert(shape != nil, "Body needs a shape")
	assert(shape.body == nil, "Shape already belongs to a body")

	body := &Body{
		kind:     kind,
		shape:    shape,
		material: material,
		p:        position,
		a:        angle,
		rot:      rotation(angle),
	}
	shape.body = body
	body.CalcMassAndInertia()
	shape.Update()
	return body
}

func NewCircle(kind BodyType, position Vector, angle float64, material Material, radius float64) *Body {
	return NewBody(kind, NewCircleShape(radius), position, angle, material)
}

func NewPolygon(kind BodyType, position Vector, angle float64, material Material, verts []Vector) *Body {
	return NewBody(kind, NewPolyShape(verts), position, angle, material)
}

func NewRect(kind BodyType, position Vector, angle float64, material Material, width, height float64) *Body {
	return NewBody(kind, NewBoxShape(width, height), position, angle, material)
}

// Recompute mass, inertia and their inverses from the shape and material.
func (body *Body) CalcMassAndInertia() {
	body.gravMass = body.material.Density * body.shape.Area()

	if body.kind == BODY_STATIC {
		body.m = INFINITY
		body.i = INFINITY
		body.m_inv = 0
		body.i_inv = 0
		return
	}

	body.m = body.gravMass
	body.i = body.shape.Class.Moment(body.m)

	if body.m > 0 {
		body.m_inv = 1 / body.m
	} else {
		body.m_inv = 0
	}
	if body.i > 0 {
		body.i_inv = 1 / body.i
	} else {
		body.i_inv = 0
	}
}

func (body *Body) Id() uint32 {
	return body.id
}

func (body *Body) Space() *Space {
	return body.space
}

func (body *Body) Type() BodyType {
	return body.kind
}

func (body *Body) SetType(kind BodyType) {
	if body.kind == kind {
		return
	}
	body.kind = kind
	body.CalcMassAndInertia()
	if kind == BODY_STATIC {
		body.v = Vector{}
		body.w = 0
		body.v_bias = Vector{}
		body.w_bias = 0
		body.sleeping = false
		body.sleepTimer = 0
	} else {
		body.Awake()
	}
}

func (body *Body) Shape() *Shape {
	return body.shape
}

func (body *Body) Material() Material {
	return body.material
}

func (body *Body) SetMaterial(material Material) {
	body.material = material
	body.CalcMassAndInertia()
}

func (body *Body) Mass() float64 {
	return body.m
}

func (body *Body) InverseMass() float64 {
	return body.m_inv
}

func (body *Body) Moment() float64 {
	return body.i
}

func (body *Body) InverseMoment() float64 {
	return body.i_inv
}

func (body *Body) Position() Vector {
	return body.p
}

func (body *Body) SetPosition(position Vector) {
	body.Awake()
	body.p = position
	body.shape.Update()
}

func (body *Body) Angle() float64 {
	return body.a
}

func (body *Body) SetAngle(angle float64) {
	body.Awake()
	body.setAngle(angle)
	body.shape.Update()
}

func (body *Body) setAngle(angle float64) {
	body.a = angle
	body.rot = rotation(angle)
}

// Rotation returns the cached rotation matrix for the body's angle.
func (body *Body) Rotation() Mat2 {
	return body.rot
}

func (body *Body) Velocity() Vector {
	return body.v
}

func (body *Body) SetVelocity(velocity Vector) {
	body.Awake()
	body.v = velocity
}

func (body *Body) AngularVelocity() float64 {
	return body.w
}

func (body *Body) SetAngularVelocity(w float64) {
	body.Awake()
	body.w = w
}

func (body *Body) Force() Vector {
	return body.f
}

func (body *Body) Torque() float64 {
	return body.t
}

func (body *Body) IsSleeping() bool {
	return body.sleeping
}

func (body *Body) SleepTimer() int {
	return body.sleepTimer
}

func (body *Body) IsAttractor() bool {
	return body.attractor
}

// Mark the body as an attractor. Attractors pull every other dynamic body in
// their space with Newtonian gravity.
func (body *Body) SetIsAttractor(attractor bool) {
	if body.attractor == attractor {
		return
	}
	body.attractor = attractor
	if body.space != nil {
		body.space.updateAttractor(body)
	}
}

// Convert body relative coordinates to world coordinates.
func (body *Body) LocalToWorld(v Vector) Vector {
	return body.p.Add(rotate(body.rot, v))
}

// Convert world coordinates to body relative coordinates.
func (body *Body) WorldToLocal(v Vector) Vector {
	return unrotate(body.rot, v.Sub(body.p))
}

func (body *Body) AABB() BB {
	return body.shape.bb
}

// Linear kinetic energy, 1/2 m v^2.
func (body *Body) KineticEnergy() float64 {
	if body.kind == BODY_STATIC {
		return 0
	}
	return 0.5 * body.m * lengthSq(body.v)
}

// Rotational kinetic energy, 1/2 I w^2.
func (body *Body) RotationalEnergy() float64 {
	if body.kind == BODY_STATIC {
		return 0
	}
	return 0.5 * body.i * body.w * body.w
}

// Energy is the combined linear and rotational kinetic energy used by the
// sleep state machine.
func (body *Body) Energy() float64 {
	return body.KineticEnergy() + body.RotationalEnergy()
}

// Apply a force to the center of mass. Wakes the body.
func (body *Body) ApplyForce(force Vector) {
	if body.kind == BODY_STATIC {
		return
	}
	body.Awake()
	body.f = body.f.Add(force)
}

// Apply a force at a world space point. Wakes the body.
func (body *Body) ApplyForceAt(force, point Vector) {
	if body.kind == BODY_STATIC {
		return
	}
	body.Awake()
	body.f = body.f.Add(force)
	body.t += cross(point.Sub(body.p), force)
}

func (body *Body) ApplyTorque(torque float64) {
	if body.kind == BODY_STATIC {
		return
	}
	body.Awake()
	body.t += torque
}

// Apply an impulse at a world space point. Wakes the body.
func (body *Body) ApplyImpulse(impulse, point Vector) {
	if body.kind == BODY_STATIC {
		return
	}
	body.Awake()
	body.applyImpulse(impulse, point.Sub(body.p))
}

// Apply a position correcting impulse at a point relative to the center of
// mass. It only changes the pseudo-velocities.
func (body *Body) ApplyPseudoImpulse(impulse, r Vector) {
	body.applyBiasImpulse(impulse, r)
}

// applyImpulse is the solver's path; sleeping and static bodies act as
// immovable obstacles and are left untouched.
func (body *Body) applyImpulse(j, r Vector) {
	if body.sleeping || body.kind == BODY_STATIC {
		return
	}
	body.v = body.v.Add(j.Mul(body.m_inv))
	body.w += body.i_inv * cross(r, j)
}

func (body *Body) applyBiasImpulse(j, r Vector) {
	if body.sleeping || body.kind == BODY_STATIC {
		return
	}
	body.v_bias = body.v_bias.Add(j.Mul(body.m_inv))
	body.w_bias += body.i_inv * cross(r, j)
}

func (body *Body) applyAngularImpulse(j float64) {
	if body.sleeping || body.kind == BODY_STATIC {
		return
	}
	body.w += body.i_inv * j
}

// invMass is the inverse mass as seen by the solver.
func (body *Body) invMass() float64 {
	if body.sleeping {
		return 0
	}
	return body.m_inv
}

func (body *Body) invInertia() float64 {
	if body.sleeping {
		return 0
	}
	return body.i_inv
}

// velocityAt is the velocity of a point r relative to the center of mass.
func (body *Body) velocityAt(r Vector) Vector {
	return body.v.Add(crossSV(body.w, r))
}

func (body *Body) biasVelocityAt(r Vector) Vector {
	return body.v_bias.Add(crossSV(body.w_bias, r))
}

// Pull the body towards attractor with Newtonian gravity, scaled by scale.
// The result is accumulated as a force.
func (body *Body) ApplyAttraction(attractor *Body, scale float64) {
	if body == attractor || body.kind == BODY_STATIC || body.sleeping {
		return
	}
	dir := attractor.p.Sub(body.p)
	distSq := lengthSq(dir)
	if distSq == 0 {
		return
	}
	dist := math.Sqrt(distSq)

	force := GRAV_CONST * body.gravMass * attractor.gravMass / distSq * scale
	body.f = body.f.Add(dir.Mul(force / dist))
}

// Integrate gravity, force and torque into velocity and apply damping.
// Force and torque are cleared afterwards.
func (body *Body) IntegrateAccelerations(gravity Vector, dt float64) {
	if body.kind == BODY_STATIC || body.sleeping {
		body.f = Vector{}
		body.t = 0
		return
	}

	accel := gravity.Add(body.f.Mul(body.m_inv))
	body.v = body.v.Add(accel.Mul(dt))
	body.w += body.t * body.i_inv * dt

	body.v = body.v.Mul(1 / (1 + dt*body.LinearDamping))
	body.w *= 1 / (1 + dt*body.AngularDamping)

	body.f = Vector{}
	body.t = 0
}

// Integrate velocity and pseudo-velocity into position, then reset the
// pseudo-velocities.
func (body *Body) IntegrateVelocities(dt float64) {
	if body.kind == BODY_STATIC || body.sleeping {
		body.v_bias = Vector{}
		body.w_bias = 0
		return
	}

	body.p = body.p.Add(body.v.Add(body.v_bias).Mul(dt))
	body.setAngle(body.a + (body.w+body.w_bias)*dt)

	body.v_bias = Vector{}
	body.w_bias = 0

	body.shape.Update()
}

// Put the body to sleep. Velocities, pseudo-velocities and accumulated
// forces are zeroed.
func (body *Body) Sleep() {
	if body.kind == BODY_STATIC {
		return
	}
	body.sleeping = true
	body.v = Vector{}
	body.w = 0
	body.v_bias = Vector{}
	body.w_bias = 0
	body.f = Vector{}
	body.t = 0
}

// Wake the body up and restart its sleep timer.
func (body *Body) Awake() {
	body.sleeping = false
	body.sleepTimer = 0
}
