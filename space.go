package nova

import (
	"log"
	"slices"
)

// CollisionObserver receives the resolutions of every substep. BeforeCollision
// runs after the narrowphase and before any impulse is applied, AfterCollision
// after the last position iteration. The slice is owned by the space and is
// only valid during the call.
type CollisionObserver interface {
	BeforeCollision(space *Space, resolutions []*Resolution)
	AfterCollision(space *Space, resolutions []*Resolution)
}

// CollisionFuncs adapts plain functions to a CollisionObserver. Either may be nil.
type CollisionFuncs struct {
	Before func(space *Space, resolutions []*Resolution)
	After  func(space *Space, resolutions []*Resolution)
}

func (f CollisionFuncs) BeforeCollision(space *Space, resolutions []*Resolution) {
	if f.Before != nil {
		f.Before(space, resolutions)
	}
}

func (f CollisionFuncs) AfterCollision(space *Space, resolutions []*Resolution) {
	if f.After != nil {
		f.After(space, resolutions)
	}
}

type Space struct {
	config Config

	// insertion order is iteration order
	bodies      []*Body
	attractors  []*Body
	constraints []*Constraint

	// resolutions of the current substep
	resolutions []*Resolution
	// last substep's resolutions, for warm starting
	cachedResolutions map[PairKey]*Resolution
	// pairs joined by a constraint that disabled collisions between them
	filters map[PairKey]int

	broadphase Broadphase
	observer   CollisionObserver

	nextID uint32
	locked int

	// number of completed steps
	stamp uint
}

func NewSpace() *Space {
	return NewSpaceWithConfig(DefaultConfig())
}

func NewSpaceWithConfig(config Config) *Space {
	err := config.Validate()
	assert(err == nil, err)
	return &Space{
		config:            config,
		broadphase:        NewBroadphase(config.Broadphase, config.CellSize),
		cachedResolutions: map[PairKey]*Resolution{},
		filters:           map[PairKey]int{},
	}
}

func (space *Space) Config() Config {
	return space.config
}

// SetConfig replaces every tunable. The broadphase is rebuilt when its kind
// or cell size changed.
func (space *Space) SetConfig(config Config) {
	assert(space.locked == 0, "This operation cannot be done safely during a call to Space.Step().")
	err := config.Validate()
	assert(err == nil, err)

	old := space.config
	space.config = config
	if old.Broadphase != config.Broadphase || old.CellSize != config.CellSize {
		space.broadphase = NewBroadphase(config.Broadphase, config.CellSize)
	}
	if old.Sleeping && !config.Sleeping {
		space.DisableSleeping()
	}
}

func (space *Space) Gravity() Vector {
	return space.config.Gravity
}

func (space *Space) SetGravity(gravity Vector) {
	space.config.Gravity = gravity
}

func (space *Space) Broadphase() Broadphase {
	return space.broadphase
}

// SetBroadphase installs a custom broadphase strategy.
func (space *Space) SetBroadphase(broadphase Broadphase) {
	assert(broadphase != nil, "Broadphase cannot be nil")
	space.broadphase = broadphase
}

func (space *Space) SetCollisionObserver(observer CollisionObserver) {
	space.observer = observer
}

// Bodies returns the bodies in insertion order. The slice must not be modified.
func (space *Space) Bodies() []*Body {
	return space.bodies
}

func (space *Space) Attractors() []*Body {
	return space.attractors
}

func (space *Space) Constraints() []*Constraint {
	return space.constraints
}

// Resolutions returns the contact manifolds of the last substep.
func (space *Space) Resolutions() []*Resolution {
	return space.resolutions
}

func (space *Space) Stamp() uint {
	return space.stamp
}

func (space *Space) Lock() {
	space.locked++
}

func (space *Space) Unlock() {
	space.locked--
	if space.locked < 0 {
		log.Fatal("Space lock underflow")
	}
}

func (space *Space) IsLocked() bool {
	return space.locked > 0
}

// Add a body. It receives a fresh id and, if it is an attractor, joins the
// attractor set.
func (space *Space) Add(body *Body) *Body {
	assert(body != nil, "Cannot add a nil body")
	assert(body.space != space, "You have already added this body to this space. You must not add it a second time.")
	assert(body.space == nil, "You have already added this body to another space. You cannot add it to a second.")
	assert(space.locked == 0, "This operation cannot be done safely during a call to Space.Step().")

	space.nextID++
	body.id = space.nextID
	body.space = space
	body.shape.Update()

	space.bodies = append(space.bodies, body)
	if body.attractor {
		space.attractors = append(space.attractors, body)
	}
	return body
}

// Remove a body along with its constraints, attractor membership and any
// contact state referring to it.
func (space *Space) Remove(body *Body) {
	assert(body != nil && body.space == space, "Cannot remove a body that was not added to the space. (Removed twice maybe?)")
	assert(space.locked == 0, "This operation cannot be done safely during a call to Space.Step().")

	for _, c := range slices.Clone(space.constraints) {
		if c.a == body || c.b == body {
			space.RemoveConstraint(c)
		}
	}

	// A sleeping pair with a static body is never cached, so anything asleep
	// touching the body's bounds is woken as well.
	bb := body.AABB()
	bb = NewBB(bb.L-CORRECTION_SLOP, bb.B-CORRECTION_SLOP, bb.R+CORRECTION_SLOP, bb.T+CORRECTION_SLOP)
	for _, other := range space.bodies {
		if other != body && other.IsSleeping() && bb.Intersects(other.AABB()) {
			other.Awake()
		}
	}

	space.bodies = slices.DeleteFunc(space.bodies, func(b *Body) bool { return b == body })
	space.attractors = slices.DeleteFunc(space.attractors, func(b *Body) bool { return b == body })
	space.resolutions = slices.DeleteFunc(space.resolutions, func(res *Resolution) bool {
		return res.a == body || res.b == body
	})
	for key, res := range space.cachedResolutions {
		if res.a == body || res.b == body {
			// whatever rested on the body must not stay asleep in mid air
			if res.a == body {
				res.b.Awake()
			} else {
				res.a.Awake()
			}
			delete(space.cachedResolutions, key)
		}
	}

	body.space = nil
	body.id = 0
}

func (space *Space) AddConstraint(constraint *Constraint) *Constraint {
	assert(constraint != nil, "Cannot add a nil constraint")
	assert(constraint.space != space, "You have already added this constraint to this space. You must not add it a second time.")
	assert(constraint.space == nil, "You have already added this constraint to another space. You cannot add it to a second.")
	assert(constraint.a.space == space && constraint.b.space == space, "Constraint bodies must be added to the space first.")
	assert(space.locked == 0, "This operation cannot be done safely during a call to Space.Step().")

	constraint.ActivateBodies()
	constraint.space = space
	space.constraints = append(space.constraints, constraint)
	if !constraint.collideBodies {
		space.updateFilter(constraint, true)
	}
	return constraint
}

func (space *Space) RemoveConstraint(constraint *Constraint) {
	assert(constraint != nil && constraint.space == space, "Cannot remove a constraint that was not added to the space. (Removed twice maybe?)")
	assert(space.locked == 0, "This operation cannot be done safely during a call to Space.Step().")

	constraint.ActivateBodies()
	if !constraint.collideBodies {
		space.updateFilter(constraint, false)
	}
	space.constraints = slices.DeleteFunc(space.constraints, func(c *Constraint) bool { return c == constraint })
	constraint.space = nil
}

func (space *Space) updateFilter(c *Constraint, add bool) {
	key := NewPairKey(c.a, c.b)
	if add {
		space.filters[key]++
		return
	}
	space.filters[key]--
	if space.filters[key] <= 0 {
		delete(space.filters, key)
	}
}

func (space *Space) updateAttractor(body *Body) {
	space.attractors = slices.DeleteFunc(space.attractors, func(b *Body) bool { return b == body })
	if body.attractor {
		space.attractors = append(space.attractors, body)
	}
}

// Clear removes every body and constraint. The collision observer is kept.
func (space *Space) Clear() {
	assert(space.locked == 0, "This operation cannot be done safely during a call to Space.Step().")

	for _, c := range space.constraints {
		c.space = nil
	}
	for _, body := range space.bodies {
		body.space = nil
		body.id = 0
	}
	space.bodies = nil
	space.attractors = nil
	space.constraints = nil
	space.resolutions = nil
	clear(space.cachedResolutions)
	clear(space.filters)
}

// Free clears the space and drops the observer. The observer's own state is
// never touched.
func (space *Space) Free() {
	space.Clear()
	space.observer = nil
}

func (space *Space) EnableSleeping() {
	space.config.Sleeping = true
}

// DisableSleeping turns the sleep state machine off and wakes every body.
func (space *Space) DisableSleeping() {
	space.config.Sleeping = false
	for _, body := range space.bodies {
		if body.kind != BODY_STATIC {
			body.Awake()
		}
	}
}

// Step advances the simulation by dt, split into substeps equal substeps.
// Each substep runs the broadphase, narrowphase and solver; the sleep state
// machine runs once per step.
func (space *Space) Step(dt float64, velocityIters, positionIters, constraintIters, substeps int) {
	assert(space.locked == 0, "Space.Step() cannot be called from a collision observer.")
	assert(velocityIters >= 0 && positionIters >= 0 && constraintIters >= 0, "Iteration counts must not be negative")
	assert(substeps >= 1, "At least one substep is required")
	if dt == 0 {
		return
	}

	h := dt / float64(substeps)

	space.Lock()
	{
		for i := 0; i < substeps; i++ {
			space.substep(h, velocityIters, positionIters, constraintIters)
		}

		if space.config.Sleeping {
			space.updateSleep()
		}
	}
	space.Unlock()

	space.stamp++
}

func (space *Space) substep(dt float64, velocityIters, positionIters, constraintIters int) {
	inv_dt := 1 / dt
	bodies := space.bodies
	constraints := space.constraints
	config := &space.config

	if config.Sleeping {
		space.wakeJoints()
	}

	pairs := space.broadphase.Pairs(bodies)
	space.narrowphase(pairs)
	resolutions := space.resolutions

	if space.observer != nil {
		space.observer.BeforeCollision(space, resolutions)
	}

	for _, attractor := range space.attractors {
		for _, body := range bodies {
			body.ApplyAttraction(attractor, config.GravScale)
		}
	}

	for _, body := range bodies {
		body.IntegrateAccelerations(config.Gravity, dt)
	}

	// Prestep the resolutions and constraints. Bounce targets are measured
	// before any carried over impulse changes the velocities.
	for _, res := range resolutions {
		PresolveCollision(space, res, inv_dt)
	}
	if config.Warmstarting {
		for _, res := range resolutions {
			WarmStart(res)
		}
	}
	for _, constraint := range constraints {
		if constraint.PreSolve != nil {
			constraint.PreSolve(constraint, space)
		}
		constraint.Class.PreStep(dt)
		if config.Warmstarting {
			constraint.Class.ApplyCachedImpulse()
		} else {
			constraint.Class.ResetImpulse()
		}
	}

	// Run the impulse solver.
	for i := 0; i < velocityIters; i++ {
		for _, res := range resolutions {
			SolveVelocity(res)
		}
	}
	for i := 0; i < constraintIters; i++ {
		for _, constraint := range constraints {
			constraint.Class.ApplyImpulse(dt)
		}
	}

	for _, body := range bodies {
		body.IntegrateVelocities(dt)
	}

	// The pseudo-velocities built here are integrated, then reset, at the
	// start of the next substep's position update.
	for i := 0; i < positionIters; i++ {
		for _, res := range resolutions {
			SolvePosition(res)
		}
	}

	for _, constraint := range constraints {
		if constraint.PostSolve != nil {
			constraint.PostSolve(constraint, space)
		}
	}

	if space.observer != nil {
		space.observer.AfterCollision(space, resolutions)
	}
}

// narrowphase turns broadphase pairs into resolutions, carrying accumulated
// impulses over from the previous substep.
func (space *Space) narrowphase(pairs []BodyPair) {
	config := &space.config
	space.resolutions = space.resolutions[:0]

	for _, pair := range pairs {
		key := pair.Key()
		if space.filters[key] > 0 {
			continue
		}

		res := Collide(pair.A, pair.B)
		if res == nil {
			continue
		}

		if old, ok := space.cachedResolutions[key]; ok {
			res.state = RESOLUTION_NORMAL
			if config.Warmstarting {
				res.matchContacts(old, config.ContactMatchThreshold)
			}
		}

		if config.Sleeping {
			wakeOnContact(res.a, res.b, config.WakeEnergyThreshold)
			wakeOnContact(res.b, res.a, config.WakeEnergyThreshold)
		}

		space.resolutions = append(space.resolutions, res)
	}

	clear(space.cachedResolutions)
	for _, res := range space.resolutions {
		space.cachedResolutions[res.key] = res
	}
}
