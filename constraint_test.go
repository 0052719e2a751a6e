package nova

import (
	"math"
	"testing"
)

func TestDistanceJointHoldsLength(t *testing.T) {
	space := NewSpaceWithConfig(zeroGravity())
	anchor := space.Add(NewCircle(BODY_STATIC, Vector{}, 0, BASIC, 0.1))
	ball := space.Add(NewCircle(BODY_DYNAMIC, Vector{3, 0}, 0, BASIC, 0.5))
	c := space.AddConstraint(NewDistanceJoint(anchor, ball, Vector{}, Vector{}, 2))
	joint := c.Class.(*DistanceJoint)

	for i := 0; i < 600; i++ {
		space.Step(1.0/60.0, 8, 3, 4, 1)
	}

	if err := math.Abs(joint.Distance() - 2); err > CORRECTION_SLOP {
		t.Errorf("Expected distance 2, got %v", joint.Distance())
	}
	if c.Type() != CONSTRAINT_DISTANCE {
		t.Errorf("Unexpected type %v", c.Type())
	}
}

func TestDistanceJointCurrentLength(t *testing.T) {
	a := NewCircle(BODY_DYNAMIC, Vector{1, 1}, 0, BASIC, 0.5)
	b := NewCircle(BODY_DYNAMIC, Vector{4, 5}, 0, BASIC, 0.5)
	joint := NewDistanceJoint(a, b, Vector{}, Vector{}, -1).Class.(*DistanceJoint)

	if math.Abs(joint.Length-5) > 1e-12 {
		t.Errorf("Expected length 5, got %v", joint.Length)
	}
	if joint.Other(a) != b || joint.Other(b) != a {
		t.Error("Other should return the opposite body")
	}
}

func TestDistanceJointPushes(t *testing.T) {
	space := NewSpaceWithConfig(zeroGravity())
	anchor := space.Add(NewCircle(BODY_STATIC, Vector{}, 0, BASIC, 0.1))
	ball := space.Add(NewCircle(BODY_DYNAMIC, Vector{1, 0}, 0, BASIC, 0.5))
	c := space.AddConstraint(NewDistanceJoint(anchor, ball, Vector{}, Vector{}, 2))

	for i := 0; i < 600; i++ {
		space.Step(1.0/60.0, 8, 3, 4, 1)
	}

	if d := c.Class.(*DistanceJoint).Distance(); math.Abs(d-2) > CORRECTION_SLOP {
		t.Errorf("Expected the joint to push the ball out to 2, got %v", d)
	}
}

func TestSpringSettles(t *testing.T) {
	space := NewSpaceWithConfig(zeroGravity())
	anchor := space.Add(NewCircle(BODY_STATIC, Vector{}, 0, BASIC, 0.1))
	ball := space.Add(NewCircle(BODY_DYNAMIC, Vector{3, 0}, 0, BASIC, 0.5))
	space.AddConstraint(NewSpring(anchor, ball, Vector{}, Vector{}, 2, 20, 5))

	var stretched bool
	for i := 0; i < 600; i++ {
		space.Step(1.0/60.0, 8, 3, 4, 1)
		if i == 0 && ball.Velocity()[0] < 0 {
			stretched = true
		}
	}

	if !stretched {
		t.Error("Expected the spring to pull the ball in")
	}
	if d := ball.Position().Len(); math.Abs(d-2) > 0.05 {
		t.Errorf("Expected the spring to rest at 2, got %v", d)
	}
}

func TestSpringForceFunc(t *testing.T) {
	a := NewCircle(BODY_STATIC, Vector{}, 0, BASIC, 0.1)
	b := NewCircle(BODY_DYNAMIC, Vector{3, 0}, 0, BASIC, 0.5)
	spring := NewSpring(a, b, Vector{}, Vector{}, 2, 10, 0).Class.(*Spring)

	if f := DefaultSpringForce(spring, 3); f != -10 {
		t.Errorf("Expected -10, got %v", f)
	}

	var called bool
	spring.ForceFunc = func(s *Spring, dist float64) float64 {
		called = true
		return 0
	}
	spring.PreStep(1.0 / 60.0)
	if !called {
		t.Error("Expected the custom force func to be used")
	}
	if b.Velocity() != (Vector{}) {
		t.Errorf("A zero force should leave the body at rest, got %v", b.Velocity())
	}
}

func TestPivotJointPendulum(t *testing.T) {
	space := NewSpace()
	anchor := space.Add(NewCircle(BODY_STATIC, Vector{}, 0, BASIC, 0.1))
	bob := space.Add(NewRect(BODY_DYNAMIC, Vector{2, 0}, 0, BASIC, 0.5, 0.5))
	c := space.AddConstraint(NewPivotJoint(anchor, bob, Vector{}))
	joint := c.Class.(*PivotJoint)

	var lowest float64
	for i := 0; i < 300; i++ {
		space.Step(1.0/60.0, 8, 3, 10, 2)

		p1 := anchor.LocalToWorld(joint.AnchorA)
		p2 := bob.LocalToWorld(joint.AnchorB)
		if sep := p2.Sub(p1).Len(); sep > 0.05 {
			t.Fatalf("Step %d: pivot separated by %v", i, sep)
		}
		lowest = math.Min(lowest, bob.Position()[1])
	}

	if lowest > -1.9 {
		t.Errorf("Expected the pendulum to swing through the bottom, lowest %v", lowest)
	}
	if c.Impulse() == 0 {
		t.Error("Expected the joint to apply an impulse")
	}
}

func TestWeldJointHolds(t *testing.T) {
	space := NewSpace()
	anchor := space.Add(NewCircle(BODY_STATIC, Vector{}, 0, BASIC, 0.1))
	beam := space.Add(NewRect(BODY_DYNAMIC, Vector{1, 0}, 0, BASIC, 1, 0.2))
	space.AddConstraint(NewWeldJoint(anchor, beam, Vector{}))

	for i := 0; i < 300; i++ {
		space.Step(1.0/60.0, 8, 3, 10, 2)
	}

	if drift := beam.Position().Sub(Vector{1, 0}).Len(); drift > 0.1 {
		t.Errorf("Weld drifted by %v", drift)
	}
	if math.Abs(beam.Angle()) > 0.1 {
		t.Errorf("Weld rotated by %v", beam.Angle())
	}
}

func TestConstraintCallbacks(t *testing.T) {
	space := NewSpaceWithConfig(zeroGravity())
	a := space.Add(NewCircle(BODY_DYNAMIC, Vector{}, 0, BASIC, 0.5))
	b := space.Add(NewCircle(BODY_DYNAMIC, Vector{3, 0}, 0, BASIC, 0.5))
	c := space.AddConstraint(NewDistanceJoint(a, b, Vector{}, Vector{}, -1))

	var pre, post int
	c.PreSolve = func(constraint *Constraint, s *Space) {
		if constraint != c || s != space {
			t.Error("Unexpected callback arguments")
		}
		pre++
	}
	c.PostSolve = func(*Constraint, *Space) { post++ }

	space.Step(1.0/60.0, 1, 1, 1, 3)
	if pre != 3 || post != 3 {
		t.Errorf("Expected 3 calls each, got %d %d", pre, post)
	}
}

func TestConstraintWakesPartner(t *testing.T) {
	config := zeroGravity()
	config.Sleeping = true
	config.SleepTimerThreshold = 1
	space := NewSpaceWithConfig(config)
	a := space.Add(NewCircle(BODY_DYNAMIC, Vector{}, 0, BASIC, 0.5))
	b := space.Add(NewCircle(BODY_DYNAMIC, Vector{5, 0}, 0, BASIC, 0.5))
	// no force or damping, only a link for the sleep state machine
	space.AddConstraint(NewSpring(a, b, Vector{}, Vector{}, 5, 0, 0))

	space.Step(1.0/60.0, 8, 3, 1, 1)
	if !a.IsSleeping() || !b.IsSleeping() {
		t.Fatal("Expected both bodies to sleep")
	}

	b.SetVelocity(Vector{10, 0})
	space.Step(1.0/60.0, 8, 3, 1, 1)
	if a.IsSleeping() {
		t.Error("An energetic partner should wake the body")
	}
}

func TestConstraintBlocksSleep(t *testing.T) {
	config := zeroGravity()
	config.Sleeping = true
	config.SleepTimerThreshold = 1
	space := NewSpaceWithConfig(config)
	a := space.Add(NewCircle(BODY_DYNAMIC, Vector{}, 0, BASIC, 0.5))
	b := space.Add(NewCircle(BODY_DYNAMIC, Vector{5, 0}, 0, BASIC, 0.5))
	b.SetVelocity(Vector{0, 10})
	space.AddConstraint(NewSpring(a, b, Vector{}, Vector{}, 5, 0, 0))

	for i := 0; i < 5; i++ {
		space.Step(1.0/60.0, 8, 3, 1, 1)
	}
	if a.IsSleeping() {
		t.Error("A body should not sleep while its partner is active")
	}
}

func TestConstraintNeedsTwoBodies(t *testing.T) {
	a := NewCircle(BODY_DYNAMIC, Vector{}, 0, BASIC, 0.5)

	defer func() {
		if recover() == nil {
			t.Error("Expected a panic")
		}
	}()
	NewDistanceJoint(a, a, Vector{}, Vector{}, 1)
}
