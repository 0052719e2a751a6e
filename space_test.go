package nova

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

func zeroGravity() Config {
	config := DefaultConfig()
	config.Gravity = Vector{}
	return config
}

func TestSpace_AddRemove(t *testing.T) {
	space := NewSpace()
	a := space.Add(NewCircle(BODY_DYNAMIC, Vector{}, 0, BASIC, 1))
	b := space.Add(NewCircle(BODY_DYNAMIC, Vector{3, 0}, 0, BASIC, 1))

	if a.Id() == 0 || b.Id() == 0 || a.Id() == b.Id() {
		t.Errorf("Expected distinct ids, got %d %d", a.Id(), b.Id())
	}
	if a.Space() != space {
		t.Error("Body should know its space")
	}

	space.Remove(a)
	if len(space.Bodies()) != 1 || space.Bodies()[0] != b {
		t.Errorf("Expected only b to remain, got %v", space.Bodies())
	}
	if a.Space() != nil || a.Id() != 0 {
		t.Error("Removed body should be detached")
	}

	// a removed body can be added again
	space.Add(a)
	if a.Id() <= b.Id() {
		t.Errorf("Expected a fresh id, got %d", a.Id())
	}
}

func TestSpace_StaticBodiesDoNotMove(t *testing.T) {
	space := NewSpace()
	floor := space.Add(NewRect(BODY_STATIC, Vector{0, -0.5}, 0.1, BASIC, 20, 1))
	for i := 0; i < 5; i++ {
		space.Add(NewRect(BODY_DYNAMIC, Vector{float64(i) - 2, 2}, 0, BASIC, 0.8, 0.8))
	}

	for i := 0; i < 120; i++ {
		space.Step(1.0/60.0, 8, 3, 4, 2)
	}

	if floor.Position() != (Vector{0, -0.5}) || floor.Angle() != 0.1 {
		t.Errorf("Static body moved to %v %v", floor.Position(), floor.Angle())
	}
	if floor.Velocity() != (Vector{}) || floor.AngularVelocity() != 0 {
		t.Errorf("Static body gained velocity %v %v", floor.Velocity(), floor.AngularVelocity())
	}
	if space.Stamp() != 120 {
		t.Errorf("Expected stamp 120, got %d", space.Stamp())
	}
}

func TestSpace_ElasticExchange(t *testing.T) {
	bouncy := Material{Density: 1, Restitution: 1, Friction: 0}
	space := NewSpaceWithConfig(zeroGravity())
	a := space.Add(NewCircle(BODY_DYNAMIC, Vector{-0.499, 0}, 0, bouncy, 0.5))
	b := space.Add(NewCircle(BODY_DYNAMIC, Vector{0.499, 0}, 0, bouncy, 0.5))
	a.SetVelocity(Vector{1, 0})
	b.SetVelocity(Vector{-1, 0})

	space.Step(1.0/60.0, 10, 1, 1, 1)

	if !vnearlyEqual(a.Velocity(), Vector{-1, 0}) {
		t.Errorf("Expected a to move left, got %v", a.Velocity())
	}
	if !vnearlyEqual(b.Velocity(), Vector{1, 0}) {
		t.Errorf("Expected b to move right, got %v", b.Velocity())
	}

	res := space.Resolutions()
	if len(res) != 1 || !res[0].IsFirstContact() {
		t.Fatalf("Expected a single first contact, got %v", res)
	}
	if res[0].Restitution() != 1 || res[0].Friction() != 0 {
		t.Errorf("Unexpected mixed coefficients %v %v", res[0].Restitution(), res[0].Friction())
	}
}

func TestSpace_NoBounceBelowThreshold(t *testing.T) {
	bouncy := Material{Density: 1, Restitution: 1, Friction: 0}
	space := NewSpaceWithConfig(zeroGravity())
	a := space.Add(NewCircle(BODY_DYNAMIC, Vector{-0.499, 0}, 0, bouncy, 0.5))
	b := space.Add(NewCircle(BODY_DYNAMIC, Vector{0.499, 0}, 0, bouncy, 0.5))
	a.SetVelocity(Vector{0.25, 0})
	b.SetVelocity(Vector{-0.25, 0})

	space.Step(1.0/60.0, 10, 1, 1, 1)

	// the approach speed is below the restitution threshold so the contact
	// is inelastic
	if math.Abs(a.Velocity()[0]) > 1e-9 || math.Abs(b.Velocity()[0]) > 1e-9 {
		t.Errorf("Expected the bodies to stop, got %v %v", a.Velocity(), b.Velocity())
	}
}

func sleepyFloor(config Config) (*Space, *Body, *Body) {
	space := NewSpaceWithConfig(config)
	floor := space.Add(NewRect(BODY_STATIC, Vector{0, -0.5}, 0, BASIC, 10, 1))
	ball := space.Add(NewCircle(BODY_DYNAMIC, Vector{0, 0.499}, 0, BASIC, 0.5))
	return space, floor, ball
}

func TestSpace_SleepTimer(t *testing.T) {
	config := DefaultConfig()
	config.Sleeping = true
	config.SleepTimerThreshold = 10
	space, _, ball := sleepyFloor(config)

	for i := 0; i < 9; i++ {
		space.Step(1.0/60.0, 8, 3, 1, 1)
	}
	if ball.IsSleeping() {
		t.Fatal("Ball fell asleep too early")
	}
	if ball.SleepTimer() != 9 {
		t.Errorf("Expected sleep timer 9, got %d", ball.SleepTimer())
	}

	space.Step(1.0/60.0, 8, 3, 1, 1)
	if !ball.IsSleeping() {
		t.Fatal("Expected the ball to sleep after 10 steps")
	}
	if ball.Velocity() != (Vector{}) || ball.AngularVelocity() != 0 {
		t.Errorf("Sleeping body should have zero velocity, got %v %v", ball.Velocity(), ball.AngularVelocity())
	}

	p := ball.Position()
	for i := 0; i < 30; i++ {
		space.Step(1.0/60.0, 8, 3, 1, 1)
	}
	if !ball.IsSleeping() || ball.Position() != p {
		t.Error("Sleeping body should stay put")
	}

	ball.ApplyForce(Vector{1, 0})
	if ball.IsSleeping() {
		t.Error("Applying a force should wake the ball")
	}
}

func TestSpace_SleepingDisabled(t *testing.T) {
	config := DefaultConfig()
	config.SleepTimerThreshold = 1
	space, _, ball := sleepyFloor(config)

	for i := 0; i < 30; i++ {
		space.Step(1.0/60.0, 8, 3, 1, 1)
	}
	if ball.IsSleeping() {
		t.Error("Bodies should not sleep while sleeping is disabled")
	}
}

func TestSpace_WakeOnContact(t *testing.T) {
	config := DefaultConfig()
	config.Sleeping = true
	config.SleepTimerThreshold = 10
	space, _, ball := sleepyFloor(config)

	for i := 0; i < 10; i++ {
		space.Step(1.0/60.0, 8, 3, 1, 1)
	}
	if !ball.IsSleeping() {
		t.Fatal("Expected the ball to sleep")
	}

	// slow bodies do not disturb a sleeper
	space.Add(NewCircle(BODY_DYNAMIC, Vector{0.99, 0.499}, 0, BASIC, 0.5))
	space.Step(1.0/60.0, 8, 3, 1, 1)
	if !ball.IsSleeping() {
		t.Error("A slow touch should not wake the ball")
	}

	rock := space.Add(NewCircle(BODY_DYNAMIC, Vector{0, 1.45}, 0, BASIC, 0.5))
	rock.SetVelocity(Vector{0, -10})
	space.Step(1.0/60.0, 8, 3, 1, 1)
	if ball.IsSleeping() {
		t.Error("An energetic contact should wake the ball")
	}
}

func TestSpace_DisableSleepingWakes(t *testing.T) {
	config := DefaultConfig()
	config.Sleeping = true
	config.SleepTimerThreshold = 1
	space, _, ball := sleepyFloor(config)

	space.Step(1.0/60.0, 8, 3, 1, 1)
	if !ball.IsSleeping() {
		t.Fatal("Expected the ball to sleep")
	}

	space.DisableSleeping()
	if ball.IsSleeping() {
		t.Error("Disabling sleep should wake every body")
	}
	if space.Config().Sleeping {
		t.Error("Sleeping should be off")
	}
}

func TestSpace_RemoveWakesPartners(t *testing.T) {
	config := DefaultConfig()
	config.Sleeping = true
	config.SleepTimerThreshold = 1
	space, floor, ball := sleepyFloor(config)

	space.Step(1.0/60.0, 8, 3, 1, 1)
	if !ball.IsSleeping() {
		t.Fatal("Expected the ball to sleep")
	}
	// the sleeping pair drops out of the broadphase
	for i := 0; i < 5; i++ {
		space.Step(1.0/60.0, 8, 3, 1, 1)
	}
	if !ball.IsSleeping() {
		t.Fatal("Expected the ball to stay asleep")
	}
	y := ball.Position()[1]

	space.Remove(floor)
	if ball.IsSleeping() {
		t.Error("Removing the floor should wake the ball")
	}
	if len(space.Resolutions()) != 0 || len(space.cachedResolutions) != 0 {
		t.Error("Contact state of the floor should be dropped")
	}

	for i := 0; i < 10; i++ {
		space.Step(1.0/60.0, 8, 3, 1, 1)
	}
	if ball.IsSleeping() || ball.Position()[1] >= y-0.1 {
		t.Errorf("Expected the ball to fall, got y %v from %v", ball.Position()[1], y)
	}
}

func TestSpace_RemoveLeavesDistantSleepers(t *testing.T) {
	config := DefaultConfig()
	config.Sleeping = true
	config.SleepTimerThreshold = 1
	space, floor, ball := sleepyFloor(config)
	space.Add(NewRect(BODY_STATIC, Vector{20, -0.5}, 0, BASIC, 4, 1))
	far := space.Add(NewCircle(BODY_DYNAMIC, Vector{20, 0.499}, 0, BASIC, 0.5))

	space.Step(1.0/60.0, 8, 3, 1, 1)
	if !ball.IsSleeping() || !far.IsSleeping() {
		t.Fatal("Expected both balls to sleep")
	}

	space.Remove(floor)
	if !far.IsSleeping() {
		t.Error("A ball resting elsewhere should stay asleep")
	}
}

func TestSpace_RemoveCleansUp(t *testing.T) {
	space := NewSpace()
	floor := space.Add(NewRect(BODY_STATIC, Vector{0, -0.5}, 0, BASIC, 10, 1))
	ball := space.Add(NewCircle(BODY_DYNAMIC, Vector{0, 0.45}, 0, BASIC, 0.5))
	other := space.Add(NewCircle(BODY_DYNAMIC, Vector{3, 3}, 0, BASIC, 0.5))
	ball.SetIsAttractor(true)
	space.AddConstraint(NewDistanceJoint(ball, other, Vector{}, Vector{}, -1))

	space.Step(1.0/60.0, 8, 3, 1, 1)
	if len(space.Resolutions()) != 1 {
		t.Fatalf("Expected the ball to touch the floor, got %d resolutions", len(space.Resolutions()))
	}

	space.Remove(ball)

	if len(space.Constraints()) != 0 {
		t.Error("Constraints of a removed body should be removed")
	}
	if len(space.Attractors()) != 0 {
		t.Error("A removed attractor should leave the attractor set")
	}
	if len(space.Resolutions()) != 0 || len(space.cachedResolutions) != 0 {
		t.Error("Resolutions of a removed body should be dropped")
	}

	space.Step(1.0/60.0, 8, 3, 1, 1)
	if floor.Space() != space || other.Space() != space {
		t.Error("Other bodies should stay")
	}
}

func TestSpace_ConstraintFilter(t *testing.T) {
	space := NewSpaceWithConfig(zeroGravity())
	a := space.Add(NewRect(BODY_DYNAMIC, Vector{0, 0}, 0, BASIC, 1, 1))
	b := space.Add(NewRect(BODY_DYNAMIC, Vector{0.5, 0}, 0, BASIC, 1, 1))
	joint := space.AddConstraint(NewPivotJoint(a, b, Vector{0.25, 0}))

	space.Step(1.0/60.0, 8, 3, 4, 1)
	if len(space.Resolutions()) != 1 {
		t.Fatalf("Expected jointed bodies to collide by default, got %d", len(space.Resolutions()))
	}

	joint.SetCollideBodies(false)
	space.Step(1.0/60.0, 8, 3, 4, 1)
	if len(space.Resolutions()) != 0 {
		t.Errorf("Expected the filter to skip the pair, got %d", len(space.Resolutions()))
	}

	space.RemoveConstraint(joint)
	space.Step(1.0/60.0, 8, 3, 4, 1)
	if len(space.Resolutions()) != 1 {
		t.Errorf("Expected the pair to collide once the joint is gone, got %d", len(space.Resolutions()))
	}
}

func TestSpace_Attractor(t *testing.T) {
	space := NewSpaceWithConfig(zeroGravity())
	planet := space.Add(NewCircle(BODY_STATIC, Vector{}, 0, BASIC, 2))
	planet.SetIsAttractor(true)
	moon := space.Add(NewCircle(BODY_DYNAMIC, Vector{10, 0}, 0, BASIC, 0.5))

	if len(space.Attractors()) != 1 {
		t.Fatal("Expected the planet in the attractor set")
	}

	space.Step(1.0/60.0, 8, 3, 1, 1)
	if moon.Velocity()[0] >= 0 {
		t.Errorf("Expected the moon to fall towards the planet, got %v", moon.Velocity())
	}
	if planet.Position() != (Vector{}) {
		t.Error("Static attractor should not move")
	}

	planet.SetIsAttractor(false)
	if len(space.Attractors()) != 0 {
		t.Error("Expected the attractor set to be empty")
	}
}

type countingObserver struct {
	before, after int
	locked        bool
	contacts      int
}

func (o *countingObserver) BeforeCollision(space *Space, resolutions []*Resolution) {
	o.before++
	o.locked = o.locked || space.IsLocked()
	o.contacts += len(resolutions)
}

func (o *countingObserver) AfterCollision(space *Space, resolutions []*Resolution) {
	o.after++
}

func TestSpace_CollisionObserver(t *testing.T) {
	space, _, _ := sleepyFloor(DefaultConfig())
	observer := &countingObserver{}
	space.SetCollisionObserver(observer)

	for i := 0; i < 5; i++ {
		space.Step(1.0/60.0, 8, 3, 1, 4)
	}

	if observer.before != 20 || observer.after != 20 {
		t.Errorf("Expected 20 calls each, got %d %d", observer.before, observer.after)
	}
	if !observer.locked {
		t.Error("Space should be locked during callbacks")
	}
	if observer.contacts != 20 {
		t.Errorf("Expected one resolution per substep, got %d", observer.contacts)
	}

	var after int
	space.SetCollisionObserver(CollisionFuncs{After: func(*Space, []*Resolution) { after++ }})
	space.Step(1.0/60.0, 8, 3, 1, 1)
	if after != 1 {
		t.Errorf("Expected 1 call, got %d", after)
	}

	space.Free()
	space.Step(1.0/60.0, 8, 3, 1, 1)
	if after != 1 {
		t.Error("Free should drop the observer")
	}
}

func TestSpace_StepFromObserverPanics(t *testing.T) {
	space, _, _ := sleepyFloor(DefaultConfig())
	space.SetCollisionObserver(CollisionFuncs{Before: func(s *Space, _ []*Resolution) {
		s.Step(1.0/60.0, 1, 1, 1, 1)
	}})

	defer func() {
		if recover() == nil {
			t.Error("Expected a panic")
		}
	}()
	space.Step(1.0/60.0, 1, 1, 1, 1)
}

func TestSpace_Clear(t *testing.T) {
	space, floor, ball := sleepyFloor(DefaultConfig())
	space.AddConstraint(NewDistanceJoint(floor, ball, Vector{}, Vector{}, -1))
	space.Step(1.0/60.0, 8, 3, 1, 1)

	space.Clear()
	if len(space.Bodies()) != 0 || len(space.Constraints()) != 0 || len(space.Resolutions()) != 0 {
		t.Error("Expected an empty space")
	}
	if floor.Space() != nil || ball.Space() != nil {
		t.Error("Bodies should be detached")
	}
}

func stackTrace(warmstarting bool, steps int) string {
	config := DefaultConfig()
	config.Warmstarting = warmstarting
	space := NewSpaceWithConfig(config)
	space.Add(NewRect(BODY_STATIC, Vector{0, -0.5}, 0, BASIC, 20, 1))
	for i := 0; i < 4; i++ {
		space.Add(NewRect(BODY_DYNAMIC, Vector{0.1 * float64(i), 0.5 + 1.05*float64(i)}, 0.05*float64(i), WOOD, 1, 1))
	}
	space.Add(NewCircle(BODY_DYNAMIC, Vector{-2, 3}, 0, RUBBER, 0.4))

	var sb strings.Builder
	for i := 0; i < steps; i++ {
		space.Step(1.0/60.0, 8, 3, 1, 2)
		for _, body := range space.Bodies() {
			fmt.Fprintf(&sb, "%d %d %v %v %v %v\n", i, body.Id(), body.Position(), body.Angle(), body.Velocity(), body.AngularVelocity())
		}
	}
	return sb.String()
}

func TestSpace_Deterministic(t *testing.T) {
	first := stackTrace(true, 200)
	second := stackTrace(true, 200)

	if first != second {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(first),
			B:        difflib.SplitLines(second),
			FromFile: "first",
			ToFile:   "second",
			Context:  1,
		})
		t.Errorf("Simulation is not deterministic:\n%s", diff)
	}
}

// settleIterations returns the fewest velocity iterations needed for a box
// stack to come to rest.
func settleIterations(warmstarting bool) int {
	for iters := 1; iters <= 40; iters++ {
		config := DefaultConfig()
		config.Warmstarting = warmstarting
		space := NewSpaceWithConfig(config)
		space.Add(NewRect(BODY_STATIC, Vector{0, -0.5}, 0, BASIC, 20, 1))
		for i := 0; i < 3; i++ {
			space.Add(NewRect(BODY_DYNAMIC, Vector{0, 0.5 + float64(i)}, 0, BASIC, 1, 1))
		}

		for i := 0; i < 180; i++ {
			space.Step(1.0/60.0, iters, 3, 1, 1)
		}

		var speed float64
		for _, body := range space.Bodies() {
			speed = math.Max(speed, body.Velocity().Len())
		}
		if speed < 0.05 {
			return iters
		}
	}
	return 41
}

func TestSpace_WarmStartConverges(t *testing.T) {
	warm := settleIterations(true)
	cold := settleIterations(false)
	t.Logf("iterations to settle: warm %d, cold %d", warm, cold)

	if warm > 40 {
		t.Fatal("Warm started stack never settled")
	}
	if warm > cold {
		t.Errorf("Warm starting should not need more iterations than a cold start: %d > %d", warm, cold)
	}
}

func TestSpace_WarmStartCarriesImpulse(t *testing.T) {
	space, _, _ := sleepyFloor(DefaultConfig())

	space.Step(1.0/60.0, 8, 3, 1, 1)
	res := space.Resolutions()[0]
	if !res.IsFirstContact() {
		t.Error("Expected a first contact")
	}
	first := res.Contacts()[0].NormalImpulse()

	space.Step(1.0/60.0, 8, 3, 1, 1)
	res = space.Resolutions()[0]
	if res.IsFirstContact() {
		t.Error("Expected a persistent contact")
	}
	if first <= 0 || res.Contacts()[0].NormalImpulse() <= 0 {
		t.Errorf("Expected positive normal impulses, got %v %v", first, res.Contacts()[0].NormalImpulse())
	}
}

func pyramid(rows int) (*Space, []*Body) {
	space := NewSpace()
	space.Add(NewRect(BODY_STATIC, Vector{0, -0.5}, 0, WOOD, 40, 1))

	var boxes []*Body
	for row := 0; row < rows; row++ {
		n := rows - row
		for i := 0; i < n; i++ {
			x := (float64(i) - float64(n-1)/2) * 1.05
			boxes = append(boxes, space.Add(NewRect(BODY_DYNAMIC, Vector{x, 0.5 + float64(row)}, 0, WOOD, 1, 1)))
		}
	}
	return space, boxes
}

func TestSpace_PyramidStands(t *testing.T) {
	space, boxes := pyramid(10)
	top := boxes[len(boxes)-1]
	start := top.Position()

	for i := 0; i < 600; i++ {
		space.Step(1.0/60.0, 10, 4, 0, 1)
	}

	if drift := math.Abs(top.Position()[0] - start[0]); drift > 0.5 {
		t.Errorf("Top box drifted sideways by %v", drift)
	}
	if drop := start[1] - top.Position()[1]; drop > 0.5 {
		t.Errorf("Top box sank by %v", drop)
	}
	for i, box := range boxes {
		if math.Abs(box.Angle()) > 0.2 {
			t.Errorf("Box %d tipped over to %v", i, box.Angle())
		}
		if v := box.Velocity().Len(); v > 0.5 {
			t.Errorf("Box %d still moving at %v", i, v)
		}
	}
}

func TestSpace_RestingBoxDoesNotBounce(t *testing.T) {
	space := NewSpace()
	space.Add(NewRect(BODY_STATIC, Vector{0, -0.5}, 0, WOOD, 10, 1))
	box := space.Add(NewRect(BODY_DYNAMIC, Vector{0, 0.5}, 0, WOOD, 1, 1))

	var peak float64
	for i := 0; i < 120; i++ {
		space.Step(1.0/60.0, 10, 4, 0, 1)
		peak = math.Max(peak, math.Abs(box.Velocity()[1]))
	}
	if peak > 0.5 {
		t.Errorf("Expected the box to rest, peak vertical speed %v", peak)
	}
	if y := box.Position()[1]; y < 0.5-0.05 || y > 0.5+0.05 {
		t.Errorf("Expected the box to stay on the floor, got y %v", y)
	}
}

func TestSpace_FrictionStopsSlidingBox(t *testing.T) {
	space := NewSpace()
	grippy := Material{Density: 1, Restitution: 0, Friction: 0.4}
	space.Add(NewRect(BODY_STATIC, Vector{0, -0.5}, 0, grippy, 40, 1))
	box := space.Add(NewRect(BODY_DYNAMIC, Vector{0, 0.5}, 0, grippy, 1, 1))

	// let the contact settle before sliding
	for i := 0; i < 10; i++ {
		space.Step(1.0/60.0, 10, 4, 0, 1)
	}
	box.SetVelocity(Vector{3, 0})
	x0 := box.Position()[0]

	dt := 1.0 / 60.0
	space.Step(dt, 10, 4, 0, 1)
	loss := 3 - box.Velocity()[0]
	expected := 0.4 * GRAV_EARTH * dt
	if loss < expected*0.5 || loss > expected*2 {
		t.Errorf("Expected to lose about %v per step, lost %v", expected, loss)
	}

	// v / (mu g) is about 46 steps
	for i := 0; i < 120; i++ {
		space.Step(dt, 10, 4, 0, 1)
	}
	if v := box.Velocity()[0]; math.Abs(v) > 0.05 {
		t.Errorf("Expected the box to stop, got vx %v", v)
	}
	// v^2 / (2 mu g)
	slid := box.Position()[0] - x0
	want := 9 / (2 * 0.4 * GRAV_EARTH)
	if slid < want*0.6 || slid > want*1.4 {
		t.Errorf("Expected to slide about %v, slid %v", want, slid)
	}
}
