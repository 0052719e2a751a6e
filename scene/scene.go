// Package scene loads simulations described in YAML and builds them into a
// nova.Space.
package scene

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jakecoffman/nova"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoBodies          = errors.New("scene has no bodies")
	ErrDuplicateBody     = errors.New("duplicate body name")
	ErrUnknownBody       = errors.New("unknown body")
	ErrInvalidShape      = errors.New("invalid shape")
	ErrUnknownMaterial   = errors.New("unknown material")
	ErrInvalidStep       = errors.New("invalid step settings")
	ErrInvalidConstraint = errors.New("invalid constraint")
)

// Scene is the on-disk description of a simulation.
type Scene struct {
	Name  string      `yaml:"name,omitempty"`
	Space nova.Config `yaml:"space"`
	Step  StepDef     `yaml:"step"`

	Bodies      []BodyDef       `yaml:"bodies"`
	Constraints []ConstraintDef `yaml:"constraints,omitempty"`
}

// StepDef holds the arguments passed to Space.Step.
type StepDef struct {
	Dt                   float64 `yaml:"dt"`
	VelocityIterations   int     `yaml:"velocity_iterations"`
	PositionIterations   int     `yaml:"position_iterations"`
	ConstraintIterations int     `yaml:"constraint_iterations"`
	Substeps             int     `yaml:"substeps"`
}

func DefaultStep() StepDef {
	return StepDef{
		Dt:                   1.0 / 60.0,
		VelocityIterations:   8,
		PositionIterations:   4,
		ConstraintIterations: 5,
		Substeps:             1,
	}
}

// Shape types understood by ShapeDef.
const (
	ShapeCircle  = "circle"
	ShapePolygon = "polygon"
	ShapeRect    = "rect"
)

type ShapeDef struct {
	Type     string        `yaml:"type"`
	Radius   float64       `yaml:"radius,omitempty"`
	Width    float64       `yaml:"width,omitempty"`
	Height   float64       `yaml:"height,omitempty"`
	Vertices []nova.Vector `yaml:"vertices,omitempty"`
}

// MaterialDef is either the name of a preset ("steel") or explicit values.
type MaterialDef struct {
	Preset string
	nova.Material
}

func (m *MaterialDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		material, ok := nova.MaterialByName(strings.ToLower(node.Value))
		if !ok {
			return fmt.Errorf("line %d: %w %q", node.Line, ErrUnknownMaterial, node.Value)
		}
		m.Preset = node.Value
		m.Material = material
		return nil
	}
	m.Preset = ""
	m.Material = nova.BASIC
	return node.Decode(&m.Material)
}

func (m MaterialDef) MarshalYAML() (interface{}, error) {
	if m.Preset != "" {
		return m.Preset, nil
	}
	return m.Material, nil
}

// BodyDef describes one body. Kind defaults to static when omitted.
type BodyDef struct {
	Name     string        `yaml:"name"`
	Kind     nova.BodyType `yaml:"kind"`
	Shape    ShapeDef      `yaml:"shape"`
	Material *MaterialDef  `yaml:"material,omitempty"`

	Position        nova.Vector `yaml:"position"`
	Angle           float64     `yaml:"angle,omitempty"`
	Velocity        nova.Vector `yaml:"velocity,omitempty"`
	AngularVelocity float64     `yaml:"angular_velocity,omitempty"`
	LinearDamping   float64     `yaml:"linear_damping,omitempty"`
	AngularDamping  float64     `yaml:"angular_damping,omitempty"`

	Attractor bool `yaml:"attractor,omitempty"`
}

type ConstraintDef struct {
	Kind nova.ConstraintType `yaml:"kind"`
	A    string              `yaml:"a"`
	B    string              `yaml:"b"`

	// body local anchors
	AnchorA nova.Vector `yaml:"anchor_a,omitempty"`
	AnchorB nova.Vector `yaml:"anchor_b,omitempty"`
	// world space pivot; when set it replaces the anchors of a pivot joint
	Pivot *nova.Vector `yaml:"pivot,omitempty"`

	// rest length; the current anchor distance when omitted
	Length    *float64 `yaml:"length,omitempty"`
	Stiffness float64  `yaml:"stiffness,omitempty"`
	Damping   float64  `yaml:"damping,omitempty"`

	LockAngle     bool  `yaml:"lock_angle,omitempty"`
	CollideBodies *bool `yaml:"collide_bodies,omitempty"`
}

// New returns an empty scene with default space and step settings.
func New() *Scene {
	return &Scene{
		Space: nova.DefaultConfig(),
		Step:  DefaultStep(),
	}
}

// Parse decodes a scene. Settings missing from data keep their defaults.
func Parse(data []byte) (*Scene, error) {
	s := New()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Scene) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

func (s *Scene) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy, so one scene can be run under different settings.
func (s *Scene) Clone() (*Scene, error) {
	clone := &Scene{}
	if err := copier.CopyWithOption(clone, s, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("cloning scene: %w", err)
	}
	return clone, nil
}

// Validate checks everything Build would otherwise assert on.
func (s *Scene) Validate() error {
	if err := s.Space.Validate(); err != nil {
		return err
	}
	step := s.Step
	if step.Dt <= 0 || step.Substeps < 1 || step.VelocityIterations < 0 || step.PositionIterations < 0 || step.ConstraintIterations < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidStep, step)
	}
	if len(s.Bodies) == 0 {
		return ErrNoBodies
	}

	names := map[string]bool{}
	for i, body := range s.Bodies {
		if body.Name != "" {
			if names[body.Name] {
				return fmt.Errorf("%w %q", ErrDuplicateBody, body.Name)
			}
			names[body.Name] = true
		}
		if err := body.Shape.validate(); err != nil {
			return fmt.Errorf("body %d (%s): %w", i, body.Name, err)
		}
	}

	for i, c := range s.Constraints {
		for _, name := range []string{c.A, c.B} {
			if !names[name] {
				return fmt.Errorf("constraint %d: %w %q", i, ErrUnknownBody, name)
			}
		}
		if c.A == c.B {
			return fmt.Errorf("%w %d: a constraint needs two different bodies", ErrInvalidConstraint, i)
		}
		if c.Kind == nova.CONSTRAINT_SPRING && c.Length == nil {
			return fmt.Errorf("%w %d: springs need a length", ErrInvalidConstraint, i)
		}
	}
	return nil
}

func (shape ShapeDef) validate() error {
	switch shape.Type {
	case ShapeCircle:
		if shape.Radius <= 0 {
			return fmt.Errorf("%w: circle radius %v", ErrInvalidShape, shape.Radius)
		}
	case ShapeRect:
		if shape.Width <= 0 || shape.Height <= 0 {
			return fmt.Errorf("%w: rect %vx%v", ErrInvalidShape, shape.Width, shape.Height)
		}
	case ShapePolygon:
		if len(shape.Vertices) < 3 {
			return fmt.Errorf("%w: polygon with %d vertices", ErrInvalidShape, len(shape.Vertices))
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidShape, shape.Type)
	}
	return nil
}

func (shape ShapeDef) build() *nova.Shape {
	switch shape.Type {
	case ShapeCircle:
		return nova.NewCircleShape(shape.Radius)
	case ShapeRect:
		return nova.NewBoxShape(shape.Width, shape.Height)
	default:
		return nova.NewPolyShape(shape.Vertices)
	}
}

// Build creates a space populated with the scene's bodies and constraints.
// Named bodies are returned by name.
func (s *Scene) Build() (*nova.Space, map[string]*nova.Body, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}

	space := nova.NewSpaceWithConfig(s.Space)
	bodies := map[string]*nova.Body{}

	for _, def := range s.Bodies {
		material := nova.BASIC
		if def.Material != nil {
			material = def.Material.Material
		}
		body := nova.NewBody(def.Kind, def.Shape.build(), def.Position, def.Angle, material)
		body.LinearDamping = def.LinearDamping
		body.AngularDamping = def.AngularDamping
		if def.Kind == nova.BODY_DYNAMIC {
			body.SetVelocity(def.Velocity)
			body.SetAngularVelocity(def.AngularVelocity)
		}
		body.SetIsAttractor(def.Attractor)
		space.Add(body)

		if def.Name != "" {
			body.UserData = def.Name
			bodies[def.Name] = body
		}
	}

	for _, def := range s.Constraints {
		a, b := bodies[def.A], bodies[def.B]

		length := -1.0
		if def.Length != nil {
			length = *def.Length
		}

		var c *nova.Constraint
		switch def.Kind {
		case nova.CONSTRAINT_DISTANCE:
			c = nova.NewDistanceJoint(a, b, def.AnchorA, def.AnchorB, length)
		case nova.CONSTRAINT_SPRING:
			c = nova.NewSpring(a, b, def.AnchorA, def.AnchorB, length, def.Stiffness, def.Damping)
		case nova.CONSTRAINT_PIVOT:
			if def.Pivot != nil {
				c = nova.NewPivotJoint(a, b, *def.Pivot)
			} else {
				c = nova.NewPivotJoint2(a, b, def.AnchorA, def.AnchorB)
			}
			c.Class.(*nova.PivotJoint).LockAngle = def.LockAngle
		default:
			return nil, nil, fmt.Errorf("%w: kind %v", ErrInvalidConstraint, def.Kind)
		}
		if def.CollideBodies != nil {
			c.SetCollideBodies(*def.CollideBodies)
		}
		space.AddConstraint(c)
	}

	return space, bodies, nil
}
