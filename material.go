package nova

// Surface and bulk properties of a body.
type Material struct {
	Density     float64 `yaml:"density"`
	Restitution float64 `yaml:"restitution"`
	Friction    float64 `yaml:"friction"`
}

var (
	BASIC     = Material{Density: 1.0, Restitution: 0.1, Friction: 0.4}
	STEEL     = Material{Density: 7.8, Restitution: 0.43, Friction: 0.45}
	WOOD      = Material{Density: 1.5, Restitution: 0.37, Friction: 0.52}
	GLASS     = Material{Density: 2.5, Restitution: 0.55, Friction: 0.19}
	ICE       = Material{Density: 0.92, Restitution: 0.05, Friction: 0.02}
	CONCRETE  = Material{Density: 3.6, Restitution: 0.1, Friction: 0.73}
	RUBBER    = Material{Density: 1.4, Restitution: 0.89, Friction: 0.92}
	GOLD      = Material{Density: 19.3, Restitution: 0.4, Friction: 0.35}
	CARDBOARD = Material{Density: 0.6, Restitution: 0.02, Friction: 0.2}
)

var materials = map[string]Material{
	"basic":     BASIC,
	"steel":     STEEL,
	"wood":      WOOD,
	"glass":     GLASS,
	"ice":       ICE,
	"concrete":  CONCRETE,
	"rubber":    RUBBER,
	"gold":      GOLD,
	"cardboard": CARDBOARD,
}

// MaterialByName looks up one of the preset materials, e.g. "steel".
func MaterialByName(name string) (Material, bool) {
	m, ok := materials[name]
	return m, ok
}
