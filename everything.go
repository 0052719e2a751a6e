package nova

import (
	"fmt"
	"log"
	"math"
	"strings"
)

var INFINITY = math.Inf(1)

const (
	// Two values closer than this are treated as equal by the narrowphase.
	NEARLY_EQUAL_THRESHOLD = 0.0005

	// Penetration allowed before position correction kicks in.
	CORRECTION_SLOP = 0.006

	// Newtonian gravitational constant.
	GRAV_CONST = 6.6743e-11

	// Default scale applied to attraction forces so that bodies of everyday
	// mass attract noticeably.
	GRAV_SCALE = 1e11

	// Contacts a single resolution can hold.
	MAX_CONTACTS_PER_RESOLUTION = 2
)

// Gravity presets, in m/s^2.
const (
	GRAV_EARTH   = 9.81
	GRAV_MOON    = 1.62
	GRAV_MARS    = 3.7
	GRAV_JUPITER = 24.5
	GRAV_SUN     = 275.0
	GRAV_VOID    = 0.0
)

/// CoefficientMix picks how the restitution or friction of two colliding
/// bodies are combined into the single value used by a contact.
type CoefficientMix int

const (
	MIX_AVG CoefficientMix = iota
	MIX_SQRT
	MIX_MIN
	MIX_MAX
)

var mixNames = map[CoefficientMix]string{
	MIX_AVG:  "avg",
	MIX_SQRT: "sqrt",
	MIX_MIN:  "min",
	MIX_MAX:  "max",
}

func (mix CoefficientMix) String() string {
	if name, ok := mixNames[mix]; ok {
		return name
	}
	return fmt.Sprintf("CoefficientMix(%d)", int(mix))
}

// ParseCoefficientMix maps a name such as "sqrt" back to its CoefficientMix.
func ParseCoefficientMix(name string) (CoefficientMix, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for mix, n := range mixNames {
		if n == name {
			return mix, nil
		}
	}
	return 0, fmt.Errorf("unknown coefficient mix %q", name)
}

func (mix CoefficientMix) MarshalText() ([]byte, error) {
	if _, ok := mixNames[mix]; !ok {
		return nil, fmt.Errorf("unknown coefficient mix %d", int(mix))
	}
	return []byte(mix.String()), nil
}

func (mix *CoefficientMix) UnmarshalText(text []byte) error {
	m, err := ParseCoefficientMix(string(text))
	if err != nil {
		return err
	}
	*mix = m
	return nil
}

/// Mix two coefficients. An unknown mix is a programming error: it is logged
/// and 0 is returned.
func MixCoefficients(a, b float64, mix CoefficientMix) float64 {
	switch mix {
	case MIX_AVG:
		return (a + b) / 2
	case MIX_SQRT:
		return math.Sqrt(a * b)
	case MIX_MIN:
		return math.Min(a, b)
	case MIX_MAX:
		return math.Max(a, b)
	}
	log.Println("Internal Error: unknown coefficient mix", int(mix))
	return 0
}
