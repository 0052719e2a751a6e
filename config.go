package nova

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid space config")

// Config holds the tunables of a Space.
type Config struct {
	// Global gravity acceleration. Y points up.
	Gravity Vector `yaml:"gravity"`

	// Sleeping enables the sleep state machine.
	Sleeping bool `yaml:"sleeping"`
	// Bodies whose energy stays below SleepEnergyThreshold for
	// SleepTimerThreshold steps are put to sleep.
	SleepEnergyThreshold float64 `yaml:"sleep_energy_threshold"`
	// A sleeping body touched by a body with more energy than this wakes up.
	WakeEnergyThreshold float64 `yaml:"wake_energy_threshold"`
	SleepTimerThreshold int     `yaml:"sleep_timer_threshold"`

	// Warmstarting re-applies last substep's accumulated impulses.
	Warmstarting bool `yaml:"warmstarting"`
	// Baumgarte is the position correction bias factor.
	Baumgarte float64 `yaml:"baumgarte"`

	MixRestitution CoefficientMix `yaml:"mix_restitution"`
	MixFriction    CoefficientMix `yaml:"mix_friction"`

	Broadphase BroadphaseKind `yaml:"broadphase"`
	// Cell size of the spatial hash broadphase.
	CellSize float64 `yaml:"cell_size"`

	// Scale applied to attraction forces.
	GravScale float64 `yaml:"grav_scale"`

	// Approach speeds below this do not bounce.
	RestitutionThreshold float64 `yaml:"restitution_threshold"`
	// Maximum distance between a new contact point and an old one for the
	// old accumulated impulses to carry over.
	ContactMatchThreshold float64 `yaml:"contact_match_threshold"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:               Vector{0, -GRAV_EARTH},
		Sleeping:              false,
		SleepEnergyThreshold:  0.5,
		WakeEnergyThreshold:   0.5 + 0.01,
		SleepTimerThreshold:   60,
		Warmstarting:          true,
		Baumgarte:             0.15,
		MixRestitution:        MIX_SQRT,
		MixFriction:           MIX_SQRT,
		Broadphase:            BROADPHASE_SPATIAL_HASH,
		CellSize:              4,
		GravScale:             GRAV_SCALE,
		RestitutionThreshold:  1.0,
		ContactMatchThreshold: 0.05,
	}
}

// Validate reports the first out of range setting, wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case !isFinite(c.Gravity):
		return fmt.Errorf("%w: gravity %v is not finite", ErrInvalidConfig, c.Gravity)
	case c.SleepEnergyThreshold < 0:
		return fmt.Errorf("%w: sleep energy threshold %v is negative", ErrInvalidConfig, c.SleepEnergyThreshold)
	case c.WakeEnergyThreshold < c.SleepEnergyThreshold:
		return fmt.Errorf("%w: wake energy threshold %v is below the sleep threshold %v", ErrInvalidConfig, c.WakeEnergyThreshold, c.SleepEnergyThreshold)
	case c.SleepTimerThreshold < 1:
		return fmt.Errorf("%w: sleep timer threshold %d must be at least 1", ErrInvalidConfig, c.SleepTimerThreshold)
	case c.Baumgarte < 0 || c.Baumgarte > 1:
		return fmt.Errorf("%w: baumgarte %v outside [0, 1]", ErrInvalidConfig, c.Baumgarte)
	case c.MixRestitution < MIX_AVG || c.MixRestitution > MIX_MAX:
		return fmt.Errorf("%w: restitution mix %d", ErrInvalidConfig, int(c.MixRestitution))
	case c.MixFriction < MIX_AVG || c.MixFriction > MIX_MAX:
		return fmt.Errorf("%w: friction mix %d", ErrInvalidConfig, int(c.MixFriction))
	case c.Broadphase < BROADPHASE_SPATIAL_HASH || c.Broadphase > BROADPHASE_BRUTE_FORCE:
		return fmt.Errorf("%w: broadphase %d", ErrInvalidConfig, int(c.Broadphase))
	case c.Broadphase == BROADPHASE_SPATIAL_HASH && c.CellSize <= 0:
		return fmt.Errorf("%w: cell size %v must be positive", ErrInvalidConfig, c.CellSize)
	case c.RestitutionThreshold < 0:
		return fmt.Errorf("%w: restitution threshold %v is negative", ErrInvalidConfig, c.RestitutionThreshold)
	case c.ContactMatchThreshold < 0:
		return fmt.Errorf("%w: contact match threshold %v is negative", ErrInvalidConfig, c.ContactMatchThreshold)
	}
	return nil
}
