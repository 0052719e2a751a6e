package nova

// updateSleep advances the sleep timers once per step and puts bodies that
// stayed below the energy threshold long enough to sleep.
func (space *Space) updateSleep() {
	config := &space.config

	for _, body := range space.bodies {
		if body.kind == BODY_STATIC || body.sleeping {
			continue
		}
		if body.Energy() < config.SleepEnergyThreshold {
			body.sleepTimer++
		} else {
			body.sleepTimer = 0
		}
	}

	for _, body := range space.bodies {
		if body.kind == BODY_STATIC || body.sleeping {
			continue
		}
		if body.sleepTimer >= config.SleepTimerThreshold && space.jointPartnersReady(body) {
			body.Sleep()
		}
	}
}

// jointPartnersReady reports whether every body jointed to body could sleep
// as well. A body never sleeps while it is held by an active partner.
func (space *Space) jointPartnersReady(body *Body) bool {
	threshold := space.config.SleepTimerThreshold
	for _, c := range space.constraints {
		if c.a != body && c.b != body {
			continue
		}
		other := c.Other(body)
		if other.kind == BODY_STATIC || other.sleeping {
			continue
		}
		if other.sleepTimer < threshold {
			return false
		}
	}
	return true
}

// wakeJoints wakes sleeping bodies that are jointed to an energetic body.
func (space *Space) wakeJoints() {
	threshold := space.config.WakeEnergyThreshold
	for _, c := range space.constraints {
		wakeOnContact(c.a, c.b, threshold)
		wakeOnContact(c.b, c.a, threshold)
	}
}

// wakeOnContact wakes sleeper when other is an awake dynamic body with more
// energy than threshold.
func wakeOnContact(sleeper, other *Body, threshold float64) {
	if !sleeper.sleeping || other.sleeping || other.kind == BODY_STATIC {
		return
	}
	if other.Energy() > threshold {
		sleeper.Awake()
	}
}
