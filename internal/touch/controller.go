package touch

import "time"

// Controller owns the sensing-mode and output state machines, the
// calibrated thresholds, and the debounce baselines. It is the single
// writer for all of them; the polling loop passes it one consistent "now"
// per tick and executes whatever Effects it returns.
type Controller struct {
	calibrator *Calibrator
	thresholds Thresholds

	mode  Mode
	state State

	// capModeSince is the mode-switch-eligibility baseline for capacitive
	// mode: reset on entering the mode, compared against capDebounce
	// before a BOTH reading is trusted enough to switch circuits.
	capModeSince time.Time

	// impWindowStart is the impedance hold-window baseline: reset on
	// entering impedance mode and again on every tick a join is detected,
	// so a continuous join never times out.
	impWindowStart time.Time

	capDebounce time.Duration
	impDebounce time.Duration

	counts        StateCounts
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewController creates a Controller in capacitive mode, idle state, with
// both debounce baselines at startTime.
func NewController(capDebounce, impDebounce time.Duration, startTime time.Time) *Controller {
	return &Controller{
		calibrator:     NewCalibrator(),
		mode:           ModeCapacitive,
		state:          StateIdle,
		capModeSince:   startTime,
		impWindowStart: startTime,
		capDebounce:    capDebounce,
		impDebounce:    impDebounce,
		startTime:      startTime,
		lastHeartbeat:  startTime,
	}
}

// TickCalibrate folds one pot sample into the rolling buffers and updates
// the thresholds. Runs on its own cadence, independent of TickSense.
func (c *Controller) TickCalibrate(sample PotSample) {
	c.thresholds = c.calibrator.Calibrate(sample)
}

// TickSense runs the check for the currently active mode against one
// reading and returns the side effects the caller must execute.
func (c *Controller) TickSense(r Reading) Effects {
	var fx Effects
	switch c.mode {
	case ModeCapacitive:
		c.capacitiveCheck(r, &fx)
	case ModeImpedance:
		c.impedanceCheck(r, &fx)
	}
	return fx
}

// capacitiveCheck derives the activation pattern from the two pad readings.
// Equal-to-threshold counts as inactive.
func (c *Controller) capacitiveCheck(r Reading, fx *Effects) {
	leftActive := r.CapLeft > int64(c.thresholds.CapLeft)
	rightActive := r.CapRight > int64(c.thresholds.CapRight)

	switch {
	case leftActive && !rightActive:
		c.setState(StateLeft, fx)
	case rightActive && !leftActive:
		c.setState(StateRight, fx)
	case leftActive && rightActive:
		c.setState(StateBoth, fx)
		// Two independent touches (two people, one hand each) read as
		// BOTH immediately; only a BOTH that has been held for the full
		// eligibility window is worth the cost of switching circuits.
		if r.Time.Sub(c.capModeSince) >= c.capDebounce {
			c.setMode(ModeImpedance, r.Time, fx)
		}
	default:
		c.setState(StateIdle, fx)
	}
}

// impedanceCheck tests for a completed hand-to-hand circuit. Lower
// impedance means better contact.
func (c *Controller) impedanceCheck(r Reading, fx *Effects) {
	if r.Impedance < c.thresholds.Impedance {
		c.setState(StateJoined, fx)
		c.impWindowStart = r.Time
		return
	}

	// Inside the hold window a miss is treated as noise: the output state
	// (Joined or not) is left untouched. A lost join is never demoted
	// here; once the window expires we fall back to capacitive polling,
	// which recomputes the output state on its next tick.
	if r.Time.Sub(c.impWindowStart) < c.impDebounce {
		return
	}

	c.setMode(ModeCapacitive, r.Time, fx)
}

// setState applies an output-state transition. Re-assigning the current
// state is a no-op: render effects fire exactly once per actual change.
func (c *Controller) setState(s State, fx *Effects) {
	if s == c.state {
		return
	}
	c.state = s
	c.countState(s)
	fx.StateChanged = true
	fx.State = s
}

// setMode applies a sensing-mode transition. Self-transitions are no-ops;
// on an actual change the entered mode's debounce baseline resets to the
// tick's now and the caller must move the relays.
func (c *Controller) setMode(m Mode, now time.Time, fx *Effects) {
	if m == c.mode {
		return
	}
	c.mode = m
	switch m {
	case ModeCapacitive:
		c.capModeSince = now
	case ModeImpedance:
		c.impWindowStart = now
	}
	fx.ModeChanged = true
	fx.Mode = m
}

func (c *Controller) countState(s State) {
	switch s {
	case StateLeft:
		c.counts.Left++
	case StateRight:
		c.counts.Right++
	case StateBoth:
		c.counts.Both++
	case StateJoined:
		c.counts.Joined++
	case StateIdle:
		c.counts.Idle++
	}
}

// Mode returns the currently active sensing mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// State returns the current output state.
func (c *Controller) State() State {
	return c.state
}

// Thresholds returns the most recently calibrated thresholds.
func (c *Controller) Thresholds() Thresholds {
	return c.thresholds
}

// CountsSnapshot returns a copy of the state-entry counts.
func (c *Controller) CountsSnapshot() StateCounts {
	return c.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since
// the last heartbeat (or startup). Returns nil if the interval has not
// elapsed or if interval is <= 0 (disabled).
func (c *Controller) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}
	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Counts:    c.counts,
	}
}

// LEDPattern maps an output state to the three indicator LEDs.
func LEDPattern(s State) (left, right, joined bool) {
	switch s {
	case StateLeft:
		return true, false, false
	case StateRight:
		return false, true, false
	case StateBoth:
		return true, true, false
	case StateJoined:
		return false, false, true
	default:
		return false, false, false
	}
}
