// Package status provides a thread-safe status tracker for the magic-hands
// daemon. It is written by the polling loop and read by the display sink.
package status

import (
	"sync"
	"time"

	"github.com/fieldworks/magic-hands/internal/touch"
)

// Config contains daemon configuration for display and logs.
type Config struct {
	CalibrateMs  int64
	SenseMs      int64
	DisplayMs    int64
	DebounceMs   int64
	HeartbeatMs  int64
	SerialDevice string
	I2CBus       string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Mode       touch.Mode
	State      touch.State
	Thresholds touch.Thresholds

	// Last raw readings. Only the active mode's channels are current;
	// the display shows "NA" for the others.
	CapLeft   int64
	CapRight  int64
	Impedance int

	Counts    touch.StateCounts
	StartTime time.Time
	Now       time.Time
	Config    Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Mode:      touch.ModeCapacitive,
			State:     touch.StateIdle,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets mode, state, thresholds, and counts.
// Called from the polling loop on every sense tick.
func (t *Tracker) Update(mode touch.Mode, state touch.State, th touch.Thresholds, counts touch.StateCounts) {
	t.mu.Lock()
	t.snap.Mode = mode
	t.snap.State = state
	t.snap.Thresholds = th
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetCapReading records the last capacitive pad readings.
func (t *Tracker) SetCapReading(left, right int64) {
	t.mu.Lock()
	t.snap.CapLeft = left
	t.snap.CapRight = right
	t.mu.Unlock()
}

// SetImpedanceReading records the last impedance reading.
func (t *Tracker) SetImpedanceReading(v int) {
	t.mu.Lock()
	t.snap.Impedance = v
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
