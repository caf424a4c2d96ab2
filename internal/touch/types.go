// Package touch contains pure decision logic for the Magic Hands installation:
// threshold calibration, the dual-mode sensing checks, and the two state
// machines. This package has NO external dependencies (no GPIO, serial, OS,
// or time.Sleep). Time is always injectable via time.Time parameters.
package touch

import "time"

// State represents the externally visible interaction state.
type State string

const (
	StateIdle   State = "IDLE"
	StateLeft   State = "LEFT"
	StateRight  State = "RIGHT"
	StateBoth   State = "BOTH"
	StateJoined State = "JOINED"
)

// Mode represents which sensing circuit is electrically active.
type Mode string

const (
	ModeCapacitive Mode = "CAPACITIVE"
	ModeImpedance  Mode = "IMPEDANCE"
)

// BufferSize is the number of samples in each calibration buffer.
const BufferSize = 20

// CapSensitivityMax is the upper bound of the scaled capacitive threshold
// range. Pot readings (0-1023) are mapped onto 0..CapSensitivityMax.
const CapSensitivityMax = 15000

// ADCMax is the top of the raw analog input range.
const ADCMax = 1023

// Thresholds holds the three calibrated trigger levels.
type Thresholds struct {
	// CapLeft and CapRight are scaled into the sensitivity range.
	CapLeft  int
	CapRight int
	// Impedance stays on the raw ADC scale.
	Impedance int
}

// PotSample is one calibration-tick reading of the three threshold pots,
// each on the raw ADC scale.
type PotSample struct {
	CapLeft   int
	CapRight  int
	Impedance int
}

// Reading is one sense-tick input. Only the fields for the active mode are
// consulted: CapLeft/CapRight in capacitive mode, Impedance in impedance
// mode.
type Reading struct {
	CapLeft   int64
	CapRight  int64
	Impedance int
	Time      time.Time
}

// Effects describes the side effects a sense tick decided on. The caller
// (the polling loop) executes them; the logic package never touches
// hardware.
type Effects struct {
	// StateChanged is true when the output state actually changed this
	// tick. State is the new value.
	StateChanged bool
	State        State

	// ModeChanged is true when the sensing mode actually changed. Mode is
	// the new value; the relay path must follow it (capacitive = relays
	// high, impedance = relays low).
	ModeChanged bool
	Mode        Mode
}

// StateCounts tracks how many times each output state has been entered
// since startup.
type StateCounts struct {
	Left   int
	Right  int
	Both   int
	Joined int
	Idle   int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    StateCounts
}
