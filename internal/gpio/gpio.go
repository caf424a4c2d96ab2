// Package gpio provides the capacitive pads and the relay/LED outputs with
// hardware abstraction. The real implementation uses the Linux GPIO
// character device. The fake implementations allow testing without
// hardware.
package gpio

// Pads reads the two capacitive touch pads.
type Pads interface {
	// ReadPair returns the raw charge-transfer counts for the left and
	// right pads, each accumulated over the given number of excitation
	// cycles. Larger counts mean more capacitance (a touch).
	ReadPair(samples int) (left, right int64, err error)

	// Close releases the pad GPIO lines.
	Close() error
}

// Outputs drives the sensing-path relays and the indicator LEDs.
type Outputs interface {
	// SetRelays selects the sensing circuit. Both relay lines are always
	// driven identically: high for the capacitive path, low for the
	// impedance path.
	SetRelays(capacitive bool) error

	// SetLEDs drives the three indicator LEDs.
	SetLEDs(left, right, joined bool) error

	// Close drives the relays back to the capacitive path, turns the
	// LEDs off, and releases the lines.
	Close() error
}

// DefaultSamples is the number of excitation cycles accumulated per pad
// read.
const DefaultSamples = 100

// Pin defaults (BCM numbering), matching the installation wiring.
const (
	DefaultPinCapSend      = 7
	DefaultPinCapLeft      = 5
	DefaultPinCapRight     = 9
	DefaultPinRelayA       = 12
	DefaultPinRelayB       = 11
	DefaultPinLEDLeft      = 2
	DefaultPinLEDRight     = 3
	DefaultPinLEDImpedance = 4
)
