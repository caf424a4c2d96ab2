// Package adc reads the analog channels: the impedance sensing input and
// the three threshold potentiometers. The real implementation uses an
// ADS1115 over I2C via periph.io; the fake allows testing without hardware.
package adc

// Channel identifies one analog input.
type Channel int

const (
	// ChannelPotLeft is the left capacitive threshold pot.
	ChannelPotLeft Channel = iota
	// ChannelPotRight is the right capacitive threshold pot.
	ChannelPotRight
	// ChannelPotImpedance is the impedance threshold pot.
	ChannelPotImpedance
	// ChannelImpedance is the impedance sensing input.
	ChannelImpedance
)

// String returns the channel name for logs.
func (c Channel) String() string {
	switch c {
	case ChannelPotLeft:
		return "pot-left"
	case ChannelPotRight:
		return "pot-right"
	case ChannelPotImpedance:
		return "pot-impedance"
	case ChannelImpedance:
		return "impedance"
	default:
		return "unknown"
	}
}

// Max is the top of the scale Read reports on, matching a 10-bit ADC.
const Max = 1023

// Reader reads analog channels on the 0..Max scale.
type Reader interface {
	// Read returns the current value of the channel, 0..Max.
	Read(ch Channel) (int, error)

	// Close releases the ADC.
	Close() error
}
