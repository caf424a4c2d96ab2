package adc

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

// RealReader reads the four channels from an ADS1115 over I2C.
type RealReader struct {
	bus  i2c.BusCloser
	pins map[Channel]ads1x15.PinADC
}

// NewRealReader initializes periph, opens the named I2C bus ("" for the
// first available), and configures the four single-ended channels.
func NewRealReader(busName string) (*RealReader, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}

	dev, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("init ads1115: %w", err)
	}

	// Pots and impedance divider all run off the 3.3V rail; 128Hz is
	// plenty for 25ms calibration ticks.
	wiring := map[Channel]ads1x15.Channel{
		ChannelPotLeft:      ads1x15.Channel0,
		ChannelPotRight:     ads1x15.Channel1,
		ChannelPotImpedance: ads1x15.Channel2,
		ChannelImpedance:    ads1x15.Channel3,
	}

	pins := make(map[Channel]ads1x15.PinADC, len(wiring))
	for ch, hw := range wiring {
		pin, err := dev.PinForChannel(hw, 3300*physic.MilliVolt, 128*physic.Hertz, ads1x15.SaveEnergy)
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("configure %s: %w", ch, err)
		}
		pins[ch] = pin
	}

	return &RealReader{bus: bus, pins: pins}, nil
}

// Read returns the channel value rescaled from the converter's raw range
// onto 0..Max.
func (r *RealReader) Read(ch Channel) (int, error) {
	pin, ok := r.pins[ch]
	if !ok {
		return 0, fmt.Errorf("unknown channel %d", ch)
	}

	sample, err := pin.Read()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", ch, err)
	}

	_, max := pin.Range()
	if max.Raw <= 0 {
		return 0, fmt.Errorf("read %s: bad range", ch)
	}

	v := int(int64(sample.Raw) * Max / int64(max.Raw))
	if v < 0 {
		v = 0
	}
	if v > Max {
		v = Max
	}
	return v, nil
}

// Close halts the pins and releases the bus.
func (r *RealReader) Close() error {
	var errs []error
	for ch, pin := range r.pins {
		if err := pin.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt %s: %w", ch, err))
		}
	}
	if err := r.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close bus: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
