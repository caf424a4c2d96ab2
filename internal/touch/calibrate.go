package touch

// channelBuffer is a fixed-size ring of the last BufferSize raw samples for
// one pot channel. Slots start at zero, so the average reads low until the
// buffer has been filled once; the installation has always behaved that way
// on power-up and the pots settle within half a second.
type channelBuffer struct {
	slots [BufferSize]int
}

// write stores a sample at the given cursor position.
func (b *channelBuffer) write(cursor, sample int) {
	b.slots[cursor] = sample
}

// average returns the truncated integer mean over all slots.
func (b *channelBuffer) average() int {
	sum := 0
	for _, s := range b.slots {
		sum += s
	}
	return sum / BufferSize
}

// Calibrator smooths the three threshold pots. A single write cursor is
// shared by all three buffers and advances once per calibration tick.
type Calibrator struct {
	capLeft   channelBuffer
	capRight  channelBuffer
	impedance channelBuffer
	cursor    int
}

// NewCalibrator returns a Calibrator with zeroed buffers.
func NewCalibrator() *Calibrator {
	return &Calibrator{}
}

// Calibrate folds one pot sample into the buffers and returns the derived
// thresholds. Always succeeds; pot reads are bounded ADC values.
func (c *Calibrator) Calibrate(sample PotSample) Thresholds {
	c.capLeft.write(c.cursor, sample.CapLeft)
	c.capRight.write(c.cursor, sample.CapRight)
	c.impedance.write(c.cursor, sample.Impedance)
	c.cursor = (c.cursor + 1) % BufferSize

	return Thresholds{
		CapLeft:   scaleCapThreshold(c.capLeft.average()),
		CapRight:  scaleCapThreshold(c.capRight.average()),
		Impedance: c.impedance.average(),
	}
}

// scaleCapThreshold maps a smoothed pot value from the ADC range onto the
// capacitive sensitivity range. Integer map, monotonic: a higher pot
// reading never yields a lower threshold.
func scaleCapThreshold(v int) int {
	if v < 0 {
		v = 0
	}
	if v > ADCMax {
		v = ADCMax
	}
	return v * CapSensitivityMax / ADCMax
}
