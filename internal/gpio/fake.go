package gpio

import "errors"

// FakePads is a test double that returns scripted pad readings.
type FakePads struct {
	// Samples contains scripted (left, right) counts to return. Each
	// call to ReadPair consumes the next sample; the last sample repeats
	// once exhausted.
	Samples []PadSample

	// SamplesArg records the averaging count passed to each ReadPair.
	SamplesArg []int

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by ReadPair
	ReadError error
}

// PadSample represents a single pad reading pair.
type PadSample struct {
	Left  int64
	Right int64
}

// NewFakePads creates a FakePads with the given samples.
func NewFakePads(samples []PadSample) *FakePads {
	return &FakePads{Samples: samples}
}

// ReadPair returns the next scripted sample.
func (f *FakePads) ReadPair(samples int) (int64, int64, error) {
	f.SamplesArg = append(f.SamplesArg, samples)
	if f.ReadError != nil {
		return 0, 0, f.ReadError
	}
	if len(f.Samples) == 0 {
		return 0, 0, errors.New("no samples configured")
	}

	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s.Left, s.Right, nil
}

// Close marks the pads as closed.
func (f *FakePads) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the pads to the beginning of samples.
func (f *FakePads) Reset() {
	f.index = 0
	f.Closed = false
	f.SamplesArg = nil
}

// FakeOutputs records relay and LED writes for test assertions.
type FakeOutputs struct {
	// RelayHistory records every SetRelays call.
	RelayHistory []bool

	// Left, Right, Joined hold the last LED values written.
	Left, Right, Joined bool

	// LEDWrites counts SetLEDs calls.
	LEDWrites int

	// Closed tracks if Close was called.
	Closed bool

	// SetError, if set, is returned by SetRelays and SetLEDs.
	SetError error
}

// NewFakeOutputs creates a FakeOutputs for testing.
func NewFakeOutputs() *FakeOutputs {
	return &FakeOutputs{}
}

// SetRelays records the relay write.
func (f *FakeOutputs) SetRelays(capacitive bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.RelayHistory = append(f.RelayHistory, capacitive)
	return nil
}

// RelaysCapacitive reports the last relay write, defaulting to the
// capacitive path (power-on state).
func (f *FakeOutputs) RelaysCapacitive() bool {
	if len(f.RelayHistory) == 0 {
		return true
	}
	return f.RelayHistory[len(f.RelayHistory)-1]
}

// SetLEDs records the LED write.
func (f *FakeOutputs) SetLEDs(left, right, joined bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Left, f.Right, f.Joined = left, right, joined
	f.LEDWrites++
	return nil
}

// Close marks the outputs as closed.
func (f *FakeOutputs) Close() error {
	f.Closed = true
	return nil
}
