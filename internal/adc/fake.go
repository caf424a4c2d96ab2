package adc

import "fmt"

// FakeReader is a test double with settable channel values.
type FakeReader struct {
	// Values holds the value returned per channel.
	Values map[Channel]int

	// Reads counts Read calls per channel.
	Reads map[Channel]int

	// ReadError, if set, will be returned by Read.
	ReadError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeReader creates a FakeReader with the given initial values.
func NewFakeReader(values map[Channel]int) *FakeReader {
	if values == nil {
		values = make(map[Channel]int)
	}
	return &FakeReader{
		Values: values,
		Reads:  make(map[Channel]int),
	}
}

// Set updates a channel value mid-test.
func (f *FakeReader) Set(ch Channel, v int) {
	f.Values[ch] = v
}

// Read returns the configured value for the channel.
func (f *FakeReader) Read(ch Channel) (int, error) {
	f.Reads[ch]++
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	v, ok := f.Values[ch]
	if !ok {
		return 0, fmt.Errorf("no value configured for channel %s", ch)
	}
	return v, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}
