//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealPads is not available on non-Linux platforms.
type RealPads struct{}

// NewRealPads returns an error on non-Linux platforms.
func NewRealPads(pinSend, pinLeft, pinRight int) (*RealPads, error) {
	return nil, errUnsupported
}

// ReadPair is not implemented on non-Linux platforms.
func (p *RealPads) ReadPair(samples int) (int64, int64, error) {
	return 0, 0, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (p *RealPads) Close() error {
	return nil
}

// RealOutputs is not available on non-Linux platforms.
type RealOutputs struct{}

// NewRealOutputs returns an error on non-Linux platforms.
func NewRealOutputs(pinRelayA, pinRelayB, pinLEDLeft, pinLEDRight, pinLEDImp int) (*RealOutputs, error) {
	return nil, errUnsupported
}

// SetRelays is not implemented on non-Linux platforms.
func (o *RealOutputs) SetRelays(capacitive bool) error {
	return errUnsupported
}

// SetLEDs is not implemented on non-Linux platforms.
func (o *RealOutputs) SetLEDs(left, right, joined bool) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (o *RealOutputs) Close() error {
	return nil
}
