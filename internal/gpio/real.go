//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// chargeTimeout bounds a single excitation cycle. A pad that never charges
// (broken wire) reports the cap instead of hanging the loop.
const chargeTimeout = 20000

// RealPads reads the pads on actual hardware using charge-transfer timing:
// drive the shared send line high through the series resistor and count
// polls until each receive line follows.
type RealPads struct {
	chip  *gpiocdev.Chip
	send  *gpiocdev.Line
	left  *gpiocdev.Line
	right *gpiocdev.Line
}

// NewRealPads requests the send and receive lines for the two pads.
func NewRealPads(pinSend, pinLeft, pinRight int) (*RealPads, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	send, err := chip.RequestLine(pinSend, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request send pin %d: %w", pinSend, err)
	}

	left, err := chip.RequestLine(pinLeft, gpiocdev.AsInput)
	if err != nil {
		send.Close()
		chip.Close()
		return nil, fmt.Errorf("request left pad pin %d: %w", pinLeft, err)
	}

	right, err := chip.RequestLine(pinRight, gpiocdev.AsInput)
	if err != nil {
		left.Close()
		send.Close()
		chip.Close()
		return nil, fmt.Errorf("request right pad pin %d: %w", pinRight, err)
	}

	return &RealPads{chip: chip, send: send, left: left, right: right}, nil
}

// ReadPair accumulates charge-transfer counts for both pads over the given
// number of excitation cycles.
func (p *RealPads) ReadPair(samples int) (int64, int64, error) {
	var left, right int64
	for i := 0; i < samples; i++ {
		l, err := p.chargeCount(p.left)
		if err != nil {
			return 0, 0, fmt.Errorf("left pad: %w", err)
		}
		r, err := p.chargeCount(p.right)
		if err != nil {
			return 0, 0, fmt.Errorf("right pad: %w", err)
		}
		left += l
		right += r
	}
	return left, right, nil
}

// chargeCount runs one excitation cycle on a receive line: discharge, drive
// the send line high, count polls until the receive line reads high.
func (p *RealPads) chargeCount(recv *gpiocdev.Line) (int64, error) {
	if err := p.send.SetValue(0); err != nil {
		return 0, fmt.Errorf("discharge: %w", err)
	}
	// Drain the pad through the receive line's input impedance.
	for i := 0; i < chargeTimeout; i++ {
		v, err := recv.Value()
		if err != nil {
			return 0, fmt.Errorf("read during discharge: %w", err)
		}
		if v == 0 {
			break
		}
	}

	if err := p.send.SetValue(1); err != nil {
		return 0, fmt.Errorf("excite: %w", err)
	}

	var count int64
	for count < chargeTimeout {
		v, err := recv.Value()
		if err != nil {
			return 0, fmt.Errorf("read during charge: %w", err)
		}
		if v == 1 {
			break
		}
		count++
	}
	return count, nil
}

// Close releases the pad lines.
func (p *RealPads) Close() error {
	var errs []error
	for _, l := range []*gpiocdev.Line{p.send, p.left, p.right} {
		if l != nil {
			if err := l.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealOutputs drives the relays and LEDs on actual hardware.
type RealOutputs struct {
	chip   *gpiocdev.Chip
	relayA *gpiocdev.Line
	relayB *gpiocdev.Line
	ledL   *gpiocdev.Line
	ledR   *gpiocdev.Line
	ledJ   *gpiocdev.Line
}

// NewRealOutputs requests the relay and LED lines. The relays come up high
// (capacitive path) and the LEDs off, matching power-on state.
func NewRealOutputs(pinRelayA, pinRelayB, pinLEDLeft, pinLEDRight, pinLEDImp int) (*RealOutputs, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	o := &RealOutputs{chip: chip}
	lines := []struct {
		pin  int
		init int
		dst  **gpiocdev.Line
		name string
	}{
		{pinRelayA, 1, &o.relayA, "relay A"},
		{pinRelayB, 1, &o.relayB, "relay B"},
		{pinLEDLeft, 0, &o.ledL, "left LED"},
		{pinLEDRight, 0, &o.ledR, "right LED"},
		{pinLEDImp, 0, &o.ledJ, "impedance LED"},
	}
	for _, ln := range lines {
		l, err := chip.RequestLine(ln.pin, gpiocdev.AsOutput(ln.init))
		if err != nil {
			o.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", ln.name, ln.pin, err)
		}
		*ln.dst = l
	}
	return o, nil
}

// SetRelays drives both relay lines identically.
func (o *RealOutputs) SetRelays(capacitive bool) error {
	v := 0
	if capacitive {
		v = 1
	}
	if err := o.relayA.SetValue(v); err != nil {
		return fmt.Errorf("relay A: %w", err)
	}
	if err := o.relayB.SetValue(v); err != nil {
		return fmt.Errorf("relay B: %w", err)
	}
	return nil
}

// SetLEDs drives the three indicator LEDs.
func (o *RealOutputs) SetLEDs(left, right, joined bool) error {
	set := func(l *gpiocdev.Line, on bool, name string) error {
		v := 0
		if on {
			v = 1
		}
		if err := l.SetValue(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
	if err := set(o.ledL, left, "left LED"); err != nil {
		return err
	}
	if err := set(o.ledR, right, "right LED"); err != nil {
		return err
	}
	return set(o.ledJ, joined, "impedance LED")
}

// Close returns the relays to the capacitive path, turns the LEDs off, and
// releases the lines. Leaving the relays low would keep the impedance
// circuit live across a restart.
func (o *RealOutputs) Close() error {
	var errs []error
	if o.relayA != nil && o.relayB != nil {
		if err := o.SetRelays(true); err != nil {
			errs = append(errs, err)
		}
	}
	if o.ledL != nil && o.ledR != nil && o.ledJ != nil {
		if err := o.SetLEDs(false, false, false); err != nil {
			errs = append(errs, err)
		}
	}
	for _, l := range []*gpiocdev.Line{o.relayA, o.relayB, o.ledL, o.ledR, o.ledJ} {
		if l != nil {
			if err := l.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if o.chip != nil {
		if err := o.chip.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
