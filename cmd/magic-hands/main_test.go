package main

import (
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/fieldworks/magic-hands/internal/adc"
	"github.com/fieldworks/magic-hands/internal/display"
	"github.com/fieldworks/magic-hands/internal/gpio"
	"github.com/fieldworks/magic-hands/internal/serial"
	"github.com/fieldworks/magic-hands/internal/status"
	"github.com/fieldworks/magic-hands/internal/touch"
)

// fakeClock returns a function that yields start, start+step, start+2*step,
// ... on successive calls. Not safe for concurrent use (only called from
// runLoop's goroutine).
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

// scriptADC is an adc.Reader with fixed pot values and a scripted impedance
// channel. Only called from runLoop's goroutine.
type scriptADC struct {
	potLeft, potRight, potImp int
	impedance                 []int
	impIndex                  int
}

func (s *scriptADC) Read(ch adc.Channel) (int, error) {
	switch ch {
	case adc.ChannelPotLeft:
		return s.potLeft, nil
	case adc.ChannelPotRight:
		return s.potRight, nil
	case adc.ChannelPotImpedance:
		return s.potImp, nil
	case adc.ChannelImpedance:
		if len(s.impedance) == 0 {
			return 0, errors.New("no impedance script")
		}
		v := s.impedance[s.impIndex]
		if s.impIndex < len(s.impedance)-1 {
			s.impIndex++
		}
		return v, nil
	}
	return 0, errors.New("unknown channel")
}

func (s *scriptADC) Close() error { return nil }

// faultPads wraps FakePads and returns errors for a range of ReadPair
// calls. The fault range is fixed at construction.
type faultPads struct {
	inner      *gpio.FakePads
	call       int
	faultStart int // first call index that returns error (inclusive)
	faultEnd   int // last call index that returns error (exclusive)
}

func (p *faultPads) ReadPair(samples int) (int64, int64, error) {
	i := p.call
	p.call++
	if i >= p.faultStart && i < p.faultEnd {
		return 0, 0, errors.New("pad fault")
	}
	return p.inner.ReadPair(samples)
}

func (p *faultPads) Close() error { return p.inner.Close() }

// repeat returns n copies of sample.
func repeat(sample gpio.PadSample, n int) []gpio.PadSample {
	out := make([]gpio.PadSample, n)
	for i := range out {
		out[i] = sample
	}
	return out
}

// testConfig runs calibration and sensing on every tick (step 50ms) with a
// shortened 100ms debounce so mode switches land within a few ticks.
func testConfig() loopConfig {
	return loopConfig{
		calibrate: 25 * time.Millisecond,
		sense:     50 * time.Millisecond,
		display:   0,
		debounce:  100 * time.Millisecond,
		samples:   gpio.DefaultSamples,
	}
}

// runRunLoop drives runLoop for nTicks, then delivers the signal and waits
// for it to return.
func runRunLoop(t *testing.T, pads gpio.Pads, analog adc.Reader, outputs *gpio.FakeOutputs, rep *serial.FakeReporter, renderer display.Renderer, tracker *status.Tracker, cfg loopConfig, clock func() time.Time, nTicks int, signal os.Signal) error {
	t.Helper()
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(pads, analog, outputs, rep, renderer, tracker, cfg, clock, tick, sig)
	}()

	for i := 0; i < nTicks; i++ {
		tick <- time.Time{}
	}
	sig <- signal

	return <-errCh
}

func newTestTracker() *status.Tracker {
	return status.NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), status.Config{})
}

func TestRunLoopReportsLeftTouch(t *testing.T) {
	// Two idle reads, then a left touch. Pot 100 keeps the cap thresholds
	// far below the touched count.
	pads := gpio.NewFakePads(append(
		repeat(gpio.PadSample{}, 2),
		repeat(gpio.PadSample{Left: 5000}, 3)...,
	))
	analog := &scriptADC{potLeft: 100, potRight: 100, potImp: 100}
	outputs := gpio.NewFakeOutputs()
	rep := serial.NewFakeReporter()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 50*time.Millisecond)

	err := runRunLoop(t, pads, analog, outputs, rep, nil, newTestTracker(), testConfig(), clock, 5, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(rep.StateChanges) != 1 {
		t.Fatalf("expected 1 state change, got %d: %v", len(rep.StateChanges), rep.StateLines)
	}
	if rep.StateLines[0] != "[100]\r\n" {
		t.Errorf("expected left code, got %q", rep.StateLines[0])
	}
	if !outputs.Left || outputs.Right || outputs.Joined {
		t.Errorf("expected left LED only, got %v %v %v", outputs.Left, outputs.Right, outputs.Joined)
	}
	if len(outputs.RelayHistory) != 0 {
		t.Errorf("expected no relay writes without a mode switch, got %v", outputs.RelayHistory)
	}

	last := rep.SystemEvents[len(rep.SystemEvents)-1]
	if last.Event != "SHUTDOWN" || last.Reason != "SIGTERM" {
		t.Errorf("expected SHUTDOWN SIGTERM, got %+v", last)
	}
}

func TestRunLoopHeldBothSwitchesRelays(t *testing.T) {
	// Both pads held: BOTH at t=50ms, mode switch once the 100ms window
	// elapses at t=100ms, impedance misses until the window expires and
	// the mode reverts at t=200ms.
	pads := gpio.NewFakePads(repeat(gpio.PadSample{Left: 5000, Right: 5000}, 1))
	analog := &scriptADC{potLeft: 100, potRight: 100, potImp: 100, impedance: []int{900}}
	outputs := gpio.NewFakeOutputs()
	rep := serial.NewFakeReporter()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 50*time.Millisecond)

	err := runRunLoop(t, pads, analog, outputs, rep, nil, newTestTracker(), testConfig(), clock, 4, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if rep.StateLines[0] != "[110]\r\n" {
		t.Errorf("expected both code first, got %q", rep.StateLines[0])
	}
	if len(outputs.RelayHistory) < 2 {
		t.Fatalf("expected switch and revert, got %v", outputs.RelayHistory)
	}
	if outputs.RelayHistory[0] != false {
		t.Error("expected first relay write to select the impedance path")
	}
	if outputs.RelayHistory[1] != true {
		t.Error("expected revert to the capacitive path")
	}
}

func TestRunLoopReportsJoin(t *testing.T) {
	pads := gpio.NewFakePads(repeat(gpio.PadSample{Left: 5000, Right: 5000}, 1))
	analog := &scriptADC{potLeft: 100, potRight: 100, potImp: 200, impedance: []int{50}}
	outputs := gpio.NewFakeOutputs()
	rep := serial.NewFakeReporter()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 50*time.Millisecond)

	err := runRunLoop(t, pads, analog, outputs, rep, nil, newTestTracker(), testConfig(), clock, 3, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	// BOTH at t=50ms, mode switch at t=100ms, JOINED on the first
	// impedance read at t=150ms.
	want := []string{"[110]\r\n", "[001]\r\n"}
	if len(rep.StateLines) != len(want) {
		t.Fatalf("expected %d state lines, got %v", len(want), rep.StateLines)
	}
	for i, w := range want {
		if rep.StateLines[i] != w {
			t.Errorf("line %d: expected %q, got %q", i, w, rep.StateLines[i])
		}
	}
	if !outputs.Joined || outputs.Left || outputs.Right {
		t.Errorf("expected joined LED only, got %v %v %v", outputs.Left, outputs.Right, outputs.Joined)
	}
}

func TestRunLoopPadErrorContinues(t *testing.T) {
	inner := gpio.NewFakePads(repeat(gpio.PadSample{}, 2))
	pads := &faultPads{inner: inner, faultStart: 1, faultEnd: 3}
	analog := &scriptADC{potLeft: 100, potRight: 100, potImp: 100}
	outputs := gpio.NewFakeOutputs()
	rep := serial.NewFakeReporter()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 50*time.Millisecond)

	err := runRunLoop(t, pads, analog, outputs, rep, nil, newTestTracker(), testConfig(), clock, 5, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop must survive pad faults, got: %v", err)
	}

	last := rep.SystemEvents[len(rep.SystemEvents)-1]
	if last.Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN after faults, got %+v", last)
	}
}

func TestRunLoopCalibrationTracksPots(t *testing.T) {
	pads := gpio.NewFakePads(repeat(gpio.PadSample{}, 1))
	analog := &scriptADC{potLeft: 1023, potRight: 0, potImp: 500}
	outputs := gpio.NewFakeOutputs()
	rep := serial.NewFakeReporter()
	tracker := newTestTracker()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 50*time.Millisecond)

	// More ticks than the buffer holds, so the low startup bias has been
	// fully overwritten.
	err := runRunLoop(t, pads, analog, outputs, rep, nil, tracker, testConfig(), clock, touch.BufferSize+5, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	th := tracker.Snapshot().Thresholds
	if th.CapLeft != touch.CapSensitivityMax {
		t.Errorf("expected left threshold %d, got %d", touch.CapSensitivityMax, th.CapLeft)
	}
	if th.CapRight != 0 {
		t.Errorf("expected right threshold 0, got %d", th.CapRight)
	}
	if th.Impedance != 500 {
		t.Errorf("expected impedance threshold 500, got %d", th.Impedance)
	}
}

func TestRunLoopDisplayCadence(t *testing.T) {
	pads := gpio.NewFakePads(repeat(gpio.PadSample{Left: 5000}, 1))
	analog := &scriptADC{potLeft: 100, potRight: 100, potImp: 100}
	outputs := gpio.NewFakeOutputs()
	rep := serial.NewFakeReporter()
	renderer := display.NewFakeRenderer()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 50*time.Millisecond)

	cfg := testConfig()
	cfg.display = 200 * time.Millisecond

	// Ticks land at 50..400ms; refreshes at 200ms and 400ms.
	err := runRunLoop(t, pads, analog, outputs, rep, renderer, newTestTracker(), cfg, clock, 8, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(renderer.Screens) != 2 {
		t.Fatalf("expected 2 display refreshes, got %d", len(renderer.Screens))
	}
	if !strings.Contains(renderer.Last()[3], "LEFT") {
		t.Errorf("expected LEFT on the mode/state row, got %q", renderer.Last()[3])
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	pads := gpio.NewFakePads(repeat(gpio.PadSample{}, 1))
	analog := &scriptADC{potLeft: 100, potRight: 100, potImp: 100}
	outputs := gpio.NewFakeOutputs()
	rep := serial.NewFakeReporter()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 50*time.Millisecond)

	cfg := testConfig()
	cfg.heartbeat = 150 * time.Millisecond

	err := runRunLoop(t, pads, analog, outputs, rep, nil, newTestTracker(), cfg, clock, 6, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	var heartbeats int
	for _, e := range rep.SystemEvents {
		if e.Event == "HEARTBEAT" {
			heartbeats++
			if !strings.Contains(e.Detail, "uptime=") {
				t.Errorf("expected uptime in heartbeat detail, got %q", e.Detail)
			}
		}
	}
	if heartbeats != 2 {
		t.Errorf("expected 2 heartbeats over 300ms, got %d", heartbeats)
	}
}

func TestRunLoopShutdownOnSIGINT(t *testing.T) {
	pads := gpio.NewFakePads(repeat(gpio.PadSample{}, 1))
	analog := &scriptADC{potLeft: 100, potRight: 100, potImp: 100}
	outputs := gpio.NewFakeOutputs()
	rep := serial.NewFakeReporter()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 50*time.Millisecond)

	err := runRunLoop(t, pads, analog, outputs, rep, nil, newTestTracker(), testConfig(), clock, 1, syscall.SIGINT)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	last := rep.SystemEvents[len(rep.SystemEvents)-1]
	if last.Event != "SHUTDOWN" || last.Reason != "SIGINT" {
		t.Errorf("expected SHUTDOWN SIGINT, got %+v", last)
	}
}
