// Command magic-hands runs the sensing core of the Magic Hands
// installation: it calibrates thresholds from the three pots, polls the
// active sensing circuit, and drives the relays, LEDs, serial channel, and
// status display.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldworks/magic-hands/internal/adc"
	"github.com/fieldworks/magic-hands/internal/display"
	"github.com/fieldworks/magic-hands/internal/gpio"
	"github.com/fieldworks/magic-hands/internal/serial"
	"github.com/fieldworks/magic-hands/internal/status"
	"github.com/fieldworks/magic-hands/internal/touch"
)

type loopConfig struct {
	calibrate time.Duration
	sense     time.Duration
	display   time.Duration
	debounce  time.Duration
	heartbeat time.Duration
	samples   int
}

func main() {
	tick := flag.Duration("tick", 10*time.Millisecond, "Base scheduler tick")
	calibrate := flag.Duration("calibrate", 25*time.Millisecond, "Threshold calibration interval")
	sense := flag.Duration("sense", 50*time.Millisecond, "Sensor check interval")
	displayIvl := flag.Duration("display", 200*time.Millisecond, "Display refresh interval (0 to disable)")
	debounce := flag.Duration("debounce", 500*time.Millisecond, "Mode-switch debounce window")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	samples := flag.Int("samples", gpio.DefaultSamples, "Excitation cycles per pad read")
	serialDev := flag.String("serial", serial.DefaultDevice, "Serial device for state codes")
	baud := flag.Int("baud", serial.DefaultBaud, "Serial baud rate")
	i2cBus := flag.String("i2c", "", "I2C bus name (empty for first available)")
	pinSend := flag.Int("pin-send", gpio.DefaultPinCapSend, "BCM pin for the capacitive send line")
	pinLeft := flag.Int("pin-left", gpio.DefaultPinCapLeft, "BCM pin for the left pad")
	pinRight := flag.Int("pin-right", gpio.DefaultPinCapRight, "BCM pin for the right pad")
	pinRelayA := flag.Int("pin-relay-a", gpio.DefaultPinRelayA, "BCM pin for relay A")
	pinRelayB := flag.Int("pin-relay-b", gpio.DefaultPinRelayB, "BCM pin for relay B")
	pinLEDLeft := flag.Int("pin-led-left", gpio.DefaultPinLEDLeft, "BCM pin for the left LED")
	pinLEDRight := flag.Int("pin-led-right", gpio.DefaultPinLEDRight, "BCM pin for the right LED")
	pinLEDImp := flag.Int("pin-led-imp", gpio.DefaultPinLEDImpedance, "BCM pin for the impedance LED")
	printState := flag.Bool("print-state", false, "Read the sensors once, print raw values, and exit")

	flag.Parse()

	cfg := loopConfig{
		calibrate: *calibrate,
		sense:     *sense,
		display:   *displayIvl,
		debounce:  *debounce,
		heartbeat: *heartbeat,
		samples:   *samples,
	}

	pins := pinConfig{
		send: *pinSend, left: *pinLeft, right: *pinRight,
		relayA: *pinRelayA, relayB: *pinRelayB,
		ledLeft: *pinLEDLeft, ledRight: *pinLEDRight, ledImp: *pinLEDImp,
	}

	if err := run(cfg, pins, *tick, *serialDev, *baud, *i2cBus, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

type pinConfig struct {
	send, left, right         int
	relayA, relayB            int
	ledLeft, ledRight, ledImp int
}

func run(cfg loopConfig, pins pinConfig, tick time.Duration, serialDev string, baud int, i2cBus string, printState bool) error {
	pads, err := gpio.NewRealPads(pins.send, pins.left, pins.right)
	if err != nil {
		return fmt.Errorf("init pads: %w", err)
	}
	defer pads.Close()

	analog, err := adc.NewRealReader(i2cBus)
	if err != nil {
		return fmt.Errorf("init adc: %w", err)
	}
	defer analog.Close()

	if printState {
		return printStateOnce(pads, analog, cfg.samples)
	}

	outputs, err := gpio.NewRealOutputs(pins.relayA, pins.relayB, pins.ledLeft, pins.ledRight, pins.ledImp)
	if err != nil {
		return fmt.Errorf("init outputs: %w", err)
	}
	defer outputs.Close()

	reporter, err := serial.NewRealReporter(serialDev, baud)
	if err != nil {
		return fmt.Errorf("init serial: %w", err)
	}
	defer reporter.Close()

	// The installation runs headless if the status panel is missing.
	var renderer display.Renderer
	if cfg.display > 0 {
		oled, err := display.NewOLED(i2cBus)
		if err != nil {
			log.Printf("display unavailable, continuing without it: %v", err)
		} else {
			renderer = oled
			defer oled.Close()
		}
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		CalibrateMs:  cfg.calibrate.Milliseconds(),
		SenseMs:      cfg.sense.Milliseconds(),
		DisplayMs:    cfg.display.Milliseconds(),
		DebounceMs:   cfg.debounce.Milliseconds(),
		HeartbeatMs:  cfg.heartbeat.Milliseconds(),
		SerialDevice: serialDev,
		I2CBus:       i2cBus,
	})

	if err := reporter.ReportSystem(serial.SystemEvent{
		Timestamp: time.Now(),
		Event:     "STARTUP",
		Detail:    serial.Banner,
	}); err != nil {
		log.Printf("failed to report startup: %v", err)
	}

	log.Printf("started: calibrate=%v sense=%v display=%v debounce=%v serial=%s",
		cfg.calibrate, cfg.sense, cfg.display, cfg.debounce, serialDev)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(pads, analog, outputs, reporter, renderer, tracker, cfg, time.Now, ticker.C, sigCh)
}

func runLoop(pads gpio.Pads, analog adc.Reader, outputs gpio.Outputs, reporter serial.Reporter, renderer display.Renderer, tracker *status.Tracker, cfg loopConfig, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	start := now()
	ctrl := touch.NewController(cfg.debounce, cfg.debounce, start)

	lastCalibrate := start
	lastSense := start
	lastDisplay := start

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if err := reporter.ReportSystem(serial.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
			}); err != nil {
				log.Printf("failed to report shutdown: %v", err)
			}
			return nil

		case <-tick:
			// One clock read per pass: every debounce decision below sees
			// the same now.
			t := now()

			if t.Sub(lastCalibrate) >= cfg.calibrate {
				lastCalibrate = t
				calibrateTick(ctrl, analog)
			}

			if t.Sub(lastSense) >= cfg.sense {
				lastSense = t
				senseTick(ctrl, pads, analog, outputs, reporter, tracker, cfg, t)

				if hb := ctrl.CheckHeartbeat(t, cfg.heartbeat); hb != nil {
					log.Printf("heartbeat: %s", serial.HeartbeatDetail(*hb))
					if err := reporter.ReportSystem(serial.SystemEvent{
						Timestamp: hb.Timestamp,
						Event:     "HEARTBEAT",
						Detail:    serial.HeartbeatDetail(*hb),
					}); err != nil {
						log.Printf("heartbeat report error: %v", err)
					}
				}
			}

			if renderer != nil && cfg.display > 0 && t.Sub(lastDisplay) >= cfg.display {
				lastDisplay = t
				if err := renderer.Render(display.BuildRows(tracker.Snapshot())); err != nil {
					log.Printf("display render error: %v", err)
				}
			}
		}
	}
}

// calibrateTick reads the three pots and folds them into the rolling
// buffers. A failed read skips the tick; thresholds keep their last value.
func calibrateTick(ctrl *touch.Controller, analog adc.Reader) {
	potL, err := analog.Read(adc.ChannelPotLeft)
	if err != nil {
		log.Printf("pot read error: %v", err)
		return
	}
	potR, err := analog.Read(adc.ChannelPotRight)
	if err != nil {
		log.Printf("pot read error: %v", err)
		return
	}
	potI, err := analog.Read(adc.ChannelPotImpedance)
	if err != nil {
		log.Printf("pot read error: %v", err)
		return
	}
	ctrl.TickCalibrate(touch.PotSample{CapLeft: potL, CapRight: potR, Impedance: potI})
}

// senseTick reads the active circuit, runs the check, and executes the
// resulting effects. Sink errors are logged and absorbed.
func senseTick(ctrl *touch.Controller, pads gpio.Pads, analog adc.Reader, outputs gpio.Outputs, reporter serial.Reporter, tracker *status.Tracker, cfg loopConfig, t time.Time) {
	reading := touch.Reading{Time: t}

	switch ctrl.Mode() {
	case touch.ModeCapacitive:
		left, right, err := pads.ReadPair(cfg.samples)
		if err != nil {
			log.Printf("pad read error: %v", err)
			return
		}
		reading.CapLeft, reading.CapRight = left, right
		tracker.SetCapReading(left, right)
	case touch.ModeImpedance:
		v, err := analog.Read(adc.ChannelImpedance)
		if err != nil {
			log.Printf("impedance read error: %v", err)
			return
		}
		reading.Impedance = v
		tracker.SetImpedanceReading(v)
	}

	fx := ctrl.TickSense(reading)

	if fx.ModeChanged {
		log.Printf("mode: %s", fx.Mode)
		if err := outputs.SetRelays(fx.Mode == touch.ModeCapacitive); err != nil {
			log.Printf("relay error: %v", err)
		}
	}

	if fx.StateChanged {
		log.Printf("state: %s", fx.State)
		if err := reporter.ReportState(serial.StateChange{Timestamp: t, State: fx.State}); err != nil {
			log.Printf("report error: %v", err)
		}
		l, r, j := touch.LEDPattern(fx.State)
		if err := outputs.SetLEDs(l, r, j); err != nil {
			log.Printf("led error: %v", err)
		}
	}

	tracker.Update(ctrl.Mode(), ctrl.State(), ctrl.Thresholds(), ctrl.CountsSnapshot())
}

// printStateOnce reads every input once and prints the raw values.
func printStateOnce(pads gpio.Pads, analog adc.Reader, samples int) error {
	left, right, err := pads.ReadPair(samples)
	if err != nil {
		return fmt.Errorf("read pads: %w", err)
	}
	imp, err := analog.Read(adc.ChannelImpedance)
	if err != nil {
		return fmt.Errorf("read impedance: %w", err)
	}
	potL, err := analog.Read(adc.ChannelPotLeft)
	if err != nil {
		return fmt.Errorf("read left pot: %w", err)
	}
	potR, err := analog.Read(adc.ChannelPotRight)
	if err != nil {
		return fmt.Errorf("read right pot: %w", err)
	}
	potI, err := analog.Read(adc.ChannelPotImpedance)
	if err != nil {
		return fmt.Errorf("read impedance pot: %w", err)
	}

	fmt.Printf("cap L: %d, cap R: %d, impedance: %d\n", left, right, imp)
	fmt.Printf("pots: L=%d R=%d I=%d\n", potL, potR, potI)
	return nil
}
