// Package serial publishes output-state codes and system lines over the
// installation's serial channel, with abstraction for testing.
package serial

import (
	"fmt"
	"time"

	"github.com/fieldworks/magic-hands/internal/touch"
)

// DefaultDevice is the serial device the installation wires up.
const DefaultDevice = "/dev/ttyAMA0"

// DefaultBaud matches the sketch on the other end of the cable.
const DefaultBaud = 9600

// Banner is printed once at startup.
const Banner = "Magic Hands setup complete"

// Reporter writes state changes and system lines to the serial channel.
type Reporter interface {
	// ReportState sends the 3-bit code for an output-state change.
	// Returns error if the write fails (must not crash the process).
	ReportState(change StateChange) error

	// ReportSystem sends a system lifecycle line.
	ReportSystem(event SystemEvent) error

	// Close releases the port.
	Close() error
}

// StateChange represents one output-state transition to be reported.
type StateChange struct {
	Timestamp time.Time
	State     touch.State
}

// SystemEvent represents a system lifecycle line (startup, shutdown,
// heartbeat).
type SystemEvent struct {
	Timestamp time.Time
	Event     string // e.g. "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason    string // e.g. "SIGTERM" (shutdown only)
	Detail    string // free-form, e.g. heartbeat counts
}

// Code maps an output state to its fixed 3-bit textual code. The bits are
// left pad, right pad, joined.
func Code(s touch.State) string {
	switch s {
	case touch.StateLeft:
		return "[100]"
	case touch.StateRight:
		return "[010]"
	case touch.StateBoth:
		return "[110]"
	case touch.StateJoined:
		return "[001]"
	default:
		return "[000]"
	}
}

// FormatStateLine renders the serial line for a state change.
func FormatStateLine(change StateChange) []byte {
	return []byte(Code(change.State) + "\r\n")
}

// FormatSystemLine renders the serial line for a system event. System
// lines are prefixed so the far end can tell them from state codes.
func FormatSystemLine(event SystemEvent) []byte {
	line := "# " + event.Event
	if event.Reason != "" {
		line += " " + event.Reason
	}
	if event.Detail != "" {
		line += " " + event.Detail
	}
	return []byte(line + "\r\n")
}

// HeartbeatDetail renders heartbeat data for a system line.
func HeartbeatDetail(hb touch.HeartbeatData) string {
	return fmt.Sprintf("uptime=%v left=%d right=%d both=%d joined=%d",
		hb.Uptime.Truncate(time.Second),
		hb.Counts.Left, hb.Counts.Right, hb.Counts.Both, hb.Counts.Joined)
}
