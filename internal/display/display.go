// Package display renders the status rows to the installation's little
// monitor: calibrated thresholds, raw values, per-channel activity, and
// the current mode and state. The real implementation drives an SSD1306
// OLED via periph.io; the fake records rows for tests.
package display

import (
	"fmt"

	"github.com/fieldworks/magic-hands/internal/status"
	"github.com/fieldworks/magic-hands/internal/touch"
)

// Rows is one full screen of text, top to bottom.
type Rows [4]string

// Renderer draws a screen of rows.
type Renderer interface {
	// Render replaces the screen contents.
	Render(rows Rows) error

	// Close releases the device.
	Close() error
}

// NA is shown for channels the active sensing mode is not reading.
const NA = "NA"

// BuildRows formats a status snapshot into screen rows.
func BuildRows(snap status.Snapshot) Rows {
	var rows Rows

	th := snap.Thresholds
	rows[0] = fmt.Sprintf("THR %5d %5d %4d", th.CapLeft, th.CapRight, th.Impedance)

	switch snap.Mode {
	case touch.ModeImpedance:
		rows[1] = fmt.Sprintf("RAW %5s %5s %4d", NA, NA, snap.Impedance)
	default:
		rows[1] = fmt.Sprintf("RAW %5s %5s %4s", fmtCount(snap.CapLeft), fmtCount(snap.CapRight), NA)
	}

	l, r, j := touch.LEDPattern(snap.State)
	rows[2] = fmt.Sprintf("ACT L[%s] R[%s] J[%s]", mark(l), mark(r), mark(j))

	rows[3] = fmt.Sprintf("%s %s", snap.Mode, snap.State)
	return rows
}

// fmtCount fits a pad count into five columns.
func fmtCount(v int64) string {
	if v > 99999 {
		return "99999"
	}
	return fmt.Sprintf("%d", v)
}

func mark(on bool) string {
	if on {
		return "*"
	}
	return " "
}
