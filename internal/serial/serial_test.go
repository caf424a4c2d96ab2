package serial

import (
	"testing"
	"time"

	"github.com/fieldworks/magic-hands/internal/touch"
)

func TestCode(t *testing.T) {
	tests := []struct {
		state touch.State
		want  string
	}{
		{touch.StateIdle, "[000]"},
		{touch.StateLeft, "[100]"},
		{touch.StateRight, "[010]"},
		{touch.StateBoth, "[110]"},
		{touch.StateJoined, "[001]"},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := Code(tt.state); got != tt.want {
				t.Errorf("Code(%s) = %q, want %q", tt.state, got, tt.want)
			}
		})
	}
}

func TestFormatStateLine(t *testing.T) {
	change := StateChange{
		Timestamp: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		State:     touch.StateLeft,
	}
	if got := string(FormatStateLine(change)); got != "[100]\r\n" {
		t.Errorf("unexpected state line %q", got)
	}
}

func TestFormatSystemLine(t *testing.T) {
	tests := []struct {
		name  string
		event SystemEvent
		want  string
	}{
		{
			"startup banner",
			SystemEvent{Event: "STARTUP", Detail: Banner},
			"# STARTUP " + Banner + "\r\n",
		},
		{
			"shutdown with signal",
			SystemEvent{Event: "SHUTDOWN", Reason: "SIGTERM"},
			"# SHUTDOWN SIGTERM\r\n",
		},
		{
			"bare event",
			SystemEvent{Event: "HEARTBEAT"},
			"# HEARTBEAT\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(FormatSystemLine(tt.event)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeartbeatDetail(t *testing.T) {
	hb := touch.HeartbeatData{
		Uptime: 90 * time.Second,
		Counts: touch.StateCounts{Left: 3, Right: 2, Both: 1, Joined: 1},
	}
	want := "uptime=1m30s left=3 right=2 both=1 joined=1"
	if got := HeartbeatDetail(hb); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFakeReporterRecords(t *testing.T) {
	f := NewFakeReporter()

	change := StateChange{State: touch.StateJoined}
	if err := f.ReportState(change); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.StateChanges) != 1 || f.StateChanges[0].State != touch.StateJoined {
		t.Errorf("state change not recorded: %+v", f.StateChanges)
	}
	if f.StateLines[0] != "[001]\r\n" {
		t.Errorf("unexpected rendered line %q", f.StateLines[0])
	}

	if err := f.ReportSystem(SystemEvent{Event: "STARTUP"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.SystemEvents) != 1 {
		t.Errorf("system event not recorded")
	}

	f.Reset()
	if len(f.StateChanges) != 0 || len(f.SystemEvents) != 0 {
		t.Error("Reset did not clear recordings")
	}
}
