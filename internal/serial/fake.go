package serial

// FakeReporter records reported lines for test assertions.
type FakeReporter struct {
	// StateChanges contains all state changes that were reported.
	StateChanges []StateChange

	// StateLines contains the rendered lines for state changes.
	StateLines []string

	// SystemEvents contains all system events that were reported.
	SystemEvents []SystemEvent

	// SystemLines contains the rendered lines for system events.
	SystemLines []string

	// StateError, if set, will be returned by ReportState.
	StateError error

	// SystemError, if set, will be returned by ReportSystem.
	SystemError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeReporter creates a FakeReporter for testing.
func NewFakeReporter() *FakeReporter {
	return &FakeReporter{}
}

// ReportState records the state change.
func (f *FakeReporter) ReportState(change StateChange) error {
	if f.StateError != nil {
		return f.StateError
	}
	f.StateChanges = append(f.StateChanges, change)
	f.StateLines = append(f.StateLines, string(FormatStateLine(change)))
	return nil
}

// ReportSystem records the system event.
func (f *FakeReporter) ReportSystem(event SystemEvent) error {
	if f.SystemError != nil {
		return f.SystemError
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemLines = append(f.SystemLines, string(FormatSystemLine(event)))
	return nil
}

// Close marks the reporter as closed.
func (f *FakeReporter) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded lines.
func (f *FakeReporter) Reset() {
	f.StateChanges = nil
	f.StateLines = nil
	f.SystemEvents = nil
	f.SystemLines = nil
	f.StateError = nil
	f.SystemError = nil
	f.Closed = false
}
