package display

// FakeRenderer records rendered screens for test assertions.
type FakeRenderer struct {
	// Screens contains every rendered screen, oldest first.
	Screens []Rows

	// RenderError, if set, will be returned by Render.
	RenderError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeRenderer creates a FakeRenderer for testing.
func NewFakeRenderer() *FakeRenderer {
	return &FakeRenderer{}
}

// Render records the screen.
func (f *FakeRenderer) Render(rows Rows) error {
	if f.RenderError != nil {
		return f.RenderError
	}
	f.Screens = append(f.Screens, rows)
	return nil
}

// Last returns the most recently rendered screen, or zero Rows if none.
func (f *FakeRenderer) Last() Rows {
	if len(f.Screens) == 0 {
		return Rows{}
	}
	return f.Screens[len(f.Screens)-1]
}

// Close marks the renderer as closed.
func (f *FakeRenderer) Close() error {
	f.Closed = true
	return nil
}
