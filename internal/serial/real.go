package serial

import (
	"fmt"

	bserial "go.bug.st/serial"
)

// bufferCapacity bounds how many lines are held while the port is down.
const bufferCapacity = 64

// RealReporter writes to an actual serial port.
type RealReporter struct {
	device string
	mode   *bserial.Mode
	port   bserial.Port
	buffer *ringBuffer
	open   func() (bserial.Port, error)
}

// NewRealReporter opens the serial device at the given baud rate.
func NewRealReporter(device string, baud int) (*RealReporter, error) {
	mode := &bserial.Mode{BaudRate: baud}
	port, err := bserial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}

	return &RealReporter{
		device: device,
		mode:   mode,
		port:   port,
		buffer: newRingBuffer(bufferCapacity),
		open: func() (bserial.Port, error) {
			return bserial.Open(device, mode)
		},
	}, nil
}

// ReportState sends the state-code line for a transition.
func (r *RealReporter) ReportState(change StateChange) error {
	return r.writeLine(FormatStateLine(change))
}

// ReportSystem sends a system lifecycle line.
func (r *RealReporter) ReportSystem(event SystemEvent) error {
	return r.writeLine(FormatSystemLine(event))
}

// writeLine writes one line, buffering it and trying to reopen the port on
// failure. Buffered lines are replayed in order once a write succeeds
// again.
func (r *RealReporter) writeLine(line []byte) error {
	if r.port == nil {
		if err := r.reopen(); err != nil {
			r.buffer.push(line)
			return fmt.Errorf("port unavailable, buffered (%d pending): %w", r.buffer.len(), err)
		}
	}

	pending := r.buffer.drainAll()
	for i, buffered := range pending {
		if _, err := r.port.Write(buffered); err != nil {
			// Put back everything that has not gone out yet, oldest first,
			// then queue the current line behind it.
			for _, remaining := range pending[i:] {
				r.buffer.push(remaining)
			}
			r.buffer.push(line)
			r.dropPort()
			return fmt.Errorf("write buffered line: %w", err)
		}
	}

	if _, err := r.port.Write(line); err != nil {
		r.buffer.push(line)
		r.dropPort()
		return fmt.Errorf("write serial line: %w", err)
	}
	return nil
}

func (r *RealReporter) reopen() error {
	port, err := r.open()
	if err != nil {
		return err
	}
	r.port = port
	return nil
}

func (r *RealReporter) dropPort() {
	if r.port != nil {
		r.port.Close()
		r.port = nil
	}
}

// Close releases the port.
func (r *RealReporter) Close() error {
	if r.port == nil {
		return nil
	}
	if err := r.port.Close(); err != nil {
		return fmt.Errorf("close serial port: %w", err)
	}
	r.port = nil
	return nil
}
