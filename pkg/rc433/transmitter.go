package rc433

import (
	"errors"
	"fmt"

	"rfctl/pkg/port"

	"github.com/womat/debug"
)

var (
	// ErrClosed is returned for operations on a closed transmitter.
	ErrClosed = errors.New("transmitter has been closed")
	// ErrInvalidRetryCount is returned if the repeat count is not > 0.
	ErrInvalidRetryCount = errors.New("retries value is not > 0")
)

// DefaultRetries is the number of copies of each command on the air.
// The protocol is unidirectional and lossy, repetition is the only
// reliability mechanism. Might be increased in noisy environments.
const DefaultRetries = 6

// Transmitter owns one output line wired to a 433 MHz sender.
// A transmitter must be used by one goroutine at a time; concurrent
// transmissions on the same line would interleave bit timings.
type Transmitter struct {
	encoder *Encoder
	line    port.Line
	clock   port.Clock
	retries int
	closed  bool
}

// Open binds a transmitter to the given output line.
// The line is left low, ready for the first frame.
func Open(line port.Line, retries int) (*Transmitter, error) {
	return open(line, retries, port.SystemClock{})
}

func open(line port.Line, retries int, clock port.Clock) (*Transmitter, error) {
	if retries < 1 {
		return nil, fmt.Errorf("retries %d: %w", retries, ErrInvalidRetryCount)
	}

	line.Low()
	return &Transmitter{
		encoder: NewEncoder(line, clock),
		line:    line,
		clock:   clock,
		retries: retries,
	}, nil
}

// Transmit sends the command for (address, unit, action).
// The frame is validated and built before the line is touched, then sent
// retries times with a settle delay after each copy.
func (t *Transmitter) Transmit(address, unit int, action Action) error {
	if t.closed {
		return ErrClosed
	}

	frame, err := BuildFrame(address, unit, action)
	if err != nil {
		return err
	}
	debug.DebugLog.Printf("transmit addr %d unit %d %v: %v", address, unit, action, frame)

	for i := 0; i < t.retries; i++ {
		t.encoder.TransmitBits(frame)
		t.clock.Sleep(SettleDelay)
	}
	return nil
}

// TransmitAll sends the command to the reserved all devices address,
// itself repeated retries times for extra robustness of the broadcast.
func (t *Transmitter) TransmitAll(action Action) error {
	if t.closed {
		return ErrClosed
	}

	for i := 0; i < t.retries; i++ {
		if err := t.Transmit(AllAddress, AllUnit, action); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the line and marks the transmitter closed.
// Closing an already closed transmitter is a no-op.
func (t *Transmitter) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return t.line.Close()
}
