package rc433

import (
	"time"

	"rfctl/pkg/port"
)

// Timing of the pulse width encoding. Every bit occupies the full
// BitPeriod so the receiver's fixed rate sampling stays synchronized;
// only the high fraction carries the bit value.
const (
	// BitPeriod is the total duration of one bit on the line.
	BitPeriod = 720 * time.Microsecond
	// ZeroHighTime is the high fraction of a 0 bit.
	ZeroHighTime = 180 * time.Microsecond
	// OneHighTime is the high fraction of a 1 bit.
	OneHighTime = BitPeriod - ZeroHighTime
	// SettleDelay is the idle time after each frame, giving the
	// receiver time to decode and act.
	SettleDelay = 5000 * time.Microsecond
)

// Encoder drives one output line through bit encoded pulses.
type Encoder struct {
	line  port.Line
	clock port.Clock
}

// NewEncoder creates an encoder for the given line.
func NewEncoder(line port.Line, clock port.Clock) *Encoder {
	return &Encoder{line: line, clock: clock}
}

// TransmitBits sends a bit sequence and leaves the line low.
// The loop must not be preempted for more than a few microseconds or the
// duty cycle becomes ambiguous to the receiver, hence the spinning clock.
func (e *Encoder) TransmitBits(bits []bool) {
	for _, bit := range bits {
		high := ZeroHighTime
		if bit {
			high = OneHighTime
		}

		start := e.clock.Now()
		e.line.High()
		e.clock.SpinUntil(start.Add(high))
		e.line.Low()
		e.clock.SpinUntil(start.Add(BitPeriod))
	}
}
