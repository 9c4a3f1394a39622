package port

import "time"

// Clock is the wait primitive of the bit timing loops.
// The pulse-width encoding needs microsecond accuracy, which time.Sleep
// alone can't deliver on a non-realtime kernel. Any substitute for
// SystemClock (e.g. a hardware timer) must keep deadlines within ±20µs.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// SpinUntil blocks until the deadline has passed.
	SpinUntil(deadline time.Time)
	// Sleep pauses for at least the given duration.
	// Used for the millisecond delays where accuracy doesn't matter.
	Sleep(d time.Duration)
}

// SystemClock busy-waits on the monotonic system clock.
// Spinning burns a core for the duration of a frame (~18ms per
// transmission), the same trade-off the original transmitter makes.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// SpinUntil spins until the deadline has passed.
func (SystemClock) SpinUntil(deadline time.Time) {
	for time.Now().Before(deadline) {
	}
}

// Sleep pauses for at least the given duration.
func (SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
