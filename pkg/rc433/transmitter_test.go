package rc433

import (
	"errors"
	"testing"
	"time"

	"rfctl/pkg/port"
)

func newTestTransmitter(t *testing.T, retries int) (*Transmitter, *fakeLine, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Unix(0, 0)}
	line := &fakeLine{clock: clock}

	tx, err := open(line, retries, clock)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	return tx, line, clock
}

func TestOpen_InvalidRetryCount(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	line := &fakeLine{clock: clock}

	for _, retries := range []int{0, -1} {
		if _, err := open(line, retries, clock); !errors.Is(err, ErrInvalidRetryCount) {
			t.Errorf("open with retries %d = %v, want ErrInvalidRetryCount", retries, err)
		}
	}
}

func TestTransmit_RepeatsFrames(t *testing.T) {
	const retries = 3
	tx, line, clock := newTestTransmitter(t, retries)

	if err := tx.Transmit(21, 2, On); err != nil {
		t.Fatalf("Transmit failed: %v", err)
	}

	// one rising edge per bit, one full frame per retry
	if got, want := line.highs(), retries*FrameBits; got != want {
		t.Errorf("rising edges = %d, want %d", got, want)
	}

	// each frame is followed by the settle delay
	if len(clock.slept) != retries {
		t.Fatalf("settle delays = %d, want %d", len(clock.slept), retries)
	}
	for i, d := range clock.slept {
		if d != SettleDelay {
			t.Errorf("settle delay %d = %v, want %v", i, d, SettleDelay)
		}
	}

	if last := line.pulses[len(line.pulses)-1].level; last != port.Low {
		t.Errorf("line level after transmit = %v, want low", last)
	}
}

func TestTransmit_ValidatesBeforeIO(t *testing.T) {
	tx, line, _ := newTestTransmitter(t, 2)
	edges := len(line.pulses)

	if err := tx.Transmit(300, 1, On); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Transmit(300, ...) = %v, want ErrInvalidAddress", err)
	}
	if err := tx.Transmit(1, 9, On); !errors.Is(err, ErrInvalidUnit) {
		t.Errorf("Transmit(_, 9, ...) = %v, want ErrInvalidUnit", err)
	}

	if len(line.pulses) != edges {
		t.Errorf("validation errors touched the line: %d new level changes", len(line.pulses)-edges)
	}
}

func TestTransmitAll_RepeatsSquared(t *testing.T) {
	const retries = 2
	tx, line, clock := newTestTransmitter(t, retries)

	if err := tx.TransmitAll(Off); err != nil {
		t.Fatalf("TransmitAll failed: %v", err)
	}

	// the broadcast repeats the whole transmit, so retries² frames go out
	if got, want := line.highs(), retries*retries*FrameBits; got != want {
		t.Errorf("rising edges = %d, want %d", got, want)
	}
	if got, want := len(clock.slept), retries*retries; got != want {
		t.Errorf("settle delays = %d, want %d", got, want)
	}
}

func TestClose(t *testing.T) {
	tx, line, _ := newTestTransmitter(t, 1)

	if err := tx.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !line.closed {
		t.Error("Close didn't release the line")
	}

	// closing again is a no-op, never an error
	if err := tx.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}

	if err := tx.Transmit(1, 1, On); !errors.Is(err, ErrClosed) {
		t.Errorf("Transmit after Close = %v, want ErrClosed", err)
	}
	if err := tx.TransmitAll(On); !errors.Is(err, ErrClosed) {
		t.Errorf("TransmitAll after Close = %v, want ErrClosed", err)
	}
}
