//go:build windows
// +build windows

package raspberry

import (
	"rfctl/pkg/port"
)

// WinPin emulates an output pin, only for testing in windows mode.
type WinPin struct {
	boardPin int
	state    port.StateType
	chip     *WinGPIO
}

// WinGPIO emulates the gpio memory handler.
type WinGPIO struct {
	pins map[int]*WinPin
}

// Open emulates mapping the GPIO memory range.
func Open() (*WinGPIO, error) {
	return &WinGPIO{pins: map[int]*WinPin{}}, nil
}

// Close releases the emulated gpio memory.
func (c *WinGPIO) Close() error {
	return nil
}

// NewPin requests an emulated physical pin as output line, driven low.
func (c *WinGPIO) NewPin(boardPin int) (port.Line, error) {
	if _, err := BCM(boardPin); err != nil {
		return nil, err
	}
	if _, ok := c.pins[boardPin]; ok {
		return nil, ErrPinInUse
	}

	p := &WinPin{boardPin: boardPin, state: port.Low, chip: c}
	c.pins[boardPin] = p
	return p, nil
}

// High drives the emulated pin to the high level.
func (p *WinPin) High() {
	p.state = port.High
}

// Low drives the emulated pin to the low level.
func (p *WinPin) Low() {
	p.state = port.Low
}

// Pin returns the physical pin number this line represents.
func (p *WinPin) Pin() int {
	return p.boardPin
}

// State returns the current emulated level.
func (p *WinPin) State() port.StateType {
	return p.state
}

// Close leaves the pin low and releases it for a new request.
func (p *WinPin) Close() error {
	p.state = port.Low
	delete(p.chip.pins, p.boardPin)
	return nil
}
