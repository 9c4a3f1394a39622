//go:build !windows
// +build !windows

package raspberry

import (
	"rfctl/pkg/port"

	"github.com/warthog618/gpio"
)

// RpiPin is a single output pin of the raspberry pi.
type RpiPin struct {
	gpioPin  *gpio.Pin
	boardPin int
	chip     *RpiGPIO
}

// RpiGPIO is the handler of the memory mapped gpio range.
type RpiGPIO struct {
	pins map[int]*RpiPin
}

// Open maps the GPIO memory range from /dev/gpiomem.
func Open() (*RpiGPIO, error) {
	if err := gpio.Open(); err != nil {
		return nil, err
	}
	return &RpiGPIO{pins: map[int]*RpiPin{}}, nil
}

// Close unmaps the GPIO memory.
func (c *RpiGPIO) Close() error {
	return gpio.Close()
}

// NewPin requests a physical pin as output line, driven low.
// The pin number is validated against the header map before any
// hardware access.
func (c *RpiGPIO) NewPin(boardPin int) (port.Line, error) {
	bcm, err := BCM(boardPin)
	if err != nil {
		return nil, err
	}
	if _, ok := c.pins[boardPin]; ok {
		return nil, ErrPinInUse
	}

	p := &RpiPin{gpioPin: gpio.NewPin(bcm), boardPin: boardPin, chip: c}
	p.gpioPin.Output()
	p.gpioPin.Low()

	c.pins[boardPin] = p
	return p, nil
}

// High drives the pin to the high level.
func (p *RpiPin) High() {
	p.gpioPin.High()
}

// Low drives the pin to the low level.
func (p *RpiPin) Low() {
	p.gpioPin.Low()
}

// Pin returns the physical pin number this line represents.
func (p *RpiPin) Pin() int {
	return p.boardPin
}

// Close leaves the pin low and releases it for a new request.
func (p *RpiPin) Close() error {
	p.gpioPin.Low()
	delete(p.chip.pins, p.boardPin)
	return nil
}
