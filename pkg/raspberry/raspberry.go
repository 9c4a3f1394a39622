// Package raspberry drives gpio output pins of the raspberry pi
package raspberry

import (
	"errors"

	"rfctl/pkg/port"
)

var (
	// ErrInvalidPin is returned for a physical pin that is not a usable gpio.
	ErrInvalidPin = errors.New("invalid board pin")
	// ErrPinInUse is returned if the pin is already requested.
	ErrPinInUse = errors.New("pin already used")
)

// boardToBCM maps the physical pin numbers of the 40 pin header to the
// BCM gpio numbers the chip knows. Physical numbering is what is printed
// on relay transmitter wiring diagrams, so it is the numbering of the API.
var boardToBCM = map[int]int{
	3: 2, 5: 3, 7: 4, 8: 14, 10: 15,
	11: 17, 12: 18, 13: 27, 15: 22, 16: 23, 18: 24, 19: 10,
	21: 9, 22: 25, 23: 11, 24: 8, 26: 7, 29: 5,
	31: 6, 32: 12, 33: 13, 35: 19, 36: 16, 37: 26, 38: 20, 40: 21,
}

// GPIO is the handler to the gpio memory of the platform.
type GPIO interface {
	// NewPin requests the given physical pin as an output line, driven low.
	NewPin(boardPin int) (port.Line, error)
	// Close releases the gpio memory.
	Close() error
}

// BCM translates a physical board pin to its BCM gpio number.
// It fails with ErrInvalidPin before any hardware access if the pin is
// not a gpio capable pin of the 40 pin header.
func BCM(boardPin int) (int, error) {
	bcm, ok := boardToBCM[boardPin]
	if !ok {
		return 0, ErrInvalidPin
	}
	return bcm, nil
}

// ValidPin reports whether the physical pin is a gpio capable pin.
func ValidPin(boardPin int) bool {
	_, ok := boardToBCM[boardPin]
	return ok
}
