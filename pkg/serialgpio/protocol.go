// Package serialgpio speaks the single character line protocol of the
// SerialArduinoGpio firmware: an Arduino on a serial port used as a very
// basic GPIO device. Each command is one byte (plus payload for writes)
// and produces at most one newline terminated response line.
package serialgpio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInactive is returned for operations on a closed or failed controller.
	ErrInactive = errors.New("controller is not active")
	// ErrInvalidPin is returned for a pin outside the supported range.
	ErrInvalidPin = errors.New("invalid pin")
	// ErrInvalidFirmware is returned if the device does not identify as
	// SerialArduinoGpio firmware.
	ErrInvalidFirmware = errors.New("invalid firmware identification")
	// ErrUnsupportedVersion is returned if the firmware version is too old
	// for the requested feature.
	ErrUnsupportedVersion = errors.New("unsupported firmware version")
	// ErrNameMismatch is returned if the stored persistent name does not
	// echo what was sent.
	ErrNameMismatch = errors.New("stored name does not match")
	// ErrInvalidName is returned for a persistent name that is not
	// exactly NameSize bytes.
	ErrInvalidName = errors.New("persistent name must be 16 bytes")
	// ErrReadTimeout is returned if the device does not answer within
	// the read timeout.
	ErrReadTimeout = errors.New("read timeout on serial port")
)

// Command bytes of the wire protocol.
const (
	cmdVersion     byte = '`' // answers "V<n>_<codename>"
	cmdReadPins    byte = '?' // answers one line of state letters
	cmdSavePowerOn byte = '+' // V2+, no answer
	cmdReadPowerOn byte = '-' // V3+, answers one line of state letters
	cmdReadName    byte = '=' // V2+, answers the 16 character name
	cmdStoreName   byte = '#' // V2+, followed by 16 name bytes, no answer
)

// Digital pin range of the firmware. Pins 0 and 1 are the serial port itself.
const (
	FirstDigitalPin = 2
	LastDigitalPin  = 13
)

// Analog pin range of the firmware.
const (
	FirstAnalogPin = 0
	LastAnalogPin  = 7
)

// PinStates maps a digital pin number to its level (0/1).
type PinStates map[int]int

// setPinCommand maps (pin, value) to its command byte: the letter at the
// pin's offset from 'A', uppercase for high, lowercase for low.
func setPinCommand(pin int, value bool) (byte, error) {
	if pin < FirstDigitalPin || pin > LastDigitalPin {
		return 0, fmt.Errorf("pin %d: %w", pin, ErrInvalidPin)
	}
	if value {
		return byte('A' + pin), nil
	}
	return byte('a' + pin), nil
}

// analogCommand maps an analog pin to its read command byte.
func analogCommand(pin int) (byte, error) {
	if pin < FirstAnalogPin || pin > LastAnalogPin {
		return 0, fmt.Errorf("analog pin %d: %w", pin, ErrInvalidPin)
	}
	return byte('0' + pin), nil
}

// decodePinStates decodes a line of state letters: c..n are pins 2..13
// low, C..N the same pins high. Unrecognized characters are ignored so
// newer firmware may append status characters without breaking us.
func decodePinStates(line string) PinStates {
	states := PinStates{}
	for _, c := range line {
		switch {
		case c >= 'a'+FirstDigitalPin && c <= 'a'+LastDigitalPin:
			states[int(c-'a')] = 0
		case c >= 'A'+FirstDigitalPin && c <= 'A'+LastDigitalPin:
			states[int(c-'A')] = 1
		}
	}
	return states
}

// parseVersion parses the handshake line "V<n>_<codename>".
// The version number is compared as an integer, never as a string, so
// V10 sorts after V2.
func parseVersion(line string) (int, string, error) {
	rest, hasPrefix := strings.CutPrefix(line, "V")
	num, name, hasName := strings.Cut(rest, "_")
	if !hasPrefix || !hasName {
		return 0, "", fmt.Errorf("version line %q: %w", line, ErrInvalidFirmware)
	}

	n, err := strconv.Atoi(num)
	if err != nil || n < 1 {
		return 0, "", fmt.Errorf("version line %q: %w", line, ErrInvalidFirmware)
	}
	return n, name, nil
}
