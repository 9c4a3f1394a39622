// Package rc433 is the encoder of the 433 MHz on/off protocol spoken by
// Etekcity style remote control outlets.
//
// A command is one frame of 25 bits: 8 address bits, 12 unit code bits,
// 4 action bits and a single end bit. The chips and signals are not
// documented; the tables below were measured from existing devices.
package rc433

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidAddress is returned for an address outside 0..255.
	ErrInvalidAddress = errors.New("address not in range 0..255")
	// ErrInvalidUnit is returned for a unit outside 1..5.
	ErrInvalidUnit = errors.New("unit not in range 1..5")
	// ErrInvalidAction is returned for an action string other than on/off.
	ErrInvalidAction = errors.New("expect action of \"on\" or \"off\"")
)

// Action is the switching command of a frame.
type Action int

const (
	// Off switches the addressed relay off.
	Off Action = iota
	// On switches the addressed relay on.
	On
)

// ParseAction converts the on/off words of the outer interfaces (web
// parameters, CLI) to an Action. The core never accepts an untyped action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "on":
		return On, nil
	case "off":
		return Off, nil
	}
	return Off, ErrInvalidAction
}

// String returns the action as on/off word.
func (a Action) String() string {
	if a == On {
		return "on"
	}
	return "off"
}

// Field widths of a frame.
const (
	AddressBits = 8
	UnitBits    = 12
	ActionBits  = 4
	EndBits     = 1
	// FrameBits is the total length of one frame.
	FrameBits = AddressBits + UnitBits + ActionBits + EndBits
)

// The reserved address/unit pair every paired receiver reacts to.
const (
	AllAddress = 85
	AllUnit    = 3
)

// unitCodes are the fixed 12 bit codes of the units 1..5.
// These appear to be stable across devices.
var unitCodes = map[int][UnitBits]bool{
	1: {false, true, false, true, false, true, false, true, false, false, true, true},
	2: {false, true, false, true, false, true, false, true, true, true, false, false},
	3: {false, true, false, true, false, true, true, true, false, false, false, false},
	4: {false, true, false, true, true, true, false, true, false, false, false, false},
	5: {false, true, true, true, false, true, false, true, false, false, false, false},
}

// onCode and offCode are the fixed 4 bit action codes.
var (
	onCode  = [ActionBits]bool{false, false, true, true}
	offCode = [ActionBits]bool{true, true, false, false}
)

// Frame is one complete encoded command, immutable once built.
type Frame []bool

// BuildFrame assembles the frame for (address, unit, action).
// The address is encoded most significant bit first.
func BuildFrame(address, unit int, action Action) (Frame, error) {
	if address < 0 || address > 255 {
		return nil, fmt.Errorf("address %d: %w", address, ErrInvalidAddress)
	}
	code, ok := unitCodes[unit]
	if !ok {
		return nil, fmt.Errorf("unit %d: %w", unit, ErrInvalidUnit)
	}

	f := make(Frame, 0, FrameBits)
	for i := AddressBits - 1; i >= 0; i-- {
		f = append(f, address>>i&1 == 1)
	}
	f = append(f, code[:]...)
	if action == On {
		f = append(f, onCode[:]...)
	} else {
		f = append(f, offCode[:]...)
	}
	// end marker
	f = append(f, false)

	return f, nil
}

// String renders the frame as 0/1 characters, useful for trace logs.
func (f Frame) String() string {
	var b strings.Builder
	b.Grow(len(f))
	for _, bit := range f {
		if bit {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
