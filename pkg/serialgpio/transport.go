package serialgpio

import (
	"strings"
	"time"

	"go.bug.st/serial"
)

// Serial parameters of the firmware.
const (
	// Baud is the fixed port speed.
	Baud = 115200
	// ReadTimeout bounds every response read.
	ReadTimeout = 2 * time.Second
)

// Transport is the byte oriented connection to the device.
// Implementations must deliver writes unbuffered and return exactly one
// response line per read.
type Transport interface {
	// Name returns the name of the underlying port.
	Name() string
	// Write sends the given bytes and flushes them to the device.
	Write(p []byte) error
	// ReadLine reads one newline terminated line, stripped of the
	// terminator, bounded by the read timeout.
	ReadLine() (string, error)
	// Close closes the connection.
	Close() error
}

// SerialTransport is the Transport over a real serial port.
type SerialTransport struct {
	port serial.Port
	name string
}

// OpenPort opens the named serial port with the fixed firmware settings.
// Note that opening the port resets the Arduino.
func OpenPort(name string) (*SerialTransport, error) {
	mode := &serial.Mode{
		BaudRate: Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	if err = p.SetReadTimeout(ReadTimeout); err != nil {
		_ = p.Close()
		return nil, err
	}

	return &SerialTransport{port: p, name: name}, nil
}

// Name returns the serial port name.
func (s *SerialTransport) Name() string {
	return s.name
}

// Write sends the given bytes and drains the output buffer.
func (s *SerialTransport) Write(p []byte) error {
	if _, err := s.port.Write(p); err != nil {
		return err
	}
	return s.port.Drain()
}

// ReadLine reads byte by byte until a newline arrives.
// A zero length read means the port timeout expired without data.
func (s *SerialTransport) ReadLine() (string, error) {
	var line []byte
	buf := make([]byte, 1)

	for {
		n, err := s.port.Read(buf)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return "", ErrReadTimeout
		}
		if buf[0] == '\n' {
			return strings.TrimRight(string(line), "\r"), nil
		}
		line = append(line, buf[0])
	}
}

// Close closes the serial port.
func (s *SerialTransport) Close() error {
	return s.port.Close()
}
