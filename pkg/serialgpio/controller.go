package serialgpio

import (
	"fmt"
	"strconv"
	"time"

	"rfctl/pkg/port"

	"github.com/womat/debug"
)

const (
	// FirmwareName is the code name every supported device reports.
	FirmwareName = "SerialArduinoGpio"
	// MinVersion is the default minimum firmware version accepted at the
	// handshake. V1 devices can still be reached by connecting with
	// minVersion 1; the per feature gates below apply regardless.
	MinVersion = 2
	// NameSize is the fixed length of the persistent name.
	NameSize = 16
	// ResetDelay gives the Arduino time to boot after the port open,
	// which triggers a hardware reset.
	ResetDelay = 3 * time.Second
)

// Firmware versions that introduced the gated features.
const (
	versionPersistentName = 2
	versionSavePowerOn    = 2
	versionReadPowerOn    = 3
)

// Controller is the typed request/response client of one device.
// Each exchange is strictly synchronous: one command, one response line.
// A controller must be used by one goroutine at a time; interleaved
// commands would desynchronize the request/response pairing.
type Controller struct {
	transport Transport
	clock     port.Clock

	version     int
	codeName    string
	versionLine string
	active      bool
}

// Connect performs the version handshake over the given transport and
// returns an active controller. On any handshake failure the transport
// is closed and the controller stays inactive.
func Connect(transport Transport, minVersion int) (*Controller, error) {
	return connect(transport, minVersion, port.SystemClock{})
}

func connect(transport Transport, minVersion int, clock port.Clock) (*Controller, error) {
	if minVersion < 1 {
		minVersion = 1
	}

	c := &Controller{transport: transport, clock: clock}

	// opening the transport resets the device, let it boot first
	clock.Sleep(ResetDelay)

	if err := c.handshake(minVersion); err != nil {
		_ = transport.Close()
		return nil, err
	}

	c.active = true
	debug.InfoLog.Printf("connected to %s %q version %d on %s",
		c.codeName, c.versionLine, c.version, transport.Name())
	return c, nil
}

func (c *Controller) handshake(minVersion int) error {
	if err := c.transport.Write([]byte{cmdVersion}); err != nil {
		return err
	}
	line, err := c.transport.ReadLine()
	if err != nil {
		return err
	}

	n, name, err := parseVersion(line)
	if err != nil {
		return err
	}
	if name != FirmwareName {
		return fmt.Errorf("code name %q: %w", name, ErrInvalidFirmware)
	}
	if n < minVersion {
		return fmt.Errorf("version %d is below %d: %w", n, minVersion, ErrUnsupportedVersion)
	}

	c.version = n
	c.codeName = name
	c.versionLine = line
	return nil
}

// Active reports whether the controller is usable.
func (c *Controller) Active() bool {
	return c.active
}

// Close releases the transport. Closing an inactive controller is a no-op.
func (c *Controller) Close() error {
	if !c.active {
		return nil
	}
	c.active = false
	return c.transport.Close()
}

// Version returns the parsed firmware version number.
func (c *Controller) Version() int {
	return c.version
}

// VersionLine returns the raw handshake line of the device.
func (c *Controller) VersionLine() string {
	return c.versionLine
}

// PortName returns the name of the underlying port.
func (c *Controller) PortName() string {
	return c.transport.Name()
}

// fail records a transport level failure; the controller is dead after that.
func (c *Controller) fail(err error) error {
	debug.ErrorLog.Printf("i/o failure on %s: %v", c.transport.Name(), err)
	c.active = false
	return err
}

// SetDigitalValue sets a GPIO pin high (INPUT_PULLUP mode) or low (OUTPUT mode).
func (c *Controller) SetDigitalValue(pin int, value bool) error {
	if !c.active {
		return ErrInactive
	}
	cmd, err := setPinCommand(pin, value)
	if err != nil {
		return err
	}

	if err := c.transport.Write([]byte{cmd}); err != nil {
		return c.fail(err)
	}
	return nil
}

// ReadDigitalValues reads all digital pins as a pin to level map.
func (c *Controller) ReadDigitalValues() (PinStates, error) {
	return c.readPinStates(cmdReadPins)
}

// ReadAnalogValue reads the analog value (0..1023) of one pin.
func (c *Controller) ReadAnalogValue(pin int) (int, error) {
	if !c.active {
		return 0, ErrInactive
	}
	cmd, err := analogCommand(pin)
	if err != nil {
		return 0, err
	}

	if err := c.transport.Write([]byte{cmd}); err != nil {
		return 0, c.fail(err)
	}
	line, err := c.transport.ReadLine()
	if err != nil {
		return 0, c.fail(err)
	}

	v, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("analog response %q: %w", line, err)
	}
	return v, nil
}

// ReadAnalogValues reads all analog pins as a pin to value map.
func (c *Controller) ReadAnalogValues() (map[int]int, error) {
	values := map[int]int{}
	for pin := FirstAnalogPin; pin <= LastAnalogPin; pin++ {
		v, err := c.ReadAnalogValue(pin)
		if err != nil {
			return nil, err
		}
		values[pin] = v
	}
	return values, nil
}

// PersistentName reads the 16 byte name stored in the device EEPROM.
// Needs firmware V2.
func (c *Controller) PersistentName() (string, error) {
	if !c.active {
		return "", ErrInactive
	}
	if c.version < versionPersistentName {
		return "", fmt.Errorf("persistent name needs V%d: %w", versionPersistentName, ErrUnsupportedVersion)
	}

	if err := c.transport.Write([]byte{cmdReadName}); err != nil {
		return "", c.fail(err)
	}
	line, err := c.transport.ReadLine()
	if err != nil {
		return "", c.fail(err)
	}
	return line, nil
}

// StorePersistentName writes a 16 byte name to the device EEPROM and
// verifies it by reading it back. Needs firmware V2.
func (c *Controller) StorePersistentName(name string) error {
	if !c.active {
		return ErrInactive
	}
	if c.version < versionPersistentName {
		return fmt.Errorf("persistent name needs V%d: %w", versionPersistentName, ErrUnsupportedVersion)
	}
	if len(name) != NameSize {
		return fmt.Errorf("name %q has %d bytes: %w", name, len(name), ErrInvalidName)
	}

	if err := c.transport.Write(append([]byte{cmdStoreName}, name...)); err != nil {
		return c.fail(err)
	}

	stored, err := c.PersistentName()
	if err != nil {
		return err
	}
	if stored != name {
		return fmt.Errorf("sent %q, device stored %q: %w", name, stored, ErrNameMismatch)
	}
	return nil
}

// SavePowerOnValues stores the current output state in the device EEPROM
// so it is reloaded at reset. Needs firmware V2.
func (c *Controller) SavePowerOnValues() error {
	if !c.active {
		return ErrInactive
	}
	if c.version < versionSavePowerOn {
		return fmt.Errorf("save power-on values needs V%d: %w", versionSavePowerOn, ErrUnsupportedVersion)
	}

	if err := c.transport.Write([]byte{cmdSavePowerOn}); err != nil {
		return c.fail(err)
	}
	return nil
}

// ReadPowerOnValues reads the output state the device loads at reset.
// Needs firmware V3.
func (c *Controller) ReadPowerOnValues() (PinStates, error) {
	if c.active && c.version < versionReadPowerOn {
		return nil, fmt.Errorf("read power-on values needs V%d: %w", versionReadPowerOn, ErrUnsupportedVersion)
	}
	return c.readPinStates(cmdReadPowerOn)
}

func (c *Controller) readPinStates(cmd byte) (PinStates, error) {
	if !c.active {
		return nil, ErrInactive
	}

	if err := c.transport.Write([]byte{cmd}); err != nil {
		return nil, c.fail(err)
	}
	line, err := c.transport.ReadLine()
	if err != nil {
		return nil, c.fail(err)
	}

	debug.TraceLog.Printf("pin state line %q", line)
	return decodePinStates(line), nil
}
