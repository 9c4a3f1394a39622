package serialgpio

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

// noSleepClock skips the reset settle delay in tests.
type noSleepClock struct {
	now time.Time
}

func (c *noSleepClock) Now() time.Time        { return c.now }
func (c *noSleepClock) SpinUntil(t time.Time) { c.now = t }
func (c *noSleepClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

// fakeTransport replays scripted response lines and records every write.
type fakeTransport struct {
	writes [][]byte
	lines  []string
	closed bool
}

func (t *fakeTransport) Name() string { return "/dev/ttyFAKE" }

func (t *fakeTransport) Write(p []byte) error {
	t.writes = append(t.writes, append([]byte{}, p...))
	return nil
}

func (t *fakeTransport) ReadLine() (string, error) {
	if len(t.lines) == 0 {
		return "", ErrReadTimeout
	}
	line := t.lines[0]
	t.lines = t.lines[1:]
	return line, nil
}

func (t *fakeTransport) Close() error {
	t.closed = true
	return nil
}

func testController(t *testing.T, minVersion int, lines ...string) (*Controller, *fakeTransport) {
	t.Helper()

	transport := &fakeTransport{lines: lines}
	c, err := connect(transport, minVersion, &noSleepClock{})
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	return c, transport
}

func TestConnect_Handshake(t *testing.T) {
	c, transport := testController(t, MinVersion, "V2_SerialArduinoGpio")

	if !c.Active() {
		t.Error("controller not active after handshake")
	}
	if c.Version() != 2 {
		t.Errorf("Version() = %d, want 2", c.Version())
	}
	if c.VersionLine() != "V2_SerialArduinoGpio" {
		t.Errorf("VersionLine() = %q", c.VersionLine())
	}
	if c.PortName() != "/dev/ttyFAKE" {
		t.Errorf("PortName() = %q", c.PortName())
	}

	// the handshake is a single version query byte
	if len(transport.writes) != 1 || string(transport.writes[0]) != "`" {
		t.Errorf("handshake writes = %q, want one version query", transport.writes)
	}
}

func TestConnect_Failures(t *testing.T) {
	tests := []struct {
		name       string
		minVersion int
		line       string
		wantErr    error
	}{
		{"wrong code name", MinVersion, "V1_OtherDevice", ErrInvalidFirmware},
		{"wrong code name current version", MinVersion, "V2_OtherDevice", ErrInvalidFirmware},
		{"version below minimum", 2, "V1_SerialArduinoGpio", ErrUnsupportedVersion},
		{"garbage line", MinVersion, "$!garbage", ErrInvalidFirmware},
		{"no answer", MinVersion, "", ErrInvalidFirmware},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{}
			if tt.line != "" {
				transport.lines = []string{tt.line}
			}

			_, err := connect(transport, tt.minVersion, &noSleepClock{})
			if tt.line == "" {
				// a silent device surfaces the transport timeout
				if !errors.Is(err, ErrReadTimeout) {
					t.Fatalf("connect = %v, want ErrReadTimeout", err)
				}
			} else if !errors.Is(err, tt.wantErr) {
				t.Fatalf("connect = %v, want %v", err, tt.wantErr)
			}
			if !transport.closed {
				t.Error("transport not closed after failed handshake")
			}
		})
	}
}

func TestSetDigitalValue(t *testing.T) {
	c, transport := testController(t, MinVersion, "V2_SerialArduinoGpio")

	if err := c.SetDigitalValue(2, true); err != nil {
		t.Fatalf("SetDigitalValue failed: %v", err)
	}
	if err := c.SetDigitalValue(13, false); err != nil {
		t.Fatalf("SetDigitalValue failed: %v", err)
	}

	got := transport.writes[1:]
	if len(got) != 2 || string(got[0]) != "C" || string(got[1]) != "n" {
		t.Errorf("writes = %q, want [C n]", got)
	}

	writes := len(transport.writes)
	if err := c.SetDigitalValue(14, true); !errors.Is(err, ErrInvalidPin) {
		t.Errorf("SetDigitalValue(14) = %v, want ErrInvalidPin", err)
	}
	if len(transport.writes) != writes {
		t.Error("invalid pin reached the transport")
	}
}

func TestReadDigitalValues(t *testing.T) {
	c, transport := testController(t, MinVersion, "V2_SerialArduinoGpio", "cDeFgHijKLmN")

	values, err := c.ReadDigitalValues()
	if err != nil {
		t.Fatalf("ReadDigitalValues failed: %v", err)
	}

	want := PinStates{2: 0, 3: 1, 4: 0, 5: 1, 6: 0, 7: 1, 8: 0, 9: 0, 10: 1, 11: 1, 12: 0, 13: 1}
	if !reflect.DeepEqual(values, want) {
		t.Errorf("ReadDigitalValues = %v, want %v", values, want)
	}
	if string(transport.writes[1]) != "?" {
		t.Errorf("read command = %q, want ?", transport.writes[1])
	}
}

func TestReadAnalogValue(t *testing.T) {
	c, transport := testController(t, MinVersion, "V2_SerialArduinoGpio", "512")

	v, err := c.ReadAnalogValue(3)
	if err != nil {
		t.Fatalf("ReadAnalogValue failed: %v", err)
	}
	if v != 512 {
		t.Errorf("ReadAnalogValue = %d, want 512", v)
	}
	if string(transport.writes[1]) != "3" {
		t.Errorf("analog command = %q, want 3", transport.writes[1])
	}

	if _, err := c.ReadAnalogValue(8); !errors.Is(err, ErrInvalidPin) {
		t.Errorf("ReadAnalogValue(8) = %v, want ErrInvalidPin", err)
	}
}

func TestReadAnalogValues(t *testing.T) {
	lines := []string{"V2_SerialArduinoGpio", "0", "100", "200", "300", "400", "500", "600", "1023"}
	c, transport := testController(t, MinVersion, lines...)

	values, err := c.ReadAnalogValues()
	if err != nil {
		t.Fatalf("ReadAnalogValues failed: %v", err)
	}

	want := map[int]int{0: 0, 1: 100, 2: 200, 3: 300, 4: 400, 5: 500, 6: 600, 7: 1023}
	if !reflect.DeepEqual(values, want) {
		t.Errorf("ReadAnalogValues = %v, want %v", values, want)
	}

	var cmds string
	for _, w := range transport.writes[1:] {
		cmds += string(w)
	}
	if cmds != "01234567" {
		t.Errorf("analog commands = %q, want 01234567", cmds)
	}
}

func TestPersistentName(t *testing.T) {
	c, transport := testController(t, MinVersion, "V2_SerialArduinoGpio", "pump controller 1")

	name, err := c.PersistentName()
	if err != nil {
		t.Fatalf("PersistentName failed: %v", err)
	}
	if name != "pump controller 1" {
		t.Errorf("PersistentName = %q", name)
	}
	if string(transport.writes[1]) != "=" {
		t.Errorf("name command = %q, want =", transport.writes[1])
	}
}

func TestStorePersistentName(t *testing.T) {
	const name = "relay cabinet 07" // 16 bytes

	t.Run("verified store", func(t *testing.T) {
		c, transport := testController(t, MinVersion, "V2_SerialArduinoGpio", name)

		if err := c.StorePersistentName(name); err != nil {
			t.Fatalf("StorePersistentName failed: %v", err)
		}
		if want := "#" + name; string(transport.writes[1]) != want {
			t.Errorf("store command = %q, want %q", transport.writes[1], want)
		}
	})

	t.Run("echo mismatch", func(t *testing.T) {
		c, _ := testController(t, MinVersion, "V2_SerialArduinoGpio", "something else 00")

		if err := c.StorePersistentName(name); !errors.Is(err, ErrNameMismatch) {
			t.Errorf("StorePersistentName = %v, want ErrNameMismatch", err)
		}
	})

	t.Run("wrong length", func(t *testing.T) {
		c, _ := testController(t, MinVersion, "V2_SerialArduinoGpio")

		if err := c.StorePersistentName("short"); !errors.Is(err, ErrInvalidName) {
			t.Errorf("StorePersistentName = %v, want ErrInvalidName", err)
		}
	})

	t.Run("needs V2", func(t *testing.T) {
		c, _ := testController(t, 1, "V1_SerialArduinoGpio")

		if err := c.StorePersistentName(name); !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("StorePersistentName on V1 = %v, want ErrUnsupportedVersion", err)
		}
	})
}

func TestPowerOnValues(t *testing.T) {
	t.Run("save needs V2", func(t *testing.T) {
		c, _ := testController(t, 1, "V1_SerialArduinoGpio")

		if err := c.SavePowerOnValues(); !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("SavePowerOnValues on V1 = %v, want ErrUnsupportedVersion", err)
		}
	})

	t.Run("save", func(t *testing.T) {
		c, transport := testController(t, MinVersion, "V2_SerialArduinoGpio")

		if err := c.SavePowerOnValues(); err != nil {
			t.Fatalf("SavePowerOnValues failed: %v", err)
		}
		if string(transport.writes[1]) != "+" {
			t.Errorf("save command = %q, want +", transport.writes[1])
		}
	})

	t.Run("read needs V3", func(t *testing.T) {
		c, _ := testController(t, MinVersion, "V2_SerialArduinoGpio")

		if _, err := c.ReadPowerOnValues(); !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("ReadPowerOnValues on V2 = %v, want ErrUnsupportedVersion", err)
		}
	})

	t.Run("read", func(t *testing.T) {
		c, transport := testController(t, MinVersion, "V3_SerialArduinoGpio", "CdEfGhIjKlMn")

		values, err := c.ReadPowerOnValues()
		if err != nil {
			t.Fatalf("ReadPowerOnValues failed: %v", err)
		}

		want := PinStates{2: 1, 3: 0, 4: 1, 5: 0, 6: 1, 7: 0, 8: 1, 9: 0, 10: 1, 11: 0, 12: 1, 13: 0}
		if !reflect.DeepEqual(values, want) {
			t.Errorf("ReadPowerOnValues = %v, want %v", values, want)
		}
		if string(transport.writes[1]) != "-" {
			t.Errorf("read command = %q, want -", transport.writes[1])
		}
	})
}

func TestClose(t *testing.T) {
	c, transport := testController(t, MinVersion, "V2_SerialArduinoGpio")

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if c.Active() {
		t.Error("controller still active after Close")
	}
	if !transport.closed {
		t.Error("Close didn't close the transport")
	}

	// closing again is a no-op, never an error
	if err := c.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}

	if err := c.SetDigitalValue(2, true); !errors.Is(err, ErrInactive) {
		t.Errorf("SetDigitalValue after Close = %v, want ErrInactive", err)
	}
	if _, err := c.ReadDigitalValues(); !errors.Is(err, ErrInactive) {
		t.Errorf("ReadDigitalValues after Close = %v, want ErrInactive", err)
	}
	if _, err := c.ReadAnalogValue(0); !errors.Is(err, ErrInactive) {
		t.Errorf("ReadAnalogValue after Close = %v, want ErrInactive", err)
	}
	if _, err := c.PersistentName(); !errors.Is(err, ErrInactive) {
		t.Errorf("PersistentName after Close = %v, want ErrInactive", err)
	}
	if err := c.SavePowerOnValues(); !errors.Is(err, ErrInactive) {
		t.Errorf("SavePowerOnValues after Close = %v, want ErrInactive", err)
	}
}

func TestIOFailureDeactivates(t *testing.T) {
	// no scripted lines: the read runs into the transport timeout
	c, _ := testController(t, MinVersion, "V2_SerialArduinoGpio")

	if _, err := c.ReadDigitalValues(); !errors.Is(err, ErrReadTimeout) {
		t.Fatalf("ReadDigitalValues = %v, want ErrReadTimeout", err)
	}
	if c.Active() {
		t.Error("controller still active after i/o failure")
	}
}
