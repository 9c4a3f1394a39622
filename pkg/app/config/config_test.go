package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testConfig = `
radio:
  pin: 11
  retries: 8
serial:
  port: /dev/ttyUSB0
  minversion: 2
log:
  flag: debug
  file: stderr
webserver:
  url: http://0.0.0.0:7070
  webservices:
    version: true
    health: true
    transmit: true
    gpio: false
mqtt:
  connection: tcp://127.0.0.1:1883
  interval: 30
  topic: /home/gpio
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	file := filepath.Join(t.TempDir(), "rfctl.yaml")
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("can't write config file: %v", err)
	}
	return file
}

func TestLoadConfig(t *testing.T) {
	cfg := NewConfig()
	cfg.Flag.ConfigFile = writeConfig(t, testConfig)

	if err := cfg.LoadConfig(); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Radio.Pin != 11 || cfg.Radio.Retries != 8 {
		t.Errorf("radio config = %+v", cfg.Radio)
	}
	if cfg.Serial.Port != "/dev/ttyUSB0" || cfg.Serial.MinVersion != 2 {
		t.Errorf("serial config = %+v", cfg.Serial)
	}
	if cfg.Webserver.URL != "http://0.0.0.0:7070" {
		t.Errorf("webserver url = %q", cfg.Webserver.URL)
	}
	if cfg.Webserver.Webservices["gpio"] {
		t.Error("gpio webservice enabled, want disabled")
	}
	if cfg.MQTT.Interval != 30*time.Second {
		t.Errorf("mqtt interval = %v, want 30s", cfg.MQTT.Interval)
	}
}

func TestLoadConfig_FlagOverridesLogLevel(t *testing.T) {
	cfg := NewConfig()
	cfg.Flag.ConfigFile = writeConfig(t, testConfig)
	cfg.Flag.LogLevel = "trace"

	if err := cfg.LoadConfig(); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Log.FlagString != "trace" {
		t.Errorf("log flag = %q, want trace", cfg.Log.FlagString)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg := NewConfig()
	cfg.Flag.ConfigFile = filepath.Join(t.TempDir(), "missing.yaml")

	if err := cfg.LoadConfig(); err == nil {
		t.Error("LoadConfig with missing file succeeded")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.Radio.Retries != 6 {
		t.Errorf("default retries = %d, want 6", cfg.Radio.Retries)
	}
	if cfg.Serial.MinVersion != 2 {
		t.Errorf("default minversion = %d, want 2", cfg.Serial.MinVersion)
	}
	if !cfg.Webserver.Webservices["version"] || !cfg.Webserver.Webservices["health"] {
		t.Error("default webservices missing version/health")
	}
}
