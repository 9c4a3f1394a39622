package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
)

// Config defines the struct of the global config and of the configuration file.
type Config struct {
	Radio     RadioConfig     `yaml:"radio"`
	Serial    SerialConfig    `yaml:"serial"`
	Flag      FlagConfig      `yaml:"-"`
	Log       LogConfig       `yaml:"log"`
	Webserver WebserverConfig `yaml:"webserver"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
}

// RadioConfig defines the 433 MHz transmitter configuration.
// Pin is the physical board pin the sender data line is wired to;
// pin 0 disables the radio part.
type RadioConfig struct {
	Pin     int `yaml:"pin"`
	Retries int `yaml:"retries"`
}

// SerialConfig defines the Arduino gpio bridge configuration.
// An empty port disables the serial part.
type SerialConfig struct {
	Port       string `yaml:"port"`
	MinVersion int    `yaml:"minversion"`
}

// FlagConfig defines the configured command line flags.
type FlagConfig struct {
	ConfigFile string
	LogLevel   string
}

// WebserverConfig defines the webserver and webservice configuration.
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the mqtt client configuration.
type MQTTConfig struct {
	Connection  string        `yaml:"connection"`
	Interval    time.Duration `yaml:"-"`
	IntervalInt int           `yaml:"interval"`
	Topic       string        `yaml:"topic"`
}

// LogConfig defines the log configuration.
type LogConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

// NewConfig returns the config with all defaults applied.
func NewConfig() *Config {
	return &Config{
		Radio: RadioConfig{
			Pin:     0,
			Retries: 6,
		},
		Serial: SerialConfig{
			Port:       "",
			MinVersion: 2,
		},
		Flag: FlagConfig{},
		Log: LogConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version":  true,
				"health":   true,
				"transmit": true,
				"gpio":     true,
			},
		},
		MQTT: MQTTConfig{
			Connection:  "",
			IntervalInt: 60,
			Topic:       "/home/gpio",
		},
	}
}

// LoadConfig reads the configuration file and applies the flag overrides.
func (c *Config) LoadConfig() error {
	if err := c.readConfigFile(); err != nil {
		return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
	}

	if c.Flag.LogLevel != "" {
		c.Log.FlagString = c.Flag.LogLevel
	}
	if err := c.setLogConfig(); err != nil {
		return fmt.Errorf("unable to open log file %q: %w", c.Log.FileString, err)
	}

	c.MQTT.Interval = time.Duration(c.MQTT.IntervalInt) * time.Second
	return nil
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil {
		return err
	}

	return nil
}

func (c *Config) setLogConfig() (err error) {
	switch c.Log.FlagString {
	case "trace", "full":
		c.Log.Flag = debug.Full
	case "debug":
		c.Log.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		c.Log.Flag = debug.Standard
	}

	switch c.Log.FileString {
	case "stderr":
		c.Log.File = os.Stderr
	case "stdout":
		c.Log.File = os.Stdout
	default:
		if c.Log.File, err = os.OpenFile(c.Log.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}
