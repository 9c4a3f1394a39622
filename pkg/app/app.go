package app

import (
	"net/url"
	"sync"

	"rfctl/pkg/app/config"
	"rfctl/pkg/mqtt"
	"rfctl/pkg/raspberry"
	"rfctl/pkg/rc433"
	"rfctl/pkg/serialgpio"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Webserver.URL parameter
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// gpio is the handler to the rpi gpio memory
	gpio raspberry.GPIO

	// transmitter is the 433 MHz relay transmitter; nil if no radio pin
	// is configured. transmitterLock serializes access to the physical
	// pin, a transmission in flight must never be interleaved.
	transmitter     *rc433.Transmitter
	transmitterLock sync.Mutex

	// controller is the serial Arduino gpio bridge; nil if no serial
	// port is configured. controllerLock serializes the request/response
	// pairs on the port.
	controller     *serialgpio.Controller
	controllerLock sync.Mutex

	// shutdown signals application shutdown
	shutdown chan struct{}
}

// New checks the web server URL and initializes the main app structure.
func New(cfg *config.Config) (*App, error) {
	u, err := url.Parse(cfg.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", cfg.Webserver.URL, err.Error())
		return &App{}, err
	}

	return &App{
		config:    cfg,
		urlParsed: u,

		web:  fiber.New(),
		mqtt: mqtt.New(),

		shutdown: make(chan struct{}),
	}, nil
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	go app.mqtt.Service()
	go app.runWebServer()
	go app.publishPinStates()

	return nil
}

// init opens the configured devices and wires the routes.
func (app *App) init() (err error) {
	if app.config.Radio.Pin != 0 {
		if err = app.initTransmitter(); err != nil {
			return err
		}
	}

	if app.config.Serial.Port != "" {
		if err = app.initController(); err != nil {
			return err
		}
	}

	if err = app.mqtt.Connect(app.config.MQTT.Connection); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	// initRoutes should always be called last, the handlers access
	// the device handles initialized above
	app.initDefaultRoutes()

	return nil
}

func (app *App) initTransmitter() error {
	gpio, err := raspberry.Open()
	if err != nil {
		debug.ErrorLog.Printf("can't open gpio: %v", err)
		return err
	}
	app.gpio = gpio

	line, err := app.gpio.NewPin(app.config.Radio.Pin)
	if err != nil {
		debug.ErrorLog.Printf("can't open pin %d: %v", app.config.Radio.Pin, err)
		return err
	}

	if app.transmitter, err = rc433.Open(line, app.config.Radio.Retries); err != nil {
		debug.ErrorLog.Printf("can't open transmitter: %v", err)
		return err
	}

	debug.InfoLog.Printf("433 MHz transmitter on board pin %d", app.config.Radio.Pin)
	return nil
}

func (app *App) initController() error {
	transport, err := serialgpio.OpenPort(app.config.Serial.Port)
	if err != nil {
		debug.ErrorLog.Printf("can't open serial port %q: %v", app.config.Serial.Port, err)
		return err
	}

	if app.controller, err = serialgpio.Connect(transport, app.config.Serial.MinVersion); err != nil {
		debug.ErrorLog.Printf("can't connect to gpio bridge: %v", err)
		return err
	}

	return nil
}

// Shutdown returns the read only shutdown channel.
// Shutdown is used to be able to react on application shutdown. (see cmd/rfctl.go)
func (app *App) Shutdown() <-chan struct{} {
	return app.shutdown
}

// Close releases all device handles.
func (app *App) Close() error {
	close(app.shutdown)

	if app.mqtt != nil {
		_ = app.mqtt.Disconnect()
	}
	if app.controller != nil {
		_ = app.controller.Close()
	}
	if app.transmitter != nil {
		_ = app.transmitter.Close()
	}
	if app.gpio != nil {
		_ = app.gpio.Close()
	}
	return nil
}
