package app

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"rfctl/pkg/rc433"
	"rfctl/pkg/serialgpio"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// runWebServer starts the applications web server and listens for web requests.
// It's designed to run in a separate go function to not block the main go function.
// See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// badRequest distinguishes caller errors from device failures; validation
// errors are detected before any hardware i/o and are non-retryable.
func badRequest(err error) bool {
	return errors.Is(err, rc433.ErrInvalidAddress) ||
		errors.Is(err, rc433.ErrInvalidUnit) ||
		errors.Is(err, rc433.ErrInvalidAction) ||
		errors.Is(err, serialgpio.ErrInvalidPin) ||
		errors.Is(err, serialgpio.ErrInvalidName) ||
		errors.Is(err, serialgpio.ErrUnsupportedVersion)
}

func fail(ctx *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	if badRequest(err) {
		status = http.StatusBadRequest
	}
	return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// queryInt reads an integer query parameter, -1 if absent or malformed.
func queryInt(ctx *fiber.Ctx, key string) int {
	v, err := strconv.Atoi(ctx.Query(key))
	if err != nil {
		return -1
	}
	return v
}

// HandleTransmit is the radio transmit web handler (?addr=&unit=&action=on|off).
func (app *App) HandleTransmit() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request transmit")

		action, err := rc433.ParseAction(ctx.Query("action"))
		if err != nil {
			return fail(ctx, err)
		}
		addr := queryInt(ctx, "addr")
		unit := queryInt(ctx, "unit")

		app.transmitterLock.Lock()
		err = app.transmitter.Transmit(addr, unit, action)
		app.transmitterLock.Unlock()
		if err != nil {
			return fail(ctx, err)
		}

		return ctx.JSON(fiber.Map{"addr": addr, "unit": unit, "action": action.String()})
	}
}

// HandleTransmitAll is the broadcast web handler (?action=on|off).
func (app *App) HandleTransmitAll() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request transmitall")

		action, err := rc433.ParseAction(ctx.Query("action"))
		if err != nil {
			return fail(ctx, err)
		}

		app.transmitterLock.Lock()
		err = app.transmitter.TransmitAll(action)
		app.transmitterLock.Unlock()
		if err != nil {
			return fail(ctx, err)
		}

		return ctx.JSON(fiber.Map{"action": action.String()})
	}
}

// pinData is the response of the gpio read handlers.
type pinData struct {
	Time   time.Time            `json:"time"`
	Name   string               `json:"name"`
	Values serialgpio.PinStates `json:"values"`
}

// HandleReadPins is the read digital pins web handler.
func (app *App) HandleReadPins() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request gpio")

		app.controllerLock.Lock()
		values, err := app.controller.ReadDigitalValues()
		app.controllerLock.Unlock()
		if err != nil {
			return fail(ctx, err)
		}

		return ctx.JSON(pinData{
			Time:   time.Now(),
			Name:   app.controller.PortName(),
			Values: values,
		})
	}
}

// HandleSetPin is the set digital pin web handler (?pin=&value=0|1).
func (app *App) HandleSetPin() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request gpio set")

		pin := queryInt(ctx, "pin")
		value := queryInt(ctx, "value") == 1

		app.controllerLock.Lock()
		err := app.controller.SetDigitalValue(pin, value)
		app.controllerLock.Unlock()
		if err != nil {
			return fail(ctx, err)
		}

		return ctx.JSON(fiber.Map{"pin": pin, "value": value})
	}
}

// HandleReadAnalog is the analog read web handler.
// Without a pin parameter all analog pins are read.
func (app *App) HandleReadAnalog() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request gpio analog")

		app.controllerLock.Lock()
		defer app.controllerLock.Unlock()

		if ctx.Query("pin") != "" {
			pin := queryInt(ctx, "pin")
			v, err := app.controller.ReadAnalogValue(pin)
			if err != nil {
				return fail(ctx, err)
			}
			return ctx.JSON(fiber.Map{"pin": pin, "value": v})
		}

		values, err := app.controller.ReadAnalogValues()
		if err != nil {
			return fail(ctx, err)
		}
		return ctx.JSON(values)
	}
}

// HandleName is the persistent name web handler.
func (app *App) HandleName() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request gpio name")

		app.controllerLock.Lock()
		name, err := app.controller.PersistentName()
		app.controllerLock.Unlock()
		if err != nil {
			return fail(ctx, err)
		}

		return ctx.JSON(fiber.Map{"name": name, "version": app.controller.Version()})
	}
}

// HandleSave is the save power-on values web handler.
func (app *App) HandleSave() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request gpio save")

		app.controllerLock.Lock()
		err := app.controller.SavePowerOnValues()
		app.controllerLock.Unlock()
		if err != nil {
			return fail(ctx, err)
		}

		return ctx.JSON(fiber.Map{"saved": true})
	}
}
