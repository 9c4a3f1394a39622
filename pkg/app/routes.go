package app

// initDefaultRoutes initializes the applications routes.
// Version and health are the routes which are the same in every application.
func (app *App) initDefaultRoutes() {
	api := app.web.Group("/")
	if app.config.Webserver.Webservices["version"] {
		api.Get("/version", app.HandleVersion())
	}
	if app.config.Webserver.Webservices["health"] {
		api.Get("/health", app.HandleHealth())
	}
	if app.config.Webserver.Webservices["transmit"] && app.transmitter != nil {
		api.Get("/transmit", app.HandleTransmit())
		api.Get("/transmitall", app.HandleTransmitAll())
	}
	if app.config.Webserver.Webservices["gpio"] && app.controller != nil {
		api.Get("/gpio", app.HandleReadPins())
		api.Get("/gpio/set", app.HandleSetPin())
		api.Get("/gpio/analog", app.HandleReadAnalog())
		api.Get("/gpio/name", app.HandleName())
		api.Get("/gpio/save", app.HandleSave())
	}
}
