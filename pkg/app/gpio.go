package app

import (
	"encoding/json"
	"time"

	"rfctl/pkg/mqtt"

	"github.com/womat/debug"
)

// publishPinStates periodically reads the digital pins of the gpio bridge
// and publishes the snapshot to the mqtt broker.
// It's designed to run in a separate go function, see app.Run().
func (app *App) publishPinStates() {
	if app.controller == nil || app.config.MQTT.Connection == "" {
		return
	}

	ticker := time.NewTicker(app.config.MQTT.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-app.shutdown:
			return
		case <-ticker.C:
			app.controllerLock.Lock()
			values, err := app.controller.ReadDigitalValues()
			app.controllerLock.Unlock()

			if err != nil {
				debug.ErrorLog.Printf("can't read pin states: %v", err)
				continue
			}

			app.sendMQTT(app.config.MQTT.Topic, pinData{
				Time:   time.Now(),
				Name:   app.controller.PortName(),
				Values: values,
			})
		}
	}
}

// sendMQTT sends a message struct to the mqtt broker.
func (app *App) sendMQTT(topic string, message interface{}) {
	debug.TraceLog.Printf("prepare mqtt message %v %v", topic, message)

	b, err := json.MarshalIndent(message, "", "  ")
	if err != nil {
		debug.ErrorLog.Printf("sendMQTT marshal: %v", err)
		return
	}

	app.mqtt.C <- mqtt.Message{
		Qos:      0,
		Retained: true,
		Topic:    topic,
		Payload:  b,
	}
}
