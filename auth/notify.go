package main

import (
	"kondecoracao/common"
	"kondecoracao/schema"
)

// notify sends event on user to Kafka
func (app *authSvc) notify(eventType string, u User) {
	e := u.event()
	b, err := e.Marshal()
	if err != nil {
		app.logger.Errorf("Failed to marshal user %s to avro: %s", u.PublicId, err)
		return
	}

	msg := common.NewEventMessage(schema.TopicUserLifecycle, u.PublicId, eventType, schema.EventVersion, "Auth", b)
	if err := app.producer.Produce(msg, nil); err != nil {
		app.logger.Errorf("Failed to send event notification on %s: %s", eventType, err)
	}
}
