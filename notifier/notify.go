package main

import (
	"context"
	"fmt"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"kondecoracao/common"
	"kondecoracao/schema"
)

// startReadingNotification relays reward events until ctx is done
func (svc *notifierSvc) startReadingNotification(ctx context.Context, consumer common.EventConsumer) {
	common.ConsumeEvents(ctx, consumer, svc.logger, func(eventType string, msg *kafka.Message) error {
		return svc.handleEvent(ctx, eventType, msg)
	})
}

func (svc *notifierSvc) handleEvent(ctx context.Context, eventType string, msg *kafka.Message) error {
	var message string
	var event interface{}

	switch eventType {
	case schema.EventBonificationCreated:
		var b schema.BonificationEvent
		if err := b.Unmarshal(msg.Value); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		message, event = renderBonification(b), b
	case schema.EventWithdrawalRequested, schema.EventWithdrawalApproved, schema.EventWithdrawalDenied:
		var w schema.WithdrawalEvent
		if err := w.Unmarshal(msg.Value); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		message, event = renderWithdrawal(eventType, w), w
	default:
		return nil
	}

	results := svc.relay.send(ctx, map[string]interface{}{
		"type":    eventType,
		"message": message,
		"event":   event,
	})
	for channel, r := range results {
		if !r.OK {
			return fmt.Errorf("delivery to %s failed", channel)
		}
	}
	return nil
}
