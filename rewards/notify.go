package main

import (
	"context"
	"fmt"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"kondecoracao/common"
	"kondecoracao/schema"
)

// notifyBonification sends Bonification.Created to Kafka
func (svc *rewardsSvc) notifyBonification(b Bonification, firstName string) {
	e := b.event(firstName)
	value, err := e.Marshal()
	if err != nil {
		svc.logger.Errorf("failed to marshal Bonification#%s to avro: %s", b.ID, err)
		return
	}
	svc.produce(common.NewEventMessage(schema.TopicBonificationLifecycle, b.ID,
		schema.EventBonificationCreated, schema.EventVersion, "Rewards", value))
}

// notifyWithdrawal sends Withdrawal.* to Kafka, keyed by withdrawal id to keep order of transitions
func (svc *rewardsSvc) notifyWithdrawal(eventType string, w Withdrawal, firstName string) {
	e := w.event(firstName)
	value, err := e.Marshal()
	if err != nil {
		svc.logger.Errorf("failed to marshal Withdrawal#%s to avro: %s", w.ID, err)
		return
	}
	svc.produce(common.NewEventMessage(schema.TopicWithdrawalLifecycle, w.ID,
		eventType, schema.EventVersion, "Rewards", value))
}

func (svc *rewardsSvc) produce(msg *kafka.Message) {
	if err := svc.producer.Produce(msg, nil); err != nil {
		event, _ := common.GetKafkaHeader(msg, "event")
		svc.logger.Errorf("Failed to send event notification on %s: %s", event, err)
	}
}

// startReadingNotification reads user.lifecycle until ctx is done
func (svc *rewardsSvc) startReadingNotification(ctx context.Context, consumer common.EventConsumer) {
	common.ConsumeEvents(ctx, consumer, svc.logger, svc.handleEvent)
}

func (svc *rewardsSvc) handleEvent(eventType string, msg *kafka.Message) error {
	switch eventType {
	case schema.EventUserCreated:
		var u schema.UserEvent
		if err := u.Unmarshal(msg.Value); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return svc.provisionProfile(u)
	}
	return nil
}
