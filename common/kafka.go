package common

import (
	"context"
	"errors"
	"fmt"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
	"time"
)

// EventProducer is satisfied by *kafka.Producer
type EventProducer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
}

// EventConsumer is satisfied by *kafka.Consumer
type EventConsumer interface {
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	Close() error
}

// NoopProducer drops events, used when no broker is configured
type NoopProducer struct {
	Logger *zap.SugaredLogger
}

func (p NoopProducer) Produce(msg *kafka.Message, _ chan kafka.Event) error {
	if p.Logger != nil {
		event, _ := GetKafkaHeader(msg, "event")
		p.Logger.Debugf("Kafka disabled, dropping %s", event)
	}
	return nil
}

// NewKafkaProducer creates producer and starts logging of delivery reports
func NewKafkaProducer(brokers string, logger *zap.SugaredLogger) (*kafka.Producer, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": brokers})
	if err != nil {
		return nil, err
	}
	go func() {
		for e := range producer.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					logger.Errorf("Delivery failed: %v", ev.TopicPartition)
				} else {
					logger.Debugf("Delivered message to %v", ev.TopicPartition)
				}
			}
		}
	}()
	return producer, nil
}

// NewEventProducer returns kafka producer for brokers, or NoopProducer when brokers are not set.
// Returned func flushes and closes the producer.
func NewEventProducer(brokers string, logger *zap.SugaredLogger) (EventProducer, func(), error) {
	if brokers == "" {
		logger.Warn("Kafka brokers are not configured, events will be dropped")
		return NoopProducer{Logger: logger}, func() {}, nil
	}
	producer, err := NewKafkaProducer(brokers, logger)
	if err != nil {
		return nil, nil, err
	}
	return producer, func() {
		producer.Flush(5000)
		producer.Close()
	}, nil
}

// NewKafkaConsumer creates consumer of group subscribed to topics
func NewKafkaConsumer(brokers, group string, topics []string) (*kafka.Consumer, error) {
	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"group.id":          group,
		"auto.offset.reset": "earliest",
	})
	if err != nil {
		return nil, err
	}
	if err := consumer.SubscribeTopics(topics, nil); err != nil {
		_ = consumer.Close()
		return nil, fmt.Errorf("failed to subscribe to %v: %w", topics, err)
	}
	return consumer, nil
}

// ConsumeEvents reads messages until ctx is done and passes every message with "event" header to handle.
// Failed messages are logged and skipped. Consumer is closed on return.
func ConsumeEvents(ctx context.Context, consumer EventConsumer, logger *zap.SugaredLogger,
	handle func(eventType string, msg *kafka.Message) error) {
	defer func() {
		_ = consumer.Close()
	}()

	for ctx.Err() == nil {
		msg, err := consumer.ReadMessage(time.Second)
		if err != nil {
			if !IsKafkaTimeout(err) {
				logger.Error(err)
			}
			continue
		}

		eventType, err := GetKafkaHeader(msg, "event")
		if err != nil {
			logger.Infof("missing event header in the message %s, skipping", msg.Key)
			continue
		}
		if err := handle(eventType, msg); err != nil {
			logger.Errorf("Failed to process notification on %s: %s", eventType, err)
		}
	}
}

// IsKafkaTimeout reports whether err is timeout of ReadMessage
func IsKafkaTimeout(err error) bool {
	var kErr kafka.Error
	return errors.As(err, &kErr) && kErr.IsTimeout()
}

// NewEventMessage builds message for topic with standard headers
func NewEventMessage(topic, key, eventType, eventVersion, producer string, value []byte) *kafka.Message {
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          value,
	}
	AppendKafkaHeader(msg, "event", eventType)
	AppendKafkaHeader(msg, "eventVersion", eventVersion)
	AppendKafkaHeader(msg, "producer", producer)
	return msg
}

// AppendKafkaHeader adds header to message
func AppendKafkaHeader(msg *kafka.Message, key, value string) {
	msg.Headers = append(msg.Headers, kafka.Header{Key: key, Value: []byte(value)})
}

// GetKafkaHeader returns value of the first header with key
func GetKafkaHeader(msg *kafka.Message, key string) (string, error) {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value), nil
		}
	}
	return "", fmt.Errorf("header %s not found", key)
}
