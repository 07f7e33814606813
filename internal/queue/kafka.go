package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/emrgen/research/internal/compress"
	"github.com/sirupsen/logrus"
)

const contentEncodingHeader = "content-encoding"

// KafkaPublisher produces events to a kafka topic, keyed by research entity.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
	codec    compress.Compress
}

var _ Publisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(brokers, topic string, codec compress.Compress) (*KafkaPublisher, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
	})
	if err != nil {
		return nil, err
	}

	p := &KafkaPublisher{
		producer: producer,
		topic:    topic,
		codec:    codec,
	}
	go p.logDeliveries()

	return p, nil
}

func (k *KafkaPublisher) logDeliveries() {
	for e := range k.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				logrus.Errorf("event delivery failed: %v", ev.TopicPartition.Error)
			}
		case kafka.Error:
			logrus.Errorf("kafka error: %v", ev)
		}
	}
}

func (k *KafkaPublisher) Publish(ctx context.Context, events ...*Event) error {
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		payload, err := k.codec.Encode(data)
		if err != nil {
			return err
		}

		err = k.producer.Produce(&kafka.Message{
			TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
			Key:            []byte(strconv.FormatUint(uint64(event.ResearchEntityID), 10)),
			Value:          payload,
			Headers: []kafka.Header{
				{Key: contentEncodingHeader, Value: []byte(k.codec.Name())},
				{Key: "event-type", Value: []byte(event.Type)},
			},
		}, nil)
		if err != nil {
			return fmt.Errorf("produce %s: %w", event.Type, err)
		}
	}

	return nil
}

func (k *KafkaPublisher) Close() error {
	remaining := k.producer.Flush(5000)
	if remaining > 0 {
		logrus.Warnf("%d events were not delivered before close", remaining)
	}
	k.producer.Close()

	return nil
}
