// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaOptions configures the Kafka transport.
type KafkaOptions struct {
	// Brokers defaults to ["localhost:9092"].
	Brokers []string

	// GroupID is the consumer group. Defaults to "speedsqueak-uploader".
	// Offsets are committed as messages are read, so a restarted
	// subscriber resumes after the last message it received.
	GroupID string
}

func (o KafkaOptions) brokers() []string {
	if len(o.Brokers) == 0 {
		return []string{"localhost:9092"}
	}
	return o.Brokers
}

// KafkaTopic maps a bus topic to a Kafka topic name. Kafka names may
// not contain "/".
func KafkaTopic(topic string) string {
	return strings.ReplaceAll(topic, "/", ".")
}

// BusTopic is the inverse of KafkaTopic.
func BusTopic(kafkaTopic string) string {
	return strings.ReplaceAll(kafkaTopic, ".", "/")
}

// KafkaSubscriber reads a fixed set of topics as a consumer group
// member.
type KafkaSubscriber struct {
	reader *kafka.Reader
}

// NewKafkaSubscriber joins the consumer group for topics. Kafka has no
// prefix subscriptions, so every topic must be named.
func NewKafkaSubscriber(options KafkaOptions, topics []string) (*KafkaSubscriber, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("bus: kafka subscriber needs at least one topic")
	}
	groupID := options.GroupID
	if groupID == "" {
		groupID = "speedsqueak-uploader"
	}
	kafkaTopics := make([]string, len(topics))
	for index, topic := range topics {
		kafkaTopics[index] = KafkaTopic(topic)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:          options.brokers(),
		GroupID:          groupID,
		GroupTopics:      kafkaTopics,
		GroupBalancers:   []kafka.GroupBalancer{kafka.RangeGroupBalancer{}},
		StartOffset:      kafka.LastOffset,
		MinBytes:         1,
		MaxBytes:         1 << 20,
		MaxWait:          time.Second,
		JoinGroupBackoff: 5 * time.Second,
		ReadBackoffMin:   250 * time.Millisecond,
		ReadBackoffMax:   10 * time.Second,
	})
	return &KafkaSubscriber{reader: reader}, nil
}

// Receive reads the next message and commits its offset.
func (s *KafkaSubscriber) Receive(ctx context.Context) (Message, error) {
	message, err := s.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Message{}, ErrClosed
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Message{}, ctxErr
		}
		return Message{}, fmt.Errorf("bus: kafka read: %w", err)
	}
	return Message{Topic: BusTopic(message.Topic), Body: message.Value}, nil
}

func (s *KafkaSubscriber) Close() error {
	return s.reader.Close()
}

// KafkaPublisher writes each message to the Kafka topic derived from
// its bus topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a writer. Connections are made lazily.
func NewKafkaPublisher(options KafkaOptions) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(options.brokers()...),
		Balancer:               &kafka.Murmur2Balancer{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           10 * time.Second,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, message Message) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: KafkaTopic(message.Topic),
		Value: message.Body,
	})
	if err != nil {
		return fmt.Errorf("bus: kafka publish %s: %w", message.Topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
