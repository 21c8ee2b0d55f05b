// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Subscriber receives messages. Implementations are not safe for
// concurrent Receive calls; Close may be called from any goroutine.
type Subscriber interface {
	// Receive blocks until a message arrives, ctx is done, or the
	// subscriber is closed.
	Receive(ctx context.Context) (Message, error)
	Close() error
}

// Publisher sends messages. Implementations are safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, message Message) error
	Close() error
}

// Transport names accepted in Options.
const (
	TransportZMQ    = "zmq"
	TransportRedis  = "redis"
	TransportKafka  = "kafka"
	TransportMemory = "memory"
)

// Options selects and configures a transport.
type Options struct {
	// Transport is one of the Transport constants. Defaults to zmq.
	Transport string

	// Prefix filters subscriptions on the zmq and redis transports.
	// Defaults to TopicPrefix.
	Prefix string

	ZMQ   ZMQOptions
	Redis RedisOptions
	Kafka KafkaOptions

	// Memory is the broker used by the memory transport.
	Memory *Memory

	Logger *slog.Logger
}

func (o *Options) applyDefaults() {
	if o.Transport == "" {
		o.Transport = TransportZMQ
	}
	if o.Prefix == "" {
		o.Prefix = TopicPrefix
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
}

// Open creates a subscriber on the configured transport. Kafka has no
// prefix subscription, so topics lists the topics to consume there;
// the other transports subscribe by prefix and ignore it.
func Open(ctx context.Context, options Options, topics ...string) (Subscriber, error) {
	options.applyDefaults()
	switch strings.ToLower(options.Transport) {
	case TransportZMQ:
		subscriber, err := NewZMQSubscriber(options.ZMQ.Endpoints, options.Prefix, options.Logger)
		if err != nil {
			return nil, err
		}
		return subscriber, nil
	case TransportRedis:
		subscriber, err := NewRedisSubscriber(ctx, options.Redis, options.Prefix)
		if err != nil {
			return nil, err
		}
		return subscriber, nil
	case TransportKafka:
		subscriber, err := NewKafkaSubscriber(options.Kafka, topics)
		if err != nil {
			return nil, err
		}
		return subscriber, nil
	case TransportMemory:
		if options.Memory == nil {
			return nil, fmt.Errorf("bus: memory transport needs a broker")
		}
		return options.Memory.Subscribe(options.Prefix), nil
	default:
		return nil, fmt.Errorf("bus: unknown transport %q", options.Transport)
	}
}

// OpenPublisher creates a publisher on the configured transport. For
// zmq, bind is the endpoint the PUB socket binds.
func OpenPublisher(options Options, bind string) (Publisher, error) {
	options.applyDefaults()
	switch strings.ToLower(options.Transport) {
	case TransportZMQ:
		publisher, err := NewZMQPublisher(bind)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	case TransportRedis:
		return NewRedisPublisher(options.Redis), nil
	case TransportKafka:
		return NewKafkaPublisher(options.Kafka), nil
	case TransportMemory:
		if options.Memory == nil {
			return nil, fmt.Errorf("bus: memory transport needs a broker")
		}
		return options.Memory, nil
	default:
		return nil, fmt.Errorf("bus: unknown transport %q", options.Transport)
	}
}
