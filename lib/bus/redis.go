// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
)

// RedisOptions configures the Redis pub/sub transport.
type RedisOptions struct {
	// Address defaults to "localhost:6379".
	Address  string
	Password string
	DB       int
}

func (o RedisOptions) client() *redis.Client {
	address := o.Address
	if address == "" {
		address = "localhost:6379"
	}
	return redis.NewClient(&redis.Options{
		Addr:     address,
		Password: o.Password,
		DB:       o.DB,
	})
}

// RedisSubscriber receives from every channel matching a prefix.
type RedisSubscriber struct {
	client    *redis.Client
	pubsub    *redis.PubSub
	messages  <-chan *redis.Message
	done      chan struct{}
	closeOnce sync.Once
}

// NewRedisSubscriber subscribes to the pattern prefix + "*" and waits
// for the server to confirm the subscription.
func NewRedisSubscriber(ctx context.Context, options RedisOptions, prefix string) (*RedisSubscriber, error) {
	client := options.client()
	pubsub := client.PSubscribe(ctx, prefix+"*")
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		client.Close()
		return nil, fmt.Errorf("bus: redis psubscribe %s*: %w", prefix, err)
	}
	return &RedisSubscriber{
		client:   client,
		pubsub:   pubsub,
		messages: pubsub.Channel(),
		done:     make(chan struct{}),
	}, nil
}

// Receive returns the next published message. The channel name is the
// topic and the payload is the body.
func (s *RedisSubscriber) Receive(ctx context.Context) (Message, error) {
	select {
	case message, ok := <-s.messages:
		if !ok {
			return Message{}, ErrClosed
		}
		if message.Channel == "" {
			return Message{}, fmt.Errorf("%w: redis message without channel", ErrMalformedFrame)
		}
		return Message{Topic: message.Channel, Body: []byte(message.Payload)}, nil
	case <-s.done:
		return Message{}, ErrClosed
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

func (s *RedisSubscriber) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
		if closeErr := s.client.Close(); err == nil {
			err = closeErr
		}
	})
	return err
}

// RedisPublisher publishes each message to the channel named by its
// topic.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a client. No connection is made until the
// first Publish.
func NewRedisPublisher(options RedisOptions) *RedisPublisher {
	return &RedisPublisher{client: options.client()}
}

func (p *RedisPublisher) Publish(ctx context.Context, message Message) error {
	if err := p.client.Publish(ctx, message.Topic, message.Body).Err(); err != nil {
		return fmt.Errorf("bus: redis publish %s: %w", message.Topic, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
