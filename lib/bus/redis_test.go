// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redis/v8"
)

// newChannelSubscriber builds a RedisSubscriber fed from messages
// without a server. Close must not be called on it.
func newChannelSubscriber(messages chan *redis.Message) *RedisSubscriber {
	return &RedisSubscriber{
		messages: messages,
		done:     make(chan struct{}),
	}
}

func TestRedisReceive(t *testing.T) {
	messages := make(chan *redis.Message, 3)
	messages <- &redis.Message{Channel: TopicSpeed, Pattern: "event/*", Payload: `{"uuid":"a"}`}
	messages <- &redis.Message{Payload: `{"uuid":"b"}`}
	messages <- &redis.Message{Channel: TopicHeartbeat, Pattern: "event/*"}
	subscriber := newChannelSubscriber(messages)
	ctx := context.Background()

	message, err := subscriber.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if message.Topic != TopicSpeed || string(message.Body) != `{"uuid":"a"}` {
		t.Errorf("message = {%q %q}", message.Topic, message.Body)
	}

	if _, err := subscriber.Receive(ctx); !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("message without channel: error = %v, want ErrMalformedFrame", err)
	}

	message, err = subscriber.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive after malformed frame: %v", err)
	}
	if message.Topic != TopicHeartbeat || len(message.Body) != 0 {
		t.Errorf("message = {%q %q}, want empty heartbeat", message.Topic, message.Body)
	}
}

func TestRedisReceiveEndOfStream(t *testing.T) {
	t.Run("channel closed", func(t *testing.T) {
		messages := make(chan *redis.Message)
		close(messages)
		subscriber := newChannelSubscriber(messages)
		if _, err := subscriber.Receive(context.Background()); !errors.Is(err, ErrClosed) {
			t.Errorf("error = %v, want ErrClosed", err)
		}
	})
	t.Run("subscriber done", func(t *testing.T) {
		subscriber := newChannelSubscriber(make(chan *redis.Message))
		close(subscriber.done)
		if _, err := subscriber.Receive(context.Background()); !errors.Is(err, ErrClosed) {
			t.Errorf("error = %v, want ErrClosed", err)
		}
	})
	t.Run("context cancelled", func(t *testing.T) {
		subscriber := newChannelSubscriber(make(chan *redis.Message))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := subscriber.Receive(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}
