// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build zmq

package bus

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bureau-foundation/speedsqueak/lib/testutil"
)

func TestZMQRoundTrip(t *testing.T) {
	endpoint := fmt.Sprintf("ipc://%s/bus.sock", testutil.SocketDir(t))

	publisher, err := NewZMQPublisher(endpoint)
	if err != nil {
		t.Fatalf("NewZMQPublisher: %v", err)
	}
	defer publisher.Close()

	subscriber, err := NewZMQSubscriber([]string{endpoint}, TopicPrefix, nil)
	if err != nil {
		t.Fatalf("NewZMQSubscriber: %v", err)
	}
	defer subscriber.Close()

	// PUB drops frames until the subscription has propagated, so keep
	// publishing until one arrives.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				publisher.Publish(ctx, Message{Topic: "other/ignored", Body: []byte("x")})
				publisher.Publish(ctx, Message{Topic: TopicSpeed, Body: []byte(`{"uuid":"z"}`)})
			}
		}
	}()

	message, err := subscriber.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if message.Topic != TopicSpeed || string(message.Body) != `{"uuid":"z"}` {
		t.Errorf("received %q %q", message.Topic, message.Body)
	}
}

func TestZMQReceiveStopsOnCancel(t *testing.T) {
	endpoint := fmt.Sprintf("ipc://%s/idle.sock", testutil.SocketDir(t))
	subscriber, err := NewZMQSubscriber([]string{endpoint}, TopicPrefix, nil)
	if err != nil {
		t.Fatalf("NewZMQSubscriber: %v", err)
	}
	defer subscriber.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := subscriber.Receive(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Receive error = %v, want DeadlineExceeded", err)
	}

	subscriber.Close()
	if _, err := subscriber.Receive(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Receive after Close error = %v, want ErrClosed", err)
	}
}
