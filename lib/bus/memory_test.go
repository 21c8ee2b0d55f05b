// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/speedsqueak/lib/testutil"
)

func TestMemoryPrefixFiltering(t *testing.T) {
	broker := NewMemory()
	events := broker.Subscribe(TopicPrefix)
	heartbeats := broker.Subscribe(TopicHeartbeat)
	ctx := context.Background()

	for _, message := range []Message{
		{Topic: TopicSpeed, Body: []byte("1")},
		{Topic: "other/noise", Body: []byte("2")},
		{Topic: TopicHeartbeat, Body: []byte("3")},
	} {
		if err := broker.Publish(ctx, message); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	for _, want := range []string{TopicSpeed, TopicHeartbeat} {
		message, err := events.Receive(ctx)
		if err != nil {
			t.Fatalf("Receive: %v", err)
		}
		if message.Topic != want {
			t.Errorf("Topic = %q, want %q", message.Topic, want)
		}
	}

	message, err := heartbeats.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(message.Body) != "3" {
		t.Errorf("heartbeat body = %q, want 3", message.Body)
	}
}

func TestMemoryReceiveHonorsContext(t *testing.T) {
	subscriber := NewMemory().Subscribe("")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := subscriber.Receive(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Receive error = %v, want DeadlineExceeded", err)
	}
}

func TestMemoryCloseUnblocksReceive(t *testing.T) {
	broker := NewMemory()
	subscriber := broker.Subscribe("")

	result := make(chan error, 1)
	go func() {
		_, err := subscriber.Receive(context.Background())
		result <- err
	}()

	subscriber.Close()
	err := testutil.RequireReceive(t, result, 5*time.Second, "Receive did not return after Close")
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Receive error = %v, want ErrClosed", err)
	}

	// A closed subscriber no longer holds up publishers.
	if err := broker.Publish(context.Background(), Message{Topic: TopicSpeed}); err != nil {
		t.Errorf("Publish after Close: %v", err)
	}
}

func TestMemoryPublishCopiesBody(t *testing.T) {
	broker := NewMemory()
	subscriber := broker.Subscribe("")
	body := []byte("original")

	if err := broker.Publish(context.Background(), Message{Topic: TopicSpeed, Body: body}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	copy(body, "mutated!")

	message, err := subscriber.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(message.Body) != "original" {
		t.Errorf("Body = %q, want original", message.Body)
	}
}
