// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"context"
	"sync"
)

const memoryQueueDepth = 64

// Memory is an in-process broker. It is a Publisher; subscribers are
// created with Subscribe. Publish blocks while a matching subscriber's
// queue is full.
type Memory struct {
	mutex       sync.Mutex
	subscribers map[*memorySubscriber]struct{}
}

// NewMemory returns an empty broker.
func NewMemory() *Memory {
	return &Memory{subscribers: make(map[*memorySubscriber]struct{})}
}

// Subscribe returns a subscriber receiving every message whose topic
// starts with prefix, published after this call.
func (m *Memory) Subscribe(prefix string) Subscriber {
	subscriber := &memorySubscriber{
		broker:   m,
		prefix:   prefix,
		messages: make(chan Message, memoryQueueDepth),
		done:     make(chan struct{}),
	}
	m.mutex.Lock()
	m.subscribers[subscriber] = struct{}{}
	m.mutex.Unlock()
	return subscriber
}

// Publish delivers message to every matching subscriber.
func (m *Memory) Publish(ctx context.Context, message Message) error {
	m.mutex.Lock()
	var targets []*memorySubscriber
	for subscriber := range m.subscribers {
		if HasPrefix(message.Topic, subscriber.prefix) {
			targets = append(targets, subscriber)
		}
	}
	m.mutex.Unlock()

	for _, subscriber := range targets {
		copied := Message{Topic: message.Topic, Body: append([]byte(nil), message.Body...)}
		select {
		case subscriber.messages <- copied:
		case <-subscriber.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close is a no-op; the broker has no connection to release.
func (m *Memory) Close() error { return nil }

func (m *Memory) remove(subscriber *memorySubscriber) {
	m.mutex.Lock()
	delete(m.subscribers, subscriber)
	m.mutex.Unlock()
}

type memorySubscriber struct {
	broker    *Memory
	prefix    string
	messages  chan Message
	done      chan struct{}
	closeOnce sync.Once
}

func (s *memorySubscriber) Receive(ctx context.Context) (Message, error) {
	select {
	case message := <-s.messages:
		return message, nil
	case <-s.done:
		return Message{}, ErrClosed
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

func (s *memorySubscriber) Close() error {
	s.closeOnce.Do(func() {
		s.broker.remove(s)
		close(s.done)
	})
	return nil
}
