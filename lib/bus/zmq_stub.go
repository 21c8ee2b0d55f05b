// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !zmq

package bus

import (
	"context"
	"log/slog"
)

// ZMQSubscriber stands in for the ZeroMQ subscriber when libzmq is not
// linked. It cannot be constructed.
type ZMQSubscriber struct{}

// NewZMQSubscriber returns ErrZMQUnavailable.
func NewZMQSubscriber(endpoints []string, prefix string, logger *slog.Logger) (*ZMQSubscriber, error) {
	return nil, ErrZMQUnavailable
}

func (s *ZMQSubscriber) Receive(ctx context.Context) (Message, error) {
	return Message{}, ErrZMQUnavailable
}

func (s *ZMQSubscriber) Close() error { return nil }

// ZMQPublisher stands in for the ZeroMQ publisher when libzmq is not
// linked. It cannot be constructed.
type ZMQPublisher struct{}

// NewZMQPublisher returns ErrZMQUnavailable.
func NewZMQPublisher(endpoint string) (*ZMQPublisher, error) {
	return nil, ErrZMQUnavailable
}

func (p *ZMQPublisher) Publish(ctx context.Context, message Message) error {
	return ErrZMQUnavailable
}

func (p *ZMQPublisher) Close() error { return nil }
