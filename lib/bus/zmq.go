// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build zmq

package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"syscall"
	"time"

	"github.com/pebbe/zmq4"
)

// pollInterval bounds how long Receive waits before rechecking ctx
// and Close.
const pollInterval = 250 * time.Millisecond

// ZMQSubscriber is a SUB socket connected to one or more publishers.
type ZMQSubscriber struct {
	// socketMutex serializes use of the socket, which ZeroMQ does not
	// allow from two threads at once.
	socketMutex sync.Mutex
	socket      *zmq4.Socket
	poller      *zmq4.Poller
	closed      bool
}

// NewZMQSubscriber connects a SUB socket to every endpoint and
// subscribes to prefix. Connecting does not wait for the publishers to
// be up; ZeroMQ reconnects in the background.
func NewZMQSubscriber(endpoints []string, prefix string, logger *slog.Logger) (*ZMQSubscriber, error) {
	if len(endpoints) == 0 {
		endpoints = DefaultZMQEndpoints
	}
	socket, err := zmq4.NewSocket(zmq4.SUB)
	if err != nil {
		return nil, fmt.Errorf("bus: zmq socket: %w", err)
	}
	for _, endpoint := range endpoints {
		if err := socket.Connect(endpoint); err != nil {
			socket.Close()
			return nil, fmt.Errorf("bus: zmq connect %s: %w", endpoint, err)
		}
		if logger != nil {
			logger.Info("zmq subscriber connected", "endpoint", endpoint)
		}
	}
	if err := socket.SetSubscribe(prefix); err != nil {
		socket.Close()
		return nil, fmt.Errorf("bus: zmq subscribe %q: %w", prefix, err)
	}

	poller := zmq4.NewPoller()
	poller.Add(socket, zmq4.POLLIN)
	return &ZMQSubscriber{socket: socket, poller: poller}, nil
}

// Receive waits for the next frame and parses it.
func (s *ZMQSubscriber) Receive(ctx context.Context) (Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Message{}, err
		}
		frame, ready, err := s.poll()
		if err != nil {
			return Message{}, err
		}
		if ready {
			return Parse(frame)
		}
	}
}

func (s *ZMQSubscriber) poll() ([]byte, bool, error) {
	s.socketMutex.Lock()
	defer s.socketMutex.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	polled, err := s.poller.Poll(pollInterval)
	if err != nil {
		if zmq4.AsErrno(err) == zmq4.Errno(syscall.EINTR) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("bus: zmq poll: %w", err)
	}
	if len(polled) == 0 {
		return nil, false, nil
	}
	frame, err := s.socket.RecvBytes(zmq4.DONTWAIT)
	if err != nil {
		if zmq4.AsErrno(err) == zmq4.Errno(syscall.EAGAIN) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("bus: zmq receive: %w", err)
	}
	return frame, true, nil
}

// Close closes the socket. A blocked Receive returns ErrClosed within
// one poll interval.
func (s *ZMQSubscriber) Close() error {
	s.socketMutex.Lock()
	defer s.socketMutex.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.socket.Close()
}

// ZMQPublisher is a bound PUB socket.
type ZMQPublisher struct {
	mutex  sync.Mutex
	socket *zmq4.Socket
	closed bool
}

// NewZMQPublisher binds a PUB socket to endpoint, for example
// "tcp://*:11207".
func NewZMQPublisher(endpoint string) (*ZMQPublisher, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("bus: zmq publisher needs a bind endpoint")
	}
	socket, err := zmq4.NewSocket(zmq4.PUB)
	if err != nil {
		return nil, fmt.Errorf("bus: zmq socket: %w", err)
	}
	if err := socket.Bind(endpoint); err != nil {
		socket.Close()
		return nil, fmt.Errorf("bus: zmq bind %s: %w", endpoint, err)
	}
	return &ZMQPublisher{socket: socket}, nil
}

// Publish sends one frame. PUB sockets never block: with no connected
// subscriber the frame is dropped.
func (p *ZMQPublisher) Publish(ctx context.Context, message Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return ErrClosed
	}
	if _, err := p.socket.SendBytes(Format(message), 0); err != nil {
		return fmt.Errorf("bus: zmq send %s: %w", message.Topic, err)
	}
	return nil
}

func (p *ZMQPublisher) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.socket.Close()
}
