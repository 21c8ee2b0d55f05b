// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// Topics used by the detection pipeline.
const (
	TopicPrefix    = "event/"
	TopicSpeed     = "event/speed"
	TopicCamera    = "event/camera"
	TopicHeartbeat = "event/heartbeat"
)

var (
	// ErrClosed is returned by Receive and Publish after Close.
	ErrClosed = errors.New("bus: closed")

	// ErrMalformedFrame is returned by Parse, and by Receive on text
	// transports, for a frame with no topic. The frame is consumed;
	// the next Receive reads the following one.
	ErrMalformedFrame = errors.New("bus: malformed frame")
)

// Message is one bus message.
type Message struct {
	Topic string
	Body  []byte
}

// Parse splits a wire frame at the first space. A frame with no space
// is a topic with an empty body.
func Parse(frame []byte) (Message, error) {
	topic, body, _ := bytes.Cut(frame, []byte(" "))
	if len(topic) == 0 {
		return Message{}, fmt.Errorf("%w: %q", ErrMalformedFrame, truncate(frame, 64))
	}
	return Message{Topic: string(topic), Body: body}, nil
}

// Format returns the wire frame for m.
func Format(m Message) []byte {
	frame := make([]byte, 0, len(m.Topic)+1+len(m.Body))
	frame = append(frame, m.Topic...)
	frame = append(frame, ' ')
	return append(frame, m.Body...)
}

// HasPrefix reports whether topic matches a subscription prefix. An
// empty prefix matches every topic.
func HasPrefix(topic, prefix string) bool {
	return strings.HasPrefix(topic, prefix)
}

func truncate(data []byte, limit int) []byte {
	if len(data) <= limit {
		return data
	}
	return data[:limit]
}
