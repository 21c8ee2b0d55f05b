// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		topic string
		body  string
	}{
		{"speed", `event/speed {"uuid":"a","reading":42}`, TopicSpeed, `{"uuid":"a","reading":42}`},
		{"body with spaces", `event/camera {"uuid": "a", "filepath": "x y.jpg"}`, TopicCamera, `{"uuid": "a", "filepath": "x y.jpg"}`},
		{"heartbeat text", `event/heartbeat Welcome to Costco, I love you.`, TopicHeartbeat, `Welcome to Costco, I love you.`},
		{"no body", `event/heartbeat`, TopicHeartbeat, ``},
		{"empty body", `event/heartbeat `, TopicHeartbeat, ``},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			message, err := Parse([]byte(test.frame))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if message.Topic != test.topic {
				t.Errorf("Topic = %q, want %q", message.Topic, test.topic)
			}
			if string(message.Body) != test.body {
				t.Errorf("Body = %q, want %q", message.Body, test.body)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, frame := range []string{"", " {\"uuid\":\"a\"}"} {
		if _, err := Parse([]byte(frame)); !errors.Is(err, ErrMalformedFrame) {
			t.Errorf("Parse(%q) error = %v, want ErrMalformedFrame", frame, err)
		}
	}
}

func TestFormatParse(t *testing.T) {
	original := Message{Topic: TopicSpeed, Body: []byte(`{"uuid":"a"}`)}
	frame := Format(original)
	if string(frame) != `event/speed {"uuid":"a"}` {
		t.Errorf("Format = %q", frame)
	}
	parsed, err := Parse(frame)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Topic != original.Topic || string(parsed.Body) != string(original.Body) {
		t.Errorf("parsed %+v, want %+v", parsed, original)
	}
}

func TestKafkaTopicMapping(t *testing.T) {
	if got := KafkaTopic(TopicCamera); got != "event.camera" {
		t.Errorf("KafkaTopic = %q, want event.camera", got)
	}
	if got := BusTopic("event.camera"); got != TopicCamera {
		t.Errorf("BusTopic = %q, want %q", got, TopicCamera)
	}
}

func TestOpenUnknownTransport(t *testing.T) {
	if _, err := OpenPublisher(Options{Transport: "carrier-pigeon"}, ""); err == nil {
		t.Error("OpenPublisher accepted an unknown transport")
	}
}
