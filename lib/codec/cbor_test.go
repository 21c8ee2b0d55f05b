// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
	"time"
)

type statusSample struct {
	Action  string            `cbor:"action"`
	Counts  map[string]int    `cbor:"counts"`
	Started time.Time         `cbor:"started"`
	Labels  map[string]string `cbor:"labels,omitempty"`
}

func TestDeterministicEncoding(t *testing.T) {
	value := statusSample{
		Action: "status",
		Counts: map[string]int{"sent": 3, "new": 1, "ready": 2},
	}
	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 10 {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("encoding the same value produced different bytes")
		}
	}
}

func TestTimeSurvivesEncoding(t *testing.T) {
	started := time.Date(2026, 3, 14, 8, 30, 0, 123456789, time.UTC)
	data, err := Marshal(statusSample{Action: "status", Started: started})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded statusSample
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.Started.Equal(started) {
		t.Errorf("Started = %v, want %v", decoded.Started, started)
	}
}

func TestUntypedMapsUseStringKeys(t *testing.T) {
	data, err := Marshal(map[string]any{"action": "pending"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	fields, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded %T, want map[string]any", decoded)
	}
	if fields["action"] != "pending" {
		t.Errorf("action = %v, want pending", fields["action"])
	}
}

func TestStream(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, action := range []string{"status", "pending"} {
		if err := encoder.Encode(statusSample{Action: action}); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for _, want := range []string{"status", "pending"} {
		var decoded statusSample
		if err := decoder.Decode(&decoded); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if decoded.Action != want {
			t.Errorf("Action = %q, want %q", decoded.Action, want)
		}
	}
}
