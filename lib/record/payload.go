// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// SpeedPayload is the body of an event/speed message as published by
// the radar adapter. Only UUID, Timestamp, and Reading are required;
// the adapter also sends direction, units, and the raw sensor line.
type SpeedPayload struct {
	UUID      string  `json:"uuid"`
	Timestamp string  `json:"timestamp"`
	Reading   float64 `json:"reading"`
	Direction string  `json:"direction,omitempty"`
	Units     string  `json:"units,omitempty"`

	// Body is the message body exactly as received. The store keeps
	// it verbatim so fields this package does not model survive.
	Body string `json:"-"`
}

// CameraPayload is the body of an event/camera message.
type CameraPayload struct {
	UUID     string `json:"uuid"`
	FilePath string `json:"filepath"`

	// Body is the message body exactly as received.
	Body string `json:"-"`
}

// ParseSpeed decodes an event/speed body. Any structural problem is
// reported as ErrMalformedPayload so the caller can discard the single
// message and keep running.
func ParseSpeed(body []byte) (*SpeedPayload, error) {
	fields, err := objectFields(body, "speed", "uuid", "timestamp", "reading")
	if err != nil {
		return nil, err
	}

	uuid, err := requireString(fields[0], "speed", "uuid")
	if err != nil {
		return nil, err
	}
	timestamp, err := requireString(fields[1], "speed", "timestamp")
	if err != nil {
		return nil, err
	}
	if fields[2].Type != gjson.Number {
		return nil, fmt.Errorf("%w: speed event: field %q must be a number", ErrMalformedPayload, "reading")
	}

	result := gjson.GetManyBytes(body, "direction", "units")
	return &SpeedPayload{
		UUID:      uuid,
		Timestamp: timestamp,
		Reading:   fields[2].Float(),
		Direction: result[0].String(),
		Units:     result[1].String(),
		Body:      string(body),
	}, nil
}

// ParseCamera decodes an event/camera body. An empty filepath is
// malformed: a camera event without a file cannot make a record
// eligible.
func ParseCamera(body []byte) (*CameraPayload, error) {
	fields, err := objectFields(body, "camera", "uuid", "filepath")
	if err != nil {
		return nil, err
	}

	uuid, err := requireString(fields[0], "camera", "uuid")
	if err != nil {
		return nil, err
	}
	filePath, err := requireString(fields[1], "camera", "filepath")
	if err != nil {
		return nil, err
	}

	return &CameraPayload{
		UUID:     uuid,
		FilePath: filePath,
		Body:     string(body),
	}, nil
}

// Marshal encodes the payload for publishing on the bus.
func (p *SpeedPayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// Marshal encodes the payload for publishing on the bus.
func (p *CameraPayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

func objectFields(body []byte, kind string, paths ...string) ([]gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s event: body is not valid JSON", ErrMalformedPayload, kind)
	}
	if !gjson.ParseBytes(body).IsObject() {
		return nil, fmt.Errorf("%w: %s event: body is not a JSON object", ErrMalformedPayload, kind)
	}
	return gjson.GetManyBytes(body, paths...), nil
}

func requireString(result gjson.Result, kind, field string) (string, error) {
	if !result.Exists() {
		return "", fmt.Errorf("%w: %s event: missing field %q", ErrMalformedPayload, kind, field)
	}
	if result.Type != gjson.String {
		return "", fmt.Errorf("%w: %s event: field %q must be a string", ErrMalformedPayload, kind, field)
	}
	if result.Str == "" {
		return "", fmt.Errorf("%w: %s event: field %q is empty", ErrMalformedPayload, kind, field)
	}
	return result.Str, nil
}
