// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"path/filepath"
	"time"
)

// State is the upload lifecycle position of a Record.
type State int

const (
	// StateNew has a speed payload and no camera payload.
	StateNew State = iota
	// StateReady has both payloads and has not been uploaded.
	StateReady
	// StateSent has been uploaded to the object store. Terminal.
	StateSent
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateReady:
		return "READY"
	case StateSent:
		return "SENT"
	default:
		return "UNKNOWN"
	}
}

// Record is the durable aggregate for one detection.
type Record struct {
	// UUID is the detection identifier assigned by the radar. Opaque
	// and immutable.
	UUID string

	// Speed is nil only for records read back from a store that was
	// written by something other than the correlator.
	Speed *SpeedPayload

	// Camera is nil until the matching camera event arrives.
	Camera *CameraPayload

	// Uploaded moves from false to true exactly once, after the image
	// reaches the object store.
	Uploaded bool

	// CreatedAt is when the speed event was ingested.
	CreatedAt time.Time

	// UploadedAt is zero until Uploaded is set.
	UploadedAt time.Time
}

// State derives the lifecycle state from the record's fields.
func (r *Record) State() State {
	switch {
	case r.Uploaded:
		return StateSent
	case r.Camera != nil && r.Camera.FilePath != "":
		return StateReady
	default:
		return StateNew
	}
}

// Eligible reports whether the next sweep should attempt delivery: a
// camera file reference is present and the record is not uploaded.
func (r *Record) Eligible() bool {
	return r.State() == StateReady
}

// ImageKey returns the object-store key for a detection's photo.
func ImageKey(uuid string) string {
	return uuid + ".jpg"
}

// ResolveImagePath turns a camera file reference into a local path.
// Absolute references are returned unchanged; relative ones are joined
// to imageDir, the camera service's working directory.
func ResolveImagePath(imageDir, reference string) string {
	if filepath.IsAbs(reference) || imageDir == "" {
		return reference
	}
	return filepath.Join(imageDir, reference)
}
