// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package record defines the per-detection aggregate that joins a radar
// speed reading with the photo the camera took of the same vehicle.
//
// A [Record] is keyed by the opaque identifier the radar assigns to
// each detection. It moves through three states:
//
//	NEW    speed payload only
//	READY  speed and camera payloads, not yet uploaded
//	SENT   uploaded to the object store (terminal)
//
// A NEW record whose camera event never arrives stays NEW forever.
// There is no expiry.
//
// The package also owns the wire payloads carried on the bus
// ([SpeedPayload], [CameraPayload]) and the error conditions every
// other component reports: [ErrDuplicateKey], [ErrOrphanUpdate],
// [ErrMalformedPayload], [ErrMissingFile], and [SinkError]. Callers
// distinguish them with errors.Is and errors.As.
package record
