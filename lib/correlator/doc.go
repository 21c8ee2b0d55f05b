// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package correlator joins speed and camera events into one record per
// detection and triggers delivery on each heartbeat.
//
// Events arrive in any order on three topics:
//
//   - event/speed creates the record. A second speed event for the same
//     identifier is a duplicate: it is logged and dropped, and the
//     stored record is not touched.
//   - event/camera attaches the photo reference to an existing record.
//     With no record to attach to, the event is an orphan: it is logged
//     once at warning level and dropped for good.
//   - event/heartbeat runs one upload sweep. Its body is ignored.
//
// A body that is not the expected JSON is logged and dropped; it never
// stops the loop. [Correlator.Run] handles one message at a time, so a
// sweep finishes before the next message is read.
package correlator
