// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Speedsqueak-uploader correlates radar speed events with camera
// captures and delivers each completed detection to the object store
// and the warehouse.
//
// It subscribes to the event/ topics on the configured bus and handles
// one message at a time:
//
//   - event/speed creates a record in the event store,
//   - event/camera attaches the photo reference to its record,
//   - event/heartbeat uploads every record that has a photo and has not
//     been uploaded yet.
//
// The event store (paths.database) is the only record of pending work
// and is written with synchronous=FULL.
//
// # Socket API
//
// A Unix socket at paths.status_socket answers CBOR requests:
//
//   - status: record counts per state, the last sweep report, message
//     counters, and uptime.
//   - pending: the records the next sweep will try, oldest first. An
//     optional "limit" field caps the list.
//
// speedsqueak-ctl is the client.
//
// # Shutdown
//
// SIGINT or SIGTERM stops the receive loop. A message being handled,
// including a sweep in progress, is finished before the process exits.
package main
