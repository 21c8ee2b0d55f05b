// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Speedsqueak-heartbeat publishes event/heartbeat on a fixed interval
// (heartbeat.interval, 60s by default). Each heartbeat makes the
// uploader run one delivery sweep. The body is heartbeat.message; the
// uploader ignores it.
//
// The first heartbeat is sent at startup. On the zmq transport the
// process binds bus.zmq.bind, which the uploader's subscriber connects
// to.
package main
