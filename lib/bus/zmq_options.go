// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import "errors"

// ErrZMQUnavailable is returned by the ZeroMQ constructors in a binary
// built without the zmq tag.
var ErrZMQUnavailable = errors.New("bus: zmq transport not compiled in (build with -tags zmq)")

// Default endpoints of the radar, camera, and heartbeat publishers.
var DefaultZMQEndpoints = []string{
	"tcp://localhost:11205",
	"tcp://localhost:11206",
	"tcp://localhost:11207",
}

// ZMQOptions configures the ZeroMQ transport.
type ZMQOptions struct {
	// Endpoints the subscriber connects to. Defaults to
	// DefaultZMQEndpoints.
	Endpoints []string
}
