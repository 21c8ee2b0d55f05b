// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Speedsqueak-ctl is the operator CLI for a running uploader and a
// bench tool for driving it without hardware.
//
//	speedsqueak-ctl status                 record counts and the last sweep
//	speedsqueak-ctl pending [--limit N]    records waiting for upload
//	speedsqueak-ctl emit speed [--reading 42.5] [--uuid U]
//	speedsqueak-ctl emit camera --uuid U --filepath capture_U.jpg
//	speedsqueak-ctl emit heartbeat
//
// status and pending query the uploader's status socket and print
// JSON. emit publishes one synthetic event on the configured bus; a
// speed event without --uuid gets a fresh random identifier, which is
// printed so a camera event can follow it.
//
// On the zmq transport emit binds the endpoint the real producer would
// use (11205 speed, 11206 camera, 11207 heartbeat), so it cannot run
// while that producer is up.
package main
