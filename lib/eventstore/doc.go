// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventstore is the uploader's durable record of every
// detection it has seen. It is a single SQLite table, events, keyed by
// the detection identifier:
//
//	uuid         TEXT PRIMARY KEY
//	speed_data   TEXT      speed event body, verbatim
//	camera_data  TEXT      camera event body, verbatim
//	uploaded     INTEGER   0 or 1, never reverts
//	created_at   INTEGER   Unix nanoseconds, from the injected clock
//	uploaded_at  INTEGER   Unix nanoseconds, NULL until uploaded
//
// Rows are never deleted. The table doubles as the uploader's only
// bookkeeping for pending work, so the pool is opened with
// synchronous=FULL: a write is on disk before the call returns.
//
// Write ownership is split between callers, not enforced here: the
// correlator creates rows ([Store.InsertSpeed]) and fills in camera
// data ([Store.AttachCamera]); the upload coordinator is the only
// caller of [Store.MarkUploaded].
package eventstore
