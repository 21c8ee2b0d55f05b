// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package objectstore holds the object-store sinks completed
// detections are uploaded to. Every implementation has the same
// contract: Put(ctx, key, data) stores data under key, replacing any
// existing object, and returns an error if the object was not stored.
//
// [Azure] writes block blobs to an Azure Storage container. It is the
// production sink; the container defaults to "images".
//
// [Filesystem] writes files into a local directory with an atomic
// write-then-rename, for bench setups without cloud credentials.
//
// Both record the BLAKE3 [Digest] of the bytes they store so an
// operator can check a blob against the camera's original file.
package objectstore
