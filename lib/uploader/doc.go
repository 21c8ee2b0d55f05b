// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package uploader delivers completed detections to the object store
// and the warehouse.
//
// A [Coordinator] runs one sweep per heartbeat. A sweep reads every
// eligible record (camera file present, not uploaded) in creation
// order and, for each one:
//
//  1. reads the image file the camera event refers to,
//  2. puts the bytes in the object store under "<uuid>.jpg",
//     overwriting any existing object,
//  3. marks the record uploaded,
//  4. appends a row to the warehouse.
//
// Only step 2 gates the uploaded flag. If the file cannot be read or
// the put fails, the record is left as it was and the next heartbeat
// tries again; there is no backoff, attempt limit, or dead-letter path.
// Because the put overwrites, repeating it for a record whose earlier
// attempt partly succeeded is harmless.
//
// The warehouse is best-effort relative to the object store. Its
// failures are logged and counted but never retried, and they never
// clear the uploaded flag. Steps 3 and 4 share one store transaction:
// the warehouse insert runs after the update and before the commit. A
// crash before the commit leaves the record eligible, so the next sweep
// uploads the image again and inserts a second warehouse row. The
// warehouse does not deduplicate; that duplicate is accepted.
//
// Each record gets at most one delivery attempt per sweep.
package uploader
