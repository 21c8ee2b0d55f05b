// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for speedsqueak
// packages.
//
// [LogRecorder] is a slog.Handler that keeps every record so tests can
// assert on the exact number of warnings a code path emits, for
// example that a camera event for an unknown detection logs exactly
// one warning.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so tests never hang on a channel that is not fed.
//
// [SocketDir] creates a short temporary directory for Unix sockets,
// whose paths are limited to 108 bytes.
//
// All helpers call t.Fatalf on failure.
package testutil
