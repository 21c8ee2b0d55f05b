// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package warehouse holds the analytics sinks a completed detection is
// recorded in. A warehouse is append-only: Insert adds one [Row] per
// call and never updates or deduplicates, so delivering the same
// detection twice yields two rows.
//
// [Snowflake] is the production sink. It inserts into a table with the
// columns UUID, LOCATION, IMAGE, SPEED, TIMESTAMP.
//
// [SQLite] is a local table with the same columns, for bench setups
// and tests.
package warehouse
