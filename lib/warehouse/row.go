// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package warehouse

// Row is one completed detection as recorded in the warehouse. The
// warehouse is append-only: inserting the same UUID twice produces two
// rows.
type Row struct {
	UUID      string
	Location  string
	ImageKey  string
	Speed     float64
	Timestamp string
}
