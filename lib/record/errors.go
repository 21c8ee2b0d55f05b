// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey reports a speed event for an identifier that
	// already has a record. The existing record is left untouched.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrOrphanUpdate reports a camera event for an identifier with no
	// record. The event is discarded and the association is lost.
	ErrOrphanUpdate = errors.New("orphan update")

	// ErrMalformedPayload reports a bus message whose body is not valid
	// JSON or lacks a required field.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrMissingFile reports that a record's image file could not be
	// read at upload time. The record stays eligible and is retried on
	// every sweep, exactly like a sink failure.
	ErrMissingFile = errors.New("missing image file")
)

// Sink names used in SinkError.
const (
	SinkObjectStore = "object-store"
	SinkWarehouse   = "warehouse"
)

// SinkError is a delivery failure against an external sink. Extract
// it with errors.As:
//
//	var sinkErr *record.SinkError
//	if errors.As(err, &sinkErr) && sinkErr.Sink == record.SinkWarehouse {
//	    ...
//	}
type SinkError struct {
	// Sink is SinkObjectStore or SinkWarehouse.
	Sink string
	// UUID identifies the record being delivered.
	UUID string
	// Err is the underlying I/O or client error.
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("%s delivery of %s failed: %v", e.Sink, e.UUID, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// IsSinkFailure reports whether err is a SinkError for the named sink.
func IsSinkFailure(err error, sink string) bool {
	var sinkErr *SinkError
	if errors.As(err, &sinkErr) {
		return sinkErr.Sink == sink
	}
	return false
}
