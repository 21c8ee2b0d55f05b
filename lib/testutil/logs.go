// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// LogRecorder is a slog.Handler that records every log record at or
// above Debug. Handlers derived with WithAttrs or WithGroup share the
// same record list.
type LogRecorder struct {
	state *recorderState
	attrs []slog.Attr
}

type recorderState struct {
	mu      sync.Mutex
	records []slog.Record
}

// NewLogger returns a logger writing to a new LogRecorder, and the
// recorder.
func NewLogger() (*slog.Logger, *LogRecorder) {
	recorder := &LogRecorder{state: &recorderState{}}
	return slog.New(recorder), recorder
}

func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *LogRecorder) Handle(_ context.Context, record slog.Record) error {
	record = record.Clone()
	record.AddAttrs(r.attrs...)
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.records = append(r.state.records, record)
	return nil
}

func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	combined := make([]slog.Attr, 0, len(r.attrs)+len(attrs))
	combined = append(combined, r.attrs...)
	combined = append(combined, attrs...)
	return &LogRecorder{state: r.state, attrs: combined}
}

// WithGroup is not needed by speedsqueak code; groups are flattened.
func (r *LogRecorder) WithGroup(string) slog.Handler { return r }

// Records returns a copy of the records logged so far.
func (r *LogRecorder) Records() []slog.Record {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	return append([]slog.Record(nil), r.state.records...)
}

// Count returns how many records were logged at exactly level.
func (r *LogRecorder) Count(level slog.Level) int {
	count := 0
	for _, record := range r.Records() {
		if record.Level == level {
			count++
		}
	}
	return count
}

// Messages returns the messages of records logged at exactly level.
func (r *LogRecorder) Messages(level slog.Level) []string {
	var messages []string
	for _, record := range r.Records() {
		if record.Level == level {
			messages = append(messages, record.Message)
		}
	}
	return messages
}

// Attr returns the value of the named attribute on record, and whether
// it was present.
func Attr(record slog.Record, key string) (slog.Value, bool) {
	var found slog.Value
	var ok bool
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == key {
			found, ok = attr.Value, true
			return false
		}
		return true
	})
	return found, ok
}
