// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// NewLogger creates the JSON logger for a long-running binary and makes
// it the slog default. Every record carries service=name. If logFile is
// set, records also go to that file, which is opened for append. The
// returned close function closes the file.
func NewLogger(name string, level slog.Level, logFile string) (*slog.Logger, func() error, error) {
	var output io.Writer = os.Stderr
	closeFile := func() error { return nil }

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		output = io.MultiWriter(os.Stderr, file)
		closeFile = file.Close
	}

	logger := newLogger(output, name, level)
	slog.SetDefault(logger)
	return logger, closeFile, nil
}

func newLogger(output io.Writer, name string, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: level,
	})).With("service", name)
}
