// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
)

// Set with -ldflags at build time.
var (
	GitCommit = "unknown"
	GitDirty  = "false"
	BuildTime = "unknown"
	Version   = "0.1.0-dev"
)

// Info returns "<version> (<commit>[-dirty], <build time>)".
func Info() string {
	commit := GitCommit
	if GitDirty == "true" {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (%s, %s)", Version, commit, BuildTime)
}

// Binary returns the --version line for a binary, including the Go
// toolchain and platform.
func Binary(name string) string {
	return fmt.Sprintf("%s %s %s %s/%s", name, Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Print writes the --version line for a binary to stdout.
func Print(name string) {
	fmt.Println(Binary(name))
}
