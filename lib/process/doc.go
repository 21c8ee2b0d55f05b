// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the entrypoint helpers every speedsqueak binary
// uses around its run function: reporting a fatal error before the
// structured logger exists, and turning SIGINT and SIGTERM into context
// cancellation.
package process
