// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the CBOR configuration shared by the status socket
// server and its clients.
//
// Operator-facing output (logs, ctl) is JSON or text; CBOR is used only
// on the Unix socket between speedsqueak-ctl and the uploader. Encoding
// is Core Deterministic (RFC 8949 §4.2), so equal values encode to
// equal bytes.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Streams, one value after another on a connection:
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
package codec
