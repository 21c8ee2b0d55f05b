// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service is the scaffolding the uploader uses to expose its
// state to operators: a CBOR request/response server on a Unix socket,
// the matching client used by speedsqueak-ctl, and the standard JSON
// logger every long-running binary creates at startup.
//
// Each connection carries one request and one response. A request is a
// CBOR map with an "action" key plus action-specific fields; the
// response is {ok, error, data}. The socket is local only and has no
// authentication; filesystem permissions on its directory decide who
// can reach it.
package service
