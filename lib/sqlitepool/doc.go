// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens SQLite databases for speedsqueak components.
//
// Both the uploader's event store and the local warehouse sink keep
// their state in SQLite through this package. It wraps
// zombiezen.com/go/sqlite with one set of pragmas so every database in
// the system behaves the same way on a Raspberry Pi SD card and on a
// developer laptop.
//
// Callers [Pool.Take] a connection, perform work, and [Pool.Put] it
// back. Connections are not safe for concurrent use.
//
// # Pragmas
//
//   - journal_mode=WAL: readers never block the single writer.
//   - synchronous: FULL by default. Every committed transaction is
//     fsynced before the commit returns, so an acknowledged write
//     survives power loss. The event store depends on this: the set of
//     captured-but-unsent records cannot be re-derived from anywhere
//     else. [SyncNormal] is available for derived data such as the
//     local warehouse, where losing the last few commits on power
//     failure is acceptable.
//   - busy_timeout=5000: wait for a write lock instead of failing with
//     SQLITE_BUSY.
//   - foreign_keys=OFF, temp_store=MEMORY, cache_size=-8192.
//
// # Usage
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:     "/var/lib/speedsqueak/events.db",
//	    PoolSize: 1,
//	    Logger:   logger,
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        return sqlitex.ExecuteScript(conn, schema, nil)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
package sqlitepool
