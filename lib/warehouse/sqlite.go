// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package warehouse

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/speedsqueak/lib/sqlitepool"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS detections (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid      TEXT NOT NULL,
		location  TEXT NOT NULL,
		image     TEXT NOT NULL,
		speed     REAL NOT NULL,
		timestamp TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_detections_uuid ON detections(uuid);
`

// SQLite is a warehouse table in a local SQLite database. It is a
// separate database from the event store.
type SQLite struct {
	pool *sqlitepool.Pool
}

// OpenSQLite opens or creates the warehouse database at path.
func OpenSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:        path,
		PoolSize:    1,
		Synchronous: sqlitepool.SyncNormal,
		Logger:      logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, sqliteSchema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("warehouse: %w", err)
	}
	return &SQLite{pool: pool}, nil
}

// Insert appends one row.
func (s *SQLite) Insert(ctx context.Context, row Row) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("warehouse: insert: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT INTO detections (uuid, location, image, speed, timestamp)
		VALUES (?, ?, ?, ?, ?)`, &sqlitex.ExecOptions{
		Args: []any{row.UUID, row.Location, row.ImageKey, row.Speed, row.Timestamp},
	})
	if err != nil {
		return fmt.Errorf("warehouse: insert %s: %w", row.UUID, err)
	}
	return nil
}

// Rows returns every row for uuid in insertion order. An empty uuid
// returns all rows.
func (s *SQLite) Rows(ctx context.Context, uuid string) ([]Row, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("warehouse: rows: %w", err)
	}
	defer s.pool.Put(conn)

	var rows []Row
	err = sqlitex.Execute(conn, `
		SELECT uuid, location, image, speed, timestamp FROM detections
		WHERE ?1 = '' OR uuid = ?1
		ORDER BY id`, &sqlitex.ExecOptions{
		Args: []any{uuid},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			rows = append(rows, Row{
				UUID:      stmt.ColumnText(0),
				Location:  stmt.ColumnText(1),
				ImageKey:  stmt.ColumnText(2),
				Speed:     stmt.ColumnFloat(3),
				Timestamp: stmt.ColumnText(4),
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("warehouse: rows: %w", err)
	}
	return rows, nil
}

// Close closes the underlying pool.
func (s *SQLite) Close() error {
	return s.pool.Close()
}
