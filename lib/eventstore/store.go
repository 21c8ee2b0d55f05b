// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/speedsqueak/lib/clock"
	"github.com/bureau-foundation/speedsqueak/lib/record"
	"github.com/bureau-foundation/speedsqueak/lib/sqlitepool"
)

// ErrNotFound is returned by Get when no record has the identifier.
var ErrNotFound = errors.New("eventstore: record not found")

const schema = `
	CREATE TABLE IF NOT EXISTS events (
		uuid        TEXT PRIMARY KEY,
		speed_data  TEXT,
		camera_data TEXT,
		uploaded    INTEGER NOT NULL DEFAULT 0,
		created_at  INTEGER NOT NULL DEFAULT 0,
		uploaded_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_events_pending ON events(uploaded, created_at);
`

// recordColumns is the column list every record query selects, in the
// order scanRecord expects.
const recordColumns = `uuid, speed_data, camera_data, uploaded, created_at, uploaded_at`

// eligibleCondition selects rows with a camera file reference that have
// not been uploaded. Rows without camera data yield NULL from
// json_extract and are excluded.
const eligibleCondition = `json_extract(camera_data, '$.filepath') != '' AND uploaded = 0`

// Store is the durable events table.
type Store struct {
	pool   *sqlitepool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

// Config holds the parameters for opening a Store.
type Config struct {
	// Path is the SQLite database file. The parent directory must
	// exist.
	Path string

	// PoolSize defaults to 2: one connection for the dispatch loop and
	// one for concurrent status queries.
	PoolSize int

	// Clock stamps created_at and uploaded_at.
	Clock clock.Clock

	// Logger receives operational messages.
	Logger *slog.Logger
}

// Counts is the number of records in each state.
type Counts struct {
	New   int `cbor:"new"`
	Ready int `cbor:"ready"`
	Sent  int `cbor:"sent"`
}

// Total returns the number of records in the store.
func (c Counts) Total() int {
	return c.New + c.Ready + c.Sent
}

// Open opens or creates the events database.
func Open(cfg Config) (*Store, error) {
	if cfg.Clock == nil {
		return nil, fmt.Errorf("eventstore: Clock is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("eventstore: Logger is required")
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:        cfg.Path,
		PoolSize:    cfg.PoolSize,
		Synchronous: sqlitepool.SyncFull,
		Logger:      cfg.Logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("eventstore: %w", err)
	}

	return &Store{
		pool:   pool,
		clock:  cfg.Clock,
		logger: cfg.Logger,
	}, nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// InsertSpeed creates a NEW record from a speed event. If a record
// with the same identifier exists, nothing is written and the error
// wraps record.ErrDuplicateKey. A duplicate never overwrites a row,
// uploaded or not.
func (s *Store) InsertSpeed(ctx context.Context, payload *record.SpeedPayload) (*record.Record, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("eventstore: insert speed: %w", err)
	}
	defer s.pool.Put(conn)

	now := s.clock.Now()
	err = sqlitex.Execute(conn, `
		INSERT INTO events (uuid, speed_data, uploaded, created_at)
		VALUES (?, ?, 0, ?)
		ON CONFLICT(uuid) DO NOTHING`, &sqlitex.ExecOptions{
		Args: []any{payload.UUID, payload.Body, now.UnixNano()},
	})
	if err != nil {
		return nil, fmt.Errorf("eventstore: insert speed %s: %w", payload.UUID, err)
	}
	if conn.Changes() == 0 {
		return nil, fmt.Errorf("eventstore: insert speed %s: %w", payload.UUID, record.ErrDuplicateKey)
	}

	return &record.Record{
		UUID:      payload.UUID,
		Speed:     payload,
		CreatedAt: now,
	}, nil
}

// AttachCamera stores a camera event on the existing record with the
// same identifier. If there is no such record, nothing is written and
// the error wraps record.ErrOrphanUpdate.
//
// A second camera event for the same record replaces the first. For an
// already uploaded record the new body is stored but the record stays
// SENT.
func (s *Store) AttachCamera(ctx context.Context, payload *record.CameraPayload) (*record.Record, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("eventstore: attach camera: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `UPDATE events SET camera_data = ? WHERE uuid = ?`, &sqlitex.ExecOptions{
		Args: []any{payload.Body, payload.UUID},
	})
	if err != nil {
		return nil, fmt.Errorf("eventstore: attach camera %s: %w", payload.UUID, err)
	}
	if conn.Changes() == 0 {
		return nil, fmt.Errorf("eventstore: attach camera %s: %w", payload.UUID, record.ErrOrphanUpdate)
	}

	return s.get(conn, payload.UUID)
}

// MarkUploaded sets uploaded=true. This is the only transition the
// flag makes; marking an already uploaded record is a no-op and does
// not call beforeCommit. Returns ErrNotFound if the record does not
// exist.
//
// If beforeCommit is non-nil it runs after the update and before the
// commit. The upload coordinator inserts the warehouse row there, so a
// crash before the commit leaves the record eligible and the whole
// delivery, warehouse row included, is repeated on the next sweep.
func (s *Store) MarkUploaded(ctx context.Context, uuid string, beforeCommit func()) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("eventstore: mark uploaded: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("eventstore: mark uploaded %s: begin transaction: %w", uuid, err)
	}
	defer endTransaction(&err)

	err = sqlitex.Execute(conn, `
		UPDATE events SET uploaded = 1, uploaded_at = ?
		WHERE uuid = ? AND uploaded = 0`, &sqlitex.ExecOptions{
		Args: []any{s.clock.Now().UnixNano(), uuid},
	})
	if err != nil {
		return fmt.Errorf("eventstore: mark uploaded %s: %w", uuid, err)
	}
	if conn.Changes() == 0 {
		_, err = s.get(conn, uuid)
		return err
	}

	if beforeCommit != nil {
		beforeCommit()
	}
	return nil
}

// Get returns the record with the given identifier, or ErrNotFound.
func (s *Store) Get(ctx context.Context, uuid string) (*record.Record, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("eventstore: get: %w", err)
	}
	defer s.pool.Put(conn)

	return s.get(conn, uuid)
}

func (s *Store) get(conn *sqlite.Conn, uuid string) (*record.Record, error) {
	var found *record.Record
	err := sqlitex.Execute(conn, `SELECT `+recordColumns+` FROM events WHERE uuid = ?`, &sqlitex.ExecOptions{
		Args: []any{uuid},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = s.scanRecord(stmt)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("eventstore: get %s: %w", uuid, err)
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	return found, nil
}

// Eligible returns every record with a camera file reference that has
// not been uploaded, oldest first. Ties on created_at are broken by
// insertion order.
func (s *Store) Eligible(ctx context.Context) ([]record.Record, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("eventstore: eligible: %w", err)
	}
	defer s.pool.Put(conn)

	var records []record.Record
	err = sqlitex.Execute(conn, `
		SELECT `+recordColumns+` FROM events
		WHERE `+eligibleCondition+`
		ORDER BY created_at, rowid`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			records = append(records, *s.scanRecord(stmt))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("eventstore: eligible: %w", err)
	}
	return records, nil
}

// Counts returns the number of records in each state.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("eventstore: counts: %w", err)
	}
	defer s.pool.Put(conn)

	var total int
	var counts Counts
	err = sqlitex.Execute(conn, `
		SELECT
			count(*),
			coalesce(sum(uploaded = 1), 0),
			coalesce(sum(`+eligibleCondition+`), 0)
		FROM events`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			total = stmt.ColumnInt(0)
			counts.Sent = stmt.ColumnInt(1)
			counts.Ready = stmt.ColumnInt(2)
			return nil
		},
	})
	if err != nil {
		return Counts{}, fmt.Errorf("eventstore: counts: %w", err)
	}
	counts.New = total - counts.Sent - counts.Ready
	return counts, nil
}

// scanRecord builds a Record from a row selected with recordColumns.
// Stored bodies were validated on ingest; one that no longer parses is
// logged and left nil rather than failing the whole query.
func (s *Store) scanRecord(stmt *sqlite.Stmt) *record.Record {
	found := &record.Record{
		UUID:      stmt.ColumnText(0),
		Uploaded:  stmt.ColumnInt(3) != 0,
		CreatedAt: time.Unix(0, stmt.ColumnInt64(4)),
	}

	if stmt.ColumnType(1) != sqlite.TypeNull {
		speed, err := record.ParseSpeed([]byte(stmt.ColumnText(1)))
		if err != nil {
			s.logger.Warn("stored speed data unreadable", "uuid", found.UUID, "error", err)
		} else {
			found.Speed = speed
		}
	}
	if stmt.ColumnType(2) != sqlite.TypeNull {
		camera, err := record.ParseCamera([]byte(stmt.ColumnText(2)))
		if err != nil {
			s.logger.Warn("stored camera data unreadable", "uuid", found.UUID, "error", err)
		} else {
			found.Camera = camera
		}
	}
	if stmt.ColumnType(5) != sqlite.TypeNull {
		found.UploadedAt = time.Unix(0, stmt.ColumnInt64(5))
	}
	return found
}
