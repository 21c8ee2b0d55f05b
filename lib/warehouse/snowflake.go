// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/snowflakedb/gosnowflake"
)

// SnowflakeConfig identifies the Snowflake table rows are inserted
// into. Account, User, and Password are required.
type SnowflakeConfig struct {
	Account  string
	User     string
	Password string

	// Database defaults to "speedsqueak".
	Database string
	// Schema defaults to "public".
	Schema string
	// Warehouse defaults to "COMPUTE_WH".
	Warehouse string
	// Table defaults to "events".
	Table string
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

func (c *SnowflakeConfig) applyDefaults() {
	if c.Database == "" {
		c.Database = "speedsqueak"
	}
	if c.Schema == "" {
		c.Schema = "public"
	}
	if c.Warehouse == "" {
		c.Warehouse = "COMPUTE_WH"
	}
	if c.Table == "" {
		c.Table = "events"
	}
}

func (c SnowflakeConfig) dsn() (string, error) {
	if c.Account == "" || c.User == "" || c.Password == "" {
		return "", fmt.Errorf("warehouse: snowflake account, user, and password are required")
	}
	if !identifierPattern.MatchString(c.Table) {
		return "", fmt.Errorf("warehouse: invalid snowflake table name %q", c.Table)
	}
	return gosnowflake.DSN(&gosnowflake.Config{
		Account:   c.Account,
		User:      c.User,
		Password:  c.Password,
		Database:  c.Database,
		Schema:    c.Schema,
		Warehouse: c.Warehouse,
	})
}

// Snowflake inserts rows into a Snowflake table through database/sql.
type Snowflake struct {
	db     *sql.DB
	insert string
}

// OpenSnowflake prepares a connection pool. The first connection is
// made lazily by the first Insert.
func OpenSnowflake(cfg SnowflakeConfig) (*Snowflake, error) {
	cfg.applyDefaults()
	dsn, err := cfg.dsn()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("warehouse: opening snowflake: %w", err)
	}
	return &Snowflake{
		db:     db,
		insert: "INSERT INTO " + cfg.Table + " (UUID, LOCATION, IMAGE, SPEED, TIMESTAMP) VALUES (?, ?, ?, ?, ?)",
	}, nil
}

// Insert appends one row.
func (s *Snowflake) Insert(ctx context.Context, row Row) error {
	_, err := s.db.ExecContext(ctx, s.insert, row.UUID, row.Location, row.ImageKey, row.Speed, row.Timestamp)
	if err != nil {
		return fmt.Errorf("warehouse: snowflake insert %s: %w", row.UUID, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Snowflake) Close() error {
	return s.db.Close()
}
