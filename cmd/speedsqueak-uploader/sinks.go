// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/speedsqueak/lib/config"
	"github.com/bureau-foundation/speedsqueak/lib/objectstore"
	"github.com/bureau-foundation/speedsqueak/lib/uploader"
	"github.com/bureau-foundation/speedsqueak/lib/warehouse"
)

func openObjectStore(cfg *config.Config) (uploader.ObjectStore, error) {
	switch cfg.ObjectStore.Kind {
	case config.ObjectStoreAzure:
		return objectstore.NewAzure(cfg.ObjectStore.Azure.ConnectionString, cfg.ObjectStore.Azure.Container)
	case config.ObjectStoreFilesystem:
		return objectstore.NewFilesystem(cfg.ObjectStore.Filesystem.Root)
	default:
		return nil, fmt.Errorf("unknown object store kind %q", cfg.ObjectStore.Kind)
	}
}

// openWarehouse returns the configured warehouse and its close
// function.
func openWarehouse(cfg *config.Config, logger *slog.Logger) (uploader.Warehouse, func() error, error) {
	switch cfg.Warehouse.Kind {
	case config.WarehouseSnowflake:
		snowflake := cfg.Warehouse.Snowflake
		sink, err := warehouse.OpenSnowflake(warehouse.SnowflakeConfig{
			Account:   snowflake.Account,
			User:      snowflake.User,
			Password:  snowflake.Password,
			Database:  snowflake.Database,
			Schema:    snowflake.Schema,
			Warehouse: snowflake.Warehouse,
			Table:     snowflake.Table,
		})
		if err != nil {
			return nil, nil, err
		}
		return sink, sink.Close, nil
	case config.WarehouseSQLite:
		sink, err := warehouse.OpenSQLite(cfg.Warehouse.SQLite.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		return sink, sink.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown warehouse kind %q", cfg.Warehouse.Kind)
	}
}
