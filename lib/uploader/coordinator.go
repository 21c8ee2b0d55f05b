// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package uploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bureau-foundation/speedsqueak/lib/clock"
	"github.com/bureau-foundation/speedsqueak/lib/objectstore"
	"github.com/bureau-foundation/speedsqueak/lib/record"
	"github.com/bureau-foundation/speedsqueak/lib/warehouse"
)

// DefaultLocation is the location label written to warehouse rows when
// none is configured.
const DefaultLocation = "speedsqueak3"

// Store is the part of the event store a sweep needs.
type Store interface {
	Eligible(ctx context.Context) ([]record.Record, error)
	MarkUploaded(ctx context.Context, uuid string, beforeCommit func()) error
}

// ObjectStore stores bytes under a key, replacing any existing object.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
}

// Warehouse appends one row per call. It does not deduplicate.
type Warehouse interface {
	Insert(ctx context.Context, row warehouse.Row) error
}

// Config holds a Coordinator's dependencies.
type Config struct {
	Store       Store
	ObjectStore ObjectStore
	Warehouse   Warehouse

	// Location is the label written to every warehouse row. Defaults
	// to DefaultLocation.
	Location string

	// ImageDir is the directory relative camera file references are
	// resolved against.
	ImageDir string

	Clock  clock.Clock
	Logger *slog.Logger

	// ReadFile reads an image file. Defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
}

// SweepReport summarizes one sweep.
type SweepReport struct {
	StartedAt time.Time     `cbor:"started_at"`
	Duration  time.Duration `cbor:"duration"`

	// Eligible is the number of records the sweep found to deliver.
	Eligible int `cbor:"eligible"`

	// Uploaded is the number of records whose uploaded flag was set.
	Uploaded int `cbor:"uploaded"`

	MissingFiles        int `cbor:"missing_files"`
	ObjectStoreFailures int `cbor:"object_store_failures"`
	WarehouseFailures   int `cbor:"warehouse_failures"`

	// MarkFailures counts records whose object was stored but whose
	// uploaded flag could not be committed. They stay eligible.
	MarkFailures int `cbor:"mark_failures"`
}

// Pending is the number of records the sweep left eligible.
func (r SweepReport) Pending() int {
	return r.Eligible - r.Uploaded
}

// Coordinator delivers eligible records to the object store and the
// warehouse. Sweeps are serialized: a Sweep call waits for any sweep
// already running.
type Coordinator struct {
	store       Store
	objectStore ObjectStore
	warehouse   Warehouse
	location    string
	imageDir    string
	clock       clock.Clock
	logger      *slog.Logger
	readFile    func(string) ([]byte, error)

	sweepMutex sync.Mutex

	reportMutex sync.Mutex
	lastReport  *SweepReport
	sweeps      int
}

// New validates cfg and returns a Coordinator.
func New(cfg Config) (*Coordinator, error) {
	var problems []error
	if cfg.Store == nil {
		problems = append(problems, errors.New("Store is required"))
	}
	if cfg.ObjectStore == nil {
		problems = append(problems, errors.New("ObjectStore is required"))
	}
	if cfg.Warehouse == nil {
		problems = append(problems, errors.New("Warehouse is required"))
	}
	if cfg.Clock == nil {
		problems = append(problems, errors.New("Clock is required"))
	}
	if cfg.Logger == nil {
		problems = append(problems, errors.New("Logger is required"))
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("uploader: %w", errors.Join(problems...))
	}

	location := cfg.Location
	if location == "" {
		location = DefaultLocation
	}
	readFile := cfg.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	return &Coordinator{
		store:       cfg.Store,
		objectStore: cfg.ObjectStore,
		warehouse:   cfg.Warehouse,
		location:    location,
		imageDir:    cfg.ImageDir,
		clock:       cfg.Clock,
		logger:      cfg.Logger,
		readFile:    readFile,
	}, nil
}

// Sweep makes one delivery attempt for every record that is eligible
// when the sweep starts, oldest first. Per-record failures are logged
// and counted in the report; the returned error is non-nil only when
// the eligible records could not be listed.
func (c *Coordinator) Sweep(ctx context.Context) (SweepReport, error) {
	c.sweepMutex.Lock()
	defer c.sweepMutex.Unlock()

	report := SweepReport{StartedAt: c.clock.Now()}

	records, err := c.store.Eligible(ctx)
	if err != nil {
		return report, fmt.Errorf("uploader: listing eligible records: %w", err)
	}
	report.Eligible = len(records)

	for index := range records {
		err := c.deliver(ctx, &records[index], &report)
		if err == nil {
			report.Uploaded++
			continue
		}

		uuid := records[index].UUID
		switch {
		case errors.Is(err, record.ErrMissingFile):
			report.MissingFiles++
			c.logger.Error("image file unreadable, will retry next sweep", "uuid", uuid, "error", err)
		case record.IsSinkFailure(err, record.SinkObjectStore):
			report.ObjectStoreFailures++
			c.logger.Error("object store upload failed, will retry next sweep", "uuid", uuid, "error", err)
		default:
			report.MarkFailures++
			c.logger.Error("marking record uploaded failed, will retry next sweep", "uuid", uuid, "error", err)
		}
	}

	report.Duration = c.clock.Now().Sub(report.StartedAt)
	c.logger.Info("sweep complete",
		"eligible", report.Eligible,
		"uploaded", report.Uploaded,
		"pending", report.Pending(),
		"warehouse_failures", report.WarehouseFailures,
	)

	c.reportMutex.Lock()
	c.lastReport = &report
	c.sweeps++
	c.reportMutex.Unlock()

	return report, nil
}

// deliver runs the per-record sequence. A nil return means the record
// is now uploaded. Warehouse failures do not produce an error: they are
// logged and counted here and never affect the uploaded flag.
func (c *Coordinator) deliver(ctx context.Context, target *record.Record, report *SweepReport) error {
	if target.Camera == nil {
		return fmt.Errorf("%w: camera data unreadable", record.ErrMissingFile)
	}
	path := record.ResolveImagePath(c.imageDir, target.Camera.FilePath)
	data, err := c.readFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", record.ErrMissingFile, path, err)
	}

	key := record.ImageKey(target.UUID)
	if err := c.objectStore.Put(ctx, key, data); err != nil {
		return &record.SinkError{Sink: record.SinkObjectStore, UUID: target.UUID, Err: err}
	}

	err = c.store.MarkUploaded(ctx, target.UUID, func() {
		if err := c.insertRow(ctx, target, key); err != nil {
			report.WarehouseFailures++
			c.logger.Error("warehouse insert failed", "uuid", target.UUID, "error", err)
		}
	})
	if err != nil {
		return err
	}

	c.logger.Info("record uploaded",
		"uuid", target.UUID,
		"key", key,
		"bytes", len(data),
		"blake3", objectstore.Digest(data),
	)
	return nil
}

func (c *Coordinator) insertRow(ctx context.Context, target *record.Record, key string) error {
	if target.Speed == nil {
		c.logger.Warn("record has no speed data, skipping warehouse row", "uuid", target.UUID)
		return nil
	}
	row := warehouse.Row{
		UUID:      target.UUID,
		Location:  c.location,
		ImageKey:  key,
		Speed:     target.Speed.Reading,
		Timestamp: target.Speed.Timestamp,
	}
	if err := c.warehouse.Insert(ctx, row); err != nil {
		return &record.SinkError{Sink: record.SinkWarehouse, UUID: target.UUID, Err: err}
	}
	return nil
}

// LastReport returns the most recent sweep's report and the number of
// sweeps run so far. The report is nil before the first sweep.
func (c *Coordinator) LastReport() (*SweepReport, int) {
	c.reportMutex.Lock()
	defer c.reportMutex.Unlock()
	if c.lastReport == nil {
		return nil, c.sweeps
	}
	report := *c.lastReport
	return &report, c.sweeps
}
