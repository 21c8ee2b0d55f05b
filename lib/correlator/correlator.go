// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package correlator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/speedsqueak/lib/bus"
	"github.com/bureau-foundation/speedsqueak/lib/record"
	"github.com/bureau-foundation/speedsqueak/lib/uploader"
)

// Store is the part of the event store the correlator writes.
type Store interface {
	InsertSpeed(ctx context.Context, payload *record.SpeedPayload) (*record.Record, error)
	AttachCamera(ctx context.Context, payload *record.CameraPayload) (*record.Record, error)
}

// Sweeper runs one delivery pass.
type Sweeper interface {
	Sweep(ctx context.Context) (uploader.SweepReport, error)
}

// Stats counts messages by outcome since the correlator was created.
type Stats struct {
	Speed      int `cbor:"speed"`
	Camera     int `cbor:"camera"`
	Heartbeats int `cbor:"heartbeats"`
	Duplicates int `cbor:"duplicates"`
	Orphans    int `cbor:"orphans"`
	Malformed  int `cbor:"malformed"`
	Unknown    int `cbor:"unknown"`
	Failed     int `cbor:"failed"`
}

// Correlator routes bus messages to the store and the sweeper.
type Correlator struct {
	store   Store
	sweeper Sweeper
	logger  *slog.Logger

	statsMutex sync.Mutex
	stats      Stats
}

// New returns a Correlator. All arguments are required.
func New(store Store, sweeper Sweeper, logger *slog.Logger) (*Correlator, error) {
	if store == nil || sweeper == nil || logger == nil {
		return nil, errors.New("correlator: store, sweeper, and logger are required")
	}
	return &Correlator{store: store, sweeper: sweeper, logger: logger}, nil
}

// HandleSpeed parses a speed event and creates its record. The error
// wraps record.ErrMalformedPayload or record.ErrDuplicateKey for those
// conditions.
func (c *Correlator) HandleSpeed(ctx context.Context, body []byte) (*record.Record, error) {
	payload, err := record.ParseSpeed(body)
	if err != nil {
		return nil, err
	}
	return c.store.InsertSpeed(ctx, payload)
}

// HandleCamera parses a camera event and attaches it to its record.
// The error wraps record.ErrMalformedPayload or record.ErrOrphanUpdate
// for those conditions.
func (c *Correlator) HandleCamera(ctx context.Context, body []byte) (*record.Record, error) {
	payload, err := record.ParseCamera(body)
	if err != nil {
		return nil, err
	}
	return c.store.AttachCamera(ctx, payload)
}

// Dispatch handles one message and logs its outcome. The returned
// error has already been logged; it is there for callers that need to
// tell outcomes apart.
func (c *Correlator) Dispatch(ctx context.Context, message bus.Message) error {
	switch message.Topic {
	case bus.TopicSpeed:
		stored, err := c.HandleSpeed(ctx, message.Body)
		if err != nil {
			return c.reject(message, err)
		}
		c.count(func(s *Stats) { s.Speed++ })
		c.logger.Info("speed event stored",
			"uuid", stored.UUID,
			"reading", stored.Speed.Reading,
			"timestamp", stored.Speed.Timestamp,
		)
		return nil

	case bus.TopicCamera:
		stored, err := c.HandleCamera(ctx, message.Body)
		if err != nil {
			return c.reject(message, err)
		}
		c.count(func(s *Stats) { s.Camera++ })
		c.logger.Info("camera event attached",
			"uuid", stored.UUID,
			"filepath", stored.Camera.FilePath,
			"state", stored.State().String(),
		)
		return nil

	case bus.TopicHeartbeat:
		c.count(func(s *Stats) { s.Heartbeats++ })
		if _, err := c.sweeper.Sweep(ctx); err != nil {
			c.count(func(s *Stats) { s.Failed++ })
			c.logger.Error("sweep failed", "error", err)
			return err
		}
		return nil

	default:
		c.count(func(s *Stats) { s.Unknown++ })
		c.logger.Info("ignoring message on unknown topic", "topic", message.Topic)
		return nil
	}
}

// reject logs a failed speed or camera event exactly once.
func (c *Correlator) reject(message bus.Message, err error) error {
	switch {
	case errors.Is(err, record.ErrMalformedPayload):
		c.count(func(s *Stats) { s.Malformed++ })
		c.logger.Warn("discarding malformed event", "topic", message.Topic, "error", err)
	case errors.Is(err, record.ErrDuplicateKey):
		c.count(func(s *Stats) { s.Duplicates++ })
		c.logger.Warn("discarding duplicate speed event", "error", err)
	case errors.Is(err, record.ErrOrphanUpdate):
		c.count(func(s *Stats) { s.Orphans++ })
		c.logger.Warn("discarding camera event with no matching speed event", "error", err)
	default:
		c.count(func(s *Stats) { s.Failed++ })
		c.logger.Error("storing event failed", "topic", message.Topic, "error", err)
	}
	return err
}

// Run receives and dispatches messages one at a time until ctx is
// done or the subscriber fails. A message already being dispatched
// when ctx is cancelled is finished first, including a sweep. Returns
// nil on cancellation.
func (c *Correlator) Run(ctx context.Context, subscriber bus.Subscriber) error {
	dispatchContext := context.WithoutCancel(ctx)
	for {
		message, err := subscriber.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, bus.ErrMalformedFrame) {
				c.count(func(s *Stats) { s.Malformed++ })
				c.logger.Warn("discarding malformed frame", "error", err)
				continue
			}
			return fmt.Errorf("correlator: receive: %w", err)
		}
		c.Dispatch(dispatchContext, message)
	}
}

// Stats returns a snapshot of the outcome counters.
func (c *Correlator) Stats() Stats {
	c.statsMutex.Lock()
	defer c.statsMutex.Unlock()
	return c.stats
}

func (c *Correlator) count(update func(*Stats)) {
	c.statsMutex.Lock()
	update(&c.stats)
	c.statsMutex.Unlock()
}
