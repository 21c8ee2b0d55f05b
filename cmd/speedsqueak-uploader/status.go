// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"time"

	"github.com/bureau-foundation/speedsqueak/lib/clock"
	"github.com/bureau-foundation/speedsqueak/lib/codec"
	"github.com/bureau-foundation/speedsqueak/lib/correlator"
	"github.com/bureau-foundation/speedsqueak/lib/eventstore"
	"github.com/bureau-foundation/speedsqueak/lib/service"
	"github.com/bureau-foundation/speedsqueak/lib/uploader"
)

// uploaderService answers status socket requests. Handlers run on the
// socket server's goroutines, concurrently with the receive loop; the
// store pool and the coordinator and correlator snapshots are safe for
// that.
type uploaderService struct {
	store       *eventstore.Store
	coordinator *uploader.Coordinator
	correlator  *correlator.Correlator
	clock       clock.Clock
	startedAt   time.Time
}

// StatusResponse is the data of the "status" action.
type StatusResponse struct {
	Counts        eventstore.Counts     `cbor:"counts"`
	Messages      correlator.Stats      `cbor:"messages"`
	Sweeps        int                   `cbor:"sweeps"`
	LastSweep     *uploader.SweepReport `cbor:"last_sweep,omitempty"`
	UptimeSeconds float64               `cbor:"uptime_seconds"`
}

// PendingRecord is one entry of the "pending" action's data.
type PendingRecord struct {
	UUID      string    `cbor:"uuid"`
	FilePath  string    `cbor:"filepath"`
	Reading   float64   `cbor:"reading"`
	Timestamp string    `cbor:"timestamp"`
	CreatedAt time.Time `cbor:"created_at"`
}

// PendingResponse is the data of the "pending" action.
type PendingResponse struct {
	Total   int             `cbor:"total"`
	Records []PendingRecord `cbor:"records"`
}

func (s *uploaderService) registerActions(server *service.SocketServer) {
	server.Handle("status", s.handleStatus)
	server.Handle("pending", s.handlePending)
}

func (s *uploaderService) handleStatus(ctx context.Context, _ []byte) (any, error) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, err
	}
	lastSweep, sweeps := s.coordinator.LastReport()
	return StatusResponse{
		Counts:        counts,
		Messages:      s.correlator.Stats(),
		Sweeps:        sweeps,
		LastSweep:     lastSweep,
		UptimeSeconds: s.clock.Now().Sub(s.startedAt).Seconds(),
	}, nil
}

func (s *uploaderService) handlePending(ctx context.Context, raw []byte) (any, error) {
	var request struct {
		Limit int `cbor:"limit"`
	}
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, err
	}

	records, err := s.store.Eligible(ctx)
	if err != nil {
		return nil, err
	}

	response := PendingResponse{Total: len(records), Records: []PendingRecord{}}
	for _, pending := range records {
		if request.Limit > 0 && len(response.Records) >= request.Limit {
			break
		}
		entry := PendingRecord{
			UUID:      pending.UUID,
			CreatedAt: pending.CreatedAt,
		}
		if pending.Camera != nil {
			entry.FilePath = pending.Camera.FilePath
		}
		if pending.Speed != nil {
			entry.Reading = pending.Speed.Reading
			entry.Timestamp = pending.Speed.Timestamp
		}
		response.Records = append(response.Records, entry)
	}
	return response, nil
}
