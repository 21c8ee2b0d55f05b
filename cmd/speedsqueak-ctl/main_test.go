// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/speedsqueak/lib/bus"
	"github.com/bureau-foundation/speedsqueak/lib/codec"
	"github.com/bureau-foundation/speedsqueak/lib/config"
	"github.com/bureau-foundation/speedsqueak/lib/record"
	"github.com/bureau-foundation/speedsqueak/lib/service"
	"github.com/bureau-foundation/speedsqueak/lib/testutil"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func TestBuildSpeedEvent(t *testing.T) {
	message, err := buildEvent("speed", "", 37.5, "", fixedNow)
	if err != nil {
		t.Fatalf("buildEvent: %v", err)
	}
	if message.Topic != bus.TopicSpeed {
		t.Errorf("topic = %q, want %q", message.Topic, bus.TopicSpeed)
	}
	payload, err := record.ParseSpeed(message.Body)
	if err != nil {
		t.Fatalf("ParseSpeed(%s): %v", message.Body, err)
	}
	if payload.UUID == "" {
		t.Error("speed event without --uuid should get a generated identifier")
	}
	if payload.Reading != 37.5 {
		t.Errorf("reading = %v, want 37.5", payload.Reading)
	}
	if payload.Timestamp != "2026-03-14T09:26:53Z" {
		t.Errorf("timestamp = %q", payload.Timestamp)
	}

	again, err := buildEvent("speed", "", 37.5, "", fixedNow)
	if err != nil {
		t.Fatalf("buildEvent: %v", err)
	}
	second, _ := record.ParseSpeed(again.Body)
	if second.UUID == payload.UUID {
		t.Errorf("two speed events share identifier %q", payload.UUID)
	}
}

func TestBuildCameraEvent(t *testing.T) {
	message, err := buildEvent("camera", "abc-123", 0, "capture_abc-123.jpg", fixedNow)
	if err != nil {
		t.Fatalf("buildEvent: %v", err)
	}
	if message.Topic != bus.TopicCamera {
		t.Errorf("topic = %q, want %q", message.Topic, bus.TopicCamera)
	}
	payload, err := record.ParseCamera(message.Body)
	if err != nil {
		t.Fatalf("ParseCamera(%s): %v", message.Body, err)
	}
	if payload.UUID != "abc-123" || payload.FilePath != "capture_abc-123.jpg" {
		t.Errorf("payload = %+v", payload)
	}

	if _, err := buildEvent("camera", "abc-123", 0, "", fixedNow); err == nil {
		t.Error("camera event without --filepath should be rejected")
	}
	if _, err := buildEvent("camera", "", 0, "capture.jpg", fixedNow); err == nil {
		t.Error("camera event without --uuid should be rejected")
	}
}

func TestBuildUnknownEvent(t *testing.T) {
	if _, err := buildEvent("lidar", "", 0, "", fixedNow); err == nil {
		t.Error("unknown event kind should be rejected")
	}
}

func TestEmitOverMemoryBus(t *testing.T) {
	broker := bus.NewMemory()
	subscriber := broker.Subscribe(bus.TopicPrefix)
	defer subscriber.Close()

	message, err := buildEvent("heartbeat", "", 0, "", fixedNow)
	if err != nil {
		t.Fatalf("buildEvent: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	options := bus.Options{Transport: bus.TransportMemory, Memory: broker}
	if err := emit(ctx, options, message); err != nil {
		t.Fatalf("emit: %v", err)
	}

	received, err := subscriber.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if received.Topic != bus.TopicHeartbeat {
		t.Errorf("topic = %q, want %q", received.Topic, bus.TopicHeartbeat)
	}
}

func TestQueryPrintsJSON(t *testing.T) {
	socketPath := filepath.Join(testutil.SocketDir(t), "uploader.sock")
	server := service.NewSocketServer(socketPath, slog.New(slog.DiscardHandler))
	server.Handle("pending", func(_ context.Context, raw []byte) (any, error) {
		var request struct {
			Limit int `cbor:"limit"`
		}
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, err
		}
		return map[string]any{"total": 3, "limit": request.Limit}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	defer func() {
		cancel()
		testutil.RequireReceive(t, done, 5*time.Second, "Serve did not return")
	}()
	waitForSocket(t, socketPath)

	cfg := config.Default()
	cfg.Paths.StatusSocket = socketPath

	var output bytes.Buffer
	if err := query(ctx, cfg, "pending", map[string]any{"limit": 2}, &output); err != nil {
		t.Fatalf("query: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(output.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output.String())
	}
	if decoded["total"] != float64(3) || decoded["limit"] != float64(2) {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestQueryWithoutUploader(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StatusSocket = filepath.Join(t.TempDir(), "absent.sock")

	var output bytes.Buffer
	if err := query(context.Background(), cfg, "status", nil, &output); err == nil {
		t.Error("query against a missing socket should fail")
	}
	if output.Len() != 0 {
		t.Errorf("unexpected output %q", output.String())
	}
}

func waitForSocket(t *testing.T, socketPath string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		if conn, err := net.Dial("unix", socketPath); err == nil {
			conn.Close()
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("socket %s never came up", socketPath)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
