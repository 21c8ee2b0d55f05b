// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/speedsqueak/lib/bus"
	"github.com/bureau-foundation/speedsqueak/lib/clock"
	"github.com/bureau-foundation/speedsqueak/lib/config"
	"github.com/bureau-foundation/speedsqueak/lib/correlator"
	"github.com/bureau-foundation/speedsqueak/lib/eventstore"
	"github.com/bureau-foundation/speedsqueak/lib/process"
	"github.com/bureau-foundation/speedsqueak/lib/service"
	"github.com/bureau-foundation/speedsqueak/lib/uploader"
	"github.com/bureau-foundation/speedsqueak/lib/version"
)

const serviceName = "speedsqueak-uploader"

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath  string
		showVersion bool
	)
	flagSet := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to speedsqueak.yaml (default: $SPEEDSQUEAK_CONFIG)")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if showVersion {
		version.Print(serviceName)
		return nil
	}

	cfg, err := config.ParseFlag(configPath)
	if err != nil {
		return err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger, closeLog, err := service.NewLogger(serviceName, level, cfg.Paths.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := process.SignalContext(context.Background())
	defer stop()

	subscriber, err := bus.Open(ctx, cfg.BusOptions(logger), bus.TopicSpeed, bus.TopicCamera, bus.TopicHeartbeat)
	if err != nil {
		return err
	}
	defer subscriber.Close()

	return serve(ctx, cfg, subscriber, clock.Real(), logger)
}

// serve wires the uploader from cfg and runs it on subscriber until
// ctx is done.
func serve(ctx context.Context, cfg *config.Config, subscriber bus.Subscriber, clk clock.Clock, logger *slog.Logger) error {
	store, err := eventstore.Open(eventstore.Config{
		Path:   cfg.Paths.Database,
		Clock:  clk,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	objectStore, err := openObjectStore(cfg)
	if err != nil {
		return err
	}
	warehouse, closeWarehouse, err := openWarehouse(cfg, logger)
	if err != nil {
		return err
	}
	defer closeWarehouse()

	coordinator, err := uploader.New(uploader.Config{
		Store:       store,
		ObjectStore: objectStore,
		Warehouse:   warehouse,
		Location:    cfg.Location,
		ImageDir:    cfg.Paths.ImageDir,
		Clock:       clk,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	events, err := correlator.New(store, coordinator, logger)
	if err != nil {
		return err
	}

	status := &uploaderService{
		store:       store,
		coordinator: coordinator,
		correlator:  events,
		clock:       clk,
		startedAt:   clk.Now(),
	}
	socketContext, stopSocket := context.WithCancel(ctx)
	defer stopSocket()
	socketDone := make(chan error, 1)
	if cfg.Paths.StatusSocket != "" {
		server := service.NewSocketServer(cfg.Paths.StatusSocket, logger)
		status.registerActions(server)
		go func() { socketDone <- server.Serve(socketContext) }()
	} else {
		socketDone <- nil
	}

	logger.Info("uploader running",
		"version", version.Info(),
		"location", cfg.Location,
		"transport", cfg.Bus.Transport,
		"object_store", cfg.ObjectStore.Kind,
		"warehouse", cfg.Warehouse.Kind,
	)

	runErr := events.Run(ctx, subscriber)
	if runErr != nil {
		logger.Error("receive loop stopped", "error", runErr)
	} else {
		logger.Info("shutting down")
	}

	stopSocket()
	if err := <-socketDone; err != nil {
		logger.Error("status socket error", "error", err)
	}
	return runErr
}
