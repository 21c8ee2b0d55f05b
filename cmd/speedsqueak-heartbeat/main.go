// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/speedsqueak/lib/bus"
	"github.com/bureau-foundation/speedsqueak/lib/clock"
	"github.com/bureau-foundation/speedsqueak/lib/config"
	"github.com/bureau-foundation/speedsqueak/lib/process"
	"github.com/bureau-foundation/speedsqueak/lib/service"
	"github.com/bureau-foundation/speedsqueak/lib/version"
)

const serviceName = "speedsqueak-heartbeat"

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

	publisher, err := bus.OpenPublisher(cfg.BusOptions(logger), cfg.Bus.ZMQ.Bind)
	if err != nil {
		return err
	}
	defer publisher.Close()

	ctx, stop := process.SignalContext(context.Background())
	defer stop()

	logger.Info("heartbeat running", "interval", cfg.Heartbeat.Interval, "transport", cfg.Bus.Transport)
	heartbeat(ctx, publisher, clock.Real(), cfg.Heartbeat.Interval, cfg.Heartbeat.Message, logger)
	logger.Info("shutting down")
	return nil
}

// heartbeat publishes one heartbeat now and one per interval until ctx
// is done. A failed publish is logged and the next tick tries again.
func heartbeat(ctx context.Context, publisher bus.Publisher, clk clock.Clock, interval time.Duration, message string, logger *slog.Logger) {
	ticker := clk.NewTicker(interval)
	defer ticker.Stop()

	beat := bus.Message{Topic: bus.TopicHeartbeat, Body: []byte(message)}
	for {
		if err := publisher.Publish(ctx, beat); err != nil && ctx.Err() == nil {
			logger.Error("publishing heartbeat failed", "error", err)
		} else {
			logger.Debug("heartbeat published")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
